// Package memory holds a mutex-guarded in-process UserStore used by tests
// and local development. It mirrors the Postgres store's uniqueness and
// not-found semantics.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tripmesh/auth-service/internal/models"
	"github.com/tripmesh/auth-service/internal/storage"
)

var _ storage.UserStore = (*Store)(nil)

// Store keeps users in a map protected by a single mutex, so every
// operation is atomic with respect to the others.
type Store struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]models.User
}

// NewUserStore returns an empty in-memory store.
func NewUserStore() *Store {
	return &Store{nextID: 1, users: make(map[int64]models.User)}
}

// CreateUser assigns an ID and stores the user, enforcing email and
// username uniqueness the way the Postgres constraints do.
func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return models.User{}, storage.ErrEmailTaken
		}
		if existing.Username == user.Username {
			return models.User{}, storage.ErrUsernameTaken
		}
	}

	now := time.Now()
	user.ID = s.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	s.nextID++
	s.users[user.ID] = user
	return user, nil
}

// FindByEmail fetches a user by email.
func (s *Store) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

// FindByID fetches a user by ID.
func (s *Store) FindByID(_ context.Context, id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

// ExistsByEmail reports whether a user with the email exists.
func (s *Store) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// ExistsByUsername reports whether a user with the username exists.
func (s *Store) ExistsByUsername(_ context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

// UpdateLastLogin stamps the login timestamp on the stored record, leaving
// every other field as it currently is.
func (s *Store) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	user.LastLogin = &at
	user.UpdatedAt = time.Now()
	s.users[id] = user
	return nil
}

// UpdateUser replaces the stored record. Email and username stay as stored;
// they are immutable after creation.
func (s *Store) UpdateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[user.ID]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	user.Email = existing.Email
	user.Username = existing.Username
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now()
	s.users[user.ID] = user
	return user, nil
}

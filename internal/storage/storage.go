package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tripmesh/auth-service/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// Uniqueness conflicts narrowed to the offending column, both matching
// ErrAlreadyExists under errors.Is.
var (
	ErrEmailTaken    = fmt.Errorf("email: %w", ErrAlreadyExists)
	ErrUsernameTaken = fmt.Errorf("username: %w", ErrAlreadyExists)
)

// UserStore captures the persistence operations the auth service needs.
// Writes are single-row atomic statements; concurrent mutations of the same
// account serialize on them. UpdateLastLogin exists so the login success
// path touches only the column it owns instead of writing back a record
// read earlier, which would silently revert a racing mutation such as a
// 2FA enrollment.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	UpdateUser(ctx context.Context, user models.User) (models.User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

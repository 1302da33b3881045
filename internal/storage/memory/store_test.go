package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmesh/auth-service/internal/models"
	"github.com/tripmesh/auth-service/internal/storage"
)

func seedUser() models.User {
	return models.User{
		Email:     "alice@example.com",
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Walker",
		Roles:     models.DefaultRoles(),
		IsActive:  true,
	}
}

func TestCreateAndFind(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()

	created, err := s.CreateUser(ctx, seedUser())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	byEmail, err := s.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = s.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.FindByID(ctx, 404)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUniqueness(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()

	_, err := s.CreateUser(ctx, seedUser())
	require.NoError(t, err)

	dupEmail := seedUser()
	dupEmail.Username = "alice2"
	_, err = s.CreateUser(ctx, dupEmail)
	assert.ErrorIs(t, err, storage.ErrEmailTaken)
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	dupUsername := seedUser()
	dupUsername.Email = "alice.other@example.com"
	_, err = s.CreateUser(ctx, dupUsername)
	assert.ErrorIs(t, err, storage.ErrUsernameTaken)

	taken, err := s.ExistsByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = s.ExistsByUsername(ctx, "alice2")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUpdateKeepsIdentityImmutable(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()

	created, err := s.CreateUser(ctx, seedUser())
	require.NoError(t, err)

	created.Email = "changed@example.com"
	created.Username = "changed"
	created.Bio = "wanderer"
	updated, err := s.UpdateUser(ctx, created)
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", updated.Email)
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, "wanderer", updated.Bio)

	missing := seedUser()
	missing.ID = 404
	_, err = s.UpdateUser(ctx, missing)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateLastLoginTouchesOnlyTheTimestamp(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()

	created, err := s.CreateUser(ctx, seedUser())
	require.NoError(t, err)

	created.TwoFactorEnabled = true
	created.TwoFactorSecret = "SECRET"
	_, err = s.UpdateUser(ctx, created)
	require.NoError(t, err)

	at := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	require.NoError(t, s.UpdateLastLogin(ctx, created.ID, at))

	user, err := s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, user.LastLogin)
	assert.True(t, user.LastLogin.Equal(at))
	assert.True(t, user.TwoFactorEnabled)
	assert.Equal(t, "SECRET", user.TwoFactorSecret)

	assert.ErrorIs(t, s.UpdateLastLogin(ctx, 404, at), storage.ErrNotFound)
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmesh/auth-service/internal/models"
)

func testUser() models.User {
	return models.User{
		ID:       42,
		Email:    "alice@example.com",
		Username: "alice",
		Roles:    []string{models.RoleUser},
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "tripmesh-auth", time.Hour)

	token, err := tm.Generate(testUser())
	require.NoError(t, err)

	id, err := tm.ParseSubject(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.True(t, tm.Validate(token))
}

func TestTokenRejectedByOtherSecret(t *testing.T) {
	tm := NewTokenManager("secret", "tripmesh-auth", time.Hour)
	other := NewTokenManager("different-secret", "tripmesh-auth", time.Hour)

	token, err := tm.Generate(testUser())
	require.NoError(t, err)

	_, err = other.ParseSubject(token)
	assert.Error(t, err)
	assert.False(t, other.Validate(token))
}

func TestTokenRejectedByOtherIssuer(t *testing.T) {
	tm := NewTokenManager("secret", "tripmesh-auth", time.Hour)
	other := NewTokenManager("secret", "someone-else", time.Hour)

	token, err := tm.Generate(testUser())
	require.NoError(t, err)

	_, err = other.ParseSubject(token)
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	tm := NewTokenManager("secret", "tripmesh-auth", -time.Minute)

	token, err := tm.Generate(testUser())
	require.NoError(t, err)
	assert.False(t, tm.Validate(token))
}

func TestMalformedToken(t *testing.T) {
	tm := NewTokenManager("secret", "tripmesh-auth", time.Hour)
	assert.False(t, tm.Validate("not-a-jwt"))
	assert.False(t, tm.Validate(""))
}

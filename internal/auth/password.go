package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher wraps bcrypt with a tunable cost factor.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher clamps the cost into bcrypt's supported range and falls
// back to the library default when unset.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash derives a salted bcrypt hash for the plaintext password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether the plaintext matches the stored hash. Any bcrypt
// failure, including a malformed stored hash, reads as a mismatch so callers
// never learn more than "no".
func (h *PasswordHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tripmesh/auth-service/internal/auth"
	"github.com/tripmesh/auth-service/internal/http/respond"
)

type contextKey string

const userIDKey contextKey = "userID"

// RequireAuth decodes the bearer token and injects the authenticated user ID
// into the request context. Handlers never read identity from anywhere else.
func RequireAuth(tokens *auth.TokenManager, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respond.Error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		userID, err := tokens.ParseSubject(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	}
}

// UserID extracts the authenticated user ID placed by RequireAuth.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

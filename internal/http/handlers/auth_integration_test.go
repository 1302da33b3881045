package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tripmesh/auth-service/internal/auth"
	"github.com/tripmesh/auth-service/internal/face"
	"github.com/tripmesh/auth-service/internal/service"
	"github.com/tripmesh/auth-service/internal/storage/postgres"
	"github.com/tripmesh/auth-service/internal/totp"
)

// TestAuthIntegration exercises register/login against a live Postgres.
func TestAuthIntegration(t *testing.T) {
	if os.Getenv("RUN_AUTH_INTEGRATION") != "true" {
		t.Skip("set RUN_AUTH_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := postgres.NewUserStore(ctx, dbURL)
	require.NoError(t, err)
	defer store.Close()

	tokens := auth.NewTokenManager("integration-secret", "tripmesh-auth", time.Hour)
	svc := service.NewAuthService(
		store,
		auth.NewPasswordHasher(bcrypt.MinCost),
		totp.NewManager("TripMesh", totp.NewMemoryReplayGuard()),
		&stubFaceClient{quality: face.QualityResult{Valid: true}},
		tokens,
	)

	mux := http.NewServeMux()
	NewAuthHandler(svc, tokens).Register(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	suffix := time.Now().UnixNano()
	email := fmt.Sprintf("apitest_%d@example.com", suffix)
	username := fmt.Sprintf("apitest_%d", suffix)

	resp, env := postJSON(t, ts.URL+"/api/auth/register", "", map[string]any{
		"email":       email,
		"password":    "password123",
		"firstName":   "Api",
		"lastName":    "Test",
		"username":    username,
		"dateOfBirth": "1990-01-01",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var session service.Session
	require.NoError(t, json.Unmarshal(env.Data, &session))
	require.Equal(t, username, session.Username)

	resp, env = postJSON(t, ts.URL+"/api/auth/login", "", map[string]any{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var logged service.Session
	require.NoError(t, json.Unmarshal(env.Data, &logged))
	require.Equal(t, session.ID, logged.ID)

	t.Logf("created user %s (id=%d) and logged in via /api/auth/login", username, session.ID)
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
		"../../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}

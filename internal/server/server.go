package server

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tripmesh/auth-service/internal/auth"
	"github.com/tripmesh/auth-service/internal/config"
	"github.com/tripmesh/auth-service/internal/face"
	"github.com/tripmesh/auth-service/internal/http/handlers"
	"github.com/tripmesh/auth-service/internal/middleware"
	"github.com/tripmesh/auth-service/internal/service"
	"github.com/tripmesh/auth-service/internal/storage"
	"github.com/tripmesh/auth-service/internal/totp"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires the auth service from its collaborators and returns a ready
// server. redisClient may be nil, in which case the TOTP replay guard falls
// back to its in-process implementation.
func New(cfg config.Config, store storage.UserStore, redisClient *redis.Client) *Server {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	passwords := auth.NewPasswordHasher(cfg.BcryptCost)
	faces := face.NewHTTPClient(cfg.FaceAPIURL, cfg.FaceAPITimeout)

	var replay totp.ReplayGuard
	if redisClient != nil {
		replay = totp.NewRedisReplayGuard(redisClient)
	} else {
		replay = totp.NewMemoryReplayGuard()
	}
	totpManager := totp.NewManager(cfg.TOTPIssuer, replay)

	svc := service.NewAuthService(store, passwords, totpManager, faces, tokens)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(svc, tokens).Register(mux)

	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(mux))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}

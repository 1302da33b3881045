package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port           string
	DatabaseURL    string
	JWTSecret      string
	JWTIssuer      string
	JWTTTL         time.Duration
	FaceAPIURL     string
	FaceAPITimeout time.Duration
	// RedisAddr is optional; when empty the TOTP replay guard runs in-process.
	RedisAddr   string
	TOTPIssuer  string
	BcryptCost  int
	CORSOrigins []string
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:        fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:   fallback(os.Getenv("JWT_ISSUER"), "tripmesh-auth"),
		FaceAPIURL:  fallback(os.Getenv("FACE_API_URL"), "http://ai-service:8000"),
		RedisAddr:   strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		TOTPIssuer:  fallback(os.Getenv("TOTP_ISSUER"), "TripMesh"),
		BcryptCost:  intFallback(os.Getenv("BCRYPT_COST"), bcrypt.DefaultCost),
		CORSOrigins: parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
	}

	cfg.JWTTTL = time.Duration(intFallback(os.Getenv("JWT_TTL_MINUTES"), 60)) * time.Minute
	cfg.FaceAPITimeout = time.Duration(intFallback(os.Getenv("FACE_API_TIMEOUT_SECONDS"), 5)) * time.Second

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func intFallback(value string, def int) int {
	if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && parsed > 0 {
		return parsed
	}
	return def
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

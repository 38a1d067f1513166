package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string

	// Redis-backed rate limiter storage (in-memory when empty)
	RedisURL string

	// Auth
	JWTSecret string        // HMAC signing key (min 32 chars in production)
	TokenTTL  time.Duration // assertion expiry window

	// Short codes
	ShortCodeLength      int
	ShortCodeMaxAttempts int

	// Link expiry
	DefaultExpirationMonths int

	// Background cleanup sweep
	SweepInterval time.Duration // 0 disables the sweeper

	// CORS
	CORSOrigins string // Comma-separated allowed origins
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:         getEnv("ENV", "development"),
		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/shortlinks?sslmode=disable"),
		RedisURL:    getEnv("REDIS_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production-min-32-chars"),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),

		ShortCodeLength:      getEnvInt("SHORT_CODE_LENGTH", 6),
		ShortCodeMaxAttempts: getEnvInt("SHORT_CODE_MAX_ATTEMPTS", 100),

		DefaultExpirationMonths: getEnvInt("DEFAULT_EXPIRATION_MONTHS", 6),

		SweepInterval: getEnvDuration("SWEEP_INTERVAL", time.Hour),

		CORSOrigins: getEnv("CORS_ORIGINS", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

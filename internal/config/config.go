// Package config loads and validates the service configuration from
// environment variables.
package config

import (
	"errors"
	"os"
	"strings"
)

// DevJWTSecret is the fallback signing secret for local development. Validate
// refuses it outside development.
const DevJWTSecret = "dev-only-insecure-secret"

// Config holds the application configuration.
type Config struct {
	Environment string
	ListenAddr  string
	DatabaseURL string
	RedisAddr   string
	JWTSecret   string
	JWTIssuer   string
	AuditDBPath string
}

// Load reads configuration from environment variables and validates it.
// DATABASE_URL may be empty, which selects the in-memory store for local
// development.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: os.Getenv("APP_ENV"),
		ListenAddr:  os.Getenv("API_ADDR"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTIssuer:   os.Getenv("JWT_ISSUER"),
		AuditDBPath: os.Getenv("AUDIT_DB"),
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "nexbank"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = DevJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable for the environment.
func (c *Config) Validate() error {
	var missing []string

	if c.Environment == "" {
		missing = append(missing, "APP_ENV")
	}

	if c.Environment == "production" || c.Environment == "staging" {
		if c.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
		if c.JWTSecret == DevJWTSecret {
			return errors.New("JWT_SECRET must be set explicitly in " + c.Environment)
		}
	}

	if len(missing) > 0 {
		return errors.New("missing required environment variables: " + strings.Join(missing, ", "))
	}
	return nil
}

// IsProduction reports whether the service runs in a deployed environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "staging"
}

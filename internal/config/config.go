package config

import (
	"errors"

	"chatspace/internal/utils"
)

type Config struct {
	DatabaseURL   string
	JWTSecret     string
	Port          string
	SummarizerURL string
	TokenTTLHours int
}

// Load reads configuration from the environment. The store DSN and the
// token-signing secret are both required; a missing secret fails closed here
// so the server never issues or verifies credentials against a default.
func Load() (*Config, error) {
	if err := utils.LoadEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:   utils.GetEnv("DATABASE_URL", ""),
		JWTSecret:     utils.GetEnv("JWT_SECRET", ""),
		Port:          utils.GetEnv("PORT", "3001"),
		SummarizerURL: utils.GetEnv("SUMMARIZER_URL", ""),
		TokenTTLHours: utils.GetEnvInt("TOKEN_TTL_HOURS", 24),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath         string
	OIDCIssuer           string
	OIDCClientID         string
	OIDCClientSecret     string
	OIDCRedirectURL      string
	SessionSecret        string
	BaseURL              string
	LogLevel             string
	Port                 string
	USDAAPIKey           string
	USDABaseURL          string
	OpenFoodFactsBaseURL string
	DefaultTimezone      *time.Location
	HTTPClientTimeout    time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("loading .env file", "error", err)
	}

	config := Config{
		DatabasePath:         envOrDefault("DATABASE_PATH", "./data/nutrition-hub.db"),
		OIDCIssuer:           os.Getenv("OIDC_ISSUER"),
		OIDCClientID:         os.Getenv("OIDC_CLIENT_ID"),
		OIDCClientSecret:     os.Getenv("OIDC_CLIENT_SECRET"),
		OIDCRedirectURL:      os.Getenv("OIDC_REDIRECT_URL"),
		SessionSecret:        os.Getenv("SESSION_SECRET"),
		BaseURL:              envOrDefault("BASE_URL", "http://localhost:8080"),
		LogLevel:             envOrDefault("LOG_LEVEL", "info"),
		Port:                 envOrDefault("PORT", "8080"),
		USDAAPIKey:           envOrDefault("USDA_API_KEY", "DEMO_KEY"),
		USDABaseURL:          envOrDefault("USDA_API_BASE_URL", "https://api.nal.usda.gov/fdc/v1"),
		OpenFoodFactsBaseURL: envOrDefault("OPENFOODFACTS_BASE_URL", "https://world.openfoodfacts.org"),
	}

	if config.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is required")
	}

	location, err := time.LoadLocation(envOrDefault("DEFAULT_TIMEZONE", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("parsing DEFAULT_TIMEZONE: %w", err)
	}
	config.DefaultTimezone = location

	timeout, err := time.ParseDuration(envOrDefault("HTTP_CLIENT_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parsing HTTP_CLIENT_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return Config{}, fmt.Errorf("HTTP_CLIENT_TIMEOUT must be positive, got %s", timeout)
	}
	config.HTTPClientTimeout = timeout

	return config, nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (config Config) SlogLevel() slog.Level {
	switch config.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/bensuskins/nutrition-hub/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("DEFAULT_TIMEZONE", "")
	t.Setenv("HTTP_CLIENT_TIMEOUT", "")
	t.Setenv("USDA_API_BASE_URL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.DefaultTimezone != time.UTC {
		t.Errorf("expected UTC, got %v", cfg.DefaultTimezone)
	}
	if cfg.HTTPClientTimeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.HTTPClientTimeout)
	}
	if cfg.USDABaseURL != "https://api.nal.usda.gov/fdc/v1" {
		t.Errorf("unexpected USDA base url %s", cfg.USDABaseURL)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing session secret", env: map[string]string{"SESSION_SECRET": ""}},
		{name: "bad timezone", env: map[string]string{"SESSION_SECRET": "s", "DEFAULT_TIMEZONE": "Mars/Olympus"}},
		{name: "bad timeout", env: map[string]string{"SESSION_SECRET": "s", "HTTP_CLIENT_TIMEOUT": "soon"}},
		{name: "negative timeout", env: map[string]string{"SESSION_SECRET": "s", "HTTP_CLIENT_TIMEOUT": "-1s"}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Setenv("DEFAULT_TIMEZONE", "")
			t.Setenv("HTTP_CLIENT_TIMEOUT", "")
			for key, value := range testCase.env {
				t.Setenv(key, value)
			}
			if _, err := config.Load(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for level, expected := range tests {
		if got := (config.Config{LogLevel: level}).SlogLevel(); got != expected {
			t.Errorf("%s: expected %v, got %v", level, expected, got)
		}
	}
}

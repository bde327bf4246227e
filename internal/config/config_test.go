package config

import (
	"reflect"
	"testing"
	"time"
)

// TestLoadDefaults verifies the defaults applied when only the API key is
// set.
func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Server.Port != 3001 {
		t.Fatalf("unexpected port: %d", cfg.Server.Port)
	}
	if cfg.AI.Model != "gemini-2.0-flash" {
		t.Fatalf("unexpected model: %s", cfg.AI.Model)
	}
	if cfg.RateLimit.MaxRequests != 30 || cfg.RateLimit.Window != time.Minute {
		t.Fatalf("unexpected rate limit: %+v", cfg.RateLimit)
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		t.Fatal("expected default CORS origins")
	}
}

// TestLoadMissingAPIKey verifies the server refuses to start without a key.
func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a missing GEMINI_API_KEY")
	}
}

// TestLoadRejectsInvalidPort verifies integer env validation.
func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("PORT", "not-a-number")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for an invalid PORT")
	}
}

// TestLoadRejectsInvalidWindow verifies duration env validation.
func TestLoadRejectsInvalidWindow(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("RATE_LIMIT_WINDOW", "-10s")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a negative window")
	}
}

// TestParseCSVEnv verifies origin list parsing from ENV.
func TestParseCSVEnv(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://chronos.app, ,http://localhost:3000 ")

	got := parseCSVEnv("CORS_ALLOWED_ORIGINS")
	want := []string{"https://chronos.app", "http://localhost:3000"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestParseCSVEnvMissing verifies the behavior when the variable is unset.
func TestParseCSVEnvMissing(t *testing.T) {
	got := parseCSVEnv("MISSING_ENV")
	if got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TICKET_API_BASE_URL", "https://tickets.example.edu/functions/v1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %q", cfg.Port)
	}
	if cfg.DisplayLimit != 5 {
		t.Errorf("Expected display limit 5, got %d", cfg.DisplayLimit)
	}
	if cfg.TicketAPI.Timeout != 10*time.Second {
		t.Errorf("Expected ticket timeout 10s, got %v", cfg.TicketAPI.Timeout)
	}
	if !cfg.IsDevelopment() {
		t.Error("Expected development mode without FRONTEND_URL")
	}
}

func TestLoadRequiresTicketBaseURL(t *testing.T) {
	t.Setenv("TICKET_API_BASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for empty TICKET_API_BASE_URL")
	}
}

func TestLoadRejectsRelativeTicketURL(t *testing.T) {
	t.Setenv("TICKET_API_BASE_URL", "/tickets")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for relative TICKET_API_BASE_URL")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TICKET_API_BASE_URL", "http://localhost:9999")
	t.Setenv("ASSISTANT_DISPLAY_LIMIT", "3")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("SESSION_TTL", "not-a-duration")
	t.Setenv("FRONTEND_URL", "https://portal.example.edu/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DisplayLimit != 3 {
		t.Errorf("Expected display limit 3, got %d", cfg.DisplayLimit)
	}
	if cfg.RateLimit.WindowDuration != 30*time.Second {
		t.Errorf("Expected 30s window, got %v", cfg.RateLimit.WindowDuration)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("Expected fallback TTL for malformed value, got %v", cfg.SessionTTL)
	}
	if cfg.IsDevelopment() {
		t.Error("Expected production mode for a public FRONTEND_URL")
	}
	if got := cfg.AllowedOrigins(); len(got) != 1 || got[0] != "https://portal.example.edu" {
		t.Errorf("Unexpected allowed origins: %v", got)
	}
}

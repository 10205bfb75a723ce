// Package config provides application configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port         string
	FrontendURL  string
	DBPath       string
	SnapshotPath string // optional seed used when a session starts without a snapshot
	SessionTTL   time.Duration
	DisplayLimit int
	TicketAPI    TicketAPIConfig
	RateLimit    RateLimitConfig
}

// TicketAPIConfig locates the external ticket service.
type TicketAPIConfig struct {
	BaseURL string
	AnonKey string
	Timeout time.Duration
}

// RateLimitConfig throttles chat and ticket requests per client IP.
type RateLimitConfig struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		FrontendURL:  getEnv("FRONTEND_URL", ""),
		DBPath:       getEnv("DB_PATH", "./data/assistant.db"),
		SnapshotPath: getEnv("SNAPSHOT_PATH", ""),
		SessionTTL:   getEnvDuration("SESSION_TTL", 2*time.Hour),
		DisplayLimit: getEnvInt("ASSISTANT_DISPLAY_LIMIT", 5),
		TicketAPI: TicketAPIConfig{
			BaseURL: getEnv("TICKET_API_BASE_URL", ""),
			AnonKey: getEnv("TICKET_API_ANON_KEY", ""),
			Timeout: getEnvDuration("TICKET_API_TIMEOUT", 10*time.Second),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: getEnvInt("RATE_LIMIT_REQUESTS", 30),
			WindowDuration:    getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.TicketAPI.BaseURL == "" {
		return fmt.Errorf("TICKET_API_BASE_URL cannot be empty")
	}
	if u, err := url.Parse(c.TicketAPI.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("TICKET_API_BASE_URL must be an absolute URL")
	}
	if c.TicketAPI.Timeout <= 0 {
		return fmt.Errorf("TICKET_API_TIMEOUT must be > 0")
	}
	if c.DisplayLimit <= 0 {
		return fmt.Errorf("ASSISTANT_DISPLAY_LIMIT must be > 0")
	}
	if c.RateLimit.RequestsPerWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be > 0")
	}
	if c.RateLimit.WindowDuration <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

// AllowedOrigins returns the CORS origins for the frontend.
func (c *Config) AllowedOrigins() []string {
	if c.FrontendURL == "" {
		return []string{"*"}
	}
	return []string{strings.TrimRight(c.FrontendURL, "/")}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "https://api.example.com/")
	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DRAFT_TTL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Backend.BaseURL != "https://api.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Backend.BaseURL)
	}
	if cfg.Redis.DraftTTL != 2*time.Hour {
		t.Fatalf("unexpected draft ttl %s", cfg.Redis.DraftTTL)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("unexpected log level %q", cfg.LogLevel)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://localhost:9000")
	t.Setenv("BACKEND_TIMEOUT", "5")
	t.Setenv("DRAFT_TTL", "30m")
	t.Setenv("RUN_LOCAL", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.Timeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %s", cfg.Backend.Timeout)
	}
	if cfg.Redis.DraftTTL != 30*time.Minute {
		t.Fatalf("expected 30m draft ttl, got %s", cfg.Redis.DraftTTL)
	}
	if !cfg.Server.RunLocal {
		t.Fatalf("expected RunLocal")
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins %v", cfg.CORS.AllowedOrigins)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080"},
			Backend:  BackendConfig{BaseURL: "https://api.example.com", Timeout: time.Second},
			AWS:      AWSConfig{IdempotencyTable: "idempotency", IdempotencyTTL: time.Hour},
			Redis:    RedisConfig{DraftTTL: time.Hour, LockTTL: 30 * time.Second},
			LogLevel: "info",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing backend", func(c *Config) { c.Backend.BaseURL = "" }, "BACKEND_BASE_URL is required"},
		{"non http backend", func(c *Config) { c.Backend.BaseURL = "ftp://x" }, "http(s)"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "invalid log level"},
		{"zero ttl", func(c *Config) { c.Redis.DraftTTL = 0 }, "DRAFT_TTL"},
		{"lock shorter than backend call", func(c *Config) { c.Backend.Timeout = time.Minute }, "must exceed BACKEND_TIMEOUT"},
		{"lock equal to backend call", func(c *Config) { c.Redis.LockTTL = c.Backend.Timeout }, "must exceed BACKEND_TIMEOUT"},
		{"production without origins", func(c *Config) { c.CORS.Production = true }, "CORS_ALLOWED_ORIGINS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

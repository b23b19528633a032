package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the api and worker binaries.
// Everything is read from environment variables; a local .env file is loaded first when present.
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	AWS      AWSConfig
	Redis    RedisConfig
	CORS     CORSConfig
	LogLevel string
}

type ServerConfig struct {
	Port     string
	Host     string
	RunLocal bool // serve with gin directly instead of the lambda adapter
}

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AWSConfig struct {
	Region           string
	EndpointOverride string
	IdempotencyTable string
	SubmissionsTable string // optional audit table
	EventsQueueURL   string // optional; events are skipped when empty
	MetricsNamespace string
	IdempotencyTTL   time.Duration
}

type RedisConfig struct {
	Address  string // empty keeps drafts in memory
	DraftTTL time.Duration
	LockTTL  time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	Production     bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnv("PORT", "8080"),
			Host:     getEnv("HOST", "0.0.0.0"),
			RunLocal: getEnvAsBool("RUN_LOCAL", false),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(getEnv("BACKEND_BASE_URL", ""), "/"),
			Timeout: getEnvAsDuration("BACKEND_TIMEOUT", 15*time.Second),
		},
		AWS: AWSConfig{
			Region:           getEnv("AWS_REGION", "us-east-1"),
			EndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
			IdempotencyTable: getEnv("IDEMPOTENCY_TABLE", "idempotency"),
			SubmissionsTable: getEnv("SUBMISSIONS_TABLE", ""),
			EventsQueueURL:   getEnv("EVENTS_QUEUE_URL", ""),
			MetricsNamespace: getEnv("METRICS_NAMESPACE", "BulkHamperOrders"),
			IdempotencyTTL:   getEnvAsDuration("IDEMPOTENCY_TTL", 48*time.Hour),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", ""),
			DraftTTL: getEnvAsDuration("DRAFT_TTL", 2*time.Hour),
			LockTTL:  getEnvAsDuration("SUBMIT_LOCK_TTL", 30*time.Second),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
			Production:     getEnv("ENV", "") == "production",
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("BACKEND_BASE_URL is required")
	}
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return fmt.Errorf("BACKEND_BASE_URL must be an http(s) URL: %s", c.Backend.BaseURL)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}

	if c.AWS.IdempotencyTable == "" {
		return fmt.Errorf("IDEMPOTENCY_TABLE is required")
	}
	if c.AWS.IdempotencyTTL <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL must be positive")
	}

	if c.Redis.DraftTTL <= 0 || c.Redis.LockTTL <= 0 {
		return fmt.Errorf("DRAFT_TTL and SUBMIT_LOCK_TTL must be positive")
	}
	// the submit lock must outlive the order-creation call it guards
	if c.Redis.LockTTL <= c.Backend.Timeout {
		return fmt.Errorf("SUBMIT_LOCK_TTL (%s) must exceed BACKEND_TIMEOUT (%s)", c.Redis.LockTTL, c.Backend.Timeout)
	}

	if c.CORS.Production && len(c.CORS.AllowedOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS is required in production")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("90s") or a plain number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	secs, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return time.Duration(secs) * time.Second
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

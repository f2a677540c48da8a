package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel     OTelConfig
	Backend  BackendConfig
	Autosave AutosaveConfig
	Results  ResultsConfig
	Env      string
	Port     string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

// BackendConfig points the engine at the promotion backend that owns the
// durable event workspace.
type BackendConfig struct {
	BaseURL        string
	PublishTimeout time.Duration // generous: browser-automation delivery is slow
	ConfigTimeout  time.Duration // hard abort for global config loads
}

// AutosaveConfig controls the trailing-edge debounce windows for background
// persistence of local edits.
type AutosaveConfig struct {
	WorkspaceDelay  time.Duration
	ParsedDataDelay time.Duration
}

// ResultsConfig configures the optional Redis stream carrying per-platform
// delivery progress for a publish session. Disabled when URL is empty.
type ResultsConfig struct {
	RedisURL     string
	StreamPrefix string
	Block        time.Duration
}

// Load loads configuration from environment variables.
// In development it falls back to a .env file in the working directory.
func Load() (Config, error) {
	if getEnv("ENGINE_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:  getEnv("ENGINE_ENV", "development"),
		Port: getEnv("PORT", "8090"),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "promocast-engine"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Backend: BackendConfig{
			BaseURL:        getEnv("BACKEND_URL", "http://localhost:8000"),
			PublishTimeout: getEnvDuration("PUBLISH_TIMEOUT", 5*time.Minute),
			ConfigTimeout:  getEnvDuration("CONFIG_LOAD_TIMEOUT", 10*time.Second),
		},
		Autosave: AutosaveConfig{
			WorkspaceDelay:  getEnvDuration("AUTOSAVE_WORKSPACE_DELAY", 2000*time.Millisecond),
			ParsedDataDelay: getEnvDuration("AUTOSAVE_PARSED_DELAY", 1500*time.Millisecond),
		},
		Results: ResultsConfig{
			RedisURL:     getEnv("REDIS_URL", ""),
			StreamPrefix: getEnv("RESULTS_STREAM_PREFIX", "publish:results:"),
			Block:        getEnvDuration("RESULTS_STREAM_BLOCK", 5*time.Second),
		},
	}

	if cfg.Backend.BaseURL == "" {
		return Config{}, fmt.Errorf("BACKEND_URL is required")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c ResultsConfig) Enabled() bool {
	return c.RedisURL != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		// Bare numbers are treated as milliseconds for compatibility with
		// the dashboard's settings export.
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return fallback
}

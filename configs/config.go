package configs

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration, loaded from environment
// variables with the prefix "SCHEMALENS_".
type Config struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`

	// Ceilings applied to every outbound request an analyzer makes, and to
	// inbound request bodies.
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	MaxPayloadMB   int           `envconfig:"MAX_PAYLOAD_MB" default:"10"`

	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	ServerReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"5s"`
	ServerWriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ServerIdleTimeout  time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"120s"`

	OtelExporterOtlpEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterOtlpInsecure bool   `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Optional LLM-backed display name cleaning. Disabled when the URL is
	// empty; analysis output never depends on it.
	NamesAPIURL    string `envconfig:"NAMES_API_URL"`
	NamesAPIKey    string `envconfig:"NAMES_API_KEY"`
	NamesModel     string `envconfig:"NAMES_MODEL" default:"gpt-4o-mini"`
	NamesBatchSize int    `envconfig:"NAMES_BATCH_SIZE" default:"50"`
}

// ParsedLogLevel returns the slog.Level based on the configured LogLevel string.
func (c *Config) ParsedLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		fallthrough
	default:
		return slog.LevelInfo
	}
}

// MaxPayloadBytes converts the configured megabyte ceiling to bytes.
func (c *Config) MaxPayloadBytes() int64 {
	return int64(c.MaxPayloadMB) << 20
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("schemalens", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("SCHEMALENS_REQUEST_TIMEOUT must be positive, got %s", cfg.RequestTimeout)
	}
	if cfg.MaxPayloadMB <= 0 {
		return nil, fmt.Errorf("SCHEMALENS_MAX_PAYLOAD_MB must be positive, got %d", cfg.MaxPayloadMB)
	}
	return &cfg, nil
}

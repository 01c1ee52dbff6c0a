package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP      HTTPConfig
	Graph     GraphConfig
	Storage   StorageConfig
	Logging   LoggingConfig
	AI        AIConfig
	Limits    LimitsConfig
	Telemetry TelemetryConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host            string        `env:"SERVER_HOST"             envDefault:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT"             envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT"     envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT"    envDefault:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT"     envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MetricsEnabled  bool          `env:"SERVER_METRICS_ENABLED"  envDefault:"false"`
	AllowedOrigins  []string      `env:"SERVER_ALLOWED_ORIGINS"  envSeparator:","`
	TrustedProxies  []string      `env:"SERVER_TRUSTED_PROXIES"  envSeparator:","`
}

// GraphConfig describes connectivity to the Neo4j people graph. An empty URI
// disables the graph.
type GraphConfig struct {
	URI            string `env:"GRAPH_URI"`
	Database       string `env:"GRAPH_DATABASE"`
	Username       string `env:"GRAPH_USERNAME"`
	Password       string `env:"GRAPH_PASSWORD"`
	MaxConnections int    `env:"GRAPH_MAX_CONNECTIONS" envDefault:"10"`
}

// Enabled reports whether a graph URI is configured.
func (g GraphConfig) Enabled() bool {
	return strings.TrimSpace(g.URI) != ""
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	SQLitePath string `env:"STORAGE_SQLITE_PATH" envDefault:"data/astronum.db"`
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string `env:"LOG_LEVEL"          envDefault:"info"`
	Format        string `env:"LOG_FORMAT"         envDefault:"text"` // text|json
	Colored       bool   `env:"LOG_COLOR"          envDefault:"false"`
	IncludeCaller bool   `env:"LOG_INCLUDE_CALLER" envDefault:"false"`
}

// AIConfig configures the optional Gemini insight generator. Without an API
// key all commentary comes from templates.
type AIConfig struct {
	APIKey  string        `env:"AI_GENAI_API_KEY"`
	Model   string        `env:"AI_MODEL"   envDefault:"gemini-2.5-flash"`
	Timeout time.Duration `env:"AI_TIMEOUT" envDefault:"20s"`
}

// LimitsConfig sets the per-client rate limit and response cache lifetime.
type LimitsConfig struct {
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"120"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW"   envDefault:"1m"`
	CacheTTL          time.Duration `env:"CACHE_TTL"           envDefault:"5m"`
}

// TelemetryConfig controls OTLP trace export. Tracing stays off unless an
// endpoint is set.
type TelemetryConfig struct {
	Enabled     bool   `env:"OTEL_ENABLED"      envDefault:"true"`
	Endpoint    string `env:"OTEL_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"astronum"`
}

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv fills target from the environment.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c Config) validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.HTTP.Port)
	}
	if c.Graph.MaxConnections <= 0 {
		return fmt.Errorf("GRAPH_MAX_CONNECTIONS must be positive, got %d", c.Graph.MaxConnections)
	}
	if c.Limits.RateLimitRequests < 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must not be negative, got %d", c.Limits.RateLimitRequests)
	}
	if c.Limits.RateLimitRequests > 0 && c.Limits.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	GeminiAPIKey   string `env:"GEMINI_API_KEY"`
	ChatModel      string `env:"CHAT_MODEL" envDefault:"gemini-1.5-flash-latest"`
	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-004"`

	DatabaseURL string `env:"DATABASE_URL" envDefault:"yai_analytics.db"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"3000"`
	StaticDir   string `env:"STATIC_DIR" envDefault:"public"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"INFO"`
	Environment string `env:"ENVIRONMENT" envDefault:"production"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	TelemetryBuffer  int    `env:"TELEMETRY_BUFFER" envDefault:"256"`
	MetricsNamespace string `env:"METRICS_NAMESPACE" envDefault:"yai"`

	// Used by the terminal client.
	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:3000"`

	// DotEnvLoaded is set by Load when a .env file was read. Callers log it
	// once their logger exists.
	DotEnvLoaded bool
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	loaded := godotenv.Load() == nil
	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	cfg.DotEnvLoaded = loaded
	return cfg, nil
}

// Parse builds a Config from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.HTTPPort == "" {
		errs = append(errs, errors.New("HTTP_PORT must not be empty"))
	}
	if c.TelemetryBuffer <= 0 {
		errs = append(errs, fmt.Errorf("TELEMETRY_BUFFER must be positive, got %d", c.TelemetryBuffer))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}
	return errors.Join(errs...)
}

// AssistantEnabled reports whether a real model backs the assistant route.
func (c *Config) AssistantEnabled() bool {
	return c.GeminiAPIKey != ""
}

func (c *Config) Development() bool {
	return strings.EqualFold(c.Environment, "development")
}

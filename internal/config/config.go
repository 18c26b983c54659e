// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP servers
	Port        string
	MetricsPort string
	CORSOrigin  string
	BackendURL  string

	// Database
	DBPath string

	// Auth
	JWTSecret string
	JWTTTL    time.Duration

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Payment gateway
	MPAccessToken   string
	MPBaseURL       string
	MPWebhookSecret string
	Currency        string

	// Runtime
	Environment string
	LogLevel    string
	LogFormat   string
}

// Load reads a .env file if present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),
		CORSOrigin:  getEnv("CORS_ORIGIN", "*"),
		BackendURL:  getEnv("BACKEND_URL", "http://localhost:8080"),

		DBPath: getEnv("DB_PATH", "./data/settleup.db"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "settleup"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "payment_events"),

		MPAccessToken:   getEnv("MP_ACCESS_TOKEN", ""),
		MPBaseURL:       getEnv("MP_BASE_URL", "https://api.mercadopago.com"),
		MPWebhookSecret: getEnv("MP_WEBHOOK_SECRET", ""),
		Currency:        getEnv("CURRENCY", "ARS"),

		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
	}

	return cfg, nil
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Validate validates the configuration and returns an error listing every problem.
func (c *Config) Validate() error {
	var problems []string

	for name, port := range map[string]string{"PORT": c.Port, "METRICS_PORT": c.MetricsPort} {
		if p, err := strconv.Atoi(port); err != nil {
			problems = append(problems, fmt.Sprintf("invalid %s '%s': must be a number", name, port))
		} else if p < 1 || p > 65535 {
			problems = append(problems, fmt.Sprintf("invalid %s %d: must be between 1 and 65535", name, p))
		}
	}
	if c.Port == c.MetricsPort {
		problems = append(problems, "PORT and METRICS_PORT must differ")
	}

	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}

	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	} else if c.IsProduction() && len(c.JWTSecret) < 32 {
		problems = append(problems, "JWT_SECRET must be at least 32 characters in production")
	}
	if c.JWTTTL < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid JWT_TTL %v: must be at least 1 minute", c.JWTTTL))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP_URL: %v", err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP_URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP_EXCHANGE cannot be empty when AMQP_URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP_QUEUE cannot be empty when AMQP_URL is provided")
		}
	}

	for name, raw := range map[string]string{"BACKEND_URL": c.BackendURL, "MP_BASE_URL": c.MPBaseURL} {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			problems = append(problems, fmt.Sprintf("invalid %s '%s': must be an absolute URL", name, raw))
		}
	}

	if c.IsProduction() && c.MPAccessToken != "" && c.MPWebhookSecret == "" {
		problems = append(problems, "MP_WEBHOOK_SECRET is required in production when MP_ACCESS_TOKEN is set")
	}

	if len(c.Currency) != 3 {
		problems = append(problems, fmt.Sprintf("invalid CURRENCY '%s': must be a 3-letter code", c.Currency))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid LOG_FORMAT '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// LogValue hides secrets when the config is logged.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("port", c.Port),
		slog.String("metrics_port", c.MetricsPort),
		slog.String("db_path", c.DBPath),
		slog.String("environment", c.Environment),
		slog.Bool("amqp_enabled", c.AMQPURL != ""),
		slog.Bool("gateway_enabled", c.MPAccessToken != ""),
		slog.String("currency", c.Currency),
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

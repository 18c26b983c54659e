package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:        "8080",
		MetricsPort: "9090",
		BackendURL:  "http://localhost:8080",
		DBPath:      "./data/settleup.db",
		JWTSecret:   "dev-secret",
		JWTTTL:      time.Hour,
		MPBaseURL:   "https://api.mercadopago.com",
		Currency:    "ARS",
		Environment: "development",
		LogFormat:   "text",
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "x")
	for _, key := range []string{"PORT", "JWT_TTL", "CURRENCY", "AMQP_URL", "ENVIRONMENT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "ARS", cfg.Currency)
	assert.Empty(t, cfg.AMQPURL)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("METRICS_PORT=9191\nJWT_TTL=2h\n"), 0o600))
	// godotenv never overrides variables that are already set, even to "".
	for _, key := range []string{"METRICS_PORT", "JWT_TTL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9191", cfg.MetricsPort)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"bad port", func(c *Config) { c.Port = "http" }, "invalid PORT"},
		{"port out of range", func(c *Config) { c.MetricsPort = "70000" }, "invalid METRICS_PORT"},
		{"same ports", func(c *Config) { c.MetricsPort = c.Port }, "must differ"},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET is required"},
		{"short production secret", func(c *Config) { c.Environment = "production" }, "at least 32 characters"},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://broker" }, "must be 'amqp' or 'amqps'"},
		{"relative backend url", func(c *Config) { c.BackendURL = "/api" }, "invalid BACKEND_URL"},
		{"unsigned production webhooks", func(c *Config) {
			c.Environment = "production"
			c.JWTSecret = "0123456789abcdef0123456789abcdef"
			c.MPAccessToken = "token"
		}, "MP_WEBHOOK_SECRET is required"},
		{"bad currency", func(c *Config) { c.Currency = "PESOS" }, "invalid CURRENCY"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "invalid LOG_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		DatabaseURL:  "postgres://localhost/team_manager?sslmode=disable",
		JWTSecretKey: "secret",
		ServerPort:   8080,
		Worker:       WorkerConfig{PollInterval: 5 * time.Second, BatchSize: 10, Concurrency: 4},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		errMsg string
	}{
		{name: "valid", modify: func(c *Config) {}},
		{name: "no database", modify: func(c *Config) { c.DatabaseURL = "" }, errMsg: "DATABASE_URL"},
		{name: "no secret", modify: func(c *Config) { c.JWTSecretKey = "" }, errMsg: "JWT_SECRET_KEY"},
		{name: "bad port", modify: func(c *Config) { c.ServerPort = 70000 }, errMsg: "SERVER_PORT"},
		{name: "partial r2", modify: func(c *Config) { c.R2.AccountID = "acc" }, errMsg: "R2_BUCKET_NAME"},
		{name: "zero interval", modify: func(c *Config) { c.Worker.PollInterval = 0 }, errMsg: "WORKER_POLL_INTERVAL"},
		{name: "zero concurrency", modify: func(c *Config) { c.Worker.Concurrency = 0 }, errMsg: "WORKER_CONCURRENCY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db/tm")
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("WORKER_POLL_INTERVAL", "2s")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 2*time.Second, cfg.Worker.PollInterval)
	assert.Equal(t, 10, cfg.Worker.BatchSize)
	assert.Equal(t, 5*time.Minute, cfg.Worker.JobLease)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "team-manager:jobs", cfg.Redis.Channel)
	assert.False(t, cfg.R2.Enabled())
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, (&Config{LogLevel: "DEBUG"}).SlogLevel())
	assert.Equal(t, slog.LevelWarn, (&Config{LogLevel: "warning"}).SlogLevel())
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: ""}).SlogLevel())
}

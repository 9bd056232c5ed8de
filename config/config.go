package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string   `env:"DATABASE_URL"`
	JWTSecretKey string   `env:"JWT_SECRET_KEY"`
	ServerPort   int      `env:"SERVER_PORT" env-default:"8080"`
	LogLevel     string   `env:"LOG_LEVEL" env-default:"info"`
	CORSOrigins  []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`

	R2     R2Config
	Redis  RedisConfig
	Worker WorkerConfig
}

// R2Config описывает архив финальных отчётов. Пустой AccountID отключает архив.
type R2Config struct {
	AccountID       string `env:"R2_ACCOUNT_ID"`
	AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	BucketName      string `env:"R2_BUCKET_NAME"`
	PublicBaseURL   string `env:"R2_PUBLIC_BASE_URL"`
}

func (c R2Config) Enabled() bool {
	return c.AccountID != ""
}

// RedisConfig: без адреса воркер работает только на опросе БД.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
	Channel  string `env:"REDIS_JOBS_CHANNEL" env-default:"team-manager:jobs"`
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type WorkerConfig struct {
	PollInterval time.Duration `env:"WORKER_POLL_INTERVAL" env-default:"5s"`
	BatchSize    int           `env:"WORKER_BATCH_SIZE" env-default:"10"`
	Concurrency  int           `env:"WORKER_CONCURRENCY" env-default:"4"`
	// JobLease is how long a claimed job may stay in processing before another worker reclaims it.
	JobLease time.Duration `env:"WORKER_JOB_LEASE" env-default:"5m"`
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable is not set")
	}
	if c.JWTSecretKey == "" {
		return errors.New("JWT_SECRET_KEY environment variable is not set")
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if c.R2.Enabled() && (c.R2.AccessKeyID == "" || c.R2.SecretAccessKey == "" || c.R2.BucketName == "") {
		return errors.New("R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY and R2_BUCKET_NAME are required when R2_ACCOUNT_ID is set")
	}
	if c.Worker.PollInterval <= 0 {
		return fmt.Errorf("WORKER_POLL_INTERVAL must be positive, got %s", c.Worker.PollInterval)
	}
	if c.Worker.BatchSize <= 0 || c.Worker.Concurrency <= 0 {
		return errors.New("WORKER_BATCH_SIZE and WORKER_CONCURRENCY must be positive")
	}
	return nil
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

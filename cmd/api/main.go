package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/team-manager/config"
	"github.com/Dosada05/team-manager/db"
	"github.com/Dosada05/team-manager/handlers"
	"github.com/Dosada05/team-manager/metrics"
	"github.com/Dosada05/team-manager/notify"
	"github.com/Dosada05/team-manager/realtime"
	"github.com/Dosada05/team-manager/repositories"
	api "github.com/Dosada05/team-manager/routes"
	"github.com/Dosada05/team-manager/services"
	"github.com/Dosada05/team-manager/storage"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	if err := run(cfg, logger); err != nil {
		logger.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelMigrate()
	if err := db.Migrate(migrateCtx, dbConn); err != nil {
		return err
	}
	logger.Info("database schema applied")

	collector := metrics.NewCollector()

	// Архив финальных отчётов (Cloudflare R2), опционально
	var archiver services.ReportArchiver
	if cfg.R2.Enabled() {
		uploader, err := storage.NewCloudflareR2Uploader(context.Background(), storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		archiver = storage.NewReportArchiver(uploader, logger)
		logger.Info("Cloudflare R2 report archive enabled", slog.String("bucket", cfg.R2.BucketName))
	}

	// Уведомления воркера через Redis, опционально
	var notifier services.JobNotifier
	if cfg.Redis.Enabled() {
		redisClient := notify.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("failed to close redis client", slog.Any("error", err))
			}
		}()
		notifier = notify.NewRedisNotifier(redisClient, cfg.Redis.Channel, logger)
		logger.Info("redis job notifications enabled", slog.String("channel", cfg.Redis.Channel))
	}

	// Инициализация WebSocket Hub
	hubDone := make(chan struct{})
	defer close(hubDone)
	wsHub := realtime.NewHub(logger)
	go wsHub.Run(hubDone)

	// Инициализация репозиториев
	txManager := repositories.NewTxManager(dbConn, logger)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)
	rosterRepo := repositories.NewPostgresRosterRepository(dbConn)
	cardRepo := repositories.NewPostgresCardRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	jobRepo := repositories.NewPostgresJobRepository(dbConn)
	statRepo := repositories.NewPostgresPlayerMatchStatRepository(dbConn)

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	gameService := services.NewGameService(txManager, gameRepo, rosterRepo, archiver, wsHub, collector, logger)
	cardService := services.NewCardService(txManager, gameRepo, cardRepo, playerRepo, jobRepo, notifier, wsHub, collector, logger)
	jobService := services.NewJobService(jobRepo)
	statsService := services.NewStatsService(txManager, gameRepo, rosterRepo, cardRepo, statRepo, logger)

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Options{
		JWTSecret:      []byte(cfg.JWTSecretKey),
		AllowedOrigins: cfg.CORSOrigins,
		Logger:         logger,
		Metrics:        collector.Handler(),
	}, api.Handlers{
		Auth:      handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Game:      handlers.NewGameHandler(gameService),
		Card:      handlers.NewCardHandler(cardService),
		Job:       handlers.NewJobHandler(jobService),
		Stats:     handlers.NewStatsHandler(statsService),
		WebSocket: handlers.NewWebSocketHandler(wsHub, gameService, cfg.CORSOrigins, logger),
		Health:    handlers.NewHealthHandler(dbConn),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
	}
	return nil
}

package main

import (
	"context"
	"database/sql"
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
	"github.com/Dosada05/team-manager/metrics"
	"github.com/Dosada05/team-manager/models"
	"github.com/Dosada05/team-manager/notify"
	"github.com/Dosada05/team-manager/repositories"
	"github.com/Dosada05/team-manager/services"
	"github.com/Dosada05/team-manager/worker"
	"github.com/spf13/cobra"
)

func newStatsService(dbConn *sql.DB, logger *slog.Logger) services.StatsService {
	return services.NewStatsService(
		repositories.NewTxManager(dbConn, logger),
		repositories.NewPostgresGameRepository(dbConn),
		repositories.NewPostgresRosterRepository(dbConn),
		repositories.NewPostgresCardRepository(dbConn),
		repositories.NewPostgresPlayerMatchStatRepository(dbConn),
		logger,
	)
}

func main() {
	if err := buildCLI().Execute(); err != nil {
		os.Exit(1)
	}
}

func buildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "team-manager-worker",
		Short:        "Background job consumer for team-manager",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(buildRunCommand())
	rootCmd.AddCommand(buildRecalcCommand())
	return rootCmd
}

type runFlags struct {
	interval    time.Duration
	batch       int
	concurrency int
	metricsAddr string
	once        bool
}

func buildRunCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Claim and process pending jobs until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("interval") {
				flags.interval = cfg.Worker.PollInterval
			}
			if !cmd.Flags().Changed("batch") {
				flags.batch = cfg.Worker.BatchSize
			}
			if !cmd.Flags().Changed("concurrency") {
				flags.concurrency = cfg.Worker.Concurrency
			}
			return runWorker(cmd.Context(), cfg, logger, flags)
		},
	}

	cmd.Flags().DurationVar(&flags.interval, "interval", 5*time.Second, "poll interval")
	cmd.Flags().IntVar(&flags.batch, "batch", 10, "max jobs claimed per poll")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", 4, "jobs processed in parallel")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", ":9090", "address of the /metrics endpoint, empty disables it")
	cmd.Flags().BoolVar(&flags.once, "once", false, "process pending jobs once and exit")
	return cmd
}

// recalc пересчитывает минуты одной игры без очереди (ручной запуск).
func buildRecalcCommand() *cobra.Command {
	var gameID int

	cmd := &cobra.Command{
		Use:   "recalc-minutes",
		Short: "Recalculate minutes played for one game",
		RunE: func(cmd *cobra.Command, args []string) error {
			if gameID <= 0 {
				return fmt.Errorf("--game must be a positive game id")
			}
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
			if err != nil {
				return err
			}
			defer dbConn.Close()

			stats, err := newStatsService(dbConn, logger).RecalculateMinutes(cmd.Context(), gameID)
			if err != nil {
				return err
			}
			for _, s := range stats {
				fmt.Fprintf(cmd.OutOrStdout(), "player %d: %d min\n", s.PlayerID, s.MinutesPlayed)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&gameID, "game", 0, "game id")
	return cmd
}

func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func runWorker(parent context.Context, cfg *config.Config, logger *slog.Logger, flags runFlags) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	collector := metrics.NewCollector()
	if flags.metricsAddr != "" {
		metricsServer := &http.Server{Addr: flags.metricsAddr, Handler: collector.Handler()}
		go func() {
			logger.Info("starting metrics server", slog.String("address", flags.metricsAddr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", slog.Any("error", err))
			}
		}()
		defer metricsServer.Close()
	}

	processor := worker.NewProcessor(repositories.NewPostgresJobRepository(dbConn), collector, logger, worker.Options{
		BatchSize:   flags.batch,
		Concurrency: flags.concurrency,
		Lease:       cfg.Worker.JobLease,
	})
	processor.Register(models.JobTypeRecalcMinutes, worker.RecalcMinutesHandler(newStatsService(dbConn, logger)))

	if flags.once {
		_, err := processor.ProcessBatch(ctx)
		return err
	}

	var wake <-chan struct{}
	if cfg.Redis.Enabled() {
		redisClient := notify.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer redisClient.Close()
		notifier := notify.NewRedisNotifier(redisClient, cfg.Redis.Channel, logger)
		if err := notifier.Ping(ctx); err != nil {
			logger.Warn("redis unavailable, falling back to polling only", slog.Any("error", err))
		} else {
			wake = notifier.Subscribe(ctx)
		}
	}

	return processor.Run(ctx, flags.interval, wake)
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-task-auth/internal/config"
	"github.com/goliatone/go-task-auth/internal/logging"
	"github.com/goliatone/go-task-auth/internal/observability"
	"github.com/goliatone/go-task-auth/internal/persistence"
	"github.com/goliatone/go-task-auth/internal/server"
	"github.com/goliatone/go-task-auth/notify"
	"github.com/goliatone/go-task-auth/storage"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API. Pending migrations are applied first unless
AUTO_MIGRATE=false.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	logger := logging.Setup("taskd", version, cfg.LogFormat, cfg.LogLevel, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Addr())
		errCh <- app.App.Listen(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return oops.Code("SERVER_FAILED").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := app.App.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}
	return nil
}

// build opens the collaborators described by cfg and assembles the server.
// cleanup releases them in reverse order.
func build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*server.Server, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	db, target, err := persistence.Open(ctx, cfg.DatabaseURL, persistence.Options{Retries: cfg.DBRetries})
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, func() {
		if err := db.Close(); err != nil {
			logger.Warn("database close failed", "error", err)
		}
	})
	logger.Info("database connected", "dialect", target.Dialect)

	if cfg.AutoMigrate {
		applied, err := persistence.Migrate(ctx, db, target.Dialect)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		logger.Info("migrations applied", "count", applied)
	}

	objects, err := objectStore(ctx, cfg)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	next, err := transport(cfg, logger)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	notifier := notify.NewAsync(next, notify.WithLogger(logger))
	closers = append(closers, notifier.Close)

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	srv := server.New(server.Deps{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Objects:  objects,
		Notifier: notifier,
		Metrics:  metrics,
	})
	return srv, cleanup, nil
}

func objectStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if !cfg.S3.Enabled() {
		return storage.NewMemoryStore(), nil
	}
	return storage.NewS3Store(ctx, storage.S3Config{
		Bucket:    cfg.S3.Bucket,
		Region:    cfg.S3.Region,
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
	})
}

func transport(cfg config.Config, logger *slog.Logger) (notify.Notifier, error) {
	if !cfg.SMTP.Enabled() {
		logger.Warn("SMTP not configured, account emails will only be logged")
		return notify.LogNotifier{Logger: logger}, nil
	}
	m, err := notify.NewMailer(notify.MailerConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

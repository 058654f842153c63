package main

import (
	"context"
	"errors"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-task-auth/internal/config"
	"github.com/goliatone/go-task-auth/internal/persistence"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE:  runMigrateUp,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show which migrations have been applied",
		RunE:  runMigrateStatus,
	})

	return cmd
}

var errNoDatabase = errors.New("DATABASE_URL environment variable is required")

type persistenceHandle struct {
	db      *bun.DB
	dialect string
}

func (h *persistenceHandle) Close() {
	_ = h.db.Close()
}

func openForMigrate(ctx context.Context) (*persistenceHandle, error) {
	var cfg config.Config
	if err := config.ParseEnv(&cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if cfg.DatabaseURL == "" {
		return nil, oops.Code("CONFIG_INVALID").Wrap(errNoDatabase)
	}

	db, target, err := persistence.Open(ctx, cfg.DatabaseURL, persistence.Options{Retries: cfg.DBRetries})
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	return &persistenceHandle{db: db, dialect: target.Dialect}, nil
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cmd.Println("Connecting to database...")
	h, err := openForMigrate(ctx)
	if err != nil {
		return err
	}
	defer h.Close()

	cmd.Println("Running migrations...")
	applied, err := persistence.Migrate(ctx, h.db, h.dialect)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}

	cmd.Printf("Applied %d migration(s)\n", applied)
	return nil
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	h, err := openForMigrate(ctx)
	if err != nil {
		return err
	}
	defer h.Close()

	statuses, err := persistence.Status(ctx, h.db, h.dialect)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "read status").Wrap(err)
	}

	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		cmd.Printf("%05d %-8s %s\n", s.Version, state, s.Source)
	}
	return nil
}

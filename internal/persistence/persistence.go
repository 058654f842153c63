// Package persistence opens the relational store and applies migrations.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/goliatone/go-task-auth"
)

// Supported dialects
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// Target is a parsed DATABASE_URL
type Target struct {
	Dialect string
	DSN     string
	Memory  bool
}

// ParseURL resolves the dialect and driver DSN for a DATABASE_URL.
// Accepted forms: postgres://, postgresql://, sqlite://<path>, file:<path>
// and :memory:.
func ParseURL(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return Target{}, oops.Code("CONFIG_INVALID").Errorf("database url is empty")
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return Target{Dialect: DialectPostgres, DSN: raw}, nil
	case strings.HasPrefix(raw, "sqlite://"):
		return sqliteTarget(strings.TrimPrefix(raw, "sqlite://")), nil
	case strings.HasPrefix(raw, "file:"), raw == ":memory:":
		return sqliteTarget(raw), nil
	}
	return Target{}, oops.Code("CONFIG_INVALID").With("url", redact(raw)).Errorf("unsupported database url")
}

func sqliteTarget(path string) Target {
	if path == ":memory:" || path == "" {
		return Target{Dialect: DialectSQLite, DSN: "file::memory:?cache=shared", Memory: true}
	}
	memory := strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory")
	return Target{Dialect: DialectSQLite, DSN: path, Memory: memory}
}

func redact(raw string) string {
	if i := strings.Index(raw, "@"); i > 0 {
		if j := strings.Index(raw, "://"); j > 0 && j < i {
			return raw[:j+3] + "***" + raw[i:]
		}
	}
	return raw
}

// Options tune Open
type Options struct {
	// Retries is how many extra ping attempts are made before giving up
	Retries uint64
	// RetryBase is the first backoff delay
	RetryBase time.Duration
}

// Open connects to the database named by rawURL and waits until it answers
func Open(ctx context.Context, rawURL string, opts Options) (*bun.DB, Target, error) {
	target, err := ParseURL(rawURL)
	if err != nil {
		return nil, Target{}, err
	}

	var db *bun.DB
	switch target.Dialect {
	case DialectPostgres:
		sqldb, err := sql.Open("pgx", target.DSN)
		if err != nil {
			return nil, target, oops.Code("DB_CONNECT_FAILED").Wrap(err)
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		sqldb, err := sql.Open(sqliteshim.ShimName, target.DSN)
		if err != nil {
			return nil, target, oops.Code("DB_CONNECT_FAILED").Wrap(err)
		}
		if target.Memory {
			sqldb.SetMaxOpenConns(1)
		}
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}

	if err := ping(ctx, db, opts); err != nil {
		_ = db.Close()
		return nil, target, oops.Code("DB_CONNECT_FAILED").With("dialect", target.Dialect).Wrap(err)
	}

	return db, target, nil
}

func ping(ctx context.Context, db *bun.DB, opts Options) error {
	base := opts.RetryBase
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	backoff := retry.WithMaxRetries(opts.Retries, retry.NewExponential(base))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func gooseDialect(dialect string) (goose.Dialect, error) {
	switch dialect {
	case DialectPostgres:
		return goose.DialectPostgres, nil
	case DialectSQLite:
		return goose.DialectSQLite3, nil
	}
	return "", fmt.Errorf("unsupported dialect %q", dialect)
}

func newProvider(db *bun.DB, dialect string) (*goose.Provider, error) {
	gd, err := gooseDialect(dialect)
	if err != nil {
		return nil, oops.Code("MIGRATION_FAILED").Wrap(err)
	}

	fsys, err := auth.DialectMigrationsFS(dialect)
	if err != nil {
		return nil, oops.Code("MIGRATION_FAILED").Wrap(err)
	}

	provider, err := goose.NewProvider(gd, db.DB, fsys)
	if err != nil {
		return nil, oops.Code("MIGRATION_FAILED").With("dialect", dialect).Wrap(err)
	}
	return provider, nil
}

// Migrate applies every pending migration and returns how many ran
func Migrate(ctx context.Context, db *bun.DB, dialect string) (int, error) {
	provider, err := newProvider(db, dialect)
	if err != nil {
		return 0, err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return len(results), oops.Code("MIGRATION_FAILED").With("dialect", dialect).Wrap(err)
	}
	return len(results), nil
}

// MigrationStatus describes one migration
type MigrationStatus struct {
	Version int64
	Source  string
	Applied bool
}

// Status lists the known migrations and whether they were applied
func Status(ctx context.Context, db *bun.DB, dialect string) ([]MigrationStatus, error) {
	provider, err := newProvider(db, dialect)
	if err != nil {
		return nil, err
	}

	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, oops.Code("MIGRATION_FAILED").With("dialect", dialect).Wrap(err)
	}

	out := make([]MigrationStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, MigrationStatus{
			Version: s.Source.Version,
			Source:  s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}

package database

import (
	"context"
	"database/sql"
	_ "embed"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/mdobak/go-xerrors"
)

//go:embed schema.sql
var schema string

type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// Open connects to PostgreSQL and verifies the connection with a ping.
func Open(ctx context.Context, opts Options, log *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", opts.DSN)
	if err != nil {
		return nil, xerrors.New(err)
	}

	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, xerrors.Newf("ping database: %w", err)
	}

	log.Debug("database connection pool ready",
		slog.Int("max_open_conns", opts.MaxOpenConns),
		slog.Int("max_idle_conns", opts.MaxIdleConns))
	return db, nil
}

// Migrate creates the tables and indexes that do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return xerrors.Newf("apply schema: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Config struct {
	DSN         string
	DialTimeout time.Duration
}

const schemaDDL = `CREATE TABLE IF NOT EXISTS extract_job (
	id            TEXT PRIMARY KEY,
	model_id      TEXT NOT NULL,
	document_url  TEXT NOT NULL,
	locale        TEXT NOT NULL,
	status        TEXT NOT NULL,
	document_count INTEGER,
	output_path   TEXT,
	error_message TEXT,
	started_at    TEXT NOT NULL,
	finished_at   TEXT
)`

// DriverFor picks the database/sql driver for dsn: pgx for postgres URLs, sqlite otherwise.
func DriverFor(dsn string) string {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return "pgx"
	}
	return "sqlite"
}

// Open connects to the run-history database and makes sure the schema exists.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	driver := DriverFor(cfg.DSN)
	logger.Info("connecting to database", "driver", driver)

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// one writer; also keeps ":memory:" databases on a single connection
		db.SetMaxOpenConns(1)
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		logger.Error("failed to connect to database", "error", err)
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("successfully connected to database", "driver", driver)
	return db, nil
}

// EnsureSchema creates the extract_job table when it is missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the database connections gracefully
func Close(db *sql.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
		return
	}
	logger.Info("database connections closed")
}

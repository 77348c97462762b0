// Package store provides the SQLite-backed task store.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/tmgr/internal/apperr"
)

// MemoryLocation is reported by stores opened with OpenTest.
const MemoryLocation = ":memory:"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS tasks (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	priority       TEXT NOT NULL,
	description    TEXT,
	work_note_path TEXT,
	created_at     TEXT NOT NULL,
	completed_at   TEXT
);

CREATE INDEX IF NOT EXISTS idx_tasks_completed_at ON tasks(completed_at);
`

// DB wraps a sqlx.DB with task-specific operations.
type DB struct {
	conn     *sqlx.DB
	location string
	logger   *slog.Logger
}

// OpenProduction opens (or creates) the store file in dir, defaulting to the
// executable's directory.
func OpenProduction(ctx context.Context, dir, name string, logger *slog.Logger) (*DB, error) {
	path, err := FilePath(dir, name)
	if err != nil {
		return nil, err
	}
	return open(ctx, path+"?_journal_mode=WAL&_busy_timeout=5000", path, logger)
}

// OpenTest opens an ephemeral in-memory store with the same schema.
func OpenTest(ctx context.Context) (*DB, error) {
	return open(ctx, MemoryLocation, MemoryLocation, slog.New(slog.DiscardHandler))
}

func open(ctx context.Context, dsn, location string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, apperr.Wrapf(layer, KindDatabase, err, "open %s", location)
	}
	// One connection keeps an in-memory database alive and shared.
	conn.SetMaxOpenConns(1)
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, apperr.Wrapf(layer, KindDatabase, err, "connect %s", location)
	}
	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		conn.Close()
		return nil, apperr.Wrapf(layer, KindDatabase, err, "apply schema")
	}
	logger.Debug("store: opened", slog.String("location", location))
	return &DB{conn: conn, location: location, logger: logger}, nil
}

// Location returns the store file path, or MemoryLocation.
func (db *DB) Location() string {
	return db.location
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}

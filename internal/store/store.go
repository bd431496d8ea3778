// Package store persists the contact directory and scheduled tasks in sqlite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nadzzz/vaani/internal/store/migrations"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// DB wraps the sqlite handle.
type DB struct {
	*sql.DB
	now func() time.Time
}

// New opens (or creates) the database at path and applies pending
// migrations. Use ":memory:" for a throwaway database.
func New(ctx context.Context, path string) (*DB, error) {
	// WAL for concurrent readers, a busy timeout to wait instead of failing.
	dsn := path + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if err := migrations.Run(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &DB{DB: db, now: time.Now}, nil
}

// Close closes the underlying handle.
func (d *DB) Close() error {
	return d.DB.Close()
}

// timestamp returns the current time in UTC. Stored times are always UTC so
// that lexical comparison in SQL matches chronological order.
func (d *DB) timestamp() time.Time {
	return d.now().UTC()
}

type scanner interface {
	Scan(dest ...any) error
}

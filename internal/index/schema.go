// Package index provides the SQLite-backed catalog of launchable items.
package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/swiftfind/swiftfind/internal/apperr"
)

// schemaVersion is tracked in the SQLite user_version pragma. Migrations
// apply in order and bump it monotonically.
const schemaVersion = 2

var migrations = []string{
	// v1: base catalog table.
	`CREATE TABLE IF NOT EXISTS item (
		id    TEXT PRIMARY KEY,
		kind  TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		path  TEXT NOT NULL DEFAULT ''
	);`,
	// v2: usage telemetry columns and the meta table.
	`ALTER TABLE item ADD COLUMN use_count INTEGER NOT NULL DEFAULT 0;
	ALTER TABLE item ADD COLUMN last_accessed_epoch_secs INTEGER NOT NULL DEFAULT 0;
	CREATE TABLE IF NOT EXISTS index_meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL DEFAULT ''
	);`,
}

// DB wraps a sql.DB with catalog-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the catalog database at path, creating parent
// directories as needed, and applies pending migrations.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create db dir: %v", apperr.ErrStore, err)
		}
	}
	return open(path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
}

// OpenMemory opens a fresh in-memory catalog.
func OpenMemory() (*DB, error) {
	return open(":memory:")
}

func open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open db: %v", apperr.ErrStore, err)
	}
	// An in-memory SQLite database exists per connection; pin the pool to
	// one so every statement sees the same database.
	if dsn == ":memory:" {
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: ping: %v", apperr.ErrStore, err)
	}
	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &DB{conn: conn}, nil
}

// migrate applies migrations above the current user_version inside
// transactions, bumping the version after each step.
func migrate(conn *sql.DB) error {
	var current int
	if err := conn.QueryRow(`PRAGMA user_version`).Scan(&current); err != nil {
		return fmt.Errorf("%w: read user_version: %v", apperr.ErrStore, err)
	}
	for v := current; v < schemaVersion; v++ {
		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("%w: begin migration tx: %v", apperr.ErrStore, err)
		}
		if _, err := tx.Exec(migrations[v]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("%w: migrate to v%d: %v", apperr.ErrStore, v+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, v+1)); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("%w: bump user_version: %v", apperr.ErrStore, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("%w: commit migration: %v", apperr.ErrStore, err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

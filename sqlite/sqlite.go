// Package sqlite persists the content store of previously extracted pages
// and the history of runs.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// migrations are applied in order. The schema version is the number of
// applied migrations, kept in PRAGMA user_version.
var migrations = []string{
	`CREATE TABLE runs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		pages INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX idx_runs_source ON runs(source, finished_at);

	CREATE TABLE pages (
		source TEXT NOT NULL,
		canonical_url TEXT NOT NULL,
		url TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		raw_text TEXT NOT NULL DEFAULT '',
		source_type TEXT NOT NULL DEFAULT 'docs',
		depth INTEGER NOT NULL DEFAULT 0,
		content_hash TEXT NOT NULL,
		discovered_at TEXT NOT NULL,
		run_id TEXT NOT NULL REFERENCES runs(id),
		PRIMARY KEY (source, canonical_url)
	);`,
}

// SchemaVersion is the schema version Open migrates to.
var SchemaVersion = len(migrations)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database and migrates it to SchemaVersion.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time.
	conn.SetMaxOpenConns(1)

	pragmas := []string{"busy_timeout = 5000", "foreign_keys = ON"}
	if db.path != ":memory:" {
		pragmas = append(pragmas, "journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := conn.Exec("PRAGMA " + p); err != nil {
			conn.Close()
			return fmt.Errorf("failed to set %s: %w", p, err)
		}
	}

	db.db = conn
	if err := db.migrate(); err != nil {
		conn.Close()
		db.db = nil
		return err
	}
	return nil
}

// migrate applies the migrations newer than the stored schema version, each
// in its own transaction.
func (db *DB) migrate() error {
	var version int
	if err := db.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > len(migrations) {
		return fmt.Errorf("schema version %d is newer than supported version %d", version, len(migrations))
	}

	for i := version; i < len(migrations); i++ {
		tx, err := db.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", i+1, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, nil)
}

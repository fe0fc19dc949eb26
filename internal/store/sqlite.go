// Package store archives ended session transcripts in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure-Go driver, registers "sqlite"

	"github.com/soyeahso/agentdesk/internal/logging"
)

// MemoryPath opens a private in-memory archive.
const MemoryPath = ":memory:"

// Pragmas applied to every pooled connection through the DSN.
var connPragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

const migrateTimeout = 30 * time.Second

// DB is an open transcript archive with its schema migrated.
type DB struct {
	sql  *sql.DB
	path string
	log  *logging.Logger
}

// Open opens or creates the archive at path and applies pending
// migrations. The parent directory is created if needed.
func Open(path string, log *logging.Logger) (*DB, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	if path == MemoryPath {
		// Each connection to :memory: would be a separate database.
		sqlDB.SetMaxOpenConns(1)
	}

	db := &DB{sql: sqlDB, path: path, log: log.Sub("store")}

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()
	if err := db.migrate(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}

	db.log.Debug().Str("path", path).Msg("archive opened")
	return db, nil
}

func dsn(path string) string {
	q := url.Values{}
	for _, p := range connPragmas {
		q.Add("_pragma", p)
	}
	return path + "?" + q.Encode()
}

// Close closes the database.
func (db *DB) Close() error {
	db.log.Debug().Str("path", db.path).Msg("closing archive")
	return db.sql.Close()
}

// SQL exposes the underlying handle.
func (db *DB) SQL() *sql.DB {
	return db.sql
}

// migrate applies, in order, every migration whose version is not yet
// recorded in schema_migrations. Each runs in its own transaction.
func (db *DB) migrate(ctx context.Context) error {
	if _, err := db.sql.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	applied, err := db.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := db.apply(ctx, m); err != nil {
			return err
		}
		db.log.Info().Int("version", m.Version).Str("name", m.Name).Msg("applied migration")
	}
	return nil
}

func (db *DB) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := db.sql.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("reading migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func (db *DB) apply(ctx context.Context, m migration) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration %d: %w", m.Version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, m.Version); err != nil {
		return fmt.Errorf("recording migration %d: %w", m.Version, err)
	}
	return tx.Commit()
}

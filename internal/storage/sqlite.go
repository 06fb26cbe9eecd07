package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentSchemaVersion = 1

// SQLiteBackend implements Backend using a SQLite database.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// NewSQLiteBackend opens (and migrates) the database at path.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection serializes writers inside this process.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	b := &SQLiteBackend{db: db, path: path}
	if err := b.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

// Path returns the database file path.
func (b *SQLiteBackend) Path() string {
	return b.path
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// migrate runs database migrations.
func (b *SQLiteBackend) migrate() error {
	var version int
	err := b.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	if version < 1 {
		if err := b.migrateV1(); err != nil {
			return err
		}
	}
	return nil
}

// migrateV1 creates the key-value schema.
func (b *SQLiteBackend) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY NOT NULL,
			value BLOB NOT NULL,
			updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS state_version (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			version INTEGER NOT NULL
		);

		INSERT OR IGNORE INTO state_version (id, version) VALUES (1, 0);
		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := b.db.Exec(schema)
	return err
}

func (b *SQLiteBackend) Get(ctx context.Context, keys []string) (Record, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, err
	}
	defer tx.Rollback()

	rec := Record{Values: make(map[string][]byte, len(keys))}
	if err := tx.QueryRowContext(ctx, "SELECT version FROM state_version WHERE id = 1").Scan(&rec.Version); err != nil {
		return Record{}, err
	}

	for _, k := range keys {
		var v []byte
		err := tx.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", k).Scan(&v)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return Record{}, err
		}
		rec.Values[k] = v
	}
	return rec, tx.Commit()
}

// Put writes all values in one transaction. The version row is bumped
// first so a concurrent writer blocks on it until this one commits.
func (b *SQLiteBackend) Put(ctx context.Context, values map[string][]byte, ifVersion int64) (int64, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	version, err := bumpVersion(ctx, tx,
		"UPDATE state_version SET version = version + 1 WHERE id = 1 RETURNING version",
		"UPDATE state_version SET version = version + 1 WHERE id = 1 AND version = ? RETURNING version",
		"SELECT version FROM state_version WHERE id = 1",
		ifVersion)
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for k, v := range values {
		if _, err := stmt.ExecContext(ctx, k, v); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return version, nil
}

// bumpVersion increments the version row inside tx, conditionally unless
// ifVersion is AnyVersion, and returns the new version.
func bumpVersion(ctx context.Context, tx *sql.Tx, anyQuery, ifQuery, currentQuery string, ifVersion int64) (int64, error) {
	var version int64
	var err error
	if ifVersion == AnyVersion {
		err = tx.QueryRowContext(ctx, anyQuery).Scan(&version)
	} else {
		err = tx.QueryRowContext(ctx, ifQuery, ifVersion).Scan(&version)
	}
	if errors.Is(err, sql.ErrNoRows) {
		var current int64
		if err := tx.QueryRowContext(ctx, currentQuery).Scan(&current); err != nil {
			return 0, err
		}
		return 0, &StaleWriteError{Expected: ifVersion, Actual: current}
	}
	return version, err
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"
)

const (
	postgresTablePrefix      = "shelf"
	postgresOperationTimeout = 5 * time.Second
)

// ErrInvalidDSN is returned for an empty or unusable storage DSN.
var ErrInvalidDSN = errors.New("invalid storage dsn")

// PostgresBackend implements Backend on two Postgres tables: one row per
// key and a single version row that writers lock.
type PostgresBackend struct {
	dsn    string
	prefix string

	initOnce sync.Once
	initErr  error
	db       *sql.DB
}

// NewPostgresBackend returns a backend for dsn. The connection is opened
// and the tables are created on first use.
func NewPostgresBackend(dsn string) (*PostgresBackend, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, ErrInvalidDSN
	}
	return &PostgresBackend{dsn: dsn, prefix: postgresTablePrefix}, nil
}

// WithTablePrefix returns b using tables named <prefix>_kv and <prefix>_version.
func (b *PostgresBackend) WithTablePrefix(prefix string) *PostgresBackend {
	b.prefix = prefix
	return b
}

func (b *PostgresBackend) kvTable() string {
	return postgresQuoteIdentifier(b.prefix + "_kv")
}

func (b *PostgresBackend) versionTable() string {
	return postgresQuoteIdentifier(b.prefix + "_version")
}

// TableNames returns the tables this backend uses.
func (b *PostgresBackend) TableNames() []string {
	return []string{b.prefix + "_kv", b.prefix + "_version"}
}

func (b *PostgresBackend) Get(ctx context.Context, keys []string) (Record, error) {
	if err := b.ensureReady(ctx); err != nil {
		return Record{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, postgresOperationTimeout)
	defer cancel()

	tx, err := b.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return Record{}, err
	}
	defer tx.Rollback()

	rec := Record{Values: make(map[string][]byte, len(keys))}
	query := fmt.Sprintf("SELECT version FROM %s WHERE id = 1", b.versionTable())
	if err := tx.QueryRowContext(ctx, query).Scan(&rec.Version); err != nil {
		return Record{}, err
	}

	query = fmt.Sprintf("SELECT value FROM %s WHERE key = $1", b.kvTable())
	for _, k := range keys {
		var v []byte
		err := tx.QueryRowContext(ctx, query, k).Scan(&v)
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

func (b *PostgresBackend) Put(ctx context.Context, values map[string][]byte, ifVersion int64) (int64, error) {
	if err := b.ensureReady(ctx); err != nil {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, postgresOperationTimeout)
	defer cancel()

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	vt := b.versionTable()
	version, err := bumpVersion(ctx, tx,
		fmt.Sprintf("UPDATE %s SET version = version + 1 WHERE id = 1 RETURNING version", vt),
		fmt.Sprintf("UPDATE %s SET version = version + 1 WHERE id = 1 AND version = $1 RETURNING version", vt),
		fmt.Sprintf("SELECT version FROM %s WHERE id = 1", vt),
		ifVersion)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`, b.kvTable())
	for k, v := range values {
		if _, err := tx.ExecContext(ctx, query, k, v); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return version, nil
}

func (b *PostgresBackend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *PostgresBackend) ensureReady(ctx context.Context) error {
	b.initOnce.Do(func() {
		db, err := sql.Open("postgres", b.dsn)
		if err != nil {
			b.initErr = err
			return
		}
		ctx, cancel := context.WithTimeout(ctx, postgresOperationTimeout)
		defer cancel()

		statements := []string{
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					key TEXT PRIMARY KEY,
					value BYTEA NOT NULL,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				)`, b.kvTable()),
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					id INTEGER PRIMARY KEY CHECK (id = 1),
					version BIGINT NOT NULL
				)`, b.versionTable()),
			fmt.Sprintf("INSERT INTO %s (id, version) VALUES (1, 0) ON CONFLICT (id) DO NOTHING", b.versionTable()),
		}
		for _, stmt := range statements {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				_ = db.Close()
				b.initErr = err
				return
			}
		}
		b.db = db
	})
	return b.initErr
}

func postgresQuoteIdentifier(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return `""`
	}
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/Veraticus/dompetku/internal/common"
)

// writeRetry covers lock contention beyond the driver's busy timeout, for
// example a second dompetku process holding a write transaction.
var writeRetry = common.RetryOptions{
	MaxAttempts:  4,
	InitialDelay: 50 * time.Millisecond,
	MaxDelay:     time.Second,
}

// isBusy reports whether err is SQLite lock contention.
func isBusy(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && (se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked)
}

// retryWrite retries op while SQLite reports the database as locked.
func retryWrite(op func() error) error {
	return common.WithRetry(context.Background(), func() error {
		err := op()
		if err != nil && !isBusy(err) {
			return common.Permanent(err)
		}
		return err
	}, writeRetry)
}

// SQLiteMedium implements Medium on a single SQLite key/value table.
type SQLiteMedium struct {
	db     *sql.DB
	dbPath string
	quota  int64
}

// NewSQLiteMedium opens (creating if needed) the database at dbPath and
// migrates it. A quota of zero or less means unlimited.
func NewSQLiteMedium(ctx context.Context, dbPath string, quota int64) (*SQLiteMedium, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("%w: database path", common.ErrMissingConfig)
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections, and :memory:
	// databases are per-connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	m := &SQLiteMedium{db: db, dbPath: dbPath, quota: quota}
	if err := m.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return m, nil
}

// Close closes the database connection.
func (m *SQLiteMedium) Close() error {
	return m.db.Close()
}

// Available reports whether the database still answers.
func (m *SQLiteMedium) Available() bool {
	return m.db.Ping() == nil
}

// Get returns the raw value stored under key.
func (m *SQLiteMedium) Get(key string) (string, bool, error) {
	var value string
	err := m.db.QueryRow(`SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query key: %w", err)
	}
	return value, true, nil
}

// Set upserts value under key, enforcing the quota inside one transaction.
func (m *SQLiteMedium) Set(key, value string) error {
	return retryWrite(func() error { return m.set(key, value) })
}

func (m *SQLiteMedium) set(key, value string) error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	size := entrySize(key, value)

	if m.quota > 0 {
		var used int64
		err := tx.QueryRow(`SELECT COALESCE(SUM(size), 0) FROM kv_store WHERE key != ?`, key).Scan(&used)
		if err != nil {
			return fmt.Errorf("failed to compute usage: %w", err)
		}
		if used+size > m.quota {
			return common.ErrQuotaExceeded
		}
	}

	_, err = tx.Exec(`
		INSERT INTO kv_store (key, value, size, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			size = excluded.size,
			updated_at = CURRENT_TIMESTAMP`,
		key, value, size)
	if err != nil {
		return fmt.Errorf("failed to write key: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit write: %w", err)
	}
	return nil
}

// Delete removes key. Removing an absent key is not an error.
func (m *SQLiteMedium) Delete(key string) error {
	return retryWrite(func() error {
		if _, err := m.db.Exec(`DELETE FROM kv_store WHERE key = ?`, key); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}
		return nil
	})
}

// Keys returns every stored key in sorted order.
func (m *SQLiteMedium) Keys() ([]string, error) {
	rows, err := m.db.Query(`SELECT key FROM kv_store ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, k)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating keys: %w", err)
	}
	return keys, nil
}

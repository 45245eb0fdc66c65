package cache

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteCache stores entries in a single SQLite database file.
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache opens (or creates) the database at path and migrates the
// schema.
func NewSQLiteCache(ctx context.Context, path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, unavailable("sqlite", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	c := &SQLiteCache{db: db}
	if err := c.migrate(ctx); err != nil {
		db.Close()
		return nil, unavailable("sqlite", err)
	}
	return c, nil
}

func (c *SQLiteCache) migrate(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS entries (
		key TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expires_at INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_entries_expires ON entries(expires_at);
	`)
	return err
}

// Get retrieves a value. Expired rows are deleted and reported as misses.
func (c *SQLiteCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		data      []byte
		expiresAt int64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT data, expires_at FROM entries WHERE key = ?`, key,
	).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if expiresAt != 0 && time.Now().UnixNano() > expiresAt {
		_, _ = c.db.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, key)
		return nil, false, nil
	}
	return data, true, nil
}

// Set inserts or replaces a value.
func (c *SQLiteCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var expiresAt int64
	if exp := expiry(ttl); !exp.IsZero() {
		expiresAt = exp.UnixNano()
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO entries (key, data, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`,
		key, data, expiresAt)
	return err
}

// Delete removes a value.
func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, key)
	return err
}

// Prune deletes every expired row and returns how many were removed.
func (c *SQLiteCache) Prune(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM entries WHERE expires_at != 0 AND expires_at < ?`, time.Now().UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close closes the database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

var _ Cache = (*SQLiteCache)(nil)

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCache stores entries in a PostgreSQL table.
type PostgresCache struct {
	pool *pgxpool.Pool
}

// NewPostgresCache connects to the database at url and migrates the schema.
func NewPostgresCache(ctx context.Context, url string) (*PostgresCache, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, unavailable("postgres", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, unavailable("postgres", err)
	}

	c := &PostgresCache{pool: pool}
	if err := c.migrate(ctx); err != nil {
		pool.Close()
		return nil, unavailable("postgres", err)
	}
	return c, nil
}

func (c *PostgresCache) migrate(ctx context.Context) error {
	_, err := c.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS dotgraph_cache (
		key TEXT PRIMARY KEY,
		data BYTEA NOT NULL,
		expires_at TIMESTAMPTZ
	)`)
	return err
}

// Get retrieves a value. Expired rows are reported as misses.
func (c *PostgresCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		data      []byte
		expiresAt *time.Time
	)
	err := c.pool.QueryRow(ctx,
		`SELECT data, expires_at FROM dotgraph_cache WHERE key = $1`, key,
	).Scan(&data, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if expiresAt != nil && expired(*expiresAt) {
		return nil, false, nil
	}
	return data, true, nil
}

// Set upserts a value.
func (c *PostgresCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var expiresAt *time.Time
	if exp := expiry(ttl); !exp.IsZero() {
		expiresAt = &exp
	}
	_, err := c.pool.Exec(ctx,
		`INSERT INTO dotgraph_cache (key, data, expires_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at`,
		key, data, expiresAt)
	return err
}

// Delete removes a value.
func (c *PostgresCache) Delete(ctx context.Context, key string) error {
	_, err := c.pool.Exec(ctx, `DELETE FROM dotgraph_cache WHERE key = $1`, key)
	return err
}

// Close closes the pool.
func (c *PostgresCache) Close() error {
	c.pool.Close()
	return nil
}

var _ Cache = (*PostgresCache)(nil)

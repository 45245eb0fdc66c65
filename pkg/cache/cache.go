// Package cache stores generated DOT text and rendered artifacts.
//
// # Overview
//
// Rendering large graphs through Graphviz is the slowest step of the
// pipeline, and the DOT text for a given document and configuration never
// changes. The pipeline therefore caches by content hash:
//
//   - Documents fetched from URLs, keyed by URL ([Keyer.DocumentKey])
//   - DOT text, keyed by document hash and layout options ([Keyer.DOTKey])
//   - Rendered images, keyed by DOT hash and format ([Keyer.ArtifactKey])
//
// # Backends
//
// All backends implement [Cache] and store opaque bytes with a TTL:
//
//   - [FileCache]: one JSON file per entry, for the CLI (default)
//   - [NullCache]: stores nothing
//   - [RedisCache]: Redis, for shared server deployments
//   - [MongoCache]: MongoDB collection with a TTL index
//   - [SQLiteCache]: single-file SQLite database
//   - [PostgresCache]: PostgreSQL table
//   - [S3Cache]: S3-compatible object storage
//
// [Open] selects a backend from [config.CacheConfig].
//
// [config.CacheConfig]: github.com/matzehuels/dotgraph/pkg/config.CacheConfig
package cache

import (
	"context"
	"time"
)

// Default TTLs per key type.
const (
	TTLDocument = time.Hour
	TTLDOT      = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache stores byte values under string keys.
//
// Get reports a miss with ok == false and a nil error; errors are reserved
// for backend failures. A ttl <= 0 in Set means the entry does not expire.
// Implementations are safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// expired reports whether an entry with the given expiry has passed it.
// The zero time never expires.
func expired(expiresAt time.Time) bool {
	return !expiresAt.IsZero() && time.Now().After(expiresAt)
}

// expiry converts a TTL into an absolute expiry, or the zero time.
func expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

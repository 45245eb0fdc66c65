package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/dotgraph/pkg/config"
)

// Open creates the cache selected by cfg. defaultDir is used by the file
// and sqlite backends when cfg.Dir is empty.
func Open(ctx context.Context, cfg config.CacheConfig, defaultDir string) (Cache, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = defaultDir
	}

	var (
		c   Cache
		err error
	)
	switch cfg.Backend {
	case config.BackendNone, "":
		return NewNullCache(), nil
	case config.BackendFile:
		c, err = asCache(NewFileCache(dir))
	case config.BackendSQLite:
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, unavailable("sqlite", err)
		}
		c, err = asCache(NewSQLiteCache(ctx, filepath.Join(dir, "cache.db")))
	case config.BackendRedis:
		c, err = asCache(NewRedisCache(ctx, cfg.URL))
	case config.BackendMongo:
		c, err = asCache(NewMongoCache(ctx, cfg.URL, cfg.Database, cfg.Collection))
	case config.BackendPostgres:
		c, err = asCache(NewPostgresCache(ctx, cfg.URL))
	case config.BackendS3:
		c, err = asCache(NewS3Cache(ctx, S3Options{
			Bucket:   cfg.Bucket,
			Prefix:   cfg.Prefix,
			Region:   cfg.Region,
			Endpoint: cfg.Endpoint,
		}))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// asCache converts a concrete constructor result without producing a
// non-nil interface holding a nil pointer.
func asCache[C Cache](c C, err error) (Cache, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}

func envCredentials() (id, secret string) {
	return os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
}

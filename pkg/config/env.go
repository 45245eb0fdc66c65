package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/matzehuels/dotgraph/pkg/errors"
)

// EnvPrefix prefixes every environment variable read by [Config.ApplyEnv].
const EnvPrefix = "DOTGRAPH_"

// LoadEnv loads .env style files into the process environment. Variables
// already set are not overwritten. Missing files are ignored; with no
// arguments ".env" in the working directory is tried.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "load %s", f)
		}
	}
	return nil
}

// ApplyEnv overrides fields from DOTGRAPH_* environment variables.
// Unset variables leave the field unchanged.
func (c *Config) ApplyEnv() error {
	for _, s := range []struct {
		key string
		dst *string
	}{
		{"RANKDIR", &c.RankDir},
		{"CLUSTER_MODE", &c.ClusterMode},
		{"CACHE_BACKEND", &c.Cache.Backend},
		{"CACHE_DIR", &c.Cache.Dir},
		{"CACHE_URL", &c.Cache.URL},
		{"CACHE_DATABASE", &c.Cache.Database},
		{"CACHE_COLLECTION", &c.Cache.Collection},
		{"CACHE_BUCKET", &c.Cache.Bucket},
		{"CACHE_PREFIX", &c.Cache.Prefix},
		{"CACHE_REGION", &c.Cache.Region},
		{"CACHE_ENDPOINT", &c.Cache.Endpoint},
		{"CACHE_NAMESPACE", &c.Cache.Namespace},
		{"SERVER_ADDR", &c.Server.Addr},
	} {
		if v, ok := lookup(s.key); ok {
			*s.dst = v
		}
	}

	if v, ok := lookup("FONTSIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("FONTSIZE", err)
		}
		c.FontSize = n
	}
	if v, ok := lookup("MERGE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("MERGE", err)
		}
		c.Merge = b
	}
	if v, ok := lookup("CACHE_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("CACHE_TTL", err)
		}
		c.Cache.TTL = Duration(d)
	}
	if v, ok := lookup("SERVER_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("SERVER_TIMEOUT", err)
		}
		c.Server.Timeout = Duration(d)
	}
	return nil
}

func lookup(key string) (string, bool) {
	return os.LookupEnv(EnvPrefix + key)
}

func envError(key string, err error) error {
	return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid %s%s", EnvPrefix, key)
}

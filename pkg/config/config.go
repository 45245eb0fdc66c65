// Package config loads dotgraph settings.
//
// Settings come from three layers, each overriding the previous one:
//
//  1. [Default] values.
//  2. A TOML or YAML file passed to [Load].
//  3. DOTGRAPH_* environment variables, applied by [Config.ApplyEnv]. A .env
//     file in the working directory is read first by [LoadEnv].
//
// [Config.Validate] checks the result with struct tags.
//
// Example dotgraph.toml:
//
//	rankdir = "LR"
//	fontsize = 14
//	merge = true
//
//	[cache]
//	backend = "redis"
//	url = "redis://localhost:6379/0"
//	ttl = "24h"
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/dotgraph/pkg/errors"
)

// Cluster modes.
const (
	ClusterModeGlobal = "global" // clusters are created as declared
	ClusterModeNone   = "none"   // every cluster resolves to the root graph
)

// Cache backends.
const (
	BackendNone     = "none"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

// Config holds all dotgraph settings.
type Config struct {
	RankDir     string `toml:"rankdir" yaml:"rankdir" validate:"oneof=TB BT LR RL"`
	FontSize    int    `toml:"fontsize" yaml:"fontsize" validate:"gt=0,lte=256"`
	ClusterMode string `toml:"cluster_mode" yaml:"cluster_mode" validate:"oneof=global none"`
	Merge       bool   `toml:"merge" yaml:"merge"`

	Cache  CacheConfig  `toml:"cache" yaml:"cache"`
	Server ServerConfig `toml:"server" yaml:"server"`
}

// CacheConfig selects and configures the artifact cache backend.
// Which fields are used depends on Backend.
type CacheConfig struct {
	Backend    string   `toml:"backend" yaml:"backend" validate:"oneof=none file redis mongo sqlite postgres s3"`
	Dir        string   `toml:"dir" yaml:"dir"`               // file, sqlite
	URL        string   `toml:"url" yaml:"url"`               // redis, mongo, postgres
	Database   string   `toml:"database" yaml:"database"`     // mongo
	Collection string   `toml:"collection" yaml:"collection"` // mongo
	Bucket     string   `toml:"bucket" yaml:"bucket"`         // s3
	Prefix     string   `toml:"prefix" yaml:"prefix"`         // s3
	Region     string   `toml:"region" yaml:"region"`         // s3
	Endpoint   string   `toml:"endpoint" yaml:"endpoint"`     // s3, for MinIO and similar
	Namespace  string   `toml:"namespace" yaml:"namespace"`   // key prefix for shared backends
	TTL        Duration `toml:"ttl" yaml:"ttl"`
}

// ServerConfig configures `dotgraph serve`.
type ServerConfig struct {
	Addr         string   `toml:"addr" yaml:"addr" validate:"required"`
	MaxBodyBytes int64    `toml:"max_body_bytes" yaml:"max_body_bytes" validate:"gt=0"`
	Timeout      Duration `toml:"timeout" yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		RankDir:     "TB",
		FontSize:    12,
		ClusterMode: ClusterModeGlobal,
		Merge:       true,
		Cache: CacheConfig{
			Backend:    BackendFile,
			Database:   "dotgraph",
			Collection: "artifacts",
			Prefix:     "dotgraph",
			Region:     "us-east-1",
			TTL:        Duration(7 * 24 * time.Hour),
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 4 << 20,
			Timeout:      Duration(30 * time.Second),
		},
	}
}

// Load reads a TOML or YAML file (chosen by extension) over [Default].
// Keys missing from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = decodeTOML(data, &cfg)
	case ".yaml", ".yml":
		err = decodeYAML(data, &cfg)
	default:
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "unsupported config format: %s", path)
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return cfg, nil
}

func decodeTOML(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}

var validate = validator.New()

// Validate checks field constraints and backend-specific requirements.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return errors.New(errors.ErrCodeInvalidConfig,
				"invalid %s: %v (must satisfy %s)", fe.Namespace(), fe.Value(), constraint(fe))
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config")
	}
	return c.Cache.validate()
}

func constraint(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

func (c CacheConfig) validate() error {
	switch c.Backend {
	case BackendRedis, BackendMongo, BackendPostgres:
		if c.URL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache backend %s requires cache.url", c.Backend)
		}
	case BackendS3:
		if c.Bucket == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache backend s3 requires cache.bucket")
		}
		if err := errors.ValidatePath(c.Prefix); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid cache.prefix")
		}
	}
	if c.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	return nil
}

// Duration is a time.Duration written as a string such as "30s" or "24h".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

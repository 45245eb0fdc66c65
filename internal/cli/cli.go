// Package cli implements the dotgraph command-line interface.
//
// The CLI turns graph documents (JSON, TOML or YAML) into Graphviz DOT text
// and rendered images, serves the same pipeline over HTTP, and manages the
// result cache. Commands are built with cobra and log through
// charmbracelet/log; --verbose switches to debug level and also surfaces the
// pipeline's observability events.
//
// # Commands
//
//   - generate: Write the DOT text for a document
//   - render: Render a document to svg, png or jpg
//   - serve: Run the HTTP API
//   - browse: Explore a document's clusters and nodes interactively
//   - convert: Re-encode a document in another format
//   - schema: Print the JSON Schema of the document format
//   - cache: Manage the result cache
//   - config: Show the effective configuration
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dotgraph/pkg/buildinfo"
	"github.com/matzehuels/dotgraph/pkg/cache"
	"github.com/matzehuels/dotgraph/pkg/config"
	"github.com/matzehuels/dotgraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "dotgraph"

	// configFile is the config file looked up in the user config directory.
	configFile = "config.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any command runs.
	Config config.Config

	configPath   string
	configSource string // file the config was loaded from, if any
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "dotgraph turns clustered graph documents into Graphviz diagrams",
		Long:         `dotgraph reads graphs described as named clusters, nodes and edges, bundles fan-in edges, and writes deterministic Graphviz DOT text or rendered images.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, source, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			c.configSource = source
			installHooks(c.Logger)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (.toml or .yaml)")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.schemaCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig builds the effective configuration: defaults, then the config
// file (the explicit path, or the user config file when present), then
// DOTGRAPH_* environment variables including those from ./.env. It also
// returns the config file used, or "".
func loadConfig(path string) (config.Config, string, error) {
	if err := config.LoadEnv(); err != nil {
		return config.Config{}, "", err
	}

	cfg := config.Default()
	if path == "" {
		if p, err := userConfigFile(); err == nil {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, "", err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return config.Config{}, "", err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, "", err
	}
	return cfg, path, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, c.keyer(), c.Logger), nil
}

// keyer scopes cache keys to the configured namespace, if any.
func (c *CLI) keyer() cache.Keyer {
	keyer := cache.NewDefaultKeyer()
	if ns := c.Config.Cache.Namespace; ns != "" {
		keyer = cache.NewScopedKeyer(keyer, ns+":")
	}
	return keyer
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil && c.Config.Cache.Dir == "" {
		c.Logger.Warn("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, c.Config.Cache, dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/dotgraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// userConfigFile returns ~/.config/dotgraph/config.toml, honoring
// XDG_CONFIG_HOME.
func userConfigFile() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, configFile), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, configFile), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{"svg"}
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}

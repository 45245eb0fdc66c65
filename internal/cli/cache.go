package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotgraph/pkg/cache"
	"github.com/matzehuels/dotgraph/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePruneCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached document, DOT text and image",
		Long:  `Clear empties the local file cache. Shared backends (redis, mongo, postgres, s3) expire entries by TTL and are left alone.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.Backend != config.BackendFile {
				printWarning("cache clear only applies to the file backend (configured: %s)", c.Config.Cache.Backend)
				return nil
			}
			dir, err := c.cachePath()
			if err != nil {
				return err
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			if err := fc.Clear(); err != nil {
				return err
			}

			printSuccess("Cleared cache")
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePruneCommand creates the "cache prune" subcommand.
func (c *CLI) cachePruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete expired entries from the sqlite cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.Backend != config.BackendSQLite {
				printWarning("cache prune only applies to the sqlite backend (configured: %s)", c.Config.Cache.Backend)
				return nil
			}
			store, err := c.newCache(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer store.Close()

			sc, ok := store.(*cache.SQLiteCache)
			if !ok {
				return fmt.Errorf("unexpected cache type %T", store)
			}
			n, err := sc.Prune(cmd.Context())
			if err != nil {
				return err
			}
			printSuccess("Pruned %d expired entries", n)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cachePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// cachePath returns the configured cache directory, or the XDG default.
func (c *CLI) cachePath() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}

package cli

import (
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	var asTOML bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Config prints the settings commands run with after the config file and
DOTGRAPH_* environment variables are applied. With --toml the output is a
config file that can be edited and passed back with --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asTOML {
				return toml.NewEncoder(cmd.OutOrStdout()).Encode(c.Config)
			}

			if c.configSource != "" {
				printInfo("Loaded %s", c.configSource)
			} else {
				printInfo("No config file, using defaults")
			}

			cfg := c.Config
			printKeyValue("rankdir", cfg.RankDir)
			printKeyValue("fontsize", strconv.Itoa(cfg.FontSize))
			printKeyValue("clusters", cfg.ClusterMode)
			printKeyValue("merge", strconv.FormatBool(cfg.Merge))
			printKeyValue("cache", cfg.Cache.Backend)
			if dir, err := c.cachePath(); err == nil {
				printDetail("Directory: %s", dir)
			}
			printDetail("TTL: %s", cfg.Cache.TTL.Std())
			printKeyValue("server", cfg.Server.Addr)
			printDetail("Timeout: %s, max body: %d bytes", cfg.Server.Timeout.Std(), cfg.Server.MaxBodyBytes)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asTOML, "toml", false, "print the configuration as TOML")

	return cmd
}

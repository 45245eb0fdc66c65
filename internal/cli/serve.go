package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/dotgraph/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over HTTP",
		Long: `Serve starts the HTTP API. POST a document to /v1/dot for DOT text or to
/v1/render/{svg,png,jpg} for an image. Layout settings default to the
configuration and can be overridden with query parameters.`,
		Example: `  dotgraph serve --addr :9000
  curl --data-binary @services.toml -H 'Content-Type: application/toml' localhost:9000/v1/render/svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			return server.New(runner, cfg, c.Logger).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

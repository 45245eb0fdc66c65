package cli

import (
	"github.com/spf13/cobra"

	dgio "github.com/matzehuels/dotgraph/pkg/io"
)

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		flags  layoutFlags
		to     string
		output string
	)

	cmd := &cobra.Command{
		Use:   "convert <file|url|->",
		Short: "Re-encode a graph document as JSON, TOML or YAML",
		Long: `Convert validates a document and writes it in another format. Malformed
JSON is repaired on the way in, so convert also normalizes hand-written files.`,
		Example: `  dotgraph convert --to yaml services.json
  dotgraph convert --to toml -o services.toml services.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := dgio.ParseFormat(to)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			doc, err := loadDocument(cmd.Context(), cmd, runner, args[0], &flags)
			if err != nil {
				return err
			}

			if output == "" || output == stdinSource {
				return dgio.WriteDocument(cmd.OutOrStdout(), doc, format)
			}
			f, err := createFile(output)
			if err != nil {
				return err
			}
			if err := dgio.WriteDocument(f, doc, format); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			printSuccess("Converted %s to %s", sourceName(args[0]), format)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&to, "to", "t", "yaml", "target format: json, toml, yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&flags.input, "input", "i", "json", "document format when reading stdin: json, toml, yaml")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching of fetched documents")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "fetch remote documents again")

	return cmd
}

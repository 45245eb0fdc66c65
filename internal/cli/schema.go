package cli

import (
	"github.com/spf13/cobra"

	dgio "github.com/matzehuels/dotgraph/pkg/io"
)

// schemaCommand creates the schema command.
func (c *CLI) schemaCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the graph document format",
		Long: `Schema prints a JSON Schema describing graph documents. Editors can use it
to validate and complete documents written in JSON or YAML.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := dgio.Schema()
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, append(data, '\n'))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "generate <file|url|->",
		Short: "Write the Graphviz DOT text for a graph document",
		Long: `Generate reads a graph document (JSON, TOML or YAML), bundles fan-in edges
and writes the DOT text to stdout or to --output.`,
		Example: `  dotgraph generate services.toml
  dotgraph generate -o services.dot --rankdir LR services.yaml
  cat graph.json | dotgraph generate -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(c.Logger)
			doc, err := loadDocument(ctx, cmd, runner, args[0], &flags)
			if err != nil {
				return err
			}
			res, err := runner.Generate(ctx, doc, c.options(cmd, &flags, args[0]))
			if err != nil {
				return err
			}
			if err := writeOutput(cmd.OutOrStdout(), output, res.DOT); err != nil {
				return err
			}

			if output != "" && output != stdinSource {
				prog.done(fmt.Sprintf("Generated %s", output))
				printFile(output)
				printStats(res.Stats, res.CacheInfo.DOTHit)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

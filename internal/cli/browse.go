package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		flags     layoutFlags
		printOnce bool
	)

	cmd := &cobra.Command{
		Use:   "browse <file|url|->",
		Short: "Explore the clusters and nodes of a graph document",
		Long: `Browse validates a document, generates its DOT text and opens an interactive
tree of clusters and nodes with their ranks, edge counts and attributes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			doc, err := loadDocument(ctx, cmd, runner, args[0], &flags)
			if err != nil {
				return err
			}
			res, err := runner.Generate(ctx, doc, c.options(cmd, &flags, args[0]))
			if err != nil {
				return err
			}

			summary := fmt.Sprintf("%d clusters · %d nodes · %d edges · %d bundles · %d bytes of DOT",
				res.Stats.ClusterCount, len(doc.Nodes), len(doc.Edges), res.Stats.Merge.Bundles(), len(res.DOT))
			model := NewBrowseModel(sourceName(args[0]), summary, doc)

			if printOnce {
				model.Height = len(model.Rows)
				fmt.Fprintln(cmd.OutOrStdout(), model.View())
				return nil
			}
			_, err = tea.NewProgram(model,
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			).Run()
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&printOnce, "print", "p", false, "print the tree once instead of opening the interactive view")

	return cmd
}

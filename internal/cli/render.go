package cli

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotgraph/pkg/errors"
	"github.com/matzehuels/dotgraph/pkg/pipeline"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      layoutFlags
		formatsStr string
		engine     string
		output     string
		keepDOT    bool
	)

	cmd := &cobra.Command{
		Use:   "render <file|url|->",
		Short: "Render a graph document to svg, png or jpg",
		Long: `Render runs the full pipeline and lays the DOT text out with Graphviz.

With one format, --output names the file. With several formats, --output is a
base path and each file gets the format as extension. Without --output, files
are named after the input.`,
		Example: `  dotgraph render services.toml
  dotgraph render -f svg,png -o out/services services.toml
  dotgraph render --engine neato https://example.com/graph.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			formats := parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			doc, err := loadDocument(ctx, cmd, runner, args[0], &flags)
			if err != nil {
				return err
			}

			opts := c.options(cmd, &flags, args[0])
			opts.Formats = formats
			opts.Engine = engine

			spin := newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Rendering %s...", strings.Join(formats, ", ")))
			spin.Start()
			res, err := runner.Execute(ctx, doc, opts)
			if err != nil {
				if spin.Interrupted() {
					spin.Stop()
					return ctx.Err()
				}
				spin.Fail(fmt.Sprintf("Rendering %s failed", sourceName(args[0])))
				return err
			}
			spin.Stop()

			base := outputBase(args[0], output, len(formats))
			var written []string
			for _, format := range formats {
				file := outputPath(base, output, format, len(formats))
				if err := writeFile(file, res.Artifacts[format]); err != nil {
					return err
				}
				written = append(written, file)
			}
			if keepDOT {
				file := base + ".dot"
				if err := writeFile(file, res.DOT); err != nil {
					return err
				}
				written = append(written, file)
			}

			printSuccess("Rendered %s", sourceName(args[0]))
			for _, file := range written {
				printFile(file)
			}
			printStats(res.Stats, res.CacheInfo.RenderHit)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, jpg (comma-separated)")
	cmd.Flags().StringVarP(&engine, "engine", "e", pipeline.DefaultEngine, "Graphviz layout engine")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&keepDOT, "dot", false, "also write the DOT text next to the images")

	return cmd
}

// outputBase returns the path without extension that output files derive
// from.
func outputBase(src, output string, formats int) string {
	if output != "" {
		if formats == 1 {
			return strings.TrimSuffix(output, filepath.Ext(output))
		}
		return output
	}
	switch {
	case src == stdinSource:
		return "graph"
	case pipeline.IsURL(src):
		u, err := url.Parse(src)
		if err != nil {
			return "graph"
		}
		name := path.Base(u.Path)
		if name == "." || name == "/" {
			return "graph"
		}
		return strings.TrimSuffix(name, path.Ext(name))
	}
	return strings.TrimSuffix(src, filepath.Ext(src))
}

// outputPath returns the file for one format. A single format written to an
// explicit --output keeps that exact name.
func outputPath(base, output, format string, formats int) string {
	if output != "" && formats == 1 {
		return output
	}
	return base + "." + format
}

// writeFile writes data to name, creating parent directories.
func writeFile(name string, data []byte) error {
	if err := ensureDir(name); err != nil {
		return err
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", name)
	}
	return nil
}

// createFile creates name for writing, creating parent directories.
func createFile(name string) (*os.File, error) {
	if err := ensureDir(name); err != nil {
		return nil, err
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", name)
	}
	return f, nil
}

func ensureDir(name string) error {
	dir := filepath.Dir(name)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
	}
	return nil
}

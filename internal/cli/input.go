package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	dgio "github.com/matzehuels/dotgraph/pkg/io"
	"github.com/matzehuels/dotgraph/pkg/pipeline"
)

// stdinSource names standard input as a document source.
const stdinSource = "-"

// layoutFlags holds the flags shared by commands that run the pipeline.
// Only flags set on the command line override the configuration.
type layoutFlags struct {
	rankDir     string
	fontSize    int
	clusterMode string
	merge       bool
	input       string // document format for stdin
	noCache     bool
	refresh     bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.rankDir, "rankdir", "", "layout direction: TB, BT, LR, RL (default from config)")
	flags.IntVar(&f.fontSize, "fontsize", 0, "node and graph font size (default from config)")
	flags.StringVar(&f.clusterMode, "cluster-mode", "", "cluster handling: global, none (default from config)")
	flags.BoolVar(&f.merge, "merge", true, "bundle fan-in edges")
	flags.StringVarP(&f.input, "input", "i", "json", "document format when reading stdin: json, toml, yaml")
	flags.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	flags.BoolVar(&f.refresh, "refresh", false, "ignore cached results")
}

// options returns pipeline options from the loaded configuration with the
// changed flags applied.
func (c *CLI) options(cmd *cobra.Command, f *layoutFlags, source string) pipeline.Options {
	cfg := c.Config
	flags := cmd.Flags()
	if flags.Changed("rankdir") {
		cfg.RankDir = f.rankDir
	}
	if flags.Changed("fontsize") {
		cfg.FontSize = f.fontSize
	}
	if flags.Changed("cluster-mode") {
		cfg.ClusterMode = f.clusterMode
	}
	if flags.Changed("merge") {
		cfg.Merge = f.merge
	}
	return pipeline.Options{
		Config:  cfg,
		Refresh: f.refresh,
		Source:  sourceName(source),
	}
}

// loadDocument reads a document from a path, an http(s) URL or stdin ("-").
func loadDocument(ctx context.Context, cmd *cobra.Command, runner *pipeline.Runner, src string, f *layoutFlags) (*dgio.Document, error) {
	if src == stdinSource {
		format, err := dgio.ParseFormat(f.input)
		if err != nil {
			return nil, err
		}
		return dgio.Read(cmd.InOrStdin(), format)
	}
	return runner.Load(ctx, src, f.refresh)
}

func sourceName(src string) string {
	if src == stdinSource {
		return "stdin"
	}
	return src
}

// writeOutput writes data to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == stdinSource {
		_, err := w.Write(data)
		return err
	}
	return writeFile(path, data)
}

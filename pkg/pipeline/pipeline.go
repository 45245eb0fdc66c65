// Package pipeline provides the document-to-image pipeline for dotgraph.
//
// This package implements the complete build → merge → generate → render
// pipeline used by both the CLI and the HTTP server. By centralizing this
// logic, both entry points share caching, logging and error codes.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Build: Validate a [io.Document] and create its graph tree
//  2. Merge: Bundle fan-in edges (optional, see [Options.Config])
//  3. Generate: Serialize the tree as DOT text
//  4. Render: Lay out the DOT text with Graphviz (SVG, PNG, JPG)
//
// Generate results are cached by document hash and layout settings; rendered
// artifacts are cached by DOT hash and format.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	doc, err := runner.Load(ctx, "services.toml", false)
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Execute(ctx, doc, pipeline.Options{
//	    Config:  config.Default(),
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Graph tree only (no caching)
//	g, merged, err := runner.Build(ctx, doc, opts)
//
//	// DOT text only
//	result, err := runner.Generate(ctx, doc, opts)
//
//	// Images from existing DOT text
//	artifacts, err := runner.Render(ctx, dot, opts)
//
// [io.Document]: github.com/matzehuels/dotgraph/pkg/io.Document
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dotgraph/pkg/cache"
	"github.com/matzehuels/dotgraph/pkg/config"
	"github.com/matzehuels/dotgraph/pkg/errors"
	"github.com/matzehuels/dotgraph/pkg/graph/transform"
	"github.com/matzehuels/dotgraph/pkg/render/graphviz"
)

// DefaultEngine is the Graphviz layout engine used when none is set.
const DefaultEngine = "dot"

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run.
type Options struct {
	// Config carries the layout settings (rankdir, fontsize, cluster mode,
	// merge). A zero Config is replaced by [config.Default].
	Config config.Config

	// Formats lists the image formats to render. Empty means DOT only.
	Formats []string

	// Engine is the Graphviz layout engine. Defaults to [DefaultEngine].
	Engine string

	// Refresh bypasses cached results. Fresh results are still stored.
	Refresh bool

	// Source names the document in logs and hooks (a path, URL or "stdin").
	Source string

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger

	validated bool
}

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Config.RankDir == "" {
		o.Config = config.Default()
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if !slices.Contains(graphviz.Engines, o.Engine) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown layout engine: %q", o.Engine)
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Source == "" {
		o.Source = "document"
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// KeyOpts returns the settings that distinguish cached DOT text.
func (o *Options) KeyOpts() cache.DOTKeyOpts {
	return cache.DOTKeyOpts{
		RankDir:     o.Config.RankDir,
		FontSize:    o.Config.FontSize,
		ClusterMode: o.Config.ClusterMode,
		Merge:       o.Config.Merge,
	}
}

// ValidateFormats checks that every format is a supported image format.
// Aliases such as "jpeg" are rewritten in place.
func ValidateFormats(formats []string) error {
	for i, f := range formats {
		format, err := graphviz.ParseFormat(f)
		if err != nil {
			return err
		}
		formats[i] = string(format)
	}
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// DOT is the generated DOT text.
	DOT []byte

	// DocumentHash is the content hash of the canonical document.
	DocumentHash string

	// DOTHash is the content hash of DOT, used as the artifact cache key.
	DOTHash string

	// Artifacts contains rendered images keyed by format.
	Artifacts map[string][]byte

	// Stats contains counts and timings.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics. Counts are stored with
// cached DOT text, so they are reported on cache hits too.
type Stats struct {
	NodeCount    int                   `json:"nodes"`
	EdgeCount    int                   `json:"edges"`
	ClusterCount int                   `json:"clusters"`
	Merge        transform.MergeResult `json:"merge"`

	BuildTime    time.Duration `json:"-"`
	GenerateTime time.Duration `json:"-"`
	RenderTime   time.Duration `json:"-"`
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	DOTHit    bool // Whether the DOT text came from cache
	RenderHit bool // Whether all artifacts came from cache
}

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/dotgraph/pkg/cache"
	"github.com/matzehuels/dotgraph/pkg/errors"
	"github.com/matzehuels/dotgraph/pkg/graph"
	"github.com/matzehuels/dotgraph/pkg/graph/transform"
	"github.com/matzehuels/dotgraph/pkg/httputil"
	dgio "github.com/matzehuels/dotgraph/pkg/io"
	"github.com/matzehuels/dotgraph/pkg/observability"
	"github.com/matzehuels/dotgraph/pkg/render/dot"
	"github.com/matzehuels/dotgraph/pkg/render/graphviz"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, fetcher and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	Fetcher *httputil.Fetcher
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		Fetcher: httputil.NewFetcher(c, keyer),
	}
}

// Execute runs generate and, when formats are requested, render.
func (r *Runner) Execute(ctx context.Context, doc *dgio.Document, opts Options) (*Result, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}

	result, err := r.Generate(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	if len(opts.Formats) == 0 {
		return result, nil
	}

	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, result.DOT, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Build validates doc and creates its graph tree. When merging is enabled
// the fan-in edges are bundled before returning. Build never caches.
func (r *Runner) Build(ctx context.Context, doc *dgio.Document, opts Options) (graph.Graph, transform.MergeResult, error) {
	if err := r.prepare(&opts); err != nil {
		return graph.Graph{}, transform.MergeResult{}, err
	}
	if doc == nil {
		return graph.Graph{}, transform.MergeResult{}, errors.New(errors.ErrCodeInvalidDocument, "nil document")
	}
	hooks := observability.Pipeline()

	hooks.OnBuildStart(ctx, opts.Source)
	start := time.Now()
	b, err := dgio.Build(doc, opts.Config)
	if err != nil {
		hooks.OnBuildComplete(ctx, opts.Source, 0, 0, time.Since(start), err)
		return graph.Graph{}, transform.MergeResult{}, err
	}
	g := b.Graph()
	hooks.OnBuildComplete(ctx, opts.Source, g.NodeCount(), g.ClusterCount(), time.Since(start), nil)

	opts.Logger.Debug("built graph",
		"source", opts.Source,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"clusters", g.ClusterCount()-1)

	if !opts.Config.Merge {
		return g, transform.MergeResult{}, nil
	}

	start = time.Now()
	merged, err := transform.MergeEdges(g)
	if err != nil {
		return graph.Graph{}, transform.MergeResult{}, errors.Wrap(errors.ErrCodeInternal, err, "merge edges")
	}
	hooks.OnMerge(ctx, merged.Bundles(), merged.EdgesAdded, time.Since(start))

	opts.Logger.Debug("merged edges",
		"bundles", merged.Bundles(),
		"retargeted", merged.EdgesRetargeted,
		"nodes_added", merged.NodesAdded)

	return g, merged, nil
}

// cachedDOT is the cache entry for generated DOT text.
type cachedDOT struct {
	DOT   string `json:"dot"`
	Stats Stats  `json:"stats"`
}

// Generate returns the DOT text for doc, from the cache when possible.
func (r *Runner) Generate(ctx context.Context, doc *dgio.Document, opts Options) (*Result, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}

	docHash, err := DocumentHash(doc)
	if err != nil {
		return nil, err
	}
	key := r.Keyer.DOTKey(docHash, opts.KeyOpts())
	result := &Result{DocumentHash: docHash}

	if !opts.Refresh {
		if entry, ok := r.cachedDOT(ctx, key); ok {
			result.DOT = []byte(entry.DOT)
			result.DOTHash = cache.Hash(result.DOT)
			result.Stats = entry.Stats
			result.CacheInfo.DOTHit = true
			opts.Logger.Info("generated dot", "source", opts.Source, "cached", true)
			return result, nil
		}
	}

	buildStart := time.Now()
	g, merged, err := r.Build(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.Stats.ClusterCount = g.ClusterCount() - 1
	result.Stats.Merge = merged

	genStart := time.Now()
	var buf bytes.Buffer
	gen, err := dot.NewGenerator(g)
	if err == nil {
		err = gen.Generate(&buf)
	}
	result.Stats.GenerateTime = time.Since(genStart)
	observability.Pipeline().OnGenerate(ctx, buf.Len(), result.Stats.GenerateTime, err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "generate dot")
	}
	result.DOT = buf.Bytes()
	result.DOTHash = cache.Hash(result.DOT)

	if data, err := json.Marshal(cachedDOT{DOT: buf.String(), Stats: result.Stats}); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLDOT); err != nil {
			opts.Logger.Warn("cache write failed", "key", key, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "dot", len(data))
		}
	}

	opts.Logger.Info("generated dot",
		"source", opts.Source,
		"nodes", result.Stats.NodeCount,
		"bundles", merged.Bundles(),
		"bytes", len(result.DOT),
		"duration", result.Stats.BuildTime+result.Stats.GenerateTime)

	return result, nil
}

func (r *Runner) cachedDOT(ctx context.Context, key string) (cachedDOT, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "dot")
		return cachedDOT{}, false
	}
	var entry cachedDOT
	if err := json.Unmarshal(data, &entry); err != nil || entry.DOT == "" {
		observability.Cache().OnCacheMiss(ctx, "dot")
		return cachedDOT{}, false
	}
	observability.Cache().OnCacheHit(ctx, "dot")
	return entry, true
}

// RenderWithCacheInfo renders dotText in every requested format and reports
// whether all artifacts came from the cache. Formats are rendered
// concurrently.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, dotText []byte, opts Options) (map[string][]byte, bool, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, false, err
	}
	if len(opts.Formats) == 0 {
		return map[string][]byte{}, false, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	dotHash := cache.Hash(dotText)
	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(opts.Formats))
		allCached = true
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for _, format := range opts.Formats {
		eg.Go(func() error {
			data, hit, err := r.renderOne(egCtx, dotText, dotHash, format, opts)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			artifacts[format] = data
			allCached = allCached && hit
			return nil
		})
	}
	err := eg.Wait()
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	return artifacts, allCached, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, dotText []byte, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, dotText, opts)
	return artifacts, err
}

func (r *Runner) renderOne(ctx context.Context, dotText []byte, dotHash, format string, opts Options) ([]byte, bool, error) {
	// The engine changes the image, so it is part of the format key.
	keyFormat := format
	if opts.Engine != DefaultEngine {
		keyFormat = format + "+" + opts.Engine
	}
	key := r.Keyer.ArtifactKey(dotHash, keyFormat)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	data, err := graphviz.RenderWith(ctx, dotText, graphviz.Format(format), opts.Engine)
	if err != nil {
		return nil, false, err
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
		opts.Logger.Warn("cache write failed", "key", key, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return data, false, nil
}

// DocumentHash returns the content hash of doc's canonical JSON encoding.
// Documents that decode to the same value hash the same regardless of
// their source format.
func DocumentHash(doc *dgio.Document) (string, error) {
	if doc == nil {
		return "", errors.New(errors.ErrCodeInvalidDocument, "nil document")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode document")
	}
	return cache.Hash(data), nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// prepare sets the runner's logger on options if not already set, then
// validates them.
func (r *Runner) prepare(opts *Options) error {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	return opts.ValidateAndSetDefaults()
}

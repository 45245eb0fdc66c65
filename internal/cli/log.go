package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dotgraph/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with
// elapsed duration. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, rounded to the millisecond.
// Example output: "Generated graph.dot (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// =============================================================================
// Observability Hooks
// =============================================================================

// logHooks forwards pipeline and cache events to a logger at debug level.
type logHooks struct {
	logger *log.Logger
}

var (
	_ observability.PipelineHooks = logHooks{}
	_ observability.CacheHooks    = logHooks{}
	_ observability.HTTPHooks     = logHooks{}
)

// installHooks routes all observability events to l.
func installHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h logHooks) OnBuildStart(_ context.Context, source string) {
	h.logger.Debug("build started", "source", source)
}

func (h logHooks) OnBuildComplete(_ context.Context, source string, nodes, clusters int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("build failed", "source", source, "error", err)
		return
	}
	h.logger.Debug("build complete", "source", source, "nodes", nodes, "clusters", clusters, "duration", d)
}

func (h logHooks) OnMerge(_ context.Context, bundles, edgesAdded int, d time.Duration) {
	h.logger.Debug("merge complete", "bundles", bundles, "edges_added", edgesAdded, "duration", d)
}

func (h logHooks) OnGenerate(_ context.Context, size int, d time.Duration, err error) {
	h.logger.Debug("dot generated", "bytes", size, "duration", d, "error", err)
}

func (h logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render started", "formats", formats)
}

func (h logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("render complete", "formats", formats, "duration", d, "error", err)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Warn("http error", "method", method, "host", host, "path", path, "error", err)
}

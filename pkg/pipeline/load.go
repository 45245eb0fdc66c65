package pipeline

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	dgio "github.com/matzehuels/dotgraph/pkg/io"
)

// IsURL reports whether src names an http or https document.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Load reads the document named by src, which is either a local path or an
// http(s) URL. Remote documents go through the runner's fetcher and its
// cache; refresh bypasses the cached copy. The format follows the file
// extension and defaults to JSON for URLs without one.
func (r *Runner) Load(ctx context.Context, src string, refresh bool) (*dgio.Document, error) {
	if !IsURL(src) {
		return dgio.Import(src)
	}

	format := dgio.FormatJSON
	if u, err := url.Parse(src); err == nil {
		if f, err := dgio.FormatFromPath(u.Path); err == nil {
			format = f
		}
	}

	data, err := r.Fetcher.Fetch(ctx, src, refresh)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("fetched document", "url", src, "format", format, "bytes", len(data))
	return dgio.Read(bytes.NewReader(data), format)
}

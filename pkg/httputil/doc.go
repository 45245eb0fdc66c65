// Package httputil fetches remote graph documents.
//
// # Overview
//
//   - [Fetcher]: HTTP GET with caching, size limits and retries
//   - [Retry]: Automatic retry with exponential backoff
//
// # Fetching
//
// [Fetcher.Fetch] downloads a document by URL. Responses are cached in any
// [cache.Cache] under [cache.Keyer.DocumentKey], so repeated renders of the
// same remote document do not hit the network:
//
//	f := httputil.NewFetcher(c, cache.NewDefaultKeyer())
//	data, err := f.Fetch(ctx, "https://example.com/services.json")
//
// # Retry
//
// [Retry] re-runs an operation for transient failures only. Errors must be
// wrapped in [RetryableError] to be retried; the fetcher does so for
// network errors, 5xx responses and 429 responses.
//
// [cache.Cache]: github.com/matzehuels/dotgraph/pkg/cache.Cache
// [cache.Keyer.DocumentKey]: github.com/matzehuels/dotgraph/pkg/cache.Keyer
package httputil

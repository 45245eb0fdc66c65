package httputil

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/dotgraph/pkg/buildinfo"
	"github.com/matzehuels/dotgraph/pkg/cache"
	"github.com/matzehuels/dotgraph/pkg/errors"
	"github.com/matzehuels/dotgraph/pkg/observability"
)

// DefaultMaxBytes limits the size of fetched documents.
const DefaultMaxBytes = 8 << 20

// Fetcher downloads documents over HTTP with caching and retries.
type Fetcher struct {
	Client   *http.Client
	Cache    cache.Cache
	Keyer    cache.Keyer
	TTL      time.Duration
	MaxBytes int64
	Attempts int
	Delay    time.Duration
}

// NewFetcher creates a fetcher with default limits. A nil cache disables
// caching and a nil keyer uses the default key scheme.
func NewFetcher(c cache.Cache, keyer cache.Keyer) *Fetcher {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Fetcher{
		Client:   &http.Client{Timeout: 30 * time.Second},
		Cache:    c,
		Keyer:    keyer,
		TTL:      cache.TTLDocument,
		MaxBytes: DefaultMaxBytes,
		Attempts: 3,
		Delay:    time.Second,
	}
}

// Fetch returns the body of rawURL, from the cache when possible. When
// refresh is true the cache is bypassed but still updated.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, refresh bool) ([]byte, error) {
	if err := errors.ValidateURL(rawURL); err != nil {
		return nil, err
	}

	key := f.Keyer.DocumentKey(rawURL)
	if !refresh {
		if data, ok, err := f.Cache.Get(ctx, key); err == nil && ok {
			observability.Cache().OnCacheHit(ctx, "document")
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "document")
	}

	var data []byte
	err := Retry(ctx, f.Attempts, f.Delay, func() error {
		var err error
		data, err = f.get(ctx, rawURL)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := f.Cache.Set(ctx, key, data, f.TTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "document", len(data))
	}
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	u, _ := url.Parse(rawURL)
	hooks := observability.HTTP()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "request %s", rawURL)
	}
	req.Header.Set("User-Agent", "dotgraph/"+buildinfo.Version)
	req.Header.Set("Accept", "application/json, application/toml, application/yaml, text/plain")

	hooks.OnRequest(ctx, req.Method, u.Host, u.Path)
	start := time.Now()
	resp, err := f.Client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, u.Host, u.Path, err)
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "fetch %s", rawURL)
		}
		return nil, Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", rawURL))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode, rawURL); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.MaxBytes+1))
	if err != nil {
		return nil, Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read %s", rawURL))
	}
	if int64(len(data)) > f.MaxBytes {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document %s exceeds %d bytes", rawURL, f.MaxBytes)
	}
	return data, nil
}

func checkStatus(code int, rawURL string) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s: not found", rawURL)
	case code == http.StatusTooManyRequests || code >= 500:
		return Retryable(errors.New(errors.ErrCodeNetwork, "%s: status %d", rawURL, code))
	default:
		return errors.New(errors.ErrCodeNetwork, "%s: status %d", rawURL, code)
	}
}

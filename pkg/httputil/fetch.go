package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/floorplan/pkg/cache"
	"github.com/matzehuels/floorplan/pkg/observability"
)

const (
	// maxFetchSize caps downloaded resources at 20 MiB. Backdrop photos are
	// the only thing fetched here and anything larger is almost certainly
	// not a floor-plan photo.
	maxFetchSize = 20 << 20

	// fetchTimeout bounds a single fetch attempt.
	fetchTimeout = 30 * time.Second

	// fetchTTL is how long fetched resources stay cached.
	fetchTTL = 24 * time.Hour
)

// Fetcher downloads remote resources with caching and retry.
type Fetcher struct {
	client *http.Client
	cache  cache.Cache
	keyer  cache.Keyer
}

// fetchEntry is the cached representation of a fetch result.
type fetchEntry struct {
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
}

// NewFetcher creates a Fetcher.
// If client is nil, a default client with a 30s timeout is used.
// If c is nil, caching is disabled via a NullCache.
// If keyer is nil, the default keyer is used.
func NewFetcher(client *http.Client, c cache.Cache, keyer cache.Keyer) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Fetcher{client: client, cache: c, keyer: keyer}
}

// Fetch downloads the resource at url, returning its bytes and the
// Content-Type header reported by the server. Responses are cached; a cache
// hit skips the network entirely. Transient failures (network errors, 5xx)
// are retried with exponential backoff.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	key := f.keyer.HTTPKey("fetch", url)

	if data, hit, err := f.cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "fetch")
		var entry fetchEntry
		if err := json.Unmarshal(data, &entry); err == nil {
			return entry.Data, entry.ContentType, nil
		}
		// Corrupt cache entry - fall through to refetch
	}
	observability.Cache().OnCacheMiss(ctx, "fetch")

	var body []byte
	var contentType string
	err := Retry(ctx, 3, time.Second, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return &RetryableError{Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return &RetryableError{Err: fmt.Errorf("server error: %s", resp.Status)}
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status: %s", resp.Status)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxFetchSize+1))
		if err != nil {
			return &RetryableError{Err: err}
		}
		if len(body) > maxFetchSize {
			return fmt.Errorf("resource exceeds %d byte limit", maxFetchSize)
		}
		contentType = resp.Header.Get("Content-Type")
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	if data, err := json.Marshal(fetchEntry{Data: body, ContentType: contentType}); err == nil {
		if err := f.cache.Set(ctx, key, data, fetchTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "fetch", len(data))
		}
	}

	return body, contentType, nil
}

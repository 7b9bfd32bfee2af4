// Package cache provides caching for rendered artifacts and fetched backdrops.
//
// The Cache interface abstracts over storage backends (file-based for CLI,
// null for tests). Keys are generated by a Keyer so that every consumer
// derives keys the same way and option changes invalidate entries naturally.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with optional expiry.
// Implementations must treat a missing or expired entry as a miss, never an
// error.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the key
	// was found (and not expired).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Standard TTLs per entry kind.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)

// LayoutKeyOpts captures the generator options that affect a cached layout.
type LayoutKeyOpts struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Seed   uint64 `json:"seed"`
	Jitter bool   `json:"jitter"`
}

// ArtifactKeyOpts captures the render options that affect a cached artifact.
// Every option that changes the output bytes for any format must appear here,
// or a cached entry rendered with different options would be served for it.
type ArtifactKeyOpts struct {
	Format    string `json:"format"`
	ShowGrid  bool   `json:"show_grid"`
	HandDrawn bool   `json:"hand_drawn"`
	Detailed  bool   `json:"detailed"`
	Backdrop  string `json:"backdrop,omitempty"`
}

// Keyer generates cache keys for the different cached value types.
type Keyer interface {
	// HTTPKey generates a key for HTTP response caching (backdrop fetches).
	HTTPKey(namespace, key string) string

	// LayoutKey generates a key for a generated layout, derived from the
	// selection hash and the generator options.
	LayoutKey(selectionHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact, derived from the
	// layout hash and the render options.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer generates unscoped cache keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return hashKey("http:"+namespace, key)
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(selectionHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", selectionHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)

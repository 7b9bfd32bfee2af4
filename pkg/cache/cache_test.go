package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	// Miss before set
	_, hit, err := c.Get(ctx, "layout:abc")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("expected miss before Set")
	}

	// Round trip
	want := []byte(`[{"id":"r1","x":20,"y":20,"w":100,"h":80}]`)
	if err := c.Set(ctx, "layout:abc", want, time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	got, hit, err := c.Get(ctx, "layout:abc")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("expected hit after Set")
	}
	if string(got) != string(want) {
		t.Errorf("Get = %s, want %s", got, want)
	}

	// Expired entries are treated as misses
	if err := c.Set(ctx, "layout:old", want, -time.Second); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	_, hit, err = c.Get(ctx, "layout:old")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("expired entry should be a miss")
	}

	// Delete
	if err := c.Delete(ctx, "layout:abc"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "layout:abc")
	if hit {
		t.Error("expected miss after Delete")
	}

	// Deleting a missing key is not an error
	if err := c.Delete(ctx, "layout:missing"); err != nil {
		t.Errorf("Delete missing key error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// HTTPKey is namespaced
	hk1 := k.HTTPKey("backdrop", "https://example.com/a.png")
	hk2 := k.HTTPKey("backdrop", "https://example.com/b.png")
	if hk1 == hk2 {
		t.Error("Different URLs should produce different keys")
	}

	// LayoutKey should include options in hash
	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Width: 800, Height: 600, Seed: 42})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Width: 800, Height: 600, Seed: 7})
	if lk1 == lk2 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}

	// ArtifactKey
	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "json"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}

	// Keys are deterministic
	if k.LayoutKey("h", LayoutKeyOpts{Seed: 1}) != k.LayoutKey("h", LayoutKeyOpts{Seed: 1}) {
		t.Error("LayoutKey should be deterministic")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "project:123:")

	httpKey := scoped.HTTPKey("backdrop", "https://example.com/a.png")
	if !strings.HasPrefix(httpKey, "project:123:") {
		t.Errorf("ScopedKeyer HTTPKey should be prefixed: %s", httpKey)
	}

	layoutKey := scoped.LayoutKey("hash", LayoutKeyOpts{})
	if !strings.HasPrefix(layoutKey, "project:123:") {
		t.Errorf("ScopedKeyer LayoutKey should be prefixed: %s", layoutKey)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	if key := scoped.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"}); !strings.HasPrefix(key, "prefix:") {
		t.Errorf("ArtifactKey should be prefixed: %s", key)
	}
}


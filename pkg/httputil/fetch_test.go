package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/floorplan/pkg/cache"
)

func TestRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("success first attempt", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			return nil
		})
		if err != nil {
			t.Fatalf("Retry error: %v", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("retryable error retried", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			if calls < 3 {
				return &RetryableError{Err: errors.New("transient")}
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Retry error: %v", err)
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
	})

	t.Run("non-retryable returned immediately", func(t *testing.T) {
		calls := 0
		permanent := errors.New("permanent")
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			return permanent
		})
		if !errors.Is(err, permanent) {
			t.Errorf("err = %v, want %v", err, permanent)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("exhausted attempts return last error", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 2, time.Millisecond, func() error {
			calls++
			return &RetryableError{Err: errors.New("still failing")}
		})
		if err == nil {
			t.Fatal("expected error after exhausted attempts")
		}
		if calls != 2 {
			t.Errorf("calls = %d, want 2", calls)
		}
	})
}

func TestFetcherFetch(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("not-really-a-png"))
	}))
	defer srv.Close()

	ctx := context.Background()
	fileCache, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	f := NewFetcher(srv.Client(), fileCache, nil)

	data, contentType, err := f.Fetch(ctx, srv.URL+"/plan.png")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if string(data) != "not-really-a-png" {
		t.Errorf("data = %q", data)
	}
	if contentType != "image/png" {
		t.Errorf("contentType = %q, want image/png", contentType)
	}

	// Second fetch served from cache
	_, _, err = f.Fetch(ctx, srv.URL+"/plan.png")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1 (second fetch should hit cache)", got)
	}
}

func TestFetcherFetchErrors(t *testing.T) {
	t.Run("not found is not retried", func(t *testing.T) {
		var hits atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			http.NotFound(w, r)
		}))
		defer srv.Close()

		f := NewFetcher(srv.Client(), nil, nil)
		_, _, err := f.Fetch(context.Background(), srv.URL)
		if err == nil {
			t.Fatal("expected error for 404")
		}
		if got := hits.Load(); got != 1 {
			t.Errorf("server hits = %d, want 1", got)
		}
	})

	t.Run("server error is retried", func(t *testing.T) {
		var hits atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) < 2 {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte("ok"))
		}))
		defer srv.Close()

		f := NewFetcher(srv.Client(), nil, nil)
		data, _, err := f.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("Fetch error: %v", err)
		}
		if string(data) != "ok" {
			t.Errorf("data = %q, want ok", data)
		}
		if got := hits.Load(); got != 2 {
			t.Errorf("server hits = %d, want 2", got)
		}
	})
}

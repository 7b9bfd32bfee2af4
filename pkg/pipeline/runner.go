package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/floorplan/pkg/cache"
	"github.com/matzehuels/floorplan/pkg/observability"
	"github.com/matzehuels/floorplan/pkg/plan"
	"github.com/matzehuels/floorplan/pkg/plan/generate"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching logic exists once.
//
// The Runner is stateless except for the cache and logger; it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
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
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete generate → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	generateStart := time.Now()
	layout, layoutHit, err := r.GenerateWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = layout
	result.Stats.GenerateTime = time.Since(generateStart)
	result.Stats.RoomCount = len(layout)
	result.CacheInfo.LayoutHit = layoutHit

	if data, err := json.Marshal(layout); err == nil {
		result.LayoutHash = cache.Hash(data)
	}

	r.Logger.Info("generated layout",
		"rooms", len(layout),
		"seed", opts.Seed,
		"duration", result.Stats.GenerateTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// GenerateWithCacheInfo expands a selection into a layout with caching and
// returns cache hit info.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, opts Options) (plan.Layout, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	selectionData, err := json.Marshal(opts.Selections)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(selectionData), cache.LayoutKeyOpts{
		Width:  plan.CanvasWidth,
		Height: plan.CanvasHeight,
		Seed:   opts.Seed,
		Jitter: !opts.NoJitter,
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached plan.Layout
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, true, nil
			}
			// Corrupt entry, fall through to regenerate.
		}
	}

	start := time.Now()
	observability.Pipeline().OnGenerateStart(ctx, len(opts.Selections))
	layout, err := generate.Generate(opts.Selections, opts.GenerateOptions())
	observability.Pipeline().OnGenerateComplete(ctx, len(layout), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(layout); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
	}

	return layout, false, nil
}

// Generate is a convenience wrapper that discards the cache hit info.
func (r *Runner) Generate(ctx context.Context, opts Options) (plan.Layout, error) {
	layout, _, err := r.GenerateWithCacheInfo(ctx, opts)
	return layout, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit
// info. Artifacts are keyed by layout hash plus the render options that
// change the output bytes.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, layout plan.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	layoutData, err := json.Marshal(layout)
	if err != nil {
		return nil, false, err
	}
	layoutHash := cache.Hash(layoutData)
	backdropHash := ""
	if len(opts.Backdrop) > 0 {
		backdropHash = cache.Hash(opts.Backdrop)
	}

	keyFor := func(format string) string {
		return r.Keyer.ArtifactKey(layoutHash, cache.ArtifactKeyOpts{
			Format:    format,
			ShowGrid:  opts.ShowGrid,
			HandDrawn: opts.HandDrawn,
			Detailed:  opts.Detailed,
			Backdrop:  backdropHash,
		})
	}

	allCached := true
	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			if data, hit, err := r.Cache.Get(ctx, keyFor(format)); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	rendered, err := Render(layout, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		_ = r.Cache.Set(ctx, keyFor(format), data, cache.TTLArtifact)
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, layout plan.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, layout, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

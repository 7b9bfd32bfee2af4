// Package pipeline provides the generate → render pipeline for layouts.
//
// The CLI and the HTTP API both produce layouts the same way: expand a room
// selection into placed rooms, then project that layout into one or more
// output formats. Centralizing the two stages here keeps their caching and
// instrumentation identical across entry points.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Selections: []plan.RoomSelection{{Type: "bedroom", Quantity: 2}},
//	    Formats:    []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	layout, err := runner.Generate(ctx, opts)
//	artifacts, err := runner.Render(ctx, layout, opts)
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/plan"
	"github.com/matzehuels/floorplan/pkg/plan/generate"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Generate options.
	Selections []plan.RoomSelection `json:"selections,omitempty"`
	Seed       uint64               `json:"seed,omitempty"`
	NoJitter   bool                 `json:"no_jitter,omitempty"`
	Refresh    bool                 `json:"refresh,omitempty"`

	// Render options.
	Formats   []string `json:"formats,omitempty"`
	ShowGrid  bool     `json:"show_grid,omitempty"`
	HandDrawn bool     `json:"hand_drawn,omitempty"`
	Detailed  bool     `json:"detailed,omitempty"`

	// Backdrop composited beneath the rooms, photo-trace renders only.
	// Never part of geometry.
	Backdrop     []byte `json:"-"`
	BackdropMIME string `json:"-"`

	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Seed == 0 {
		o.Seed = generate.DefaultSeed
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	for _, f := range o.Formats {
		if !ValidFormats[f] {
			return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
		}
	}
	return nil
}

// GenerateOptions maps the pipeline options onto the generator.
func (o Options) GenerateOptions() generate.Options {
	return generate.Options{Seed: o.Seed, Jitter: !o.NoJitter}
}

// Result holds everything the pipeline produced.
type Result struct {
	Layout     plan.Layout
	Artifacts  map[string][]byte
	LayoutHash string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats records per-stage timings.
type Stats struct {
	GenerateTime time.Duration
	RenderTime   time.Duration
	RoomCount    int
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool
}

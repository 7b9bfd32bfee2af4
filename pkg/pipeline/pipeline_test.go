package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/floorplan/pkg/cache"
	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/plan"
	"github.com/matzehuels/floorplan/pkg/plan/generate"
)

func testOptions() Options {
	return Options{
		Selections: []plan.RoomSelection{
			{Type: "bedroom", Quantity: 2},
			{Type: "kitchen", Quantity: 1},
		},
		Formats: []string{FormatSVG, FormatJSON, FormatDOT},
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(cache.NewNullCache(), nil, nil)
	defer r.Close()

	result, err := r.Execute(context.Background(), testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if result.Stats.RoomCount != 3 {
		t.Errorf("RoomCount = %d, want 3", result.Stats.RoomCount)
	}
	if err := result.Layout.Validate(); err != nil {
		t.Errorf("generated layout invalid: %v", err)
	}
	for _, format := range []string{FormatSVG, FormatJSON, FormatDOT} {
		if len(result.Artifacts[format]) == 0 {
			t.Errorf("missing %s artifact", format)
		}
	}
	if !strings.HasPrefix(string(result.Artifacts[FormatSVG]), "<svg") {
		t.Error("svg artifact does not look like SVG")
	}
	if result.LayoutHash == "" {
		t.Error("missing layout hash")
	}
	if result.CacheInfo.LayoutHit || result.CacheInfo.RenderHit {
		t.Error("first run should not hit cache")
	}
}

func TestExecuteCaching(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()
	ctx := context.Background()

	first, err := r.Execute(ctx, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	second, err := r.Execute(ctx, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit cache: %+v", second.CacheInfo)
	}
	if string(first.Artifacts[FormatSVG]) != string(second.Artifacts[FormatSVG]) {
		t.Error("cached artifact differs from original")
	}

	refresh := testOptions()
	refresh.Refresh = true
	third, err := r.Execute(ctx, refresh)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.LayoutHit {
		t.Error("refresh should bypass the layout cache")
	}
}

func TestRenderCacheKeyedByOptions(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()
	ctx := context.Background()

	layout, err := r.Generate(ctx, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	// Warm the cache with plain renders, then re-render the same layout with
	// each byte-changing option flipped. None of these may be served the
	// cached plain artifact.
	plain := testOptions()
	if _, err := r.Render(ctx, layout, plain); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		format string
		modify func(*Options)
	}{
		{"hand drawn", FormatSVG, func(o *Options) { o.HandDrawn = true }},
		{"grid", FormatSVG, func(o *Options) { o.ShowGrid = true }},
		{"detailed", FormatDOT, func(o *Options) { o.Detailed = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			tt.modify(&opts)

			cached, hit, err := r.RenderWithCacheInfo(ctx, layout, opts)
			if err != nil {
				t.Fatal(err)
			}
			if hit {
				t.Error("changed render options should miss the cache")
			}

			fresh, err := Render(layout, opts)
			if err != nil {
				t.Fatal(err)
			}
			if string(cached[tt.format]) != string(fresh[tt.format]) {
				t.Errorf("%s artifact differs from an uncached render", tt.format)
			}
		})
	}
}

func TestExecuteSeedIsDeterministic(t *testing.T) {
	r := NewRunner(cache.NewNullCache(), nil, nil)
	defer r.Close()
	ctx := context.Background()

	opts := testOptions()
	opts.Seed = 7
	a, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Layout {
		if a.Layout[i].Rect != b.Layout[i].Rect {
			t.Errorf("room %d differs across runs with the same seed", i)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Seed != generate.DefaultSeed {
		t.Errorf("Seed = %d, want %d", opts.Seed, generate.DefaultSeed)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}

	bad := Options{Formats: []string{"bmp"}}
	if err := bad.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("got %v, want INVALID_FORMAT", err)
	}
}

func TestExecuteInvalidSelection(t *testing.T) {
	r := NewRunner(cache.NewNullCache(), nil, nil)
	defer r.Close()

	opts := testOptions()
	opts.Selections = []plan.RoomSelection{{Type: "bedroom", Quantity: 0}}
	if _, err := r.Execute(context.Background(), opts); err == nil {
		t.Error("zero quantity should fail")
	}
}

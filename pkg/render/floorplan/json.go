package floorplan

import (
	"encoding/json"

	"github.com/matzehuels/floorplan/pkg/plan"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	seed     uint64
	seeded   bool
	overlaps bool
}

// WithJSONSeed records the generator seed in the output, enabling
// reproducible regeneration of the same layout.
func WithJSONSeed(seed uint64) JSONOption {
	return func(r *jsonRenderer) { r.seed = seed; r.seeded = true }
}

// WithJSONOverlaps includes the list of overlapping room pairs. Overlaps are
// legal in a layout; downstream consumers that need disjoint rooms use this
// to decide whether to trust area sums.
func WithJSONOverlaps() JSONOption { return func(r *jsonRenderer) { r.overlaps = true } }

type jsonOutput struct {
	Width      int                  `json:"width"`
	Height     int                  `json:"height"`
	Grid       int                  `json:"grid"`
	Seed       *uint64              `json:"seed,omitempty"`
	Rooms      plan.Layout          `json:"rooms"`
	Selections []plan.RoomSelection `json:"selections"`
	Overlaps   [][2]string          `json:"overlaps,omitempty"`
}

// RenderJSON exports the layout with its canvas metadata as a pretty-printed
// JSON document. This is the interchange format between the engine and the
// surrounding project form: the rooms array is exactly the structure the
// persistence boundary stores verbatim, and the selections multiset is the
// grouped summary the form renders.
func RenderJSON(l plan.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Width:      plan.CanvasWidth,
		Height:     plan.CanvasHeight,
		Grid:       plan.Grid,
		Rooms:      l,
		Selections: plan.GroupByType(l),
	}
	if r.seeded {
		out.Seed = &r.seed
	}
	if r.overlaps {
		out.Overlaps = l.Overlapping()
	}

	return json.MarshalIndent(out, "", "  ")
}

// Package generate turns room selections into an initial layout.
//
// The generator expands each selection into individual room instances, sizes
// them proportionally to their catalog default areas, and row-packs them onto
// the virtual canvas. Grouping is deterministic; geometry is only
// deterministic for a fixed seed, because room widths carry a small seeded
// jitter that keeps generated plans from looking machine-stamped.
package generate

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/google/uuid"

	"github.com/matzehuels/floorplan/pkg/catalog"
	"github.com/matzehuels/floorplan/pkg/plan"
)

// Packing constants, in virtual-canvas units.
const (
	// Padding is the margin between the canvas edge and any generated room.
	Padding = 20

	// Gap is the spacing between neighboring generated rooms.
	Gap = 10

	// minGenWidth and minGenHeight are the smallest dimensions the generator
	// emits. They are intentionally larger than plan.MinRoomSize so generated
	// rooms are comfortable to grab and resize.
	minGenWidth  = 60
	minGenHeight = 40

	// breathingRoom shrinks the area scale so rows do not pack wall to wall.
	breathingRoom = 0.85

	// maxJitter is the maximum relative width variation.
	maxJitter = 0.15
)

// DefaultSeed is the default jitter seed.
const DefaultSeed = uint64(42)

// Options configures generation.
type Options struct {
	// Seed drives the width jitter. The same selections with the same seed
	// always produce the same geometry.
	Seed uint64

	// Jitter enables the width variation. When false the output depends only
	// on the selections.
	Jitter bool
}

// DefaultOptions returns the standard generator configuration.
func DefaultOptions() Options {
	return Options{Seed: DefaultSeed, Jitter: true}
}

// instance is one expanded room awaiting placement.
type instance struct {
	config catalog.Config
	label  string
}

// Generate produces a layout for the given selections.
//
// Each selection of quantity n becomes n rooms; labels get an index suffix
// only when n > 1 ("Bedroom 1", "Bedroom 2", but a lone "Kitchen"). Instances
// are placed largest-first in rows, wrapping when a room would overflow the
// row and compressing heights when the canvas bottom is reached.
//
// An empty selection list yields an empty layout and no error. Unknown types
// and non-positive quantities are rejected.
func Generate(selections []plan.RoomSelection, opts Options) (plan.Layout, error) {
	if err := catalog.ValidateSelections(selections); err != nil {
		return nil, err
	}
	if len(selections) == 0 {
		return plan.Layout{}, nil
	}

	instances := expand(selections)

	// Largest rooms first packs noticeably denser than insertion order.
	sort.SliceStable(instances, func(i, j int) bool {
		return instances[i].config.DefaultAreaM2 > instances[j].config.DefaultAreaM2
	})

	const (
		usableW = plan.CanvasWidth - 2*Padding
		usableH = plan.CanvasHeight - 2*Padding
	)

	var totalArea float64
	for _, inst := range instances {
		totalArea += inst.config.DefaultAreaM2
	}

	// scale converts meters to canvas units such that the rooms together
	// fill most of the usable canvas.
	var scale float64
	if totalArea > 0 {
		scale = math.Sqrt(float64(usableW*usableH)/totalArea) * breathingRoom
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0xdeadbeef))

	layout := make(plan.Layout, 0, len(instances))
	cx, cy, rowHeight := Padding, Padding, 0

	for _, inst := range instances {
		jitter := 1.0
		if opts.Jitter {
			jitter = 1 + rng.Float64()*maxJitter
		}

		// Snap the dimensions so generated geometry is already grid-aligned;
		// a later move keeps sizes unchanged, so only aligned sizes survive
		// editing without drifting off the grid. Padding, Gap, and every
		// clamp bound are grid multiples, keeping x/y aligned too.
		area := inst.config.DefaultAreaM2
		w := snapGrid(int(math.Round(math.Sqrt(area) * scale * jitter)))
		w = clamp(w, minGenWidth, usableW)
		h := snapGrid(int(math.Round(area * scale * scale / float64(w))))
		h = clamp(h, minGenHeight, usableH/2)

		// Wrap to a new row when the room would overflow this one.
		if cx+w > Padding+usableW {
			cx = Padding
			cy += rowHeight + Gap
			rowHeight = 0
		}

		// Compress into the remaining vertical space when the canvas bottom
		// is reached. Rows past the bottom stack over the last strip; overlap
		// is tolerated, escaping the canvas is not.
		if cy+plan.MinRoomSize > Padding+usableH {
			cy = Padding + usableH - plan.MinRoomSize
		}
		if cy+h > Padding+usableH {
			h = Padding + usableH - cy
		}

		layout = append(layout, plan.PlacedRoom{
			ID:    uuid.NewString(),
			Type:  inst.config.Type,
			Label: inst.label,
			Icon:  inst.config.Icon,
			Color: inst.config.Color,
			Rect:  plan.Rect{X: cx, Y: cy, W: w, H: h},
		})

		cx += w + Gap
		rowHeight = max(rowHeight, h)
	}

	return layout, nil
}

// expand turns selections into individual labeled instances.
func expand(selections []plan.RoomSelection) []instance {
	var instances []instance
	for _, s := range selections {
		config, _ := catalog.Lookup(s.Type) // validated above
		for i := 1; i <= s.Quantity; i++ {
			label := config.Label
			if s.Quantity > 1 {
				label = fmt.Sprintf("%s %d", config.Label, i)
			}
			instances = append(instances, instance{config: config, label: label})
		}
	}
	return instances
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// snapGrid rounds v to the nearest multiple of the grid pitch.
func snapGrid(v int) int {
	return (v + plan.Grid/2) / plan.Grid * plan.Grid
}

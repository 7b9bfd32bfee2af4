// Package plan defines the room-layout data model.
//
// All geometry lives on a fixed virtual canvas of [CanvasWidth] by
// [CanvasHeight] units. Rendering surfaces map their own coordinates onto
// this space (see the canvas package); the model itself never knows about
// screen pixels.
//
// A [Layout] is an ordered list of [PlacedRoom]. Layouts are created by the
// generator (from room selections) or by a capture workflow (from drawn
// rectangles plus labeling), mutated in place by an editor session, and
// handed to the persistence boundary only as [Layout.Clone] snapshots.
package plan

import (
	"slices"

	"github.com/matzehuels/floorplan/pkg/errors"
)

// Virtual canvas dimensions and editing constants, in canvas units.
const (
	// CanvasWidth and CanvasHeight fix the virtual canvas all geometry is
	// expressed in, independent of on-screen size.
	CanvasWidth  = 800
	CanvasHeight = 600

	// Grid is the snap pitch. Move and resize operations keep every
	// coordinate a multiple of Grid at every intermediate frame.
	Grid = 10

	// MinRoomSize is the smallest width or height a room may have after
	// editing. Draws smaller than this in both dimensions are discarded as
	// gesture noise.
	MinRoomSize = 20
)

// RoomType identifies a room kind in the catalog (e.g. "bedroom").
type RoomType string

// RoomSelection is a requested count of one room type. It is the input to
// the generator and the grouped output of [GroupByType].
type RoomSelection struct {
	Type     RoomType `json:"type"`
	Quantity int      `json:"quantity"`
}

// Rect is an axis-aligned rectangle in virtual-canvas units.
type Rect struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
	W int `json:"w" bson:"w"`
	H int `json:"h" bson:"h"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() int { return r.Y + r.H }

// Contains reports whether the point (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Overlaps reports whether two rectangles share any interior area.
// Rectangles that only touch along an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// PlacedRoom is a fully labeled room rectangle with a known catalog type.
// This is the unit persisted onto a project record.
type PlacedRoom struct {
	ID    string   `json:"id" bson:"id"`
	Type  RoomType `json:"type" bson:"type"`
	Label string   `json:"label" bson:"label"`
	Icon  string   `json:"icon" bson:"icon"`
	Color string   `json:"color" bson:"color"`
	Rect  `bson:",inline"`
}

// DraftRoom is a drawn-but-not-yet-labeled rectangle. It becomes a
// PlacedRoom exactly when a room type is assigned.
type DraftRoom struct {
	ID   string    `json:"id" bson:"id"`
	Type *RoomType `json:"type" bson:"type"`
	Rect `bson:",inline"`
}

// Labeled reports whether the draft has been assigned a room type.
func (d DraftRoom) Labeled() bool { return d.Type != nil }

// Layout is an ordered list of placed rooms.
//
// The engine does not prevent rooms from overlapping; callers must not
// assume disjointness. Use [Layout.Overlapping] to detect overlaps.
type Layout []PlacedRoom

// Clone returns an independent copy of the layout. The persistence boundary
// always receives clones, never the live layout an editing session owns.
func (l Layout) Clone() Layout {
	return slices.Clone(l)
}

// Index returns the position of the room with the given id, or -1.
func (l Layout) Index(id string) int {
	return slices.IndexFunc(l, func(r PlacedRoom) bool { return r.ID == id })
}

// Validate checks the placement invariants for every room: non-negative
// origin, within canvas bounds, and at least MinRoomSize in each dimension.
func (l Layout) Validate() error {
	for _, r := range l {
		if r.W < MinRoomSize || r.H < MinRoomSize {
			return errors.New(errors.ErrCodeInvalidLayout,
				"room %s is %dx%d, smaller than minimum %d", r.ID, r.W, r.H, MinRoomSize)
		}
		if r.X < 0 || r.Y < 0 || r.Right() > CanvasWidth || r.Bottom() > CanvasHeight {
			return errors.New(errors.ErrCodeInvalidLayout,
				"room %s at (%d,%d) %dx%d exceeds the %dx%d canvas",
				r.ID, r.X, r.Y, r.W, r.H, CanvasWidth, CanvasHeight)
		}
	}
	return nil
}

// Overlapping returns the id pairs of rooms whose rectangles overlap.
// Overlap is an accepted condition, not an error; this exists so that
// downstream consumers (e.g. area estimation) can detect it explicitly.
func (l Layout) Overlapping() [][2]string {
	var pairs [][2]string
	for i := range l {
		for j := i + 1; j < len(l); j++ {
			if l[i].Overlaps(l[j].Rect) {
				pairs = append(pairs, [2]string{l[i].ID, l[j].ID})
			}
		}
	}
	return pairs
}

// GroupByType reduces a layout back to its room-selection multiset: one
// selection per type, quantities counted, ordered by first appearance.
// This is the inverse of the generator's expansion step.
func GroupByType(l Layout) []RoomSelection {
	counts := make(map[RoomType]int)
	var order []RoomType
	for _, r := range l {
		if counts[r.Type] == 0 {
			order = append(order, r.Type)
		}
		counts[r.Type]++
	}

	selections := make([]RoomSelection, len(order))
	for i, t := range order {
		selections[i] = RoomSelection{Type: t, Quantity: counts[t]}
	}
	return selections
}

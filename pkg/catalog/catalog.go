// Package catalog provides the static room-type catalog.
//
// The catalog maps a room type identifier to its display label, icon, color,
// and default floor area. It is a pure lookup table with no state; the layout
// generator uses the default areas to size rooms and the capture workflows
// use the labels during the labeling phase.
package catalog

import (
	"slices"

	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/plan"
)

// Config describes one room type.
type Config struct {
	Type          plan.RoomType `json:"type"`
	Label         string        `json:"label"`
	Icon          string        `json:"icon"`
	Color         string        `json:"color"`
	DefaultAreaM2 float64       `json:"default_area_m2"`
}

// entries is the built-in catalog, ordered for display.
var entries = []Config{
	{Type: "living_room", Label: "Living Room", Icon: "🛋️", Color: "#f5c16c", DefaultAreaM2: 20},
	{Type: "kitchen", Label: "Kitchen", Icon: "🍳", Color: "#e8796a", DefaultAreaM2: 10},
	{Type: "bedroom", Label: "Bedroom", Icon: "🛏️", Color: "#7ea8d8", DefaultAreaM2: 12},
	{Type: "bathroom", Label: "Bathroom", Icon: "🚿", Color: "#8fd0c6", DefaultAreaM2: 5},
	{Type: "dining_room", Label: "Dining Room", Icon: "🍽️", Color: "#d8b6e0", DefaultAreaM2: 12},
	{Type: "office", Label: "Office", Icon: "💻", Color: "#b5cc7e", DefaultAreaM2: 9},
	{Type: "laundry", Label: "Laundry", Icon: "🧺", Color: "#a6b8c7", DefaultAreaM2: 4},
	{Type: "balcony", Label: "Balcony", Icon: "🪴", Color: "#9fd49b", DefaultAreaM2: 6},
	{Type: "garage", Label: "Garage", Icon: "🚗", Color: "#c2b8a8", DefaultAreaM2: 18},
	{Type: "closet", Label: "Closet", Icon: "👔", Color: "#d9c789", DefaultAreaM2: 3},
	{Type: "hallway", Label: "Hallway", Icon: "🚪", Color: "#cfcfcf", DefaultAreaM2: 4},
}

var byType = func() map[plan.RoomType]Config {
	m := make(map[plan.RoomType]Config, len(entries))
	for _, e := range entries {
		m[e.Type] = e
	}
	return m
}()

// Lookup returns the catalog entry for a room type.
func Lookup(t plan.RoomType) (Config, bool) {
	c, ok := byType[t]
	return c, ok
}

// Types returns all room types in display order.
func Types() []plan.RoomType {
	types := make([]plan.RoomType, len(entries))
	for i, e := range entries {
		types[i] = e.Type
	}
	return types
}

// All returns the full catalog in display order.
// The returned slice is a copy; mutating it does not affect the catalog.
func All() []Config {
	return slices.Clone(entries)
}

// ValidateSelections checks that every selection names a known room type with
// a positive quantity. Duplicate types are the caller's responsibility (the
// generator sums quantities, it does not deduplicate).
func ValidateSelections(selections []plan.RoomSelection) error {
	for _, s := range selections {
		if s.Quantity <= 0 {
			return errors.New(errors.ErrCodeInvalidSelection,
				"quantity for %q must be positive, got %d", s.Type, s.Quantity)
		}
		if _, ok := byType[s.Type]; !ok {
			return errors.New(errors.ErrCodeInvalidRoomType, "unknown room type: %q", s.Type)
		}
	}
	return nil
}

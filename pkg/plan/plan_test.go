package plan

import (
	"encoding/json"
	"testing"
)

func TestRectOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want bool
	}{
		{
			name: "disjoint",
			a:    Rect{X: 0, Y: 0, W: 100, H: 100},
			b:    Rect{X: 200, Y: 200, W: 100, H: 100},
			want: false,
		},
		{
			name: "overlapping",
			a:    Rect{X: 0, Y: 0, W: 100, H: 100},
			b:    Rect{X: 50, Y: 50, W: 100, H: 100},
			want: true,
		},
		{
			name: "edge touching is not overlap",
			a:    Rect{X: 0, Y: 0, W: 100, H: 100},
			b:    Rect{X: 100, Y: 0, W: 100, H: 100},
			want: false,
		},
		{
			name: "contained",
			a:    Rect{X: 0, Y: 0, W: 100, H: 100},
			b:    Rect{X: 20, Y: 20, W: 10, H: 10},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			// Overlap is symmetric
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("Overlaps() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 100, H: 50}

	tests := []struct {
		name string
		x, y int
		want bool
	}{
		{"inside", 50, 40, true},
		{"top-left corner", 10, 20, true},
		{"right edge excluded", 110, 40, false},
		{"bottom edge excluded", 50, 70, false},
		{"outside", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("Contains(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestLayoutValidate(t *testing.T) {
	tests := []struct {
		name    string
		layout  Layout
		wantErr bool
	}{
		{
			name: "valid",
			layout: Layout{
				{ID: "a", Rect: Rect{X: 0, Y: 0, W: 100, H: 80}},
				{ID: "b", Rect: Rect{X: 700, Y: 520, W: 100, H: 80}},
			},
			wantErr: false,
		},
		{
			name:    "negative origin",
			layout:  Layout{{ID: "a", Rect: Rect{X: -10, Y: 0, W: 100, H: 80}}},
			wantErr: true,
		},
		{
			name:    "exceeds right edge",
			layout:  Layout{{ID: "a", Rect: Rect{X: 750, Y: 0, W: 100, H: 80}}},
			wantErr: true,
		},
		{
			name:    "exceeds bottom edge",
			layout:  Layout{{ID: "a", Rect: Rect{X: 0, Y: 550, W: 100, H: 80}}},
			wantErr: true,
		},
		{
			name:    "below minimum size",
			layout:  Layout{{ID: "a", Rect: Rect{X: 0, Y: 0, W: 10, H: 80}}},
			wantErr: true,
		},
		{
			name:    "empty layout is valid",
			layout:  Layout{},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layout.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLayoutClone(t *testing.T) {
	orig := Layout{{ID: "a", Type: "bedroom", Rect: Rect{X: 0, Y: 0, W: 100, H: 80}}}
	clone := orig.Clone()

	clone[0].X = 500
	if orig[0].X != 0 {
		t.Error("mutating clone should not affect original")
	}
}

func TestLayoutOverlapping(t *testing.T) {
	layout := Layout{
		{ID: "a", Rect: Rect{X: 0, Y: 0, W: 100, H: 100}},
		{ID: "b", Rect: Rect{X: 50, Y: 50, W: 100, H: 100}},
		{ID: "c", Rect: Rect{X: 300, Y: 300, W: 100, H: 100}},
	}

	pairs := layout.Overlapping()
	if len(pairs) != 1 {
		t.Fatalf("Overlapping() = %d pairs, want 1", len(pairs))
	}
	if pairs[0] != [2]string{"a", "b"} {
		t.Errorf("Overlapping() = %v, want [a b]", pairs[0])
	}
}

func TestGroupByType(t *testing.T) {
	layout := Layout{
		{ID: "1", Type: "bedroom"},
		{ID: "2", Type: "kitchen"},
		{ID: "3", Type: "bedroom"},
	}

	got := GroupByType(layout)
	want := []RoomSelection{
		{Type: "bedroom", Quantity: 2},
		{Type: "kitchen", Quantity: 1},
	}

	if len(got) != len(want) {
		t.Fatalf("GroupByType() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GroupByType()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestGroupByTypeEmpty(t *testing.T) {
	if got := GroupByType(Layout{}); len(got) != 0 {
		t.Errorf("GroupByType(empty) = %v, want empty", got)
	}
}

func TestPlacedRoomJSON(t *testing.T) {
	room := PlacedRoom{
		ID:    "r1",
		Type:  "bedroom",
		Label: "Bedroom 1",
		Icon:  "🛏️",
		Color: "#7ea8d8",
		Rect:  Rect{X: 20, Y: 30, W: 100, H: 80},
	}

	data, err := json.Marshal(room)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	// The persisted shape is flat: geometry fields sit alongside identity
	// fields, exactly as the project record stores them.
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	for _, key := range []string{"id", "type", "label", "icon", "color", "x", "y", "w", "h"} {
		if _, ok := flat[key]; !ok {
			t.Errorf("marshaled room missing %q field: %s", key, data)
		}
	}

	var back PlacedRoom
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if back != room {
		t.Errorf("round trip = %+v, want %+v", back, room)
	}
}

func TestDraftRoomLabeled(t *testing.T) {
	d := DraftRoom{ID: "d1", Rect: Rect{X: 0, Y: 0, W: 50, H: 50}}
	if d.Labeled() {
		t.Error("draft without type should not be labeled")
	}

	bedroom := RoomType("bedroom")
	d.Type = &bedroom
	if !d.Labeled() {
		t.Error("draft with type should be labeled")
	}
}

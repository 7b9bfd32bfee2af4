package canvas

import (
	"testing"
)

func TestViewportToCanvas(t *testing.T) {
	tests := []struct {
		name             string
		viewport         Viewport
		clientX, clientY float64
		wantX, wantY     float64
	}{
		{
			name:     "identity viewport",
			viewport: FullCanvas(),
			clientX:  400, clientY: 300,
			wantX: 400, wantY: 300,
		},
		{
			name:     "half-size surface scales up",
			viewport: Viewport{Width: 400, Height: 300},
			clientX:  200, clientY: 150,
			wantX: 400, wantY: 300,
		},
		{
			name:     "offset surface",
			viewport: Viewport{Left: 100, Top: 50, Width: 800, Height: 600},
			clientX:  100, clientY: 50,
			wantX: 0, wantY: 0,
		},
		{
			name:     "offset and scaled",
			viewport: Viewport{Left: 10, Top: 10, Width: 1600, Height: 1200},
			clientX:  810, clientY: 610,
			wantX: 400, wantY: 300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.viewport.ToCanvas(tt.clientX, tt.clientY)
			if got.X != tt.wantX || got.Y != tt.wantY {
				t.Errorf("ToCanvas(%v, %v) = (%v, %v), want (%v, %v)",
					tt.clientX, tt.clientY, got.X, got.Y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestViewportDegenerate(t *testing.T) {
	v := Viewport{Width: 0, Height: 0}
	if got := v.ToCanvas(123, 456); got != (Point{}) {
		t.Errorf("degenerate viewport should map to origin, got %+v", got)
	}
}

func TestSnap(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{4, 0},
		{5, 10},
		{14.9, 10},
		{15, 20},
		{137, 140},
		{92, 90},
		{-7, -10},
		{-4, 0},
	}

	for _, tt := range tests {
		if got := Snap(tt.in); got != tt.want {
			t.Errorf("Snap(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want int
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}

	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%d, %d, %d) = %d, want %d", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

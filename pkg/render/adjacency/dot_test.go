package adjacency

import (
	"strings"
	"testing"

	"github.com/matzehuels/floorplan/pkg/plan"
)

func TestToDOT(t *testing.T) {
	l := plan.Layout{
		{ID: "a", Label: "Bedroom", Color: "#bfdbfe", Rect: plan.Rect{X: 0, Y: 0, W: 100, H: 100}},
		{ID: "b", Label: "Kitchen", Color: "#fde68a", Rect: plan.Rect{X: 100, Y: 0, W: 100, H: 100}},
		{ID: "c", Label: "Office", Color: "#ddd6fe", Rect: plan.Rect{X: 150, Y: 50, W: 100, H: 100}},
		{ID: "d", Label: "Garage", Color: "#e5e7eb", Rect: plan.Rect{X: 500, Y: 400, W: 100, H: 100}},
	}

	dot := ToDOT(l, Options{})

	if !strings.Contains(dot, `"a" -- "b";`) {
		t.Error("rooms sharing a wall should get a plain edge")
	}
	if !strings.Contains(dot, `"b" -- "c" [color=red, style=dashed, label="overlap"];`) {
		t.Error("overlapping rooms should get a red dashed edge")
	}
	if strings.Contains(dot, `"a" -- "d"`) || strings.Contains(dot, `"d" --`) {
		t.Error("distant rooms should not be connected")
	}
	for _, want := range []string{`label="Bedroom"`, `fillcolor="#fde68a"`} {
		if !strings.Contains(dot, want) {
			t.Errorf("dot missing %q", want)
		}
	}
}

func TestToDOTDetailed(t *testing.T) {
	l := plan.Layout{
		{ID: "a", Label: "Bedroom", Color: "#bfdbfe", Rect: plan.Rect{X: 20, Y: 30, W: 100, H: 80}},
	}
	dot := ToDOT(l, Options{Detailed: true})
	if !strings.Contains(dot, `100x80 at (20,30)`) {
		t.Errorf("detailed label missing geometry:\n%s", dot)
	}
}

func TestAdjacent(t *testing.T) {
	base := plan.Rect{X: 100, Y: 100, W: 100, H: 100}
	tests := []struct {
		name string
		o    plan.Rect
		want bool
	}{
		{"right wall", plan.Rect{X: 200, Y: 100, W: 50, H: 100}, true},
		{"bottom wall", plan.Rect{X: 100, Y: 200, W: 100, H: 50}, true},
		{"corner only", plan.Rect{X: 200, Y: 200, W: 50, H: 50}, false},
		{"overlapping", plan.Rect{X: 150, Y: 150, W: 100, H: 100}, false},
		{"apart", plan.Rect{X: 400, Y: 100, W: 50, H: 50}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adjacent(base, tt.o); got != tt.want {
				t.Errorf("adjacent = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.00 200.00" xmlns="http://www.w3.org/2000/svg">`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 200.00"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(out, `width="100" height="200"`) {
		t.Errorf("size not rewritten: %s", out)
	}
}

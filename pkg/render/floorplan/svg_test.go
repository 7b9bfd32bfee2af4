package floorplan

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/floorplan/pkg/plan"
)

func testLayout() plan.Layout {
	return plan.Layout{
		{ID: "r1", Type: "bedroom", Label: "Bedroom 1", Icon: "🛏️", Color: "#bfdbfe", Rect: plan.Rect{X: 20, Y: 20, W: 200, H: 160}},
		{ID: "r2", Type: "kitchen", Label: "Kitchen", Icon: "🍳", Color: "#fde68a", Rect: plan.Rect{X: 240, Y: 20, W: 180, H: 140}},
	}
}

func TestRenderSVGBasics(t *testing.T) {
	svg := string(RenderSVG(testLayout()))

	if !strings.Contains(svg, `viewBox="0 0 800 600"`) {
		t.Error("missing fixed-canvas viewBox")
	}
	for _, want := range []string{`id="room-r1"`, `id="room-r2"`, ">Bedroom 1<", ">Kitchen<", `fill="#bfdbfe"`} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if strings.Contains(svg, `url(#grid)`) {
		t.Error("grid rendered without WithGrid")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	drafts := []plan.DraftRoom{{ID: "d1", Rect: plan.Rect{X: 500, Y: 400, W: 100, H: 80}}}
	svg := string(RenderSVG(testLayout(),
		WithGrid(),
		WithDrafts(drafts),
		WithBackdrop([]byte{0x89, 0x50, 0x4e, 0x47}, "image/png"),
	))

	if !strings.Contains(svg, `url(#grid)`) {
		t.Error("missing grid")
	}
	if !strings.Contains(svg, "stroke-dasharray") {
		t.Error("missing dashed draft rect")
	}
	if !strings.Contains(svg, "data:image/png;base64,") {
		t.Error("missing embedded backdrop")
	}
}

func TestRenderSVGEscapesLabels(t *testing.T) {
	l := plan.Layout{{ID: "r1", Type: "office", Label: `<Office> & "Den"`, Color: "#fff", Rect: plan.Rect{X: 0, Y: 0, W: 100, H: 100}}}
	svg := RenderSVG(l)
	if bytes.Contains(svg, []byte("<Office>")) {
		t.Error("label not escaped")
	}
	if !bytes.Contains(svg, []byte("&lt;Office&gt; &amp;")) {
		t.Error("expected escaped label text")
	}
}

func TestRenderSVGDeterministic(t *testing.T) {
	l := testLayout()
	if !bytes.Equal(RenderSVG(l, WithGrid()), RenderSVG(l, WithGrid())) {
		t.Error("same layout and options should render identically")
	}
}

func TestRenderJSON(t *testing.T) {
	l := testLayout()
	data, err := RenderJSON(l, WithJSONSeed(42), WithJSONOverlaps())
	if err != nil {
		t.Fatal(err)
	}

	var out struct {
		Width      int                  `json:"width"`
		Height     int                  `json:"height"`
		Grid       int                  `json:"grid"`
		Seed       *uint64              `json:"seed"`
		Rooms      plan.Layout          `json:"rooms"`
		Selections []plan.RoomSelection `json:"selections"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Width != plan.CanvasWidth || out.Height != plan.CanvasHeight || out.Grid != plan.Grid {
		t.Errorf("canvas metadata: %d x %d grid %d", out.Width, out.Height, out.Grid)
	}
	if out.Seed == nil || *out.Seed != 42 {
		t.Errorf("seed not recorded: %v", out.Seed)
	}
	if len(out.Rooms) != 2 || out.Rooms[0].ID != "r1" {
		t.Errorf("rooms not persisted verbatim: %+v", out.Rooms)
	}
	if len(out.Selections) != 2 {
		t.Errorf("selections = %+v", out.Selections)
	}
}

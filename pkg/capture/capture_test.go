package capture

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/matzehuels/floorplan/pkg/canvas"
	"github.com/matzehuels/floorplan/pkg/editor"
	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/plan"
)

// draw runs a full down/move/up over the workflow and reports whether a
// draft came out of it.
func draw(t *testing.T, w *Workflow, from, to canvas.Point) bool {
	t.Helper()
	if err := w.BeginDraw(from); err != nil {
		t.Fatalf("BeginDraw: %v", err)
	}
	w.UpdateDraw(to)
	return w.EndDraw()
}

func TestDrawCreatesDraft(t *testing.T) {
	w := NewFreeDraw(context.Background())

	if !draw(t, w, canvas.Point{X: 100, Y: 100}, canvas.Point{X: 200, Y: 180}) {
		t.Fatal("draw above threshold should create a draft")
	}
	drafts := w.Drafts()
	if len(drafts) != 1 {
		t.Fatalf("got %d drafts, want 1", len(drafts))
	}
	want := plan.Rect{X: 100, Y: 100, W: 100, H: 80}
	if drafts[0].Rect != want {
		t.Errorf("draft rect = %+v, want %+v", drafts[0].Rect, want)
	}
	if drafts[0].Labeled() {
		t.Error("fresh draft should be unlabeled")
	}
}

func TestDrawNormalizesDirection(t *testing.T) {
	w := NewFreeDraw(context.Background())

	// Drag up and to the left; top-left must still be the smaller corner.
	draw(t, w, canvas.Point{X: 200, Y: 180}, canvas.Point{X: 100, Y: 100})

	want := plan.Rect{X: 100, Y: 100, W: 100, H: 80}
	if got := w.Drafts()[0].Rect; got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestSubThresholdDrawDiscarded(t *testing.T) {
	w := NewFreeDraw(context.Background())

	if draw(t, w, canvas.Point{X: 100, Y: 100}, canvas.Point{X: 115, Y: 115}) {
		t.Error("15x15 draw should be discarded")
	}
	// Exactly the minimum is still too small; the bar is strictly greater.
	if draw(t, w, canvas.Point{X: 100, Y: 100}, canvas.Point{X: 120, Y: 120}) {
		t.Error("20x20 draw should be discarded")
	}
	if len(w.Drafts()) != 0 {
		t.Errorf("got %d drafts, want 0", len(w.Drafts()))
	}
}

func TestSingleGestureAtATime(t *testing.T) {
	w := NewFreeDraw(context.Background())

	if err := w.BeginDraw(canvas.Point{X: 10, Y: 10}); err != nil {
		t.Fatal(err)
	}
	if err := w.BeginDraw(canvas.Point{X: 50, Y: 50}); err == nil {
		t.Error("second BeginDraw while drawing should fail")
	}
	w.CancelDraw()
	if len(w.Drafts()) != 0 {
		t.Error("canceled draw created a draft")
	}
}

func TestAdjustDraftUsesEditorGeometry(t *testing.T) {
	w := NewFreeDraw(context.Background())
	draw(t, w, canvas.Point{X: 100, Y: 100}, canvas.Point{X: 200, Y: 180})
	id := w.Drafts()[0].ID

	if err := w.BeginAdjust(id, editor.ModeResizeSE, canvas.Point{X: 200, Y: 180}); err != nil {
		t.Fatal(err)
	}
	w.UpdateAdjust(canvas.Point{X: 237, Y: 192})
	w.EndAdjust()

	want := plan.Rect{X: 100, Y: 100, W: 140, H: 90}
	if got := w.Drafts()[0].Rect; got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestDeleteAndClear(t *testing.T) {
	w := NewFreeDraw(context.Background())
	draw(t, w, canvas.Point{X: 0, Y: 0}, canvas.Point{X: 100, Y: 100})
	draw(t, w, canvas.Point{X: 200, Y: 0}, canvas.Point{X: 300, Y: 100})
	id := w.Drafts()[0].ID

	if !w.DeleteDraft(id) {
		t.Fatal("delete failed")
	}
	if w.DeleteDraft(id) {
		t.Error("double delete should return false")
	}
	if len(w.Drafts()) != 1 {
		t.Fatalf("got %d drafts, want 1", len(w.Drafts()))
	}

	w.ClearDrafts()
	if len(w.Drafts()) != 0 {
		t.Error("clear left drafts behind")
	}
}

func TestLabelingGate(t *testing.T) {
	w := NewFreeDraw(context.Background())

	if err := w.EnterLabeling(); !errors.Is(err, errors.ErrCodeNoDrafts) {
		t.Errorf("labeling with no drafts: got %v, want NO_DRAFTS", err)
	}

	draw(t, w, canvas.Point{X: 0, Y: 0}, canvas.Point{X: 100, Y: 100})
	draw(t, w, canvas.Point{X: 200, Y: 0}, canvas.Point{X: 300, Y: 100})
	draw(t, w, canvas.Point{X: 400, Y: 0}, canvas.Point{X: 500, Y: 100})

	if err := w.EnterLabeling(); err != nil {
		t.Fatal(err)
	}
	drafts := w.Drafts()
	if err := w.Assign(drafts[0].ID, "bedroom"); err != nil {
		t.Fatal(err)
	}
	if err := w.Assign(drafts[1].ID, "bedroom"); err != nil {
		t.Fatal(err)
	}
	if err := w.Assign(drafts[2].ID, "spaceship"); !errors.Is(err, errors.ErrCodeInvalidRoomType) {
		t.Errorf("unknown type: got %v, want INVALID_ROOM_TYPE", err)
	}

	if got := w.Unlabeled(); got != 1 {
		t.Fatalf("Unlabeled() = %d, want 1", got)
	}
	_, _, err := w.Finish()
	if err == nil {
		t.Fatal("finish with an unlabeled draft should be blocked")
	}
	if !errors.Is(err, errors.ErrCodeUnlabeledRooms) {
		t.Errorf("got code %s, want UNLABELED_ROOMS", errors.GetCode(err))
	}
	if !strings.Contains(err.Error(), "1 room(s) remaining") {
		t.Errorf("error %q should report the remaining count", err)
	}

	if err := w.Assign(drafts[2].ID, "kitchen"); err != nil {
		t.Fatal(err)
	}
	layout, selections, err := w.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if len(layout) != 3 {
		t.Fatalf("got %d rooms, want 3", len(layout))
	}
	labels := []string{layout[0].Label, layout[1].Label, layout[2].Label}
	want := []string{"Bedroom 1", "Bedroom 2", "Kitchen"}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("label[%d] = %q, want %q", i, labels[i], want[i])
		}
	}
	got := map[plan.RoomType]int{}
	for _, s := range selections {
		got[s.Type] = s.Quantity
	}
	if got["bedroom"] != 2 || got["kitchen"] != 1 {
		t.Errorf("selections = %v", selections)
	}
}

func TestAssignOnlyInLabelPhase(t *testing.T) {
	w := NewFreeDraw(context.Background())
	draw(t, w, canvas.Point{X: 0, Y: 0}, canvas.Point{X: 100, Y: 100})

	err := w.Assign(w.Drafts()[0].ID, "bedroom")
	if !errors.Is(err, errors.ErrCodeWrongPhase) {
		t.Errorf("got %v, want WRONG_PHASE", err)
	}

	if _, _, err := w.Finish(); !errors.Is(err, errors.ErrCodeWrongPhase) {
		t.Errorf("finish in draw phase: got %v, want WRONG_PHASE", err)
	}
}

func TestPhotoTraceRequiresBackdrop(t *testing.T) {
	w := NewPhotoTrace(context.Background())

	if err := w.BeginDraw(canvas.Point{X: 0, Y: 0}); !errors.Is(err, errors.ErrCodeWrongPhase) {
		t.Errorf("drawing before upload: got %v, want WRONG_PHASE", err)
	}

	b, err := NewBackdrop(testPNG(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.SetBackdrop(b); err != nil {
		t.Fatal(err)
	}
	if w.Phase() != PhaseDraw {
		t.Fatalf("phase = %s, want draw", w.Phase())
	}
	if err := w.SetBackdrop(b); !errors.Is(err, errors.ErrCodeWrongPhase) {
		t.Errorf("second upload: got %v, want WRONG_PHASE", err)
	}

	if !draw(t, w, canvas.Point{X: 100, Y: 100}, canvas.Point{X: 200, Y: 180}) {
		t.Error("drawing after upload should work")
	}
}

func TestBackdropRejectsNonImage(t *testing.T) {
	_, err := NewBackdrop([]byte("<!DOCTYPE html><html></html>"))
	if !errors.Is(err, errors.ErrCodeInvalidImage) {
		t.Errorf("got %v, want INVALID_IMAGE", err)
	}
	if _, err := NewBackdrop(nil); !errors.Is(err, errors.ErrCodeInvalidImage) {
		t.Errorf("empty upload: got %v, want INVALID_IMAGE", err)
	}
}

func TestBackdropDecodesDimensions(t *testing.T) {
	b, err := NewBackdrop(testPNG(t))
	if err != nil {
		t.Fatal(err)
	}
	if b.MIME != "image/png" {
		t.Errorf("MIME = %s", b.MIME)
	}
	if b.Width != 4 || b.Height != 3 {
		t.Errorf("dimensions = %dx%d, want 4x3", b.Width, b.Height)
	}
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 3))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

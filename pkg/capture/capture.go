// Package capture implements the rectangle-capture workflows used to bring
// an existing floor plan into the model: free-draw (sketch rooms on an empty
// canvas) and photo-trace (sketch over an uploaded photo).
//
// Both run the same two-phase state machine, Draw then Label. Photo-trace
// adds a leading Upload phase that gates drawing on a decoded backdrop
// image; the backdrop never participates in geometry, it is handed to the
// renderer as-is. A [Workflow] is single-gesture like an editor session:
// there is one draw-in-progress slot and one adjust-in-progress slot, never
// both at once.
package capture

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/matzehuels/floorplan/pkg/canvas"
	"github.com/matzehuels/floorplan/pkg/catalog"
	"github.com/matzehuels/floorplan/pkg/editor"
	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/observability"
	"github.com/matzehuels/floorplan/pkg/plan"
)

// Phase is the workflow's current state.
type Phase string

const (
	// PhaseUpload waits for a backdrop image. Photo-trace only.
	PhaseUpload Phase = "upload"
	// PhaseDraw accepts draw gestures and draft adjustments.
	PhaseDraw Phase = "draw"
	// PhaseLabel assigns catalog types to drafts.
	PhaseLabel Phase = "label"
)

type drawState struct {
	anchor canvas.Point
	rect   plan.Rect
}

type adjustState struct {
	draftID string
	mode    editor.Mode
	anchor  canvas.Point
	orig    plan.Rect
}

// Workflow is one capture session. Not safe for concurrent use.
type Workflow struct {
	ctx      context.Context
	phase    Phase
	drafts   []plan.DraftRoom
	drawing  *drawState
	adjust   *adjustState
	backdrop *Backdrop
}

// NewFreeDraw starts a free-draw session, ready to draw immediately.
func NewFreeDraw(ctx context.Context) *Workflow {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Workflow{ctx: ctx, phase: PhaseDraw}
}

// NewPhotoTrace starts a photo-trace session. Drawing is blocked until
// SetBackdrop succeeds.
func NewPhotoTrace(ctx context.Context) *Workflow {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Workflow{ctx: ctx, phase: PhaseUpload}
}

// Phase returns the current workflow phase.
func (w *Workflow) Phase() Phase { return w.phase }

// Backdrop returns the uploaded backdrop image, or nil.
func (w *Workflow) Backdrop() *Backdrop { return w.backdrop }

// Drafts returns a copy of the current draft rooms.
func (w *Workflow) Drafts() []plan.DraftRoom {
	out := make([]plan.DraftRoom, len(w.drafts))
	copy(out, w.drafts)
	return out
}

// SetBackdrop installs the traced photo and unlocks drawing. Only valid in
// the upload phase.
func (w *Workflow) SetBackdrop(b *Backdrop) error {
	if w.phase != PhaseUpload {
		return errors.New(errors.ErrCodeWrongPhase, "backdrop can only be set before drawing starts (phase %s)", w.phase)
	}
	if b == nil {
		return errors.New(errors.ErrCodeInvalidImage, "no image supplied")
	}
	w.backdrop = b
	w.phase = PhaseDraw
	return nil
}

// BeginDraw anchors a new rectangle at p. Fails outside the draw phase or
// while another gesture is in flight.
func (w *Workflow) BeginDraw(p canvas.Point) error {
	if w.phase != PhaseDraw {
		return errors.New(errors.ErrCodeWrongPhase, "cannot draw in phase %s", w.phase)
	}
	if w.drawing != nil || w.adjust != nil {
		return errors.New(errors.ErrCodeWrongPhase, "a gesture is already in progress")
	}
	w.drawing = &drawState{anchor: p, rect: normalize(p, p)}
	observability.Editor().OnGestureBegin(w.ctx, "draw", "")
	return nil
}

// UpdateDraw grows or shrinks the in-progress rectangle towards p. The rect
// stays normalized with x,y at the top-left whichever direction the pointer
// moves.
func (w *Workflow) UpdateDraw(p canvas.Point) {
	if w.drawing == nil {
		return
	}
	w.drawing.rect = normalize(w.drawing.anchor, p)
}

// Drawing returns the in-progress rectangle, if any, for rendering.
func (w *Workflow) Drawing() (plan.Rect, bool) {
	if w.drawing == nil {
		return plan.Rect{}, false
	}
	return w.drawing.rect, true
}

// EndDraw finalizes the in-progress rectangle as a draft room. Rectangles
// not strictly larger than the minimum room size in both dimensions are
// discarded as gesture noise; the return value reports whether a draft was
// created.
func (w *Workflow) EndDraw() bool {
	if w.drawing == nil {
		return false
	}
	r := w.drawing.rect
	w.drawing = nil
	created := r.W > plan.MinRoomSize && r.H > plan.MinRoomSize
	if created {
		w.drafts = append(w.drafts, plan.DraftRoom{ID: uuid.NewString(), Rect: fitToGrid(r)})
	}
	observability.Editor().OnGestureEnd(w.ctx, "draw", "", !created)
	return created
}

// CancelDraw abandons the in-progress rectangle without creating a draft.
func (w *Workflow) CancelDraw() {
	if w.drawing == nil {
		return
	}
	w.drawing = nil
	observability.Editor().OnGestureEnd(w.ctx, "draw", "", true)
}

// BeginAdjust starts moving or resizing an existing draft, using the same
// gesture geometry as the layout editor.
func (w *Workflow) BeginAdjust(draftID string, mode editor.Mode, p canvas.Point) error {
	if w.phase != PhaseDraw {
		return errors.New(errors.ErrCodeWrongPhase, "cannot adjust drafts in phase %s", w.phase)
	}
	if w.drawing != nil || w.adjust != nil {
		return errors.New(errors.ErrCodeWrongPhase, "a gesture is already in progress")
	}
	i := w.draftIndex(draftID)
	if i < 0 {
		return errors.New(errors.ErrCodeRoomNotFound, "no draft with id %s", draftID)
	}
	w.adjust = &adjustState{draftID: draftID, mode: mode, anchor: p, orig: w.drafts[i].Rect}
	observability.Editor().OnGestureBegin(w.ctx, string(mode), draftID)
	return nil
}

// UpdateAdjust recomputes the adjusted draft's rectangle from the pointer.
func (w *Workflow) UpdateAdjust(p canvas.Point) {
	if w.adjust == nil {
		return
	}
	i := w.draftIndex(w.adjust.draftID)
	if i < 0 {
		w.adjust = nil
		return
	}
	dx := p.X - w.adjust.anchor.X
	dy := p.Y - w.adjust.anchor.Y
	w.drafts[i].Rect = editor.DeriveRect(w.adjust.orig, w.adjust.mode, dx, dy)
}

// EndAdjust finishes the adjust gesture, keeping the last rectangle.
func (w *Workflow) EndAdjust() {
	if w.adjust == nil {
		return
	}
	observability.Editor().OnGestureEnd(w.ctx, string(w.adjust.mode), w.adjust.draftID, false)
	w.adjust = nil
}

// DeleteDraft removes a single draft. Valid in both draw and label phases.
func (w *Workflow) DeleteDraft(draftID string) bool {
	i := w.draftIndex(draftID)
	if i < 0 {
		return false
	}
	if w.adjust != nil && w.adjust.draftID == draftID {
		w.adjust = nil
	}
	w.drafts = append(w.drafts[:i], w.drafts[i+1:]...)
	return true
}

// ClearDrafts discards every draft and returns to the draw phase.
func (w *Workflow) ClearDrafts() {
	w.drafts = nil
	w.drawing = nil
	w.adjust = nil
	if w.phase == PhaseLabel {
		w.phase = PhaseDraw
	}
}

// EnterLabeling moves the workflow into the label phase. At least one draft
// must exist.
func (w *Workflow) EnterLabeling() error {
	if w.phase == PhaseUpload {
		return errors.New(errors.ErrCodeNoBackdrop, "upload an image before labeling")
	}
	if len(w.drafts) == 0 {
		return errors.New(errors.ErrCodeNoDrafts, "draw at least one room before labeling")
	}
	w.drawing = nil
	w.adjust = nil
	w.phase = PhaseLabel
	return nil
}

// ReopenDrawing returns from the label phase to the draw phase, keeping all
// drafts and their assigned types.
func (w *Workflow) ReopenDrawing() {
	if w.phase == PhaseLabel {
		w.phase = PhaseDraw
	}
}

// Assign gives a draft its catalog type. Reassigning is allowed until the
// workflow finishes.
func (w *Workflow) Assign(draftID string, roomType plan.RoomType) error {
	if w.phase != PhaseLabel {
		return errors.New(errors.ErrCodeWrongPhase, "cannot assign types in phase %s", w.phase)
	}
	if _, ok := catalog.Lookup(roomType); !ok {
		return errors.New(errors.ErrCodeInvalidRoomType, "unknown room type %q", roomType)
	}
	i := w.draftIndex(draftID)
	if i < 0 {
		return errors.New(errors.ErrCodeRoomNotFound, "no draft with id %s", draftID)
	}
	t := roomType
	w.drafts[i].Type = &t
	return nil
}

// Unlabeled returns how many drafts still need a type.
func (w *Workflow) Unlabeled() int {
	n := 0
	for _, d := range w.drafts {
		if !d.Labeled() {
			n++
		}
	}
	return n
}

// Finish converts every draft into a placed room and derives the selection
// multiset describing what was captured. It is blocked while any draft is
// unlabeled; the returned error carries the remaining count.
func (w *Workflow) Finish() (plan.Layout, []plan.RoomSelection, error) {
	if w.phase != PhaseLabel {
		return nil, nil, errors.New(errors.ErrCodeWrongPhase, "cannot finish in phase %s", w.phase)
	}
	return Complete(w.drafts)
}

// Complete converts fully labeled drafts into placed rooms with their
// catalog label, icon, and color, and derives the selection multiset. Labels
// get an index suffix only when the type occurs more than once, mirroring
// the generator. Any unlabeled draft blocks completion; the returned error
// carries the remaining count. Hosts that persist drafts between
// interactions (the HTTP API's capture sessions) call this directly.
func Complete(drafts []plan.DraftRoom) (plan.Layout, []plan.RoomSelection, error) {
	remaining := 0
	counts := make(map[plan.RoomType]int)
	for _, d := range drafts {
		if !d.Labeled() {
			remaining++
			continue
		}
		if _, ok := catalog.Lookup(*d.Type); !ok {
			return nil, nil, errors.New(errors.ErrCodeInvalidRoomType, "draft %s: unknown room type %q", d.ID, *d.Type)
		}
		counts[*d.Type]++
	}
	if remaining > 0 {
		return nil, nil, &errors.UnlabeledError{Remaining: remaining}
	}

	layout := make(plan.Layout, 0, len(drafts))
	seen := make(map[plan.RoomType]int)
	for _, d := range drafts {
		cfg, _ := catalog.Lookup(*d.Type)
		seen[*d.Type]++
		label := cfg.Label
		if counts[*d.Type] > 1 {
			label = fmt.Sprintf("%s %d", cfg.Label, seen[*d.Type])
		}
		layout = append(layout, plan.PlacedRoom{
			ID:    d.ID,
			Type:  *d.Type,
			Label: label,
			Icon:  cfg.Icon,
			Color: cfg.Color,
			Rect:  d.Rect,
		})
	}
	return layout, plan.GroupByType(layout), nil
}

func (w *Workflow) draftIndex(id string) int {
	for i, d := range w.drafts {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// normalize builds the rectangle spanned by two points with x,y at the
// top-left, whichever direction the drag went.
func normalize(a, b canvas.Point) plan.Rect {
	return plan.Rect{
		X: int(math.Round(math.Min(a.X, b.X))),
		Y: int(math.Round(math.Min(a.Y, b.Y))),
		W: int(math.Round(math.Abs(b.X - a.X))),
		H: int(math.Round(math.Abs(b.Y - a.Y))),
	}
}

// fitToGrid snaps a freshly drawn rectangle onto the grid and into the
// canvas so later editor gestures start from valid geometry.
func fitToGrid(r plan.Rect) plan.Rect {
	w := canvas.Clamp(canvas.Snap(float64(r.W)), plan.MinRoomSize, plan.CanvasWidth)
	h := canvas.Clamp(canvas.Snap(float64(r.H)), plan.MinRoomSize, plan.CanvasHeight)
	return plan.Rect{
		X: canvas.Clamp(canvas.Snap(float64(r.X)), 0, plan.CanvasWidth-w),
		Y: canvas.Clamp(canvas.Snap(float64(r.Y)), 0, plan.CanvasHeight-h),
		W: w,
		H: h,
	}
}

// Package editor implements the move/resize gesture state machine for a
// layout being edited in place.
//
// A [Session] owns one mutable [plan.Layout] and is either idle or tracking
// exactly one active gesture. The host's input layer decides how pointer
// events are captured (document scope, terminal mouse mode, whatever) and
// feeds them through Begin, Update and End; the session only does geometry.
// Hosts must keep routing Update/End even after the pointer leaves the room
// that started the gesture, otherwise the session is stranded in the active
// state. Abandon exists for teardown mid-gesture.
//
// All geometry is snapped to the grid and clamped to the canvas on every
// update, not just on release, so the layout is valid at every frame.
package editor

import (
	"context"

	"github.com/matzehuels/floorplan/pkg/canvas"
	"github.com/matzehuels/floorplan/pkg/observability"
	"github.com/matzehuels/floorplan/pkg/plan"
)

// Mode identifies what an active gesture is doing to its room.
type Mode string

const (
	ModeMove     Mode = "move"
	ModeResizeNW Mode = "resize-nw"
	ModeResizeNE Mode = "resize-ne"
	ModeResizeSW Mode = "resize-sw"
	ModeResizeSE Mode = "resize-se"
)

// HandleHitSize is the half-extent, in canvas units, of the invisible hit
// box around each corner handle. It is deliberately larger than the drawn
// handle so the corner is grabbable at small rendering scales.
const HandleHitSize = 12

// dragInfo is the full state of the one in-flight gesture. The original
// rectangle is kept so every update recomputes from scratch; updates never
// accumulate rounding error across frames.
type dragInfo struct {
	roomID string
	mode   Mode
	anchor canvas.Point
	orig   plan.Rect
}

// Session is the drag/resize controller for one layout. It is not safe for
// concurrent use; hosts drive it from a single event loop.
type Session struct {
	ctx      context.Context
	layout   plan.Layout
	drag     *dragInfo
	selected string
	onChange func(plan.Layout)
}

// NewSession starts an editing session over a copy of layout. onChange, if
// non-nil, is invoked with the layout after every geometry mutation; wire it
// to a notify.Notifier to debounce persistence.
func NewSession(ctx context.Context, layout plan.Layout, onChange func(plan.Layout)) *Session {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Session{
		ctx:      ctx,
		layout:   layout.Clone(),
		onChange: onChange,
	}
}

// Layout returns a snapshot of the current layout.
func (s *Session) Layout() plan.Layout {
	return s.layout.Clone()
}

// Active reports whether a gesture is in flight.
func (s *Session) Active() bool {
	return s.drag != nil
}

// Selected returns the ID of the selected room, or "" when nothing is
// selected. Selection decides which room's handles are interactive; it is
// independent of whether a gesture is active.
func (s *Session) Selected() string {
	return s.selected
}

// Select marks a room as selected. Selecting an unknown ID clears the
// selection, which doubles as the deselect action.
func (s *Session) Select(roomID string) {
	if s.layout.Index(roomID) < 0 {
		s.selected = ""
		return
	}
	s.selected = roomID
}

// HitTest resolves a pointer position to the gesture it would start. The
// selected room's corner handles win over room bodies; bodies are tested
// topmost first (last in the layout renders on top).
func (s *Session) HitTest(p canvas.Point) (roomID string, mode Mode, ok bool) {
	if i := s.layout.Index(s.selected); i >= 0 {
		if m, hit := handleAt(s.layout[i].Rect, p); hit {
			return s.selected, m, true
		}
	}
	for i := len(s.layout) - 1; i >= 0; i-- {
		if s.layout[i].Contains(int(p.X), int(p.Y)) {
			return s.layout[i].ID, ModeMove, true
		}
	}
	return "", "", false
}

func handleAt(r plan.Rect, p canvas.Point) (Mode, bool) {
	corners := []struct {
		x, y int
		mode Mode
	}{
		{r.X, r.Y, ModeResizeNW},
		{r.Right(), r.Y, ModeResizeNE},
		{r.X, r.Bottom(), ModeResizeSW},
		{r.Right(), r.Bottom(), ModeResizeSE},
	}
	for _, c := range corners {
		if p.X >= float64(c.x-HandleHitSize) && p.X <= float64(c.x+HandleHitSize) &&
			p.Y >= float64(c.y-HandleHitSize) && p.Y <= float64(c.y+HandleHitSize) {
			return c.mode, true
		}
	}
	return "", false
}

// Begin starts a gesture at p if it hits a room body or a handle of the
// selected room. The hit room becomes the selection. Returns false when p
// hits empty canvas; a begin while another gesture is active is ignored.
func (s *Session) Begin(p canvas.Point) bool {
	if s.drag != nil {
		return false
	}
	roomID, mode, ok := s.HitTest(p)
	if !ok {
		s.selected = ""
		return false
	}
	return s.BeginGesture(roomID, mode, p)
}

// BeginGesture starts a gesture explicitly, for hosts that do their own hit
// testing. Returns false if the room does not exist or a gesture is already
// active.
func (s *Session) BeginGesture(roomID string, mode Mode, p canvas.Point) bool {
	if s.drag != nil {
		return false
	}
	i := s.layout.Index(roomID)
	if i < 0 {
		return false
	}
	s.selected = roomID
	s.drag = &dragInfo{
		roomID: roomID,
		mode:   mode,
		anchor: p,
		orig:   s.layout[i].Rect,
	}
	observability.Editor().OnGestureBegin(s.ctx, string(mode), roomID)
	return true
}

// Update recomputes the active room's rectangle from the pointer position.
// It is a no-op while idle.
func (s *Session) Update(p canvas.Point) {
	if s.drag == nil {
		return
	}
	i := s.layout.Index(s.drag.roomID)
	if i < 0 {
		// Room deleted under the gesture; nothing left to drag.
		s.abandon()
		return
	}
	dx := p.X - s.drag.anchor.X
	dy := p.Y - s.drag.anchor.Y
	next := DeriveRect(s.drag.orig, s.drag.mode, dx, dy)
	if next == s.layout[i].Rect {
		return
	}
	s.layout[i].Rect = next
	s.notifyChange()
}

// End finishes the active gesture. The last rectangle computed by Update is
// final; End itself changes no geometry.
func (s *Session) End() {
	if s.drag == nil {
		return
	}
	observability.Editor().OnGestureEnd(s.ctx, string(s.drag.mode), s.drag.roomID, false)
	s.drag = nil
}

// Abandon discards the active gesture, reverting the room to its rectangle
// at gesture start. Safe to call while idle; hosts call it on teardown.
func (s *Session) Abandon() {
	if s.drag == nil {
		return
	}
	if i := s.layout.Index(s.drag.roomID); i >= 0 && s.layout[i].Rect != s.drag.orig {
		s.layout[i].Rect = s.drag.orig
		s.notifyChange()
	}
	s.abandon()
}

func (s *Session) abandon() {
	observability.Editor().OnGestureEnd(s.ctx, string(s.drag.mode), s.drag.roomID, true)
	s.drag = nil
}

// Delete removes a room from the layout. An active gesture on the room is
// abandoned first. Returns false for unknown IDs.
func (s *Session) Delete(roomID string) bool {
	if s.drag != nil && s.drag.roomID == roomID {
		s.abandon()
	}
	i := s.layout.Index(roomID)
	if i < 0 {
		return false
	}
	s.layout = append(s.layout[:i], s.layout[i+1:]...)
	if s.selected == roomID {
		s.selected = ""
	}
	s.notifyChange()
	return true
}

func (s *Session) notifyChange() {
	if s.onChange != nil {
		s.onChange(s.layout.Clone())
	}
}

// DeriveRect computes the rectangle for a gesture from its original rect and
// the pointer delta. Every output is grid-snapped and clamped so the model
// invariants hold at every frame.
//
// Resizes hold the corner opposite the dragged handle fixed: when the left
// or top edge moves, the position is recomputed from the fixed edge after
// snapping so the anchored edge never shifts.
func DeriveRect(orig plan.Rect, mode Mode, dx, dy float64) plan.Rect {
	r := orig
	switch mode {
	case ModeMove:
		r.X = canvas.Clamp(canvas.Snap(float64(orig.X)+dx), 0, plan.CanvasWidth-orig.W)
		r.Y = canvas.Clamp(canvas.Snap(float64(orig.Y)+dy), 0, plan.CanvasHeight-orig.H)
	case ModeResizeSE:
		r.W = clampW(float64(orig.W)+dx, orig.X)
		r.H = clampH(float64(orig.H)+dy, orig.Y)
	case ModeResizeSW:
		right := orig.Right()
		r.W = canvas.Clamp(canvas.Snap(float64(orig.W)-dx), plan.MinRoomSize, right)
		r.X = right - r.W
		r.H = clampH(float64(orig.H)+dy, orig.Y)
	case ModeResizeNE:
		bottom := orig.Bottom()
		r.W = clampW(float64(orig.W)+dx, orig.X)
		r.H = canvas.Clamp(canvas.Snap(float64(orig.H)-dy), plan.MinRoomSize, bottom)
		r.Y = bottom - r.H
	case ModeResizeNW:
		right := orig.Right()
		bottom := orig.Bottom()
		r.W = canvas.Clamp(canvas.Snap(float64(orig.W)-dx), plan.MinRoomSize, right)
		r.X = right - r.W
		r.H = canvas.Clamp(canvas.Snap(float64(orig.H)-dy), plan.MinRoomSize, bottom)
		r.Y = bottom - r.H
	}
	return r
}

func clampW(w float64, x int) int {
	return canvas.Clamp(canvas.Snap(w), plan.MinRoomSize, plan.CanvasWidth-x)
}

func clampH(h float64, y int) int {
	return canvas.Clamp(canvas.Snap(h), plan.MinRoomSize, plan.CanvasHeight-y)
}

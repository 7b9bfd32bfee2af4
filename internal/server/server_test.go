package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/floorplan/pkg/cache"
	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/pipeline"
	"github.com/matzehuels/floorplan/pkg/plan"
	"github.com/matzehuels/floorplan/pkg/session"
	"github.com/matzehuels/floorplan/pkg/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := log.New(io.Discard)
	return New(Config{
		Store:    store.NewMemoryStore(),
		Sessions: session.NewMemoryStore(),
		Runner:   pipeline.NewRunner(cache.NewNullCache(), nil, logger),
		Logger:   logger,
		Quiet:    5 * time.Millisecond,
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHandleGenerate(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantRooms  int
	}{
		{
			name: "two bedrooms one kitchen",
			body: generateRequest{Selections: []plan.RoomSelection{
				{Type: "bedroom", Quantity: 2},
				{Type: "kitchen", Quantity: 1},
			}},
			wantStatus: http.StatusOK,
			wantRooms:  3,
		},
		{
			name: "unknown room type",
			body: generateRequest{Selections: []plan.RoomSelection{
				{Type: "spaceship", Quantity: 1},
			}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty selections",
			body:       generateRequest{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       map[string]any{"selections": "nope"},
			wantStatus: http.StatusBadRequest,
		},
	}

	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/layouts/generate", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			resp := decodeBody[layoutResponse](t, rec)
			if len(resp.Rooms) != tt.wantRooms {
				t.Errorf("got %d rooms, want %d", len(resp.Rooms), tt.wantRooms)
			}
			if err := resp.Rooms.Validate(); err != nil {
				t.Errorf("generated layout invalid: %v", err)
			}
			for _, r := range resp.Rooms {
				if r.X%plan.Grid != 0 || r.Y%plan.Grid != 0 || r.W%plan.Grid != 0 || r.H%plan.Grid != 0 {
					t.Errorf("room %s not grid aligned: %+v", r.ID, r.Rect)
				}
			}
		})
	}
}

func TestLayoutLifecycle(t *testing.T) {
	s := newTestServer(t)

	rooms := plan.Layout{
		{ID: "r1", Type: "bedroom", Label: "Bedroom", Rect: plan.Rect{X: 20, Y: 20, W: 200, H: 150}},
		{ID: "r2", Type: "kitchen", Label: "Kitchen", Rect: plan.Rect{X: 240, Y: 20, W: 180, H: 150}},
	}

	rec := doJSON(t, s, http.MethodPut, "/api/projects/p1/layout", rooms)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("put status = %d, want %d (body %s)", rec.Code, http.StatusAccepted, rec.Body.String())
	}

	// Reads flush the debounced write first, so the layout is visible
	// immediately even though the quiet window has not elapsed.
	rec = doJSON(t, s, http.MethodGet, "/api/projects/p1/layout", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	got := decodeBody[plan.Layout](t, rec)
	if len(got) != len(rooms) {
		t.Fatalf("got %d rooms, want %d", len(got), len(rooms))
	}
	for i := range rooms {
		if got[i] != rooms[i] {
			t.Errorf("room %d = %+v, want %+v", i, got[i], rooms[i])
		}
	}

	rec = doJSON(t, s, http.MethodGet, "/api/projects", nil)
	list := decodeBody[map[string][]string](t, rec)
	if len(list["projects"]) != 1 || list["projects"][0] != "p1" {
		t.Errorf("projects = %v, want [p1]", list["projects"])
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/projects/p1/layout", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/projects/p1/layout", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestPutLayoutRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"unknown type", plan.Layout{{ID: "r1", Type: "spaceship", Rect: plan.Rect{X: 0, Y: 0, W: 100, H: 100}}}},
		{"out of bounds", plan.Layout{{ID: "r1", Type: "bedroom", Rect: plan.Rect{X: 700, Y: 0, W: 200, H: 100}}}},
		{"duplicate id", plan.Layout{
			{ID: "r1", Type: "bedroom", Rect: plan.Rect{X: 0, Y: 0, W: 100, H: 100}},
			{ID: "r1", Type: "kitchen", Rect: plan.Rect{X: 200, Y: 0, W: 100, H: 100}},
		}},
	}

	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPut, "/api/projects/p1/layout", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, http.StatusBadRequest, rec.Body.String())
			}
		})
	}
}

func TestSessionCaptureFlow(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/sessions", createSessionRequest{
		ProjectID: "p1", Kind: session.KindFreeDraw,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d (body %s)", rec.Code, rec.Body.String())
	}
	sess := decodeBody[session.Session](t, rec)
	if sess.Phase != "draw" {
		t.Errorf("phase = %q, want draw", sess.Phase)
	}

	bedroom := plan.RoomType("bedroom")
	drafts := []plan.DraftRoom{
		{ID: "d1", Type: &bedroom, Rect: plan.Rect{X: 20, Y: 20, W: 200, H: 150}},
		{ID: "d2", Rect: plan.Rect{X: 240, Y: 20, W: 180, H: 150}},
	}
	rec = doJSON(t, s, http.MethodPut, "/api/sessions/"+sess.ID, updateSessionRequest{Drafts: &drafts})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d (body %s)", rec.Code, rec.Body.String())
	}

	// One draft is unlabeled, so finishing must be blocked with the count.
	rec = doJSON(t, s, http.MethodPost, "/api/sessions/"+sess.ID+"/finish", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("finish status = %d, want %d (body %s)", rec.Code, http.StatusConflict, rec.Body.String())
	}
	errResp := decodeBody[map[string]errorBody](t, rec)
	if errResp["error"].Code != errors.ErrCodeUnlabeledRooms {
		t.Errorf("code = %q, want %q", errResp["error"].Code, errors.ErrCodeUnlabeledRooms)
	}
	if errResp["error"].Remaining != 1 {
		t.Errorf("remaining = %d, want 1", errResp["error"].Remaining)
	}

	kitchen := plan.RoomType("kitchen")
	drafts[1].Type = &kitchen
	rec = doJSON(t, s, http.MethodPut, "/api/sessions/"+sess.ID, updateSessionRequest{Drafts: &drafts})
	if rec.Code != http.StatusOK {
		t.Fatalf("relabel status = %d (body %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodPost, "/api/sessions/"+sess.ID+"/finish", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("finish status = %d (body %s)", rec.Code, rec.Body.String())
	}
	resp := decodeBody[layoutResponse](t, rec)
	if len(resp.Rooms) != 2 {
		t.Fatalf("got %d rooms, want 2", len(resp.Rooms))
	}
	if resp.Rooms[0].Label != "Bedroom" || resp.Rooms[1].Label != "Kitchen" {
		t.Errorf("labels = %q, %q; want Bedroom, Kitchen", resp.Rooms[0].Label, resp.Rooms[1].Label)
	}

	// The finished layout lands on the project and the session is retired.
	rec = doJSON(t, s, http.MethodGet, "/api/projects/p1/layout", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("project layout status = %d, want %d", rec.Code, http.StatusOK)
	}
	rec = doJSON(t, s, http.MethodGet, "/api/sessions/"+sess.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("session after finish status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSessionBackdrop(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/sessions", createSessionRequest{
		ProjectID: "p1", Kind: session.KindPhotoTrace,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d (body %s)", rec.Code, rec.Body.String())
	}
	sess := decodeBody[session.Session](t, rec)
	if sess.Phase != "upload" {
		t.Fatalf("phase = %q, want upload", sess.Phase)
	}

	upload := func(data []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+sess.ID+"/backdrop", bytes.NewReader(data))
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)
		return rec
	}

	// A non-image upload is rejected whole; the session must stay in the
	// upload phase with no partial state.
	rec = upload([]byte("this is not an image"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("text upload status = %d, want %d (body %s)", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
	rec = doJSON(t, s, http.MethodGet, "/api/sessions/"+sess.ID, nil)
	if got := decodeBody[session.Session](t, rec); got.Phase != "upload" {
		t.Errorf("phase after rejected upload = %q, want upload", got.Phase)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	rec = upload(buf.Bytes())
	if rec.Code != http.StatusOK {
		t.Fatalf("png upload status = %d (body %s)", rec.Code, rec.Body.String())
	}
	meta := decodeBody[map[string]any](t, rec)
	if meta["mime"] != "image/png" {
		t.Errorf("mime = %v, want image/png", meta["mime"])
	}
	if meta["phase"] != "draw" {
		t.Errorf("phase = %v, want draw", meta["phase"])
	}

	// Second upload arrives too late: drawing has started.
	rec = upload(buf.Bytes())
	if rec.Code != http.StatusConflict {
		t.Errorf("late upload status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestLayoutSVG(t *testing.T) {
	s := newTestServer(t)

	rooms := plan.Layout{
		{ID: "r1", Type: "bedroom", Label: "Bedroom", Color: "#A8DADC", Rect: plan.Rect{X: 20, Y: 20, W: 200, H: 150}},
	}
	if rec := doJSON(t, s, http.MethodPut, "/api/projects/p1/layout", rooms); rec.Code != http.StatusAccepted {
		t.Fatalf("put status = %d", rec.Code)
	}

	rec := doJSON(t, s, http.MethodGet, "/api/projects/p1/layout.svg?grid=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("svg status = %d (body %s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q, want image/svg+xml", ct)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("<svg")) {
		t.Errorf("body does not look like SVG: %.80s", rec.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidSelection, http.StatusBadRequest},
		{errors.ErrCodeInvalidImage, http.StatusBadRequest},
		{errors.ErrCodeUnlabeledRooms, http.StatusConflict},
		{errors.ErrCodeWrongPhase, http.StatusConflict},
		{errors.ErrCodeProjectNotFound, http.StatusNotFound},
		{errors.ErrCodeSessionNotFound, http.StatusNotFound},
		{errors.ErrCodeStore, http.StatusInternalServerError},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := statusFor(tt.code); got != tt.want {
				t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

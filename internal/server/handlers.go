package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/floorplan/pkg/buildinfo"
	"github.com/matzehuels/floorplan/pkg/capture"
	"github.com/matzehuels/floorplan/pkg/catalog"
	"github.com/matzehuels/floorplan/pkg/errors"
	planio "github.com/matzehuels/floorplan/pkg/io"
	"github.com/matzehuels/floorplan/pkg/pipeline"
	"github.com/matzehuels/floorplan/pkg/plan"
	"github.com/matzehuels/floorplan/pkg/session"
)

// maxBodyBytes caps request bodies. Backdrop uploads are the largest
// payloads; anything bigger than this is not a floor-plan photo.
const maxBodyBytes = 16 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"rooms": catalog.All()})
}

// generateRequest mirrors the generate-side fields of pipeline.Options.
type generateRequest struct {
	Selections []plan.RoomSelection `json:"selections"`
	Seed       uint64               `json:"seed,omitempty"`
	NoJitter   bool                 `json:"no_jitter,omitempty"`
}

type layoutResponse struct {
	Rooms      plan.Layout          `json:"rooms"`
	Selections []plan.RoomSelection `json:"selections"`
	Seed       uint64               `json:"seed,omitempty"`
	Width      float64              `json:"width"`
	Height     float64              `json:"height"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if len(req.Selections) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidSelection, "no room selections given"))
		return
	}
	if err := catalog.ValidateSelections(req.Selections); err != nil {
		s.writeError(w, err)
		return
	}

	opts := pipeline.Options{
		Selections: req.Selections,
		Seed:       req.Seed,
		NoJitter:   req.NoJitter,
		Logger:     s.cfg.Logger,
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, err)
		return
	}

	layout, err := s.cfg.Runner.Generate(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{
		Rooms:      layout,
		Selections: plan.GroupByType(layout),
		Seed:       opts.Seed,
		Width:      plan.CanvasWidth,
		Height:     plan.CanvasHeight,
	})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	ids, err := s.cfg.Store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"projects": ids})
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	s.flushProject(projectID)

	layout, err := s.cfg.Store.Load(r.Context(), projectID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	// The stored rooms array goes back verbatim; the client re-supplies it
	// as the initial layout on next load.
	writeJSON(w, http.StatusOK, layout)
}

func (s *Server) handlePutLayout(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if err := errors.ValidateProjectID(projectID); err != nil {
		s.writeError(w, err)
		return
	}

	layout, err := planio.ReadJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, err)
		return
	}

	// Writes ride the debounced notifier: a burst of saves while the client
	// drags rooms around becomes a single store write after the quiet
	// window. Flush on GET guarantees readers never see a stale layout.
	s.notifierFor(projectID).Changed(layout)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status": "accepted",
		"rooms":  len(layout),
	})
}

func (s *Server) handleDeleteLayout(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	s.flushProject(projectID)

	if err := s.cfg.Store.Delete(r.Context(), projectID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLayoutSVG(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	s.flushProject(projectID)

	layout, err := s.cfg.Store.Load(r.Context(), projectID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	q := r.URL.Query()
	opts := pipeline.Options{
		Formats:   []string{pipeline.FormatSVG},
		ShowGrid:  q.Get("grid") == "1",
		HandDrawn: q.Get("hand_drawn") == "1",
		Logger:    s.cfg.Logger,
	}
	artifacts, err := s.cfg.Runner.Render(r.Context(), layout, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write(artifacts[pipeline.FormatSVG]) //nolint:errcheck // response write
}

type createSessionRequest struct {
	ProjectID string       `json:"project_id"`
	Kind      session.Kind `json:"kind"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := errors.ValidateProjectID(req.ProjectID); err != nil {
		s.writeError(w, err)
		return
	}

	sess := session.New(req.ProjectID, req.Kind, session.DefaultTTL)
	switch req.Kind {
	case session.KindEdit:
	case session.KindFreeDraw:
		sess.Phase = string(capture.PhaseDraw)
	case session.KindPhotoTrace:
		sess.Phase = string(capture.PhaseUpload)
	default:
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "unknown session kind %q", req.Kind))
		return
	}

	if err := s.cfg.Sessions.Set(r.Context(), sess); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeStore, err, "store session"))
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// loadSession fetches a live session or reports SESSION_NOT_FOUND.
func (s *Server) loadSession(r *http.Request) (*session.Session, error) {
	id := chi.URLParam(r, "sessionID")
	sess, err := s.cfg.Sessions.Get(r.Context(), id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "load session %s", id)
	}
	if sess == nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %s not found or expired", id)
	}
	return sess, nil
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// updateSessionRequest snapshots in-progress work. Fields are applied only
// when present, so an edit session can push its layout without touching
// capture state and vice versa.
type updateSessionRequest struct {
	Layout plan.Layout       `json:"layout,omitempty"`
	Drafts *[]plan.DraftRoom `json:"drafts,omitempty"`
	Phase  string            `json:"phase,omitempty"`
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req updateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Layout != nil {
		if err := req.Layout.Validate(); err != nil {
			s.writeError(w, err)
			return
		}
		sess.Layout = req.Layout
	}
	if req.Drafts != nil {
		sess.Drafts = *req.Drafts
	}
	if req.Phase != "" {
		sess.Phase = req.Phase
	}
	sess.Touch(session.DefaultTTL)

	if err := s.cfg.Sessions.Set(r.Context(), sess); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeStore, err, "store session"))
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := s.cfg.Sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeStore, err, "delete session %s", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSessionBackdrop accepts the raw image bytes for a photo-trace
// session. A non-image body is rejected whole; the session stays in the
// upload phase with no partial state.
func (s *Server) handleSessionBackdrop(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if sess.Kind != session.KindPhotoTrace {
		s.writeError(w, errors.New(errors.ErrCodeWrongPhase, "session %s is not a photo-trace session", sess.ID))
		return
	}
	if sess.Phase != string(capture.PhaseUpload) {
		s.writeError(w, errors.New(errors.ErrCodeWrongPhase, "backdrop can only be set before drawing starts (phase %s)", sess.Phase))
		return
	}

	data, err := readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	backdrop, err := capture.NewBackdrop(data)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// The API stores a reference, not the bytes: the surrounding app keeps
	// uploads in its own media storage and passes the URL along.
	sess.BackdropURL = r.URL.Query().Get("source_url")
	sess.Phase = string(capture.PhaseDraw)
	sess.Touch(session.DefaultTTL)

	if err := s.cfg.Sessions.Set(r.Context(), sess); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeStore, err, "store session"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mime":   backdrop.MIME,
		"width":  backdrop.Width,
		"height": backdrop.Height,
		"phase":  sess.Phase,
	})
}

// handleSessionFinish converts a capture session's drafts into placed rooms,
// persists them on the owning project, and retires the session. Unlabeled
// drafts block the conversion with the remaining count.
func (s *Server) handleSessionFinish(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if sess.Kind == session.KindEdit {
		s.writeError(w, errors.New(errors.ErrCodeWrongPhase, "finish applies to capture sessions only"))
		return
	}
	if len(sess.Drafts) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeNoDrafts, "nothing drawn yet"))
		return
	}

	layout, selections, err := capture.Complete(sess.Drafts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// Finishing is a deliberate commit, not an editing burst: write through
	// immediately rather than debouncing.
	if err := s.cfg.Store.Save(r.Context(), sess.ProjectID, layout); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.cfg.Sessions.Delete(r.Context(), sess.ID); err != nil {
		s.cfg.Logger.Warn("retire session", "session", sess.ID, "err", err)
	}

	writeJSON(w, http.StatusOK, layoutResponse{
		Rooms:      layout,
		Selections: selections,
		Width:      plan.CanvasWidth,
		Height:     plan.CanvasHeight,
	})
}

type errorBody struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	Remaining int         `json:"remaining,omitempty"`
}

// writeError maps the engine's error codes onto HTTP statuses and emits a
// structured error body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)

	body := errorBody{Code: code, Message: errors.UserMessage(err)}
	var unlabeled *errors.UnlabeledError
	if stderrors.As(err, &unlabeled) {
		body.Remaining = unlabeled.Remaining
	}

	if status >= http.StatusInternalServerError {
		s.cfg.Logger.Error("request failed", "code", code, "err", err)
	} else {
		s.cfg.Logger.Debug("request rejected", "code", code, "err", err)
	}
	writeJSON(w, status, map[string]errorBody{"error": body})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidSelection,
		errors.ErrCodeInvalidRoomType, errors.ErrCodeInvalidImage,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidLayout,
		errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeUnlabeledRooms, errors.ErrCodeNoDrafts,
		errors.ErrCodeNoBackdrop, errors.ErrCodeWrongPhase:
		return http.StatusConflict
	case errors.ErrCodeNotFound, errors.ErrCodeProjectNotFound,
		errors.ErrCodeRoomNotFound, errors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // response write
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse request body")
	}
	return nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	return data, nil
}

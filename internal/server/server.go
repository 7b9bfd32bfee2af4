// Package server exposes the layout engine over HTTP.
//
// The API is the persistence boundary the surrounding project CRUD talks
// to: it generates layouts from room selections, stores and serves the
// per-project layout verbatim, and keeps in-progress capture sessions
// resumable between requests. Layout writes for a project funnel through a
// debounced notifier, so a burst of rapid saves from an editing client
// collapses into one store write once the project goes quiet.
//
// # Endpoints
//
//	GET    /healthz
//	GET    /api/catalog
//	POST   /api/layouts/generate
//	GET    /api/projects
//	GET    /api/projects/{projectID}/layout
//	PUT    /api/projects/{projectID}/layout
//	DELETE /api/projects/{projectID}/layout
//	GET    /api/projects/{projectID}/layout.svg
//	POST   /api/sessions
//	GET    /api/sessions/{sessionID}
//	PUT    /api/sessions/{sessionID}
//	DELETE /api/sessions/{sessionID}
//	POST   /api/sessions/{sessionID}/backdrop
//	POST   /api/sessions/{sessionID}/finish
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/floorplan/pkg/notify"
	"github.com/matzehuels/floorplan/pkg/pipeline"
	"github.com/matzehuels/floorplan/pkg/plan"
	"github.com/matzehuels/floorplan/pkg/session"
	"github.com/matzehuels/floorplan/pkg/store"
)

// Config wires the server's collaborators. Store and Sessions are required;
// the caller owns both and closes them after Run returns.
type Config struct {
	Addr     string
	Store    store.Store
	Sessions session.Store
	Runner   *pipeline.Runner
	Logger   *log.Logger

	// Quiet is the debounce window for project layout writes. Zero means
	// notify.DefaultQuiet.
	Quiet time.Duration
}

// Server is the HTTP API over the layout engine.
type Server struct {
	cfg    Config
	router chi.Router

	mu        sync.Mutex
	notifiers map[string]*notify.Notifier
	baseCtx   context.Context
}

// New builds a server and its route table.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Quiet <= 0 {
		cfg.Quiet = notify.DefaultQuiet
	}
	s := &Server{
		cfg:       cfg,
		notifiers: make(map[string]*notify.Notifier),
		baseCtx:   context.Background(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Post("/layouts/generate", s.handleGenerate)

		r.Get("/projects", s.handleListProjects)
		r.Route("/projects/{projectID}", func(r chi.Router) {
			r.Get("/layout", s.handleGetLayout)
			r.Put("/layout", s.handlePutLayout)
			r.Delete("/layout", s.handleDeleteLayout)
			r.Get("/layout.svg", s.handleLayoutSVG)
		})

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Put("/", s.handleUpdateSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/backdrop", s.handleSessionBackdrop)
			r.Post("/finish", s.handleSessionFinish)
		})
	})

	return r
}

// Router returns the handler, for mounting or for httptest.
func (s *Server) Router() http.Handler { return s.router }

// Run serves until ctx is canceled, then drains in-flight requests and
// flushes every pending debounced write.
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = ctx

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.closeNotifiers()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.closeNotifiers()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// notifierFor returns the project's debounced writer, creating it on first
// use. The notifier's delivery callback persists through the store, so the
// final write always reflects the last layout handed to Changed.
func (s *Server) notifierFor(projectID string) *notify.Notifier {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.notifiers[projectID]; ok {
		return n
	}
	// Pending writes must land even when the flush happens during shutdown,
	// after the server context is canceled.
	saveCtx := context.WithoutCancel(s.baseCtx)
	n := notify.New(s.baseCtx, s.cfg.Quiet, func(l plan.Layout) {
		if err := s.cfg.Store.Save(saveCtx, projectID, l); err != nil {
			s.cfg.Logger.Error("persist layout", "project", projectID, "err", err)
		}
	})
	s.notifiers[projectID] = n
	return n
}

// flushProject forces any pending debounced write out immediately. Reads and
// deletes call this first so they observe the true current state.
func (s *Server) flushProject(projectID string) {
	s.mu.Lock()
	n := s.notifiers[projectID]
	s.mu.Unlock()
	if n != nil {
		n.Flush()
	}
}

func (s *Server) closeNotifiers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifiers {
		n.Close()
	}
	s.notifiers = make(map[string]*notify.Notifier)
}

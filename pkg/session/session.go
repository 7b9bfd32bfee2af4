// Package session persists in-progress editing and capture work.
//
// A gesture-driven workflow can be abandoned at any moment (the host
// navigates away mid-drag) and must be resumable later, so the engine
// snapshots its state into a session store between interactions. Backends:
//   - memory: in-process storage for development/testing
//   - file: JSON files under a config directory for CLI use
//   - redis: shared storage for multi-instance server deployments
//
// Sessions expire automatically. The Store interface supports Get/Set/Delete
// plus a Cleanup sweep for backends without native TTLs.
//
// # Usage
//
//	store := session.NewMemoryStore()
//
//	sess := session.New("project-42", session.KindFreeDraw, session.DefaultTTL)
//	sess.Drafts = workflow.Drafts()
//	store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, id)
//	if sess == nil {
//	    // not found or expired
//	}
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/floorplan/pkg/plan"
)

// Kind says which workflow a session snapshots.
type Kind string

const (
	// KindEdit is a move/resize editing session over a placed layout.
	KindEdit Kind = "edit"
	// KindFreeDraw is a free-draw capture session.
	KindFreeDraw Kind = "free-draw"
	// KindPhotoTrace is a photo-trace capture session.
	KindPhotoTrace Kind = "photo-trace"
)

// Session is one resumable unit of in-progress work. Exactly one of Layout
// or Drafts is meaningful depending on Kind; both are stored so a capture
// session can carry its finished layout through the final save.
type Session struct {
	ID        string      `json:"id"`
	ProjectID string      `json:"project_id"`
	Kind      Kind        `json:"kind"`
	Layout    plan.Layout `json:"layout,omitempty"`

	// Capture state.
	Drafts      []plan.DraftRoom `json:"drafts,omitempty"`
	Phase       string           `json:"phase,omitempty"`
	BackdropURL string           `json:"backdrop_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch refreshes the update timestamp and pushes expiry out by ttl.
func (s *Session) Touch(ttl time.Duration) {
	now := time.Now()
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(ttl)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (no-op for backends with native TTL).
	Cleanup(ctx context.Context) error
}

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// New creates a session for a project workflow.
func New(projectID string, kind Kind, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

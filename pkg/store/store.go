// Package store is the external persistence boundary for layouts.
//
// A layout is persisted verbatim, as the opaque JSON array of placed rooms,
// onto the owning project's record. The engine never reads anything else off
// the record; the surrounding project CRUD owns the rest. Backends:
//   - memory: in-process storage for development/testing
//   - file: one JSON file per project under a data directory
//   - mongo: project documents in a MongoDB collection
//
// Every implementation reports saves and loads through the observability
// store hooks, tagged with its backend name.
package store

import (
	"context"
	"time"

	"github.com/matzehuels/floorplan/pkg/observability"
	"github.com/matzehuels/floorplan/pkg/plan"
)

// Record is a project's persisted layout with its storage metadata.
type Record struct {
	ProjectID string      `json:"project_id" bson:"project_id"`
	Rooms     plan.Layout `json:"rooms" bson:"rooms"`
	UpdatedAt time.Time   `json:"updated_at" bson:"updated_at"`
}

// Store persists layouts keyed by project ID.
type Store interface {
	// Save writes the layout onto the project record, replacing any
	// previous layout.
	Save(ctx context.Context, projectID string, l plan.Layout) error

	// Load returns the project's layout. A missing project yields an error
	// with code PROJECT_NOT_FOUND.
	Load(ctx context.Context, projectID string) (plan.Layout, error)

	// Delete removes the project's layout. Deleting a missing project is
	// not an error.
	Delete(ctx context.Context, projectID string) error

	// List returns the IDs of all projects with a stored layout.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// Implementations call these around Save and Load so instrumentation stays
// uniform across backends.
func observeSave(ctx context.Context, backend, projectID string, roomCount int, start time.Time, err error) {
	observability.Store().OnSave(ctx, backend, projectID, roomCount, time.Since(start), err)
}

func observeLoad(ctx context.Context, backend, projectID string, start time.Time, err error) {
	observability.Store().OnLoad(ctx, backend, projectID, time.Since(start), err)
}

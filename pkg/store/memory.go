package store

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/plan"
)

// MemoryStore keeps layouts in process memory. For development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory layout store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Save(ctx context.Context, projectID string, l plan.Layout) (err error) {
	start := time.Now()
	defer func() { observeSave(ctx, "memory", projectID, len(l), start, err) }()

	if err = errors.ValidateProjectID(projectID); err != nil {
		return err
	}
	s.mu.Lock()
	s.records[projectID] = Record{ProjectID: projectID, Rooms: l.Clone(), UpdatedAt: time.Now()}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, projectID string) (l plan.Layout, err error) {
	start := time.Now()
	defer func() { observeLoad(ctx, "memory", projectID, start, err) }()

	s.mu.RLock()
	rec, ok := s.records[projectID]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeProjectNotFound, "no layout stored for project %s", projectID)
	}
	return rec.Rooms.Clone(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, projectID string) error {
	s.mu.Lock()
	delete(s.records, projectID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/plan"
)

// FileStore persists one JSON record per project under a data directory.
// Project IDs are validated against path traversal before touching disk.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-backed layout store.
// If baseDir is empty, defaults to ~/.local/share/floorplan/projects/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".local", "share", "floorplan", "projects")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create project dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) recordPath(projectID string) string {
	return filepath.Join(s.baseDir, projectID+".json")
}

func (s *FileStore) Save(ctx context.Context, projectID string, l plan.Layout) (err error) {
	start := time.Now()
	defer func() { observeSave(ctx, "file", projectID, len(l), start, err) }()

	if err = errors.ValidateProjectID(projectID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := Record{ProjectID: projectID, Rooms: l, UpdatedAt: time.Now()}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "marshal project %s", projectID)
	}
	if err := os.WriteFile(s.recordPath(projectID), data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write project %s", projectID)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context, projectID string) (l plan.Layout, err error) {
	start := time.Now()
	defer func() { observeLoad(ctx, "file", projectID, start, err) }()

	if err = errors.ValidateProjectID(projectID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.recordPath(projectID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeProjectNotFound, "no layout stored for project %s", projectID)
		}
		return nil, errors.Wrap(errors.ErrCodeStore, err, "read project %s", projectID)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "parse project %s", projectID)
	}
	return rec.Rooms, nil
}

func (s *FileStore) Delete(ctx context.Context, projectID string) error {
	if err := errors.ValidateProjectID(projectID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.recordPath(projectID)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeStore, err, "remove project %s", projectID)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "read project dir")
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	return ids, nil
}

func (s *FileStore) Close(ctx context.Context) error { return nil }

// Path returns the base directory for project records.
func (s *FileStore) Path() string { return s.baseDir }

var _ Store = (*FileStore)(nil)

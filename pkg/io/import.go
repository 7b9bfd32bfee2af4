package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/floorplan/pkg/catalog"
	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/plan"
)

// ReadJSON decodes a layout from r.
//
// The input is either the bare persisted array of placed rooms or the
// enriched document produced by the floorplan JSON sink, in which case the
// "rooms" field is used and the canvas metadata is ignored.
//
// ReadJSON returns an error if:
//   - The JSON is malformed
//   - A room has a duplicate or empty ID
//   - A room's type is not in the catalog
//   - The geometry violates the canvas bounds or minimum size
//
// The returned layout is independent of r and can be modified safely after
// ReadJSON returns. ReadJSON does not close r.
func ReadJSON(r io.Reader) (plan.Layout, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var l plan.Layout
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		var doc struct {
			Rooms plan.Layout `json:"rooms"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		l = doc.Rooms
	} else if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	seen := make(map[string]struct{}, len(l))
	for _, room := range l {
		if room.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidLayout, "room %q has no id", room.Label)
		}
		if _, dup := seen[room.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidLayout, "duplicate room id %s", room.ID)
		}
		seen[room.ID] = struct{}{}
		if _, ok := catalog.Lookup(room.Type); !ok {
			return nil, errors.New(errors.ErrCodeInvalidRoomType, "room %s: unknown type %q", room.ID, room.Type)
		}
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// ImportJSON reads a JSON file at path and returns the decoded layout.
//
// ImportJSON opens the file, decodes it using [ReadJSON], and closes the
// file. Errors wrap the underlying cause with the file path for context.
func ImportJSON(path string) (plan.Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

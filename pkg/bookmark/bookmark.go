// Package bookmark persists reading positions so narration can resume at
// the exact segment and in-segment offset it stopped at.
//
// Positions are kept per (document, section) pair in a single msgpack file,
// loaded whole and rewritten atomically on save.
package bookmark

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrNotFound is returned when no bookmark exists for a position.
var ErrNotFound = errors.New("bookmark: not found")

// Record is one saved reading position.
type Record struct {
	// Document and Section locate the text the position belongs to.
	Document string `msgpack:"doc"`
	Section  string `msgpack:"section"`

	// Segment is the absolute segment index playback stopped in.
	Segment int `msgpack:"segment"`

	// Offset is the in-segment playback offset.
	Offset time.Duration `msgpack:"offset"`

	// Snippet is the text of the segment, kept so a resume prompt can show
	// where the reader left off.
	Snippet string `msgpack:"snippet,omitempty"`

	// SavedAt is when the position was recorded.
	SavedAt time.Time `msgpack:"saved_at"`
}

func recordKey(document, section string) string {
	return document + "\x00" + section
}

// Shelf holds bookmarks backed by one file.
type Shelf struct {
	path string

	mu      sync.Mutex
	records map[string]Record
}

// Open loads the shelf at path, creating an empty one if the file does not
// exist yet.
func Open(path string) (*Shelf, error) {
	s := &Shelf{
		path:    path,
		records: make(map[string]Record),
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("bookmark: read %s: %w", path, err)
	}
	if err := msgpack.Unmarshal(data, &s.records); err != nil {
		return nil, fmt.Errorf("bookmark: decode %s: %w", path, err)
	}
	return s, nil
}

// Get returns the saved position for a document section.
func (s *Shelf) Get(_ context.Context, document, section string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[recordKey(document, section)]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

// Set saves a position and writes the shelf to disk.
func (s *Shelf) Set(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.SavedAt.IsZero() {
		r.SavedAt = time.Now()
	}
	s.records[recordKey(r.Document, r.Section)] = r
	return s.saveLocked()
}

// Remove deletes a saved position. Removing a missing one is not an error.
func (s *Shelf) Remove(_ context.Context, document, section string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := recordKey(document, section)
	if _, ok := s.records[key]; !ok {
		return nil
	}
	delete(s.records, key)
	return s.saveLocked()
}

// All returns every saved position.
func (s *Shelf) All(_ context.Context) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	return out
}

// saveLocked writes the shelf through a temp file and rename, so a crash
// never leaves a torn file.
func (s *Shelf) saveLocked() error {
	data, err := msgpack.Marshal(s.records)
	if err != nil {
		return fmt.Errorf("bookmark: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("bookmark: mkdir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("bookmark: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("bookmark: rename: %w", err)
	}
	return nil
}

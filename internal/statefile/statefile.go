// Package statefile persists named JSON documents under the state directory.
package statefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/pulse/internal/contract"
)

// Document is the envelope written for every named document.
type Document struct {
	LastUpdated time.Time       `json:"last_updated"`
	RunID       string          `json:"run_id"`
	Data        json.RawMessage `json:"data"`
}

// Store reads and writes documents as <dir>/<name>.json.
type Store struct {
	dir   string
	clock contract.Clock
}

var _ contract.DocumentStore = &Store{} // Compile-time check

// New returns a store rooted at dir. A nil clock uses the wall clock.
func New(dir string, clock contract.Clock) *Store {
	if clock == nil {
		clock = contract.SystemClock{}
	}
	return &Store{dir: dir, clock: clock}
}

// Dir returns the directory holding the documents.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path of the named document.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Read returns the envelope of the named document.
func (s *Store) Read(name string) (Document, error) {
	var doc Document
	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return doc, fmt.Errorf("document %s: %w", name, contract.ErrNotFound)
	}
	if err != nil {
		return doc, fmt.Errorf("failed to read document %s: %w", name, err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to decode document %s: %w", name, err)
	}
	return doc, nil
}

// Load decodes the data of the named document into v.
func (s *Store) Load(name string, v any) error {
	doc, err := s.Read(name)
	if err != nil {
		return err
	}
	if len(doc.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(doc.Data, v); err != nil {
		return fmt.Errorf("failed to decode document %s: %w", name, err)
	}
	return nil
}

// Save replaces the named document with v under a fresh run ID.
func (s *Store) Save(name string, v any) error {
	_, err := s.SaveRun(name, uuid.NewString(), v)
	return err
}

// SaveRun replaces the named document with v under the given run ID.
func (s *Store) SaveRun(name, runID string, v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Document{}, fmt.Errorf("failed to encode document %s: %w", name, err)
	}
	doc := Document{LastUpdated: s.clock.Now().UTC(), RunID: runID, Data: data}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Document{}, fmt.Errorf("failed to encode document %s: %w", name, err)
	}
	if err := WriteAtomic(s.Path(name), out); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Remove deletes the named document. A missing document is not an error.
func (s *Store) Remove(name string) error {
	if err := os.Remove(s.Path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove document %s: %w", name, err)
	}
	return nil
}

// WriteAtomic writes data to a temporary file next to path, syncs it and
// renames it over path. Readers never observe a partially written file.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

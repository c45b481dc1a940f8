package iocache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/internal/statefile"
	"github.com/huangsam/pulse/schema"
)

// fileEntry is one cached value inside the JSON cache document.
type fileEntry struct {
	Value     []byte `json:"value"`
	Version   int    `json:"version"`
	Timestamp int64  `json:"timestamp"`
}

// FileCacheStore keeps cache entries in a single JSON document under the state dir.
type FileCacheStore struct {
	mu   sync.Mutex
	docs *statefile.Store
	name string
}

var _ contract.CacheStore = &FileCacheStore{} // Compile-time check

// NewFileCacheStore returns a store persisting to <stateDir>/<name>.json.
func NewFileCacheStore(stateDir, name string) (*FileCacheStore, error) {
	if err := validateTableName(name); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state dir %s: %w", stateDir, err)
	}
	return &FileCacheStore{docs: statefile.New(stateDir, nil), name: name}, nil
}

// load reads the document on every call so that a Clear from another
// process is seen immediately. A missing document is an empty cache.
func (fs *FileCacheStore) load() (map[string]fileEntry, error) {
	entries := map[string]fileEntry{}
	if err := fs.docs.Load(fs.name, &entries); err != nil && !errors.Is(err, contract.ErrNotFound) {
		return nil, err
	}
	return entries, nil
}

// Get retrieves a value by key from the store.
func (fs *FileCacheStore) Get(key string) ([]byte, int, int64, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	entries, err := fs.load()
	if err != nil {
		return nil, 0, 0, err
	}
	e, ok := entries[key]
	if !ok {
		return nil, 0, 0, sql.ErrNoRows
	}
	return e.Value, e.Version, e.Timestamp, nil
}

// Set inserts or replaces a key/value pair and rewrites the document.
func (fs *FileCacheStore) Set(key string, value []byte, version int, timestamp int64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	entries, err := fs.load()
	if err != nil {
		return err
	}
	entries[key] = fileEntry{Value: value, Version: version, Timestamp: timestamp}
	return fs.docs.Save(fs.name, entries)
}

// Clear removes the document.
func (fs *FileCacheStore) Clear() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.docs.Remove(fs.name)
}

// GetStatus returns status information about the cache document.
func (fs *FileCacheStore) GetStatus() (schema.CacheStatus, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	status := schema.CacheStatus{Backend: string(schema.JSONBackend), Connected: true}

	entries, err := fs.load()
	if err != nil {
		return status, err
	}
	status.TotalEntries = len(entries)
	first := true
	for _, e := range entries {
		ts := time.Unix(e.Timestamp, 0)
		if first || ts.After(status.LastEntryTime) {
			status.LastEntryTime = ts
		}
		if first || ts.Before(status.OldestEntryTime) {
			status.OldestEntryTime = ts
		}
		first = false
	}
	if info, err := os.Stat(fs.docs.Path(fs.name)); err == nil {
		status.TableSizeBytes = info.Size()
	}
	return status, nil
}

// Close is a no-op; every Set is already durable.
func (fs *FileCacheStore) Close() error {
	return nil
}

// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/pulse/schema"
)

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetTrendingStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	Clear() error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for persisting metric samples and forecast runs.
type HistoryStore interface {
	// AppendSample stores one metric sample
	AppendSample(name schema.MetricName, point schema.MetricPoint) error

	// LoadSamples returns the newest limit samples of a metric, oldest first
	LoadSamples(name schema.MetricName, limit int) ([]schema.MetricPoint, error)

	// RecordForecastRun stores the summary of a successful forecast
	RecordForecastRun(runID string, result schema.ForecastResult, generatedAt time.Time) error

	// GetAllSamples returns every stored sample for export
	GetAllSamples() ([]schema.SampleRecord, error)

	// GetAllForecastRuns returns every stored forecast run for export
	GetAllForecastRuns() ([]schema.ForecastRunRecord, error)

	// Clear deletes all stored samples and runs
	Clear() error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// Close closes the underlying connection
	Close() error
}

// TTLCache is a read-through cache whose entries expire after a fixed duration.
type TTLCache interface {
	// Get returns the value and true when a fresh entry exists
	Get(key string) ([]byte, bool)

	// Set stores a value stamped with the current time
	Set(key string, value []byte) error

	// Invalidate drops every entry
	Invalidate() error
}

// DocumentStore persists named JSON documents.
type DocumentStore interface {
	// Load decodes the named document into v. A missing document returns ErrNotFound.
	Load(name string, v any) error

	// Save atomically replaces the named document with v
	Save(name string, v any) error
}

// Observer receives counters from the engine and the trending cache.
type Observer interface {
	ForecastCompleted(method schema.ForecastMethod, success bool)
	FallbackUsed(reason string)
	TrendingCacheResult(hit bool)
}

// NopObserver discards every observation.
type NopObserver struct{}

func (NopObserver) ForecastCompleted(schema.ForecastMethod, bool) {}
func (NopObserver) FallbackUsed(string)                           {}
func (NopObserver) TrendingCacheResult(bool)                      {}

var _ Observer = NopObserver{} // Compile-time check

package iocache

import (
	"time"

	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetTrendingStore implements the CacheManager interface.
func (m *MockCacheManager) GetTrendingStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetHistoryStore implements the CacheManager interface.
func (m *MockCacheManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Clear implements the CacheStore interface.
func (m *MockCacheStore) Clear() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// AppendSample implements the HistoryStore interface.
func (m *MockHistoryStore) AppendSample(name schema.MetricName, point schema.MetricPoint) error {
	args := m.Called(name, point)
	return args.Error(0)
}

// LoadSamples implements the HistoryStore interface.
func (m *MockHistoryStore) LoadSamples(name schema.MetricName, limit int) ([]schema.MetricPoint, error) {
	args := m.Called(name, limit)
	points, _ := args.Get(0).([]schema.MetricPoint)
	return points, args.Error(1)
}

// RecordForecastRun implements the HistoryStore interface.
func (m *MockHistoryStore) RecordForecastRun(runID string, result schema.ForecastResult, generatedAt time.Time) error {
	args := m.Called(runID, result, generatedAt)
	return args.Error(0)
}

// GetAllSamples implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllSamples() ([]schema.SampleRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.SampleRecord)
	return records, args.Error(1)
}

// GetAllForecastRuns implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllForecastRuns() ([]schema.ForecastRunRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.ForecastRunRecord)
	return records, args.Error(1)
}

// Clear implements the HistoryStore interface.
func (m *MockHistoryStore) Clear() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

package core

import (
	"sync"

	"github.com/huangsam/pulse/schema"
)

// SyncEngine serializes access to an Engine shared by concurrent callers.
type SyncEngine struct {
	mu     sync.Mutex
	engine *Engine
}

// NewSyncEngine wraps engine. The caller must not use engine directly afterwards.
func NewSyncEngine(engine *Engine) *SyncEngine {
	return &SyncEngine{engine: engine}
}

// Record is Engine.Record under the lock.
func (s *SyncEngine) Record(name schema.MetricName, value float64, timestamp string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Record(name, value, timestamp)
}

// Forecast is Engine.Forecast under the lock.
func (s *SyncEngine) Forecast(name schema.MetricName, periods int, method schema.ForecastMethod) (schema.ForecastResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Forecast(name, periods, method)
}

// PredictBreach is Engine.PredictBreach under the lock.
func (s *SyncEngine) PredictBreach(name schema.MetricName, threshold float64, horizonHours int) (schema.BreachPrediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.PredictBreach(name, threshold, horizonHours)
}

// Insights is Engine.Insights under the lock.
func (s *SyncEngine) Insights() []schema.Insight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Insights()
}

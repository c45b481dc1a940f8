package core

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingObserver records observations for assertions.
type countingObserver struct {
	completed map[string]int
	fallbacks map[string]int
	hits      int
	misses    int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{completed: map[string]int{}, fallbacks: map[string]int{}}
}

func (o *countingObserver) ForecastCompleted(method schema.ForecastMethod, success bool) {
	o.completed[fmt.Sprintf("%s/%t", method, success)]++
}

func (o *countingObserver) FallbackUsed(reason string) { o.fallbacks[reason]++ }

func (o *countingObserver) TrendingCacheResult(hit bool) {
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

var _ contract.Observer = &countingObserver{} // Compile-time check

func testClock() *contract.FixedClock {
	return &contract.FixedClock{T: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

// seedEngine records values one hour apart ending at the test clock.
func seedEngine(e *Engine, name schema.MetricName, values ...float64) {
	base := testClock().T.Add(-time.Duration(len(values)) * time.Hour)
	for i, v := range values {
		e.Record(name, v, base.Add(time.Duration(i)*time.Hour).Format(time.RFC3339))
	}
}

func TestEngineForecastFailures(t *testing.T) {
	obs := newCountingObserver()
	e := NewEngine(WithClock(testClock()), WithObserver(obs))

	t.Run("unknown metric", func(t *testing.T) {
		res, err := e.Forecast("bogus", 5, schema.LinearMethod)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, schema.UnknownMetric, res.Failure)
	})

	t.Run("insufficient data", func(t *testing.T) {
		seedEngine(e, schema.Cost, 1, 2)
		res, err := e.Forecast(schema.Cost, 5, "")
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, schema.InsufficientData, res.Failure)
		assert.Equal(t, "insufficient data", res.Message)
		assert.Equal(t, schema.EnsembleMethod, res.Method)
	})

	t.Run("invalid method", func(t *testing.T) {
		_, err := e.Forecast(schema.Cost, 5, "arima")
		assert.ErrorIs(t, err, contract.ErrInvalidMethod)
	})

	assert.Equal(t, 1, obs.completed["linear/false"])
	assert.Equal(t, 1, obs.completed["ensemble/false"])
}

func TestEngineForecastMethods(t *testing.T) {
	values := []float64{10, 12, 11, 13, 15, 14, 16, 18, 17, 19, 21, 20}
	methods := []schema.ForecastMethod{
		schema.LinearMethod,
		schema.ExponentialMethod,
		schema.MovingAverageMethod,
		schema.SeasonalMethod,
		schema.EnsembleMethod,
	}
	for _, method := range methods {
		t.Run(string(method), func(t *testing.T) {
			e := NewEngine(WithClock(testClock()), WithSeasonLength(4))
			seedEngine(e, schema.ResponseTime, values...)

			res, err := e.Forecast(schema.ResponseTime, 6, method)
			require.NoError(t, err)
			require.True(t, res.Success)
			assert.Len(t, res.Forecasts, 6)
			assert.Len(t, res.ConfidenceIntervals, 6)
			assert.Len(t, res.Timestamps, 6)
			assert.GreaterOrEqual(t, res.Confidence, 0.0)
			assert.LessOrEqual(t, res.Confidence, 1.0)
			assert.Equal(t, values, res.Historical.Values)
			assert.Equal(t, "2026-03-01T12:00:00Z", res.Timestamps[0])

			for i := 1; i < len(res.ConfidenceIntervals); i++ {
				assert.Greater(t, res.ConfidenceIntervals[i].Width(), res.ConfidenceIntervals[i-1].Width())
			}
			if method == schema.EnsembleMethod {
				require.NotNil(t, res.Weights)
				assert.InDelta(t, 1.0, res.Weights.Sum(), 1e-9)
			} else {
				assert.Nil(t, res.Weights)
			}
		})
	}
}

func TestEngineRecordSkipsNonFinite(t *testing.T) {
	e := NewEngine(WithClock(testClock()))
	assert.True(t, e.Record(schema.Cost, 10, "2026-03-01T00:00:00Z"))
	assert.True(t, e.Record(schema.Cost, 20, "2026-03-01T01:00:00Z"))
	assert.False(t, e.Record(schema.Cost, math.NaN(), "2026-03-01T02:00:00Z"))
	assert.False(t, e.Record(schema.Cost, math.Inf(1), "2026-03-01T03:00:00Z"))
	assert.True(t, e.Record(schema.Cost, 40, "2026-03-01T04:00:00Z"))
	assert.True(t, e.Record(schema.Cost, 50, "2026-03-01T05:00:00Z"))

	res, err := e.Forecast(schema.Cost, 3, schema.LinearMethod)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, []float64{10, 20, 40, 50}, res.Historical.Values)
	assert.InDeltaSlice(t, []float64{65, 79, 93}, res.Forecasts, 1e-9)

	_, err = json.Marshal(res)
	assert.NoError(t, err)
}

func TestEngineForecastDeterministic(t *testing.T) {
	e := NewEngine(WithClock(testClock()))
	seedEngine(e, schema.APICalls, 100, 120, 90, 130, 125, 140, 150)

	first, err := e.Forecast(schema.APICalls, 12, "")
	require.NoError(t, err)
	second, err := e.Forecast(schema.APICalls, 12, "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEngineForecastZeroSeriesFallsBack(t *testing.T) {
	obs := newCountingObserver()
	e := NewEngine(WithClock(testClock()), WithObserver(obs))
	seedEngine(e, schema.ErrorCount, 0, 0, 0, 0)

	res, err := e.Forecast(schema.ErrorCount, 3, schema.ExponentialMethod)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, 0.5, res.Confidence)
	assert.Equal(t, []float64{0, 0, 0}, res.Forecasts)
	assert.Equal(t, 1, obs.fallbacks["zero_mean"])
}

func TestEnginePredictBreach(t *testing.T) {
	e := NewEngine(WithClock(testClock()))
	seedEngine(e, schema.ContextUsage, 10, 20, 30, 40, 50)

	t.Run("breach in the first hour", func(t *testing.T) {
		pred, err := e.PredictBreach(schema.ContextUsage, 45, 10)
		require.NoError(t, err)
		require.True(t, pred.Success)
		require.True(t, pred.WillBreach)
		require.NotNil(t, pred.HoursUntilBreach)
		assert.Equal(t, 1, *pred.HoursUntilBreach)
		assert.GreaterOrEqual(t, *pred.BreachValue, 45.0)
		assert.Equal(t, schema.CriticalUrgency, pred.Urgency)
		assert.Equal(t, "2026-03-01T12:00:00Z", *pred.BreachTime)
	})

	t.Run("no breach within horizon", func(t *testing.T) {
		pred, err := e.PredictBreach(schema.ContextUsage, 1e6, 10)
		require.NoError(t, err)
		assert.True(t, pred.Success)
		assert.False(t, pred.WillBreach)
		assert.Nil(t, pred.HoursUntilBreach)
		assert.Empty(t, pred.Urgency)
		assert.Greater(t, pred.MaxForecast, 50.0)
	})

	t.Run("below direction", func(t *testing.T) {
		th := schema.MetricThreshold{Value: 60, Direction: schema.BelowDirection}
		pred, err := e.PredictBreachWithDirection(schema.ContextUsage, th, 5)
		require.NoError(t, err)
		assert.True(t, pred.WillBreach)
	})

	t.Run("non-positive horizon", func(t *testing.T) {
		_, err := e.PredictBreach(schema.ContextUsage, 45, 0)
		assert.Error(t, err)
	})

	t.Run("insufficient data", func(t *testing.T) {
		pred, err := e.PredictBreach(schema.Cost, 45, 10)
		require.NoError(t, err)
		assert.False(t, pred.Success)
		assert.Equal(t, "insufficient data", pred.Message)
	})
}

func TestUrgencyFor(t *testing.T) {
	tests := []struct {
		hours    int
		expected schema.Urgency
	}{
		{1, schema.CriticalUrgency},
		{23, schema.CriticalUrgency},
		{24, schema.HighUrgency},
		{71, schema.HighUrgency},
		{72, schema.MediumUrgency},
		{168, schema.MediumUrgency},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dh", tt.hours), func(t *testing.T) {
			assert.Equal(t, tt.expected, urgencyFor(tt.hours))
		})
	}
}

func TestEngineLoad(t *testing.T) {
	e := NewEngine(WithCapacity(2))
	n := e.Load(schema.Cost, []schema.MetricPoint{
		{Value: 1, Timestamp: "2026-01-01T00:00:00Z"},
		{Value: 2, Timestamp: "2026-01-01T01:00:00Z"},
		{Value: 3, Timestamp: "2026-01-01T02:00:00Z"},
	})
	assert.Equal(t, 3, n)
	assert.Equal(t, 0, e.Load("bogus", []schema.MetricPoint{{Value: 1}}))
	assert.Len(t, e.Points(schema.Cost), 2)
}

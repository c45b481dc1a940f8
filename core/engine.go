package core

import (
	"fmt"
	"math"
	"time"

	"github.com/huangsam/pulse/core/algo"
	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/schema"
	"go.uber.org/zap"
)

// Engine limits.
const (
	minForecastPoints = 3
	recentWindow      = 10
	insightHorizon    = 24
	capacityHorizon   = 168
)

// insufficientDataMessage is reported when a metric has too few points.
const insufficientDataMessage = "insufficient data"

// Engine owns a metric buffer and produces forecasts, breach predictions and insights.
// It is not safe for concurrent use; see SyncEngine.
type Engine struct {
	buffer       *MetricBuffer
	capacity     int
	seasonLength int
	clock        contract.Clock
	logger       *zap.Logger
	observer     contract.Observer
	thresholds   map[schema.MetricName]schema.MetricThreshold
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCapacity sets the per-metric buffer capacity.
func WithCapacity(capacity int) EngineOption {
	return func(e *Engine) { e.capacity = capacity }
}

// WithSeasonLength sets the cycle length used by the seasonal method.
func WithSeasonLength(length int) EngineOption {
	return func(e *Engine) {
		if length > 0 {
			e.seasonLength = length
		}
	}
}

// WithClock sets the clock used for default timestamps.
func WithClock(clock contract.Clock) EngineOption {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithLogger sets the logger that receives fallback diagnostics.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObserver sets the observer that counts forecasts and fallbacks.
func WithObserver(observer contract.Observer) EngineOption {
	return func(e *Engine) {
		if observer != nil {
			e.observer = observer
		}
	}
}

// WithThresholds overrides the thresholds used by Insights.
func WithThresholds(thresholds map[schema.MetricName]schema.MetricThreshold) EngineOption {
	return func(e *Engine) {
		for name, th := range thresholds {
			e.thresholds[name] = th
		}
	}
}

// NewEngine creates an engine with its own empty buffer.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		capacity:     contract.DefaultCapacity,
		seasonLength: algo.DefaultSeasonLength,
		clock:        contract.SystemClock{},
		logger:       zap.NewNop(),
		observer:     contract.NopObserver{},
		thresholds:   schema.DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.buffer = NewMetricBuffer(e.capacity, e.clock)
	return e
}

// Record appends a sample. Unknown metric names are ignored and reported as false.
// An empty timestamp means now.
func (e *Engine) Record(name schema.MetricName, value float64, timestamp string) bool {
	return e.buffer.Append(name, value, timestamp)
}

// Load appends previously stored points in order.
func (e *Engine) Load(name schema.MetricName, points []schema.MetricPoint) int {
	var n int
	for _, p := range points {
		if e.buffer.Append(name, p.Value, p.Timestamp) {
			n++
		}
	}
	return n
}

// Points returns a copy of the buffered points of a metric, oldest first.
func (e *Engine) Points(name schema.MetricName) []schema.MetricPoint {
	return e.buffer.Read(name)
}

// Thresholds returns the thresholds used by Insights.
func (e *Engine) Thresholds() map[schema.MetricName]schema.MetricThreshold {
	out := make(map[schema.MetricName]schema.MetricThreshold, len(e.thresholds))
	for k, v := range e.thresholds {
		out[k] = v
	}
	return out
}

// Forecast predicts the next periods hourly values of a metric.
// Data problems are reported through Success and Failure on the result;
// only an unsupported method returns an error. An empty method means ensemble.
func (e *Engine) Forecast(name schema.MetricName, periods int, method schema.ForecastMethod) (schema.ForecastResult, error) {
	if method == "" {
		method = schema.EnsembleMethod
	}
	if _, ok := schema.ValidForecastMethods[method]; !ok {
		return schema.ForecastResult{}, fmt.Errorf("%w: %q", contract.ErrInvalidMethod, method)
	}

	res := schema.ForecastResult{Metric: name, Method: method, Periods: periods}
	if !schema.IsValidMetric(name) {
		res.Failure = schema.UnknownMetric
		res.Message = fmt.Sprintf("unknown metric: %s", name)
		e.observer.ForecastCompleted(method, false)
		return res, nil
	}

	points := e.buffer.Read(name)
	if len(points) < minForecastPoints {
		res.Failure = schema.InsufficientData
		res.Message = insufficientDataMessage
		e.observer.ForecastCompleted(method, false)
		return res, nil
	}

	values := make([]float64, len(points))
	timestamps := make([]string, len(points))
	for i, p := range points {
		values[i] = p.Value
		timestamps[i] = p.Timestamp
	}
	res.Historical = schema.Historical{Values: values, Timestamps: timestamps}

	switch method {
	case schema.LinearMethod:
		forecast, slope, r2 := algo.LinearForecast(values, periods)
		if algo.FitLinear(values).Degenerate {
			e.fallback(name, method, algo.ReasonZeroVariance)
		}
		res.Forecasts, res.Slope, res.RSquared, res.Confidence = forecast, slope, r2, r2
	case schema.ExponentialMethod:
		res.Forecasts = algo.ExponentialForecast(values, periods, algo.DefaultAlpha)
		res.Confidence = e.recentConfidence(name, method, values)
	case schema.MovingAverageMethod:
		res.Forecasts = algo.MovingAverageForecast(values, periods, algo.DefaultWindow)
		res.Confidence = e.recentConfidence(name, method, values)
	case schema.SeasonalMethod:
		if len(values) < 2*e.seasonLength {
			e.fallback(name, method, algo.ReasonSeasonalShortSeries)
		}
		res.Forecasts = algo.SeasonalForecast(values, periods, e.seasonLength)
		res.Confidence = e.recentConfidence(name, method, values)
	default: // ensemble
		ens := algo.EnsembleForecast(values, periods)
		for _, reason := range ens.Fallbacks {
			e.fallback(name, method, reason)
		}
		weights := ens.Weights
		res.Forecasts, res.Slope, res.RSquared, res.Confidence = ens.Forecast, ens.Slope, ens.RSquared, ens.Confidence
		res.Weights = &weights
	}

	res.Confidence = algo.Clamp01(res.Confidence)
	res.ConfidenceIntervals = algo.ConfidenceIntervals(res.Forecasts, algo.StdDev(algo.Tail(values, recentWindow)))
	res.Timestamps = e.futureTimestamps(points[len(points)-1].Timestamp, len(res.Forecasts))
	res.Success = true
	e.observer.ForecastCompleted(method, true)
	return res, nil
}

// recentConfidence is 1/(1+CV) over the recent window, or 0.5 when the mean is near zero.
func (e *Engine) recentConfidence(name schema.MetricName, method schema.ForecastMethod, values []float64) float64 {
	conf, ok := algo.VariationConfidence(algo.Tail(values, recentWindow))
	if !ok {
		e.fallback(name, method, algo.ReasonZeroMean)
	}
	return conf
}

// futureTimestamps returns hourly steps after the last sample, or after now
// when the last timestamp cannot be parsed.
func (e *Engine) futureTimestamps(last string, periods int) []string {
	base, err := time.Parse(time.RFC3339, last)
	if err != nil {
		base = e.clock.Now()
	}
	out := make([]string, periods)
	for i := range out {
		out[i] = base.Add(time.Duration(i+1) * time.Hour).UTC().Format(time.RFC3339)
	}
	return out
}

// fallback records a degenerate-input default.
func (e *Engine) fallback(name schema.MetricName, method schema.ForecastMethod, reason string) {
	e.logger.Debug("forecast fallback",
		zap.String("metric", string(name)),
		zap.String("method", string(method)),
		zap.String("reason", reason))
	e.observer.FallbackUsed(reason)
}

// PredictBreach forecasts horizonHours ahead and reports the first step at or
// above threshold.
func (e *Engine) PredictBreach(name schema.MetricName, threshold float64, horizonHours int) (schema.BreachPrediction, error) {
	return e.PredictBreachWithDirection(name, schema.MetricThreshold{Value: threshold, Direction: schema.AboveDirection}, horizonHours)
}

// PredictBreachWithDirection is PredictBreach for a threshold that may be
// crossed going down. A below threshold is breached at or under its value.
func (e *Engine) PredictBreachWithDirection(name schema.MetricName, threshold schema.MetricThreshold, horizonHours int) (schema.BreachPrediction, error) {
	if horizonHours <= 0 {
		return schema.BreachPrediction{}, fmt.Errorf("horizon must be positive (received %d)", horizonHours)
	}
	pred := schema.BreachPrediction{Metric: name, Threshold: threshold.Value, HorizonHours: horizonHours}

	res, err := e.Forecast(name, horizonHours, schema.EnsembleMethod)
	if err != nil {
		return pred, err
	}
	if !res.Success {
		pred.Message = res.Message
		return pred, nil
	}
	pred.Success = true

	pred.MaxForecast = math.Inf(-1)
	for i, v := range res.Forecasts {
		pred.MaxForecast = math.Max(pred.MaxForecast, v)
		if pred.WillBreach || !crosses(v, threshold) {
			continue
		}
		hours := i + 1
		value := v
		breachTime := res.Timestamps[i]
		pred.WillBreach = true
		pred.HoursUntilBreach = &hours
		pred.BreachValue = &value
		pred.BreachTime = &breachTime
		pred.Urgency = urgencyFor(hours)
	}
	pred.MaxForecast = algo.SafeFloat(pred.MaxForecast)
	return pred, nil
}

// crosses reports whether v is on the breached side of the threshold.
func crosses(v float64, th schema.MetricThreshold) bool {
	if th.Direction == schema.BelowDirection {
		return v <= th.Value
	}
	return v >= th.Value
}

// urgencyFor maps hours until breach to an urgency level.
func urgencyFor(hours int) schema.Urgency {
	switch {
	case hours < 24:
		return schema.CriticalUrgency
	case hours < 72:
		return schema.HighUrgency
	default:
		return schema.MediumUrgency
	}
}

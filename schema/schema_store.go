package schema

import "time"

// SampleRecord represents a row from the pulse_metric_samples table.
type SampleRecord struct {
	SampleID   int64
	Metric     MetricName
	Value      float64
	SampledAt  time.Time
	RecordedAt time.Time
}

// ForecastRunRecord represents a row from the pulse_forecast_runs table.
type ForecastRunRecord struct {
	RunID       string
	Metric      MetricName
	Method      ForecastMethod
	Periods     int32
	Confidence  float64
	RSquared    float64
	Forecasts   string // JSON encoded []float64
	GeneratedAt time.Time
}

// Point converts the record back into a buffer point.
func (r SampleRecord) Point() MetricPoint {
	return MetricPoint{Value: r.Value, Timestamp: r.SampledAt.UTC().Format(time.RFC3339)}
}

// ModelSummary records the fitted model of the latest forecast of one metric.
type ModelSummary struct {
	Method     ForecastMethod   `json:"method"`
	Samples    int              `json:"samples"`
	Confidence float64          `json:"confidence"`
	Slope      float64          `json:"slope"`
	RSquared   float64          `json:"r_squared"`
	Weights    *EnsembleWeights `json:"weights,omitempty"`
}

// NewModelSummary summarizes a successful forecast.
func NewModelSummary(res ForecastResult) ModelSummary {
	return ModelSummary{
		Method:     res.Method,
		Samples:    len(res.Historical.Values),
		Confidence: res.Confidence,
		Slope:      res.Slope,
		RSquared:   res.RSquared,
		Weights:    res.Weights,
	}
}

// Package schema has configs, models and constants for all parts of pulse.
package schema

// MetricPoint is a single timestamped sample of a metric.
// Points are never modified after they are appended to a buffer.
type MetricPoint struct {
	Value     float64 `json:"value" yaml:"value"`
	Timestamp string  `json:"timestamp" yaml:"timestamp"` // RFC3339
}

// Interval is a symmetric confidence band around one forecast step.
type Interval struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// Width returns Upper - Lower.
func (iv Interval) Width() float64 {
	return iv.Upper - iv.Lower
}

// Historical holds the input series a forecast was computed from.
type Historical struct {
	Values     []float64 `json:"values" yaml:"values"`
	Timestamps []string  `json:"timestamps" yaml:"timestamps"`
}

// EnsembleWeights are the normalized weights applied to each ensemble member.
type EnsembleWeights struct {
	Linear        float64 `json:"linear" yaml:"linear"`
	Exponential   float64 `json:"exponential" yaml:"exponential"`
	MovingAverage float64 `json:"moving_average" yaml:"moving_average"`
}

// Sum returns the total of all weights.
func (w EnsembleWeights) Sum() float64 {
	return w.Linear + w.Exponential + w.MovingAverage
}

// ForecastResult is the output of a single forecast call.
// When Success is false only Metric, Method, Message and Failure are meaningful.
type ForecastResult struct {
	Success             bool             `json:"success" yaml:"success"`
	Message             string           `json:"message,omitempty" yaml:"message,omitempty"`
	Failure             FailureKind      `json:"failure,omitempty" yaml:"failure,omitempty"`
	Metric              MetricName       `json:"metric" yaml:"metric"`
	Method              ForecastMethod   `json:"method" yaml:"method"`
	Periods             int              `json:"periods" yaml:"periods"`
	Forecasts           []float64        `json:"forecasts" yaml:"forecasts"`
	ConfidenceIntervals []Interval       `json:"confidence_intervals" yaml:"confidence_intervals"`
	Timestamps          []string         `json:"timestamps" yaml:"timestamps"`
	Confidence          float64          `json:"confidence" yaml:"confidence"`
	Slope               float64          `json:"slope,omitempty" yaml:"slope,omitempty"`
	RSquared            float64          `json:"r_squared,omitempty" yaml:"r_squared,omitempty"`
	Weights             *EnsembleWeights `json:"weights,omitempty" yaml:"weights,omitempty"`
	Historical          Historical       `json:"historical" yaml:"historical"`
}

// BreachPrediction describes when a metric is forecast to cross a threshold.
// The pointer fields are only set when WillBreach is true.
type BreachPrediction struct {
	Success          bool       `json:"success" yaml:"success"`
	Message          string     `json:"message,omitempty" yaml:"message,omitempty"`
	Metric           MetricName `json:"metric" yaml:"metric"`
	Threshold        float64    `json:"threshold" yaml:"threshold"`
	HorizonHours     int        `json:"horizon_hours" yaml:"horizon_hours"`
	WillBreach       bool       `json:"will_breach" yaml:"will_breach"`
	BreachTime       *string    `json:"breach_time,omitempty" yaml:"breach_time,omitempty"`
	BreachValue      *float64   `json:"breach_value,omitempty" yaml:"breach_value,omitempty"`
	HoursUntilBreach *int       `json:"hours_until_breach,omitempty" yaml:"hours_until_breach,omitempty"`
	MaxForecast      float64    `json:"max_forecast" yaml:"max_forecast"`
	Urgency          Urgency    `json:"urgency,omitempty" yaml:"urgency,omitempty"`
}

// Insight is one summarized finding across the tracked metrics.
type Insight struct {
	Type           InsightType `json:"type" yaml:"type"`
	Metric         MetricName  `json:"metric" yaml:"metric"`
	Priority       Severity    `json:"priority" yaml:"priority"`
	Message        string      `json:"message" yaml:"message"`
	Recommendation string      `json:"recommendation" yaml:"recommendation"`
}

// MetricThreshold is an operator-defined limit for one metric.
type MetricThreshold struct {
	Value     float64            `json:"value" yaml:"value"`
	Direction ThresholdDirection `json:"direction" yaml:"direction"`
}

// DefaultThresholds returns the built-in thresholds used by the insight summary.
func DefaultThresholds() map[MetricName]MetricThreshold {
	return map[MetricName]MetricThreshold{
		HealthScore:  {Value: 50, Direction: BelowDirection},
		ErrorCount:   {Value: 50, Direction: AboveDirection},
		ContextUsage: {Value: 90, Direction: AboveDirection},
		ResponseTime: {Value: 5000, Direction: AboveDirection},
		Cost:         {Value: 100, Direction: AboveDirection},
		APICalls:     {Value: 1000, Direction: AboveDirection},
	}
}

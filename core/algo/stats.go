// Package algo has the pure numeric primitives behind forecasting and scoring.
package algo

import "math"

// nearZero is the magnitude below which a mean or variance is treated as zero.
const nearZero = 1e-9

// Fallback reasons reported when degenerate input forces a default value.
const (
	ReasonZeroVariance        = "zero_variance"
	ReasonZeroMean            = "zero_mean"
	ReasonSeasonalShortSeries = "seasonal_short_series"
	ReasonShortSeries         = "short_series"
)

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation, or 0 for an empty slice.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)))
}

// Clamp01 restricts v to [0,1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SafeFloat returns 0 if v is NaN or Inf, otherwise returns v.
// This keeps every value JSON-serializable.
func SafeFloat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// VariationConfidence maps the coefficient of variation of values to 1/(1+CV).
// It returns 0.5 and false when the mean is too close to zero to divide by.
func VariationConfidence(values []float64) (float64, bool) {
	mean := Mean(values)
	if math.Abs(mean) < nearZero {
		return 0.5, false
	}
	cv := StdDev(values) / math.Abs(mean)
	return Clamp01(1 / (1 + cv)), true
}

// Tail returns the last n values, or all of them when there are fewer.
func Tail(values []float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

// repeat returns v repeated periods times. Non-positive periods yield an empty slice.
func repeat(v float64, periods int) []float64 {
	if periods <= 0 {
		return []float64{}
	}
	out := make([]float64, periods)
	for i := range out {
		out[i] = v
	}
	return out
}

// extrapolate returns base + trend*(i+1) for each step i.
func extrapolate(base, trend float64, periods int) []float64 {
	if periods <= 0 {
		return []float64{}
	}
	out := make([]float64, periods)
	for i := range out {
		out[i] = SafeFloat(base + trend*float64(i+1))
	}
	return out
}

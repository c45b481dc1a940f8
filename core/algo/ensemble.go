package algo

import (
	"math"

	"github.com/huangsam/pulse/schema"
)

// Fixed ensemble weights before normalization.
const (
	linearFallbackWeight = 0.3
	exponentialWeight    = 0.4
	movingAverageWeight  = 0.3
)

// EnsembleResult is the blended forecast and how it was built.
type EnsembleResult struct {
	Forecast   []float64
	Weights    schema.EnsembleWeights
	Confidence float64
	Slope      float64
	RSquared   float64
	Fallbacks  []string // degenerate-input reasons hit while building the blend
}

// EnsembleWeightsFor returns normalized member weights for a linear r-squared.
// A non-positive or NaN r-squared gives the linear member its fallback weight.
func EnsembleWeightsFor(r2 float64) schema.EnsembleWeights {
	linear := r2
	if math.IsNaN(linear) || linear <= 0 {
		linear = linearFallbackWeight
	}
	w := schema.EnsembleWeights{Linear: linear, Exponential: exponentialWeight, MovingAverage: movingAverageWeight}
	total := w.Sum()
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return schema.EnsembleWeights{Linear: 1.0 / 3, Exponential: 1.0 / 3, MovingAverage: 1.0 / 3}
	}
	return schema.EnsembleWeights{
		Linear:        w.Linear / total,
		Exponential:   w.Exponential / total,
		MovingAverage: w.MovingAverage / total,
	}
}

// EnsembleForecast blends the linear, exponential and moving average forecasts.
// Confidence is 1/(1+mean CV) over the per-period member outputs, skipping
// periods whose mean is near zero; with no usable period it is 0.5.
func EnsembleForecast(values []float64, periods int) EnsembleResult {
	linear, slope, r2 := LinearForecast(values, periods)
	exponential := ExponentialForecast(values, periods, DefaultAlpha)
	moving := MovingAverageForecast(values, periods, DefaultWindow)
	weights := EnsembleWeightsFor(r2)

	res := EnsembleResult{
		Forecast: make([]float64, len(linear)),
		Weights:  weights,
		Slope:    slope,
		RSquared: r2,
	}
	switch {
	case len(values) <= 1:
		res.Fallbacks = append(res.Fallbacks, ReasonShortSeries)
	case FitLinear(values).Degenerate:
		res.Fallbacks = append(res.Fallbacks, ReasonZeroVariance)
	}

	var cvSum float64
	var used int
	for i := range res.Forecast {
		members := []float64{linear[i], exponential[i], moving[i]}
		res.Forecast[i] = SafeFloat(weights.Linear*linear[i] + weights.Exponential*exponential[i] + weights.MovingAverage*moving[i])

		mean := Mean(members)
		if math.Abs(mean) < nearZero {
			continue
		}
		cvSum += StdDev(members) / math.Abs(mean)
		used++
	}

	if used == 0 {
		res.Confidence = 0.5
		if periods > 0 {
			res.Fallbacks = append(res.Fallbacks, ReasonZeroMean)
		}
		return res
	}
	res.Confidence = Clamp01(SafeFloat(1 / (1 + cvSum/float64(used))))
	return res
}

// ConfidenceIntervals returns symmetric bands whose half-width grows by 10% of
// recentStd per step: width_i = recentStd * (1 + 0.1*i).
func ConfidenceIntervals(forecast []float64, recentStd float64) []schema.Interval {
	recentStd = math.Abs(SafeFloat(recentStd))
	out := make([]schema.Interval, len(forecast))
	for i, f := range forecast {
		width := recentStd * (1 + 0.1*float64(i))
		out[i] = schema.Interval{Lower: f - width, Upper: f + width}
	}
	return out
}

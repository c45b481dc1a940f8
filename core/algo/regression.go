package algo

import "math"

// LinearFit is an ordinary least squares fit of value against index.
type LinearFit struct {
	Slope     float64
	Intercept float64
	RSquared  float64
	// Degenerate is set when the fit fell back to a default:
	// fewer than two points, or a series with zero variance.
	Degenerate bool
}

// FitLinear fits values against their index 0..n-1.
// With n <= 1 the fit is flat at the mean. A series with zero total
// variance keeps its slope but reports an r-squared of 0.
func FitLinear(values []float64) LinearFit {
	n := float64(len(values))
	if n <= 1 {
		return LinearFit{Intercept: Mean(values), Degenerate: true}
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if math.Abs(denom) < 1e-12 {
		return LinearFit{Intercept: sumY / n, Degenerate: true}
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	mean := sumY / n
	var ssTot, ssRes float64
	for i, v := range values {
		pred := intercept + slope*float64(i)
		ssRes += (v - pred) * (v - pred)
		ssTot += (v - mean) * (v - mean)
	}

	fit := LinearFit{Slope: SafeFloat(slope), Intercept: SafeFloat(intercept)}
	if ssTot < 1e-12 {
		fit.Degenerate = true
		return fit
	}
	fit.RSquared = Clamp01(1 - ssRes/ssTot)
	return fit
}

// At returns the fitted value at index x.
func (f LinearFit) At(x float64) float64 {
	return SafeFloat(f.Intercept + f.Slope*x)
}

// LinearForecast extrapolates the least squares line for periods steps past the series.
// It returns the forecast, the slope and r-squared.
func LinearForecast(values []float64, periods int) ([]float64, float64, float64) {
	fit := FitLinear(values)
	if len(values) <= 1 {
		return repeat(fit.Intercept, periods), 0, 0
	}
	if periods <= 0 {
		return []float64{}, fit.Slope, fit.RSquared
	}
	n := float64(len(values))
	out := make([]float64, periods)
	for i := range out {
		out[i] = fit.At(n + float64(i))
	}
	return out, fit.Slope, fit.RSquared
}

package algo

import "math"

// DefaultSeasonLength is one daily cycle of hourly samples.
const DefaultSeasonLength = 24

// SeasonalIndices returns the per-phase ratio of phase average to overall average.
// Phases whose ratio cannot be computed get an index of 1.0.
func SeasonalIndices(values []float64, seasonLength int) []float64 {
	indices := repeat(1, seasonLength)
	overall := Mean(values)
	if math.Abs(overall) < nearZero {
		return indices
	}
	sums := make([]float64, seasonLength)
	counts := make([]int, seasonLength)
	for i, v := range values {
		sums[i%seasonLength] += v
		counts[i%seasonLength]++
	}
	for p := range indices {
		if counts[p] == 0 {
			continue
		}
		idx := (sums[p] / float64(counts[p])) / overall
		if math.Abs(idx) < nearZero || math.IsNaN(idx) || math.IsInf(idx, 0) {
			continue
		}
		indices[p] = idx
	}
	return indices
}

// SeasonalForecast deseasonalizes the series, forecasts it with exponential
// smoothing and reapplies the index of each future phase. Series shorter than
// two full seasons fall back to ExponentialForecast.
func SeasonalForecast(values []float64, periods, seasonLength int) []float64 {
	if seasonLength <= 0 || len(values) < 2*seasonLength {
		return ExponentialForecast(values, periods, DefaultAlpha)
	}
	indices := SeasonalIndices(values, seasonLength)
	deseasonalized := make([]float64, len(values))
	for i, v := range values {
		deseasonalized[i] = v / indices[i%seasonLength]
	}

	base := ExponentialForecast(deseasonalized, periods, DefaultAlpha)
	n := len(values)
	for i := range base {
		base[i] = SafeFloat(base[i] * indices[(n+i)%seasonLength])
	}
	return base
}

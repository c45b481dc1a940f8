package algo

// DefaultAlpha is the smoothing factor for single exponential smoothing.
const DefaultAlpha = 0.3

// DefaultWindow is the moving average window.
const DefaultWindow = 5

// smooth applies single exponential smoothing seeded with the first value.
func smooth(values []float64, alpha float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if i == 0 {
			out[i] = v
			continue
		}
		out[i] = alpha*v + (1-alpha)*out[i-1]
	}
	return out
}

// ExponentialForecast extrapolates the last smoothed value by the difference
// between the last two smoothed values. A single point yields a constant series.
func ExponentialForecast(values []float64, periods int, alpha float64) []float64 {
	switch len(values) {
	case 0:
		return repeat(0, periods)
	case 1:
		return repeat(values[0], periods)
	}
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	s := smooth(values, alpha)
	last := s[len(s)-1]
	trend := last - s[len(s)-2]
	return extrapolate(last, trend, periods)
}

// MovingAverageForecast extrapolates the trailing moving average by the
// difference of its last two values. With fewer points than the window the
// plain mean is repeated.
func MovingAverageForecast(values []float64, periods, window int) []float64 {
	if window <= 0 {
		window = DefaultWindow
	}
	if len(values) < window {
		return repeat(Mean(values), periods)
	}

	averages := make([]float64, 0, len(values)-window+1)
	for end := window; end <= len(values); end++ {
		averages = append(averages, Mean(values[end-window:end]))
	}
	last := averages[len(averages)-1]
	var trend float64
	if len(averages) >= 2 {
		trend = last - averages[len(averages)-2]
	}
	return extrapolate(last, trend, periods)
}

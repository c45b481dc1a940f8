package schema

// RankedRecommendation adds presentation data to a Recommendation.
type RankedRecommendation struct {
	Rank           int `json:"rank" yaml:"rank"`
	Recommendation `yaml:",inline"`
}

// ForecastRow is one flattened forecast step used by tabular writers.
type ForecastRow struct {
	Metric     MetricName     `json:"metric"`
	Method     ForecastMethod `json:"method"`
	Step       int            `json:"step"`
	Timestamp  string         `json:"timestamp"`
	Forecast   float64        `json:"forecast"`
	Lower      float64        `json:"lower"`
	Upper      float64        `json:"upper"`
	Confidence float64        `json:"confidence"`
}

// GetPlainLabel returns a plain text label for a 0-100 trending score.
func GetPlainLabel(score float64) string {
	switch {
	case score >= 80:
		return "Hot"
	case score >= 60:
		return "Popular"
	case score >= 40:
		return "Active"
	default:
		return "Quiet"
	}
}

// RankRecommendations adds a 1-based rank to an already sorted list of recommendations.
func RankRecommendations(recs []Recommendation) []RankedRecommendation {
	output := make([]RankedRecommendation, len(recs))
	for i, r := range recs {
		output[i] = RankedRecommendation{Rank: i + 1, Recommendation: r}
	}
	return output
}

// FlattenForecast turns a successful forecast into one row per step.
func FlattenForecast(res ForecastResult) []ForecastRow {
	rows := make([]ForecastRow, 0, len(res.Forecasts))
	for i, v := range res.Forecasts {
		row := ForecastRow{
			Metric:     res.Metric,
			Method:     res.Method,
			Step:       i + 1,
			Forecast:   v,
			Confidence: res.Confidence,
		}
		if i < len(res.Timestamps) {
			row.Timestamp = res.Timestamps[i]
		}
		if i < len(res.ConfidenceIntervals) {
			row.Lower = res.ConfidenceIntervals[i].Lower
			row.Upper = res.ConfidenceIntervals[i].Upper
		}
		rows = append(rows, row)
	}
	return rows
}

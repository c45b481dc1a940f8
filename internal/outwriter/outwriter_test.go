package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// sampleForecasts returns one successful and one failed forecast.
func sampleForecasts() []schema.ForecastResult {
	return []schema.ForecastResult{
		{
			Success:             true,
			Metric:              schema.ErrorCount,
			Method:              schema.EnsembleMethod,
			Periods:             2,
			Forecasts:           []float64{60, 70},
			ConfidenceIntervals: []schema.Interval{{Lower: 55, Upper: 65}, {Lower: 64.5, Upper: 75.5}},
			Timestamps:          []string{"2026-03-01T12:00:00Z", "2026-03-01T13:00:00Z"},
			Confidence:          0.9,
			Weights:             &schema.EnsembleWeights{Linear: 0.5, Exponential: 0.3, MovingAverage: 0.2},
		},
		{Metric: schema.Cost, Method: schema.EnsembleMethod, Failure: schema.InsufficientData, Message: "insufficient data"},
	}
}

// sampleBreaches returns one breach, one clear metric and one failure.
func sampleBreaches() []schema.BreachPrediction {
	hours := 3
	when := "2026-03-01T14:00:00Z"
	value := 51.0
	return []schema.BreachPrediction{
		{Success: true, Metric: schema.ErrorCount, Threshold: 50, HorizonHours: 24, WillBreach: true, HoursUntilBreach: &hours, BreachTime: &when, BreachValue: &value, MaxForecast: 80, Urgency: schema.CriticalUrgency},
		{Success: true, Metric: schema.Cost, Threshold: 100, HorizonHours: 24, MaxForecast: 40},
		{Metric: schema.APICalls, Threshold: 1000, HorizonHours: 24, Message: "insufficient data"},
	}
}

// sampleTrending returns two ranked artifacts.
func sampleTrending() []schema.TrendingScore {
	return []schema.TrendingScore{
		{ArtifactID: "a1", Name: "Prompt Pack", TotalScore: 85, Rank: 1, Trend: schema.RisingTrend, ComponentScores: schema.ComponentScores{Download: 1, Rating: 0.9, Comment: 0.5, Recency: 1}},
		{ArtifactID: "a2", TotalScore: 30, Rank: 2, Trend: schema.DecliningTrend},
	}
}

// outputCfg returns a config writing format to a file in a temp dir.
func outputCfg(t *testing.T, format schema.OutputMode, name string) *contract.Config {
	t.Helper()
	return &contract.Config{
		Output:         format,
		OutputFile:     filepath.Join(t.TempDir(), name),
		Precision:      1,
		Width:          120,
		CacheBackend:   schema.JSONBackend,
		HistoryBackend: schema.SQLiteBackend,
	}
}

// readOutput returns the file written by a Print function.
func readOutput(t *testing.T, cfg *contract.Config) string {
	t.Helper()
	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	return string(content)
}

func TestPrintForecastResults(t *testing.T) {
	ow := NewOutWriter()

	t.Run("text", func(t *testing.T) {
		cfg := outputCfg(t, schema.TextOut, "forecast.txt")
		require.NoError(t, ow.WriteForecasts(sampleForecasts(), cfg, time.Second))
		out := readOutput(t, cfg)
		assert.Contains(t, out, "error_count (ensemble) confidence 0.9")
		assert.Contains(t, out, "linear=0.5")
		assert.Contains(t, out, "2026-03-01T13:00:00Z")
		assert.Contains(t, out, "cost (ensemble): insufficient data")
		assert.Contains(t, out, "Forecast 1 of 2 metrics")
	})

	t.Run("json", func(t *testing.T) {
		cfg := outputCfg(t, schema.JSONOut, "forecast.json")
		require.NoError(t, ow.WriteForecasts(sampleForecasts(), cfg, time.Second))
		var decoded []schema.ForecastResult
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &decoded))
		require.Len(t, decoded, 2)
		assert.Equal(t, []float64{60, 70}, decoded[0].Forecasts)
		assert.Equal(t, schema.InsufficientData, decoded[1].Failure)
	})

	t.Run("yaml", func(t *testing.T) {
		cfg := outputCfg(t, schema.YAMLOut, "forecast.yaml")
		require.NoError(t, ow.WriteForecasts(sampleForecasts(), cfg, time.Second))
		var decoded []map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(readOutput(t, cfg)), &decoded))
		require.Len(t, decoded, 2)
		assert.Equal(t, "error_count", decoded[0]["metric"])
		assert.Equal(t, true, decoded[0]["success"])
	})

	t.Run("csv", func(t *testing.T) {
		cfg := outputCfg(t, schema.CSVOut, "forecast.csv")
		require.NoError(t, ow.WriteForecasts(sampleForecasts(), cfg, time.Second))
		records, err := csv.NewReader(strings.NewReader(readOutput(t, cfg))).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3, "header plus one row per step of the successful forecast")
		assert.Equal(t, []string{"error_count", "ensemble", "2", "2026-03-01T13:00:00Z", "70.0", "64.5", "75.5", "0.9"}, records[2])
	})

	t.Run("parquet", func(t *testing.T) {
		cfg := outputCfg(t, schema.ParquetOut, "forecast.parquet")
		require.NoError(t, ow.WriteForecasts(sampleForecasts(), cfg, time.Second))
		info, err := os.Stat(cfg.OutputFile)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	})

	t.Run("parquet without file", func(t *testing.T) {
		cfg := &contract.Config{Output: schema.ParquetOut}
		assert.Error(t, ow.WriteForecasts(sampleForecasts(), cfg, time.Second))
	})
}

func TestPrintBreachPredictions(t *testing.T) {
	ow := NewOutWriter()

	t.Run("text", func(t *testing.T) {
		cfg := outputCfg(t, schema.TextOut, "breach.txt")
		require.NoError(t, ow.WriteBreaches(sampleBreaches(), cfg, time.Second))
		out := readOutput(t, cfg)
		assert.Contains(t, out, "breach")
		assert.Contains(t, out, "2026-03-01T14:00:00Z")
		assert.Contains(t, out, "Critical")
		assert.Contains(t, out, "insufficient data")
		assert.Contains(t, out, "1 of 3 metrics predicted to breach")
	})

	t.Run("csv", func(t *testing.T) {
		cfg := outputCfg(t, schema.CSVOut, "breach.csv")
		require.NoError(t, ow.WriteBreaches(sampleBreaches(), cfg, time.Second))
		records, err := csv.NewReader(strings.NewReader(readOutput(t, cfg))).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 4)
		assert.Equal(t, []string{"error_count", "50.0", "24", "breach", "true", "3", "2026-03-01T14:00:00Z", "51.0", "80.0", "critical"}, records[1])
		assert.Equal(t, []string{"cost", "100.0", "24", "ok", "false", "", "", "", "40.0", ""}, records[2])
		assert.Equal(t, "insufficient data", records[3][3])
	})

	t.Run("json omits unset breach fields", func(t *testing.T) {
		cfg := outputCfg(t, schema.JSONOut, "breach.json")
		require.NoError(t, ow.WriteBreaches(sampleBreaches(), cfg, time.Second))
		var decoded []map[string]any
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &decoded))
		require.Len(t, decoded, 3)
		assert.Contains(t, decoded[0], "breach_time")
		assert.NotContains(t, decoded[1], "breach_time")
		assert.NotContains(t, decoded[1], "urgency")
	})

	t.Run("parquet unsupported", func(t *testing.T) {
		cfg := outputCfg(t, schema.ParquetOut, "breach.parquet")
		assert.Error(t, ow.WriteBreaches(sampleBreaches(), cfg, time.Second))
	})
}

func TestPrintInsights(t *testing.T) {
	ow := NewOutWriter()
	insights := []schema.Insight{
		{Type: schema.CapacityInsight, Metric: schema.ErrorCount, Priority: schema.CriticalSeverity, Message: "error_count will exceed 50 in 3 hours", Recommendation: "Investigate recent failures"},
		{Type: schema.TrendInsight, Metric: schema.Cost, Priority: schema.MediumSeverity, Message: "cost is trending up", Recommendation: "Review usage"},
	}

	t.Run("text", func(t *testing.T) {
		cfg := outputCfg(t, schema.TextOut, "insights.txt")
		require.NoError(t, ow.WriteInsights(insights, cfg))
		out := readOutput(t, cfg)
		assert.Contains(t, out, "capacity")
		assert.Contains(t, out, "cost is trending up")
	})

	t.Run("empty text", func(t *testing.T) {
		cfg := outputCfg(t, schema.TextOut, "insights.txt")
		require.NoError(t, ow.WriteInsights(nil, cfg))
		assert.Contains(t, readOutput(t, cfg), "No insights")
	})

	t.Run("csv", func(t *testing.T) {
		cfg := outputCfg(t, schema.CSVOut, "insights.csv")
		require.NoError(t, ow.WriteInsights(insights, cfg))
		records, err := csv.NewReader(strings.NewReader(readOutput(t, cfg))).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, []string{"critical", "Critical", "capacity", "error_count", "error_count will exceed 50 in 3 hours", "Investigate recent failures"}, records[1])
	})

	t.Run("yaml", func(t *testing.T) {
		cfg := outputCfg(t, schema.YAMLOut, "insights.yaml")
		require.NoError(t, ow.WriteInsights(insights, cfg))
		var decoded []schema.Insight
		require.NoError(t, yaml.Unmarshal([]byte(readOutput(t, cfg)), &decoded))
		assert.Equal(t, insights, decoded)
	})
}

func TestPrintRecommendations(t *testing.T) {
	ow := NewOutWriter()
	recs := []schema.Recommendation{
		{
			Type:        schema.OptimizationRec,
			Severity:    schema.HighSeverity,
			Title:       "Repeated reads of config.yaml",
			Description: "The same file was read 4 times",
			Suggestion:  "Cache the file contents",
			Example:     "Read once and reuse",
			Targets:     []string{"config.yaml"},
			Stats:       map[string]int{schema.StatTotalReads: 4, schema.StatUniqueFiles: 1},
		},
	}

	t.Run("text", func(t *testing.T) {
		cfg := outputCfg(t, schema.TextOut, "recs.txt")
		require.NoError(t, ow.WriteRecommendations(recs, cfg))
		out := readOutput(t, cfg)
		assert.Contains(t, out, "Repeated reads of config.yaml")
		assert.Contains(t, out, "💡 Cache the file contents")
		assert.Contains(t, out, "Example: Read once and reuse")
	})

	t.Run("csv", func(t *testing.T) {
		cfg := outputCfg(t, schema.CSVOut, "recs.csv")
		require.NoError(t, ow.WriteRecommendations(recs, cfg))
		records, err := csv.NewReader(strings.NewReader(readOutput(t, cfg))).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "1", records[1][0])
		assert.Equal(t, "High", records[1][2])
		assert.Equal(t, "total_reads=4|unique_files=1", records[1][9])
	})

	t.Run("json ranks", func(t *testing.T) {
		cfg := outputCfg(t, schema.JSONOut, "recs.json")
		require.NoError(t, ow.WriteRecommendations(recs, cfg))
		var decoded []map[string]any
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &decoded))
		require.Len(t, decoded, 1)
		assert.Equal(t, float64(1), decoded[0]["rank"])
		assert.Equal(t, "high", decoded[0]["severity"])
	})

	t.Run("empty", func(t *testing.T) {
		cfg := outputCfg(t, schema.TextOut, "recs.txt")
		require.NoError(t, ow.WriteRecommendations(nil, cfg))
		assert.Contains(t, readOutput(t, cfg), "No bottlenecks")
	})
}

func TestPrintTrending(t *testing.T) {
	ow := NewOutWriter()

	t.Run("text", func(t *testing.T) {
		cfg := outputCfg(t, schema.TextOut, "trending.txt")
		require.NoError(t, ow.WriteTrending(sampleTrending(), 7, cfg))
		out := readOutput(t, cfg)
		assert.Contains(t, out, "Prompt Pack")
		assert.Contains(t, out, "a2", "unnamed artifacts show their ID")
		assert.Contains(t, out, "↑ rising")
		assert.Contains(t, out, "Hot")
		assert.Contains(t, out, "Showing 2 trending artifacts over 7 days")
	})

	t.Run("empty text", func(t *testing.T) {
		cfg := outputCfg(t, schema.TextOut, "trending.txt")
		require.NoError(t, ow.WriteTrending(nil, 30, cfg))
		assert.Contains(t, readOutput(t, cfg), "No artifacts with activity in the last 30 days")
	})

	t.Run("json", func(t *testing.T) {
		cfg := outputCfg(t, schema.JSONOut, "trending.json")
		require.NoError(t, ow.WriteTrending(nil, 1, cfg))
		var decoded trendingOutput
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &decoded))
		assert.Equal(t, 1, decoded.WindowDays)
		assert.NotNil(t, decoded.Scores)
		assert.Empty(t, decoded.Scores)
	})

	t.Run("csv", func(t *testing.T) {
		cfg := outputCfg(t, schema.CSVOut, "trending.csv")
		require.NoError(t, ow.WriteTrending(sampleTrending(), 7, cfg))
		records, err := csv.NewReader(strings.NewReader(readOutput(t, cfg))).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, []string{"1", "a1", "Prompt Pack", "85.0", "Hot", "rising", "1.0", "0.9", "0.5", "1.0"}, records[1])
		assert.Equal(t, "Quiet", records[2][4])
	})
}

func TestPrintFeatured(t *testing.T) {
	ow := NewOutWriter()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []schema.FeaturedEntry{{ArtifactID: "a1", FeaturedBy: "alice", FeaturedAt: at}}

	t.Run("text", func(t *testing.T) {
		cfg := outputCfg(t, schema.TextOut, "featured.txt")
		require.NoError(t, ow.WriteFeatured(entries, cfg))
		out := readOutput(t, cfg)
		assert.Contains(t, out, "alice")
		assert.Contains(t, out, "2026-03-01T12:00:00Z")
	})

	t.Run("empty", func(t *testing.T) {
		cfg := outputCfg(t, schema.TextOut, "featured.txt")
		require.NoError(t, ow.WriteFeatured(nil, cfg))
		assert.Contains(t, readOutput(t, cfg), "The featured list is empty")
	})

	t.Run("csv", func(t *testing.T) {
		cfg := outputCfg(t, schema.CSVOut, "featured.csv")
		require.NoError(t, ow.WriteFeatured(entries, cfg))
		assert.Equal(t, "position,artifact_id,featured_by,featured_at\n1,a1,alice,2026-03-01T12:00:00Z\n", readOutput(t, cfg))
	})

	t.Run("json empty list", func(t *testing.T) {
		cfg := outputCfg(t, schema.JSONOut, "featured.json")
		require.NoError(t, ow.WriteFeatured(nil, cfg))
		assert.Equal(t, "[]\n", readOutput(t, cfg))
	})
}

func TestGetMaxTableTextWidth(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		fixed    int
		expected int
	}{
		{"narrow clamps to minimum", 50, 40, 20},
		{"wide clamps to maximum", 300, 40, 80},
		{"in between", 120, 40, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &contract.Config{Width: tt.width}
			assert.Equal(t, tt.expected, getMaxTableTextWidth(cfg, tt.fixed))
		})
	}
}

func TestBreachStatus(t *testing.T) {
	preds := sampleBreaches()
	assert.Equal(t, "breach", breachStatus(preds[0]))
	assert.Equal(t, "ok", breachStatus(preds[1]))
	assert.Equal(t, "insufficient data", breachStatus(preds[2]))
}

func TestFormatStats(t *testing.T) {
	assert.Equal(t, "", formatStats(nil))
	assert.Equal(t, "a=1|b=2", formatStats(map[string]int{"b": 2, "a": 1}))

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, writeCSVResultsForRecommendations(w, nil))
	w.Flush()
	assert.True(t, strings.HasPrefix(buf.String(), "rank,severity"))
}

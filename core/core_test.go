package core

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/internal/iocache"
	"github.com/huangsam/pulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testNow is the fixed time seen by executors in these tests.
var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// useFixedClock swaps the executor clock for the duration of a test.
func useFixedClock(t *testing.T) *contract.FixedClock {
	t.Helper()
	fixed := &contract.FixedClock{T: testNow}
	previous := clock
	clock = fixed
	t.Cleanup(func() { clock = previous })
	return fixed
}

// newTestConfig returns a config writing JSON results into a temp state dir.
func newTestConfig(t *testing.T) *contract.Config {
	t.Helper()
	dir := t.TempDir()
	return &contract.Config{
		Output:         schema.JSONOut,
		OutputFile:     filepath.Join(dir, "out.json"),
		Precision:      1,
		StateDir:       dir,
		CacheBackend:   schema.JSONBackend,
		HistoryBackend: schema.SQLiteBackend,
		Capacity:       contract.DefaultCapacity,
		SeasonLength:   contract.DefaultSeasonLength,
		TrendingTTL:    contract.DefaultTrendingTTL,
		User:           "alice",
		Admins:         []string{"alice"},
		Thresholds:     schema.DefaultThresholds(),
	}
}

// newTestManager returns a mock manager backed by real SQLite history and JSON trending stores.
func newTestManager(t *testing.T, cfg *contract.Config) (*iocache.MockCacheManager, contract.HistoryStore) {
	t.Helper()
	history, err := iocache.NewHistoryStore(schema.SQLiteBackend, filepath.Join(cfg.StateDir, "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = history.Close() })

	trending, err := iocache.NewFileCacheStore(cfg.StateDir, "pulse_trending_cache")
	require.NoError(t, err)
	t.Cleanup(func() { _ = trending.Close() })

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetHistoryStore").Return(history)
	mgr.On("GetTrendingStore").Return(trending)
	return mgr, history
}

// recordSeries stores values as hourly samples starting at midnight of testNow.
func recordSeries(t *testing.T, cfg *contract.Config, mgr contract.CacheManager, name schema.MetricName, values ...float64) {
	t.Helper()
	base := testNow.Truncate(24 * time.Hour)
	for i, v := range values {
		ts := base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339)
		require.NoError(t, ExecuteRecord(context.Background(), cfg, mgr, name, v, ts))
	}
}

// decodeOutput decodes the JSON written to cfg.OutputFile.
func decodeOutput(t *testing.T, cfg *contract.Config, v any) {
	t.Helper()
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestExecuteRecord(t *testing.T) {
	useFixedClock(t)
	ctx := context.Background()
	cfg := newTestConfig(t)
	mgr, history := newTestManager(t, cfg)

	t.Run("explicit and default timestamps", func(t *testing.T) {
		require.NoError(t, ExecuteRecord(ctx, cfg, mgr, schema.Cost, 1.5, "2026-03-01T10:00:00Z"))
		require.NoError(t, ExecuteRecord(ctx, cfg, mgr, schema.Cost, 2.5, "1 hour ago"))
		require.NoError(t, ExecuteRecord(ctx, cfg, mgr, schema.Cost, 3.5, ""))

		points, err := history.LoadSamples(schema.Cost, 0)
		require.NoError(t, err)
		require.Len(t, points, 3)
		assert.Equal(t, "2026-03-01T10:00:00Z", points[0].Timestamp)
		assert.Equal(t, "2026-03-01T11:00:00Z", points[1].Timestamp)
		assert.Equal(t, "2026-03-01T12:00:00Z", points[2].Timestamp)
	})

	t.Run("unknown metric", func(t *testing.T) {
		assert.Error(t, ExecuteRecord(ctx, cfg, mgr, "memory", 1, ""))
	})

	t.Run("invalid timestamp", func(t *testing.T) {
		assert.Error(t, ExecuteRecord(ctx, cfg, mgr, schema.Cost, 1, "yesterday-ish"))
	})

	t.Run("non-finite values", func(t *testing.T) {
		for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			err := ExecuteRecord(ctx, cfg, mgr, schema.APICalls, v, "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "finite")
		}
		points, err := history.LoadSamples(schema.APICalls, 0)
		require.NoError(t, err)
		assert.Empty(t, points)
	})

	t.Run("missing history store", func(t *testing.T) {
		empty := &iocache.MockCacheManager{}
		empty.On("GetHistoryStore").Return(nil)
		assert.Error(t, ExecuteRecord(ctx, cfg, empty, schema.Cost, 1, ""))
		empty.AssertExpectations(t)
	})
}

func TestExecuteForecast(t *testing.T) {
	useFixedClock(t)
	ctx := context.Background()
	cfg := newTestConfig(t)
	mgr, history := newTestManager(t, cfg)
	recordSeries(t, cfg, mgr, schema.ErrorCount, 10, 20, 30, 40, 50)

	require.NoError(t, ExecuteForecast(ctx, cfg, mgr, []schema.MetricName{schema.ErrorCount, schema.Cost}, 3, schema.LinearMethod))

	var results []schema.ForecastResult
	decodeOutput(t, cfg, &results)
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.InDeltaSlice(t, []float64{60, 70, 80}, results[0].Forecasts, 1e-9)
	assert.Equal(t, "2026-03-01T05:00:00Z", results[0].Timestamps[0])
	assert.False(t, results[1].Success)
	assert.Equal(t, schema.InsufficientData, results[1].Failure)

	t.Run("documents are saved under one run", func(t *testing.T) {
		var forecasts, models struct {
			RunID string          `json:"run_id"`
			Data  json.RawMessage `json:"data"`
		}
		for name, doc := range map[string]any{forecastsDocument: &forecasts, modelsDocument: &models} {
			data, err := os.ReadFile(filepath.Join(cfg.StateDir, name+".json"))
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(data, doc))
		}
		assert.NotEmpty(t, forecasts.RunID)
		assert.Equal(t, forecasts.RunID, models.RunID)

		var summaries map[schema.MetricName]schema.ModelSummary
		require.NoError(t, json.Unmarshal(models.Data, &summaries))
		require.Contains(t, summaries, schema.ErrorCount)
		assert.NotContains(t, summaries, schema.Cost)
		assert.Equal(t, 5, summaries[schema.ErrorCount].Samples)
		assert.InDelta(t, 1.0, summaries[schema.ErrorCount].RSquared, 1e-9)

		runs, err := history.GetAllForecastRuns()
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, forecasts.RunID, runs[0].RunID)
		assert.Equal(t, schema.ErrorCount, runs[0].Metric)
	})

	t.Run("invalid periods", func(t *testing.T) {
		assert.Error(t, ExecuteForecast(ctx, cfg, mgr, nil, 0, schema.EnsembleMethod))
	})

	t.Run("invalid method", func(t *testing.T) {
		err := ExecuteForecast(ctx, cfg, mgr, nil, 3, "prophet")
		assert.ErrorIs(t, err, contract.ErrInvalidMethod)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, ExecuteForecast(cancelled, cfg, mgr, nil, 3, ""), context.Canceled)
	})
}

func TestExecuteBreach(t *testing.T) {
	useFixedClock(t)
	ctx := context.Background()
	cfg := newTestConfig(t)
	mgr, _ := newTestManager(t, cfg)
	recordSeries(t, cfg, mgr, schema.ErrorCount, 10, 20, 30, 40, 50)

	t.Run("explicit threshold", func(t *testing.T) {
		threshold := 45.0
		require.NoError(t, ExecuteBreach(ctx, cfg, mgr, []schema.MetricName{schema.ErrorCount}, &threshold, 10))

		var preds []schema.BreachPrediction
		decodeOutput(t, cfg, &preds)
		require.Len(t, preds, 1)
		assert.True(t, preds[0].Success)
		assert.True(t, preds[0].WillBreach)
		require.NotNil(t, preds[0].HoursUntilBreach)
		assert.Equal(t, schema.CriticalUrgency, preds[0].Urgency)
		assert.FileExists(t, filepath.Join(cfg.StateDir, predictionsDocument+".json"))
	})

	t.Run("configured thresholds for every metric", func(t *testing.T) {
		require.NoError(t, ExecuteBreach(ctx, cfg, mgr, nil, nil, 24))

		var preds []schema.BreachPrediction
		decodeOutput(t, cfg, &preds)
		require.Len(t, preds, len(schema.AllMetricNames))
		for _, p := range preds {
			assert.Equal(t, cfg.Thresholds[p.Metric].Value, p.Threshold)
			assert.Equal(t, p.Metric == schema.ErrorCount, p.Success, "only error_count has enough data")
		}
	})

	t.Run("unknown metric", func(t *testing.T) {
		assert.Error(t, ExecuteBreach(ctx, cfg, mgr, []schema.MetricName{"memory"}, nil, 24))
	})

	t.Run("invalid horizon", func(t *testing.T) {
		assert.Error(t, ExecuteBreach(ctx, cfg, mgr, []schema.MetricName{schema.ErrorCount}, nil, 0))
	})
}

func TestExecuteInsights(t *testing.T) {
	useFixedClock(t)
	ctx := context.Background()

	t.Run("no data", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.Output = schema.TextOut
		mgr, _ := newTestManager(t, cfg)
		require.NoError(t, ExecuteInsights(ctx, cfg, mgr))
		data, err := os.ReadFile(cfg.OutputFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), "No insights")
	})

	t.Run("rising errors", func(t *testing.T) {
		cfg := newTestConfig(t)
		mgr, _ := newTestManager(t, cfg)
		recordSeries(t, cfg, mgr, schema.ErrorCount, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100)
		require.NoError(t, ExecuteInsights(ctx, cfg, mgr))

		var insights []schema.Insight
		decodeOutput(t, cfg, &insights)
		require.NotEmpty(t, insights)
		for _, in := range insights {
			assert.Equal(t, schema.ErrorCount, in.Metric)
		}
	})
}

func TestNewEngineFromHistory(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Capacity = 3
	mgr, history := newTestManager(t, cfg)
	recordSeries(t, cfg, mgr, schema.Cost, 1, 2, 3, 4, 5)

	engine, err := NewEngineFromHistory(cfg, history, nil)
	require.NoError(t, err)
	points := engine.Points(schema.Cost)
	require.Len(t, points, 3, "only the newest capacity samples are loaded")
	assert.Equal(t, 3.0, points[0].Value)
	assert.Equal(t, 5.0, points[2].Value)

	empty, err := NewEngineFromHistory(cfg, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Points(schema.Cost))
}

func TestExecuteAnalyze(t *testing.T) {
	ctx := context.Background()
	ops := []schema.OperationRecord{
		{Tool: "Read", Target: "main.go", DurationMs: 10},
		{Tool: "Read", Target: "main.go", DurationMs: 10},
		{Tool: "Read", Target: "main.go", DurationMs: 10},
	}

	t.Run("json input", func(t *testing.T) {
		cfg := newTestConfig(t)
		data, err := json.Marshal(ops)
		require.NoError(t, err)
		opsFile := filepath.Join(t.TempDir(), "ops.json")
		require.NoError(t, os.WriteFile(opsFile, data, 0o644))

		require.NoError(t, ExecuteAnalyze(ctx, cfg, opsFile))
		var recs []schema.RankedRecommendation
		decodeOutput(t, cfg, &recs)
		require.Len(t, recs, 1)
		assert.Equal(t, 1, recs[0].Rank)
		assert.Equal(t, 3, recs[0].Stats[schema.StatTotalReads])
		assert.Equal(t, 2000, recs[0].Stats[schema.StatWasteTokens])
	})

	t.Run("yaml input", func(t *testing.T) {
		cfg := newTestConfig(t)
		opsFile := filepath.Join(t.TempDir(), "ops.yaml")
		content := "- tool: Grep\n  target: \"**\"\n  duration_ms: 5\n"
		require.NoError(t, os.WriteFile(opsFile, []byte(content), 0o644))

		require.NoError(t, ExecuteAnalyze(ctx, cfg, opsFile))
		var recs []schema.RankedRecommendation
		decodeOutput(t, cfg, &recs)
		require.Len(t, recs, 1)
		assert.Equal(t, schema.LowSeverity, recs[0].Severity)
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := newTestConfig(t)
		assert.Error(t, ExecuteAnalyze(ctx, cfg, filepath.Join(t.TempDir(), "missing.json")))
		assert.Error(t, ExecuteAnalyze(ctx, cfg, ""))
	})
}

func TestExecuteTrending(t *testing.T) {
	fixed := useFixedClock(t)
	ctx := context.Background()
	cfg := newTestConfig(t)
	mgr, _ := newTestManager(t, cfg)

	artifactsFile := filepath.Join(t.TempDir(), "artifacts.yaml")
	content := "- artifact_id: a1\n  name: Prompt Pack\n  downloads: 500\n" +
		"- artifact_id: a2\n  name: Old Skill\n  created_at: 2025-01-01T00:00:00Z\n"
	require.NoError(t, os.WriteFile(artifactsFile, []byte(content), 0o644))
	require.NoError(t, ExecuteTrendingImport(ctx, cfg, mgr, artifactsFile))
	require.NoError(t, ExecuteTrendingRegister(ctx, cfg, mgr, schema.EngagementCounters{ArtifactID: "a3"}))

	t.Run("rank excludes inactive artifacts", func(t *testing.T) {
		require.NoError(t, ExecuteTrendingRank(ctx, cfg, mgr, 7, false, 0))
		var out struct {
			WindowDays int                    `json:"window_days"`
			Scores     []schema.TrendingScore `json:"scores"`
		}
		decodeOutput(t, cfg, &out)
		assert.Equal(t, 7, out.WindowDays)
		require.Len(t, out.Scores, 2)
		assert.Equal(t, "a1", out.Scores[0].ArtifactID)
		assert.Equal(t, 1, out.Scores[0].Rank)
	})

	t.Run("engagement refreshes the ranking", func(t *testing.T) {
		fixed.Advance(time.Minute)
		require.NoError(t, ExecuteTrendingDownload(ctx, cfg, mgr, "a2"))
		require.NoError(t, ExecuteTrendingRate(ctx, cfg, mgr, "a2", 5))
		require.NoError(t, ExecuteTrendingComment(ctx, cfg, mgr, "a2"))

		scores, err := RankArtifacts(cfg, mgr, nil, 7, false, 0)
		require.NoError(t, err)
		require.Len(t, scores, 3, "a2 is active again after engagement")

		top, err := RankArtifacts(cfg, mgr, nil, 7, false, 1)
		require.NoError(t, err)
		assert.Len(t, top, 1)
	})

	t.Run("engagement on unknown artifact", func(t *testing.T) {
		assert.ErrorIs(t, ExecuteTrendingDownload(ctx, cfg, mgr, "missing"), contract.ErrNotFound)
		assert.Error(t, ExecuteTrendingRate(ctx, cfg, mgr, "a1", 6))
	})

	t.Run("invalid window", func(t *testing.T) {
		assert.ErrorIs(t, ExecuteTrendingRank(ctx, cfg, mgr, 14, false, 0), contract.ErrInvalidWindow)
	})

	t.Run("featured list", func(t *testing.T) {
		require.NoError(t, ExecuteTrendingFeature(ctx, cfg, mgr, "a1"))
		require.NoError(t, ExecuteTrendingFeatured(ctx, cfg, mgr))
		var entries []schema.FeaturedEntry
		decodeOutput(t, cfg, &entries)
		require.Len(t, entries, 1)
		assert.Equal(t, "alice", entries[0].FeaturedBy)

		assert.ErrorIs(t, ExecuteTrendingUnfeature(ctx, cfg, mgr, "a3"), contract.ErrNotFound)
		require.NoError(t, ExecuteTrendingUnfeature(ctx, cfg, mgr, "a1"))

		guest := cfg.Clone()
		guest.User = "mallory"
		assert.ErrorIs(t, ExecuteTrendingFeature(ctx, guest, mgr, "a1"), contract.ErrPermissionDenied)
	})
}

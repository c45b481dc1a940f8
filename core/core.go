// Package core has core logic for forecasting, operation analysis and trending.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/internal/statefile"
	"github.com/huangsam/pulse/schema"
	"go.uber.org/zap"
)

// Names of the documents written under the state directory.
const (
	forecastsDocument   = "forecasts"
	predictionsDocument = "predictions"
	modelsDocument      = "models"
)

// NewEngineFromHistory creates an engine configured from cfg and primed with
// the newest stored samples of every metric. A nil history yields an empty engine.
func NewEngineFromHistory(cfg *contract.Config, history contract.HistoryStore, observer contract.Observer) (*Engine, error) {
	e := NewEngine(
		WithCapacity(cfg.Capacity),
		WithSeasonLength(cfg.SeasonLength),
		WithClock(clock),
		WithLogger(logger),
		WithObserver(observer),
		WithThresholds(cfg.Thresholds),
	)
	if history == nil {
		return e, nil
	}
	for _, name := range schema.AllMetricNames {
		points, err := history.LoadSamples(name, e.buffer.Capacity())
		if err != nil {
			return nil, fmt.Errorf("failed to load %s samples: %w", name, err)
		}
		loaded := e.Load(name, points)
		logger.Debug("loaded samples", zap.String("metric", string(name)), zap.Int("count", loaded))
	}
	return e, nil
}

// resolveMetrics returns the requested metrics, or every metric when none is given.
func resolveMetrics(metrics []schema.MetricName) []schema.MetricName {
	if len(metrics) == 0 {
		return schema.AllMetricNames
	}
	return metrics
}

// ExecuteRecord stores one sample in the history store.
// An empty timestamp means now; relative values like "2 hours ago" are accepted.
func ExecuteRecord(_ context.Context, cfg *contract.Config, mgr contract.CacheManager, name schema.MetricName, value float64, timestamp string) error {
	if !schema.IsValidMetric(name) {
		return fmt.Errorf("unknown metric '%s'", name)
	}
	if !schema.IsFiniteValue(value) {
		return fmt.Errorf("sample value for %s must be a finite number (received %g)", name, value)
	}
	history := mgr.GetHistoryStore()
	if history == nil {
		return fmt.Errorf("history store is not initialized")
	}

	now := clock.Now()
	ts, err := contract.ParseTimestamp(timestamp, now)
	if err != nil {
		return err
	}
	if ts == "" {
		ts = now.UTC().Format(contract.DateTimeFormat)
	}
	if err := history.AppendSample(name, schema.MetricPoint{Value: value, Timestamp: ts}); err != nil {
		return fmt.Errorf("failed to record %s: %w", name, err)
	}
	fmt.Printf("Recorded %s=%g at %s (history backend: %s)\n", name, value, ts, cfg.HistoryBackend)
	return nil
}

// ExecuteForecast forecasts the given metrics, persists the run and prints the results.
func ExecuteForecast(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, metrics []schema.MetricName, periods int, method schema.ForecastMethod) error {
	if periods <= 0 {
		return fmt.Errorf("periods must be positive (received %d)", periods)
	}
	start := time.Now()
	history := mgr.GetHistoryStore()
	engine, err := NewEngineFromHistory(cfg, history, nil)
	if err != nil {
		return err
	}

	results := make([]schema.ForecastResult, 0, len(resolveMetrics(metrics)))
	for _, name := range resolveMetrics(metrics) {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := engine.Forecast(name, periods, method)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	persistForecasts(cfg, history, results)
	return writer.WriteForecasts(results, cfg, time.Since(start))
}

// persistForecasts writes forecasts.json and models.json and records each
// successful forecast in the history store. Failures only warn.
func persistForecasts(cfg *contract.Config, history contract.HistoryStore, results []schema.ForecastResult) {
	runID := uuid.NewString()
	store := statefile.New(cfg.StateDir, clock)
	doc, err := store.SaveRun(forecastsDocument, runID, results)
	if err != nil {
		contract.LogWarn("Cannot save forecasts", err)
		return
	}

	models := map[schema.MetricName]schema.ModelSummary{}
	for _, res := range results {
		if !res.Success {
			continue
		}
		models[res.Metric] = schema.NewModelSummary(res)
		if history == nil {
			continue
		}
		if err := history.RecordForecastRun(runID, res, doc.LastUpdated); err != nil {
			contract.LogWarn("Cannot record forecast run", err)
		}
	}
	if _, err := store.SaveRun(modelsDocument, runID, models); err != nil {
		contract.LogWarn("Cannot save models", err)
	}
	logger.Debug("forecast run saved", zap.String("run_id", runID), zap.Int("models", len(models)))
}

// ExecuteBreach predicts threshold breaches of the given metrics within horizonHours.
// A nil threshold uses the configured threshold of each metric; an explicit
// threshold is checked going up.
func ExecuteBreach(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, metrics []schema.MetricName, threshold *float64, horizonHours int) error {
	start := time.Now()
	engine, err := NewEngineFromHistory(cfg, mgr.GetHistoryStore(), nil)
	if err != nil {
		return err
	}
	thresholds := engine.Thresholds()

	preds := make([]schema.BreachPrediction, 0, len(resolveMetrics(metrics)))
	for _, name := range resolveMetrics(metrics) {
		if err := ctx.Err(); err != nil {
			return err
		}
		th, ok := thresholds[name]
		if threshold != nil {
			th, ok = schema.MetricThreshold{Value: *threshold, Direction: schema.AboveDirection}, true
		}
		if !ok {
			return fmt.Errorf("unknown metric '%s'", name)
		}
		pred, err := engine.PredictBreachWithDirection(name, th, horizonHours)
		if err != nil {
			return err
		}
		preds = append(preds, pred)
	}

	store := statefile.New(cfg.StateDir, clock)
	if err := store.Save(predictionsDocument, preds); err != nil {
		contract.LogWarn("Cannot save predictions", err)
	}
	return writer.WriteBreaches(preds, cfg, time.Since(start))
}

// ExecuteInsights summarizes trends and capacity risks across every metric.
func ExecuteInsights(_ context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	engine, err := NewEngineFromHistory(cfg, mgr.GetHistoryStore(), nil)
	if err != nil {
		return err
	}
	return writer.WriteInsights(engine.Insights(), cfg)
}

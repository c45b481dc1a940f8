package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/pulse/core"
	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool argument defaults.
const (
	defaultPeriods      = 24
	defaultHorizonHours = 24
	defaultWindowDays   = 7
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg  *contract.Config
	mgr      contract.CacheManager
	engine   *core.SyncEngine
	observer contract.Observer
}

// history returns the history store, or nil when none is configured.
func (h *toolHandler) history() contract.HistoryStore {
	if h.mgr == nil {
		return nil
	}
	return h.mgr.GetHistoryStore()
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// requireMetric reads and validates the metric argument.
func requireMetric(request mcp.CallToolRequest) (schema.MetricName, error) {
	name, err := request.RequireString("metric")
	if err != nil {
		return "", err
	}
	metric := schema.MetricName(name)
	if !schema.IsValidMetric(metric) {
		return "", fmt.Errorf("unknown metric: %s", name)
	}
	return metric, nil
}

func (h *toolHandler) handleRecordMetric(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metric, err := requireMetric(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value, err := request.RequireFloat("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !schema.IsFiniteValue(value) {
		return mcp.NewToolResultError(fmt.Sprintf("value must be a finite number (received %g)", value)), nil
	}

	now := contract.SystemClock{}.Now()
	ts, err := contract.ParseTimestamp(request.GetString("timestamp", ""), now)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ts == "" {
		ts = now.UTC().Format(contract.DateTimeFormat)
	}

	if store := h.history(); store != nil {
		if err := store.AppendSample(metric, schema.MetricPoint{Value: value, Timestamp: ts}); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("cannot persist sample: %v", err)), nil
		}
	}
	h.engine.Record(metric, value, ts)

	return jsonResult(map[string]any{"recorded": true, "metric": metric, "value": value, "timestamp": ts})
}

func (h *toolHandler) handleGetForecast(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metric, err := requireMetric(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	periods := request.GetInt("periods", defaultPeriods)
	if periods <= 0 {
		return mcp.NewToolResultError(fmt.Sprintf("periods must be positive (received %d)", periods)), nil
	}
	method := schema.ForecastMethod(request.GetString("method", string(schema.EnsembleMethod)))

	res, err := h.engine.Forecast(metric, periods, method)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("forecast failed: %v", err)), nil
	}
	return jsonResult(res)
}

func (h *toolHandler) handleGetBreachPrediction(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metric, err := requireMetric(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	threshold, err := request.RequireFloat("threshold")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	horizon := request.GetInt("horizon_hours", defaultHorizonHours)

	pred, err := h.engine.PredictBreach(metric, threshold, horizon)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("breach prediction failed: %v", err)), nil
	}
	return jsonResult(pred)
}

func (h *toolHandler) handleGetInsights(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.engine.Insights())
}

func (h *toolHandler) handleAnalyzeOperations(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := request.GetArguments()["operations"]
	if !ok {
		return mcp.NewToolResultError("operations is required"), nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid operations: %v", err)), nil
	}
	var ops []schema.OperationRecord
	if err := json.Unmarshal(data, &ops); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid operations: %v", err)), nil
	}
	return jsonResult(schema.RankRecommendations(core.AnalyzeOperations(ops)))
}

func (h *toolHandler) handleRankArtifacts(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.mgr == nil {
		return mcp.NewToolResultError("trending stores are not initialized"), nil
	}
	cfg := h.baseCfg.Clone()
	window := request.GetInt("window_days", defaultWindowDays)
	limit := request.GetInt("limit", 0)
	force := request.GetBool("force", false)

	scores, err := core.RankArtifacts(cfg, h.mgr, h.observer, window, force, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ranking failed: %v", err)), nil
	}
	return jsonResult(map[string]any{"window_days": window, "scores": scores})
}

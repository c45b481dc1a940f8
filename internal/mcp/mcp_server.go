// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/huangsam/pulse/core"
	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/internal/telemetry"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// metricNames lists the metric names accepted by the tools.
var metricNames = []string{"health_score", "error_count", "context_usage", "response_time", "cost", "api_calls"}

// NewMCPServer initializes and configures the Pulse MCP server without starting it.
// All tools share engine. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, engine *core.SyncEngine, observer contract.Observer) *server.MCPServer {
	s := server.NewMCPServer(
		"Pulse Monitoring Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg:  baseCfg,
		mgr:      mgr,
		engine:   engine,
		observer: observer,
	}

	// --- 1. Tool: record_metric ---
	s.AddTool(mcp.NewTool("record_metric",
		mcp.WithDescription("Record one sample of an assistant metric."),
		mcp.WithString("metric", mcp.Description("Metric name."), mcp.Required(), mcp.Enum(metricNames...)),
		mcp.WithNumber("value", mcp.Description("Sample value."), mcp.Required()),
		mcp.WithString("timestamp", mcp.Description("RFC3339 time or 'N [units] ago'. Defaults to now.")),
	), h.handleRecordMetric)

	// --- 2. Tool: get_forecast ---
	s.AddTool(mcp.NewTool("get_forecast",
		mcp.WithDescription("Forecast the next hourly values of a metric."),
		mcp.WithString("metric", mcp.Description("Metric name."), mcp.Required(), mcp.Enum(metricNames...)),
		mcp.WithNumber("periods", mcp.Description("Number of hourly steps to forecast. Defaults to 24.")),
		mcp.WithString("method", mcp.Description("Forecast method. Defaults to 'ensemble'."),
			mcp.Enum("linear", "exponential", "moving_average", "seasonal", "ensemble")),
	), h.handleGetForecast)

	// --- 3. Tool: get_breach_prediction ---
	s.AddTool(mcp.NewTool("get_breach_prediction",
		mcp.WithDescription("Predict when a metric will reach a threshold within a horizon."),
		mcp.WithString("metric", mcp.Description("Metric name."), mcp.Required(), mcp.Enum(metricNames...)),
		mcp.WithNumber("threshold", mcp.Description("Threshold value checked going up."), mcp.Required()),
		mcp.WithNumber("horizon_hours", mcp.Description("Hours to look ahead. Defaults to 24.")),
	), h.handleGetBreachPrediction)

	// --- 4. Tool: get_insights ---
	s.AddTool(mcp.NewTool("get_insights",
		mcp.WithDescription("Summarize trends and capacity risks across all metrics."),
	), h.handleGetInsights)

	// --- 5. Tool: analyze_operations ---
	s.AddTool(mcp.NewTool("analyze_operations",
		mcp.WithDescription("Turn a window of tool operations, most recent first, into ranked recommendations."),
		mcp.WithArray("operations",
			mcp.Description("Operations with tool, target, duration_ms, size_bytes and optimization_applied."),
			mcp.Required(),
			mcp.Items(map[string]any{"type": "object"}),
		),
	), h.handleAnalyzeOperations)

	// --- 6. Tool: rank_artifacts ---
	s.AddTool(mcp.NewTool("rank_artifacts",
		mcp.WithDescription("Rank community artifacts by trending score."),
		mcp.WithNumber("window_days", mcp.Description("Activity window in days: 1, 7 or 30. Defaults to 7.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results.")),
		mcp.WithBoolean("force", mcp.Description("Bypass the cached ranking.")),
	), h.handleRankArtifacts)

	return s
}

// StartMCPServer primes a shared engine from history and serves MCP over stdio.
// When cfg.MetricsAddr is set, prometheus counters are served on /metrics.
func StartMCPServer(ctx context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	metrics := telemetry.New()
	engine, err := core.NewEngineFromHistory(baseCfg, mgr.GetHistoryStore(), metrics)
	if err != nil {
		return err
	}

	if baseCfg.MetricsAddr != "" {
		srv := &http.Server{Addr: baseCfg.MetricsAddr, Handler: metricsMux(metrics), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				contract.LogWarn("Metrics endpoint stopped", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	s := NewMCPServer(baseCfg, mgr, core.NewSyncEngine(engine), metrics)
	if err := server.ServeStdio(s); err != nil {
		return fmt.Errorf("mcp server failed: %w", err)
	}
	return nil
}

// metricsMux routes /metrics to the prometheus handler.
func metricsMux(metrics *telemetry.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

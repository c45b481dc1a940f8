package cmd

import (
	"strconv"

	"github.com/huangsam/pulse/core"
	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/internal/iocache"
	"github.com/huangsam/pulse/schema"
	"github.com/spf13/cobra"
)

// recordCmd appends one sample to the history of a metric.
var recordCmd = &cobra.Command{
	Use:   "record <metric> <value>",
	Short: "Record one sample of an assistant metric.",
	Long: `Append a sample to the persisted history of a metric.

Supported metrics:
  health_score, error_count, context_usage, response_time, cost, api_calls

The sample time defaults to now. Use --timestamp with an ISO8601 time or a
relative expression such as "2 hours ago".

Examples:
  # Record the current error count
  pulse record error_count 12

  # Backfill a cost sample from yesterday
  pulse record cost 4.25 --timestamp "1 day ago"`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, args []string) {
		value, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			contract.LogFatal("Invalid sample value", err)
		}
		timestamp, _ := cmd.Flags().GetString("timestamp")
		if err := core.ExecuteRecord(rootCtx, cfg, iocache.Manager, schema.MetricName(args[0]), value, timestamp); err != nil {
			contract.LogFatal("Cannot record sample", err)
		}
	},
}

// forecastCmd projects metrics forward in hourly steps.
var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast the next hourly values of assistant metrics.",
	Long: `Forecast metrics from their recorded history.

Methods:
  linear         - Least squares trend line
  exponential    - Exponential smoothing (alpha 0.3) extended by its last step
  moving_average - 5-sample moving average extended by its last change
  seasonal       - Exponential smoothing with a --season-length hour cycle
  ensemble       - Weighted blend of linear, exponential and moving_average (default)

Each forecast carries bounds of one recent standard deviation that widen by
10% per step. Results are saved to the state directory and every successful
run is appended to the history store.

Examples:
  # Forecast every metric for the next day
  pulse forecast

  # Linear forecast of cost for the next 6 hours
  pulse forecast --metric cost --periods 6 --method linear

  # Export forecasts for analysis
  pulse forecast --output parquet --output-file forecasts.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		metrics, _ := cmd.Flags().GetStringSlice("metric")
		periods, _ := cmd.Flags().GetInt("periods")
		method, _ := cmd.Flags().GetString("method")
		if err := core.ExecuteForecast(rootCtx, cfg, iocache.Manager, toMetricNames(metrics), periods, schema.ForecastMethod(method)); err != nil {
			contract.LogFatal("Cannot run forecast", err)
		}
	},
}

// breachCmd predicts threshold crossings.
var breachCmd = &cobra.Command{
	Use:   "breach",
	Short: "Predict when metrics will cross their thresholds.",
	Long: `Forecast each metric over a horizon and report the first hour that
crosses its threshold.

Without --threshold the configured per-metric thresholds are used, including
their direction (health_score breaches going down). An explicit --threshold is
checked going up for every selected metric.

Examples:
  # Check all metrics against configured thresholds
  pulse breach

  # Will context usage reach 90 within 12 hours?
  pulse breach --metric context_usage --threshold 90 --horizon 12`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		metrics, _ := cmd.Flags().GetStringSlice("metric")
		horizon, _ := cmd.Flags().GetInt("horizon")
		var threshold *float64
		if cmd.Flags().Changed("threshold") {
			v, _ := cmd.Flags().GetFloat64("threshold")
			threshold = &v
		}
		if err := core.ExecuteBreach(rootCtx, cfg, iocache.Manager, toMetricNames(metrics), threshold, horizon); err != nil {
			contract.LogFatal("Cannot predict breaches", err)
		}
	},
}

// insightsCmd summarizes trends and capacity risks.
var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Summarize trends and capacity risks across metrics.",
	Long: `Report a trend insight for each metric with a clear direction and a
warning for each metric forecast to breach its threshold within 7 days.

Thresholds come from the config file and can be overridden per run.

Examples:
  # Show insights with default thresholds
  pulse insights

  # Tighten the error and cost thresholds
  pulse insights --thresholds-override "error_count:20,cost:50"`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteInsights(rootCtx, cfg, iocache.Manager); err != nil {
			contract.LogFatal("Cannot compute insights", err)
		}
	},
}

// analyzeCmd turns a log of tool operations into recommendations.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <ops-file>",
	Short: "Recommend fixes for wasteful tool usage.",
	Long: `Read a window of tool operations, most recent first, and rank
recommendations for oversized reads, slow operations, repeated reads, shell
commands that have a dedicated tool, catch-all search patterns and a slowdown
between the earlier and recent halves of the window.

The file may be JSON or YAML. Use "-" to read JSON from stdin.

Examples:
  # Analyze a captured session
  pulse analyze ops.json

  # Pipe operations from another tool
  cat ops.json | pulse analyze - --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteAnalyze(rootCtx, cfg, args[0]); err != nil {
			contract.LogFatal("Cannot analyze operations", err)
		}
	},
}

// toMetricNames converts flag values to metric names.
func toMetricNames(values []string) []schema.MetricName {
	names := make([]schema.MetricName, 0, len(values))
	for _, v := range values {
		names = append(names, schema.MetricName(v))
	}
	return names
}

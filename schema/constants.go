package schema

import "math"

// Custom string types for type safety.
type (
	// MetricName identifies one of the tracked assistant metrics.
	MetricName string

	// ForecastMethod represents the forecasting method used.
	ForecastMethod string

	// FailureKind classifies why a forecast could not be produced.
	FailureKind string

	// Urgency represents how soon a capacity breach is expected.
	Urgency string

	// Severity represents the severity of a recommendation or insight.
	Severity string

	// RecommendationType represents the kind of recommendation.
	RecommendationType string

	// InsightType represents the kind of insight.
	InsightType string

	// Trend represents the presentation trend label of an artifact.
	Trend string

	// ThresholdDirection says whether a threshold is breached going up or going down.
	ThresholdDirection string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string
)

// All tracked metric names.
const (
	HealthScore  MetricName = "health_score"
	ErrorCount   MetricName = "error_count"
	ContextUsage MetricName = "context_usage"
	ResponseTime MetricName = "response_time"
	Cost         MetricName = "cost"
	APICalls     MetricName = "api_calls"
)

// All forecast methods supported.
const (
	LinearMethod        ForecastMethod = "linear"
	ExponentialMethod   ForecastMethod = "exponential"
	MovingAverageMethod ForecastMethod = "moving_average"
	SeasonalMethod      ForecastMethod = "seasonal"
	EnsembleMethod      ForecastMethod = "ensemble" // default
)

// All failure kinds.
const (
	InsufficientData FailureKind = "insufficient_data"
	UnknownMetric    FailureKind = "unknown_metric"
)

// All urgency levels.
const (
	CriticalUrgency Urgency = "critical"
	HighUrgency     Urgency = "high"
	MediumUrgency   Urgency = "medium"
)

// All severity levels, from most to least severe.
const (
	CriticalSeverity Severity = "critical"
	HighSeverity     Severity = "high"
	MediumSeverity   Severity = "medium"
	LowSeverity      Severity = "low"
)

// All recommendation types.
const (
	OptimizationRec RecommendationType = "optimization"
	WarningRec      RecommendationType = "warning"
	InfoRec         RecommendationType = "info"
)

// All insight types.
const (
	TrendInsight    InsightType = "trend"
	CapacityInsight InsightType = "capacity"
)

// All trend labels.
const (
	RisingTrend    Trend = "rising"
	StableTrend    Trend = "stable"
	DecliningTrend Trend = "declining"
)

// All threshold directions.
const (
	AboveDirection ThresholdDirection = "above" // default
	BelowDirection ThresholdDirection = "below"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	YAMLOut    OutputMode = "yaml"
	ParquetOut OutputMode = "parquet"
)

// All storage backends supported.
const (
	JSONBackend       DatabaseBackend = "json" // default for cache
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllMetricNames lists the tracked metrics in their fixed reporting order.
var AllMetricNames = []MetricName{HealthScore, ErrorCount, ContextUsage, ResponseTime, Cost, APICalls}

// ValidMetricNames lists all valid metric names.
var ValidMetricNames = map[MetricName]struct{}{
	HealthScore:  {},
	ErrorCount:   {},
	ContextUsage: {},
	ResponseTime: {},
	Cost:         {},
	APICalls:     {},
}

// ValidForecastMethods lists all valid forecast methods.
var ValidForecastMethods = map[ForecastMethod]struct{}{
	LinearMethod:        {},
	ExponentialMethod:   {},
	MovingAverageMethod: {},
	SeasonalMethod:      {},
	EnsembleMethod:      {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	YAMLOut:    {},
	ParquetOut: {},
}

// ValidCacheBackends lists all valid cache backends.
var ValidCacheBackends = map[DatabaseBackend]struct{}{
	JSONBackend:       {},
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidHistoryBackends lists all valid history backends.
var ValidHistoryBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidTrendingWindows lists the supported trending windows in days.
var ValidTrendingWindows = map[int]struct{}{
	1:  {},
	7:  {},
	30: {},
}

// IsValidMetric reports whether name is one of the tracked metrics.
func IsValidMetric(name MetricName) bool {
	_, ok := ValidMetricNames[name]
	return ok
}

// IsFiniteValue reports whether v can be stored as a sample. NaN and
// infinities cannot be forecast or encoded as JSON.
func IsFiniteValue(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SeverityRank orders severities for sorting. Lower ranks sort first.
func SeverityRank(s Severity) int {
	switch s {
	case CriticalSeverity:
		return 0
	case HighSeverity:
		return 1
	case MediumSeverity:
		return 2
	default: // LowSeverity and unknown
		return 3
	}
}

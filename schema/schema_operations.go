package schema

// OperationRecord is one tool operation performed by the assistant.
// A slice of records is treated as a window ordered most recent first.
type OperationRecord struct {
	Tool                string `json:"tool" yaml:"tool"`
	Target              string `json:"target" yaml:"target"`
	DurationMs          int    `json:"duration_ms" yaml:"duration_ms"`
	SizeBytes           *int64 `json:"size_bytes,omitempty" yaml:"size_bytes,omitempty"`
	OptimizationApplied bool   `json:"optimization_applied" yaml:"optimization_applied"`
}

// Size returns the recorded size in bytes, or 0 when unknown.
func (op OperationRecord) Size() int64 {
	if op.SizeBytes == nil {
		return 0
	}
	return *op.SizeBytes
}

// Recommendation is a human-readable suggestion produced by operation analysis.
type Recommendation struct {
	Type        RecommendationType `json:"type" yaml:"type"`
	Severity    Severity           `json:"severity" yaml:"severity"`
	Title       string             `json:"title" yaml:"title"`
	Description string             `json:"description" yaml:"description"`
	Suggestion  string             `json:"suggestion" yaml:"suggestion"`
	Example     string             `json:"example" yaml:"example"`
	Targets     []string           `json:"targets,omitempty" yaml:"targets,omitempty"`
	Stats       map[string]int     `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// Stat keys reported on recommendations.
const (
	StatTotalReads    = "total_reads"
	StatUniqueFiles   = "unique_files"
	StatWasteTokens   = "estimated_waste_tokens"
	StatSizeBytes     = "size_bytes"
	StatDurationMs    = "duration_ms"
	StatRecentMeanMs  = "recent_mean_ms"
	StatEarlierMeanMs = "earlier_mean_ms"
	StatChangePercent = "change_percent"
	StatOccurrences   = "occurrences"
)

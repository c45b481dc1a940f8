package core

import (
	"testing"

	"github.com/huangsam/pulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func size(n int64) *int64 { return &n }

func TestAnalyzeOperationsEmpty(t *testing.T) {
	recs := AnalyzeOperations(nil)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestAnalyzeOperationsSortOrder(t *testing.T) {
	ops := []schema.OperationRecord{
		{Tool: "Grep", Target: "*", DurationMs: 100},
		{Tool: "Read", Target: "big.log", DurationMs: 100, SizeBytes: size(2_000_000)},
		{Tool: "Read", Target: "a.go", DurationMs: 10},
		{Tool: "Read", Target: "a.go", DurationMs: 10},
		{Tool: "Read", Target: "a.go", DurationMs: 10},
		{Tool: "Bash", Target: "npm test", DurationMs: 6000},
	}
	original := append([]schema.OperationRecord(nil), ops...)

	recs := AnalyzeOperations(ops)
	require.Len(t, recs, 4)

	var severities []schema.Severity
	for _, r := range recs {
		severities = append(severities, r.Severity)
	}
	assert.Equal(t, []schema.Severity{
		schema.CriticalSeverity,
		schema.HighSeverity,
		schema.MediumSeverity,
		schema.LowSeverity,
	}, severities)
	assert.Equal(t, []string{"big.log"}, recs[0].Targets)
	assert.Equal(t, schema.WarningRec, recs[1].Type)
	assert.Equal(t, []string{"a.go"}, recs[2].Targets)
	assert.Equal(t, schema.OptimizationRec, recs[3].Type)
	assert.Equal(t, original, ops)
}

func TestAnalyzeRepetition(t *testing.T) {
	tests := []struct {
		name     string
		reads    map[string]int
		expected *schema.Recommendation
	}{
		{
			name:  "below threshold",
			reads: map[string]int{"A": 2, "B": 2},
		},
		{
			name:  "one repeated target",
			reads: map[string]int{"A": 3, "B": 1},
			expected: &schema.Recommendation{
				Severity: schema.MediumSeverity,
				Targets:  []string{"A"},
				Stats:    map[string]int{schema.StatTotalReads: 3, schema.StatUniqueFiles: 1, schema.StatWasteTokens: 2000},
			},
		},
		{
			name:  "high waste",
			reads: map[string]int{"A": 8, "B": 5},
			expected: &schema.Recommendation{
				Severity: schema.HighSeverity,
				Targets:  []string{"A", "B"},
				Stats:    map[string]int{schema.StatTotalReads: 13, schema.StatUniqueFiles: 2, schema.StatWasteTokens: 11000},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ops []schema.OperationRecord
			for target, n := range tt.reads {
				for range n {
					ops = append(ops, schema.OperationRecord{Tool: "Read", Target: target})
				}
			}
			recs := NewBottleneckAnalyzer().analyzeRepetition(ops)
			if tt.expected == nil {
				assert.Empty(t, recs)
				return
			}
			require.Len(t, recs, 1)
			assert.Equal(t, tt.expected.Severity, recs[0].Severity)
			assert.Equal(t, tt.expected.Targets, recs[0].Targets)
			assert.Equal(t, tt.expected.Stats, recs[0].Stats)
		})
	}
}

func TestAnalyzeFileOps(t *testing.T) {
	a := NewBottleneckAnalyzer()

	t.Run("optimized and small reads are ignored", func(t *testing.T) {
		recs := a.analyzeFileOps([]schema.OperationRecord{
			{Tool: "Read", Target: "big", SizeBytes: size(500_000), OptimizationApplied: true},
			{Tool: "Read", Target: "small", SizeBytes: size(100_000)},
			{Tool: "Read", Target: "unknown"},
		})
		assert.Empty(t, recs)
	})

	t.Run("one recommendation per large target", func(t *testing.T) {
		recs := a.analyzeFileOps([]schema.OperationRecord{
			{Tool: "read", Target: "big", SizeBytes: size(500_000)},
			{Tool: "Read", Target: "big", SizeBytes: size(500_000)},
		})
		require.Len(t, recs, 1)
		assert.Equal(t, schema.HighSeverity, recs[0].Severity)
		assert.Equal(t, 500_000, recs[0].Stats[schema.StatSizeBytes])
	})

	t.Run("slow operations grouped per tool", func(t *testing.T) {
		recs := a.analyzeFileOps([]schema.OperationRecord{
			{Tool: "WebFetch", Target: "https://example.com", DurationMs: 2500},
			{Tool: "WebFetch", Target: "https://example.org", DurationMs: 3000},
			{Tool: "Bash", Target: "make", DurationMs: 9000},
		})
		require.Len(t, recs, 1)
		assert.Equal(t, schema.WarningRec, recs[0].Type)
		assert.Equal(t, schema.MediumSeverity, recs[0].Severity)
		assert.Equal(t, 2, recs[0].Stats[schema.StatOccurrences])
		assert.Equal(t, 3000, recs[0].Stats[schema.StatDurationMs])
	})
}

func TestAnalyzeCommandMisuse(t *testing.T) {
	recs := NewBottleneckAnalyzer().analyzeCommandMisuse([]schema.OperationRecord{
		{Tool: "Bash", Target: "grep -rn foo ."},
		{Tool: "Bash", Target: "cat main.go"},
		{Tool: "Bash", Target: "grep bar x.go"},
		{Tool: "Bash", Target: "go build ./..."},
		{Tool: "Read", Target: "cat"},
	})
	require.Len(t, recs, 2)
	assert.Equal(t, "Use Grep instead of grep", recs[0].Title)
	assert.Equal(t, 2, recs[0].Stats[schema.StatOccurrences])
	assert.Equal(t, "Use Read instead of cat", recs[1].Title)
	for _, r := range recs {
		assert.Equal(t, schema.OptimizationRec, r.Type)
		assert.Equal(t, schema.MediumSeverity, r.Severity)
	}
}

func TestAnalyzeSearchHygiene(t *testing.T) {
	recs := NewBottleneckAnalyzer().analyzeSearchHygiene([]schema.OperationRecord{
		{Tool: "Glob", Target: "**/*"},
		{Tool: "Glob", Target: "internal/**/*.go"},
		{Tool: "Grep", Target: ".*"},
		{Tool: "Grep", Target: " . "},
	})
	require.Len(t, recs, 2)
	assert.Equal(t, schema.LowSeverity, recs[0].Severity)
	assert.Equal(t, 1, recs[0].Stats[schema.StatOccurrences])
	assert.Equal(t, 2, recs[1].Stats[schema.StatOccurrences])
}

func TestAnalyzeRegression(t *testing.T) {
	window := func(recent, earlier int) []schema.OperationRecord {
		var ops []schema.OperationRecord
		for range 10 {
			ops = append(ops, schema.OperationRecord{Tool: "Edit", DurationMs: recent})
		}
		for range 10 {
			ops = append(ops, schema.OperationRecord{Tool: "Edit", DurationMs: earlier})
		}
		return ops
	}
	a := NewBottleneckAnalyzer()

	tests := []struct {
		name     string
		ops      []schema.OperationRecord
		expected schema.RecommendationType
		severity schema.Severity
	}{
		{"slower", window(150, 100), schema.WarningRec, schema.HighSeverity},
		{"faster", window(50, 100), schema.InfoRec, schema.LowSeverity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := a.analyzeRegression(tt.ops)
			require.Len(t, recs, 1)
			assert.Equal(t, tt.expected, recs[0].Type)
			assert.Equal(t, tt.severity, recs[0].Severity)
		})
	}

	t.Run("within tolerance", func(t *testing.T) {
		assert.Empty(t, a.analyzeRegression(window(110, 100)))
	})
	t.Run("too few records", func(t *testing.T) {
		assert.Empty(t, a.analyzeRegression(window(150, 100)[:19]))
	})
	t.Run("zero earlier mean", func(t *testing.T) {
		assert.Empty(t, a.analyzeRegression(window(150, 0)))
	})
	t.Run("change percent stat", func(t *testing.T) {
		recs := a.analyzeRegression(window(150, 100))
		assert.Equal(t, 50, recs[0].Stats[schema.StatChangePercent])
	})
}

package core

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/huangsam/pulse/core/algo"
	"github.com/huangsam/pulse/schema"
)

// Tool names recognized by the analyzers. Matching is case-insensitive.
const (
	readTool = "read"
	bashTool = "bash"
	grepTool = "grep"
	globTool = "glob"
)

// estimatedTokensPerRead is the fixed per-read cost used for waste estimates.
const estimatedTokensPerRead = 1000

// BottleneckAnalyzer turns a window of operation records into recommendations.
// Thresholds are fixed heuristics, not learned values.
type BottleneckAnalyzer struct {
	LargeFileBytes        int64   // Read above this size without optimization is flagged
	CriticalFileBytes     int64   // Read above this size is critical
	SlowOperationMs       int     // non-command operations above this are slow
	SlowCommandMs         int     // shell commands above this are slow
	RepeatReadThreshold   int     // reads of one target at or above this are repetition
	HighWasteTokens       int     // estimated waste at or above this raises severity
	RegressionMinRecords  int     // fewer records skip regression detection
	RegressionChangeRatio float64 // relative change of mean duration that triggers a note
}

// NewBottleneckAnalyzer returns an analyzer with the default thresholds.
func NewBottleneckAnalyzer() *BottleneckAnalyzer {
	return &BottleneckAnalyzer{
		LargeFileBytes:        100_000,
		CriticalFileBytes:     1_000_000,
		SlowOperationMs:       2000,
		SlowCommandMs:         5000,
		RepeatReadThreshold:   3,
		HighWasteTokens:       10_000,
		RegressionMinRecords:  20,
		RegressionChangeRatio: 0.20,
	}
}

// AnalyzeOperations runs the default analyzer over ops.
func AnalyzeOperations(ops []schema.OperationRecord) []schema.Recommendation {
	return NewBottleneckAnalyzer().Analyze(ops)
}

// Analyze returns recommendations sorted by severity, critical first. Within a
// severity they keep the order the sub-analyzers emit them: file operations,
// repetition, command misuse, search hygiene, regression trend.
//
// ops must be ordered most recent first: index 0 is the newest record. The
// regression trend compares the first half of the slice (recent) with the
// second half (earlier) and cannot detect a reversed slice.
//
// ops is never modified.
func (a *BottleneckAnalyzer) Analyze(ops []schema.OperationRecord) []schema.Recommendation {
	recs := []schema.Recommendation{}
	recs = append(recs, a.analyzeFileOps(ops)...)
	recs = append(recs, a.analyzeRepetition(ops)...)
	recs = append(recs, a.analyzeCommandMisuse(ops)...)
	recs = append(recs, a.analyzeSearchHygiene(ops)...)
	recs = append(recs, a.analyzeRegression(ops)...)

	sort.SliceStable(recs, func(i, j int) bool {
		return schema.SeverityRank(recs[i].Severity) < schema.SeverityRank(recs[j].Severity)
	})
	return recs
}

func isTool(op schema.OperationRecord, name string) bool {
	return strings.EqualFold(strings.TrimSpace(op.Tool), name)
}

// toolGroup collects operations of one tool in order of first appearance.
type toolGroup struct {
	tool    string
	targets []string
	maxMs   int
	count   int
}

func groupByTool(ops []schema.OperationRecord, keep func(schema.OperationRecord) bool) []*toolGroup {
	var groups []*toolGroup
	index := map[string]*toolGroup{}
	for _, op := range ops {
		if !keep(op) {
			continue
		}
		key := strings.ToLower(op.Tool)
		g, ok := index[key]
		if !ok {
			g = &toolGroup{tool: op.Tool}
			index[key] = g
			groups = append(groups, g)
		}
		g.count++
		g.maxMs = max(g.maxMs, op.DurationMs)
		if op.Target != "" && !contains(g.targets, op.Target) {
			g.targets = append(g.targets, op.Target)
		}
	}
	return groups
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// analyzeFileOps flags large unpaginated reads and slow non-command operations.
func (a *BottleneckAnalyzer) analyzeFileOps(ops []schema.OperationRecord) []schema.Recommendation {
	var recs []schema.Recommendation
	seen := map[string]bool{}
	for _, op := range ops {
		if !isTool(op, readTool) || op.OptimizationApplied || op.Size() <= a.LargeFileBytes || seen[op.Target] {
			continue
		}
		seen[op.Target] = true
		severity := schema.HighSeverity
		if op.Size() > a.CriticalFileBytes {
			severity = schema.CriticalSeverity
		}
		recs = append(recs, schema.Recommendation{
			Type:        schema.OptimizationRec,
			Severity:    severity,
			Title:       "Large file read without pagination",
			Description: fmt.Sprintf("%s was read in full (%d KB)", op.Target, op.Size()/1024),
			Suggestion:  "Read only the needed range with offset and limit, or search for the relevant section first.",
			Example:     fmt.Sprintf("Read(file_path=%q, offset=0, limit=200)", op.Target),
			Targets:     []string{op.Target},
			Stats:       map[string]int{schema.StatSizeBytes: int(op.Size())},
		})
	}

	slow := groupByTool(ops, func(op schema.OperationRecord) bool {
		return !isTool(op, bashTool) && op.DurationMs > a.SlowOperationMs
	})
	for _, g := range slow {
		recs = append(recs, schema.Recommendation{
			Type:        schema.WarningRec,
			Severity:    schema.MediumSeverity,
			Title:       fmt.Sprintf("Slow %s operations", g.tool),
			Description: fmt.Sprintf("%d %s operation(s) took longer than %dms (max %dms)", g.count, g.tool, a.SlowOperationMs, g.maxMs),
			Suggestion:  "Narrow the scope of the operation or cache its result.",
			Example:     fmt.Sprintf("%s on a specific path instead of the whole workspace", g.tool),
			Targets:     g.targets,
			Stats:       map[string]int{schema.StatOccurrences: g.count, schema.StatDurationMs: g.maxMs},
		})
	}
	return recs
}

// analyzeRepetition flags targets read repeatedly within the window.
func (a *BottleneckAnalyzer) analyzeRepetition(ops []schema.OperationRecord) []schema.Recommendation {
	counts := map[string]int{}
	for _, op := range ops {
		if isTool(op, readTool) && op.Target != "" {
			counts[op.Target]++
		}
	}

	repeated := map[string]int{}
	for target, n := range counts {
		if n >= a.RepeatReadThreshold {
			repeated[target] = n
		}
	}
	if len(repeated) == 0 {
		return nil
	}

	var total int
	for _, n := range repeated {
		total += n
	}
	unique := len(repeated)
	waste := (total - unique) * estimatedTokensPerRead
	severity := schema.MediumSeverity
	if waste >= a.HighWasteTokens {
		severity = schema.HighSeverity
	}
	targets := schema.SortedKeys(repeated)

	return []schema.Recommendation{{
		Type:        schema.OptimizationRec,
		Severity:    severity,
		Title:       "Repeated file reads",
		Description: fmt.Sprintf("%d file(s) were read %d times in total, wasting about %d tokens", unique, total, waste),
		Suggestion:  "Keep the relevant parts of these files in context instead of reading them again.",
		Example:     fmt.Sprintf("Read %s once and refer back to it", targets[0]),
		Targets:     targets,
		Stats: map[string]int{
			schema.StatTotalReads:  total,
			schema.StatUniqueFiles: unique,
			schema.StatWasteTokens: waste,
		},
	}}
}

// dedicatedTools maps shell commands to the tool that should replace them.
var dedicatedTools = map[string]string{
	"cat":  "Read",
	"head": "Read",
	"tail": "Read",
	"grep": "Grep",
	"rg":   "Grep",
	"find": "Glob",
	"ls":   "Glob",
}

// commandName returns the first word of a shell command.
func commandName(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// analyzeCommandMisuse flags shell commands that have a dedicated tool and slow shell commands.
func (a *BottleneckAnalyzer) analyzeCommandMisuse(ops []schema.OperationRecord) []schema.Recommendation {
	var recs []schema.Recommendation

	var order []string
	misuse := map[string][]string{}
	for _, op := range ops {
		if !isTool(op, bashTool) {
			continue
		}
		cmd := commandName(op.Target)
		if _, ok := dedicatedTools[cmd]; !ok {
			continue
		}
		if _, ok := misuse[cmd]; !ok {
			order = append(order, cmd)
		}
		misuse[cmd] = append(misuse[cmd], op.Target)
	}
	for _, cmd := range order {
		tool := dedicatedTools[cmd]
		recs = append(recs, schema.Recommendation{
			Type:        schema.OptimizationRec,
			Severity:    schema.MediumSeverity,
			Title:       fmt.Sprintf("Use %s instead of %s", tool, cmd),
			Description: fmt.Sprintf("%q was run through the shell %d time(s)", cmd, len(misuse[cmd])),
			Suggestion:  fmt.Sprintf("The %s tool is faster and its output is easier to page.", tool),
			Example:     fmt.Sprintf("%s instead of Bash(%q)", tool, misuse[cmd][0]),
			Targets:     misuse[cmd],
			Stats:       map[string]int{schema.StatOccurrences: len(misuse[cmd])},
		})
	}

	slow := groupByTool(ops, func(op schema.OperationRecord) bool {
		return isTool(op, bashTool) && op.DurationMs > a.SlowCommandMs
	})
	for _, g := range slow {
		recs = append(recs, schema.Recommendation{
			Type:        schema.WarningRec,
			Severity:    schema.HighSeverity,
			Title:       "Slow shell commands",
			Description: fmt.Sprintf("%d shell command(s) took longer than %dms (max %dms)", g.count, a.SlowCommandMs, g.maxMs),
			Suggestion:  "Run long commands in the background or limit their scope.",
			Example:     "go test ./internal/... instead of go test ./...",
			Targets:     g.targets,
			Stats:       map[string]int{schema.StatOccurrences: g.count, schema.StatDurationMs: g.maxMs},
		})
	}
	return recs
}

// catchAllPatterns match everything and defeat the purpose of a search.
var catchAllPatterns = map[string]struct{}{
	"*":    {},
	"**":   {},
	"**/*": {},
	".*":   {},
	".":    {},
}

// analyzeSearchHygiene flags searches with catch-all patterns.
func (a *BottleneckAnalyzer) analyzeSearchHygiene(ops []schema.OperationRecord) []schema.Recommendation {
	var recs []schema.Recommendation
	broad := groupByTool(ops, func(op schema.OperationRecord) bool {
		if !isTool(op, grepTool) && !isTool(op, globTool) {
			return false
		}
		_, ok := catchAllPatterns[strings.TrimSpace(op.Target)]
		return ok
	})
	for _, g := range broad {
		recs = append(recs, schema.Recommendation{
			Type:        schema.OptimizationRec,
			Severity:    schema.LowSeverity,
			Title:       fmt.Sprintf("Overly broad %s pattern", g.tool),
			Description: fmt.Sprintf("%s was called %d time(s) with a catch-all pattern", g.tool, g.count),
			Suggestion:  "Use a specific pattern or restrict the search path.",
			Example:     fmt.Sprintf("%s(pattern=%q)", g.tool, "internal/**/*.go"),
			Targets:     g.targets,
			Stats:       map[string]int{schema.StatOccurrences: g.count},
		})
	}
	return recs
}

// analyzeRegression compares the mean duration of the recent half (the first
// half of ops) with the earlier half.
func (a *BottleneckAnalyzer) analyzeRegression(ops []schema.OperationRecord) []schema.Recommendation {
	if len(ops) < a.RegressionMinRecords {
		return nil
	}
	mid := len(ops) / 2
	recent := make([]float64, 0, mid)
	earlier := make([]float64, 0, len(ops)-mid)
	for i, op := range ops {
		if i < mid {
			recent = append(recent, float64(op.DurationMs))
		} else {
			earlier = append(earlier, float64(op.DurationMs))
		}
	}

	recentMean, earlierMean := algo.Mean(recent), algo.Mean(earlier)
	if earlierMean <= 0 {
		return nil
	}
	change := (recentMean - earlierMean) / earlierMean
	stats := map[string]int{
		schema.StatRecentMeanMs:  int(math.Round(recentMean)),
		schema.StatEarlierMeanMs: int(math.Round(earlierMean)),
		schema.StatChangePercent: int(math.Round(change * 100)),
	}

	switch {
	case change > a.RegressionChangeRatio:
		return []schema.Recommendation{{
			Type:        schema.WarningRec,
			Severity:    schema.HighSeverity,
			Title:       "Performance regression",
			Description: fmt.Sprintf("Recent operations are %.0f%% slower (%.0fms vs %.0fms)", change*100, recentMean, earlierMean),
			Suggestion:  "Look for new slow commands or larger reads in the recent operations.",
			Example:     "pulse analyze --input ops.json --output json",
			Stats:       stats,
		}}
	case change < -a.RegressionChangeRatio:
		return []schema.Recommendation{{
			Type:        schema.InfoRec,
			Severity:    schema.LowSeverity,
			Title:       "Performance improved",
			Description: fmt.Sprintf("Recent operations are %.0f%% faster (%.0fms vs %.0fms)", -change*100, recentMean, earlierMean),
			Suggestion:  "Keep the recent changes.",
			Example:     "",
			Stats:       stats,
		}}
	}
	return nil
}

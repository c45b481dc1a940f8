// Package main provides a performance benchmarking tool for the Pulse CLI.
// It seeds a temporary state directory with metric samples and community artifacts,
// then times forecast, breach and trending commands, treating the first successful run
// as cold and averaging the rest as warm, and writes CSV output for performance analysis.
//
// Prerequisites:
// - pulse binary installed and available in PATH
//
// Usage: go run benchmark/main.go [samples-per-metric]
//
//	samples-per-metric: Number of hourly samples seeded for each metric (default 500)
package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/huangsam/pulse/internal/iocache"
	"github.com/huangsam/pulse/schema"
	"gopkg.in/yaml.v3"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Command     string
	Variant     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	StateDir    string
	HistoryDB   string
	Samples     int
	Artifacts   int
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Methods     []schema.ForecastMethod
}

func main() {
	samples := 500
	if len(os.Args) == 2 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil || n <= 0 {
			fmt.Printf("Usage: %s [samples-per-metric]\n", os.Args[0])
			os.Exit(1)
		}
		samples = n
	}

	stateDir, err := os.MkdirTemp("", "pulse_benchmark_")
	if err != nil {
		fmt.Printf("Failed to create state dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(stateDir) }()

	config := BenchmarkConfig{
		StateDir:    stateDir,
		HistoryDB:   filepath.Join(stateDir, "history.db"),
		Samples:     samples,
		Artifacts:   1000,
		Timeout:     2 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Methods: []schema.ForecastMethod{
			schema.LinearMethod, schema.ExponentialMethod, schema.MovingAverageMethod,
			schema.SeasonalMethod, schema.EnsembleMethod,
		},
	}

	if err := checkPrerequisites(); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seeding %d samples per metric and %d artifacts...\n", config.Samples, config.Artifacts)
	if err := seedHistory(config); err != nil {
		fmt.Printf("Failed to seed history: %v\n", err)
		os.Exit(1)
	}
	if err := seedArtifacts(config); err != nil {
		fmt.Printf("Failed to seed artifacts: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the pulse binary exists
func checkPrerequisites() error {
	if _, err := exec.LookPath("pulse"); err != nil {
		return fmt.Errorf("pulse binary not found in PATH")
	}
	return nil
}

// seedHistory writes a daily cycle with a slow upward trend for every metric.
func seedHistory(config BenchmarkConfig) error {
	store, err := iocache.NewHistoryStore(schema.SQLiteBackend, config.HistoryDB)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	start := time.Now().UTC().Add(-time.Duration(config.Samples) * time.Hour).Truncate(time.Hour)
	for _, name := range schema.AllMetricNames {
		for i := range config.Samples {
			value := 50 + 0.05*float64(i) + 10*math.Sin(2*math.Pi*float64(i)/24)
			point := schema.MetricPoint{Value: value, Timestamp: start.Add(time.Duration(i) * time.Hour).Format(time.RFC3339)}
			if err := store.AppendSample(name, point); err != nil {
				return err
			}
		}
	}
	return nil
}

// seedArtifacts imports artifacts with spread out engagement through the CLI.
func seedArtifacts(config BenchmarkConfig) error {
	now := time.Now().UTC()
	artifacts := make([]schema.EngagementCounters, 0, config.Artifacts)
	for i := range config.Artifacts {
		artifacts = append(artifacts, schema.EngagementCounters{
			ArtifactID:     fmt.Sprintf("artifact-%04d", i),
			Downloads:      (i * 37) % 5000,
			Rating:         1 + float64(i%5),
			RatingCount:    i % 40,
			CommentCount:   i % 25,
			CreatedAt:      now.Add(-time.Duration(7+i%60) * 24 * time.Hour),
			LastActivityAt: now.Add(-time.Duration(i%7) * 24 * time.Hour),
		})
	}
	data, err := yaml.Marshal(artifacts)
	if err != nil {
		return err
	}
	file := filepath.Join(config.StateDir, "artifacts.yaml")
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return err
	}
	output, err := exec.Command("pulse", append(baseArgs(config, "json"), "trending", "import", file)...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("import failed: %w\nOutput: %s", err, string(output))
	}
	return nil
}

// baseArgs points every command at the benchmark state.
func baseArgs(config BenchmarkConfig, cacheBackend string) []string {
	return []string{
		"--state-dir", config.StateDir,
		"--history-db-connect", config.HistoryDB,
		"--cache-backend", cacheBackend,
		"--output", "json",
		"--output-file", os.DevNull,
	}
}

// runBenchmarks executes all benchmark tests
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %v timeout, no-cache: %d runs, cache: %d runs\n",
		config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, method := range config.Methods {
		results = append(results, runBenchmarkSuite(config, "forecast", string(method),
			[]string{"forecast", "--periods", "24", "--method", string(method)}))
	}
	results = append(results, runBenchmarkSuite(config, "breach", "configured", []string{"breach", "--horizon", "48"}))
	for _, window := range []int{1, 7, 30} {
		results = append(results, runBenchmarkSuite(config, "trending", fmt.Sprintf("%dd", window),
			[]string{"trending", "rank", "--window", strconv.Itoa(window)}))
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, command, variant string, args []string) BenchmarkResult {
	fmt.Printf("Running %s (%s)\n", command, variant)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, args, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("json", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Command:     command,
		Variant:     variant,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a pulse command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, args []string, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	fullArgs := append(baseArgs(config, cacheBackend), args...)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("pulse", fullArgs...)

		done := make(chan error, 1)
		go func() {
			done <- cmd.Run()
		}()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("pulse_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"cmd", "variant", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Command, result.Variant, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "forecast", "Forecast:")
	printCommandSummary(results, "breach", "Breach Prediction:")
	printCommandSummary(results, "trending", "Trending Rank:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-16s: No-cache: %s, Cold: %s, Warm: %s\n", result.Variant, result.NoCacheTime, result.ColdTime, result.WarmTime)
		}
	}
}

package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/schema"
)

// Table names for sample history.
const (
	metricSamplesTable = "pulse_metric_samples"
	forecastRunsTable  = "pulse_forecast_runs"
)

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	clock   contract.Clock
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	switch backend {
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
	case schema.NoneBackend:
		// Return a no-op store for disabled history
		return &HistoryStoreImpl{backend: backend, clock: contract.SystemClock{}}, nil
	default:
		return nil, fmt.Errorf("unsupported history backend: %s", backend)
	}

	db, err := openDB(backend, connStr, contract.GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	// Create the table schemas
	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend, clock: contract.SystemClock{}}, nil
}

// createHistoryTables creates the sample history tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{metricSamplesTable, getCreateMetricSamplesQuery(backend)},
		{forecastRunsTable, getCreateForecastRunsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateMetricSamplesQuery returns the CREATE TABLE query for pulse_metric_samples.
func getCreateMetricSamplesQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(metricSamplesTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				sample_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				metric VARCHAR(64) NOT NULL,
				value DOUBLE NOT NULL,
				sampled_at DATETIME(6) NOT NULL,
				recorded_at DATETIME(6) NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				sample_id BIGSERIAL PRIMARY KEY,
				metric TEXT NOT NULL,
				value DOUBLE PRECISION NOT NULL,
				sampled_at TIMESTAMPTZ NOT NULL,
				recorded_at TIMESTAMPTZ NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				sample_id INTEGER PRIMARY KEY AUTOINCREMENT,
				metric TEXT NOT NULL,
				value REAL NOT NULL,
				sampled_at TEXT NOT NULL,
				recorded_at TEXT NOT NULL
			);
		`, quotedTableName)
	}
}

// getCreateForecastRunsQuery returns the CREATE TABLE query for pulse_forecast_runs.
func getCreateForecastRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(forecastRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) NOT NULL,
				metric VARCHAR(64) NOT NULL,
				method VARCHAR(32) NOT NULL,
				periods INT NOT NULL,
				confidence DOUBLE NOT NULL,
				r_squared DOUBLE NOT NULL,
				forecasts TEXT NOT NULL,
				generated_at DATETIME(6) NOT NULL,
				PRIMARY KEY (run_id, metric)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT NOT NULL,
				metric TEXT NOT NULL,
				method TEXT NOT NULL,
				periods INT NOT NULL,
				confidence DOUBLE PRECISION NOT NULL,
				r_squared DOUBLE PRECISION NOT NULL,
				forecasts TEXT NOT NULL,
				generated_at TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (run_id, metric)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT NOT NULL,
				metric TEXT NOT NULL,
				method TEXT NOT NULL,
				periods INTEGER NOT NULL,
				confidence REAL NOT NULL,
				r_squared REAL NOT NULL,
				forecasts TEXT NOT NULL,
				generated_at TEXT NOT NULL,
				PRIMARY KEY (run_id, metric)
			);
		`, quotedTableName)
	}
}

// disabled reports whether the store silently drops writes.
func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

// AppendSample stores one metric sample.
func (hs *HistoryStoreImpl) AppendSample(name schema.MetricName, point schema.MetricPoint) error {
	// Skip for NoneBackend
	if hs.disabled() {
		return nil
	}
	if !schema.IsFiniteValue(point.Value) {
		return fmt.Errorf("sample value for %s must be a finite number (received %g)", name, point.Value)
	}

	sampledAt, err := time.Parse(time.RFC3339, point.Timestamp)
	if err != nil {
		return fmt.Errorf("invalid sample timestamp %q: %w", point.Timestamp, err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (metric, value, sampled_at, recorded_at) VALUES (%s)`,
		quoteTableName(metricSamplesTable, hs.backend),
		strings.Join(placeholders(hs.backend, 4), ", "))
	_, err = hs.db.Exec(query, string(name), point.Value,
		formatTime(sampledAt, hs.backend), formatTime(hs.clock.Now(), hs.backend))
	if err != nil {
		return fmt.Errorf("failed to insert sample: %w", err)
	}
	return nil
}

// LoadSamples returns the newest limit samples of a metric, oldest first.
// A non-positive limit returns every sample.
func (hs *HistoryStoreImpl) LoadSamples(name schema.MetricName, limit int) ([]schema.MetricPoint, error) {
	points := []schema.MetricPoint{}
	if hs.disabled() {
		return points, nil
	}

	ph := placeholders(hs.backend, 2)
	query := fmt.Sprintf(`SELECT value, sampled_at FROM %s WHERE metric = %s ORDER BY sample_id DESC`,
		quoteTableName(metricSamplesTable, hs.backend), ph[0])
	args := []any{string(name)}
	if limit > 0 {
		query += " LIMIT " + ph[1]
		args = append(args, limit)
	}

	rows, err := hs.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var value float64
		var sampledAt time.Time
		if err := hs.scanWithTime(rows, &sampledAt, &value); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		points = append(points, schema.MetricPoint{Value: value, Timestamp: sampledAt.UTC().Format(time.RFC3339)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating samples: %w", err)
	}

	slices.Reverse(points)
	return points, nil
}

// RecordForecastRun stores the summary of a successful forecast.
func (hs *HistoryStoreImpl) RecordForecastRun(runID string, result schema.ForecastResult, generatedAt time.Time) error {
	// Skip for NoneBackend
	if hs.disabled() {
		return nil
	}

	forecasts, err := json.Marshal(result.Forecasts)
	if err != nil {
		return fmt.Errorf("failed to marshal forecasts: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, metric, method, periods, confidence, r_squared, forecasts, generated_at)
		VALUES (%s)
	`, quoteTableName(forecastRunsTable, hs.backend), strings.Join(placeholders(hs.backend, 8), ", "))
	_, err = hs.db.Exec(query, runID, string(result.Metric), string(result.Method), result.Periods,
		result.Confidence, result.RSquared, string(forecasts), formatTime(generatedAt, hs.backend))
	if err != nil {
		return fmt.Errorf("failed to insert forecast run: %w", err)
	}
	return nil
}

// Clear deletes all stored samples and runs.
func (hs *HistoryStoreImpl) Clear() error {
	if hs.disabled() {
		return nil
	}
	for _, table := range []string{metricSamplesTable, forecastRunsTable} {
		if _, err := hs.db.Exec(fmt.Sprintf("DELETE FROM %s", quoteTableName(table, hs.backend))); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:         string(hs.backend),
		Connected:       hs.db != nil,
		SamplesByMetric: make(map[schema.MetricName]int),
		TableSizes:      make(map[string]int64),
	}

	if hs.disabled() {
		return status, nil
	}

	samples := quoteTableName(metricSamplesTable, hs.backend)
	runs := quoteTableName(forecastRunsTable, hs.backend)

	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", samples)).Scan(&status.TotalSamples); err != nil {
		return status, fmt.Errorf("failed to get total samples: %w", err)
	}
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}
	status.TableSizes[metricSamplesTable] = int64(status.TotalSamples)
	status.TableSizes[forecastRunsTable] = int64(status.TotalRuns)

	if status.TotalSamples == 0 {
		return status, nil
	}

	// Get last and oldest sample info
	lastQuery := fmt.Sprintf("SELECT recorded_at FROM %s ORDER BY sample_id DESC LIMIT 1", samples)
	if err := hs.scanWithTime(hs.db.QueryRow(lastQuery), &status.LastSampleTime); err != nil {
		return status, fmt.Errorf("failed to get last sample time: %w", err)
	}
	oldestQuery := fmt.Sprintf("SELECT recorded_at FROM %s ORDER BY sample_id ASC LIMIT 1", samples)
	if err := hs.scanWithTime(hs.db.QueryRow(oldestQuery), &status.OldestSampleTime); err != nil {
		return status, fmt.Errorf("failed to get oldest sample time: %w", err)
	}

	rows, err := hs.db.Query(fmt.Sprintf("SELECT metric, COUNT(*) FROM %s GROUP BY metric", samples))
	if err != nil {
		return status, fmt.Errorf("failed to count samples by metric: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var metric string
		var count int
		if err := rows.Scan(&metric, &count); err != nil {
			return status, fmt.Errorf("failed to scan sample count: %w", err)
		}
		status.SamplesByMetric[schema.MetricName(metric)] = count
	}
	if err := rows.Err(); err != nil {
		return status, fmt.Errorf("error iterating sample counts: %w", err)
	}

	return status, nil
}

// GetAllSamples retrieves every stored sample in insertion order.
func (hs *HistoryStoreImpl) GetAllSamples() ([]schema.SampleRecord, error) {
	// Skip for NoneBackend
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT sample_id, metric, value, sampled_at, recorded_at FROM %s ORDER BY sample_id",
		quoteTableName(metricSamplesTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SampleRecord
	for rows.Next() {
		var record schema.SampleRecord
		var metric string

		switch hs.backend {
		case schema.SQLiteBackend:
			var sampledAtStr, recordedAtStr string
			if err := rows.Scan(&record.SampleID, &metric, &record.Value, &sampledAtStr, &recordedAtStr); err != nil {
				return nil, fmt.Errorf("failed to scan sample: %w", err)
			}
			if record.SampledAt, err = time.Parse(time.RFC3339Nano, sampledAtStr); err != nil {
				return nil, fmt.Errorf("failed to parse sampled_at: %w", err)
			}
			if record.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAtStr); err != nil {
				return nil, fmt.Errorf("failed to parse recorded_at: %w", err)
			}
		default: // MySQL and PostgreSQL store as native datetime
			if err := rows.Scan(&record.SampleID, &metric, &record.Value, &record.SampledAt, &record.RecordedAt); err != nil {
				return nil, fmt.Errorf("failed to scan sample: %w", err)
			}
		}

		record.Metric = schema.MetricName(metric)
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating samples: %w", err)
	}

	return results, nil
}

// GetAllForecastRuns retrieves every stored forecast run.
func (hs *HistoryStoreImpl) GetAllForecastRuns() ([]schema.ForecastRunRecord, error) {
	// Skip for NoneBackend
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, metric, method, periods, confidence, r_squared, forecasts, generated_at
		FROM %s ORDER BY generated_at, run_id, metric`, quoteTableName(forecastRunsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query forecast runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ForecastRunRecord
	for rows.Next() {
		var record schema.ForecastRunRecord
		var metric, method string

		switch hs.backend {
		case schema.SQLiteBackend:
			var generatedAtStr string
			if err := rows.Scan(&record.RunID, &metric, &method, &record.Periods, &record.Confidence,
				&record.RSquared, &record.Forecasts, &generatedAtStr); err != nil {
				return nil, fmt.Errorf("failed to scan forecast run: %w", err)
			}
			if record.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAtStr); err != nil {
				return nil, fmt.Errorf("failed to parse generated_at: %w", err)
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &metric, &method, &record.Periods, &record.Confidence,
				&record.RSquared, &record.Forecasts, &record.GeneratedAt); err != nil {
				return nil, fmt.Errorf("failed to scan forecast run: %w", err)
			}
		}

		record.Metric = schema.MetricName(metric)
		record.Method = schema.ForecastMethod(method)
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating forecast runs: %w", err)
	}

	return results, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanWithTime scans a time column followed by rest. SQLite stores times as
// RFC3339 text, the other backends as native datetimes.
func (hs *HistoryStoreImpl) scanWithTime(s scanner, t *time.Time, rest ...any) error {
	if hs.backend != schema.SQLiteBackend {
		return s.Scan(append(rest, t)...)
	}
	var str string
	if err := s.Scan(append(rest, &str)...); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339Nano, str)
	if err != nil {
		return fmt.Errorf("failed to parse time %q: %w", str, err)
	}
	*t = parsed
	return nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t.UTC()
	}
}

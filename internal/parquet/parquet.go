// Package parquet provides data structures and functions for exporting pulse
// metric history and forecasts to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/pulse/schema"
	"github.com/parquet-go/parquet-go"
)

// MetricSample represents one recorded metric sample.
// This struct maps to the pulse_metric_samples database table.
type MetricSample struct {
	// SampleID is the insertion order of the sample
	SampleID int64 `parquet:"sample_id,snappy"`

	// Metric is the tracked metric name
	Metric string `parquet:"metric,snappy"`

	// Value is the sampled value
	Value float64 `parquet:"value,snappy"`

	// SampledAt is the timestamp the sample describes
	SampledAt time.Time `parquet:"sampled_at,snappy"`

	// RecordedAt is when the sample was stored
	RecordedAt time.Time `parquet:"recorded_at,snappy"`
}

// ForecastRun represents the summary of one successful forecast.
// This struct maps to the pulse_forecast_runs database table.
type ForecastRun struct {
	// RunID groups the metrics forecast by a single invocation
	RunID string `parquet:"run_id,snappy"`

	// Metric is the forecast metric name
	Metric string `parquet:"metric,snappy"`

	// Method is the forecasting method used
	Method string `parquet:"method,snappy"`

	// Periods is the number of hourly steps forecast
	Periods int32 `parquet:"periods,snappy"`

	// Confidence is the forecast confidence in [0, 1]
	Confidence float64 `parquet:"confidence,snappy"`

	// RSquared is the linear fit quality (nullable, unset for methods without a fit)
	RSquared *float64 `parquet:"r_squared,optional,snappy"`

	// Forecasts contains the JSON-encoded forecast values
	Forecasts string `parquet:"forecasts,snappy"`

	// GeneratedAt is when the forecast was produced
	GeneratedAt time.Time `parquet:"generated_at,snappy"`
}

// ForecastPoint is one step of a forecast with its confidence band.
type ForecastPoint struct {
	Metric    string    `parquet:"metric,snappy"`
	Method    string    `parquet:"method,snappy"`
	Step      int32     `parquet:"step,snappy"`
	Timestamp time.Time `parquet:"timestamp,snappy"`
	Value     float64   `parquet:"value,snappy"`
	Lower     float64   `parquet:"lower,snappy"`
	Upper     float64   `parquet:"upper,snappy"`
}

// writeParquet writes rows of any struct type to outputPath.
func writeParquet[T any](data []T, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	// The schema is automatically derived from the struct tags
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		_ = file.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// WriteSamplesParquet writes a slice of MetricSample structs to a Parquet file.
func WriteSamplesParquet(data []MetricSample, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteForecastRunsParquet writes a slice of ForecastRun structs to a Parquet file.
func WriteForecastRunsParquet(data []ForecastRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteForecastPointsParquet writes a slice of ForecastPoint structs to a Parquet file.
func WriteForecastPointsParquet(data []ForecastPoint, outputPath string) error {
	return writeParquet(data, outputPath)
}

// MockFetchSamples generates sample MetricSample data for demonstration.
func MockFetchSamples() []MetricSample {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var out []MetricSample
	for i := range 6 {
		at := base.Add(time.Duration(i) * time.Hour)
		out = append(out,
			MetricSample{SampleID: int64(2*i + 1), Metric: string(schema.ErrorCount), Value: float64(10 + 5*i), SampledAt: at, RecordedAt: at},
			MetricSample{SampleID: int64(2*i + 2), Metric: string(schema.Cost), Value: 40 + 2.5*float64(i), SampledAt: at, RecordedAt: at},
		)
	}
	return out
}

// MockFetchForecastRuns generates sample ForecastRun data for demonstration.
func MockFetchForecastRuns() []ForecastRun {
	generated := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	r2 := 0.98
	return []ForecastRun{
		{
			RunID:       "3f1c2a9e-0000-4000-8000-000000000001",
			Metric:      string(schema.ErrorCount),
			Method:      string(schema.LinearMethod),
			Periods:     3,
			Confidence:  0.98,
			RSquared:    &r2,
			Forecasts:   "[40,45,50]",
			GeneratedAt: generated,
		},
		{
			RunID:       "3f1c2a9e-0000-4000-8000-000000000001",
			Metric:      string(schema.Cost),
			Method:      string(schema.MovingAverageMethod),
			Periods:     3,
			Confidence:  0.91,
			RSquared:    nil, // Moving average has no fit - nullable field
			Forecasts:   "[50,50,50]",
			GeneratedAt: generated,
		},
	}
}

// ConvertSampleRecords converts schema.SampleRecord to MetricSample for Parquet export.
func ConvertSampleRecords(records []schema.SampleRecord) []MetricSample {
	result := make([]MetricSample, len(records))
	for i, record := range records {
		result[i] = MetricSample{
			SampleID:   record.SampleID,
			Metric:     string(record.Metric),
			Value:      record.Value,
			SampledAt:  record.SampledAt,
			RecordedAt: record.RecordedAt,
		}
	}
	return result
}

// ConvertForecastRunRecords converts schema.ForecastRunRecord to ForecastRun for Parquet export.
func ConvertForecastRunRecords(records []schema.ForecastRunRecord) []ForecastRun {
	result := make([]ForecastRun, len(records))
	for i, record := range records {
		var r2 *float64
		if record.Method == schema.LinearMethod || record.Method == schema.EnsembleMethod {
			v := record.RSquared
			r2 = &v
		}
		result[i] = ForecastRun{
			RunID:       record.RunID,
			Metric:      string(record.Metric),
			Method:      string(record.Method),
			Periods:     record.Periods,
			Confidence:  record.Confidence,
			RSquared:    r2,
			Forecasts:   record.Forecasts,
			GeneratedAt: record.GeneratedAt,
		}
	}
	return result
}

// ConvertForecastResults flattens successful forecasts into one row per step.
// Unparseable step timestamps are written as the zero time.
func ConvertForecastResults(results []schema.ForecastResult) []ForecastPoint {
	var out []ForecastPoint
	for _, res := range results {
		if !res.Success {
			continue
		}
		for i, v := range res.Forecasts {
			p := ForecastPoint{
				Metric: string(res.Metric),
				Method: string(res.Method),
				Step:   int32(i + 1),
				Value:  v,
			}
			if i < len(res.Timestamps) {
				p.Timestamp, _ = time.Parse(time.RFC3339, res.Timestamps[i])
			}
			if i < len(res.ConfidenceIntervals) {
				p.Lower = res.ConfidenceIntervals[i].Lower
				p.Upper = res.ConfidenceIntervals[i].Upper
			}
			out = append(out, p)
		}
	}
	return out
}

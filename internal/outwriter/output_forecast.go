package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/internal/parquet"
	"github.com/huangsam/pulse/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintForecastResults outputs forecasts, dispatching based on the output format configured.
func PrintForecastResults(results []schema.ForecastResult, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, _ := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, results)
		}, "Wrote JSON forecasts")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, results)
		}, "Wrote YAML forecasts")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeCSVResultsForForecasts(csvWriter, results, fmtFloat)
		}, "Wrote CSV forecasts")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return errors.New("--output-file is required for parquet output")
		}
		points := parquet.ConvertForecastResults(results)
		if err := parquet.WriteForecastPointsParquet(points, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		return nil
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeForecastTable(w, results, cfg, fmtFloat, duration)
		}, "Wrote forecast table")
	}
}

// writeCSVResultsForForecasts writes one row per forecast step.
func writeCSVResultsForForecasts(w *csv.Writer, results []schema.ForecastResult, fmtFloat func(float64) string) error {
	header := []string{"metric", "method", "step", "timestamp", "forecast", "lower", "upper", "confidence"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, res := range results {
		if !res.Success {
			continue
		}
		for _, row := range schema.FlattenForecast(res) {
			rec := []string{
				string(row.Metric),
				string(row.Method),
				strconv.Itoa(row.Step),
				row.Timestamp,
				fmtFloat(row.Forecast),
				fmtFloat(row.Lower),
				fmtFloat(row.Upper),
				fmtFloat(row.Confidence),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeForecastTable prints one table per successful forecast.
func writeForecastTable(w io.Writer, results []schema.ForecastResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	var succeeded int
	for _, res := range results {
		if !res.Success {
			if _, err := fmt.Fprintf(w, "⚠️  %s (%s): %s\n", res.Metric, res.Method, res.Message); err != nil {
				return err
			}
			continue
		}
		succeeded++

		summary := fmt.Sprintf("📈 %s (%s) confidence %s", res.Metric, res.Method, fmtFloat(res.Confidence))
		if res.Weights != nil {
			summary += fmt.Sprintf(" weights linear=%s exponential=%s moving_average=%s",
				fmtFloat(res.Weights.Linear), fmtFloat(res.Weights.Exponential), fmtFloat(res.Weights.MovingAverage))
		}
		if _, err := fmt.Fprintln(w, summary); err != nil {
			return err
		}

		table := tablewriter.NewWriter(w)
		table.Header([]string{"Step", "Time", "Forecast", "Lower", "Upper"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})

		var data [][]string
		for _, row := range schema.FlattenForecast(res) {
			data = append(data, []string{
				strconv.Itoa(row.Step),
				row.Timestamp,
				fmtFloat(row.Forecast),
				fmtFloat(row.Lower),
				fmtFloat(row.Upper),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "Forecast %d of %d metrics in %v. History backend: %s\n", succeeded, len(results), duration, cfg.HistoryBackend); err != nil {
		return err
	}
	return nil
}

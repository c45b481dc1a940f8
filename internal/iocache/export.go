package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/internal/parquet"
)

// ExecuteHistoryExport exports the sample history to Parquet files named after outputFile.
func ExecuteHistoryExport(w io.Writer, store contract.HistoryStore, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not initialized")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}

	if status.TotalSamples == 0 && status.TotalRuns == 0 {
		return fmt.Errorf("no history data found to export: %w", contract.ErrNotFound)
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total samples: %d\n", status.TotalSamples)
	_, _ = fmt.Fprintf(w, "Total forecast runs: %d\n", status.TotalRuns)

	samples, err := store.GetAllSamples()
	if err != nil {
		return fmt.Errorf("failed to retrieve samples: %w", err)
	}

	runs, err := store.GetAllForecastRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve forecast runs: %w", err)
	}

	parquetSamples := parquet.ConvertSampleRecords(samples)
	parquetRuns := parquet.ConvertForecastRunRecords(runs)

	samplesFile := outputFile + ".samples.parquet"
	if err := parquet.WriteSamplesParquet(parquetSamples, samplesFile); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d samples to: %s\n", len(parquetSamples), samplesFile)

	runsFile := outputFile + ".forecast_runs.parquet"
	if err := parquet.WriteForecastRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write forecast runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d forecast runs to: %s\n", len(parquetRuns), runsFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be used with:")
	_, _ = fmt.Fprintln(w, "  - Apache Spark")
	_, _ = fmt.Fprintln(w, "  - Apache Arrow")
	_, _ = fmt.Fprintln(w, "  - Pandas (via pyarrow)")
	_, _ = fmt.Fprintln(w, "  - DuckDB")

	return nil
}

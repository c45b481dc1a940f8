package iocache

import (
	"fmt"
	"io"
	"slices"

	"github.com/huangsam/pulse/schema"
)

// statusTimeFormat is used for every timestamp in status output.
const statusTimeFormat = "2006-01-02 15:04:05"

// PrintCacheStatus prints cache status information.
func PrintCacheStatus(w io.Writer, status schema.CacheStatus) {
	_, _ = fmt.Fprintf(w, "Cache Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Entries: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		_, _ = fmt.Fprintf(w, "Last Entry: %s\n", status.LastEntryTime.Format(statusTimeFormat))
		_, _ = fmt.Fprintf(w, "Oldest Entry: %s\n", status.OldestEntryTime.Format(statusTimeFormat))
	}
	_, _ = fmt.Fprintf(w, "Table Size: %d bytes\n", status.TableSizeBytes)
}

// PrintHistoryStatus prints sample history status information.
func PrintHistoryStatus(w io.Writer, status schema.HistoryStatus) {
	_, _ = fmt.Fprintf(w, "History Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Samples: %d\n", status.TotalSamples)
	_, _ = fmt.Fprintf(w, "Total Forecast Runs: %d\n", status.TotalRuns)
	if status.TotalSamples > 0 {
		_, _ = fmt.Fprintf(w, "Last Sample: %s\n", status.LastSampleTime.Format(statusTimeFormat))
		_, _ = fmt.Fprintf(w, "Oldest Sample: %s\n", status.OldestSampleTime.Format(statusTimeFormat))
		_, _ = fmt.Fprintln(w, "Samples By Metric:")
		for _, name := range schema.AllMetricNames {
			if n, ok := status.SamplesByMetric[name]; ok {
				_, _ = fmt.Fprintf(w, "  %s: %d\n", name, n)
			}
		}
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	slices.Sort(tables)
	for _, table := range tables {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}

package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// maxTableTargets caps the targets listed in a recommendation table cell.
const maxTableTargets = 3

// PrintInsights outputs the insight summary, dispatching based on the output format configured.
func PrintInsights(insights []schema.Insight, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, insights)
		}, "Wrote JSON insights")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, insights)
		}, "Wrote YAML insights")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"priority", "label", "type", "metric", "message", "recommendation"}, func(cw *csv.Writer) error {
				for _, in := range insights {
					rec := []string{
						string(in.Priority),
						contract.GetPlainLabel(in.Priority),
						string(in.Type),
						string(in.Metric),
						in.Message,
						in.Recommendation,
					}
					if err := cw.Write(rec); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV insights")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only supported for forecasts")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeInsightsTable(w, insights, cfg)
		}, "Wrote insights table")
	}
}

// writeInsightsTable generates and writes the human-readable table.
func writeInsightsTable(w io.Writer, insights []schema.Insight, cfg *contract.Config) error {
	if len(insights) == 0 {
		_, err := fmt.Fprintln(w, "✅ No insights: every metric is stable and within its threshold")
		return err
	}

	textWidth := getMaxTableTextWidth(cfg, 40) / 2
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Priority", "Type", "Metric", "Message", "Recommendation"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, in := range insights {
		data = append(data, []string{
			contract.GetColorLabel(in.Priority),
			string(in.Type),
			string(in.Metric),
			contract.TruncateText(in.Message, textWidth),
			contract.TruncateText(in.Recommendation, textWidth),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// PrintRecommendations outputs operation recommendations, dispatching based on the output format configured.
func PrintRecommendations(recs []schema.Recommendation, cfg *contract.Config) error {
	ranked := schema.RankRecommendations(recs)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, ranked)
		}, "Wrote JSON recommendations")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, ranked)
		}, "Wrote YAML recommendations")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeCSVResultsForRecommendations(csvWriter, ranked)
		}, "Wrote CSV recommendations")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only supported for forecasts")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecommendationsText(w, ranked, cfg)
		}, "Wrote recommendations")
	}
}

// formatStats renders stats as "k=v" pairs in key order.
func formatStats(stats map[string]int) string {
	keys := slices.Sorted(maps.Keys(stats))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, stats[k]))
	}
	return strings.Join(parts, "|")
}

// writeCSVResultsForRecommendations writes one row per recommendation.
func writeCSVResultsForRecommendations(w *csv.Writer, recs []schema.RankedRecommendation) error {
	header := []string{"rank", "severity", "label", "type", "title", "description", "suggestion", "example", "targets", "stats"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range recs {
		rec := []string{
			strconv.Itoa(r.Rank),
			string(r.Severity),
			contract.GetPlainLabel(r.Severity),
			string(r.Type),
			r.Title,
			r.Description,
			r.Suggestion,
			r.Example,
			strings.Join(r.Targets, "|"),
			formatStats(r.Stats),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeRecommendationsText prints a summary table followed by the details of each item.
func writeRecommendationsText(w io.Writer, recs []schema.RankedRecommendation, cfg *contract.Config) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, "✅ No bottlenecks found in the analyzed operations")
		return err
	}

	textWidth := getMaxTableTextWidth(cfg, 35)
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Severity", "Type", "Title", "Targets"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, r := range recs {
		data = append(data, []string{
			strconv.Itoa(r.Rank),
			contract.GetColorLabel(r.Severity),
			string(r.Type),
			contract.TruncateText(r.Title, textWidth),
			contract.TruncateText(schema.FormatTargets(r.Targets, maxTableTargets), textWidth),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, r := range recs {
		if _, err := fmt.Fprintf(w, "\n%d. %s\n   %s\n   💡 %s\n", r.Rank, r.Title, r.Description, r.Suggestion); err != nil {
			return err
		}
		if r.Example != "" {
			if _, err := fmt.Fprintf(w, "   Example: %s\n", r.Example); err != nil {
				return err
			}
		}
	}
	return nil
}

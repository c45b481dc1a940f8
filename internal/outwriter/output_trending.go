package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// trendingOutput wraps scores with the window they were ranked over.
type trendingOutput struct {
	WindowDays int                    `json:"window_days" yaml:"window_days"`
	Scores     []schema.TrendingScore `json:"scores" yaml:"scores"`
}

// PrintTrending outputs trending scores, dispatching based on the output format configured.
func PrintTrending(scores []schema.TrendingScore, windowDays int, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	if scores == nil {
		scores = []schema.TrendingScore{}
	}
	out := trendingOutput{WindowDays: windowDays, Scores: scores}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, out)
		}, "Wrote JSON trending")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, out)
		}, "Wrote YAML trending")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeCSVResultsForTrending(csvWriter, scores, fmtFloat)
		}, "Wrote CSV trending")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only supported for forecasts")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTrendingTable(w, out, cfg, fmtFloat)
		}, "Wrote trending table")
	}
}

// writeCSVResultsForTrending writes one row per ranked artifact.
func writeCSVResultsForTrending(w *csv.Writer, scores []schema.TrendingScore, fmtFloat func(float64) string) error {
	header := []string{"rank", "artifact_id", "name", "score", "label", "trend", "download", "rating", "comment", "recency"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, s := range scores {
		rec := []string{
			strconv.Itoa(s.Rank),
			s.ArtifactID,
			s.Name,
			fmtFloat(s.TotalScore),
			schema.GetPlainLabel(s.TotalScore),
			string(s.Trend),
			fmtFloat(s.ComponentScores.Download),
			fmtFloat(s.ComponentScores.Rating),
			fmtFloat(s.ComponentScores.Comment),
			fmtFloat(s.ComponentScores.Recency),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// trendSymbol decorates a trend label for the table.
func trendSymbol(t schema.Trend) string {
	switch t {
	case schema.RisingTrend:
		return "↑ rising"
	case schema.DecliningTrend:
		return "↓ declining"
	default:
		return "→ stable"
	}
}

// writeTrendingTable generates and writes the human-readable table.
func writeTrendingTable(w io.Writer, out trendingOutput, cfg *contract.Config, fmtFloat func(float64) string) error {
	if len(out.Scores) == 0 {
		_, err := fmt.Fprintf(w, "No artifacts with activity in the last %d days\n", out.WindowDays)
		return err
	}

	nameWidth := getMaxTableTextWidth(cfg, 70)
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Artifact", "Score", "Label", "Trend", "Download", "Rating", "Comment", "Recency"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, s := range out.Scores {
		label := s.Name
		if label == "" {
			label = s.ArtifactID
		}
		data = append(data, []string{
			strconv.Itoa(s.Rank),
			contract.TruncateText(label, nameWidth),
			fmtFloat(s.TotalScore),
			schema.GetPlainLabel(s.TotalScore),
			trendSymbol(s.Trend),
			fmtFloat(s.ComponentScores.Download),
			fmtFloat(s.ComponentScores.Rating),
			fmtFloat(s.ComponentScores.Comment),
			fmtFloat(s.ComponentScores.Recency),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d trending artifacts over %d days. Cache backend: %s\n", len(out.Scores), out.WindowDays, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// PrintFeatured outputs the featured list, dispatching based on the output format configured.
func PrintFeatured(entries []schema.FeaturedEntry, cfg *contract.Config) error {
	if entries == nil {
		entries = []schema.FeaturedEntry{}
	}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, entries)
		}, "Wrote JSON featured list")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, entries)
		}, "Wrote YAML featured list")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"position", "artifact_id", "featured_by", "featured_at"}, func(cw *csv.Writer) error {
				for i, e := range entries {
					rec := []string{strconv.Itoa(i + 1), e.ArtifactID, e.FeaturedBy, e.FeaturedAt.Format(contract.DateTimeFormat)}
					if err := cw.Write(rec); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV featured list")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only supported for forecasts")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if len(entries) == 0 {
				_, err := fmt.Fprintln(w, "The featured list is empty")
				return err
			}
			table := tablewriter.NewWriter(w)
			table.Header([]string{"#", "Artifact", "Featured By", "Featured At"})
			var data [][]string
			for i, e := range entries {
				data = append(data, []string{strconv.Itoa(i + 1), e.ArtifactID, e.FeaturedBy, e.FeaturedAt.Format(contract.DateTimeFormat)})
			}
			if err := table.Bulk(data); err != nil {
				return err
			}
			return table.Render()
		}, "Wrote featured table")
	}
}

package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintBreachPredictions outputs breach predictions, dispatching based on the output format configured.
func PrintBreachPredictions(preds []schema.BreachPrediction, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, preds)
		}, "Wrote JSON predictions")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, preds)
		}, "Wrote YAML predictions")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeCSVResultsForBreaches(csvWriter, preds, fmtFloat)
		}, "Wrote CSV predictions")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only supported for forecasts")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBreachTable(w, preds, fmtFloat, duration)
		}, "Wrote prediction table")
	}
}

// breachStatus summarizes a prediction in a single cell.
func breachStatus(p schema.BreachPrediction) string {
	switch {
	case !p.Success:
		return p.Message
	case p.WillBreach:
		return "breach"
	default:
		return "ok"
	}
}

// writeCSVResultsForBreaches writes one row per prediction.
func writeCSVResultsForBreaches(w *csv.Writer, preds []schema.BreachPrediction, fmtFloat func(float64) string) error {
	header := []string{
		"metric",
		"threshold",
		"horizon_hours",
		"status",
		"will_breach",
		"hours_until_breach",
		"breach_time",
		"breach_value",
		"max_forecast",
		"urgency",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, p := range preds {
		rec := []string{
			string(p.Metric),
			fmtFloat(p.Threshold),
			strconv.Itoa(p.HorizonHours),
			breachStatus(p),
			strconv.FormatBool(p.WillBreach),
			optionalInt(p.HoursUntilBreach),
			optionalString(p.BreachTime),
			optionalFloat(p.BreachValue, fmtFloat),
			fmtFloat(p.MaxForecast),
			string(p.Urgency),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeBreachTable generates and writes the human-readable table.
func writeBreachTable(w io.Writer, preds []schema.BreachPrediction, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Threshold", "Status", "Hours", "Breach Time", "Max Forecast", "Urgency"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var breaches int
	var data [][]string
	for _, p := range preds {
		urgency := ""
		if p.WillBreach {
			breaches++
			urgency = contract.GetColorLabel(contract.UrgencySeverity(p.Urgency))
		}
		maxForecast := ""
		if p.Success {
			maxForecast = fmtFloat(p.MaxForecast)
		}
		data = append(data, []string{
			string(p.Metric),
			fmtFloat(p.Threshold),
			breachStatus(p),
			optionalInt(p.HoursUntilBreach),
			optionalString(p.BreachTime),
			maxForecast,
			urgency,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%d of %d metrics predicted to breach. Completed in %v\n", breaches, len(preds), duration); err != nil {
		return err
	}
	return nil
}

// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteForecasts prints forecast results using the configured output format.
func (ow *OutWriter) WriteForecasts(results []schema.ForecastResult, cfg *contract.Config, duration time.Duration) error {
	return PrintForecastResults(results, cfg, duration)
}

// WriteBreaches prints breach predictions using the configured output format.
func (ow *OutWriter) WriteBreaches(preds []schema.BreachPrediction, cfg *contract.Config, duration time.Duration) error {
	return PrintBreachPredictions(preds, cfg, duration)
}

// WriteInsights prints the insight summary using the configured output format.
func (ow *OutWriter) WriteInsights(insights []schema.Insight, cfg *contract.Config) error {
	return PrintInsights(insights, cfg)
}

// WriteRecommendations prints operation recommendations using the configured output format.
func (ow *OutWriter) WriteRecommendations(recs []schema.Recommendation, cfg *contract.Config) error {
	return PrintRecommendations(recs, cfg)
}

// WriteTrending prints trending scores using the configured output format.
func (ow *OutWriter) WriteTrending(scores []schema.TrendingScore, windowDays int, cfg *contract.Config) error {
	return PrintTrending(scores, windowDays, cfg)
}

// WriteFeatured prints the featured list using the configured output format.
func (ow *OutWriter) WriteFeatured(entries []schema.FeaturedEntry, cfg *contract.Config) error {
	return PrintFeatured(entries, cfg)
}

// getMaxTableTextWidth calculates the maximum width for free-text columns in table
// output, given the width already taken by the fixed columns.
func getMaxTableTextWidth(cfg *contract.Config, fixedWidth int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve generous space for table borders, separators, and padding
	available := termWidth - fixedWidth - 20
	if available < 20 {
		return 20
	}
	if available > 80 {
		return 80
	}
	return available
}

package cmd

import (
	"fmt"
	"testing"

	"github.com/huangsam/pulse/core/algo"
	"github.com/huangsam/pulse/schema"
	"github.com/stretchr/testify/assert"
)

func TestForecastHelpMatchesMethods(t *testing.T) {
	for method := range schema.ValidForecastMethods {
		assert.Contains(t, forecastCmd.Long, string(method)+" ", "method %s should be documented", method)
	}
	assert.Contains(t, forecastCmd.Long, fmt.Sprintf("alpha %.1f", algo.DefaultAlpha))
	assert.Contains(t, forecastCmd.Long, fmt.Sprintf("%d-sample moving average", algo.DefaultWindow))
	assert.Contains(t, forecastCmd.Long, "widen by\n10% per step")
}

func TestAnalyzeHelpListsAnalyzers(t *testing.T) {
	for _, finding := range []string{
		"oversized reads",
		"slow operations",
		"repeated reads",
		"dedicated tool",
		"catch-all search patterns",
		"slowdown",
	} {
		assert.Contains(t, analyzeCmd.Long, finding)
	}
}

// Package telemetry counts forecasts, fallbacks and trending cache lookups.
package telemetry

import (
	"net/http"
	"strconv"

	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pulse counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	ForecastsTotal    *prometheus.CounterVec
	FallbacksTotal    *prometheus.CounterVec
	TrendingCacheHits *prometheus.CounterVec
}

var _ contract.Observer = &Metrics{} // Compile-time check

// New registers the pulse counters on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		ForecastsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_forecasts_total",
				Help: "Total number of forecasts by method and outcome",
			},
			[]string{"method", "status"},
		),
		FallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_forecast_fallbacks_total",
				Help: "Total number of degenerate-input fallbacks by reason",
			},
			[]string{"reason"},
		),
		TrendingCacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_trending_cache_total",
				Help: "Total number of trending cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// Registry exposes the private registry for tests and custom handlers.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ForecastCompleted implements contract.Observer.
func (m *Metrics) ForecastCompleted(method schema.ForecastMethod, success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	m.ForecastsTotal.WithLabelValues(string(method), status).Inc()
}

// FallbackUsed implements contract.Observer.
func (m *Metrics) FallbackUsed(reason string) {
	m.FallbacksTotal.WithLabelValues(reason).Inc()
}

// TrendingCacheResult implements contract.Observer.
func (m *Metrics) TrendingCacheResult(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.TrendingCacheHits.WithLabelValues(result).Inc()
}

// Summary returns the current counter values keyed by metric and labels,
// e.g. "pulse_forecasts_total{method=linear,status=success}".
func (m *Metrics) Summary() (map[string]float64, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}
	out := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			key := mf.GetName() + "{"
			for i, lp := range metric.GetLabel() {
				if i > 0 {
					key += ","
				}
				key += lp.GetName() + "=" + lp.GetValue()
			}
			key += "}"
			out[key] = metric.GetCounter().GetValue()
		}
	}
	return out, nil
}

// FormatCount renders a counter value without a trailing fraction.
func FormatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

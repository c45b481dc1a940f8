package core

import (
	"fmt"
	"math"

	"github.com/huangsam/pulse/core/algo"
	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/schema"
)

// Trend shift cut-offs relative to the last observed value.
const (
	trendShiftRatio     = 0.10
	highTrendShiftRatio = 0.25
)

// metricAdvice holds the recommendation text for each metric and direction.
var metricAdvice = map[schema.MetricName]struct{ rising, falling, breach string }{
	schema.HealthScore: {
		rising:  "Health is improving; keep the current workflow.",
		falling: "Health is degrading; review recent errors and slow operations.",
		breach:  "Investigate failing tools before health drops below the threshold.",
	},
	schema.ErrorCount: {
		rising:  "Errors are increasing; inspect the latest failing operations.",
		falling: "Errors are decreasing; recent fixes appear effective.",
		breach:  "Address the most frequent error sources before the threshold is reached.",
	},
	schema.ContextUsage: {
		rising:  "Context usage is growing; prune large reads and summarize history.",
		falling: "Context usage is shrinking; there is room for larger tasks.",
		breach:  "Compact the conversation or split the task before the context fills up.",
	},
	schema.ResponseTime: {
		rising:  "Responses are slowing down; look for slow shell commands and large reads.",
		falling: "Responses are getting faster.",
		breach:  "Reduce expensive operations before response times exceed the threshold.",
	},
	schema.Cost: {
		rising:  "Spend is trending up; prefer smaller models for routine steps.",
		falling: "Spend is trending down.",
		breach:  "Review model selection and cache usage before the budget is exceeded.",
	},
	schema.APICalls: {
		rising:  "API call volume is rising; batch related requests.",
		falling: "API call volume is falling.",
		breach:  "Throttle or batch calls before hitting the API limit.",
	},
}

// Insights forecasts every tracked metric one day ahead and reports trend
// shifts above 10% plus thresholds forecast to be breached within a week.
// Metrics without enough data are skipped.
func (e *Engine) Insights() []schema.Insight {
	insights := []schema.Insight{}
	for _, name := range schema.AllMetricNames {
		res, err := e.Forecast(name, insightHorizon, schema.EnsembleMethod)
		if err != nil || !res.Success {
			continue
		}
		if insight, ok := e.trendInsight(name, res); ok {
			insights = append(insights, insight)
		}
		if insight, ok := e.capacityInsight(name); ok {
			insights = append(insights, insight)
		}
	}
	return insights
}

// trendInsight compares the mean forecast with the last observed value.
func (e *Engine) trendInsight(name schema.MetricName, res schema.ForecastResult) (schema.Insight, bool) {
	values := res.Historical.Values
	last := values[len(values)-1]
	if math.Abs(last) < 1e-9 {
		e.fallback(name, res.Method, algo.ReasonZeroMean)
		return schema.Insight{}, false
	}
	change := (algo.Mean(res.Forecasts) - last) / math.Abs(last)
	if math.Abs(change) <= trendShiftRatio {
		return schema.Insight{}, false
	}

	priority := schema.MediumSeverity
	if math.Abs(change) > highTrendShiftRatio {
		priority = schema.HighSeverity
	}
	direction, advice := "rise", metricAdvice[name].rising
	if change < 0 {
		direction, advice = "fall", metricAdvice[name].falling
	}
	return schema.Insight{
		Type:           schema.TrendInsight,
		Metric:         name,
		Priority:       priority,
		Message:        fmt.Sprintf("%s is forecast to %s %.1f%% over the next %dh", name, direction, math.Abs(change)*100, insightHorizon),
		Recommendation: advice,
	}, true
}

// capacityInsight reports a configured threshold breached within the week.
func (e *Engine) capacityInsight(name schema.MetricName) (schema.Insight, bool) {
	th, ok := e.thresholds[name]
	if !ok {
		return schema.Insight{}, false
	}
	pred, err := e.PredictBreachWithDirection(name, th, capacityHorizon)
	if err != nil || !pred.Success || !pred.WillBreach {
		return schema.Insight{}, false
	}
	return schema.Insight{
		Type:     schema.CapacityInsight,
		Metric:   name,
		Priority: contract.UrgencySeverity(pred.Urgency),
		Message: fmt.Sprintf("%s is forecast to go %s %g in %dh (%.2f)",
			name, th.Direction, th.Value, *pred.HoursUntilBreach, *pred.BreachValue),
		Recommendation: metricAdvice[name].breach,
	}, true
}

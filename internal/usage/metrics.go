package usage

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonathan/storyweaver/internal/types"
)

// metrics holds the Prometheus series of one ledger. They are not registered
// globally so independent ledgers never collide.
//
// Metrics:
//   - storyweaver_optimization_requests_total{model}
//   - storyweaver_optimization_tokens_total{model,kind}
//   - storyweaver_optimization_cost_usd_total{model}
//   - storyweaver_optimization_request_seconds{model}
type metrics struct {
	requests *prometheus.CounterVec
	tokens   *prometheus.CounterVec
	cost     *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newMetrics() *metrics {
	return &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storyweaver_optimization_requests_total",
				Help: "Total number of completed optimization calls",
			},
			[]string{"model"},
		),
		tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storyweaver_optimization_tokens_total",
				Help: "Estimated tokens consumed by optimization calls",
			},
			[]string{"model", "kind"}, // "prompt" or "completion"
		),
		cost: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storyweaver_optimization_cost_usd_total",
				Help: "Estimated USD cost of optimization calls",
			},
			[]string{"model"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storyweaver_optimization_request_seconds",
				Help:    "Duration of optimization calls in seconds",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 8), // 250ms to 32s
			},
			[]string{"model"},
		),
	}
}

func (m *metrics) observe(rec types.UsageRecord) {
	m.requests.WithLabelValues(rec.Model).Inc()
	m.tokens.WithLabelValues(rec.Model, "prompt").Add(float64(rec.PromptTokens))
	m.tokens.WithLabelValues(rec.Model, "completion").Add(float64(rec.CompletionTokens))
	m.cost.WithLabelValues(rec.Model).Add(rec.CostUSD)
	m.latency.WithLabelValues(rec.Model).Observe(rec.RequestTime.Seconds())
}

// Describe implements prometheus.Collector
func (m *metrics) Describe(ch chan<- *prometheus.Desc) {
	m.requests.Describe(ch)
	m.tokens.Describe(ch)
	m.cost.Describe(ch)
	m.latency.Describe(ch)
}

// Collect implements prometheus.Collector
func (m *metrics) Collect(ch chan<- prometheus.Metric) {
	m.requests.Collect(ch)
	m.tokens.Collect(ch)
	m.cost.Collect(ch)
	m.latency.Collect(ch)
}

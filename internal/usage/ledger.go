// Package usage accumulates token, cost and latency figures for remote
// optimization calls.
package usage

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonathan/storyweaver/internal/types"
)

// HistoryLimit is the number of records kept in the ledger window
const HistoryLimit = 100

// Pricer prices one call in USD from its token counts
type Pricer func(model string, promptTokens, completionTokens int) float64

// FlatRate returns a Pricer charging usdPer1K for every model
func FlatRate(usdPer1K float64) Pricer {
	return func(_ string, promptTokens, completionTokens int) float64 {
		return float64(promptTokens+completionTokens) / 1000 * usdPer1K
	}
}

// Ledger is a concurrency-safe usage accumulator. Totals run for the life of
// the ledger (or until Reset); history keeps the last HistoryLimit records.
type Ledger struct {
	pricer Pricer
	now    func() time.Time

	mu           sync.Mutex
	requestCount int
	totalTokens  int
	totalCost    float64
	history      []types.UsageRecord
	byModel      map[string]int

	metrics *metrics
}

// NewLedger creates an empty ledger. A nil pricer records zero cost.
func NewLedger(pricer Pricer) *Ledger {
	if pricer == nil {
		pricer = FlatRate(0)
	}
	return &Ledger{
		pricer:  pricer,
		now:     time.Now,
		byModel: make(map[string]int),
		metrics: newMetrics(),
	}
}

// Record appends one call and returns the stored record
func (l *Ledger) Record(model string, promptTokens, completionTokens int, requestTime time.Duration) types.UsageRecord {
	rec := types.UsageRecord{
		Timestamp:        l.now(),
		Model:            model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		CostUSD:          l.pricer(model, promptTokens, completionTokens),
		RequestTime:      requestTime,
	}

	l.mu.Lock()
	l.requestCount++
	l.totalTokens += rec.TotalTokens
	l.totalCost += rec.CostUSD
	l.byModel[model] += rec.TotalTokens
	l.history = append(l.history, rec)
	if over := len(l.history) - HistoryLimit; over > 0 {
		l.history = append(l.history[:0:0], l.history[over:]...)
	}
	l.mu.Unlock()

	l.metrics.observe(rec)
	return rec
}

// Stats returns a snapshot. RequestCount and the totals run since the last
// Reset, while the averages cover only the retained history. Once more than
// HistoryLimit calls are recorded, AverageCostPerRequest differs from
// TotalCost/RequestCount.
func (l *Ledger) Stats() types.UsageStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := types.UsageStats{
		RequestCount: l.requestCount,
		TotalTokens:  l.totalTokens,
		TotalCost:    l.totalCost,
		History:      append([]types.UsageRecord(nil), l.history...),
	}
	if n := len(l.history); n > 0 {
		var cost float64
		var elapsed time.Duration
		for _, rec := range l.history {
			cost += rec.CostUSD
			elapsed += rec.RequestTime
		}
		stats.AverageCostPerRequest = cost / float64(n)
		stats.AverageResponseTime = elapsed / time.Duration(n)
	}
	return stats
}

// ByModel returns running token totals per model
func (l *Ledger) ByModel() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]int, len(l.byModel))
	for m, n := range l.byModel {
		out[m] = n
	}
	return out
}

// Reset zeroes all counters and clears history. Prometheus counters are
// monotonic and keep their values.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.requestCount = 0
	l.totalTokens = 0
	l.totalCost = 0
	l.history = nil
	l.byModel = make(map[string]int)
}

// Collector exposes the ledger as Prometheus metrics for registration by the
// embedding service.
func (l *Ledger) Collector() prometheus.Collector {
	return l.metrics
}

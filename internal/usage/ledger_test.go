package usage

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_ThreeRecords(t *testing.T) {
	l := NewLedger(FlatRate(0.1))

	l.Record("gpt-4o-mini", 10, 0, 100*time.Millisecond)
	l.Record("gpt-4o-mini", 20, 0, 200*time.Millisecond)
	l.Record("gpt-4o-mini", 30, 0, 300*time.Millisecond)

	stats := l.Stats()
	assert.Equal(t, 3, stats.RequestCount)
	assert.Equal(t, 60, stats.TotalTokens)
	assert.InDelta(t, 0.006, stats.TotalCost, 1e-12)
	assert.InDelta(t, stats.TotalCost/3, stats.AverageCostPerRequest, 1e-12)
	assert.Equal(t, 200*time.Millisecond, stats.AverageResponseTime)
	require.Len(t, stats.History, 3)
	assert.Equal(t, 10, stats.History[0].TotalTokens)
	assert.Equal(t, 30, stats.History[2].TotalTokens)
}

func TestLedger_RecordFields(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l := NewLedger(func(model string, p, c int) float64 {
		if model == "kimi" {
			return float64(p+c) / 1000 * 0.25
		}
		return 0
	})
	l.now = func() time.Time { return fixed }

	rec := l.Record("kimi", 600, 400, time.Second)
	assert.Equal(t, fixed, rec.Timestamp)
	assert.Equal(t, "kimi", rec.Model)
	assert.Equal(t, 1000, rec.TotalTokens)
	assert.InDelta(t, 0.25, rec.CostUSD, 1e-12)
	assert.Equal(t, time.Second, rec.RequestTime)
}

func TestLedger_EvictsBeyondLimit(t *testing.T) {
	l := NewLedger(FlatRate(1))
	for i := 1; i <= HistoryLimit+5; i++ {
		l.Record("m", i, 0, time.Millisecond)
	}

	stats := l.Stats()
	require.Len(t, stats.History, HistoryLimit)
	assert.Equal(t, 6, stats.History[0].PromptTokens)
	assert.Equal(t, HistoryLimit+5, stats.History[HistoryLimit-1].PromptTokens)

	// totals keep running past the window
	assert.Equal(t, HistoryLimit+5, stats.RequestCount)
	assert.Equal(t, (HistoryLimit+5)*(HistoryLimit+6)/2, stats.TotalTokens)

	// averages only see the retained records 6..105
	assert.InDelta(t, 0.0555, stats.AverageCostPerRequest, 1e-12)
	assert.InDelta(t, 0.053, stats.TotalCost/float64(stats.RequestCount), 1e-12)
}

func TestLedger_StatsHistoryIsACopy(t *testing.T) {
	l := NewLedger(nil)
	l.Record("m", 1, 1, 0)

	stats := l.Stats()
	stats.History[0].Model = "changed"
	assert.Equal(t, "m", l.Stats().History[0].Model)
	assert.Zero(t, l.Stats().TotalCost)
}

func TestLedger_Reset(t *testing.T) {
	l := NewLedger(FlatRate(0.1))
	l.Record("a", 10, 5, time.Second)
	l.Reset()

	stats := l.Stats()
	assert.Zero(t, stats.RequestCount)
	assert.Zero(t, stats.TotalTokens)
	assert.Zero(t, stats.TotalCost)
	assert.Zero(t, stats.AverageCostPerRequest)
	assert.Zero(t, stats.AverageResponseTime)
	assert.Empty(t, stats.History)
	assert.Empty(t, l.ByModel())
}

func TestLedger_ByModel(t *testing.T) {
	l := NewLedger(nil)
	l.Record("a", 10, 5, 0)
	l.Record("b", 1, 1, 0)
	l.Record("a", 3, 2, 0)

	assert.Equal(t, map[string]int{"a": 20, "b": 2}, l.ByModel())
}

func TestLedger_ConcurrentRecords(t *testing.T) {
	l := NewLedger(FlatRate(0.1))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Record("m", 10, 10, time.Millisecond)
		}()
	}
	wg.Wait()

	stats := l.Stats()
	assert.Equal(t, 50, stats.RequestCount)
	assert.Equal(t, 1000, stats.TotalTokens)
	assert.InDelta(t, 0.1, stats.TotalCost, 1e-9)
}

func TestLedger_Collector(t *testing.T) {
	l := NewLedger(FlatRate(0.1))
	l.Record("deepseek", 100, 50, 2*time.Second)
	l.Record("deepseek", 10, 5, time.Second)

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(l.Collector()))

	// a second ledger registers cleanly in its own registry
	require.NoError(t, prometheus.NewRegistry().Register(NewLedger(nil).Collector()))

	assert.Equal(t, 2.0, testutil.ToFloat64(l.metrics.requests.WithLabelValues("deepseek")))
	assert.Equal(t, 110.0, testutil.ToFloat64(l.metrics.tokens.WithLabelValues("deepseek", "prompt")))
	assert.Equal(t, 55.0, testutil.ToFloat64(l.metrics.tokens.WithLabelValues("deepseek", "completion")))
	assert.InDelta(t, 0.0165, testutil.ToFloat64(l.metrics.cost.WithLabelValues("deepseek")), 1e-9)
	assert.Equal(t, 1, testutil.CollectAndCount(l.Collector(), "storyweaver_optimization_request_seconds"))
}

package monitor

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glimte/intercept-go/interceptors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleMetricsCollector(t *testing.T) {
	t.Run("NewSimpleMetricsCollector creates collector", func(t *testing.T) {
		collector := NewSimpleMetricsCollector()
		assert.NotNil(t, collector)

		summary := collector.Summary()
		assert.Empty(t, summary.EventCounts)
		assert.Empty(t, summary.ErrorCounts)
		assert.Empty(t, summary.InterceptStats)
	})

	t.Run("IncrementEventCount tracks events", func(t *testing.T) {
		collector := NewSimpleMetricsCollector()

		collector.IncrementEventCount("orders.created")
		collector.IncrementEventCount("orders.created")
		collector.IncrementEventCount("orders.deleted")

		summary := collector.Summary()
		assert.Equal(t, int64(2), summary.EventCounts["orders.created"])
		assert.Equal(t, int64(1), summary.EventCounts["orders.deleted"])
	})

	t.Run("RecordInterceptTime tracks timing", func(t *testing.T) {
		collector := NewSimpleMetricsCollector()

		collector.RecordInterceptTime("test", 100*time.Millisecond)
		collector.RecordInterceptTime("test", 200*time.Millisecond)
		collector.RecordInterceptTime("test", 150*time.Millisecond)

		stats := collector.Summary().InterceptStats["test"]
		assert.Equal(t, int64(3), stats.Count)
		assert.Equal(t, 150*time.Millisecond, stats.Avg)
		assert.Equal(t, 100*time.Millisecond, stats.Min)
		assert.Equal(t, 200*time.Millisecond, stats.Max)
		assert.Equal(t, 150*time.Millisecond, stats.P50)
	})

	t.Run("percentiles use the most recent samples", func(t *testing.T) {
		collector := NewSimpleMetricsCollector()

		for i := 1; i <= 150; i++ {
			collector.RecordInterceptTime("test", time.Duration(i)*time.Millisecond)
		}

		stats := collector.Summary().InterceptStats["test"]
		assert.Equal(t, int64(150), stats.Count)
		assert.Equal(t, time.Millisecond, stats.Min)
		assert.Equal(t, 150*time.Millisecond, stats.Max)
		assert.Equal(t, 100*time.Millisecond, stats.P50)
		assert.Equal(t, 149*time.Millisecond, stats.P99)
	})

	t.Run("IncrementErrorCount tracks errors by interceptor", func(t *testing.T) {
		collector := NewSimpleMetricsCollector()

		collector.IncrementErrorCount("test", "validator")
		collector.IncrementErrorCount("test", "validator")
		collector.IncrementErrorCount("test", "transform")
		collector.IncrementErrorCount("other", "validator")

		summary := collector.Summary()
		assert.Equal(t, int64(2), summary.ErrorCounts["test"]["validator"])
		assert.Equal(t, int64(1), summary.ErrorCounts["test"]["transform"])
		assert.Equal(t, int64(1), summary.ErrorCounts["other"]["validator"])
	})

	t.Run("Summary is a copy", func(t *testing.T) {
		collector := NewSimpleMetricsCollector()
		collector.IncrementErrorCount("test", "validator")

		summary := collector.Summary()
		summary.ErrorCounts["test"]["validator"] = 99

		assert.Equal(t, int64(1), collector.Summary().ErrorCounts["test"]["validator"])
	})

	t.Run("Reset clears everything", func(t *testing.T) {
		collector := NewSimpleMetricsCollector()
		collector.IncrementEventCount("test")
		collector.RecordInterceptTime("test", time.Millisecond)
		collector.IncrementErrorCount("test", "validator")

		collector.Reset()

		summary := collector.Summary()
		assert.Empty(t, summary.EventCounts)
		assert.Empty(t, summary.ErrorCounts)
		assert.Empty(t, summary.InterceptStats)
	})

	t.Run("is safe for concurrent use", func(t *testing.T) {
		collector := NewSimpleMetricsCollector()
		var wg sync.WaitGroup

		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					collector.IncrementEventCount("test")
					collector.RecordInterceptTime("test", time.Microsecond)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(1000), collector.Summary().EventCounts["test"])
	})
}

func TestSimpleMetricsCollectorWithEmitter(t *testing.T) {
	collector := NewSimpleMetricsCollector()
	e := interceptors.New()
	e.On("error", func(args ...any) {})

	reject := interceptors.NewInterceptorFunc("reject", func(event string, args []any, next interceptors.Next) {
		if len(args) == 0 {
			next(errors.New("empty"))
			return
		}
		next(nil, args...)
	})
	require.NoError(t, e.Intercept("test", interceptors.NewMetricsInterceptor(reject, collector)))

	e.Emit("test", 1)
	e.Emit("test")

	summary := collector.Summary()
	assert.Equal(t, int64(2), summary.EventCounts["test"])
	assert.Equal(t, int64(2), summary.InterceptStats["test"].Count)
	assert.Equal(t, int64(1), summary.ErrorCounts["test"]["reject"])
}

package monitor

import (
	"sort"
	"sync"
	"time"

	"github.com/glimte/intercept-go/interceptors"
)

const maxSamples = 100

var _ interceptors.MetricsCollector = (*SimpleMetricsCollector)(nil)

// SimpleMetricsCollector keeps interceptor metrics in memory
type SimpleMetricsCollector struct {
	mu sync.RWMutex

	// Intercepted events by event name
	eventCounters map[string]int64

	// Chain errors by event name and interceptor name
	errorCounters map[string]map[string]int64

	// Intercept-to-continuation times by event name
	interceptTimes map[string]*timeStats
}

type timeStats struct {
	count   int64
	total   time.Duration
	min     time.Duration
	max     time.Duration
	samples []time.Duration // last maxSamples, for percentiles
}

// NewSimpleMetricsCollector creates a new in-memory metrics collector
func NewSimpleMetricsCollector() *SimpleMetricsCollector {
	return &SimpleMetricsCollector{
		eventCounters:  make(map[string]int64),
		errorCounters:  make(map[string]map[string]int64),
		interceptTimes: make(map[string]*timeStats),
	}
}

// IncrementEventCount implements interceptors.MetricsCollector
func (c *SimpleMetricsCollector) IncrementEventCount(event string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eventCounters[event]++
}

// RecordInterceptTime implements interceptors.MetricsCollector
func (c *SimpleMetricsCollector) RecordInterceptTime(event string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, exists := c.interceptTimes[event]
	if !exists {
		stats = &timeStats{
			min:     duration,
			max:     duration,
			samples: make([]time.Duration, 0, maxSamples),
		}
		c.interceptTimes[event] = stats
	}

	stats.count++
	stats.total += duration
	if duration < stats.min {
		stats.min = duration
	}
	if duration > stats.max {
		stats.max = duration
	}

	if len(stats.samples) >= maxSamples {
		stats.samples = stats.samples[1:]
	}
	stats.samples = append(stats.samples, duration)
}

// IncrementErrorCount implements interceptors.MetricsCollector
func (c *SimpleMetricsCollector) IncrementErrorCount(event string, interceptor string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.errorCounters[event] == nil {
		c.errorCounters[event] = make(map[string]int64)
	}
	c.errorCounters[event][interceptor]++
}

// MetricsSummary is a snapshot of all collected metrics
type MetricsSummary struct {
	EventCounts    map[string]int64            `json:"event_counts"`
	ErrorCounts    map[string]map[string]int64 `json:"error_counts"`
	InterceptStats map[string]InterceptStats   `json:"intercept_stats"`
}

// InterceptStats summarizes the intercept times of one event
type InterceptStats struct {
	Count int64         `json:"count"`
	Avg   time.Duration `json:"avg"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	P50   time.Duration `json:"p50"`
	P95   time.Duration `json:"p95"`
	P99   time.Duration `json:"p99"`
}

// Summary returns a snapshot of all collected metrics
func (c *SimpleMetricsCollector) Summary() MetricsSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	summary := MetricsSummary{
		EventCounts:    make(map[string]int64, len(c.eventCounters)),
		ErrorCounts:    make(map[string]map[string]int64, len(c.errorCounters)),
		InterceptStats: make(map[string]InterceptStats, len(c.interceptTimes)),
	}

	for event, count := range c.eventCounters {
		summary.EventCounts[event] = count
	}

	for event, byInterceptor := range c.errorCounters {
		summary.ErrorCounts[event] = make(map[string]int64, len(byInterceptor))
		for name, count := range byInterceptor {
			summary.ErrorCounts[event][name] = count
		}
	}

	for event, stats := range c.interceptTimes {
		s := InterceptStats{
			Count: stats.count,
			Min:   stats.min,
			Max:   stats.max,
		}
		if stats.count > 0 {
			s.Avg = stats.total / time.Duration(stats.count)
		}

		sorted := make([]time.Duration, len(stats.samples))
		copy(sorted, stats.samples)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		s.P50 = percentile(sorted, 0.50)
		s.P95 = percentile(sorted, 0.95)
		s.P99 = percentile(sorted, 0.99)

		summary.InterceptStats[event] = s
	}

	return summary
}

// Reset clears all collected metrics
func (c *SimpleMetricsCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.eventCounters = make(map[string]int64)
	c.errorCounters = make(map[string]map[string]int64)
	c.interceptTimes = make(map[string]*timeStats)
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}

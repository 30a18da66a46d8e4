package monitor

import (
	"time"

	"github.com/glimte/intercept-go/interceptors"
	"github.com/prometheus/client_golang/prometheus"
)

var _ interceptors.MetricsCollector = (*PrometheusCollector)(nil)

// PrometheusCollector exports interceptor metrics to Prometheus
type PrometheusCollector struct {
	events    *prometheus.CounterVec
	errors    *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// PrometheusOption configures the PrometheusCollector
type PrometheusOption func(*prometheusConfig)

type prometheusConfig struct {
	namespace string
	buckets   []float64
}

// WithNamespace sets the metric namespace (default "intercept")
func WithNamespace(namespace string) PrometheusOption {
	return func(c *prometheusConfig) {
		c.namespace = namespace
	}
}

// WithBuckets sets the histogram buckets of the intercept duration
func WithBuckets(buckets []float64) PrometheusOption {
	return func(c *prometheusConfig) {
		c.buckets = buckets
	}
}

// NewPrometheusCollector creates the collector and registers its metrics
func NewPrometheusCollector(reg prometheus.Registerer, options ...PrometheusOption) (*PrometheusCollector, error) {
	cfg := prometheusConfig{
		namespace: "intercept",
		buckets:   prometheus.DefBuckets,
	}
	for _, opt := range options {
		opt(&cfg)
	}

	c := &PrometheusCollector{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "events_total",
			Help:      "Number of events entering an instrumented interceptor.",
		}, []string{"event"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "errors_total",
			Help:      "Number of chains aborted by an instrumented interceptor.",
		}, []string{"event", "interceptor"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Name:      "intercept_duration_seconds",
			Help:      "Time between an interceptor being called and calling its continuation.",
			Buckets:   cfg.buckets,
		}, []string{"event"}),
	}

	for _, collector := range []prometheus.Collector{c.events, c.errors, c.durations} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// IncrementEventCount implements interceptors.MetricsCollector
func (c *PrometheusCollector) IncrementEventCount(event string) {
	c.events.WithLabelValues(event).Inc()
}

// RecordInterceptTime implements interceptors.MetricsCollector
func (c *PrometheusCollector) RecordInterceptTime(event string, duration time.Duration) {
	c.durations.WithLabelValues(event).Observe(duration.Seconds())
}

// IncrementErrorCount implements interceptors.MetricsCollector
func (c *PrometheusCollector) IncrementErrorCount(event string, interceptor string) {
	c.errors.WithLabelValues(event, interceptor).Inc()
}

// Package monitor provides interceptors.MetricsCollector implementations:
// an in-memory collector for tests and diagnostics, and a Prometheus
// collector for production use.
package monitor

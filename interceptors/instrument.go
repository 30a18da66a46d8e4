package interceptors

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MetricsCollector defines the interface for collecting interceptor metrics
type MetricsCollector interface {
	IncrementEventCount(event string)
	RecordInterceptTime(event string, duration time.Duration)
	IncrementErrorCount(event string, interceptor string)
}

// MetricsInterceptor decorates an interceptor and records how long it takes
// to call its continuation
type MetricsInterceptor struct {
	interceptor Interceptor
	collector   MetricsCollector
}

// NewMetricsInterceptor creates a new metrics interceptor around interceptor
func NewMetricsInterceptor(interceptor Interceptor, collector MetricsCollector) *MetricsInterceptor {
	return &MetricsInterceptor{
		interceptor: interceptor,
		collector:   collector,
	}
}

// Intercept implements Interceptor
func (i *MetricsInterceptor) Intercept(event string, args []any, next Next) {
	start := time.Now()
	i.collector.IncrementEventCount(event)

	i.interceptor.Intercept(event, args, func(err error, out ...any) {
		i.collector.RecordInterceptTime(event, time.Since(start))
		if err != nil {
			i.collector.IncrementErrorCount(event, i.interceptor.Name())
		}

		next(err, out...)
	})
}

// Name implements Interceptor
func (i *MetricsInterceptor) Name() string {
	return fmt.Sprintf("MetricsInterceptor[%s]", i.interceptor.Name())
}

// TracingInterceptor decorates an interceptor with a span that lasts until
// the continuation is called
type TracingInterceptor struct {
	interceptor Interceptor
	tracer      trace.Tracer
}

// NewTracingInterceptor creates a new tracing interceptor around interceptor
func NewTracingInterceptor(interceptor Interceptor, tracer trace.Tracer) *TracingInterceptor {
	return &TracingInterceptor{
		interceptor: interceptor,
		tracer:      tracer,
	}
}

// Intercept implements Interceptor
func (i *TracingInterceptor) Intercept(event string, args []any, next Next) {
	_, span := i.tracer.Start(context.Background(), "intercept "+event,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("event.name", event),
			attribute.String("interceptor.name", i.interceptor.Name()),
			attribute.Int("event.args", len(args)),
		),
	)

	i.interceptor.Intercept(event, args, func(err error, out ...any) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		next(err, out...)
	})
}

// Name implements Interceptor
func (i *TracingInterceptor) Name() string {
	return fmt.Sprintf("TracingInterceptor[%s]", i.interceptor.Name())
}

package interceptors

import (
	"fmt"
	"log/slog"
)

// Filter decides whether an event continues through the chain
type Filter interface {
	// ShouldProcess returns true if the event should be delivered
	ShouldProcess(event string, args []any) (bool, error)
}

// FilterFunc is a function adapter for Filter
type FilterFunc func(event string, args []any) (bool, error)

// ShouldProcess implements Filter
func (f FilterFunc) ShouldProcess(event string, args []any) (bool, error) {
	return f(event, args)
}

// SkipBehavior defines what happens when an event is filtered out
type SkipBehavior int

const (
	// SkipSilently drops the event; the continuation is never called
	SkipSilently SkipBehavior = iota
	// SkipWithError aborts the chain with ErrFiltered
	SkipWithError
	// SkipWithLog logs that the event was dropped
	SkipWithLog
)

// FilteringInterceptor short-circuits the chain for events rejected by a filter
type FilteringInterceptor struct {
	filter       Filter
	skipBehavior SkipBehavior
	logger       *slog.Logger
}

// NewFilteringInterceptor creates a new filtering interceptor
func NewFilteringInterceptor(filter Filter, skipBehavior SkipBehavior) *FilteringInterceptor {
	return &FilteringInterceptor{
		filter:       filter,
		skipBehavior: skipBehavior,
		logger:       slog.Default(),
	}
}

// WithLogger sets the logger used by SkipWithLog
func (i *FilteringInterceptor) WithLogger(logger *slog.Logger) *FilteringInterceptor {
	i.logger = logger
	return i
}

// Intercept implements Interceptor
func (i *FilteringInterceptor) Intercept(event string, args []any, next Next) {
	shouldProcess, err := i.filter.ShouldProcess(event, args)
	if err != nil {
		next(fmt.Errorf("filter error: %w", err))
		return
	}

	if shouldProcess {
		next(nil, args...)
		return
	}

	switch i.skipBehavior {
	case SkipWithError:
		next(fmt.Errorf("%w: %s", ErrFiltered, event))
	case SkipWithLog:
		i.logger.Info("event dropped by filter", "event", event)
	default: // SkipSilently
	}
}

// Name implements Interceptor
func (i *FilteringInterceptor) Name() string {
	return "FilteringInterceptor"
}

// CompositeFilter combines multiple filters with AND logic
type CompositeFilter struct {
	filters []Filter
}

// NewCompositeFilter creates a new composite filter
func NewCompositeFilter(filters ...Filter) *CompositeFilter {
	return &CompositeFilter{filters: filters}
}

// ShouldProcess implements Filter - all filters must return true
func (f *CompositeFilter) ShouldProcess(event string, args []any) (bool, error) {
	for _, filter := range f.filters {
		shouldProcess, err := filter.ShouldProcess(event, args)
		if err != nil {
			return false, err
		}
		if !shouldProcess {
			return false, nil
		}
	}
	return true, nil
}

// OrFilter combines multiple filters with OR logic
type OrFilter struct {
	filters []Filter
}

// NewOrFilter creates a new OR filter
func NewOrFilter(filters ...Filter) *OrFilter {
	return &OrFilter{filters: filters}
}

// ShouldProcess implements Filter - at least one filter must return true
func (f *OrFilter) ShouldProcess(event string, args []any) (bool, error) {
	for _, filter := range f.filters {
		shouldProcess, err := filter.ShouldProcess(event, args)
		if err != nil {
			return false, err
		}
		if shouldProcess {
			return true, nil
		}
	}
	return false, nil
}

// ArgCountFilter accepts events carrying between min and max arguments
type ArgCountFilter struct {
	min, max int
}

// NewArgCountFilter creates a filter on the payload length; max < 0 means no upper bound
func NewArgCountFilter(min, max int) *ArgCountFilter {
	return &ArgCountFilter{min: min, max: max}
}

// ShouldProcess implements Filter
func (f *ArgCountFilter) ShouldProcess(event string, args []any) (bool, error) {
	if len(args) < f.min {
		return false, nil
	}
	return f.max < 0 || len(args) <= f.max, nil
}

// ConditionalInterceptor runs an interceptor only if a condition is met
type ConditionalInterceptor struct {
	condition   Filter
	interceptor Interceptor
}

// NewConditionalInterceptor creates a new conditional interceptor
func NewConditionalInterceptor(condition Filter, interceptor Interceptor) *ConditionalInterceptor {
	return &ConditionalInterceptor{
		condition:   condition,
		interceptor: interceptor,
	}
}

// Intercept implements Interceptor
func (i *ConditionalInterceptor) Intercept(event string, args []any, next Next) {
	shouldExecute, err := i.condition.ShouldProcess(event, args)
	if err != nil {
		next(err)
		return
	}

	if shouldExecute {
		i.interceptor.Intercept(event, args, next)
		return
	}

	next(nil, args...)
}

// Name implements Interceptor
func (i *ConditionalInterceptor) Name() string {
	return fmt.Sprintf("ConditionalInterceptor[%s]", i.interceptor.Name())
}

package interceptors

import (
	"fmt"
	"log/slog"
	"reflect"
)

// Next is the continuation handed to an interceptor. Calling it with a non-nil
// error aborts the chain; calling it with a nil error advances the chain, and
// the given arguments replace the event payload.
type Next func(err error, args ...any)

// Interceptor inspects or transforms an event payload before it reaches the
// subscribers of the event. Intercept must call next exactly once, either
// before returning or later from any goroutine.
type Interceptor interface {
	Intercept(event string, args []any, next Next)

	// Name returns the interceptor name for logging and debugging
	Name() string
}

// InterceptorFunc is a function adapter for Interceptor. Registrations are
// matched by pointer, so keep the returned value to remove it later.
type InterceptorFunc struct {
	name string
	fn   func(event string, args []any, next Next)
}

// NewInterceptorFunc creates a new function-based interceptor
func NewInterceptorFunc(name string, fn func(event string, args []any, next Next)) *InterceptorFunc {
	return &InterceptorFunc{name: name, fn: fn}
}

// Intercept implements Interceptor
func (i *InterceptorFunc) Intercept(event string, args []any, next Next) {
	i.fn(event, args, next)
}

// Name implements Interceptor
func (i *InterceptorFunc) Name() string {
	return i.name
}

// isCallable rejects nil and typed-nil interceptors
func isCallable(interceptor Interceptor) bool {
	if interceptor == nil {
		return false
	}

	if fn, ok := interceptor.(*InterceptorFunc); ok {
		return fn != nil && fn.fn != nil
	}

	v := reflect.ValueOf(interceptor)
	switch v.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return !v.IsNil()
	}
	return true
}

// sameInterceptor compares by identity and never panics on values of
// incomparable dynamic types
func sameInterceptor(a, b Interceptor) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// Built-in interceptors

// LoggingInterceptor logs every event passing through the chain
type LoggingInterceptor struct {
	logger *slog.Logger
}

// NewLoggingInterceptor creates a new logging interceptor
func NewLoggingInterceptor(logger *slog.Logger) *LoggingInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return &LoggingInterceptor{logger: logger}
}

// Intercept implements Interceptor
func (i *LoggingInterceptor) Intercept(event string, args []any, next Next) {
	i.logger.Info("intercepting event",
		"event", event,
		"argCount", len(args),
	)

	next(nil, args...)
}

// Name implements Interceptor
func (i *LoggingInterceptor) Name() string {
	return "LoggingInterceptor"
}

// Validator checks an event payload
type Validator interface {
	Validate(event string, args []any) error
}

// ValidatorFunc is a function adapter for Validator
type ValidatorFunc func(event string, args []any) error

// Validate implements Validator
func (f ValidatorFunc) Validate(event string, args []any) error {
	return f(event, args)
}

// ValidationInterceptor aborts the chain when the payload is invalid
type ValidationInterceptor struct {
	validator Validator
}

// NewValidationInterceptor creates a new validation interceptor
func NewValidationInterceptor(validator Validator) *ValidationInterceptor {
	return &ValidationInterceptor{validator: validator}
}

// Intercept implements Interceptor
func (i *ValidationInterceptor) Intercept(event string, args []any, next Next) {
	if err := i.validator.Validate(event, args); err != nil {
		next(fmt.Errorf("validation failed: %w", err))
		return
	}

	next(nil, args...)
}

// Name implements Interceptor
func (i *ValidationInterceptor) Name() string {
	return "ValidationInterceptor"
}

// TransformFunc maps an event payload to a new one
type TransformFunc func(args []any) ([]any, error)

// TransformInterceptor replaces the payload with the result of a synchronous
// transformation
type TransformInterceptor struct {
	name string
	fn   TransformFunc
}

// NewTransformInterceptor creates a new transform interceptor
func NewTransformInterceptor(name string, fn TransformFunc) *TransformInterceptor {
	return &TransformInterceptor{name: name, fn: fn}
}

// Intercept implements Interceptor
func (i *TransformInterceptor) Intercept(event string, args []any, next Next) {
	out, err := i.fn(args)
	if err != nil {
		next(err)
		return
	}

	next(nil, out...)
}

// Name implements Interceptor
func (i *TransformInterceptor) Name() string {
	return i.name
}

package interceptors

import (
	"context"
	"log/slog"
	"time"

	"github.com/glimte/intercept-go/internal/reliability"
)

// RetryInterceptor runs a transformation on its own goroutine, retrying it
// under a policy, and continues the chain once it succeeds or gives up
type RetryInterceptor struct {
	name        string
	fn          TransformFunc
	retryPolicy reliability.RetryPolicy
	timeout     time.Duration
	logger      *slog.Logger
}

// NewRetryInterceptor creates a new retry interceptor
func NewRetryInterceptor(name string, retryPolicy reliability.RetryPolicy, fn TransformFunc) *RetryInterceptor {
	if retryPolicy == nil {
		retryPolicy = reliability.NewExponentialBackoff(100*time.Millisecond, 10*time.Second, 2.0, 5)
	}

	return &RetryInterceptor{
		name:        name,
		fn:          fn,
		retryPolicy: retryPolicy,
		logger:      slog.Default(),
	}
}

// WithLogger sets the logger for the retry interceptor
func (r *RetryInterceptor) WithLogger(logger *slog.Logger) *RetryInterceptor {
	r.logger = logger
	return r
}

// WithTimeout bounds the total time spent on all attempts; 0 means no bound
func (r *RetryInterceptor) WithTimeout(timeout time.Duration) *RetryInterceptor {
	r.timeout = timeout
	return r
}

// Intercept implements Interceptor
func (r *RetryInterceptor) Intercept(event string, args []any, next Next) {
	go func() {
		ctx := context.Background()
		if r.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}

		attempts := 0
		var out []any
		err := reliability.Retry(ctx, r.retryPolicy, func() error {
			attempts++
			result, err := r.fn(args)
			if err != nil {
				return err
			}
			out = result
			return nil
		})

		if err != nil {
			r.logger.Warn("retry interceptor gave up",
				"event", event,
				"interceptor", r.name,
				"attempts", attempts,
				"error", err,
			)
			next(err)
			return
		}

		next(nil, out...)
	}()
}

// Name implements Interceptor
func (r *RetryInterceptor) Name() string {
	return r.name
}

// Package reliability provides the retry policies used by the retry
// interceptor and the broker relay.
//
//	policy := reliability.NewExponentialBackoff(100*time.Millisecond, 5*time.Second, 2.0, 3)
//	err := reliability.Retry(ctx, policy, func() error {
//	    return publish()
//	})
//
// Errors wrapped with Permanent are never retried.
package reliability

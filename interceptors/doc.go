// Package interceptors adds an asynchronous interception layer to an
// emitter.Dispatcher.
//
// Before an event reaches its subscribers, the chain of interceptors
// registered for the event name runs in registration order. Each interceptor
// receives the current payload and a continuation; it may forward the payload
// unchanged, replace it, abort the dispatch with an error, or never continue
// at all:
//
//	e := interceptors.New()
//	e.On("greet", func(args ...any) {
//		fmt.Println(args[0]) // HI
//	})
//	e.Intercept("greet", interceptors.NewInterceptorFunc("upper",
//		func(event string, args []any, next interceptors.Next) {
//			next(nil, strings.ToUpper(args[0].(string)))
//		}))
//	e.Emit("greet", "hi")
//
// An aborted chain emits emitter.EventError with the error instead of the
// event. As with the plain emitter, an error event nobody listens to panics.
//
// Continuations may be called later and from another goroutine; Emit never
// waits for them. A continuation that is never called stalls that dispatch
// forever without any diagnostic. Each continuation is single-use: extra calls
// are logged and ignored.
//
// Attach decorates a dispatcher that already exists instead of creating a new
// one.
//
// Built-in interceptors:
//   - LoggingInterceptor: logs each event passing through
//   - ValidationInterceptor: aborts on invalid payloads
//   - FilteringInterceptor: drops or rejects events by condition
//   - ConditionalInterceptor: runs another interceptor only when a condition holds
//   - TransformInterceptor: synchronous payload mapping
//   - RetryInterceptor: asynchronous payload mapping with retries
//   - MetricsInterceptor, TracingInterceptor: decorators for observability
package interceptors

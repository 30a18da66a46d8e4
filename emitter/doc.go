// Package emitter provides the synchronous publish/subscribe primitive that the
// interceptors package builds on.
//
// An Emitter keeps an insertion-ordered list of listeners per event name and
// invokes them one after another, on the caller's goroutine, every time the
// event is emitted:
//
//	e := emitter.New()
//	e.On("greet", func(args ...any) {
//		fmt.Println("hello", args[0])
//	})
//	e.Emit("greet", "world")
//
// Three event names carry conventions:
//   - EventNewListener is emitted before a listener is added
//   - EventRemoveListener is emitted after a listener is removed
//   - EventError is reserved for failures; emitting it while nobody listens
//     panics with an *UnhandledError
//
// Listeners may re-enter the emitter (emit, subscribe, unsubscribe) from inside
// their body. Emit works on a snapshot of the listener list, so such changes
// apply to the next emit of the event.
package emitter

package emitter

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
)

// Reserved event names
const (
	EventNewListener    = "newListener"
	EventRemoveListener = "removeListener"
	EventError          = "error"
)

// Listener receives the arguments an event was emitted with
type Listener func(args ...any)

// Subscription is the handle of one registered listener. It identifies the
// registration for Off, so the same function can be subscribed several times.
type Subscription struct {
	event    string
	listener Listener
	once     bool
	fired    atomic.Bool
}

// Event returns the event name the subscription listens to
func (s *Subscription) Event() string {
	return s.event
}

// Once reports whether the subscription is removed after its first call
func (s *Subscription) Once() bool {
	return s.once
}

// Dispatcher is the publish/subscribe surface shared by Emitter and the
// intercepting wrappers built on top of it
type Dispatcher interface {
	On(event string, listener Listener) *Subscription
	Once(event string, listener Listener) *Subscription
	Off(sub *Subscription) bool
	RemoveAllListeners(events ...string)
	Emit(event string, args ...any) bool
	Listeners(event string) []*Subscription
	ListenerCount(event string) int
	EventNames() []string
}

// Emitter is the default Dispatcher implementation
type Emitter struct {
	listeners map[string][]*Subscription
	mu        sync.RWMutex
	logger    *slog.Logger
}

// Option configures the Emitter
type Option func(*Emitter)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Emitter) {
		e.logger = logger
	}
}

// New creates a new emitter
func New(options ...Option) *Emitter {
	e := &Emitter{
		listeners: make(map[string][]*Subscription),
		logger:    slog.Default(),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// On appends a listener for the event. It panics with ErrNilListener when
// listener is nil.
func (e *Emitter) On(event string, listener Listener) *Subscription {
	return e.add(event, listener, false)
}

// Once appends a listener that is removed right before its first invocation
func (e *Emitter) Once(event string, listener Listener) *Subscription {
	return e.add(event, listener, true)
}

func (e *Emitter) add(event string, listener Listener, once bool) *Subscription {
	if listener == nil {
		panic(ErrNilListener)
	}

	sub := &Subscription{
		event:    event,
		listener: listener,
		once:     once,
	}

	e.Emit(EventNewListener, event, sub)

	e.mu.Lock()
	e.listeners[event] = append(e.listeners[event], sub)
	e.mu.Unlock()

	e.logger.Debug("listener added", "event", event, "once", once)

	return sub
}

// Off removes the subscription. It returns false when the subscription is not
// registered (anymore).
func (e *Emitter) Off(sub *Subscription) bool {
	if sub == nil {
		return false
	}

	e.mu.Lock()
	subs := e.listeners[sub.event]
	position := -1
	for i := len(subs) - 1; i >= 0; i-- {
		if subs[i] == sub {
			position = i
			break
		}
	}

	if position < 0 {
		e.mu.Unlock()
		return false
	}

	if len(subs) == 1 {
		delete(e.listeners, sub.event)
	} else {
		// Fresh slice so that snapshots handed out by Emit stay intact
		remaining := make([]*Subscription, 0, len(subs)-1)
		remaining = append(remaining, subs[:position]...)
		remaining = append(remaining, subs[position+1:]...)
		e.listeners[sub.event] = remaining
	}
	e.mu.Unlock()

	e.logger.Debug("listener removed", "event", sub.event)
	e.Emit(EventRemoveListener, sub.event, sub)

	return true
}

// RemoveAllListeners removes every listener of the given events, or of all
// events when called without arguments. EventRemoveListener is emitted once
// per removed listener, newest first, and listeners of EventRemoveListener
// itself are removed last.
func (e *Emitter) RemoveAllListeners(events ...string) {
	if len(events) == 0 {
		events = e.EventNames()
	}

	deferred := false
	for _, event := range events {
		if event == EventRemoveListener {
			deferred = true
			continue
		}
		e.removeAll(event)
	}

	if deferred {
		e.removeAll(EventRemoveListener)
	}
}

func (e *Emitter) removeAll(event string) {
	subs := e.Listeners(event)
	for i := len(subs) - 1; i >= 0; i-- {
		e.Off(subs[i])
	}
}

// Emit calls every listener of the event synchronously, in registration order,
// and reports whether at least one listener was called. Emitting EventError
// without listeners panics with an *UnhandledError.
func (e *Emitter) Emit(event string, args ...any) bool {
	subs := e.Listeners(event)

	if len(subs) == 0 {
		if event == EventError {
			unhandled := newUnhandledError(args)
			e.logger.Error("unhandled error event", "error", unhandled)
			panic(unhandled)
		}
		return false
	}

	called := false
	for _, sub := range subs {
		if sub.once {
			if !sub.fired.CompareAndSwap(false, true) {
				continue
			}
			e.Off(sub)
		}

		sub.listener(args...)
		called = true
	}

	return called
}

// Listeners returns a copy of the subscriptions registered for the event
func (e *Emitter) Listeners(event string) []*Subscription {
	e.mu.RLock()
	defer e.mu.RUnlock()

	subs := e.listeners[event]
	result := make([]*Subscription, len(subs))
	copy(result, subs)
	return result
}

// ListenerCount returns the number of listeners registered for the event
func (e *Emitter) ListenerCount(event string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.listeners[event])
}

// EventNames returns the names of all events with listeners, sorted
func (e *Emitter) EventNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.listeners))
	for name := range e.listeners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

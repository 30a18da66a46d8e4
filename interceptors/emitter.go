package interceptors

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/glimte/intercept-go/emitter"
)

// DefaultMaxInterceptors is the chain length per event above which a possible
// leak is reported
const DefaultMaxInterceptors = 10

// Lifecycle notifications emitted on the dispatcher itself
const (
	EventNewInterceptor    = "newInterceptor"
	EventRemoveInterceptor = "removeInterceptor"
)

// Emitter is a Dispatcher that runs the interceptor chain of an event before
// delivering it to subscribers. Every method except Emit and the interceptor
// registry is delegated to the wrapped Dispatcher.
type Emitter struct {
	emitter.Dispatcher

	chains          map[string][]Interceptor
	warned          map[string]bool
	maxInterceptors int
	mu              sync.RWMutex
	logger          *slog.Logger
}

// Option configures the Emitter
type Option func(*Emitter)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Emitter) {
		e.logger = logger
	}
}

// WithMaxInterceptors sets the leak warning threshold; 0 disables it
func WithMaxInterceptors(n int) Option {
	return func(e *Emitter) {
		if n >= 0 {
			e.maxInterceptors = n
		}
	}
}

// New creates an intercepting emitter backed by a fresh emitter.Emitter
func New(options ...Option) *Emitter {
	e := newEmitter(options)
	e.Dispatcher = emitter.New(emitter.WithLogger(e.logger))
	return e
}

// Attach wraps an existing dispatcher. Listeners already registered on d keep
// working and are reached through the interceptor chain when events are
// emitted on the returned Emitter; emitting on d directly bypasses it.
//
// Attaching to an Emitter again nests the chains: both run, outer first.
//
// EventNewListener and EventRemoveListener are raised by d itself through its
// own Emit, so chains registered on the returned Emitter never see them.
func Attach(d emitter.Dispatcher, options ...Option) *Emitter {
	e := newEmitter(options)
	e.Dispatcher = d
	return e
}

func newEmitter(options []Option) *Emitter {
	e := &Emitter{
		chains:          make(map[string][]Interceptor),
		warned:          make(map[string]bool),
		maxInterceptors: DefaultMaxInterceptors,
		logger:          slog.Default(),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// Unwrap returns the wrapped dispatcher
func (e *Emitter) Unwrap() emitter.Dispatcher {
	return e.Dispatcher
}

// Intercept appends an interceptor to the chain of the event.
// EventNewInterceptor is emitted before the chain changes.
func (e *Emitter) Intercept(event string, interceptor Interceptor) error {
	if !isCallable(interceptor) {
		return ErrInvalidInterceptor
	}

	e.Emit(EventNewInterceptor, event, interceptor)

	e.mu.Lock()
	chain := append(e.chains[event], interceptor)
	e.chains[event] = chain

	limit := e.maxInterceptors
	leaking := limit > 0 && len(chain) > limit && !e.warned[event]
	if leaking {
		e.warned[event] = true
	}
	e.mu.Unlock()

	if leaking {
		e.logger.Warn("possible interceptor leak detected, use SetMaxInterceptors to increase limit",
			"event", event,
			"count", len(chain),
			"max", limit,
		)
	}

	return nil
}

// RemoveInterceptor removes the most recently added registration of the
// interceptor. Nothing happens if it is not registered for the event.
// EventRemoveInterceptor is emitted after a removal.
func (e *Emitter) RemoveInterceptor(event string, interceptor Interceptor) error {
	if !isCallable(interceptor) {
		return ErrInvalidInterceptor
	}

	e.mu.Lock()
	chain := e.chains[event]
	position := -1
	for i := len(chain) - 1; i >= 0; i-- {
		if sameInterceptor(chain[i], interceptor) {
			position = i
			break
		}
	}

	if position < 0 {
		e.mu.Unlock()
		return nil
	}

	if len(chain) == 1 {
		delete(e.chains, event)
		delete(e.warned, event)
	} else {
		remaining := make([]Interceptor, 0, len(chain)-1)
		remaining = append(remaining, chain[:position]...)
		remaining = append(remaining, chain[position+1:]...)
		e.chains[event] = remaining
	}
	e.mu.Unlock()

	e.Emit(EventRemoveInterceptor, event, interceptor)

	return nil
}

// RemoveAllInterceptors clears the chains of the given events, or of every
// event when called without arguments. EventRemoveInterceptor is emitted for
// each entry, last registered first; the chain of EventRemoveInterceptor
// itself is cleared last.
func (e *Emitter) RemoveAllInterceptors(events ...string) {
	if len(events) == 0 {
		for _, event := range e.InterceptedEvents() {
			if event != EventRemoveInterceptor {
				e.removeChain(event)
			}
		}
		e.removeChain(EventRemoveInterceptor)

		e.mu.Lock()
		e.chains = make(map[string][]Interceptor)
		e.warned = make(map[string]bool)
		e.mu.Unlock()
		return
	}

	for _, event := range events {
		e.removeChain(event)
	}
}

// removeChain pops the entries of the event by position, so interceptors
// that RemoveInterceptor cannot match are still notified
func (e *Emitter) removeChain(event string) {
	for n := len(e.Interceptors(event)); n > 0; n-- {
		e.mu.Lock()
		chain := e.chains[event]
		if len(chain) == 0 {
			e.mu.Unlock()
			break
		}

		top := len(chain) - 1
		last := chain[top]
		if top == 0 {
			delete(e.chains, event)
		} else {
			e.chains[event] = chain[:top:top]
		}
		e.mu.Unlock()

		e.Emit(EventRemoveInterceptor, event, last)
	}

	e.mu.Lock()
	delete(e.chains, event)
	delete(e.warned, event)
	e.mu.Unlock()
}

// Interceptors returns a copy of the chain of the event
func (e *Emitter) Interceptors(event string) []Interceptor {
	e.mu.RLock()
	defer e.mu.RUnlock()

	chain := e.chains[event]
	result := make([]Interceptor, len(chain))
	copy(result, chain)
	return result
}

// InterceptedEvents returns the names of all events with a chain, sorted
func (e *Emitter) InterceptedEvents() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.chains))
	for name := range e.chains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetMaxInterceptors changes the leak warning threshold; 0 disables it
func (e *Emitter) SetMaxInterceptors(n int) error {
	if n < 0 {
		return ErrInvalidLimit
	}

	e.mu.Lock()
	e.maxInterceptors = n
	e.mu.Unlock()

	return nil
}

// MaxInterceptors returns the leak warning threshold
func (e *Emitter) MaxInterceptors() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.maxInterceptors
}

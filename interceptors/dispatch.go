package interceptors

import (
	"sync"
	"sync/atomic"

	"github.com/glimte/intercept-go/emitter"
)

// Emit runs the interceptor chain of the event and then delivers the final
// arguments to the subscribers of the wrapped dispatcher. Without a chain it
// behaves exactly like the wrapped dispatcher's Emit.
//
// When an interceptor aborts, EventError is emitted with its error instead
// and the subscribers of the event are skipped. Emit never blocks on an
// interceptor: it returns the delivery result if the chain completed during
// the call, and false while the chain is still pending.
//
// The chain is captured when Emit is called; registrations made while a
// dispatch is in flight apply to later dispatches only.
func (e *Emitter) Emit(event string, args ...any) bool {
	chain := e.Interceptors(event)
	if len(chain) == 0 {
		return e.Dispatcher.Emit(event, args...)
	}

	d := &dispatch{
		emitter: e,
		event:   event,
		chain:   chain,
	}
	d.advance(0, nil, args...)

	return d.result()
}

// dispatch is the state of one intercepted Emit call
type dispatch struct {
	emitter *Emitter
	event   string
	chain   []Interceptor

	mu        sync.Mutex
	resolved  bool
	delivered bool
}

// advance runs the link at position with the arguments produced by the link
// before it
func (d *dispatch) advance(position int, err error, args ...any) {
	if err != nil {
		d.emitter.logger.Debug("interceptor chain aborted",
			"event", d.event,
			"interceptor", d.chain[position-1].Name(),
			"error", err,
		)
		d.resolve(false)
		d.emitter.Emit(emitter.EventError, err)
		return
	}

	if position == len(d.chain) {
		d.resolve(d.emitter.Dispatcher.Emit(d.event, args...))
		return
	}

	d.chain[position].Intercept(d.event, args, d.next(position))
}

// next builds the single-use continuation of the link at position
func (d *dispatch) next(position int) Next {
	var called atomic.Bool

	return func(err error, args ...any) {
		if !called.CompareAndSwap(false, true) {
			d.emitter.logger.Warn("interceptor continuation called more than once, ignoring",
				"event", d.event,
				"interceptor", d.chain[position].Name(),
			)
			return
		}

		d.advance(position+1, err, args...)
	}
}

func (d *dispatch) resolve(delivered bool) {
	d.mu.Lock()
	d.resolved = true
	d.delivered = delivered
	d.mu.Unlock()
}

func (d *dispatch) result() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.resolved && d.delivered
}

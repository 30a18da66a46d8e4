package emitter

import (
	"errors"
	"fmt"
)

var (
	// ErrNilListener is the panic value of On and Once when given a nil listener
	ErrNilListener = errors.New("emitter: listener must be a function")
)

// UnhandledError is the panic value raised when EventError is emitted without
// any listener attached to it
type UnhandledError struct {
	Value any // First argument passed along with the error event
}

func (e *UnhandledError) Error() string {
	switch v := e.Value.(type) {
	case nil:
		return "emitter: unhandled error event"
	case error:
		return fmt.Sprintf("emitter: unhandled error event: %v", v)
	default:
		return fmt.Sprintf("emitter: unhandled error event (%v)", v)
	}
}

func (e *UnhandledError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

func newUnhandledError(args []any) *UnhandledError {
	if len(args) == 0 {
		return &UnhandledError{}
	}
	return &UnhandledError{Value: args[0]}
}

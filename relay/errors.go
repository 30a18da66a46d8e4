package relay

import (
	"errors"
	"fmt"
)

var (
	ErrNoChannel = errors.New("relay: channel is required")
)

// PublishError is emitted as the error event when an envelope could not be
// published
type PublishError struct {
	Event      string // Relayed event
	EnvelopeID string // ID of the envelope that was dropped
	Exchange   string // Target exchange
	Err        error  // Underlying error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("relay: failed to publish %s (%s) to %s: %v", e.Event, e.EnvelopeID, e.Exchange, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

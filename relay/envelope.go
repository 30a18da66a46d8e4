package relay

import (
	"time"

	"github.com/google/uuid"
	json "github.com/json-iterator/go"
)

// ContentType of every published envelope
const ContentType = "application/json"

// Envelope is the wire representation of a relayed event
type Envelope struct {
	ID        string    `json:"id"`
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Args      []any     `json:"args"`
}

// NewEnvelope wraps a dispatch in an envelope with a fresh ID
func NewEnvelope(event string, args []any) *Envelope {
	if args == nil {
		args = []any{}
	}
	return &Envelope{
		ID:        uuid.New().String(),
		Event:     event,
		Timestamp: time.Now().UTC(),
		Args:      args,
	}
}

// Marshal encodes the envelope
func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEnvelope decodes an envelope produced by Marshal
func UnmarshalEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

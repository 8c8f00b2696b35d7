// internal/events/sink/envelope.go
package sink

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rovshanmuradov/genesis-launchpad/internal/events"
)

// Envelope is the wire form shared by every external sink.
type Envelope struct {
	ID         string           `json:"id"`
	Type       events.EventType `json:"type"`
	OccurredAt time.Time        `json:"occurred_at"`
	Data       json.RawMessage  `json:"data"`
}

// NewEnvelope wraps an event, keeping its id so consumers can deduplicate.
// Events built without an id get a fresh one.
func NewEnvelope(event events.Event) (*Envelope, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", event.Type(), err)
	}
	id := event.ID()
	if id == "" {
		id = uuid.NewString()
	}
	return &Envelope{
		ID:         id,
		Type:       event.Type(),
		OccurredAt: event.Timestamp(),
		Data:       data,
	}, nil
}

func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

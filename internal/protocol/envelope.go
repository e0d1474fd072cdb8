package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingEvent is returned when an envelope has no event name.
var ErrMissingEvent = errors.New("envelope has no event name")

// Envelope is a single socket message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode builds the JSON text frame for an event. A nil data is omitted.
func Encode(event string, data any) ([]byte, error) {
	if event == "" {
		return nil, ErrMissingEvent
	}
	env := Envelope{Event: event}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", event, err)
		}
		env.Data = raw
	}
	return json.Marshal(env)
}

// Decode parses a JSON text frame into an envelope.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("malformed envelope: %w", err)
	}
	if env.Event == "" {
		return Envelope{}, ErrMissingEvent
	}
	return env, nil
}

// DecodeData unmarshals the envelope payload into v. An absent payload
// leaves v untouched.
func (e Envelope) DecodeData(v any) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("malformed %s payload: %w", e.Event, err)
	}
	return nil
}

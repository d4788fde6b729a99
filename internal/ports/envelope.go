package ports

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedEnvelope = errors.New("malformed envelope")

// Envelope is the wire frame carrying one signal.
type Envelope struct {
	Port    string          `json:"port"`
	Payload json.RawMessage `json:"payload"`
}

// NewEnvelope encodes payload into an envelope for port.
func NewEnvelope(port string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", port, err)
	}
	return Envelope{Port: port, Payload: data}, nil
}

// DecodeEnvelope parses a single wire frame.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if env.Port == "" {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, ErrEmptyPort)
	}
	return env, nil
}

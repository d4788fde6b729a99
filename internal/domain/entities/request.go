package entities

import (
	"bytes"
	"encoding/json"
	"errors"
)

var ErrEmptyIdentifier = errors.New("empty quiz identifier")

// LoadRequest is a single request from the host to load the quiz with the given identifier.
type LoadRequest struct {
	ID string // opaque identifier, never interpreted
}

// ParseLoadRequest decodes the identifier from a raw signal payload.
// A JSON string is unquoted, any other JSON value is kept as compact text.
func ParseLoadRequest(raw json.RawMessage) (LoadRequest, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return LoadRequest{}, ErrEmptyIdentifier
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return LoadRequest{}, err
		}
		return LoadRequest{ID: s}, nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return LoadRequest{}, err
	}

	return LoadRequest{ID: buf.String()}, nil
}

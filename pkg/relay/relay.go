// Package relay talks to the language model on behalf of the reader.
//
// ModelExplainer calls an OpenAI-compatible chat completion endpoint
// directly. Client calls a relay server started with "explainer relay".
// Both satisfy the overlay's Explainer interface.
package relay

import (
	"errors"
	"fmt"
)

// ErrEmptyExplanation is returned when the model or the relay answered
// without any explanation text.
var ErrEmptyExplanation = errors.New("relay: no explanation received")

// StatusError is returned by Client for non-success HTTP responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("relay: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("relay: HTTP %d: %s", e.StatusCode, e.Message)
}

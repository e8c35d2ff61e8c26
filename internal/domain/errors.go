package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingToken signals that no inference service credential is configured.
	ErrMissingToken = errors.New("missing inference token")
	// ErrEmptyQuestion signals a blank or absent question.
	ErrEmptyQuestion = errors.New("empty question")
	// ErrUpstream signals a failed call to the remote inference service.
	ErrUpstream = errors.New("upstream inference error")
)

// UpstreamError carries the HTTP status and response body of a failed
// inference call. Service is the human-readable upstream name
// ("Embeddings" or "Generation") used in the client-visible message.
type UpstreamError struct {
	Service string
	Status  int
	Body    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API error: %d - %s", e.Service, e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// NewUpstreamError creates an upstream failure for the given service.
func NewUpstreamError(service string, status int, body string) error {
	return &UpstreamError{Service: service, Status: status, Body: body}
}

// NewDecodeError marks a well-formed HTTP success whose payload could not be
// interpreted. Decoding failures are reported, never guessed around.
func NewDecodeError(service string, err error) error {
	return fmt.Errorf("%s API response decode: %w: %w", service, err, ErrUpstream)
}

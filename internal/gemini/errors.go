package gemini

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAPIKey is returned before any HTTP traffic when no key is configured.
	ErrNoAPIKey = errors.New("gemini api key is not configured")
	// ErrMalformedResponse covers 2xx bodies with no usable text and no
	// diagnosable reason.
	ErrMalformedResponse = errors.New("gemini response is malformed or empty")
)

// APIError is a non-2xx answer from the endpoint.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api request failed: %s", e.Message)
}

// RejectedError means the provider blocked the prompt for policy reasons.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("request rejected by ai, reason: %s", e.Reason)
}

// TerminatedError means generation stopped before a normal finish.
type TerminatedError struct {
	Reason string
}

func (e *TerminatedError) Error() string {
	return fmt.Sprintf("ai processing terminated early, reason: %s", e.Reason)
}

// NetworkError is a transport-level failure, distinct from APIError.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error reaching gemini api: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

package models

import "errors"

// Sentinel errors used across services so handlers can map them to HTTP
// status codes with errors.Is.
var (
	// ErrNotFound marks unknown or already-consumed entities (404).
	ErrNotFound = errors.New("not found")

	// ErrValidation marks rejected input; never partially applied (400).
	ErrValidation = errors.New("validation failed")

	// ErrEngineUnavailable marks a suggestion-engine failure or timeout.
	// Retryable: the user's turn is already persisted (502).
	ErrEngineUnavailable = errors.New("suggestion engine unavailable")
)

package errors

import "errors"

// This package defines a centralized set of sentinel errors for the
// application. Services return these (wrapped with context via fmt.Errorf
// and %w) without knowing about HTTP; the API layer checks them with
// errors.Is() and maps them to status codes in one place.

var (
	// ErrNotFound signifies that a requested resource could not be located.
	// Mapped to a 404 Not Found HTTP status.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that input data provided by a client failed
	// validation. Requests failing validation are rejected before any
	// network or storage I/O is attempted.
	// Mapped to a 400 Bad Request HTTP status.
	ErrValidation = errors.New("validation failed")

	// ErrUpstream signifies a network failure or non-success status from
	// the remote inference server. Upstream calls are never retried.
	// Mapped to a 502 Bad Gateway HTTP status.
	ErrUpstream = errors.New("upstream unavailable")

	// ErrStreamParse signifies malformed framing inside a live stream from
	// the upstream server. It terminates that stream; the transport itself
	// is closed normally.
	ErrStreamParse = errors.New("stream parse failure")

	// ErrPersistence signifies a storage write failure. Orchestration
	// decides whether it degrades gracefully (blocking turn keeps the
	// generated text) or fails the call (streaming turn).
	ErrPersistence = errors.New("persistence failure")

	// ErrInternal signifies an unexpected server-side error. Used to avoid
	// leaking implementation details to the client.
	// Mapped to a 500 Internal Server Error HTTP status.
	ErrInternal = errors.New("internal server error")
)

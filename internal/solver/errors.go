package solver

import (
	"errors"
	"fmt"
)

// RequestError describes a failed call to the solving service.
type RequestError struct {
	// Op is the endpoint, e.g. "solve".
	Op string

	// Status is the HTTP status; zero for transport failures.
	Status int

	// Code is the service's machine-readable "error" field, when present.
	Code string

	// Message is the service's "message" field, or one derived from the
	// status or the transport failure.
	Message string

	// Transport is true when no usable HTTP response arrived.
	Transport bool

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RequestError) Unwrap() error { return e.Err }

// IsTransport reports whether err is a RequestError caused by the network
// rather than by the service answering with an error.
func IsTransport(err error) bool {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Transport
	}
	return false
}

// IsRequestError reports whether err is a *RequestError of any kind.
func IsRequestError(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}

func statusMessage(status int) string {
	return fmt.Sprintf("API error: %d", status)
}

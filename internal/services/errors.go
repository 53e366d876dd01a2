package services

import "errors"

// ErrorKind tags every service failure so the handler boundary can map it to
// an HTTP response in one place instead of branching on error shape.
type ErrorKind string

const (
	KindInvalidInput   ErrorKind = "INVALID_INPUT"
	KindExtraction     ErrorKind = "EXTRACTION_ERROR"
	KindContentBlocked ErrorKind = "CONTENT_BLOCKED"
	KindUpstream       ErrorKind = "UPSTREAM_ERROR"
)

// Error is the single error type propagated out of the services package.
// Message is safe to log; the caller-visible text is chosen by the handler
// from the Kind alone, so upstream detail (which may embed request URLs)
// never reaches the client.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a tagged error without an underlying cause.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError builds a tagged error around an underlying cause.
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from any error; unrecognized errors count as
// upstream failures.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUpstream
}

// Package errors provides structured error handling for the chapter engine.
package errors

import "time"

// Domain is the error domain for Ironmarch errors.
const Domain = "github.com/louisbranch/ironmarch"

// Error is the domain error type with structured metadata.
type Error struct {
	Code        Code              // Machine-readable error code
	Message     string            // Internal message (for logs/telemetry)
	Metadata    map[string]string // Additional context (character id, chapter id, turn, phase)
	Cause       error             // Wrapped underlying error
	Remediation string            // Suggested operator remediation
	Timestamp   time.Time         // When the error was created
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Recoverable reports whether the error can be resolved without a reset.
func (e *Error) Recoverable() bool {
	if e == nil {
		return true
	}
	return e.Code.Recoverable()
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// WithMetadata creates a domain error with structured context.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now().UTC(),
	}
}

// WrapWithMetadata creates a domain error with both metadata and a cause.
func WrapWithMetadata(code Code, message string, metadata map[string]string, cause error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Metadata:  metadata,
		Cause:     cause,
		Timestamp: time.Now().UTC(),
	}
}

// WithRemediation returns a copy of the error carrying an operator hint.
func (e *Error) WithRemediation(hint string) *Error {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Remediation = hint
	return &clone
}

// CodeOf extracts the domain code from an error chain, or CodeUnknown.
func CodeOf(err error) Code {
	for err != nil {
		if de, ok := err.(*Error); ok {
			return de.Code
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return CodeUnknown
		}
		err = unwrapper.Unwrap()
	}
	return CodeUnknown
}

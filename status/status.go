package status

import (
	"context"
	"errors"
	"fmt"
)

// Code identifies the broad reason a cancellation was requested.
type Code string

// Status codes for cancellation reasons.
const (
	// CodeOK means no reason was supplied (plain StartCancel).
	CodeOK Code = "OK"

	// CodeCancelled means the work was cancelled on request.
	CodeCancelled Code = "CANCELLED"

	// CodeDeadlineExceeded means a deadline or liveness timeout expired.
	CodeDeadlineExceeded Code = "DEADLINE_EXCEEDED"

	// CodeAborted means the work was abandoned mid-flight.
	CodeAborted Code = "ABORTED"

	// CodeInternal means an internal failure forced cancellation.
	CodeInternal Code = "INTERNAL"

	// CodeUnknown means the reason could not be classified.
	CodeUnknown Code = "UNKNOWN"
)

// String returns the string representation of the code.
func (c Code) String() string {
	return string(c)
}

// Status is an immutable cancellation reason. The zero value is OK.
type Status struct {
	code    Code
	message string
}

// New creates a status with the given code and message.
func New(code Code, message string) Status {
	return Status{code: code, message: message}
}

// Newf creates a status with a formatted message.
func Newf(code Code, format string, args ...interface{}) Status {
	return Status{code: code, message: fmt.Sprintf(format, args...)}
}

// OK returns the zero (OK) status.
func OK() Status {
	return Status{}
}

// FromError derives a status from an error. A nil error yields OK.
// context.Canceled and context.DeadlineExceeded map to their codes;
// anything else maps to CodeUnknown.
func FromError(err error) Status {
	switch {
	case err == nil:
		return Status{}
	case errors.Is(err, context.DeadlineExceeded):
		return Status{code: CodeDeadlineExceeded, message: err.Error()}
	case errors.Is(err, context.Canceled):
		return Status{code: CodeCancelled, message: err.Error()}
	default:
		return Status{code: CodeUnknown, message: err.Error()}
	}
}

// Code returns the status code. An empty code reads as CodeOK.
func (s Status) Code() Code {
	if s.code == "" {
		return CodeOK
	}
	return s.code
}

// Message returns the human-readable message, if any.
func (s Status) Message() string {
	return s.message
}

// IsOK reports whether the status carries no failure reason.
func (s Status) IsOK() bool {
	return s.Code() == CodeOK
}

// String formats the status as "CODE: message".
func (s Status) String() string {
	if s.IsOK() {
		return string(CodeOK)
	}
	if s.message == "" {
		return string(s.code)
	}
	return fmt.Sprintf("%s: %s", s.code, s.message)
}

// Err returns nil for an OK status, and a *StatusError otherwise.
func (s Status) Err() error {
	if s.IsOK() {
		return nil
	}
	return &StatusError{status: s}
}

// StatusError adapts a non-OK Status to the error interface.
type StatusError struct {
	status Status
}

// Error returns the formatted status.
func (e *StatusError) Error() string {
	return e.status.String()
}

// Status returns the underlying status.
func (e *StatusError) Status() Status {
	return e.status
}

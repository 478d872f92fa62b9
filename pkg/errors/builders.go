package errors

import (
	stderrors "errors"
	"fmt"
)

// NewInvalidInputError builds an ErrorCodeInvalidInput error for a rejected
// job submission field.
func NewInvalidInputError(field string, value any) *SchedulerError {
	err := New(ErrorCodeInvalidInput, fmt.Sprintf("invalid %s: %v", field, value))
	return err.WithDetails(fmt.Sprintf("field=%s value=%v", field, value))
}

// NewStateCorruptionError builds an ErrorCodeStateCorruption error describing
// a broken cross-reference between a job and a node.
func NewStateCorruptionError(message string) *SchedulerError {
	return New(ErrorCodeStateCorruption, message)
}

// NewNotFoundError builds an ErrorCodeNotFound error for a request that
// referenced a job or node id absent from the current state document.
func NewNotFoundError(resource, id string) *SchedulerError {
	err := New(ErrorCodeNotFound, fmt.Sprintf("%s not found", resource))
	return err.WithDetails(fmt.Sprintf("id=%s", id))
}

// NewMalformedStateError wraps a JSON decode failure from the state store.
func NewMalformedStateError(path string, cause error) *SchedulerError {
	err := NewWithCause(ErrorCodeMalformedState, "state document is malformed", cause)
	return err.WithDetails("path=" + path)
}

// NewPersistenceError wraps a state-document I/O failure: a read failure
// other than a missing file, or a write failure, including one that
// exhausted its retry budget.
func NewPersistenceError(path string, cause error) *SchedulerError {
	err := NewWithCause(ErrorCodePersistenceIO, "failed to persist state", cause)
	return err.WithDetails("path=" + path)
}

// IsRetryable reports whether err (or any *SchedulerError it wraps) should
// be retried.
func IsRetryable(err error) bool {
	var se *SchedulerError
	if stderrors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// CodeOf extracts the ErrorCode from err, or ErrorCodeUnknown if err is not
// a *SchedulerError.
func CodeOf(err error) ErrorCode {
	var se *SchedulerError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ErrorCodeUnknown
}

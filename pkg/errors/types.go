// Package errors provides structured error types for the scheduler, the
// state store, and the CLI driver.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode classifies a SchedulerError for programmatic handling.
type ErrorCode string

const (
	// ErrorCodeInvalidInput marks a rejected job submission: non-positive
	// minutes/cpus, or negative gpus/priority.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeStateCorruption marks a caller-contract violation: an
	// assigned_node absent from the cluster, or a node's running_jobs
	// listing an absent job id.
	ErrorCodeStateCorruption ErrorCode = "STATE_CORRUPTION"

	// ErrorCodeMalformedState marks a state document that failed to parse.
	ErrorCodeMalformedState ErrorCode = "MALFORMED_STATE"

	// ErrorCodeNotFound marks a well-formed request referencing a job or
	// node id absent from the current state document.
	ErrorCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrorCodePersistenceIO marks a failure reading or writing the state
	// document, including a write failure that survived retrying.
	ErrorCodePersistenceIO ErrorCode = "PERSISTENCE_IO"

	// ErrorCodeUnknown is the fallback for unclassified errors.
	ErrorCodeUnknown ErrorCode = "UNKNOWN"
)

// ErrorCategory groups related error codes for coarse-grained handling.
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "VALIDATION"
	CategoryClient     ErrorCategory = "CLIENT"
	CategoryServer     ErrorCategory = "SERVER"
	CategoryUnknown    ErrorCategory = "UNKNOWN"
)

// SchedulerError is a structured error carrying a code, category, and an
// optional underlying cause.
type SchedulerError struct {
	Code      ErrorCode     `json:"code"`
	Category  ErrorCategory `json:"category"`
	Message   string        `json:"message"`
	Details   string        `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Retryable bool          `json:"retryable"`
	Cause     error         `json:"-"`
}

// Error implements the error interface.
func (e *SchedulerError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *SchedulerError) Unwrap() error {
	return e.Cause
}

// Is matches another *SchedulerError with the same code.
func (e *SchedulerError) Is(target error) bool {
	if t, ok := target.(*SchedulerError); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a SchedulerError with no underlying cause.
func New(code ErrorCode, message string) *SchedulerError {
	return NewWithCause(code, message, nil)
}

// NewWithCause creates a SchedulerError wrapping cause.
func NewWithCause(code ErrorCode, message string, cause error) *SchedulerError {
	return &SchedulerError{
		Code:      code,
		Category:  categoryFor(code),
		Message:   message,
		Timestamp: time.Now(),
		Retryable: code == ErrorCodePersistenceIO,
		Cause:     cause,
	}
}

// WithDetails attaches extra diagnostic text and returns the receiver.
func (e *SchedulerError) WithDetails(details string) *SchedulerError {
	e.Details = details
	return e
}

func categoryFor(code ErrorCode) ErrorCategory {
	switch code {
	case ErrorCodeInvalidInput:
		return CategoryValidation
	case ErrorCodeStateCorruption, ErrorCodeMalformedState, ErrorCodeNotFound:
		return CategoryClient
	case ErrorCodePersistenceIO:
		return CategoryServer
	default:
		return CategoryUnknown
	}
}

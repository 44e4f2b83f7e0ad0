// Package errors provides the error taxonomy shared by the notifier pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents a standardized internal error code.
type ErrorCode string

const (
	// ErrCodeTransport covers network and remote API failures.
	ErrCodeTransport ErrorCode = "TRANSPORT_ERROR"
	// ErrCodeParse covers malformed structured responses.
	ErrCodeParse ErrorCode = "PARSE_ERROR"
	// ErrCodeAuth covers mail login and credential rejections.
	ErrCodeAuth ErrorCode = "AUTH_ERROR"
	// ErrCodeConfig covers missing files or required keys at startup.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"
	// ErrCodeComposeFailed aborts a single customer iteration.
	ErrCodeComposeFailed ErrorCode = "COMPOSE_FAILED"
	// ErrCodeValidation covers rejected input documents and addresses.
	ErrCodeValidation ErrorCode = "VALIDATION_FAILED"
	// ErrCodeInternal is used when an unknown error is normalized.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// WithMetadata returns the error after attaching a metadata key.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

// NewTransportError wraps a network or remote API failure for the named operation.
func NewTransportError(operation string, cause error) *StandardError {
	return newError(ErrCodeTransport, fmt.Sprintf("%s request failed", operation), cause, true)
}

// NewParseError reports a response that did not match the expected structure.
func NewParseError(operation string, cause error) *StandardError {
	return newError(ErrCodeParse, fmt.Sprintf("%s response malformed", operation), cause, false)
}

// NewAuthError reports rejected credentials.
func NewAuthError(service string, cause error) *StandardError {
	return newError(ErrCodeAuth, fmt.Sprintf("%s authentication failed", service), cause, false)
}

// NewConfigError reports a missing file or a required key.
func NewConfigError(details string, cause error) *StandardError {
	e := newError(ErrCodeConfig, "invalid configuration", cause, false)
	if details != "" {
		e.Details = details
		if cause != nil {
			e.Details = fmt.Sprintf("%s: %v", details, cause)
		}
	}
	return e
}

// NewComposeFailedError reports that no message body could be produced.
func NewComposeFailedError(cause error) *StandardError {
	return newError(ErrCodeComposeFailed, "summary composition failed", cause, false)
}

// NewValidationError reports a rejected input.
func NewValidationError(details string) *StandardError {
	e := newError(ErrCodeValidation, "validation failed", nil, false)
	e.Details = details
	return e
}

// CodeOf returns the code of the first StandardError in err's chain, or
// ErrCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		var stdErr *StandardError
		if !stderrors.As(err, &stdErr) {
			return false
		}
		if stdErr.Code == code {
			return true
		}
		err = stdErr.Cause
	}
	return false
}

// Normalize converts any error into a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "unexpected error", err, false)
}

// Package errors provides the standardized error taxonomy shared by the agent pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Upstream LLM errors. Callers pattern-match on these codes, never on provider status codes.
const (
	ErrCodeLLMTimeout       ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMRateLimited   ErrorCode = "LLM_RATE_LIMITED"
	ErrCodeLLMAuthFailed    ErrorCode = "LLM_AUTH_FAILED"
	ErrCodeLLMUnavailable   ErrorCode = "LLM_UNAVAILABLE"
	ErrCodeLLMRequestFailed ErrorCode = "LLM_REQUEST_FAILED"
	ErrCodeLLMEmptyResponse ErrorCode = "LLM_EMPTY_RESPONSE"
)

// Data accessor errors.
const (
	ErrCodeQueryExecutionFailed ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout         ErrorCode = "QUERY_TIMEOUT"
	ErrCodeMalformedData        ErrorCode = "MALFORMED_DATA"
	ErrCodeNotFound             ErrorCode = "NOT_FOUND"
)

// Pipeline errors.
const (
	ErrCodeAlreadyProcessing ErrorCode = "ALREADY_PROCESSING"
	ErrCodeRequestTimeout    ErrorCode = "REQUEST_TIMEOUT"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Retryable  bool                   `json:"retryable"`
	RetryAfter time.Duration          `json:"retryAfter,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	cause      error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// New creates a StandardError without an underlying cause.
func New(code ErrorCode, message string) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableErrorCode(code),
		Timestamp: time.Now().UTC(),
	}
}

// Wrap creates a StandardError around err. A nil err yields nil.
func Wrap(code ErrorCode, message string, err error) *StandardError {
	if err == nil {
		return nil
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   err.Error(),
		Retryable: IsRetryableErrorCode(code),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewLLMTimeoutError reports an LLM call that exceeded its per-call timeout.
func NewLLMTimeoutError(operation string, err error) *StandardError {
	e := &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   fmt.Sprintf("LLM %s timed out", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// NewRateLimitedError reports an upstream or local rate-limit rejection.
func NewRateLimitedError(operation string, retryAfter time.Duration, err error) *StandardError {
	e := &StandardError{
		Code:       ErrCodeLLMRateLimited,
		Message:    fmt.Sprintf("LLM %s rate limited", operation),
		Retryable:  true,
		RetryAfter: retryAfter,
		Timestamp:  time.Now().UTC(),
		cause:      err,
	}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// NewQueryExecutionFailedError wraps a data-store failure for one accessor.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %v", queryType, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewMalformedDataError reports an accessor result that failed shape validation.
func NewMalformedDataError(queryType, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedData,
		Message:   "Malformed data returned by store",
		Details:   fmt.Sprintf("queryType: %s, %s", queryType, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// CodeOf extracts the ErrorCode carried by err, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

func IsRateLimited(err error) bool {
	return HasCode(err, ErrCodeLLMRateLimited)
}

func IsTimeout(err error) bool {
	return HasCode(err, ErrCodeLLMTimeout) || HasCode(err, ErrCodeQueryTimeout) || HasCode(err, ErrCodeRequestTimeout)
}

// IsRetryableErrorCode reports whether a failure with this code is transient.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeLLMTimeout,
		ErrCodeLLMRateLimited,
		ErrCodeLLMUnavailable,
		ErrCodeQueryExecutionFailed,
		ErrCodeQueryTimeout,
		ErrCodeRequestTimeout:
		return true
	default:
		return false
	}
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeLLMTimeout, ErrCodeLLMRateLimited, ErrCodeLLMAuthFailed,
		ErrCodeLLMUnavailable, ErrCodeLLMRequestFailed, ErrCodeLLMEmptyResponse:
		return "UPSTREAM"
	case ErrCodeQueryExecutionFailed, ErrCodeQueryTimeout, ErrCodeMalformedData, ErrCodeNotFound:
		return "DATA"
	case ErrCodeAlreadyProcessing, ErrCodeRequestTimeout:
		return "POLICY"
	default:
		return "INTERNAL"
	}
}

// Is and As re-export the standard library helpers so callers need a single import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

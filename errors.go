package raffle

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode classifies a structured raffle error.
type ErrorCode string

const (
	// System-level errors (1000-1999)
	ErrCodeSystem        ErrorCode = "RAFFLE_1000"
	ErrCodeConfigInvalid ErrorCode = "RAFFLE_1001"

	// Store-level errors (2000-2999)
	ErrCodeStoreRead      ErrorCode = "RAFFLE_2000"
	ErrCodeStoreWrite     ErrorCode = "RAFFLE_2001"
	ErrCodeStoreQuota     ErrorCode = "RAFFLE_2002"
	ErrCodeStoreCorrupted ErrorCode = "RAFFLE_2003"
	ErrCodeBreakerOpen    ErrorCode = "RAFFLE_2004"
)

// RaffleError is the structured error used by the persistence layer. It
// carries a stable code for classification, a retryable flag and the
// underlying cause.
type RaffleError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Operation string    `json:"operation,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Retryable bool      `json:"retryable"`
	Cause     error     `json:"-"`
}

// Error implements the error interface.
func (e *RaffleError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Operation, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface.
func (e *RaffleError) Unwrap() error { return e.Cause }

// Is matches two RaffleErrors by code.
func (e *RaffleError) Is(target error) bool {
	if t, ok := target.(*RaffleError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithCause attaches the underlying cause.
func (e *RaffleError) WithCause(cause error) *RaffleError {
	e.Cause = cause
	return e
}

// WithOperation records the operation that failed.
func (e *RaffleError) WithOperation(op string) *RaffleError {
	e.Operation = op
	return e
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *RaffleError {
	return &RaffleError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Retryable: false,
	}
}

// NewRetryableError creates a structured error the caller may retry.
func NewRetryableError(code ErrorCode, message string) *RaffleError {
	return &RaffleError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Retryable: true,
	}
}

// newStoreReadError wraps a backend read failure.
func newStoreReadError(op string, cause error) *RaffleError {
	return NewRetryableError(ErrCodeStoreRead, "store read failed").
		WithOperation(op).WithCause(cause)
}

// newStoreWriteError wraps a backend write failure, classifying quota
// rejections separately so callers can apply the history-reset policy.
func newStoreWriteError(op string, cause error) *RaffleError {
	if isQuotaError(cause) {
		return NewError(ErrCodeStoreQuota, "store is out of space").
			WithOperation(op).WithCause(cause)
	}
	return NewRetryableError(ErrCodeStoreWrite, "store write failed").
		WithOperation(op).WithCause(cause)
}

// IsStoreQuota reports whether err is a quota-exceeded store rejection.
func IsStoreQuota(err error) bool {
	var re *RaffleError
	if errors.As(err, &re) {
		return re.Code == ErrCodeStoreQuota
	}
	return isQuotaError(err)
}

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	var re *RaffleError
	if errors.As(err, &re) {
		return re.Retryable
	}
	return isRetriableStoreError(err)
}

// isQuotaError detects out-of-space rejections across backends.
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	quotaPatterns := []string{
		"quota",
		"oom command not allowed",
		"maxmemory",
		"database or disk is full",
		"no space left on device",
	}
	for _, pattern := range quotaPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// isRetriableStoreError checks for transient backend failures.
func isRetriableStoreError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	retriablePatterns := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"network is unreachable",
		"temporary failure",
		"server closed",
		"broken pipe",
		"i/o timeout",
		"dial tcp",
		"read tcp",
		"write tcp",
		"connection timed out",
		"no route to host",
		"connection aborted",
		"redis: connection pool timeout",
		"redis: client is closed",
		"context deadline exceeded",
		"database is locked",
	}
	for _, pattern := range retriablePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures. The kind decides retry and
// fallback behavior, not the concrete error type.
type ErrorKind string

const (
	ErrKindRateLimit  ErrorKind = "rate_limit"
	ErrKindInvalidKey ErrorKind = "invalid_key"
	ErrKindNetwork    ErrorKind = "network_error"
	ErrKindParse      ErrorKind = "parse_error"
	ErrKindCache      ErrorKind = "cache_error"
	ErrKindTimeout    ErrorKind = "generation_timeout"
	ErrKindAPI        ErrorKind = "api_error"
)

// EngineError wraps an underlying failure with its classification.
type EngineError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *EngineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

// NewError builds a classified engine error.
func NewError(kind ErrorKind, op string, err error) *EngineError {
	return &EngineError{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the classification of err. Unclassified errors are
// uncategorized upstream failures.
func KindOf(err error) ErrorKind {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return ErrKindAPI
}

// Retryable reports whether err is worth retrying locally. Only transient
// upstream conditions qualify; everything else is fatal for the attempt.
func Retryable(err error) bool {
	switch KindOf(err) {
	case ErrKindRateLimit, ErrKindNetwork:
		return true
	}
	return false
}

// ErrStorage marks storage-layer failures. Callers treat it as a cache
// miss: caching is an optimization, not a correctness requirement.
var ErrStorage = errors.New("storage error")

// StorageError wraps err as a cache_error carrying the ErrStorage sentinel.
func StorageError(op string, err error) error {
	return NewError(ErrKindCache, op, fmt.Errorf("%w: %v", ErrStorage, err))
}

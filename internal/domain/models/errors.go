package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies forecast failures visible to callers.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidDateFormat
	KindDataUnavailable
	KindEmptyTestRange
	KindInsufficientHistory
	KindInference
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidDateFormat:
		return "invalid_date_format"
	case KindDataUnavailable:
		return "data_unavailable"
	case KindEmptyTestRange:
		return "empty_test_range"
	case KindInsufficientHistory:
		return "insufficient_history"
	case KindInference:
		return "inference"
	default:
		return "unknown"
	}
}

// ForecastError is the only error type returned by the prediction pipeline.
type ForecastError struct {
	Kind ErrorKind
	Err  error
}

// NewForecastError wraps err with a kind.
func NewForecastError(kind ErrorKind, err error) *ForecastError {
	return &ForecastError{Kind: kind, Err: err}
}

func (e *ForecastError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

// Unwrap returns underlying error.
func (e *ForecastError) Unwrap() error {
	return e.Err
}

// KindOf extracts the kind from err, KindUnknown if err is not a ForecastError.
func KindOf(err error) ErrorKind {
	var fe *ForecastError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

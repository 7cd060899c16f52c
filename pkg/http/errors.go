package http

import (
	"fmt"
	"net/http"
)

// AppError is an error with the HTTP status and client-facing detail to render.
type AppError struct {
	Code   string
	Detail string
	Status int
	Err    error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

// Unwrap returns underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error.
func NewAppError(code, detail string, status int) *AppError {
	return &AppError{Code: code, Detail: detail, Status: status}
}

// WithError wraps an underlying error. It is logged, never rendered.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// BadRequestError creates a 400 error.
func BadRequestError(detail string) *AppError {
	return NewAppError("ERR_BAD_REQUEST", detail, http.StatusBadRequest)
}

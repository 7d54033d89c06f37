// Package httperror provides errors that carry an HTTP status code from the
// repository layer up to the echo error handler.
package httperror

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is an error with an associated HTTP status code and optional
// metadata surfaced in the error response body.
type HTTPError struct {
	StatusCode int
	Message    string
	Meta       map[string]any
	cause      error
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.cause
}

// NewHTTPError creates an HTTPError with the given status code and message.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Meta:       map[string]any{},
	}
}

// NewHTTPErrorf creates an HTTPError with a formatted message.
func NewHTTPErrorf(statusCode int, format string, args ...any) *HTTPError {
	return NewHTTPError(statusCode, fmt.Sprintf(format, args...))
}

// Wrap attaches a cause to the error, preserved for errors.Is/As chains.
func (e *HTTPError) Wrap(err error) *HTTPError {
	e.cause = err
	return e
}

// WithMeta attaches a metadata entry to the error.
func (e *HTTPError) WithMeta(key string, value any) *HTTPError {
	e.Meta[key] = value
	return e
}

// IsHTTPError reports whether err is (or wraps) an HTTPError.
func IsHTTPError(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}

// ToHTTPError extracts the HTTPError from err, or nil if there is none.
func ToHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// GetStatusCode returns the status code carried by err, defaulting to 500.
func GetStatusCode(err error) int {
	if httpErr := ToHTTPError(err); httpErr != nil {
		return httpErr.StatusCode
	}
	return http.StatusInternalServerError
}

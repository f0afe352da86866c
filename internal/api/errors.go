package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired is matched by every error caused by a 401 response.
// The bound session has already been cleared when it is returned.
var ErrSessionExpired = errors.New("api: session expired")

var errEmptyToken = errors.New("server returned no access token")

// Error represents a non-2xx API response.
type Error struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Message is the normalized, human readable message.
	Message string
	// Body is the raw response body.
	Body json.RawMessage
}

func newError(statusCode int, body []byte) *Error {
	return &Error{
		StatusCode: statusCode,
		Message:    NormalizeErrorBody(body),
		Body:       append(json.RawMessage(nil), body...),
	}
}

// Error implements the error interface. The message is surfaced verbatim.
func (e *Error) Error() string {
	return e.Message
}

// Is implements the errors.Is interface so a 401 matches ErrSessionExpired.
func (e *Error) Is(target error) bool {
	return target == ErrSessionExpired && e.IsUnauthorized()
}

// IsUnauthorized returns true if the error is an authentication error.
func (e *Error) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsForbidden returns true if the error is a permission error.
func (e *Error) IsForbidden() bool {
	return e.StatusCode == http.StatusForbidden
}

// IsNotFound returns true if the error is a not found error.
func (e *Error) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsValidationError returns true if the server rejected the request body.
func (e *Error) IsValidationError() bool {
	return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
}

// IsServerError returns true for 5xx responses.
func (e *Error) IsServerError() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// RequestError is a transport or encoding failure: the server's answer, if
// any, could not be used.
type RequestError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap implements the errors.Unwrap interface for error chaining.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsAPIError checks if an error is an API error and returns it.
func IsAPIError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

package icondb

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents an error response from the ICONDB API
type Error struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Body       string `json:"body,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("icondb: %s (status: %d, request_id: %s)", e.Message, e.StatusCode, e.RequestID)
	}
	return fmt.Sprintf("icondb: %s (status: %d)", e.Message, e.StatusCode)
}

// HTTPStatus returns the response status so failures can be classified.
func (e *Error) HTTPStatus() int {
	return e.StatusCode
}

// IsRetryable returns true if the error might be resolved by retrying
func (e *Error) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// IsClientError returns true if the error is due to client input
func (e *Error) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// IsServerError returns true if the error is due to server issues
func (e *Error) IsServerError() bool {
	return e.StatusCode >= 500
}

// IsAuthError returns true if the error is related to authentication
func (e *Error) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsRateLimited returns true if the error is due to rate limiting
func (e *Error) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsNotFound returns true if the resource was not found
func (e *Error) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Common error types
var (
	ErrInvalidCredentials = &Error{StatusCode: http.StatusUnauthorized, Message: "invalid credentials"}
	ErrMissingFields      = &Error{StatusCode: http.StatusBadRequest, Message: "missing required fields"}
	ErrAlreadyRegistered  = &Error{StatusCode: http.StatusConflict, Message: "id already registered"}
	ErrNotSignedIn        = &Error{StatusCode: http.StatusUnauthorized, Message: "not signed in"}
)

// AsError returns the API error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsClientError checks if an error is a client error
func IsClientError(err error) bool {
	if e, ok := AsError(err); ok {
		return e.IsClientError()
	}
	return false
}

// IsAuthError checks if an error is an authentication error
func IsAuthError(err error) bool {
	if e, ok := AsError(err); ok {
		return e.IsAuthError()
	}
	return false
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	if e, ok := AsError(err); ok {
		return e.IsNotFound()
	}
	return false
}

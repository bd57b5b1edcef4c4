package errors

import (
	"errors"
	"net/http"
)

// Sentinel error strings double as the wire-level messages, so their casing
// follows the API contract rather than Go convention.
var (
	// ErrUserNotFound is returned when a user id does not exist.
	ErrUserNotFound = errors.New("User not found")
	// ErrTaskNotFound is returned when a task id does not exist.
	ErrTaskNotFound = errors.New("Task not found")
	// ErrUsernameTaken is returned when a username collides with another user.
	ErrUsernameTaken = errors.New("Username already exists")
	// ErrEmailTaken is returned when an email collides with another user.
	ErrEmailTaken = errors.New("Email already exists")
	// ErrInvalidDate is returned when a date string does not match the layout.
	ErrInvalidDate = errors.New("Invalid date format. Please use YYYY-MM-DD HH:MM:SS format")
	// ErrUsernameRequired is returned when registration lacks a username.
	ErrUsernameRequired = errors.New("Username is required")
	// ErrEmailRequired is returned when registration lacks an email.
	ErrEmailRequired = errors.New("Email is required")
	// ErrPasswordRequired is returned when registration lacks a password.
	ErrPasswordRequired = errors.New("Password is required")
)

// Response is the standard message body used for both errors and
// confirmations.
type Response struct {
	Message string `json:"message"`
}

// HTTPError pairs a domain error message with its status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message}
}

// MapErrorToHTTP maps domain errors to HTTP errors. The required-field
// errors map to status 200, matching the registration endpoint's historical
// behavior.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrTaskNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrEmailTaken), errors.Is(err, ErrInvalidDate):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUsernameRequired), errors.Is(err, ErrEmailRequired), errors.Is(err, ErrPasswordRequired):
		return NewHTTPError(http.StatusOK, err.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrAuthenticationRequired is returned when a protected action has no signed-in user.
	ErrAuthenticationRequired = errors.New("you must be signed in to do that")
	// ErrPostNotOwned is returned when an edit or delete matched no post owned by the caller.
	ErrPostNotOwned = errors.New("post not found or you do not have permission to change it")
	// ErrUserNotFound is returned when a user record does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrPostNotFound is returned when a post does not exist.
	ErrPostNotFound = errors.New("post not found")
	// ErrInvalidCode is returned for any failed code verification.
	ErrInvalidCode = errors.New("invalid verification code")
	// ErrUsernameTaken is returned when a username update violates uniqueness.
	ErrUsernameTaken = errors.New("failed to update username, possibly already taken")
	// ErrRateLimited is returned when a client exceeds its login quota.
	ErrRateLimited = errors.New("too many requests, please try again later")
	// ErrDelivery is returned when the code could not be delivered.
	ErrDelivery = errors.New("failed to send verification code")
)

// ValidationError describes malformed or missing input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validation creates a ValidationError with a user-facing message.
func Validation(message string) error {
	return &ValidationError{Message: message}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return NewHTTPError(http.StatusBadRequest, validationErr.Message, "VALIDATION_ERROR")
	}

	switch {
	case errors.Is(err, ErrInvalidCode):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidCode.Error(), "INVALID_CODE")
	case errors.Is(err, ErrAuthenticationRequired):
		return NewHTTPError(http.StatusUnauthorized, ErrAuthenticationRequired.Error(), "AUTHENTICATION_REQUIRED")
	case errors.Is(err, ErrPostNotOwned):
		return NewHTTPError(http.StatusForbidden, ErrPostNotOwned.Error(), "FORBIDDEN")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "NOT_FOUND")
	case errors.Is(err, ErrPostNotFound):
		return NewHTTPError(http.StatusNotFound, ErrPostNotFound.Error(), "NOT_FOUND")
	case errors.Is(err, ErrUsernameTaken):
		return NewHTTPError(http.StatusConflict, ErrUsernameTaken.Error(), "CONFLICT")
	case errors.Is(err, ErrRateLimited):
		return NewHTTPError(http.StatusTooManyRequests, ErrRateLimited.Error(), "RATE_LIMITED")
	case errors.Is(err, ErrDelivery):
		return NewHTTPError(http.StatusBadGateway, ErrDelivery.Error(), "DELIVERY_FAILED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

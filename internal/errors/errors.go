package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthenticated is returned when no bearer credential was supplied.
	ErrUnauthenticated = errors.New("access denied: no token provided")
	// ErrTokenExpired is returned when a token is past its expiry.
	ErrTokenExpired = errors.New("your session has expired, please log in again")
	// ErrTokenMalformed is returned when a token fails signature or claim checks.
	ErrTokenMalformed = errors.New("invalid token, please log in again")
	// ErrIdentityGone is returned when a valid token names a user that no longer exists.
	ErrIdentityGone = errors.New("user no longer exists")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrIncorrectPassword is returned when a password confirmation does not match.
	ErrIncorrectPassword = errors.New("password is incorrect")
	// ErrEmailTaken is returned when signing up with an email already in use.
	ErrEmailTaken = errors.New("an account with this email already exists")
	// ErrNotFound is returned when a resource is absent or not owned by the caller.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidID is returned when a path id is not a valid identifier.
	ErrInvalidID = errors.New("invalid id format")
	// ErrRateLimited is matched by every RateLimitError.
	ErrRateLimited = errors.New("too many requests, please try again later")
)

// ValidationError collects every input violation of a single request.
type ValidationError struct {
	Violations []string
}

// NewValidationError builds a ValidationError, or nil when there are no violations.
func NewValidationError(violations []string) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// RateLimitError is returned when a rate-limit policy rejects a request.
type RateLimitError struct {
	Policy            string
	Message           string
	RetryAfterSeconds int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited, retry after %ds", e.Policy, e.RetryAfterSeconds)
}

// Is lets errors.Is(err, ErrRateLimited) match any RateLimitError.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Status     string   `json:"status"`
	Error      string   `json:"message"`
	Code       string   `json:"code"`
	Errors     []string `json:"errors,omitempty"`
	RetryAfter int      `json:"retryAfter,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Details    []string
	RetryAfter int
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
	status := "fail"
	if e.StatusCode >= http.StatusInternalServerError {
		status = "error"
	}
	return ErrorResponse{
		Status:     status,
		Error:      e.Message,
		Code:       e.Code,
		Errors:     e.Details,
		RetryAfter: e.RetryAfter,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
// Anything it does not recognise is an internal error and carries no detail.
func MapErrorToHTTP(err error) *HTTPError {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		e := NewHTTPError(http.StatusBadRequest, "Validation failed", "VALIDATION_FAILED")
		e.Details = validationErr.Violations
		return e
	}

	var rateErr *RateLimitError
	if errors.As(err, &rateErr) {
		msg := rateErr.Message
		if msg == "" {
			msg = ErrRateLimited.Error()
		}
		e := NewHTTPError(http.StatusTooManyRequests, msg, "RATE_LIMITED")
		e.RetryAfter = rateErr.RetryAfterSeconds
		return e
	}

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, "Access denied. No token provided.", "UNAUTHENTICATED")
	case errors.Is(err, ErrTokenExpired):
		return NewHTTPError(http.StatusUnauthorized, "Your session has expired. Please log in again.", "TOKEN_EXPIRED")
	case errors.Is(err, ErrTokenMalformed):
		return NewHTTPError(http.StatusUnauthorized, "Invalid token. Please log in again.", "TOKEN_INVALID")
	case errors.Is(err, ErrIdentityGone):
		return NewHTTPError(http.StatusUnauthorized, "User no longer exists.", "IDENTITY_GONE")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, "Invalid email or password", "INVALID_CREDENTIALS")
	case errors.Is(err, ErrIncorrectPassword):
		return NewHTTPError(http.StatusUnauthorized, "Password is incorrect", "INCORRECT_PASSWORD")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, "An account with this email already exists", "EMAIL_TAKEN")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, "Resource not found", "NOT_FOUND")
	case errors.Is(err, ErrInvalidID):
		return NewHTTPError(http.StatusBadRequest, "Invalid ID format", "INVALID_ID")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

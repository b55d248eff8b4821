package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"expired", ErrTokenExpired, http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"malformed", ErrTokenMalformed, http.StatusUnauthorized, "TOKEN_INVALID"},
		{"identity gone", ErrIdentityGone, http.StatusUnauthorized, "IDENTITY_GONE"},
		{"wrapped not found", fmt.Errorf("get task: %w", ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"email taken", ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN"},
		{"storage failure", errors.New("connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.code, httpErr.Code)
		})
	}
}

func TestMapErrorToHTTP_StorageFailureHidesDetail(t *testing.T) {
	httpErr := MapErrorToHTTP(errors.New("dial tcp 10.0.0.1:3306: connection refused"))
	resp := httpErr.ToErrorResponse()

	assert.Equal(t, "error", resp.Status)
	assert.NotContains(t, resp.Error, "10.0.0.1")
}

func TestValidationError_CarriesAllViolations(t *testing.T) {
	err := NewValidationError([]string{"Title is required", "Priority must be one of: low, medium, high"})

	httpErr := MapErrorToHTTP(err)
	resp := httpErr.ToErrorResponse()

	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, "fail", resp.Status)
	assert.Len(t, resp.Errors, 2)
	assert.Nil(t, NewValidationError(nil))
}

func TestRateLimitError(t *testing.T) {
	err := &RateLimitError{Policy: "login", Message: "Too many login attempts", RetryAfterSeconds: 42}

	assert.True(t, errors.Is(err, ErrRateLimited))

	httpErr := MapErrorToHTTP(err)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	assert.Equal(t, 42, httpErr.ToErrorResponse().RetryAfter)
	assert.Equal(t, "Too many login attempts", httpErr.Message)
}

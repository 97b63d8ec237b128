package models

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorStatusCodes(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
	}{
		{NewValidationError("bad", nil), http.StatusBadRequest},
		{NewAuthenticationError("who", nil), http.StatusUnauthorized},
		{NewAuthorizationError("no"), http.StatusForbidden},
		{NewNotFoundError("App", nil), http.StatusNotFound},
		{NewRateLimitError("10 per minute"), http.StatusTooManyRequests},
		{NewTimeoutError("/v1/apps", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{NewInternalError("boom", nil), http.StatusInternalServerError},
		{&AppError{Type: ErrorTypeNotFound}, http.StatusNotFound},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.GetStatusCode(), tt.err.Message)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("loading: %w", NewTimeoutError("query", context.DeadlineExceeded))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "App not found", NewNotFoundError("App", nil).Error())
}

func TestSanitizeError(t *testing.T) {
	cause := errors.New("pq: password authentication failed")

	sanitized := SanitizeError(fmt.Errorf("wrapped: %w", NewNotFoundError("Run", cause)))
	assert.Equal(t, "Run not found", sanitized.Message)
	assert.Nil(t, sanitized.Cause)
	assert.Equal(t, http.StatusNotFound, sanitized.GetStatusCode())

	sanitized = SanitizeError(cause)
	assert.Equal(t, ErrorTypeInternal, sanitized.Type)
	assert.Equal(t, "internal server error", sanitized.Message)
	assert.NotContains(t, sanitized.Message, "password")
}

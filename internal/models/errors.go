package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeValidation represents validation errors (400)
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeAuthentication represents authentication errors (401)
	ErrorTypeAuthentication ErrorType = "authentication"
	// ErrorTypeAuthorization represents authorization errors (403)
	ErrorTypeAuthorization ErrorType = "authorization"
	// ErrorTypeNotFound represents resource not found errors (404)
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeRateLimit represents rate limiting errors (429)
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeTimeout represents timeout errors (504)
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeInternal represents internal server errors (500)
	ErrorTypeInternal ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Code       string    `json:"code,omitzero"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap allows error unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// GetStatusCode returns the HTTP status code for the error
func (e *AppError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}

	switch e.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case ErrorTypeAuthorization:
		return http.StatusForbidden
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

func NewAuthenticationError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthentication,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
		Cause:      cause,
	}
}

func NewAuthorizationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthorization,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewNotFoundError(resource string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    resource + " not found",
		StatusCode: http.StatusNotFound,
		Cause:      cause,
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(operation string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTimeout,
		Message:    fmt.Sprintf("operation %s timed out", operation),
		StatusCode: http.StatusGatewayTimeout,
		Cause:      cause,
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(limit string) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimit,
		Message:    "rate limit exceeded: " + limit,
		Code:       "RATE_LIMIT_EXCEEDED",
		StatusCode: http.StatusTooManyRequests,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    "internal server error",
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// SanitizeError sanitizes an error for external consumption
func SanitizeError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		// Return a copy without internal details
		return &AppError{
			Type:       appErr.Type,
			Message:    appErr.Message,
			Code:       appErr.Code,
			StatusCode: appErr.GetStatusCode(),
		}
	}

	return NewInternalError("an unexpected error occurred", err)
}

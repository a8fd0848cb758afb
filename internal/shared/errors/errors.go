package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with additional context
type AppError struct {
	Code    string // Error code for client
	Message string // Human-readable message
	Err     error  // Underlying error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeUpstream     = "UPSTREAM_ERROR"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an error with additional context
func Wrap(err error, code, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Validation creates a validation error
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// NotFound creates a not found error
func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

// Unauthorized creates an unauthorized error
func Unauthorized(message string, err error) *AppError {
	return &AppError{Code: ErrCodeUnauthorized, Message: message, Err: err}
}

// Upstream creates an error for a failed call to the finance API
func Upstream(message string, err error) *AppError {
	return &AppError{Code: ErrCodeUpstream, Message: message, Err: err}
}

// Internal creates an internal error
func Internal(message string, err error) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message, Err: err}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// HasCode reports whether err is an AppError carrying code
func HasCode(err error, code string) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}

// HTTPStatus maps an error to the status the web layer responds with
func HTTPStatus(err error) int {
	switch appErr := GetAppError(err); {
	case appErr == nil:
		return http.StatusInternalServerError
	case appErr.Code == ErrCodeValidation:
		return http.StatusBadRequest
	case appErr.Code == ErrCodeNotFound:
		return http.StatusNotFound
	case appErr.Code == ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case appErr.Code == ErrCodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

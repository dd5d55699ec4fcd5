package common

import (
	"errors"
	"net/http"
)

// Common error types
var (
	ErrNotFound       = errors.New("resource not found")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")
	ErrConflict       = errors.New("resource conflict")
	ErrValidation     = errors.New("validation error")
	ErrUpstream       = errors.New("upstream unavailable")
)

// Machine-readable error codes returned to clients.
const (
	CodeInvalidCoordinates = "invalid_coordinates"
	CodeInvalidEnum        = "invalid_enum_value"
	CodeMissingField       = "missing_required_field"
	CodeInvalidCount       = "invalid_count"
	CodeNotFound           = "not_found"
	CodeAlertExpired       = "alert_expired"
	CodeInternal           = "internal_error"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code      int    `json:"code"`
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message"`
	Err       error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped error for errors.Is checks
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewValidationError creates a 400 error with a machine-readable code
func NewValidationError(errorCode, message string) *AppError {
	return &AppError{
		Code:      http.StatusBadRequest,
		ErrorCode: errorCode,
		Message:   message,
		Err:       ErrValidation,
	}
}

// NewNotFoundError creates a 404 error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Code:      http.StatusNotFound,
		ErrorCode: CodeNotFound,
		Message:   message,
		Err:       ErrNotFound,
	}
}

// NewNotFoundErrorWithCode creates a 404 error carrying a specific
// machine-readable code, for resources that exist but are no longer
// addressable.
func NewNotFoundErrorWithCode(errorCode, message string) *AppError {
	return &AppError{
		Code:      http.StatusNotFound,
		ErrorCode: errorCode,
		Message:   message,
		Err:       ErrNotFound,
	}
}

// NewInternalError creates a 500 error wrapping the cause
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:      http.StatusInternalServerError,
		ErrorCode: CodeInternal,
		Message:   message,
		Err:       err,
	}
}

// AsAppError extracts an AppError from an error chain, or wraps it as a 500.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError("internal server error", err)
}

package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeInvalidCriteria  ErrorType = "invalid_criteria"
	ErrorTypeStoreUnavailable ErrorType = "store_unavailable"
	ErrorTypeNotFound         ErrorType = "not_found"
	ErrorTypeInternal         ErrorType = "internal"
)

// AppError represents an application error with additional context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Context map[string]any
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(errType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Context: make(map[string]any),
	}
}

func wrap(err error, errType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     err,
		Context: make(map[string]any),
	}
}

// WithContext attaches a log field to the error
func (e *AppError) WithContext(key string, value any) *AppError {
	e.Context[key] = value
	return e
}

// Is checks if the error is of a specific type
func Is(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

func InvalidCriteria(format string, args ...any) *AppError {
	return newError(ErrorTypeInvalidCriteria, fmt.Sprintf(format, args...))
}

func StoreUnavailable(message string, err error) *AppError {
	return wrap(err, ErrorTypeStoreUnavailable, message)
}

func NotFound(message string) *AppError {
	return newError(ErrorTypeNotFound, message)
}

func Internal(message string, err error) *AppError {
	return wrap(err, ErrorTypeInternal, message)
}

// TypeOf returns the type of the first AppError in err's chain. Errors
// outside the taxonomy are internal.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// Retryable reports whether the request may succeed unchanged later
func Retryable(err error) bool {
	return Is(err, ErrorTypeStoreUnavailable)
}

// Fields returns the context attached along err's chain as log fields
func Fields(err error) map[string]any {
	var appErr *AppError
	if !errors.As(err, &appErr) || len(appErr.Context) == 0 {
		return nil
	}
	return appErr.Context
}

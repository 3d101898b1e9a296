package errors

import (
	"errors"
	"fmt"
)

func newError(errorType ErrorType, subject string, value any, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Code:    types[errorType].code,
		Message: message,
		Subject: subject,
		Value:   value,
		Cause:   cause,
	}
}

// NewInvalidInputError reports a value outside the accepted set, such as an
// unknown priority or export format
func NewInvalidInputError(field string, value any, reason string) *AppError {
	return newError(ErrorTypeInvalidInput, field, value, fmt.Sprintf("invalid input for %s: %s", field, reason), nil)
}

// NewParseError reports malformed input or persisted data
func NewParseError(field string, value any, cause error) *AppError {
	return newError(ErrorTypeParse, field, value, fmt.Sprintf("cannot parse %s: %v", field, value), cause)
}

// NewStorageError reports a failed read or write of the persisted task list
func NewStorageError(operation string, cause error) *AppError {
	return newError(ErrorTypeStorage, operation, nil, fmt.Sprintf("storage operation failed: %s", operation), cause)
}

// NewPermissionError reports a file the process may not read or write
func NewPermissionError(operation string, resource string) *AppError {
	return newError(ErrorTypePermission, resource, operation, fmt.Sprintf("permission denied for %s on %s", operation, resource), nil)
}

// NewTimeoutError reports an operation that ran past its deadline
func NewTimeoutError(operation string, timeout any) *AppError {
	return newError(ErrorTypeTimeout, operation, timeout, fmt.Sprintf("operation timed out: %s", operation), nil)
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsType(errorType)
	}
	return false
}

// GetUserMessage returns a user-friendly error message
func GetUserMessage(err error) string {
	appErr, ok := AsAppError(err)
	if !ok {
		return err.Error()
	}
	info, known := types[appErr.Type]
	if !known {
		return "An unexpected error occurred. Please try again."
	}
	if info.userMessage != "" {
		return info.userMessage
	}
	return appErr.Message
}

// GetErrorCode returns the error code for the error
func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}

// ShouldLogError reports whether a front end should log err. Mistakes in user
// input are shown, not logged.
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		if info, known := types[appErr.Type]; known {
			return info.log
		}
	}
	return true
}

package errors

import (
	"fmt"
)

// ErrorType represents the category of error
type ErrorType int

const (
	ErrorTypeInvalidInput ErrorType = iota
	ErrorTypeParse
	ErrorTypeStorage
	ErrorTypePermission
	ErrorTypeTimeout
)

// typeInfo is how front ends treat an error type. An empty userMessage means
// the error's own message is safe to show.
type typeInfo struct {
	name        string
	code        string
	userMessage string
	log         bool
}

var types = map[ErrorType]typeInfo{
	ErrorTypeInvalidInput: {name: "invalid_input", code: "INVALID_INPUT"},
	ErrorTypeParse:        {name: "parse", code: "PARSE_ERROR"},
	ErrorTypeStorage: {
		name:        "storage",
		code:        "STORAGE_ERROR",
		userMessage: "The task list could not be read or saved. Please try again.",
		log:         true,
	},
	ErrorTypePermission: {name: "permission", code: "PERMISSION_DENIED", log: true},
	ErrorTypeTimeout: {
		name:        "timeout",
		code:        "TIMEOUT",
		userMessage: "The operation timed out. Please try again.",
		log:         true,
	},
}

// String returns the string representation of the error type
func (et ErrorType) String() string {
	if info, ok := types[et]; ok {
		return info.name
	}
	return "unknown"
}

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType
	Code    string
	Message string
	// Subject is the field, file or operation the error is about
	Subject string
	Value   any
	Cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another AppError of the same type and code, so callers can test
// against a template such as &AppError{Type: ErrorTypeStorage, Code: "STORAGE_ERROR"}
func (e *AppError) Is(target error) bool {
	if appErr, ok := target.(*AppError); ok {
		return e.Type == appErr.Type && e.Code == appErr.Code
	}
	return false
}

// IsType checks if this error is of the specified type
func (e *AppError) IsType(errorType ErrorType) bool {
	return e.Type == errorType
}

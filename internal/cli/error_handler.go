package cli

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/charmbracelet/log"

	"task-manager/internal/errors"
	"task-manager/internal/logging"
	"task-manager/internal/validation"
)

// ErrorHandler provides centralized error handling for command handlers
type ErrorHandler struct {
	logger *log.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *log.Logger) *ErrorHandler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ErrorHandler{logger: logger}
}

// Handle provides user-friendly error messages for validation and other errors
func (eh *ErrorHandler) Handle(operation string, err error) error {
	if err == nil {
		return nil
	}
	err = normalizeContextError(operation, err)

	if !validation.IsValidationError(err) && errors.ShouldLogError(err) {
		eh.logger.Error("command failed", "operation", operation, "code", errors.GetErrorCode(err), "err", err)
	}

	if validationErr, ok := validation.AsValidationError(err); ok {
		return fmt.Errorf("failed to %s: %s", operation, validationErr.GetUserFriendlyMessage())
	}

	if _, ok := errors.AsAppError(err); ok {
		return fmt.Errorf("failed to %s: %s", operation, errors.GetUserMessage(err))
	}

	return fmt.Errorf("failed to %s: %w", operation, err)
}

// HandleSimple provides user-friendly error messages without operation context
func (eh *ErrorHandler) HandleSimple(err error) error {
	if err == nil {
		return nil
	}

	if validationErr, ok := validation.AsValidationError(err); ok {
		return fmt.Errorf("%s", validationErr.GetUserFriendlyMessage())
	}

	if _, ok := errors.AsAppError(err); ok {
		return fmt.Errorf("%s", errors.GetUserMessage(err))
	}

	return err
}

// IsValidationError checks if an error is a rejected field or an unknown
// priority, status or format
func (eh *ErrorHandler) IsValidationError(err error) bool {
	return validation.IsValidationError(err) || errors.IsErrorType(err, errors.ErrorTypeInvalidInput)
}

// IsStorageError checks if an error came from reading or writing the task list
func (eh *ErrorHandler) IsStorageError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeStorage) || errors.IsErrorType(err, errors.ErrorTypePermission)
}

// IsParseError checks if an error is a malformed date or a corrupt task file
func (eh *ErrorHandler) IsParseError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeParse)
}

// GetErrorCode returns the error code for structured errors
func (eh *ErrorHandler) GetErrorCode(err error) string {
	return errors.GetErrorCode(err)
}

// normalizeContextError turns an expired command deadline into a timeout error.
func normalizeContextError(operation string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) && !errors.IsAppError(err) {
		return errors.NewTimeoutError(operation, "application timeout")
	}
	return err
}

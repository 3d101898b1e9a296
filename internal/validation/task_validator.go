package validation

import (
	"task-manager/internal/config"
	"task-manager/internal/domain"
)

// Form field names reported in FieldErrors
const (
	FieldName     = "name"
	FieldDueDate  = "due_date"
	FieldPriority = "priority"
	FieldStatus   = "status"
	FieldID       = "id"
)

// TaskValidator validates task submissions from the front ends
type TaskValidator struct {
	validator *Validator
}

// NewTaskValidator creates a new task validator with default limits
func NewTaskValidator() *TaskValidator {
	return &TaskValidator{
		validator: NewValidator(),
	}
}

// NewTaskValidatorWithConfig creates a task validator using cfg's limits
func NewTaskValidatorWithConfig(cfg *config.ValidationConfig) *TaskValidator {
	return &TaskValidator{
		validator: NewValidatorWithConfig(cfg),
	}
}

// ValidateTaskName validates a task name for creation
func (tv *TaskValidator) ValidateTaskName(name string) error {
	validationError := NewValidationError()
	trimmedName := tv.validator.TrimAndValidateString(name)

	if !tv.validator.IsNonEmptyString(trimmedName) {
		validationError.AddRequiredError(FieldName)
		return validationError
	}

	if !tv.validator.IsValidTaskNameLength(trimmedName) {
		validationError.AddInvalidLengthError(FieldName, trimmedName, tv.validator.TaskNameMinLength(), tv.validator.TaskNameMaxLength())
	}

	if !tv.validator.IsValidUTF8(trimmedName) || tv.validator.HasControlCharacters(trimmedName) {
		validationError.AddInvalidCharacterError(FieldName, trimmedName)
	}

	return validationError.ErrOrNil()
}

// ValidateDueDate checks the strict YYYY-MM-DD format and, unless past due
// dates are allowed, that the date is not before today
func (tv *TaskValidator) ValidateDueDate(dueDate string) error {
	validationError := NewValidationError()

	if dueDate == "" {
		validationError.AddRequiredError(FieldDueDate)
		return validationError
	}

	due, err := domain.ParseDueDate(dueDate)
	if err != nil {
		validationError.AddInvalidFormatError(FieldDueDate, dueDate, "YYYY-MM-DD")
		return validationError
	}

	if !tv.validator.AllowPastDue() && !tv.validator.IsNotBeforeToday(due) {
		validationError.AddInvalidRangeError(FieldDueDate, dueDate, "must not be before today")
	}

	return validationError.ErrOrNil()
}

// ValidatePriority checks priority against the Low/Medium/High enum
func (tv *TaskValidator) ValidatePriority(priority string) error {
	validationError := NewValidationError()

	if priority == "" {
		validationError.AddRequiredError(FieldPriority)
	} else if !domain.Priority(priority).IsValid() {
		validationError.AddInvalidValueError(FieldPriority, priority, "must be one of Low, Medium, High")
	}

	return validationError.ErrOrNil()
}

// ValidateStatus checks status against the Pending/Completed enum
func (tv *TaskValidator) ValidateStatus(status string) error {
	if domain.Status(status).IsValid() {
		return nil
	}
	validationError := NewValidationError()
	validationError.AddInvalidValueError(FieldStatus, status, "must be one of Pending, Completed")
	return validationError
}

// ValidateTaskForCreation validates every field of a new task submission
// and reports all failures together
func (tv *TaskValidator) ValidateTaskForCreation(name, dueDate, priority string) error {
	validationError := NewValidationError()
	validationError.Merge(tv.ValidateTaskName(name))
	validationError.Merge(tv.ValidateDueDate(dueDate))
	validationError.Merge(tv.ValidatePriority(priority))
	return validationError.ErrOrNil()
}

// GetValidTaskName returns a cleaned task name if valid
func (tv *TaskValidator) GetValidTaskName(name string) (string, error) {
	if err := tv.ValidateTaskName(name); err != nil {
		return "", err
	}
	return tv.validator.TrimAndValidateString(name), nil
}

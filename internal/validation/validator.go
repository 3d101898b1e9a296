package validation

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"task-manager/internal/config"
	"task-manager/internal/domain"
)

// timeNow is swapped in tests to pin "today"
var timeNow = time.Now

// Validator provides common validation utilities
type Validator struct {
	config *config.ValidationConfig
}

// NewValidator creates a new validator instance using default limits
func NewValidator() *Validator {
	return &Validator{}
}

// NewValidatorWithConfig creates a new validator instance with configuration
func NewValidatorWithConfig(cfg *config.ValidationConfig) *Validator {
	return &Validator{config: cfg}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks if the trimmed rune count of s is within [min, max]
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := utf8.RuneCountInString(strings.TrimSpace(s))
	return length >= min && length <= max
}

// IsValidTaskNameLength checks if a task name length is within configured limits
func (v *Validator) IsValidTaskNameLength(name string) bool {
	return v.IsValidStringLength(name, v.TaskNameMinLength(), v.TaskNameMaxLength())
}

// HasControlCharacters reports whether s contains newlines, tabs or other control runes
func (v *Validator) HasControlCharacters(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}

// IsValidUTF8 reports whether s is well-formed UTF-8. Invalid bytes would be
// rewritten as U+FFFD when the task list is saved.
func (v *Validator) IsValidUTF8(s string) bool {
	return utf8.ValidString(s)
}

// IsNotBeforeToday reports whether date falls on or after the current calendar day
func (v *Validator) IsNotBeforeToday(date time.Time) bool {
	y, m, d := timeNow().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return !date.Before(today)
}

// AllowPastDue reports whether due dates before today are accepted
func (v *Validator) AllowPastDue() bool {
	return v.config != nil && v.config.AllowPastDue
}

// TrimAndValidateString trims whitespace and returns the cleaned string
func (v *Validator) TrimAndValidateString(s string) string {
	return strings.TrimSpace(s)
}

// TaskNameMinLength returns configured minimum task name length or default
func (v *Validator) TaskNameMinLength() int {
	if v.config != nil {
		return v.config.TaskNameMinLength
	}
	return 1
}

// TaskNameMaxLength returns configured maximum task name length or default
func (v *Validator) TaskNameMaxLength() int {
	if v.config != nil {
		return v.config.TaskNameMaxLength
	}
	return 255
}

// Today returns the current date as YYYY-MM-DD
func Today() string {
	return timeNow().Format(domain.DueDateLayout)
}

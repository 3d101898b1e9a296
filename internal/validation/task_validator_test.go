package validation

import (
	"strings"
	"testing"

	"task-manager/internal/config"
)

func TestTaskValidator_ValidateTaskName(t *testing.T) {
	validator := NewTaskValidator()

	tests := []struct {
		name        string
		input       string
		expectError bool
		errorType   ValidationErrorType
	}{
		{"Valid name", "Buy milk", false, ""},
		{"Empty name", "", true, ErrorTypeRequired},
		{"Whitespace only", "   ", true, ErrorTypeRequired},
		{"Too long name", strings.Repeat("a", 256), true, ErrorTypeInvalidLength},
		{"Valid long name", strings.Repeat("a", 255), false, ""},
		{"Symbols allowed", "Pay bill @ bank #3 (50%)", false, ""},
		{"Newline rejected", "Buy\nmilk", true, ErrorTypeInvalidCharacter},
		{"Invalid UTF-8 rejected", "Buy \xffmilk", true, ErrorTypeInvalidCharacter},
		{"Non-ASCII allowed", "Café au lait ☕", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateTaskName(tt.input)

			if !tt.expectError {
				if err != nil {
					t.Errorf("ValidateTaskName(%q) expected no error but got %v", tt.input, err)
				}
				return
			}

			validationErr, ok := AsValidationError(err)
			if !ok {
				t.Fatalf("ValidateTaskName(%q) expected ValidationError but got %T", tt.input, err)
			}
			if len(validationErr.Errors) == 0 {
				t.Fatalf("ValidateTaskName(%q) expected validation errors but got none", tt.input)
			}
			if validationErr.Errors[0].Type != tt.errorType {
				t.Errorf("ValidateTaskName(%q) expected error type %v but got %v", tt.input, tt.errorType, validationErr.Errors[0].Type)
			}
			if validationErr.Errors[0].Field != FieldName {
				t.Errorf("expected field %q, got %q", FieldName, validationErr.Errors[0].Field)
			}
		})
	}
}

func TestTaskValidator_ValidateDueDate(t *testing.T) {
	pinToday(t, "2025-06-10")
	validator := NewTaskValidator()

	tests := []struct {
		name      string
		input     string
		errorType ValidationErrorType
	}{
		{"Today", "2025-06-10", ""},
		{"Future", "2026-01-01", ""},
		{"Yesterday", "2025-06-09", ErrorTypeInvalidRange},
		{"Empty", "", ErrorTypeRequired},
		{"Invalid month and day", "2025-13-40", ErrorTypeInvalidFormat},
		{"Wrong layout", "10/06/2025", ErrorTypeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateDueDate(tt.input)

			if tt.errorType == "" {
				if err != nil {
					t.Errorf("ValidateDueDate(%q) expected no error but got %v", tt.input, err)
				}
				return
			}

			validationErr, ok := AsValidationError(err)
			if !ok {
				t.Fatalf("ValidateDueDate(%q) expected ValidationError but got %v", tt.input, err)
			}
			if validationErr.Errors[0].Type != tt.errorType {
				t.Errorf("ValidateDueDate(%q) expected %v but got %v", tt.input, tt.errorType, validationErr.Errors[0].Type)
			}
		})
	}
}

func TestTaskValidator_AllowPastDue(t *testing.T) {
	pinToday(t, "2025-06-10")
	validator := NewTaskValidatorWithConfig(&config.ValidationConfig{
		TaskNameMinLength: 1,
		TaskNameMaxLength: 255,
		AllowPastDue:      true,
	})

	if err := validator.ValidateDueDate("2020-01-01"); err != nil {
		t.Errorf("expected past due date to be accepted, got %v", err)
	}
	if err := validator.ValidateDueDate("2020-1-1"); err == nil {
		t.Error("expected malformed date to be rejected even when past dates are allowed")
	}
}

func TestTaskValidator_ValidatePriority(t *testing.T) {
	validator := NewTaskValidator()

	for _, valid := range []string{"Low", "Medium", "High"} {
		if err := validator.ValidatePriority(valid); err != nil {
			t.Errorf("ValidatePriority(%q) unexpected error %v", valid, err)
		}
	}

	for _, invalid := range []string{"low", "Urgent", ""} {
		if err := validator.ValidatePriority(invalid); !IsValidationError(err) {
			t.Errorf("ValidatePriority(%q) expected ValidationError, got %v", invalid, err)
		}
	}
}

func TestTaskValidator_ValidateStatus(t *testing.T) {
	validator := NewTaskValidator()

	if err := validator.ValidateStatus("Pending"); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	if err := validator.ValidateStatus("Completed"); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	if err := validator.ValidateStatus("Done"); !IsValidationError(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestTaskValidator_ValidateTaskForCreation(t *testing.T) {
	pinToday(t, "2025-06-10")
	validator := NewTaskValidator()

	if err := validator.ValidateTaskForCreation("Buy milk", "2025-06-10", "Low"); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	err := validator.ValidateTaskForCreation("  ", "2025-06-01", "Urgent")
	validationErr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	fields := validationErr.FieldMessages()
	for _, field := range []string{FieldName, FieldDueDate, FieldPriority} {
		if _, ok := fields[field]; !ok {
			t.Errorf("expected an error for field %q, got %v", field, fields)
		}
	}
}

func TestTaskValidator_GetValidTaskName(t *testing.T) {
	validator := NewTaskValidator()

	name, err := validator.GetValidTaskName("  Buy milk  ")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if name != "Buy milk" {
		t.Errorf("GetValidTaskName() = %q, expected trimmed name", name)
	}

	if _, err := validator.GetValidTaskName(""); err == nil {
		t.Error("expected error for empty name")
	}
}

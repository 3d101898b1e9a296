package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"task-manager/internal/errors"
)

// DueDateLayout is the strict YYYY-MM-DD layout used for due dates everywhere.
const DueDateLayout = "2006-01-02"

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities returns every priority in display order.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// ParsePriority converts a string into a Priority. Matching is exact.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.IsValid() {
		return "", errors.NewInvalidInputError("priority", s, "must be one of Low, Medium, High")
	}
	return p, nil
}

// IsValid reports whether p is one of the known priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (p Priority) String() string {
	return string(p)
}

// Status is the completion state of a task.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
)

// Statuses returns every status in display order.
func Statuses() []Status {
	return []Status{StatusPending, StatusCompleted}
}

// ParseStatus converts a string into a Status. Matching is exact.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", errors.NewInvalidInputError("status", s, "must be one of Pending, Completed")
	}
	return st, nil
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusCompleted
}

func (s Status) String() string {
	return string(s)
}

// ParseDueDate parses a due date under the strict YYYY-MM-DD layout.
func ParseDueDate(s string) (time.Time, error) {
	d, err := time.Parse(DueDateLayout, s)
	if err != nil {
		return time.Time{}, errors.NewParseError("due_date", s, err)
	}
	return d, nil
}

// FormatDueDate formats a due date as YYYY-MM-DD.
func FormatDueDate(t time.Time) string {
	return t.Format(DueDateLayout)
}

// Task represents a single to-do item in the domain model.
// ID is a per-process handle and is never persisted.
type Task struct {
	ID       uuid.UUID
	Name     string
	DueDate  time.Time
	Priority Priority
	Status   Status
}

// NewTask creates a pending Task. It fails if dueDate is not a valid
// YYYY-MM-DD date or priority is unknown.
func NewTask(name, dueDate, priority string) (Task, error) {
	due, err := ParseDueDate(dueDate)
	if err != nil {
		return Task{}, err
	}
	p, err := ParsePriority(priority)
	if err != nil {
		return Task{}, err
	}
	return Task{
		ID:       uuid.New(),
		Name:     name,
		DueDate:  due,
		Priority: p,
		Status:   StatusPending,
	}, nil
}

// MarkCompleted sets the status to Completed. Calling it again has no effect.
func (t *Task) MarkCompleted() {
	t.Status = StatusCompleted
}

// IsCompleted reports whether the task has been completed.
func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// IsOverdue reports whether a pending task was due before the calendar day of today.
func (t Task) IsOverdue(today time.Time) bool {
	if t.IsCompleted() {
		return false
	}
	y, m, d := today.Date()
	return t.DueDate.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// Record returns the serialized view of the task.
func (t Task) Record() Record {
	return Record{
		Task:     t.Name,
		DueDate:  FormatDueDate(t.DueDate),
		Priority: t.Priority.String(),
		Status:   t.Status.String(),
	}
}

// String returns a one-line description for display purposes.
func (t Task) String() string {
	return fmt.Sprintf("%s | %s | Priority: %s | Status: %s", t.Name, FormatDueDate(t.DueDate), t.Priority, t.Status)
}

// Record is the serialized form of a Task, used both for persistence and display.
// Field order matches the persisted file.
type Record struct {
	Task     string `json:"Task"`
	DueDate  string `json:"Due Date"`
	Priority string `json:"Priority"`
	Status   string `json:"Status"`
}

// FromRecord rebuilds a Task from its serialized form. The persisted status
// is kept so a save/load round trip is lossless.
func FromRecord(r Record) (Task, error) {
	task, err := NewTask(r.Task, r.DueDate, r.Priority)
	if err != nil {
		return Task{}, err
	}
	status, err := ParseStatus(r.Status)
	if err != nil {
		return Task{}, err
	}
	task.Status = status
	return task, nil
}

package sqlite

import "task-manager/internal/domain"

// Task is a row of the tasks table. Position preserves insertion order.
type Task struct {
	Position int64
	Name     string
	DueDate  string
	Priority string
	Status   string
}

// toRow converts a serialized record into a row at the given position
func toRow(position int64, record domain.Record) Task {
	return Task{
		Position: position,
		Name:     record.Task,
		DueDate:  record.DueDate,
		Priority: record.Priority,
		Status:   record.Status,
	}
}

// toRecord converts a row back into its serialized record
func (t Task) toRecord() domain.Record {
	return domain.Record{
		Task:     t.Name,
		DueDate:  t.DueDate,
		Priority: t.Priority,
		Status:   t.Status,
	}
}

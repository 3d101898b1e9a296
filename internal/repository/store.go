// Package repository defines how the task list is persisted between runs.
package repository

import (
	"context"

	"task-manager/internal/domain"
)

// Store persists the complete, ordered task list. Implementations always
// read and write the whole list; there are no partial updates.
type Store interface {
	// Load returns the persisted records in order. It returns (nil, nil)
	// when nothing has been persisted yet.
	Load(ctx context.Context) ([]domain.Record, error)

	// Save replaces everything persisted with records.
	Save(ctx context.Context, records []domain.Record) error

	// Close releases any resources held by the store.
	Close() error
}

package sqlite

import (
	"context"
	"database/sql"

	"task-manager/internal/errors"
)

// HandleStorageError converts database errors to structured app errors
func HandleStorageError(operation string, err error) error {
	return errors.NewStorageError(operation, err)
}

// QueryMultiple executes a query that returns multiple rows and scans them
func QueryMultiple[T any](ctx context.Context, db *sql.DB, query string, scanFunc func(Rows) ([]*T, error), entityType string, args ...any) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, HandleStorageError("query "+entityType, err)
	}
	defer rows.Close()

	results, err := scanFunc(rows)
	if err != nil {
		return nil, HandleStorageError("scan "+entityType, err)
	}

	return results, nil
}

// WithTransaction runs fn inside a transaction, rolling back on any error
func WithTransaction(ctx context.Context, db *sql.DB, operation string, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return HandleStorageError("begin "+operation, err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return HandleStorageError(operation, err)
	}

	if err := tx.Commit(); err != nil {
		return HandleStorageError("commit "+operation, err)
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/repository"
	"task-manager/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Store keeps the task list in an embedded SQLite database.
type Store struct {
	db *sql.DB
}

var _ repository.Store = (*Store)(nil)

// New creates a new SQLite store, creating the parent directory and running migrations
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, errors.NewStorageError("create database directory", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewStorageError("open database", err)
	}

	// A single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := migrations.Up(context.Background(), db); err != nil {
		db.Close()
		return nil, errors.NewStorageError("run migrations", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns all persisted tasks in insertion order. An empty table loads as nil.
func (s *Store) Load(ctx context.Context) ([]domain.Record, error) {
	query := `
	SELECT position, name, due_date, priority, status
	FROM tasks
	ORDER BY position ASC`

	rows, err := QueryMultiple(ctx, s.db, query, ScanTasks, "tasks")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]domain.Record, len(rows))
	for i, row := range rows {
		records[i] = row.toRecord()
	}
	return records, nil
}

// Save replaces the whole table with records inside one transaction
func (s *Store) Save(ctx context.Context, records []domain.Record) error {
	return WithTransaction(ctx, s.db, "save tasks", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (position, name, due_date, priority, status)
		VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, record := range records {
			row := toRow(int64(i+1), record)
			if _, err := stmt.ExecContext(ctx, row.Position, row.Name, row.DueDate, row.Priority, row.Status); err != nil {
				return err
			}
		}
		return nil
	})
}

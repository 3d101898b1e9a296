// Package manager owns the in-memory task list and keeps it in sync with
// the persisted copy. Every mutating operation rewrites the whole list.
package manager

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"task-manager/internal/domain"
	"task-manager/internal/repository"
)

// TaskManager holds the ordered task list and persists it through a Store.
// Operations are serialized; each one, including its write, finishes before
// the next starts.
type TaskManager struct {
	mu     sync.Mutex
	tasks  []domain.Task
	store  repository.Store
	logger *log.Logger
	mapper *domain.RecordMapper
}

// New creates an empty TaskManager. Call Load to read the persisted list.
func New(store repository.Store, logger *log.Logger) *TaskManager {
	return &TaskManager{
		store:  store,
		logger: logger,
		mapper: domain.NewRecordMapper(),
	}
}

// Load replaces the in-memory list with the persisted one. Nothing
// persisted yet loads as an empty list. On error the current list is kept.
func (m *TaskManager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	records, err := m.store.Load(ctx)
	if err != nil {
		return err
	}

	tasks, err := m.mapper.FromRecordSlice(records)
	if err != nil {
		return err
	}

	m.tasks = tasks
	m.logger.Debug("loaded tasks", "count", len(tasks))
	return nil
}

// Save overwrites the persisted list with the in-memory one.
func (m *TaskManager) Save(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.save(ctx)
}

func (m *TaskManager) save(ctx context.Context) error {
	if err := m.store.Save(ctx, m.mapper.ToRecordSlice(m.tasks)); err != nil {
		return err
	}
	m.logger.Debug("saved tasks", "count", len(m.tasks))
	return nil
}

// Add appends a new pending task and persists the list. Names need not be
// unique. If the save fails the task stays in memory and the error is returned.
func (m *TaskManager) Add(ctx context.Context, name, dueDate, priority string) (domain.Task, error) {
	task, err := domain.NewTask(name, dueDate, priority)
	if err != nil {
		return domain.Task{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.tasks = append(m.tasks, task)
	m.logger.Info("task added", "name", task.Name, "due", domain.FormatDueDate(task.DueDate), "priority", task.Priority)

	if err := m.save(ctx); err != nil {
		return task, err
	}
	return task, nil
}

// Delete removes every task named name, keeps the rest in order and
// persists. It returns the number removed; zero is not an error.
func (m *TaskManager) Delete(ctx context.Context, name string) (int, error) {
	return m.remove(ctx, func(t domain.Task) bool { return t.Name == name }, "name", name)
}

// DeleteByID removes the single task with the given ID and persists.
func (m *TaskManager) DeleteByID(ctx context.Context, id uuid.UUID) (int, error) {
	return m.remove(ctx, func(t domain.Task) bool { return t.ID == id }, "id", id.String())
}

// Complete marks every task named name as completed and persists. It
// returns the number of matching tasks; zero is not an error.
func (m *TaskManager) Complete(ctx context.Context, name string) (int, error) {
	return m.complete(ctx, func(t domain.Task) bool { return t.Name == name }, "name", name)
}

// CompleteByID marks the single task with the given ID as completed and persists.
func (m *TaskManager) CompleteByID(ctx context.Context, id uuid.UUID) (int, error) {
	return m.complete(ctx, func(t domain.Task) bool { return t.ID == id }, "id", id.String())
}

func (m *TaskManager) remove(ctx context.Context, match func(domain.Task) bool, key, value string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := make([]domain.Task, 0, len(m.tasks))
	for _, task := range m.tasks {
		if !match(task) {
			kept = append(kept, task)
		}
	}
	removed := len(m.tasks) - len(kept)
	m.tasks = kept
	m.logger.Info("tasks deleted", key, value, "count", removed)

	return removed, m.save(ctx)
}

func (m *TaskManager) complete(ctx context.Context, match func(domain.Task) bool, key, value string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := 0
	for i := range m.tasks {
		if match(m.tasks[i]) {
			m.tasks[i].MarkCompleted()
			matched++
		}
	}
	m.logger.Info("tasks completed", key, value, "count", matched)

	return matched, m.save(ctx)
}

// ListAll returns the serialized view of every task in insertion order.
func (m *TaskManager) ListAll() []domain.Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.mapper.ToRecordSlice(m.tasks)
}

// Tasks returns a copy of the task list, IDs included.
func (m *TaskManager) Tasks() []domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make([]domain.Task, len(m.tasks))
	copy(tasks, m.tasks)
	return tasks
}

// Len returns the number of tasks.
func (m *TaskManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.tasks)
}

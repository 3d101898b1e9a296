package api

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"task-manager/internal/config"
	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/validation"
)

// timeNow is replaced in tests to pin the overdue calculation
var timeNow = time.Now

// TaskManager is the subset of manager.TaskManager the API drives.
type TaskManager interface {
	Add(ctx context.Context, name, dueDate, priority string) (domain.Task, error)
	Complete(ctx context.Context, name string) (int, error)
	Delete(ctx context.Context, name string) (int, error)
	CompleteByID(ctx context.Context, id uuid.UUID) (int, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (int, error)
	ListAll() []domain.Record
	Tasks() []domain.Task
}

// Stats summarizes the task list.
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
}

// API is the contract every front end (CLI, web, TUI) uses. Input is
// validated here; the TaskManager underneath accepts whatever it is given.
type API interface {
	// AddTask validates the submission and adds a pending task.
	AddTask(ctx context.Context, name, dueDate, priority string) (*domain.Task, error)

	// ListTasks returns the serialized view in insertion order, narrowed by opts.
	ListTasks(ctx context.Context, opts domain.ListOptions) ([]domain.Record, error)

	// Tasks returns the tasks with their IDs, for pickers.
	Tasks(ctx context.Context) ([]domain.Task, error)

	// CompleteTask and DeleteTask act on every task with exactly this name.
	CompleteTask(ctx context.Context, name string) (int, error)
	DeleteTask(ctx context.Context, name string) (int, error)

	// CompleteTaskByID and DeleteTaskByID act on the one task with this ID.
	CompleteTaskByID(ctx context.Context, id string) (int, error)
	DeleteTaskByID(ctx context.Context, id string) (int, error)

	Stats(ctx context.Context) (*Stats, error)
}

type apiImpl struct {
	manager       TaskManager
	mapper        *domain.RecordMapper
	taskValidator *validation.TaskValidator
}

// New creates a new API instance with default validation limits.
func New(manager TaskManager) API {
	return &apiImpl{
		manager:       manager,
		mapper:        domain.NewRecordMapper(),
		taskValidator: validation.NewTaskValidator(),
	}
}

// NewWithConfig creates a new API instance using the configured validation limits.
func NewWithConfig(manager TaskManager, cfg *config.Config) API {
	return &apiImpl{
		manager:       manager,
		mapper:        domain.NewRecordMapper(),
		taskValidator: validation.NewTaskValidatorWithConfig(&cfg.Validation),
	}
}

func (a *apiImpl) AddTask(ctx context.Context, name, dueDate, priority string) (*domain.Task, error) {
	if err := a.taskValidator.ValidateTaskForCreation(name, dueDate, priority); err != nil {
		return nil, err
	}

	cleanedName, err := a.taskValidator.GetValidTaskName(name)
	if err != nil {
		return nil, err
	}

	task, err := a.manager.Add(ctx, cleanedName, dueDate, priority)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (a *apiImpl) ListTasks(ctx context.Context, opts domain.ListOptions) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.IsEmpty() {
		return a.manager.ListAll(), nil
	}

	var matched []domain.Task
	for _, task := range a.manager.Tasks() {
		if opts.Matches(task) {
			matched = append(matched, task)
		}
	}
	return a.mapper.ToRecordSlice(matched), nil
}

func (a *apiImpl) Tasks(ctx context.Context) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.manager.Tasks(), nil
}

func (a *apiImpl) CompleteTask(ctx context.Context, name string) (int, error) {
	if err := requireName(name); err != nil {
		return 0, err
	}
	return a.manager.Complete(ctx, name)
}

func (a *apiImpl) DeleteTask(ctx context.Context, name string) (int, error) {
	if err := requireName(name); err != nil {
		return 0, err
	}
	return a.manager.Delete(ctx, name)
}

func (a *apiImpl) CompleteTaskByID(ctx context.Context, id string) (int, error) {
	taskID, err := parseTaskID(id)
	if err != nil {
		return 0, err
	}
	return a.manager.CompleteByID(ctx, taskID)
}

func (a *apiImpl) DeleteTaskByID(ctx context.Context, id string) (int, error) {
	taskID, err := parseTaskID(id)
	if err != nil {
		return 0, err
	}
	return a.manager.DeleteByID(ctx, taskID)
}

func (a *apiImpl) Stats(ctx context.Context) (*Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	today := timeNow()
	stats := &Stats{}
	for _, task := range a.manager.Tasks() {
		stats.Total++
		if task.IsCompleted() {
			stats.Completed++
			continue
		}
		stats.Pending++
		if task.IsOverdue(today) {
			stats.Overdue++
		}
	}
	return stats, nil
}

// requireName rejects blank names; matching itself stays exact.
func requireName(name string) error {
	if strings.TrimSpace(name) == "" {
		validationError := validation.NewValidationError()
		validationError.AddRequiredError(validation.FieldName)
		return validationError
	}
	return nil
}

func parseTaskID(id string) (uuid.UUID, error) {
	taskID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, errors.NewInvalidInputError(validation.FieldID, id, "must be a task ID")
	}
	return taskID, nil
}

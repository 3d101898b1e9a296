package cli

import (
	"context"

	"github.com/stretchr/testify/mock"

	"task-manager/internal/api"
	"task-manager/internal/domain"
)

// mockAPI implements api.API with testify expectations
type mockAPI struct {
	mock.Mock
}

var _ api.API = (*mockAPI)(nil)

func (m *mockAPI) AddTask(ctx context.Context, name, dueDate, priority string) (*domain.Task, error) {
	args := m.Called(ctx, name, dueDate, priority)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *mockAPI) ListTasks(ctx context.Context, opts domain.ListOptions) ([]domain.Record, error) {
	args := m.Called(ctx, opts)
	records, _ := args.Get(0).([]domain.Record)
	return records, args.Error(1)
}

func (m *mockAPI) Tasks(ctx context.Context) ([]domain.Task, error) {
	args := m.Called(ctx)
	tasks, _ := args.Get(0).([]domain.Task)
	return tasks, args.Error(1)
}

func (m *mockAPI) CompleteTask(ctx context.Context, name string) (int, error) {
	args := m.Called(ctx, name)
	return args.Int(0), args.Error(1)
}

func (m *mockAPI) DeleteTask(ctx context.Context, name string) (int, error) {
	args := m.Called(ctx, name)
	return args.Int(0), args.Error(1)
}

func (m *mockAPI) CompleteTaskByID(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *mockAPI) DeleteTaskByID(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *mockAPI) Stats(ctx context.Context) (*api.Stats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*api.Stats)
	return stats, args.Error(1)
}

func newTask(name, due, priority string, completed bool) domain.Task {
	task, err := domain.NewTask(name, due, priority)
	if err != nil {
		panic(err)
	}
	if completed {
		task.MarkCompleted()
	}
	return task
}

func recordsOf(tasks ...domain.Task) []domain.Record {
	out := make([]domain.Record, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Record())
	}
	return out
}

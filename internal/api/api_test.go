package api

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager/internal/config"
	"task-manager/internal/domain"
	apperrors "task-manager/internal/errors"
	"task-manager/internal/logging"
	"task-manager/internal/manager"
	"task-manager/internal/repository/jsonfile"
	"task-manager/internal/validation"
)

func pinNow(t *testing.T, date string) {
	t.Helper()
	fixed, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)

	original := timeNow
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = original })
}

func setupTestAPI(t *testing.T) (API, *manager.TaskManager, *jsonfile.Store) {
	t.Helper()
	store, err := jsonfile.New(filepath.Join(t.TempDir(), "tasks.json"))
	require.NoError(t, err)

	m := manager.New(store, logging.NewNop())
	require.NoError(t, m.Load(context.Background()))

	cfg := config.NewConfig()
	cfg.Validation.AllowPastDue = true
	return NewWithConfig(m, cfg), m, store
}

func TestAPI_AddAndList(t *testing.T) {
	a, _, store := setupTestAPI(t)
	ctx := context.Background()

	task, err := a.AddTask(ctx, "  Buy milk  ", "2025-06-01", "Low")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Name, "name is trimmed before storing")
	assert.Equal(t, domain.StatusPending, task.Status)

	records, err := a.ListTasks(ctx, domain.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []domain.Record{{Task: "Buy milk", DueDate: "2025-06-01", Priority: "Low", Status: "Pending"}}, records)

	persisted, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, records, persisted)
}

func TestAPI_AddTask_Validation(t *testing.T) {
	store, err := jsonfile.New(filepath.Join(t.TempDir(), "tasks.json"))
	require.NoError(t, err)
	m := manager.New(store, logging.NewNop())
	a := New(m)
	ctx := context.Background()

	tests := []struct {
		name     string
		taskName string
		due      string
		priority string
		field    string
	}{
		{"empty name", "", "2030-01-01", "Low", validation.FieldName},
		{"blank name", "   ", "2030-01-01", "Low", validation.FieldName},
		{"invalid UTF-8 name", "Buy \xffmilk", "2030-01-01", "Low", validation.FieldName},
		{"malformed date", "Task", "2030-13-40", "Low", validation.FieldDueDate},
		{"unknown priority", "Task", "2030-01-01", "Urgent", validation.FieldPriority},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := a.AddTask(ctx, tt.taskName, tt.due, tt.priority)
			require.Error(t, err)
			assert.Nil(t, task)

			ve, ok := validation.AsValidationError(err)
			require.True(t, ok, "expected ValidationError, got %T", err)
			assert.Contains(t, ve.FieldMessages(), tt.field)
		})
	}

	assert.Empty(t, m.ListAll(), "nothing is added when validation fails")

	records, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, records, "nothing is saved when validation fails")
}

func TestAPI_NamesSurviveReload(t *testing.T) {
	a, _, store := setupTestAPI(t)
	ctx := context.Background()

	names := []string{"Café au lait", "買い物 ☕", "Pay bill @ bank (50%)"}
	for _, name := range names {
		_, err := a.AddTask(ctx, name, "2025-06-01", "Low")
		require.NoError(t, err)
	}

	reloaded := manager.New(store, logging.NewNop())
	require.NoError(t, reloaded.Load(ctx))
	records := reloaded.ListAll()
	require.Len(t, records, len(names))
	for i, name := range names {
		assert.Equal(t, name, records[i].Task)
	}

	n, err := New(reloaded).CompleteTask(ctx, names[1])
	require.NoError(t, err)
	assert.Equal(t, 1, n, "name-based completion still matches after a reload")
}

func TestAPI_AddTask_RejectsPastDate(t *testing.T) {
	store, err := jsonfile.New(filepath.Join(t.TempDir(), "tasks.json"))
	require.NoError(t, err)
	a := New(manager.New(store, logging.NewNop()))

	_, err = a.AddTask(context.Background(), "Old", "2000-01-01", "Low")
	ve, ok := validation.AsValidationError(err)
	require.True(t, ok)
	require.Len(t, ve.Errors, 1)
	assert.Equal(t, validation.ErrorTypeInvalidRange, ve.Errors[0].Type)
}

func TestAPI_ListTasks_Filters(t *testing.T) {
	a, _, _ := setupTestAPI(t)
	ctx := context.Background()

	for _, in := range []struct{ name, due, priority string }{
		{"Buy milk", "2025-06-01", "Low"},
		{"Write report", "2025-06-05", "High"},
		{"Buy bread", "2025-06-07", "High"},
	} {
		_, err := a.AddTask(ctx, in.name, in.due, in.priority)
		require.NoError(t, err)
	}
	_, err := a.CompleteTask(ctx, "Write report")
	require.NoError(t, err)

	completed := domain.StatusCompleted
	high := domain.PriorityHigh
	buy := "BUY"

	tests := []struct {
		name     string
		opts     domain.ListOptions
		expected []string
	}{
		{"no filter", domain.ListOptions{}, []string{"Buy milk", "Write report", "Buy bread"}},
		{"status", domain.ListOptions{Status: &completed}, []string{"Write report"}},
		{"priority", domain.ListOptions{Priority: &high}, []string{"Write report", "Buy bread"}},
		{"search is case-insensitive", domain.ListOptions{NameContains: &buy}, []string{"Buy milk", "Buy bread"}},
		{"combined", domain.ListOptions{Priority: &high, NameContains: &buy}, []string{"Buy bread"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := a.ListTasks(ctx, tt.opts)
			require.NoError(t, err)

			names := make([]string, 0, len(records))
			for _, r := range records {
				names = append(names, r.Task)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestAPI_CompleteAndDeleteByName(t *testing.T) {
	a, _, _ := setupTestAPI(t)
	ctx := context.Background()

	for _, name := range []string{"X", "Y", "X"} {
		_, err := a.AddTask(ctx, name, "2025-06-01", "Medium")
		require.NoError(t, err)
	}

	n, err := a.CompleteTask(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = a.DeleteTask(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = a.DeleteTask(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	records, err := a.ListTasks(ctx, domain.ListOptions{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Y", records[0].Task)

	_, err = a.CompleteTask(ctx, " ")
	assert.True(t, validation.IsValidationError(err))
	_, err = a.DeleteTask(ctx, "")
	assert.True(t, validation.IsValidationError(err))
}

func TestAPI_ByID(t *testing.T) {
	a, _, _ := setupTestAPI(t)
	ctx := context.Background()

	first, err := a.AddTask(ctx, "Same", "2025-06-01", "Low")
	require.NoError(t, err)
	second, err := a.AddTask(ctx, "Same", "2025-06-02", "Low")
	require.NoError(t, err)

	n, err := a.CompleteTaskByID(ctx, first.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = a.DeleteTaskByID(ctx, second.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	tasks, err := a.Tasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, first.ID, tasks[0].ID)
	assert.Equal(t, domain.StatusCompleted, tasks[0].Status)

	n, err = a.DeleteTaskByID(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = a.CompleteTaskByID(ctx, "not-a-uuid")
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))
}

func TestAPI_Stats(t *testing.T) {
	pinNow(t, "2025-06-03")
	a, _, _ := setupTestAPI(t)
	ctx := context.Background()

	for _, in := range []struct{ name, due string }{
		{"Overdue", "2025-06-01"},
		{"Due today", "2025-06-03"},
		{"Done late", "2025-05-01"},
		{"Future", "2025-07-01"},
	} {
		_, err := a.AddTask(ctx, in.name, in.due, "Low")
		require.NoError(t, err)
	}
	_, err := a.CompleteTask(ctx, "Done late")
	require.NoError(t, err)

	stats, err := a.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Stats{Total: 4, Pending: 3, Completed: 1, Overdue: 1}, stats)
}

func TestAPI_CancelledContext(t *testing.T) {
	a, _, _ := setupTestAPI(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.ListTasks(ctx, domain.ListOptions{})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = a.Stats(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = a.Tasks(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

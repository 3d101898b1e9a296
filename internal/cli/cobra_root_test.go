package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"task-manager/internal/api"
	"task-manager/internal/config"
	"task-manager/internal/domain"
	"task-manager/internal/logging"
	"task-manager/internal/manager"
	"task-manager/internal/repository/jsonfile"
	"task-manager/internal/validation"
)

type harness struct {
	api     *mockAPI
	out     bytes.Buffer
	cfg     *config.Config
	closed  int
	bootErr error
}

// clearEnv keeps the developer's TM_* settings out of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"TM_CONFIG", "TM_ENV", "TM_DEBUG",
		"TM_STORAGE_DIR", "TM_STORAGE_FILENAME", "TM_STORAGE_BACKEND",
		"TM_VALIDATION_ALLOW_PAST_DUE", "TM_LOG_LEVEL", "TM_LOG_FORMAT",
		"TM_APP_TIMEOUT", "TM_APP_VERBOSE", "TM_SERVER_ADDR",
	} {
		t.Setenv(name, "")
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clearEnv(t)
	h := &harness{api: &mockAPI{}}
	t.Cleanup(func() { h.api.AssertExpectations(t) })
	return h
}

func (h *harness) bootstrap(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	if h.bootErr != nil {
		return nil, h.bootErr
	}
	h.cfg = cfg
	return &Runtime{
		API:    h.api,
		Logger: logging.NewNop(),
		Close: func() error {
			h.closed++
			return nil
		},
	}, nil
}

func (h *harness) run(args ...string) error {
	h.out.Reset()
	root := NewRootCommand(h.bootstrap, &h.out)
	root.SetArgs(args)
	return root.Execute(context.Background())
}

func nameRequired() error {
	ve := validation.NewValidationError()
	ve.AddRequiredError(validation.FieldName)
	return ve
}

func TestRootAdd(t *testing.T) {
	h := newHarness(t)
	task := newTask("Buy milk", "2030-06-01", "High", false)
	h.api.On("AddTask", mock.Anything, "Buy milk", "2030-06-01", "High").Return(&task, nil).Once()

	require.NoError(t, h.run("add", "Buy", "milk", "--due", "2030-06-01", "--priority", "high"))
	assert.Equal(t, "Added task \"Buy milk\" (due 2030-06-01, priority High)\n", h.out.String())
	assert.Equal(t, 1, h.closed)
}

func TestRootAddDefaults(t *testing.T) {
	h := newHarness(t)
	today := validation.Today()
	task := newTask("Water plants", today, "Low", false)
	h.api.On("AddTask", mock.Anything, "Water plants", today, "Low").Return(&task, nil).Once()

	require.NoError(t, h.run("add", "Water plants"))
	assert.Equal(t, "Added task \"Water plants\" (due "+today+", priority Low)\n", h.out.String())
}

func TestRootAddRequiresName(t *testing.T) {
	h := newHarness(t)
	h.api.On("AddTask", mock.Anything, "   ", mock.Anything, "Low").Return(nil, nameRequired()).Once()

	err := h.run("add")
	require.Error(t, err)
	h.api.AssertNotCalled(t, "AddTask", mock.Anything, "", mock.Anything, mock.Anything)

	err = h.run("add", "   ")
	require.Error(t, err)
	assert.Equal(t, "failed to add task: name is required", err.Error())
}

func TestRootList(t *testing.T) {
	h := newHarness(t)
	h.api.On("ListTasks", mock.Anything, domain.ListOptions{}).Return(recordsOf(
		newTask("Buy milk", "2030-06-01", "High", false),
		newTask("Write report", "2030-06-05", "Low", true),
	), nil).Once()

	require.NoError(t, h.run("list"))
	out := h.out.String()
	for _, want := range []string{"Task", "Due Date", "Buy milk", "Write report", "Completed", "Pending"} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "Buy milk"), strings.Index(out, "Write report"), "insertion order")
}

func TestRootListFilters(t *testing.T) {
	h := newHarness(t)
	completed := domain.StatusCompleted
	search := "MILK"
	h.api.On("ListTasks", mock.Anything, domain.ListOptions{Status: &completed}).
		Return(recordsOf(newTask("Write report", "2030-06-05", "Low", true)), nil).Once()
	h.api.On("ListTasks", mock.Anything, domain.ListOptions{NameContains: &search}).
		Return(recordsOf(newTask("Buy milk", "2030-06-01", "High", false)), nil).Once()

	require.NoError(t, h.run("ls", "--status", "completed", "--format", "json"))
	var got []domain.Record
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &got))
	assert.Equal(t, []domain.Record{{Task: "Write report", DueDate: "2030-06-05", Priority: "Low", Status: "Completed"}}, got)

	require.NoError(t, h.run("list", "MILK"))
	assert.Contains(t, h.out.String(), "Buy milk")
	assert.NotContains(t, h.out.String(), "Write report")
}

func TestRootListEmpty(t *testing.T) {
	h := newHarness(t)
	h.api.On("ListTasks", mock.Anything, domain.ListOptions{}).Return([]domain.Record{}, nil).Twice()

	require.NoError(t, h.run("list"))
	assert.Equal(t, "No tasks found.\n", h.out.String())

	require.NoError(t, h.run("list", "-f", "json"))
	assert.Equal(t, "[]\n", h.out.String())
}

func TestRootListRejectsBadInput(t *testing.T) {
	h := newHarness(t)
	h.api.On("ListTasks", mock.Anything, domain.ListOptions{}).Return([]domain.Record{}, nil).Once()

	err := h.run("list", "--status", "done")
	require.Error(t, err)
	assert.Equal(t, "failed to list tasks: invalid input for status: must be one of Pending, Completed", err.Error())
	h.api.AssertNotCalled(t, "ListTasks", mock.Anything, mock.Anything)

	err = h.run("list", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be table or json")
}

func TestRootComplete(t *testing.T) {
	h := newHarness(t)
	h.api.On("CompleteTask", mock.Anything, "Buy milk").Return(2, nil).Once()
	h.api.On("CompleteTask", mock.Anything, "buy milk").Return(0, nil).Once()

	require.NoError(t, h.run("complete", "Buy", "milk"))
	assert.Equal(t, "Marked 2 task(s) named \"Buy milk\" as completed.\n", h.out.String())

	require.NoError(t, h.run("done", "buy milk"))
	assert.Equal(t, "No task named \"buy milk\" found.\n", h.out.String())
}

func TestRootDelete(t *testing.T) {
	h := newHarness(t)
	h.api.On("DeleteTask", mock.Anything, "Buy milk").Return(2, nil).Once()
	h.api.On("DeleteTask", mock.Anything, "Missing").Return(0, nil).Once()

	require.NoError(t, h.run("delete", "Buy milk"))
	assert.Equal(t, "Deleted 2 task(s) named \"Buy milk\".\n", h.out.String())

	require.NoError(t, h.run("rm", "Missing"))
	assert.Equal(t, "No task named \"Missing\" found.\n", h.out.String())
}

func TestRootExportCSV(t *testing.T) {
	h := newHarness(t)
	h.api.On("ListTasks", mock.Anything, domain.ListOptions{}).
		Return(recordsOf(newTask("Buy milk", "2030-06-01", "High", false)), nil).Once()

	require.NoError(t, h.run("export"))
	rows, err := csv.NewReader(strings.NewReader(h.out.String())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Task", "Due Date", "Priority", "Status"},
		{"Buy milk", "2030-06-01", "High", "Pending"},
	}, rows)
}

func TestRootExportPDFToFile(t *testing.T) {
	h := newHarness(t)
	h.api.On("ListTasks", mock.Anything, domain.ListOptions{}).
		Return(recordsOf(newTask("Buy milk", "2030-06-01", "High", false)), nil).Once()
	path := filepath.Join(t.TempDir(), "tasks.pdf")

	require.NoError(t, h.run("export", "--format", "PDF", "-o", path))
	assert.Equal(t, "Exported 1 task(s) to "+path+"\n", h.out.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRootExportRejectsUnknownFormat(t *testing.T) {
	h := newHarness(t)

	err := h.run("export", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to export tasks")
	h.api.AssertNotCalled(t, "ListTasks", mock.Anything, mock.Anything)
}

func TestRootStats(t *testing.T) {
	h := newHarness(t)
	h.api.On("Stats", mock.Anything).Return(&api.Stats{Total: 2, Pending: 1, Completed: 1}, nil).Once()

	require.NoError(t, h.run("stats"))
	out := h.out.String()
	assert.Contains(t, out, "Total:     2\n")
	assert.Contains(t, out, "Completed: 1\n")
}

func TestRootAPIErrors(t *testing.T) {
	h := newHarness(t)
	h.api.On("ListTasks", mock.Anything, domain.ListOptions{}).Return(nil, errors.New("boom")).Once()

	err := h.run("list")
	require.Error(t, err)
	assert.Equal(t, "failed to list tasks: boom", err.Error())
	assert.Equal(t, 1, h.closed, "store is closed even when the command fails")
}

func TestRootFlagsOverrideConfig(t *testing.T) {
	h := newHarness(t)
	h.api.On("Stats", mock.Anything).Return(&api.Stats{}, nil).Once()
	dir := t.TempDir()

	require.NoError(t, h.run("--storage-dir", dir, "--storage-file", "mine.json", "--allow-past-due", "--app-timeout", "5s", "stats"))
	require.NotNil(t, h.cfg)
	assert.Equal(t, dir, h.cfg.Storage.Dir)
	assert.Equal(t, "mine.json", h.cfg.Storage.Filename)
	assert.True(t, h.cfg.Validation.AllowPastDue)
	assert.Equal(t, 5*time.Second, h.cfg.Application.Timeout)
}

func TestRootConfigFile(t *testing.T) {
	h := newHarness(t)
	h.api.On("Stats", mock.Anything).Return(&api.Stats{}, nil).Twice()
	path := filepath.Join(t.TempDir(), "tm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  filename: from-file.json\n"), 0o600))

	require.NoError(t, h.run("--config", path, "stats"))
	assert.Equal(t, "from-file.json", h.cfg.Storage.Filename)

	// Flags still win over the file
	require.NoError(t, h.run("--config", path, "--storage-file", "flag.json", "stats"))
	assert.Equal(t, "flag.json", h.cfg.Storage.Filename)
}

func TestRootBadConfig(t *testing.T) {
	h := newHarness(t)

	err := h.run("--backend", "mongo", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
	assert.Nil(t, h.cfg, "bootstrap must not run with an invalid config")
	h.api.AssertNotCalled(t, "ListTasks", mock.Anything, mock.Anything)
}

func TestRootBootstrapError(t *testing.T) {
	h := newHarness(t)
	h.bootErr = errors.New("tasks file is corrupt")

	err := h.run("list")
	require.Error(t, err)
	assert.Equal(t, "tasks file is corrupt", err.Error())
	assert.Equal(t, 0, h.closed)
	h.api.AssertNotCalled(t, "ListTasks", mock.Anything, mock.Anything)
}

// TestRootEndToEnd drives the commands against the real manager and JSON file.
func TestRootEndToEnd(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	bootstrap := func(ctx context.Context, cfg *config.Config) (*Runtime, error) {
		store, err := jsonfile.New(cfg.GetStoragePath())
		if err != nil {
			return nil, err
		}
		m := manager.New(store, logging.NewNop())
		if err := m.Load(ctx); err != nil {
			return nil, err
		}
		return &Runtime{API: api.NewWithConfig(m, cfg), Logger: logging.NewNop(), Close: store.Close}, nil
	}

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		root := NewRootCommand(bootstrap, &out)
		root.SetArgs(append([]string{"--storage-dir", dir}, args...))
		require.NoError(t, root.Execute(context.Background()))
		return out.String()
	}

	run("add", "Buy milk", "--due", "2030-06-01", "-p", "Medium")
	run("add", "Write report", "--due", "2030-06-05")
	run("complete", "Buy milk")
	run("delete", "Write report")

	out := run("list", "--format", "json")
	var records []domain.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	assert.Equal(t, []domain.Record{{Task: "Buy milk", DueDate: "2030-06-01", Priority: "Medium", Status: "Completed"}}, records)

	data, err := os.ReadFile(filepath.Join(dir, "tasks.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"Task":"Buy milk","Due Date":"2030-06-01","Priority":"Medium","Status":"Completed"}]`, string(data))
}

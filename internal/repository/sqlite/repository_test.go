package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager/internal/domain"
)

func setupTestStore(t *testing.T) (*Store, string) {
	dbPath := filepath.Join(t.TempDir(), "data", "tasks.db")

	store, err := New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store, dbPath
}

func sampleRecords() []domain.Record {
	return []domain.Record{
		{Task: "Buy milk", DueDate: "2025-06-01", Priority: "Low", Status: "Pending"},
		{Task: "Write report", DueDate: "2025-06-05", Priority: "High", Status: "Completed"},
		{Task: "Buy milk", DueDate: "2025-06-09", Priority: "Medium", Status: "Pending"},
	}
}

func TestLoad_EmptyDatabase(t *testing.T) {
	store, _ := setupTestStore(t)

	records, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleRecords()))

	records, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), records)
}

func TestSave_ReplacesPreviousContents(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleRecords()))
	require.NoError(t, store.Save(ctx, sampleRecords()[1:2]))

	records, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords()[1:2], records)

	require.NoError(t, store.Save(ctx, nil))
	records, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestSave_PersistsAcrossReopen(t *testing.T) {
	store, dbPath := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleRecords()))
	require.NoError(t, store.Close())

	reopened, err := New(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), records)
}

func TestSave_InvalidRecordRollsBack(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleRecords()))

	bad := append(sampleRecords(), domain.Record{Task: "x", DueDate: "2025-06-01", Priority: "Urgent", Status: "Pending"})
	err := store.Save(ctx, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save tasks")

	records, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), records, "failed save must leave previous contents intact")
}

func TestNew_InMemory(t *testing.T) {
	store, err := New(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, sampleRecords()))

	records, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

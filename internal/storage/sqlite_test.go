package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgermail/internal/model"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndListUncertain(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.RecordUncertain(ctx, "mystery gadget", model.ClassificationResult{
		Category:   "Electronics",
		Origin:     model.OriginRule,
		Confidence: 0.55,
	}))
	require.NoError(t, store.RecordUncertain(ctx, "odd snack", model.ClassificationResult{
		Category:   "Groceries",
		Origin:     model.OriginLLM,
		Confidence: 0.6,
	}))

	results, err := store.ListUncertain(ctx, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Newest first.
	assert.Equal(t, "odd snack", results[0].Text)
	assert.Equal(t, "Groceries", results[0].Category)
	assert.Equal(t, model.OriginLLM, results[0].Origin)
	assert.InDelta(t, 0.6, results[0].Confidence, 0.001)

	assert.Equal(t, "mystery gadget", results[1].Text)
	assert.False(t, results[0].RecordedAt.IsZero())
}

func TestListUncertainLimit(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordUncertain(ctx, fmt.Sprintf("item %d", i), model.ClassificationResult{
			Category:   "Groceries",
			Origin:     model.OriginRule,
			Confidence: 0.5,
		}))
	}

	results, err := store.ListUncertain(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestListUncertainEmpty(t *testing.T) {
	store := createTestStorage(t)

	results, err := store.ListUncertain(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestNewSQLiteStorageValidation(t *testing.T) {
	_, err := NewSQLiteStorage("")
	assert.Error(t, err)
}

func TestReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.RecordUncertain(ctx, "persisted", model.ClassificationResult{
		Category: "Groceries", Origin: model.OriginRule, Confidence: 0.5,
	}))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	results, err := reopened.ListUncertain(ctx, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "persisted", results[0].Text)
}

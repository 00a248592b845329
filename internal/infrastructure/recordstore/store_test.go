package recordstore

import (
	"context"
	"testing"

	"github.com/letterdesk/backend/internal/domain/letters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newGormStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := OpenSQLite(":memory:", zap.NewNop())
	require.NoError(t, err)
	store := NewGormStore(db, zap.NewNop())
	require.NoError(t, store.AutoMigrate())
	return store
}

// Both implementations must honor the same contract.
func runStoreContract(t *testing.T, store letters.RecordStore) {
	ctx := context.Background()
	schema := letters.CompanySchema("TestCompanies")

	t.Run("missing collection reports sentinel", func(t *testing.T) {
		_, err := store.List(ctx, "TestCompanies", letters.ListOptions{})
		require.Error(t, err)
		assert.ErrorIs(t, err, letters.ErrCollectionNotFound)
	})

	t.Run("ensure is idempotent", func(t *testing.T) {
		require.NoError(t, store.EnsureCollection(ctx, schema))
		require.NoError(t, store.EnsureCollection(ctx, schema))
	})

	t.Run("create and list", func(t *testing.T) {
		rec, err := store.Create(ctx, "TestCompanies", map[string]any{
			"Title":          "Acme",
			"Abbreviation":   "ACME",
			"StartingNumber": 100,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, "Acme", rec.Fields["Title"])

		recs, err := store.List(ctx, "TestCompanies", letters.ListOptions{})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, rec.ID, recs[0].ID)
	})

	t.Run("update merges fields", func(t *testing.T) {
		recs, err := store.List(ctx, "TestCompanies", letters.ListOptions{})
		require.NoError(t, err)
		require.NotEmpty(t, recs)

		updated, err := store.Update(ctx, "TestCompanies", recs[0].ID, map[string]any{
			"Color": "#ff0000",
		})
		require.NoError(t, err)
		assert.Equal(t, "#ff0000", updated.Fields["Color"])
		assert.Equal(t, "Acme", updated.Fields["Title"], "untouched fields survive")
	})

	t.Run("update missing record fails", func(t *testing.T) {
		_, err := store.Update(ctx, "TestCompanies", "does-not-exist", map[string]any{"Title": "x"})
		assert.Error(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		recs, err := store.List(ctx, "TestCompanies", letters.ListOptions{})
		require.NoError(t, err)
		require.NotEmpty(t, recs)

		require.NoError(t, store.Delete(ctx, "TestCompanies", recs[0].ID))
		require.NoError(t, store.Delete(ctx, "TestCompanies", recs[0].ID), "delete is idempotent")

		recs, err = store.List(ctx, "TestCompanies", letters.ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, recs)
	})
}

func TestGormStoreContract(t *testing.T) {
	runStoreContract(t, newGormStore(t))
}

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestGormStoreNumbersRoundTripAsFloat(t *testing.T) {
	store := newGormStore(t)
	ctx := context.Background()
	require.NoError(t, store.EnsureCollection(ctx, letters.LetterSchema("TestLetters")))

	rec, err := store.Create(ctx, "TestLetters", map[string]any{
		letters.FieldLetterSequenceNumber: 42,
		letters.FieldLetterYear:           2026,
	})
	require.NoError(t, err)

	recs, err := store.List(ctx, "TestLetters", letters.ListOptions{})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	// JSON round-trips numbers as float64; entity decoding tolerates it.
	l := letters.LetterFromRecord(recs[0], rec.CreatedAt)
	assert.Equal(t, 42, l.SequenceNumber)
	assert.Equal(t, 2026, l.Year)
}

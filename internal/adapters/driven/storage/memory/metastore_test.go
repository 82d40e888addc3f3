package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lekesiz/netz-rag/internal/core/domain"
)

func TestMetadataStore_RecordAndGet(t *testing.T) {
	store := NewMetadataStore()
	ctx := context.Background()

	rec := domain.DocumentRecord{ID: "doc-1", Title: "FAQ", DocType: "faq", Source: "site"}
	require.NoError(t, store.Record(ctx, rec))

	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "FAQ", got.Title)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMetadataStore_CountBy(t *testing.T) {
	store := NewMetadataStore()
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, domain.DocumentRecord{ID: "a", DocType: "faq", Source: "site"}))
	require.NoError(t, store.Record(ctx, domain.DocumentRecord{ID: "b", DocType: "faq", Source: "email"}))

	counts, err := store.CountBy(ctx, "doc_type")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"faq": 2}, counts)

	_, err = store.CountBy(ctx, "title")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMetadataStore_Delete(t *testing.T) {
	store := NewMetadataStore()
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, domain.DocumentRecord{ID: "a"}))
	require.NoError(t, store.Delete(ctx, []string{"a", "missing"}))

	total, err := store.TotalCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestQueryLog_Cap(t *testing.T) {
	log := NewQueryLog(3)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, log.Log(ctx, "query", 1))
	}

	total, err := log.TotalQueries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

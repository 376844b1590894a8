package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsift/docsift/internal/core/domain"
)

const testDimensions = 3

func setupTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewStore(dir, testDimensions)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, dir
}

func seedDocument(t *testing.T, store *Store, id string) {
	t.Helper()
	err := store.SaveDocument(context.Background(), domain.Document{ID: id, URI: id + ".txt", CharCount: 100})
	require.NoError(t, err)
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	store, dir := setupTestStore(t)
	assert.Equal(t, testDimensions, store.Dimensions())
	assert.Contains(t, store.Path(), dir)
}

func TestNewStore_RejectsBadDimensions(t *testing.T) {
	_, err := NewStore(t.TempDir(), 0)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestInsert_RoundTrip(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	seedDocument(t, store, "doc-1")

	id, err := store.Insert(ctx, domain.Chunk{
		DocumentID:  "doc-1",
		Position:    0,
		StartOffset: 0,
		EndOffset:   12,
		Content:     "some content",
		Assignment:  &domain.ThemeAssignment{ThemeID: "fisica", Confidence: 0.7},
	}, []float32{0.1, 0.2, 0.3})
	require.NoError(t, err)

	chunk, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "some content", chunk.Content)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, chunk.Embedding)
	require.NotNil(t, chunk.Assignment)
	assert.Equal(t, "fisica", chunk.Assignment.ThemeID)
	assert.InDelta(t, 0.7, chunk.Assignment.Confidence, 1e-9)
}

func TestReopen_ReproducesRankings(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir, testDimensions)
	require.NoError(t, err)
	seedDocument(t, store, "doc-1")

	var inserted []domain.ChunkID
	for _, vec := range [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
		nil,
	} {
		id, err := store.Insert(ctx, domain.Chunk{DocumentID: "doc-1", Content: "c"}, vec)
		require.NoError(t, err)
		inserted = append(inserted, id)
	}

	query := []float32{1, 0, 0}
	before, err := store.Query(ctx, query, domain.QueryOptions{TopK: 10})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir, testDimensions)
	require.NoError(t, err)
	defer reopened.Close()

	after, err := reopened.Query(ctx, query, domain.QueryOptions{TopK: 10})
	require.NoError(t, err)

	require.Len(t, after.Hits, len(before.Hits))
	for i := range before.Hits {
		assert.Equal(t, before.Hits[i].Chunk.ID, after.Hits[i].Chunk.ID)
		assert.InDelta(t, before.Hits[i].Score, after.Hits[i].Score, 1e-9)
	}
	assert.Equal(t, before.Pending, after.Pending)

	// Fresh inserts continue past the highest persisted id.
	next, err := reopened.Insert(ctx, domain.Chunk{DocumentID: "doc-1", Content: "c"}, []float32{0, 0, 1})
	require.NoError(t, err)
	assert.Greater(t, next, inserted[len(inserted)-1])
}

func TestReopen_IDsNotReusedAfterPurge(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir, testDimensions)
	require.NoError(t, err)
	seedDocument(t, store, "doc-1")

	_, err = store.Insert(ctx, domain.Chunk{DocumentID: "doc-1", Content: "a"}, []float32{1, 0, 0})
	require.NoError(t, err)
	last, err := store.Insert(ctx, domain.Chunk{DocumentID: "doc-1", Content: "b"}, []float32{0, 1, 0})
	require.NoError(t, err)

	require.NoError(t, store.Purge(ctx, "doc-1"))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir, testDimensions)
	require.NoError(t, err)
	defer reopened.Close()

	seedDocument(t, reopened, "doc-1")
	fresh, err := reopened.Insert(ctx, domain.Chunk{DocumentID: "doc-1", Content: "c"}, []float32{0, 0, 1})
	require.NoError(t, err)
	assert.Greater(t, fresh, last)
}

func TestMarkEmbedded_Persists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir, testDimensions)
	require.NoError(t, err)
	seedDocument(t, store, "doc-1")

	id, err := store.Insert(ctx, domain.Chunk{DocumentID: "doc-1", Content: "c"}, nil)
	require.NoError(t, err)

	require.NoError(t, store.MarkEmbedded(ctx, id, []float32{1, 0, 0}))
	err = store.MarkEmbedded(ctx, id, []float32{0, 1, 0})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	err = store.MarkEmbedded(ctx, 9999, []float32{1, 0, 0})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Close())

	reopened, err := NewStore(dir, testDimensions)
	require.NoError(t, err)
	defer reopened.Close()

	chunk, err := reopened.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, chunk.Embedded())

	pending, err := reopened.Pending(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSetAssignment_Persists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir, testDimensions)
	require.NoError(t, err)
	seedDocument(t, store, "doc-1")

	id, err := store.Insert(ctx, domain.Chunk{DocumentID: "doc-1", Content: "c"}, []float32{1, 0, 0})
	require.NoError(t, err)

	require.NoError(t, store.SetAssignment(ctx, id, domain.ThemeAssignment{ThemeID: "quimica", Confidence: 0.42}))
	err = store.SetAssignment(ctx, 9999, domain.ThemeAssignment{ThemeID: "quimica"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Close())

	reopened, err := NewStore(dir, testDimensions)
	require.NoError(t, err)
	defer reopened.Close()

	chunk, err := reopened.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, chunk.Assignment)
	assert.Equal(t, "quimica", chunk.Assignment.ThemeID)
	assert.InDelta(t, 0.42, chunk.Assignment.Confidence, 1e-9)
}

func TestPurge_CascadesAndPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir, testDimensions)
	require.NoError(t, err)
	seedDocument(t, store, "doc-1")
	seedDocument(t, store, "doc-2")

	_, err = store.Insert(ctx, domain.Chunk{DocumentID: "doc-1", Content: "a"}, []float32{1, 0, 0})
	require.NoError(t, err)
	kept, err := store.Insert(ctx, domain.Chunk{DocumentID: "doc-2", Content: "b"}, []float32{0, 1, 0})
	require.NoError(t, err)

	require.NoError(t, store.Purge(ctx, "doc-1"))
	require.NoError(t, store.Purge(ctx, "doc-1"))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir, testDimensions)
	require.NoError(t, err)
	defer reopened.Close()

	_, err = reopened.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chunks, err := reopened.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunk, err := reopened.Get(ctx, kept)
	require.NoError(t, err)
	assert.Equal(t, "b", chunk.Content)
}

func TestSaveDocument_Upsert(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, domain.Document{ID: "doc-1", URI: "old.txt", CharCount: 10}))
	require.NoError(t, store.SaveDocument(ctx, domain.Document{ID: "doc-1", URI: "new.txt", CharCount: 20}))

	doc, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "new.txt", doc.URI)
	assert.Equal(t, 20, doc.CharCount)

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestEmbeddingBlobRoundTrip(t *testing.T) {
	original := []float32{0.1, -2.5, 3.14159, 0}
	blob := float32SliceToBytes(original)
	restored := bytesToFloat32Slice(blob)
	assert.Equal(t, original, restored)

	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}

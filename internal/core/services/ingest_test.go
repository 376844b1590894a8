package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsift/docsift/internal/adapters/driven/vectorstore/memory"
	"github.com/docsift/docsift/internal/chunker"
	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/themes"
)

func newIngestFixture(t *testing.T, embedder *mockEmbedder, opts IngestOptions) (*IngestService, *memory.Store) {
	t.Helper()

	store, err := memory.NewStore(3)
	require.NoError(t, err)

	splitter, err := chunker.New(10, 0)
	require.NoError(t, err)

	return NewIngestService(store, embedder, splitter, nil, opts), store
}

func fastOptions() IngestOptions {
	return IngestOptions{Concurrency: 2, Timeout: time.Second, Attempts: 1}
}

func TestIngest_StoresAllChunksEmbedded(t *testing.T) {
	embedder := &mockEmbedder{}
	svc, store := newIngestFixture(t, embedder, fastOptions())
	ctx := context.Background()

	text := strings.Repeat("a", 25)
	report, err := svc.Ingest(ctx, "doc-1", "a.txt", text)
	require.NoError(t, err)

	assert.Equal(t, "doc-1", report.DocumentID)
	assert.Equal(t, 3, report.Chunks)
	assert.Equal(t, 3, report.Embedded)
	assert.Zero(t, report.Failed)
	assert.False(t, report.Cancelled)

	doc, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 25, doc.CharCount)

	chunks, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Position)
		assert.True(t, chunk.Embedded())
	}
}

func TestIngest_RejectsEmptyDocumentID(t *testing.T) {
	svc, _ := newIngestFixture(t, &mockEmbedder{}, fastOptions())

	_, err := svc.Ingest(context.Background(), "", "a.txt", "text")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestIngest_EmptyTextProducesNoChunks(t *testing.T) {
	svc, store := newIngestFixture(t, &mockEmbedder{}, fastOptions())
	ctx := context.Background()

	report, err := svc.Ingest(ctx, "doc-1", "a.txt", "")
	require.NoError(t, err)
	assert.Zero(t, report.Chunks)

	// The document itself is still recorded.
	_, err = store.GetDocument(ctx, "doc-1")
	assert.NoError(t, err)
}

func TestIngest_PartialFailureKeepsChunks(t *testing.T) {
	embedder := &mockEmbedder{failOn: "b", failsLeft: -1}
	svc, store := newIngestFixture(t, embedder, fastOptions())
	ctx := context.Background()

	text := strings.Repeat("a", 10) + strings.Repeat("b", 10)
	report, err := svc.Ingest(ctx, "doc-1", "a.txt", text)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Chunks)
	assert.Equal(t, 1, report.Embedded)
	assert.Equal(t, 1, report.Failed)

	// The failed chunk is stored unembedded, never dropped.
	chunks, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	pending, err := store.Pending(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, strings.Repeat("b", 10), pending[0].Content)
}

func TestIngest_RetriesTransientFailures(t *testing.T) {
	embedder := &mockEmbedder{failOn: "a", failsLeft: 1}
	opts := fastOptions()
	opts.Attempts = 2
	svc, _ := newIngestFixture(t, embedder, opts)

	report, err := svc.Ingest(context.Background(), "doc-1", "a.txt", "aaaa")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Embedded)
	assert.Zero(t, report.Failed)
	assert.Equal(t, 2, embedder.callCount())
}

func TestIngest_ReingestReplacesChunks(t *testing.T) {
	embedder := &mockEmbedder{}
	svc, store := newIngestFixture(t, embedder, fastOptions())
	ctx := context.Background()

	first, err := svc.Ingest(ctx, "doc-1", "a.txt", strings.Repeat("a", 20))
	require.NoError(t, err)
	require.Equal(t, 2, first.Chunks)

	oldChunks, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)

	second, err := svc.Ingest(ctx, "doc-1", "a.txt", strings.Repeat("c", 10))
	require.NoError(t, err)
	require.Equal(t, 1, second.Chunks)

	newChunks, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, newChunks, 1)

	// Fresh ChunkIDs; the old ones are gone for good.
	for _, old := range oldChunks {
		assert.Greater(t, newChunks[0].ID, old.ID)
		_, err := store.Get(ctx, old.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}
}

func TestIngest_CancellationKeepsProducedChunks(t *testing.T) {
	embedder := &mockEmbedder{respectCtx: true}
	svc, store := newIngestFixture(t, embedder, fastOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := svc.Ingest(ctx, "doc-1", "a.txt", strings.Repeat("a", 30))
	require.NoError(t, err)

	// Every chunk is accounted for: embedded or failed, never lost.
	assert.Equal(t, 3, report.Chunks)
	assert.Equal(t, report.Chunks, report.Embedded+report.Failed)
	assert.Zero(t, report.Embedded)

	chunks, err := store.GetChunks(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Len(t, chunks, 3)
}

func TestIngest_ClassifiesChunks(t *testing.T) {
	taxonomy, err := themes.NewTaxonomy([]domain.Theme{
		{ID: "letters", Label: "Letters", Triggers: []string{"alpha"}},
	})
	require.NoError(t, err)
	classifier, err := themes.NewClassifier(taxonomy, 0)
	require.NoError(t, err)

	store, err := memory.NewStore(3)
	require.NoError(t, err)
	splitter, err := chunker.New(100, 0)
	require.NoError(t, err)
	svc := NewIngestService(store, &mockEmbedder{}, splitter, classifier, fastOptions())

	ctx := context.Background()
	_, err = svc.Ingest(ctx, "doc-1", "a.txt", "alpha beta gamma")
	require.NoError(t, err)

	chunks, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.NotNil(t, chunks[0].Assignment)
	assert.Equal(t, "letters", chunks[0].Assignment.ThemeID)
}

func TestReembed_RecoversPendingChunks(t *testing.T) {
	embedder := &mockEmbedder{failOn: "b", failsLeft: -1}
	svc, store := newIngestFixture(t, embedder, fastOptions())
	ctx := context.Background()

	text := strings.Repeat("a", 10) + strings.Repeat("b", 10)
	_, err := svc.Ingest(ctx, "doc-1", "a.txt", text)
	require.NoError(t, err)

	// The provider recovers; pending chunks embed on retry.
	embedder.mu.Lock()
	embedder.failOn = ""
	embedder.mu.Unlock()

	report, err := svc.Reembed(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Chunks)
	assert.Equal(t, 1, report.Embedded)
	assert.Zero(t, report.Failed)

	pending, err := store.Pending(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestReembed_NothingPending(t *testing.T) {
	svc, _ := newIngestFixture(t, &mockEmbedder{}, fastOptions())

	report, err := svc.Reembed(context.Background(), "")
	require.NoError(t, err)
	assert.Zero(t, report.Chunks)
	assert.Zero(t, report.Embedded)
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsift/docsift/internal/adapters/driven/vectorstore/memory"
	"github.com/docsift/docsift/internal/core/domain"
)

func newSearchFixture(t *testing.T, generator *mockGenerator) (*SearchService, *memory.Store, *mockEmbedder) {
	t.Helper()

	store, err := memory.NewStore(3)
	require.NoError(t, err)
	embedder := &mockEmbedder{}

	var svc *SearchService
	if generator != nil {
		svc = NewSearchService(store, embedder, generator)
	} else {
		svc = NewSearchService(store, embedder, nil)
	}
	return svc, store, embedder
}

func storeChunk(t *testing.T, store *memory.Store, documentID, content string, vector []float32) domain.ChunkID {
	t.Helper()
	id, err := store.Insert(context.Background(), domain.Chunk{
		DocumentID: documentID,
		Content:    content,
	}, vector)
	require.NoError(t, err)
	return id
}

func TestSearch_RanksByQuerySimilarity(t *testing.T) {
	svc, store, embedder := newSearchFixture(t, nil)
	ctx := context.Background()

	// The mock embeds "match" to a specific vector; store one chunk with
	// exactly that vector and one orthogonal to it.
	target, err := embedder.Embed(ctx, "match")
	require.NoError(t, err)
	best := storeChunk(t, store, "doc-1", "closest", target)
	storeChunk(t, store, "doc-1", "farther", []float32{-target[1], target[0], 0})

	result, err := svc.Search(ctx, "match", domain.QueryOptions{TopK: 2})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, best, result.Hits[0].Chunk.ID)
	assert.InDelta(t, 1.0, result.Hits[0].Score, 1e-6)
}

func TestSearch_EmptyQueryReturnsNoHits(t *testing.T) {
	svc, store, embedder := newSearchFixture(t, nil)
	ctx := context.Background()

	storeChunk(t, store, "doc-1", "content", []float32{1, 0, 0})

	for _, query := range []string{"", "   ", "\t\n"} {
		result, err := svc.Search(ctx, query, domain.QueryOptions{TopK: 5})
		require.NoError(t, err)
		assert.Empty(t, result.Hits)
	}
	// No embedding call is made for blank queries.
	assert.Zero(t, embedder.callCount())
}

func TestSearch_DefaultsTopK(t *testing.T) {
	svc, store, _ := newSearchFixture(t, nil)
	ctx := context.Background()

	for i := 0; i < DefaultTopK+3; i++ {
		storeChunk(t, store, "doc-1", "content", []float32{1, float32(i) * 0.01, 0})
	}

	result, err := svc.Search(ctx, "anything", domain.QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, result.Hits, DefaultTopK)
}

func TestSearch_EmbedFailure(t *testing.T) {
	svc, _, embedder := newSearchFixture(t, nil)
	embedder.failOn = "anything"
	embedder.failsLeft = -1

	_, err := svc.Search(context.Background(), "anything", domain.QueryOptions{TopK: 5})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestSearch_ReportsPending(t *testing.T) {
	svc, store, _ := newSearchFixture(t, nil)
	ctx := context.Background()

	storeChunk(t, store, "doc-1", "embedded", []float32{1, 0, 0})
	storeChunk(t, store, "doc-1", "pending", nil)

	result, err := svc.Search(ctx, "anything", domain.QueryOptions{TopK: 5})
	require.NoError(t, err)
	assert.Len(t, result.Hits, 1)
	assert.Equal(t, 1, result.Pending)
}

func TestAsk_WithoutGenerator(t *testing.T) {
	svc, _, _ := newSearchFixture(t, nil)

	_, _, err := svc.Ask(context.Background(), "question", domain.QueryOptions{TopK: 5})
	assert.ErrorIs(t, err, domain.ErrAnswerUnavailable)
}

func TestAsk_PassesRankedPassages(t *testing.T) {
	generator := &mockGenerator{answer: "the answer"}
	svc, store, _ := newSearchFixture(t, generator)
	ctx := context.Background()

	storeChunk(t, store, "doc-1", "first passage", []float32{1, 0, 0})
	storeChunk(t, store, "doc-1", "second passage", []float32{0, 1, 0})

	answer, result, err := svc.Ask(ctx, "question", domain.QueryOptions{TopK: 5})
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
	assert.Len(t, result.Hits, 2)

	assert.Equal(t, "question", generator.prompt)
	require.Len(t, generator.passages, 2)
	assert.Equal(t, result.Hits[0].Chunk.Content, generator.passages[0])
	assert.Equal(t, result.Hits[1].Chunk.Content, generator.passages[1])
}

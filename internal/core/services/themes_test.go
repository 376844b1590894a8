package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsift/docsift/internal/adapters/driven/vectorstore/memory"
	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/themes"
)

func newThemeFixture(t *testing.T) (*ThemeService, *memory.Store) {
	t.Helper()

	taxonomy, err := themes.NewTaxonomy([]domain.Theme{
		{ID: "ai", Label: "AI", Triggers: []string{"neural"}},
		{ID: "math", Label: "Math", Triggers: []string{"integral"}},
	})
	require.NoError(t, err)
	classifier, err := themes.NewClassifier(taxonomy, 0)
	require.NoError(t, err)

	store, err := memory.NewStore(3)
	require.NoError(t, err)

	return NewThemeService(store, classifier), store
}

func seedDoc(t *testing.T, store *memory.Store, id string) {
	t.Helper()
	require.NoError(t, store.SaveDocument(context.Background(), domain.Document{ID: id, URI: id + ".txt"}))
}

func TestReport_ClassifiesAndPersists(t *testing.T) {
	svc, store := newThemeFixture(t)
	ctx := context.Background()

	seedDoc(t, store, "doc-1")
	id1, err := store.Insert(ctx, domain.Chunk{DocumentID: "doc-1", Content: "a neural approach"}, nil)
	require.NoError(t, err)
	id2, err := store.Insert(ctx, domain.Chunk{DocumentID: "doc-1", Content: "the integral of x"}, nil)
	require.NoError(t, err)
	_, err = store.Insert(ctx, domain.Chunk{DocumentID: "doc-1", Content: "nothing relevant here"}, nil)
	require.NoError(t, err)

	groups, err := svc.Report(ctx, "")
	require.NoError(t, err)
	require.Len(t, groups, 3)

	assert.Equal(t, "ai", groups[0].ThemeID)
	assert.Equal(t, "math", groups[1].ThemeID)
	assert.Equal(t, domain.UnclassifiedThemeID, groups[2].ThemeID)

	// Assignments are persisted, not just computed for the report.
	chunk, err := store.Get(ctx, id1)
	require.NoError(t, err)
	require.NotNil(t, chunk.Assignment)
	assert.Equal(t, "ai", chunk.Assignment.ThemeID)

	chunk, err = store.Get(ctx, id2)
	require.NoError(t, err)
	require.NotNil(t, chunk.Assignment)
	assert.Equal(t, "math", chunk.Assignment.ThemeID)
}

func TestReport_DoesNotReclassify(t *testing.T) {
	svc, store := newThemeFixture(t)
	ctx := context.Background()

	seedDoc(t, store, "doc-1")
	// A pre-existing assignment survives even though the content would
	// classify differently today.
	id, err := store.Insert(ctx, domain.Chunk{
		DocumentID: "doc-1",
		Content:    "a neural approach",
		Assignment: &domain.ThemeAssignment{ThemeID: "math", Confidence: 0.9},
	}, nil)
	require.NoError(t, err)

	groups, err := svc.Report(ctx, "")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "math", groups[0].ThemeID)

	chunk, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "math", chunk.Assignment.ThemeID)
}

func TestReport_ScopedToDocument(t *testing.T) {
	svc, store := newThemeFixture(t)
	ctx := context.Background()

	seedDoc(t, store, "doc-1")
	seedDoc(t, store, "doc-2")
	_, err := store.Insert(ctx, domain.Chunk{DocumentID: "doc-1", Content: "neural"}, nil)
	require.NoError(t, err)
	_, err = store.Insert(ctx, domain.Chunk{DocumentID: "doc-2", Content: "integral"}, nil)
	require.NoError(t, err)

	groups, err := svc.Report(ctx, "doc-2")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "math", groups[0].ThemeID)
}

func TestReport_UnknownDocument(t *testing.T) {
	svc, _ := newThemeFixture(t)

	_, err := svc.Report(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestThemes_ReturnsTaxonomyOrder(t *testing.T) {
	svc, _ := newThemeFixture(t)

	declared := svc.Themes()
	require.Len(t, declared, 2)
	assert.Equal(t, "ai", declared[0].ID)
	assert.Equal(t, "math", declared[1].ID)
}

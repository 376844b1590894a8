package services

import (
	"context"
	"fmt"

	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/core/ports/driven"
	"github.com/docsift/docsift/internal/core/ports/driving"
	"github.com/docsift/docsift/internal/logger"
	"github.com/docsift/docsift/internal/themes"
)

// Ensure ThemeService implements the interface.
var _ driving.ThemeService = (*ThemeService)(nil)

// ThemeService reports the thematic structure of the stored corpus.
// Classification writes assignments back through the store; it never
// mutates chunk identity or embeddings.
type ThemeService struct {
	store      driven.VectorStore
	classifier *themes.Classifier
	aggregator *themes.Aggregator
}

// NewThemeService creates a theme service.
func NewThemeService(store driven.VectorStore, classifier *themes.Classifier) *ThemeService {
	return &ThemeService{
		store:      store,
		classifier: classifier,
		aggregator: themes.NewAggregator(classifier.Taxonomy()),
	}
}

// Themes returns the active taxonomy in declaration order.
func (s *ThemeService) Themes() []domain.Theme {
	return s.classifier.Taxonomy().Themes()
}

// Report classifies chunks that still lack an assignment, persists the
// new assignments, and folds everything into per-theme groups. Empty
// documentID covers the whole corpus.
func (s *ThemeService) Report(ctx context.Context, documentID string) ([]domain.ThemeGroup, error) {
	logger.Section("Theme Report")

	chunks, err := s.collect(ctx, documentID)
	if err != nil {
		return nil, err
	}
	logger.Debug("Aggregating %d chunks", len(chunks))

	for i := range chunks {
		if chunks[i].Assignment != nil {
			continue
		}
		assignment := s.classifier.Classify(chunks[i].Content)
		chunks[i].Assignment = &assignment
		if err := s.store.SetAssignment(ctx, chunks[i].ID, assignment); err != nil {
			return nil, fmt.Errorf("persist assignment for chunk %d: %w", chunks[i].ID, err)
		}
	}

	return s.aggregator.Aggregate(chunks), nil
}

// collect gathers the chunks in scope for the report.
func (s *ThemeService) collect(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	if documentID != "" {
		if _, err := s.store.GetDocument(ctx, documentID); err != nil {
			return nil, err
		}
		return s.store.GetChunks(ctx, documentID)
	}

	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	var chunks []domain.Chunk
	for _, doc := range docs {
		docChunks, err := s.store.GetChunks(ctx, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("chunks for %s: %w", doc.ID, err)
		}
		chunks = append(chunks, docChunks...)
	}
	return chunks, nil
}

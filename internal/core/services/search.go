package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/core/ports/driven"
	"github.com/docsift/docsift/internal/core/ports/driving"
	"github.com/docsift/docsift/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// DefaultTopK applies when a query does not specify a limit.
const DefaultTopK = 5

// SearchService is a thin orchestration over the vector store: it
// resolves the textual query into a vector through the embedding
// provider and delegates ranking to the store. Scope filters are
// applied by the store before top-k truncation, never after.
type SearchService struct {
	store     driven.VectorStore
	embedder  driven.EmbeddingService
	generator driven.AnswerGenerator
}

// NewSearchService creates a search service. generator is optional
// (can be nil); without it only Ask is disabled.
func NewSearchService(
	store driven.VectorStore,
	embedder driven.EmbeddingService,
	generator driven.AnswerGenerator,
) *SearchService {
	return &SearchService{store: store, embedder: embedder, generator: generator}
}

// Search embeds the query and ranks stored chunks against it.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.QueryOptions) (domain.QueryResult, error) {
	logger.Section("Query Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return domain.QueryResult{Hits: []domain.ScoredChunk{}}, nil
	}

	if opts.TopK == 0 {
		opts.TopK = DefaultTopK
	}
	logger.Debug("TopK: %d, MinScore: %v, docs: %v, themes: %v",
		opts.TopK, opts.MinScore, opts.DocumentIDs, opts.ThemeIDs)

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("%w: embed query: %w", domain.ErrEmbeddingUnavailable, err)
	}
	logger.Debug("Query embedding: %d dimensions", len(vector))

	result, err := s.store.Query(ctx, vector, opts)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("query store: %w", err)
	}

	logger.Info("Results: %d hits, %d pending chunks excluded", len(result.Hits), result.Pending)
	return result, nil
}

// Ask retrieves context for the question and composes an answer
// through the answer generator. The core supplies only the ranked
// passages; the generated text is returned verbatim.
func (s *SearchService) Ask(ctx context.Context, question string, opts domain.QueryOptions) (string, domain.QueryResult, error) {
	if s.generator == nil {
		return "", domain.QueryResult{}, domain.ErrAnswerUnavailable
	}

	result, err := s.Search(ctx, question, opts)
	if err != nil {
		return "", domain.QueryResult{}, err
	}

	passages := make([]string, len(result.Hits))
	for i, hit := range result.Hits {
		passages[i] = hit.Chunk.Content
	}

	logger.Debug("Generating answer from %d passages via %s", len(passages), s.generator.ModelName())
	answer, err := s.generator.Generate(ctx, question, passages)
	if err != nil {
		return "", result, fmt.Errorf("generate answer: %w", err)
	}

	return answer, result, nil
}

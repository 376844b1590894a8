package driving

import (
	"context"

	"github.com/docsift/docsift/internal/core/domain"
)

// SearchService resolves textual queries into ranked chunks.
type SearchService interface {
	// Search embeds the query text and ranks stored chunks against it.
	// Scope filters in opts restrict candidates before ranking.
	Search(ctx context.Context, query string, opts domain.QueryOptions) (domain.QueryResult, error)

	// Ask retrieves context for the question and composes an answer
	// through the configured answer generator.
	Ask(ctx context.Context, question string, opts domain.QueryOptions) (string, domain.QueryResult, error)
}

// ThemeService reports thematic structure over the stored corpus.
type ThemeService interface {
	// Report classifies where needed and aggregates assignments into
	// per-theme statistics. Empty documentID covers the whole corpus.
	Report(ctx context.Context, documentID string) ([]domain.ThemeGroup, error)

	// Themes returns the active taxonomy in declaration order.
	Themes() []domain.Theme
}

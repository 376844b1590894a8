package driven

import (
	"context"

	"github.com/docsift/docsift/internal/core/domain"
)

// VectorStore exclusively owns chunk records and their vectors.
// Insertion is append-only with monotonically increasing ChunkIDs under
// a single-writer discipline; queries may run concurrently with each
// other and with inserts, observing either the pre- or post-insert
// state for any given chunk.
type VectorStore interface {
	// Dimensions returns the configured embedding dimension.
	Dimensions() int

	// SaveDocument records document metadata. Idempotent per ID.
	SaveDocument(ctx context.Context, doc domain.Document) error

	// GetDocument retrieves document metadata by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all known documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// Insert appends a chunk, assigning the next ChunkID. vector may be
	// nil for a chunk whose embedding failed; such chunks are excluded
	// from queries until MarkEmbedded succeeds. A non-nil vector whose
	// length differs from Dimensions fails with ErrDimensionMismatch.
	Insert(ctx context.Context, chunk domain.Chunk, vector []float32) (domain.ChunkID, error)

	// MarkEmbedded sets the embedding of a previously unembedded chunk.
	// The vector is dimension-checked like Insert; embeddings are
	// immutable once set.
	MarkEmbedded(ctx context.Context, id domain.ChunkID, vector []float32) error

	// SetAssignment records a theme assignment for a chunk without
	// touching its identity or embedding.
	SetAssignment(ctx context.Context, id domain.ChunkID, assignment domain.ThemeAssignment) error

	// Query ranks stored chunks by cosine similarity to the vector.
	// Scope filters restrict the candidate set before ranking and
	// top-k truncation. An empty store yields an empty result.
	Query(ctx context.Context, vector []float32, opts domain.QueryOptions) (domain.QueryResult, error)

	// Get retrieves a chunk by ID, failing with ErrNotFound if absent.
	Get(ctx context.Context, id domain.ChunkID) (*domain.Chunk, error)

	// GetChunks returns a document's chunks in position order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// Pending returns the chunks of a document that still lack an
	// embedding, in position order. Empty documentID means all.
	Pending(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// Purge removes a document and all its chunks. Removal is visible
	// to subsequent queries but never invalidates results already
	// returned to callers.
	Purge(ctx context.Context, documentID string) error

	// Close releases resources.
	Close() error
}

package driving

import (
	"context"

	"github.com/docsift/docsift/internal/core/domain"
)

// IngestReport summarises one ingestion run. Partial failures leave
// successfully embedded chunks queryable; failed chunks are stored
// unembedded and reported here, never silently dropped.
type IngestReport struct {
	// DocumentID is the ingested document.
	DocumentID string

	// Chunks is the total number of chunks produced by splitting.
	Chunks int

	// Embedded is the number of chunks stored with an embedding.
	Embedded int

	// Failed is the number of chunks stored without an embedding
	// after retries were exhausted.
	Failed int

	// Cancelled reports whether ingestion stopped early on context
	// cancellation. Chunks already produced are kept.
	Cancelled bool
}

// IngestService ingests plain text documents: split, classify, embed,
// store. Text extraction from binary formats happens outside the core.
type IngestService interface {
	// Ingest processes a document's raw text. A repeated documentID
	// purges the previous chunks first, creating fresh ChunkIDs.
	Ingest(ctx context.Context, documentID, uri, text string) (*IngestReport, error)

	// Reembed retries embedding for a document's pending chunks.
	// Empty documentID retries every pending chunk in the store.
	Reembed(ctx context.Context, documentID string) (*IngestReport, error)
}

// DocumentService manages stored documents.
type DocumentService interface {
	// List returns all known documents.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves one document's metadata.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// Chunks returns a document's chunks in position order.
	Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// Purge removes a document and all its chunks.
	Purge(ctx context.Context, documentID string) error
}

package domain

import "time"

// ChunkID is the stable integer handle for a stored chunk.
// IDs are assigned by the vector store in strictly increasing order
// and are never reused, even after a purge.
type ChunkID int64

// Document represents an ingested source text.
// It is immutable after ingestion; re-ingesting the same identifier
// replaces its chunks rather than mutating them in place.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// URI is the original location (file path, URL, etc).
	URI string

	// Language is the detected language tag (e.g. "pt", "en").
	// Empty when detection was not attempted.
	Language string

	// CharCount is the length of the raw text at ingestion time.
	CharCount int

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time
}

// Chunk represents a retrievable unit within a document.
// Chunks from one document form a contiguous, overlap-bounded cover
// of the source text.
type Chunk struct {
	// ID is assigned by the vector store on insert. Zero until stored.
	ID ChunkID

	// DocumentID links to the parent Document.
	DocumentID string

	// Position is the ordinal position within the document.
	Position int

	// StartOffset and EndOffset are character offsets into the parent
	// text; the chunk covers [StartOffset, EndOffset).
	StartOffset int
	EndOffset   int

	// Content is the text content of this chunk.
	Content string

	// Embedding is the vector representation. Nil until embedded;
	// once set it is never mutated.
	Embedding []float32

	// Assignment is the thematic classification, if any.
	Assignment *ThemeAssignment
}

// Embedded reports whether the chunk has an embedding vector.
func (c Chunk) Embedded() bool {
	return len(c.Embedding) > 0
}

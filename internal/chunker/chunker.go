// Package chunker provides fixed-size text chunking with overlap.
package chunker

import (
	"fmt"

	"github.com/docsift/docsift/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 200

// Splitter splits document text into overlapping retrievable units.
// Splitting proceeds by character count, not token count, so it is
// format-agnostic and deterministic: identical text with identical
// parameters always yields byte-identical chunk boundaries.
type Splitter struct {
	chunkSize int
	overlap   int
}

// New creates a Splitter. chunkSize and overlap must be positive
// integers with overlap < chunkSize; anything else is a configuration
// error, surfaced immediately and never retried.
func New(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrConfiguration, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", domain.ErrConfiguration, overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", domain.ErrConfiguration, overlap, chunkSize)
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}, nil
}

// ChunkSize returns the configured chunk size in characters.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the configured overlap in characters.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split cuts text into unembedded chunks for the given document.
// Each chunk after the first starts chunkSize-overlap characters after
// the previous chunk's start, so the chunks form a contiguous cover of
// the text with bounded redundancy. The last chunk may be shorter than
// chunkSize. Empty input produces an empty slice, not an error.
func (s *Splitter) Split(documentID, text string) []domain.Chunk {
	if text == "" {
		return nil
	}

	step := s.chunkSize - s.overlap
	chunks := make([]domain.Chunk, 0, len(text)/step+1)

	position := 0
	for start := 0; start < len(text); start += step {
		end := start + s.chunkSize
		if end > len(text) {
			end = len(text)
		}

		chunks = append(chunks, domain.Chunk{
			DocumentID:  documentID,
			Position:    position,
			StartOffset: start,
			EndOffset:   end,
			Content:     text[start:end],
		})
		position++

		if end == len(text) {
			break
		}
	}

	return chunks
}

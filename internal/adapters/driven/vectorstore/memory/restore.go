package memory

import (
	"fmt"

	"github.com/docsift/docsift/internal/core/domain"
)

// Restore inserts a chunk preserving its existing ChunkID. It is the
// load path used by durable stores to hydrate the arena at open; the
// ID counter advances past every restored ID so fresh inserts stay
// monotonic.
func (s *Store) Restore(chunk domain.Chunk) error {
	if chunk.ID <= 0 {
		return fmt.Errorf("%w: restore requires a positive chunk id, got %d", domain.ErrInvalidArgument, chunk.ID)
	}
	if chunk.Embedding != nil && len(chunk.Embedding) != s.dimensions {
		return fmt.Errorf("%w: got %d, store expects %d", domain.ErrDimensionMismatch, len(chunk.Embedding), s.dimensions)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.chunks[chunk.ID]; exists {
		return fmt.Errorf("%w: chunk %d already present", domain.ErrInvalidArgument, chunk.ID)
	}

	s.chunks[chunk.ID] = chunk
	s.order = append(s.order, chunk.ID)
	if chunk.ID >= s.nextID {
		s.nextID = chunk.ID + 1
	}
	return nil
}

// RestoreDocument records document metadata on the load path without
// touching timestamps.
func (s *Store) RestoreDocument(doc domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[doc.ID]; !exists {
		s.docOrder = append(s.docOrder, doc.ID)
	}
	s.docs[doc.ID] = doc
}

// Package memory provides the in-memory vector store: an append-only
// arena of chunks scanned linearly per query. Correctness over
// sub-linear indexing; the contract allows swapping in an ANN index
// later as long as the ranked output is equivalent.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is an in-memory implementation of driven.VectorStore.
// Writes are serialised by a mutex (single-writer discipline keeps
// ChunkID assignment monotonic); reads take the shared lock and return
// value copies, so in-flight results survive later purges.
type Store struct {
	mu         sync.RWMutex
	dimensions int

	nextID   domain.ChunkID
	order    []domain.ChunkID
	chunks   map[domain.ChunkID]domain.Chunk
	docs     map[string]domain.Document
	docOrder []string
}

// NewStore creates an empty store with a fixed embedding dimension.
func NewStore(dimensions int) (*Store, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: embedding dimension must be positive, got %d", domain.ErrConfiguration, dimensions)
	}
	return &Store{
		dimensions: dimensions,
		nextID:     1,
		chunks:     make(map[domain.ChunkID]domain.Chunk),
		docs:       make(map[string]domain.Document),
	}, nil
}

// Dimensions returns the configured embedding dimension.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// SaveDocument records document metadata.
func (s *Store) SaveDocument(_ context.Context, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	if _, exists := s.docs[doc.ID]; !exists {
		s.docOrder = append(s.docOrder, doc.ID)
	}
	s.docs[doc.ID] = doc
	return nil
}

// GetDocument retrieves document metadata by ID.
func (s *Store) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns all documents in ingestion order.
func (s *Store) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.docOrder))
	for _, id := range s.docOrder {
		docs = append(docs, s.docs[id])
	}
	return docs, nil
}

// Insert appends a chunk, assigning the next ChunkID.
func (s *Store) Insert(_ context.Context, chunk domain.Chunk, vector []float32) (domain.ChunkID, error) {
	if vector != nil && len(vector) != s.dimensions {
		return 0, fmt.Errorf("%w: got %d, store expects %d", domain.ErrDimensionMismatch, len(vector), s.dimensions)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	chunk.ID = s.nextID
	s.nextID++

	// Own the vector: embeddings are immutable once stored.
	if vector != nil {
		chunk.Embedding = append([]float32(nil), vector...)
	} else {
		chunk.Embedding = nil
	}

	s.chunks[chunk.ID] = chunk
	s.order = append(s.order, chunk.ID)
	return chunk.ID, nil
}

// MarkEmbedded sets the embedding of a previously unembedded chunk.
func (s *Store) MarkEmbedded(_ context.Context, id domain.ChunkID, vector []float32) error {
	if len(vector) != s.dimensions {
		return fmt.Errorf("%w: got %d, store expects %d", domain.ErrDimensionMismatch, len(vector), s.dimensions)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	chunk, ok := s.chunks[id]
	if !ok {
		return fmt.Errorf("%w: chunk %d", domain.ErrNotFound, id)
	}
	if chunk.Embedded() {
		return fmt.Errorf("%w: chunk %d already has an embedding", domain.ErrInvalidArgument, id)
	}

	chunk.Embedding = append([]float32(nil), vector...)
	s.chunks[id] = chunk
	return nil
}

// SetAssignment records a theme assignment for a chunk.
func (s *Store) SetAssignment(_ context.Context, id domain.ChunkID, assignment domain.ThemeAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chunk, ok := s.chunks[id]
	if !ok {
		return fmt.Errorf("%w: chunk %d", domain.ErrNotFound, id)
	}
	chunk.Assignment = &assignment
	s.chunks[id] = chunk
	return nil
}

// Query ranks stored chunks by cosine similarity to the vector.
// Candidates are filtered by scope before ranking and truncation, so
// top-k always reflects the filtered population. Ties are broken by
// lower ChunkID for reproducibility.
func (s *Store) Query(_ context.Context, vector []float32, opts domain.QueryOptions) (domain.QueryResult, error) {
	if opts.TopK <= 0 {
		return domain.QueryResult{}, fmt.Errorf("%w: top-k must be positive, got %d", domain.ErrInvalidArgument, opts.TopK)
	}
	if opts.MinScore < -1 || opts.MinScore > 1 {
		return domain.QueryResult{}, fmt.Errorf("%w: min score %v outside [-1, 1]", domain.ErrInvalidArgument, opts.MinScore)
	}
	if len(vector) != s.dimensions {
		return domain.QueryResult{}, fmt.Errorf("%w: got %d, store expects %d", domain.ErrDimensionMismatch, len(vector), s.dimensions)
	}

	docFilter := toSet(opts.DocumentIDs)
	themeFilter := toSet(opts.ThemeIDs)

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := domain.QueryResult{Hits: []domain.ScoredChunk{}}
	for _, id := range s.order {
		chunk := s.chunks[id]
		if !inScope(chunk, docFilter, themeFilter) {
			continue
		}
		if !chunk.Embedded() {
			result.Pending++
			continue
		}
		score := cosine(vector, chunk.Embedding)
		if score < opts.MinScore {
			continue
		}
		result.Hits = append(result.Hits, domain.ScoredChunk{Chunk: chunk, Score: score})
	}

	sort.SliceStable(result.Hits, func(i, j int) bool {
		if result.Hits[i].Score != result.Hits[j].Score {
			return result.Hits[i].Score > result.Hits[j].Score
		}
		return result.Hits[i].Chunk.ID < result.Hits[j].Chunk.ID
	})
	if len(result.Hits) > opts.TopK {
		result.Hits = result.Hits[:opts.TopK]
	}

	return result, nil
}

// Get retrieves a chunk by ID.
func (s *Store) Get(_ context.Context, id domain.ChunkID) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.chunks[id]
	if !ok {
		return nil, fmt.Errorf("%w: chunk %d", domain.ErrNotFound, id)
	}
	return &chunk, nil
}

// GetChunks returns a document's chunks in position order.
func (s *Store) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chunks []domain.Chunk
	for _, id := range s.order {
		if chunk := s.chunks[id]; chunk.DocumentID == documentID {
			chunks = append(chunks, chunk)
		}
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Position < chunks[j].Position })
	return chunks, nil
}

// Pending returns unembedded chunks, optionally scoped to a document.
func (s *Store) Pending(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chunks []domain.Chunk
	for _, id := range s.order {
		chunk := s.chunks[id]
		if chunk.Embedded() {
			continue
		}
		if documentID != "" && chunk.DocumentID != documentID {
			continue
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// Purge removes a document and all its chunks. Idempotent: purging an
// unknown document is a no-op.
func (s *Store) Purge(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.order[:0]
	for _, id := range s.order {
		if s.chunks[id].DocumentID == documentID {
			delete(s.chunks, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept

	if _, ok := s.docs[documentID]; ok {
		delete(s.docs, documentID)
		for i, id := range s.docOrder {
			if id == documentID {
				s.docOrder = append(s.docOrder[:i], s.docOrder[i+1:]...)
				break
			}
		}
	}
	return nil
}

// Close releases resources. No-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// cosine computes the cosine similarity of two equal-length vectors:
// dot product divided by the product of magnitudes. A zero-magnitude
// vector yields 0 with anything rather than dividing by zero.
func cosine(a, b []float32) float64 {
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

func toSet(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// inScope applies document and theme filters. Chunks without an
// assignment count as unclassified for theme filtering.
func inScope(chunk domain.Chunk, docFilter, themeFilter map[string]bool) bool {
	if docFilter != nil && !docFilter[chunk.DocumentID] {
		return false
	}
	if themeFilter != nil {
		themeID := domain.UnclassifiedThemeID
		if chunk.Assignment != nil {
			themeID = chunk.Assignment.ThemeID
		}
		if !themeFilter[themeID] {
			return false
		}
	}
	return true
}

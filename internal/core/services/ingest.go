package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/docsift/docsift/internal/chunker"
	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/core/ports/driven"
	"github.com/docsift/docsift/internal/core/ports/driving"
	"github.com/docsift/docsift/internal/logger"
	"github.com/docsift/docsift/internal/themes"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// Default ingestion knobs.
const (
	DefaultEmbedConcurrency = 4
	DefaultEmbedTimeout     = 30 * time.Second
	DefaultEmbedAttempts    = 3
	defaultBackoffBase      = 500 * time.Millisecond
)

// IngestOptions tunes the embedding stage.
type IngestOptions struct {
	// Concurrency bounds the number of parallel embedding calls.
	Concurrency int

	// Timeout applies per embedding call.
	Timeout time.Duration

	// Attempts is the total number of tries per chunk, including the
	// first. Exponential backoff separates retries.
	Attempts int
}

func (o IngestOptions) withDefaults() IngestOptions {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultEmbedConcurrency
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultEmbedTimeout
	}
	if o.Attempts <= 0 {
		o.Attempts = DefaultEmbedAttempts
	}
	return o
}

// IngestService turns raw document text into stored, embedded,
// classified chunks. Embedding calls run concurrently across a bounded
// worker pool; inserts go through the store's single writer.
type IngestService struct {
	store      driven.VectorStore
	embedder   driven.EmbeddingService
	splitter   *chunker.Splitter
	classifier *themes.Classifier
	opts       IngestOptions
}

// NewIngestService creates an ingest service. classifier may be nil to
// skip classification at ingest time.
func NewIngestService(
	store driven.VectorStore,
	embedder driven.EmbeddingService,
	splitter *chunker.Splitter,
	classifier *themes.Classifier,
	opts IngestOptions,
) *IngestService {
	return &IngestService{
		store:      store,
		embedder:   embedder,
		splitter:   splitter,
		classifier: classifier,
		opts:       opts.withDefaults(),
	}
}

// Ingest processes one document: split, classify, embed, store.
// Re-ingesting an existing documentID purges its previous chunks first,
// so concurrent readers keep their already-returned results while new
// ChunkIDs replace the old ones.
//
// Chunks whose embedding fails after retries are stored unembedded and
// counted in the report; their text is never dropped. Cancellation is
// cooperative at chunk granularity: results already produced are kept.
func (s *IngestService) Ingest(ctx context.Context, documentID, uri, text string) (*driving.IngestReport, error) {
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id must not be empty", domain.ErrInvalidArgument)
	}

	logger.Section("Ingest")
	logger.Info("Document %s: %d characters", documentID, len(text))

	if err := s.store.Purge(ctx, documentID); err != nil {
		return nil, fmt.Errorf("purge previous chunks: %w", err)
	}

	doc := domain.Document{ID: documentID, URI: uri, CharCount: len(text)}
	if err := s.store.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	chunks := s.splitter.Split(documentID, text)
	logger.Debug("Split into %d chunks (size=%d overlap=%d)",
		len(chunks), s.splitter.ChunkSize(), s.splitter.Overlap())

	if s.classifier != nil {
		for i := range chunks {
			assignment := s.classifier.Classify(chunks[i].Content)
			chunks[i].Assignment = &assignment
		}
	}

	report := &driving.IngestReport{DocumentID: documentID, Chunks: len(chunks)}
	vectors := s.embedAll(ctx, chunks, report)

	// Inserts are sequential in position order; the store's writer lock
	// keeps ChunkID assignment monotonic even with other writers.
	for i := range chunks {
		if _, err := s.store.Insert(ctx, chunks[i], vectors[i]); err != nil {
			return report, fmt.Errorf("insert chunk %d: %w", chunks[i].Position, err)
		}
	}

	logger.Info("Ingest complete: %d embedded, %d pending", report.Embedded, report.Failed)
	return report, nil
}

// embedAll fans the chunks out over a bounded worker pool. The returned
// slice is position-aligned with chunks; nil entries mark failures.
// Submission stops at chunk granularity when ctx is cancelled; chunks
// never submitted count as failed so the report stays exhaustive.
func (s *IngestService) embedAll(ctx context.Context, chunks []domain.Chunk, report *driving.IngestReport) [][]float32 {
	vectors := make([][]float32, len(chunks))
	errs := make([]error, len(chunks))

	var wg sync.WaitGroup
	slots := make(chan struct{}, s.opts.Concurrency)

	submitted := 0
	for i := range chunks {
		select {
		case <-ctx.Done():
			report.Cancelled = true
		case slots <- struct{}{}:
			wg.Add(1)
			submitted++
			go func(i int) {
				defer wg.Done()
				defer func() { <-slots }()
				vectors[i], errs[i] = s.embedOne(ctx, chunks[i].Content)
			}(i)
			continue
		}
		break
	}
	wg.Wait()

	for i := range chunks {
		switch {
		case i >= submitted:
			report.Failed++
		case errs[i] != nil:
			logger.Warn("Chunk %d embedding failed: %v", chunks[i].Position, errs[i])
			vectors[i] = nil
			report.Failed++
		default:
			report.Embedded++
		}
	}
	return vectors
}

// embedOne embeds a single text with a per-call timeout and bounded
// exponential backoff. A cancelled parent context stops retrying.
func (s *IngestService) embedOne(ctx context.Context, text string) ([]float32, error) {
	backoff := retry.WithMaxRetries(uint64(s.opts.Attempts-1), retry.NewExponential(defaultBackoffBase))

	var vector []float32
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()

		v, err := s.embedder.Embed(callCtx, text)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // Parent cancelled; do not retry.
			}
			return retry.RetryableError(fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err))
		}
		vector = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vector, nil
}

// Reembed retries embedding for chunks stored without a vector.
// Empty documentID covers every pending chunk in the store.
func (s *IngestService) Reembed(ctx context.Context, documentID string) (*driving.IngestReport, error) {
	pending, err := s.store.Pending(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list pending chunks: %w", err)
	}

	logger.Section("Reembed")
	logger.Info("%d pending chunks", len(pending))

	report := &driving.IngestReport{DocumentID: documentID, Chunks: len(pending)}
	for _, chunk := range pending {
		if ctx.Err() != nil {
			report.Cancelled = true
			report.Failed += report.Chunks - report.Embedded - report.Failed
			break
		}

		vector, err := s.embedOne(ctx, chunk.Content)
		if err != nil {
			report.Failed++
			continue
		}
		if err := s.store.MarkEmbedded(ctx, chunk.ID, vector); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Purged while we were embedding; nothing to record.
				continue
			}
			return report, fmt.Errorf("mark chunk %d embedded: %w", chunk.ID, err)
		}
		report.Embedded++
	}

	return report, nil
}

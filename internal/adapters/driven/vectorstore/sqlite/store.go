// Package sqlite provides the durable vector store. Chunks and their
// embeddings persist in a single SQLite database; at open the rows are
// hydrated into an in-memory arena so query rankings are identical
// before and after a restart. Mutations write through to the database
// first and to the arena second.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/docsift/docsift/internal/adapters/driven/vectorstore/memory"
	"github.com/docsift/docsift/internal/adapters/driven/vectorstore/sqlite/migrations"
	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a SQLite-backed implementation of driven.VectorStore.
type Store struct {
	db    *sql.DB
	path  string
	arena *memory.Store

	// writeMu serialises mutations so database ids and arena ids
	// advance in lockstep (single-writer discipline).
	writeMu sync.Mutex
}

// NewStore opens (or creates) the store at dataDir with the given
// embedding dimension. If dataDir is empty, defaults to
// ~/.docsift/data.
func NewStore(dataDir string, dimensions int) (*Store, error) {
	arena, err := memory.NewStore(dimensions)
	if err != nil {
		return nil, err
	}

	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docsift", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "corpus.db")

	// WAL mode lets queries run concurrently with ongoing inserts.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath, arena: arena}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	if err := s.hydrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("loading stored chunks: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Dimensions returns the configured embedding dimension.
func (s *Store) Dimensions() int {
	return s.arena.Dimensions()
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// hydrate replays the persisted rows into the arena in id order, so a
// reopened store reproduces identical query rankings.
func (s *Store) hydrate() error {
	docRows, err := s.db.Query(`
		SELECT id, uri, language, char_count, created_at
		FROM documents ORDER BY created_at, id
	`)
	if err != nil {
		return fmt.Errorf("querying documents: %w", err)
	}
	defer docRows.Close()

	for docRows.Next() {
		var doc domain.Document
		var createdAt string
		if err := docRows.Scan(&doc.ID, &doc.URI, &doc.Language, &doc.CharCount, &createdAt); err != nil {
			return fmt.Errorf("scanning document: %w", err)
		}
		doc.CreatedAt = parseTime(createdAt)
		s.arena.RestoreDocument(doc)
	}
	if err := docRows.Err(); err != nil {
		return err
	}

	chunkRows, err := s.db.Query(`
		SELECT id, document_id, position, start_offset, end_offset,
		       content, embedding, theme_id, theme_confidence
		FROM chunks ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("querying chunks: %w", err)
	}
	defer chunkRows.Close()

	for chunkRows.Next() {
		chunk, err := scanChunk(chunkRows)
		if err != nil {
			return err
		}
		if err := s.arena.Restore(chunk); err != nil {
			return fmt.Errorf("restoring chunk %d: %w", chunk.ID, err)
		}
	}
	return chunkRows.Err()
}

// SaveDocument stores or updates document metadata.
func (s *Store) SaveDocument(ctx context.Context, doc domain.Document) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, uri, language, char_count, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			uri = excluded.uri,
			language = excluded.language,
			char_count = excluded.char_count
	`, doc.ID, doc.URI, doc.Language, doc.CharCount, doc.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return s.arena.SaveDocument(ctx, doc)
}

// GetDocument retrieves document metadata by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	return s.arena.GetDocument(ctx, id)
}

// ListDocuments returns all documents in ingestion order.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return s.arena.ListDocuments(ctx)
}

// Insert appends a chunk; the database assigns the monotonically
// increasing id, and the arena mirrors the row.
func (s *Store) Insert(ctx context.Context, chunk domain.Chunk, vector []float32) (domain.ChunkID, error) {
	if vector != nil && len(vector) != s.arena.Dimensions() {
		return 0, fmt.Errorf("%w: got %d, store expects %d", domain.ErrDimensionMismatch, len(vector), s.arena.Dimensions())
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var themeID any
	var themeConfidence any
	if chunk.Assignment != nil {
		themeID = chunk.Assignment.ThemeID
		themeConfidence = chunk.Assignment.Confidence
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO chunks (document_id, position, start_offset, end_offset,
		                    content, embedding, theme_id, theme_confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, chunk.DocumentID, chunk.Position, chunk.StartOffset, chunk.EndOffset,
		chunk.Content, float32SliceToBytes(vector), themeID, themeConfidence)
	if err != nil {
		return 0, fmt.Errorf("inserting chunk: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inserted id: %w", err)
	}

	chunk.ID = domain.ChunkID(id)
	if vector != nil {
		chunk.Embedding = append([]float32(nil), vector...)
	} else {
		chunk.Embedding = nil
	}
	if err := s.arena.Restore(chunk); err != nil {
		return 0, err
	}
	return chunk.ID, nil
}

// MarkEmbedded sets the embedding of a previously unembedded chunk.
func (s *Store) MarkEmbedded(ctx context.Context, id domain.ChunkID, vector []float32) error {
	if len(vector) != s.arena.Dimensions() {
		return fmt.Errorf("%w: got %d, store expects %d", domain.ErrDimensionMismatch, len(vector), s.arena.Dimensions())
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE chunks SET embedding = ? WHERE id = ? AND embedding IS NULL",
		float32SliceToBytes(vector), int64(id))
	if err != nil {
		return fmt.Errorf("updating embedding: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		// Distinguish missing from already-embedded via the arena.
		if _, err := s.arena.Get(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: chunk %d already has an embedding", domain.ErrInvalidArgument, id)
	}
	return s.arena.MarkEmbedded(ctx, id, vector)
}

// SetAssignment records a theme assignment for a chunk.
func (s *Store) SetAssignment(ctx context.Context, id domain.ChunkID, assignment domain.ThemeAssignment) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE chunks SET theme_id = ?, theme_confidence = ? WHERE id = ?",
		assignment.ThemeID, assignment.Confidence, int64(id))
	if err != nil {
		return fmt.Errorf("updating assignment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: chunk %d", domain.ErrNotFound, id)
	}
	return s.arena.SetAssignment(ctx, id, assignment)
}

// Query ranks stored chunks by cosine similarity via the arena.
func (s *Store) Query(ctx context.Context, vector []float32, opts domain.QueryOptions) (domain.QueryResult, error) {
	return s.arena.Query(ctx, vector, opts)
}

// Get retrieves a chunk by ID.
func (s *Store) Get(ctx context.Context, id domain.ChunkID) (*domain.Chunk, error) {
	return s.arena.Get(ctx, id)
}

// GetChunks returns a document's chunks in position order.
func (s *Store) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	return s.arena.GetChunks(ctx, documentID)
}

// Pending returns unembedded chunks, optionally scoped to a document.
func (s *Store) Pending(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	return s.arena.Pending(ctx, documentID)
}

// Purge removes a document and all its chunks.
func (s *Store) Purge(ctx context.Context, documentID string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// ON DELETE CASCADE removes the chunk rows.
	if _, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", documentID); err != nil {
		return fmt.Errorf("purging document: %w", err)
	}
	return s.arena.Purge(ctx, documentID)
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanChunk(row scanner) (domain.Chunk, error) {
	var chunk domain.Chunk
	var id int64
	var embeddingBlob []byte
	var themeID sql.NullString
	var themeConfidence sql.NullFloat64

	if err := row.Scan(&id, &chunk.DocumentID, &chunk.Position, &chunk.StartOffset,
		&chunk.EndOffset, &chunk.Content, &embeddingBlob, &themeID, &themeConfidence); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return chunk, domain.ErrNotFound
		}
		return chunk, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.ID = domain.ChunkID(id)
	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
	if themeID.Valid {
		chunk.Assignment = &domain.ThemeAssignment{
			ThemeID:    themeID.String,
			Confidence: themeConfidence.Float64,
		}
	}
	return chunk, nil
}

func parseTime(value string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
// A nil slice maps to NULL, marking the chunk as unembedded.
func float32SliceToBytes(floats []float32) []byte {
	if floats == nil {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

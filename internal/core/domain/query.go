package domain

// QueryOptions configures a similarity query.
type QueryOptions struct {
	// TopK is the maximum number of results. Must be positive.
	TopK int

	// MinScore is the minimum cosine similarity a chunk must reach
	// to be included. Valid range is [-1, 1].
	MinScore float64

	// DocumentIDs restricts the candidate set to specific documents.
	// Empty means no document filter.
	DocumentIDs []string

	// ThemeIDs restricts the candidate set to chunks assigned to
	// specific themes. Empty means no theme filter.
	ThemeIDs []string
}

// ScoredChunk is a single ranked hit.
type ScoredChunk struct {
	// Chunk is a value copy of the stored chunk; it stays valid even
	// if the document is purged after the query returns.
	Chunk Chunk

	// Score is the cosine similarity to the query vector, in [-1, 1].
	Score float64
}

// QueryResult is an ordered sequence of hits, descending by score.
// Ties are broken by lower ChunkID (earlier-inserted wins).
type QueryResult struct {
	// Hits holds at most TopK results.
	Hits []ScoredChunk

	// Pending is the number of chunks in the candidate set that have
	// no embedding yet and were therefore excluded from ranking.
	Pending int
}

package domain

// UnclassifiedThemeID is the explicit fallback identifier used when no
// theme's confidence clears the classifier floor.
const UnclassifiedThemeID = "unclassified"

// Theme is a static taxonomy entry. Taxonomies are configuration-owned
// and read-only for the lifetime of a classifier instance.
type Theme struct {
	// ID is the stable taxonomy identifier (e.g. "inteligencia_artificial").
	ID string

	// Label is the human-readable name (e.g. "Inteligência Artificial").
	Label string

	// Triggers are the keyword/phrase matchers for this theme, in
	// declaration order. Multi-word triggers weigh higher than single
	// words when scoring.
	Triggers []string
}

// ThemeAssignment links a chunk to its best-matching theme.
// A chunk has at most one assignment; chunks below the confidence
// floor carry the UnclassifiedThemeID with the losing confidence.
type ThemeAssignment struct {
	// ThemeID is the assigned taxonomy identifier, or
	// UnclassifiedThemeID when nothing cleared the floor.
	ThemeID string

	// Confidence is the normalised classification confidence in [0, 1].
	Confidence float64
}

// Unclassified reports whether the assignment is the explicit fallback.
func (a ThemeAssignment) Unclassified() bool {
	return a.ThemeID == UnclassifiedThemeID
}

// ThemeGroup holds per-theme statistics produced by the aggregator.
type ThemeGroup struct {
	// ThemeID identifies the group; UnclassifiedThemeID for the
	// fallback group, which always sorts last.
	ThemeID string

	// Label is the theme's human-readable name.
	Label string

	// ChunkCount is the number of chunks in the group.
	ChunkCount int

	// CharVolume is the total character count across the group.
	CharVolume int

	// MeanConfidence is the average assignment confidence.
	MeanConfidence float64
}

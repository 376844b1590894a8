package themes

import "github.com/docsift/docsift/internal/core/domain"

// Aggregator folds already-computed theme assignments into per-theme
// statistics. It performs no classification itself, which keeps the
// scoring algorithm and the grouping policy independently testable.
type Aggregator struct {
	taxonomy *Taxonomy
}

// NewAggregator creates an aggregator over the given taxonomy.
func NewAggregator(taxonomy *Taxonomy) *Aggregator {
	return &Aggregator{taxonomy: taxonomy}
}

// Aggregate groups chunks by their assigned theme. Every input chunk
// lands in exactly one group; chunks without an assignment (or with an
// unknown theme id) fall into the explicit Unclassified group. Groups
// follow taxonomy declaration order with Unclassified last, and themes
// with no chunks are omitted.
func (a *Aggregator) Aggregate(chunks []domain.Chunk) []domain.ThemeGroup {
	type bucket struct {
		count      int
		volume     int
		confidence float64
	}
	buckets := make(map[string]*bucket, a.taxonomy.Len()+1)

	for _, chunk := range chunks {
		id := domain.UnclassifiedThemeID
		confidence := 0.0
		if chunk.Assignment != nil {
			confidence = chunk.Assignment.Confidence
			if _, known := a.taxonomy.Lookup(chunk.Assignment.ThemeID); known {
				id = chunk.Assignment.ThemeID
			}
		}

		b := buckets[id]
		if b == nil {
			b = &bucket{}
			buckets[id] = b
		}
		b.count++
		b.volume += len(chunk.Content)
		b.confidence += confidence
	}

	order := make([]string, 0, len(buckets))
	for _, theme := range a.taxonomy.Themes() {
		if _, ok := buckets[theme.ID]; ok {
			order = append(order, theme.ID)
		}
	}
	if _, ok := buckets[domain.UnclassifiedThemeID]; ok {
		order = append(order, domain.UnclassifiedThemeID)
	}

	groups := make([]domain.ThemeGroup, 0, len(order))
	for _, id := range order {
		b := buckets[id]
		groups = append(groups, domain.ThemeGroup{
			ThemeID:        id,
			Label:          a.taxonomy.Label(id),
			ChunkCount:     b.count,
			CharVolume:     b.volume,
			MeanConfidence: b.confidence / float64(b.count),
		})
	}
	return groups
}

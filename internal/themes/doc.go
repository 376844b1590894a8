// Package themes implements confidence-scored thematic classification
// against a fixed taxonomy, plus aggregation of assignments into
// per-theme statistics.
//
// The classifier scores a text by counting trigger keyword/phrase
// occurrences, weighted by trigger specificity, and normalising across
// all themes so confidences sum to at most 1. Chunks whose best
// confidence stays below the configured floor are tagged Unclassified
// rather than forced into a low-confidence theme.
package themes

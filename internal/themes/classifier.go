package themes

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/docsift/docsift/internal/core/domain"
)

// DefaultFloor is the default minimum confidence a theme must reach;
// below it a chunk is tagged Unclassified.
const DefaultFloor = 0.15

// compiledTrigger is a trigger pre-tokenised at construction time.
// Weight equals the trigger's word count, so longer multi-word phrases
// outweigh common single words.
type compiledTrigger struct {
	words  []string
	weight int
}

// Classifier assigns each text a best-matching theme from a fixed
// taxonomy with a confidence score. It is read-only after construction
// and safe for concurrent use.
type Classifier struct {
	taxonomy *Taxonomy
	floor    float64
	triggers [][]compiledTrigger
}

// NewClassifier creates a classifier over the given taxonomy.
// floor must be in [0, 1); anything else is a configuration error.
func NewClassifier(taxonomy *Taxonomy, floor float64) (*Classifier, error) {
	if taxonomy == nil {
		return nil, fmt.Errorf("%w: classifier requires a taxonomy", domain.ErrConfiguration)
	}
	if floor < 0 || floor >= 1 {
		return nil, fmt.Errorf("%w: confidence floor %v outside [0, 1)", domain.ErrConfiguration, floor)
	}

	compiled := make([][]compiledTrigger, taxonomy.Len())
	for i, theme := range taxonomy.Themes() {
		for _, trigger := range theme.Triggers {
			words := tokenise(trigger)
			if len(words) == 0 {
				return nil, fmt.Errorf("%w: theme %q has a blank trigger", domain.ErrConfiguration, theme.ID)
			}
			compiled[i] = append(compiled[i], compiledTrigger{words: words, weight: len(words)})
		}
	}

	return &Classifier{taxonomy: taxonomy, floor: floor, triggers: compiled}, nil
}

// Taxonomy returns the classifier's taxonomy.
func (c *Classifier) Taxonomy() *Taxonomy {
	return c.taxonomy
}

// Floor returns the configured confidence floor.
func (c *Classifier) Floor() float64 {
	return c.floor
}

// Classify assigns the best-matching theme for the text.
//
// Each theme's raw score is the count of trigger occurrences in the
// lower-cased text, weighted by trigger word count. Raw scores are
// divided by the text's total word count to obtain rates, then
// normalised linearly so confidences sum to at most 1. The highest
// confidence wins; ties go to the earliest declared theme. A best
// confidence below the floor yields the Unclassified assignment, and
// a text with no matches at all yields Unclassified with confidence 0.
func (c *Classifier) Classify(text string) domain.ThemeAssignment {
	words := tokenise(text)
	if len(words) == 0 {
		return domain.ThemeAssignment{ThemeID: domain.UnclassifiedThemeID}
	}

	rates := make([]float64, c.taxonomy.Len())
	var sum float64
	for i, themeTriggers := range c.triggers {
		var raw int
		for _, trigger := range themeTriggers {
			raw += countPhrase(words, trigger.words) * trigger.weight
		}
		rates[i] = float64(raw) / float64(len(words))
		sum += rates[i]
	}

	if sum == 0 {
		return domain.ThemeAssignment{ThemeID: domain.UnclassifiedThemeID}
	}

	best := 0
	for i := 1; i < len(rates); i++ {
		// Strict comparison keeps the earliest declared theme on ties.
		if rates[i] > rates[best] {
			best = i
		}
	}

	confidence := rates[best] / sum
	if confidence < c.floor {
		return domain.ThemeAssignment{ThemeID: domain.UnclassifiedThemeID, Confidence: confidence}
	}

	return domain.ThemeAssignment{
		ThemeID:    c.taxonomy.Themes()[best].ID,
		Confidence: confidence,
	}
}

// tokenise lower-cases text and splits it into letter/digit words,
// discarding punctuation. Both triggers and candidate texts pass
// through the same tokeniser so matching is boundary-exact.
func tokenise(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// countPhrase counts occurrences of the phrase word sequence within
// words. Single-word phrases reduce to whole-word counting, so short
// triggers like "ia" never match inside longer words.
func countPhrase(words, phrase []string) int {
	if len(phrase) == 0 || len(phrase) > len(words) {
		return 0
	}

	count := 0
	for i := 0; i+len(phrase) <= len(words); i++ {
		match := true
		for j, w := range phrase {
			if words[i+j] != w {
				match = false
				break
			}
		}
		if match {
			count++
		}
	}
	return count
}

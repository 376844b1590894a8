package driven

import "context"

// AnswerGenerator composes a natural-language answer from ranked
// context passages. This is an optional collaborator: the core only
// ever supplies the passages, never judges the generated text.
type AnswerGenerator interface {
	// Generate answers the prompt grounded on the ordered context
	// passages.
	Generate(ctx context.Context, prompt string, contextPassages []string) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

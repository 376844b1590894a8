package services

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// mockEmbedder is a deterministic in-process embedding service. It
// derives a tiny vector from the text so distinct inputs get distinct
// embeddings, and can be told to fail for texts containing a marker.
type mockEmbedder struct {
	mu         sync.Mutex
	calls      int
	failOn     string // substring that triggers failure
	failsLeft  int    // failures before succeeding; -1 fails forever
	respectCtx bool
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.respectCtx && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if m.failOn != "" && strings.Contains(text, m.failOn) {
		if m.failsLeft < 0 {
			return nil, errors.New("embedder down")
		}
		if m.failsLeft > 0 {
			m.failsLeft--
			return nil, errors.New("embedder down")
		}
	}

	var sum float32
	for _, r := range text {
		sum += float32(r)
	}
	return []float32{sum, float32(len(text)), 1}, nil
}

func (m *mockEmbedder) Dimensions() int    { return 3 }
func (m *mockEmbedder) ModelName() string  { return "mock-embedder" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error       { return nil }

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockGenerator records the prompt and passages it received.
type mockGenerator struct {
	mu       sync.Mutex
	answer   string
	err      error
	prompt   string
	passages []string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string, contextPassages []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompt = prompt
	m.passages = contextPassages
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockGenerator) ModelName() string { return "mock-generator" }
func (m *mockGenerator) Close() error      { return nil }

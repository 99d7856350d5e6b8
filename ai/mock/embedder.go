package mock

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/poiesic/mosaic/ai"
)

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// Dimensions is the length of generated vectors. Defaults to 8.
	Dimensions int

	// EmbedTextFunc is called by EmbedText if set.
	// If nil, uses default deterministic behavior.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	mu        sync.Mutex
	callCount int
}

var _ ai.Embedder = (*MockEmbedder)(nil)

// NewMockEmbedder creates a mock text embedder producing deterministic
// vectors of the given dimension.
// Note: Returns concrete type to allow test assertions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 8
	}
	return &MockEmbedder{Dimensions: dimensions}
}

// EmbedText generates a deterministic embedding based on text hash.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}

	return generateDeterministicVector(text, m.Dimensions), nil
}

// CallCount returns the number of times EmbedText was called.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// MockMultimodalEmbedder is a test double for ai.MultimodalEmbedder.
type MockMultimodalEmbedder struct {
	// Dimensions is the length of generated vectors. Defaults to 8.
	Dimensions int

	// EmbedMultimodalFunc is called by EmbedMultimodal if set.
	EmbedMultimodalFunc func(ctx context.Context, media ai.Media, contextText string) ([]float32, error)

	mu        sync.Mutex
	callCount int
}

var _ ai.MultimodalEmbedder = (*MockMultimodalEmbedder)(nil)

// NewMockMultimodalEmbedder creates a mock multimodal embedder producing
// deterministic vectors of the given dimension.
func NewMockMultimodalEmbedder(dimensions int) *MockMultimodalEmbedder {
	if dimensions <= 0 {
		dimensions = 8
	}
	return &MockMultimodalEmbedder{Dimensions: dimensions}
}

// EmbedMultimodal generates a deterministic embedding from the media bytes
// and context text.
func (m *MockMultimodalEmbedder) EmbedMultimodal(ctx context.Context, media ai.Media, contextText string) ([]float32, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.EmbedMultimodalFunc != nil {
		return m.EmbedMultimodalFunc(ctx, media, contextText)
	}

	return generateDeterministicVector(string(media.Data)+contextText, m.Dimensions), nil
}

// CallCount returns the number of times EmbedMultimodal was called.
func (m *MockMultimodalEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// generateDeterministicVector creates a deterministic embedding vector from text.
// It uses FNV hash to ensure the same input always produces the same vector.
func generateDeterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		// Simple pseudo-random generation based on seed and index
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000) / 1000.0
	}

	// Normalize to unit vector
	var sumSquares float32
	for _, v := range vector {
		sumSquares += v * v
	}
	if sumSquares > 0 {
		norm := float32(1.0) / float32(sumSquares)
		for i := range vector {
			vector[i] *= norm
		}
	}

	return vector
}

package mock

import (
	"github.com/poiesic/mosaic/ai"
)

// MockProvider aggregates the mock backends.
type MockProvider struct {
	embedder   *MockEmbedder
	multimodal *MockMultimodalEmbedder
	transcribe *MockTranscriber
	vision     *MockImageAnalyzer
}

var _ ai.Provider = (*MockProvider)(nil)

// NewMockProvider creates a provider whose backends all use deterministic
// default behavior. Text vectors have textDim dimensions, multimodal
// vectors multimodalDim.
func NewMockProvider(textDim, multimodalDim int) *MockProvider {
	return &MockProvider{
		embedder:   NewMockEmbedder(textDim),
		multimodal: NewMockMultimodalEmbedder(multimodalDim),
		transcribe: NewMockTranscriber(),
		vision:     NewMockImageAnalyzer(),
	}
}

// Embedder returns the text embedding backend.
func (p *MockProvider) Embedder() ai.Embedder { return p.embedder }

// MultimodalEmbedder returns the multimodal embedding backend.
func (p *MockProvider) MultimodalEmbedder() ai.MultimodalEmbedder { return p.multimodal }

// Transcriber returns the transcription backend.
func (p *MockProvider) Transcriber() ai.Transcriber { return p.transcribe }

// ImageAnalyzer returns the image analysis backend.
func (p *MockProvider) ImageAnalyzer() ai.ImageAnalyzer { return p.vision }

// Close releases nothing; mocks hold no resources.
func (p *MockProvider) Close() error { return nil }

// GetMockEmbedder returns the concrete text embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder { return p.embedder }

// GetMockMultimodalEmbedder returns the concrete multimodal embedder for
// test assertions.
func (p *MockProvider) GetMockMultimodalEmbedder() *MockMultimodalEmbedder { return p.multimodal }

// GetMockTranscriber returns the concrete transcriber for test assertions.
func (p *MockProvider) GetMockTranscriber() *MockTranscriber { return p.transcribe }

// GetMockImageAnalyzer returns the concrete image analyzer for test assertions.
func (p *MockProvider) GetMockImageAnalyzer() *MockImageAnalyzer { return p.vision }

package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/poiesic/mosaic/ai"
)

// MockTranscriber is a test double for ai.Transcriber.
type MockTranscriber struct {
	// TranscribeFunc is called by Transcribe if set.
	// If nil, uses default deterministic behavior.
	TranscribeFunc func(ctx context.Context, segment ai.Media) (*ai.Transcript, error)

	mu        sync.Mutex
	callCount int
}

var _ ai.Transcriber = (*MockTranscriber)(nil)

// NewMockTranscriber creates a mock transcriber with default deterministic
// behavior.
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{}
}

// Transcribe produces a deterministic transcript derived from the segment size.
func (m *MockTranscriber) Transcribe(ctx context.Context, segment ai.Media) (*ai.Transcript, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, segment)
	}

	return &ai.Transcript{
		Text:     fmt.Sprintf("mock transcript of %d media bytes", len(segment.Data)),
		Language: "en",
		Model:    "mock-transcriber",
		HasAudio: true,
	}, nil
}

// CallCount returns the number of times Transcribe was called.
func (m *MockTranscriber) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

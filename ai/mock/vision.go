package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/poiesic/mosaic/ai"
)

// MockImageAnalyzer is a test double for ai.ImageAnalyzer.
type MockImageAnalyzer struct {
	// DescribeFunc is called by Describe if set.
	DescribeFunc func(ctx context.Context, image ai.Media) (string, error)

	// ConceptsFunc is called by Concepts if set.
	ConceptsFunc func(ctx context.Context, image ai.Media) (string, error)

	mu            sync.Mutex
	describeCalls int
	conceptCalls  int
}

var _ ai.ImageAnalyzer = (*MockImageAnalyzer)(nil)

// NewMockImageAnalyzer creates a mock image analyzer with default
// deterministic behavior.
func NewMockImageAnalyzer() *MockImageAnalyzer {
	return &MockImageAnalyzer{}
}

// Describe produces a deterministic comprehensive description.
func (m *MockImageAnalyzer) Describe(ctx context.Context, image ai.Media) (string, error) {
	m.mu.Lock()
	m.describeCalls++
	m.mu.Unlock()

	if m.DescribeFunc != nil {
		return m.DescribeFunc(ctx, image)
	}
	return fmt.Sprintf("mock detailed description of a %s image, %d bytes", image.MIMEType, len(image.Data)), nil
}

// Concepts produces a deterministic concept list.
func (m *MockImageAnalyzer) Concepts(ctx context.Context, image ai.Media) (string, error) {
	m.mu.Lock()
	m.conceptCalls++
	m.mu.Unlock()

	if m.ConceptsFunc != nil {
		return m.ConceptsFunc(ctx, image)
	}
	return "mock concepts", nil
}

// DescribeCalls returns the number of times Describe was called.
func (m *MockImageAnalyzer) DescribeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.describeCalls
}

// ConceptCalls returns the number of times Concepts was called.
func (m *MockImageAnalyzer) ConceptCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conceptCalls
}

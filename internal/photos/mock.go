package photos

import (
	"context"
	"fmt"
	"strings"

	"postforge/internal/core"
)

// MockProvider implements Provider with deterministic results for testing
// and offline development.
type MockProvider struct {
	results []core.PhotoRef
	err     error
}

// NewMockProvider creates a mock provider with default results
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// SetResults overrides the results returned by Search
func (m *MockProvider) SetResults(refs []core.PhotoRef) {
	m.results = refs
}

// SetError makes Search return the given error
func (m *MockProvider) SetError(err error) {
	m.err = err
}

// GetName returns the name of this provider
func (m *MockProvider) GetName() string {
	return "Mock"
}

// Search returns the configured results, or a generated deterministic set
func (m *MockProvider) Search(ctx context.Context, query string, limit int) ([]core.PhotoRef, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.results != nil {
		return m.results, nil
	}

	tag := strings.ReplaceAll(strings.ToLower(query), " ", "-")
	refs := make([]core.PhotoRef, 0, limit)
	for i := 0; i < limit; i++ {
		refs = append(refs, core.PhotoRef{
			ID:          fmt.Sprintf("mock-%s-%d", tag, i+1),
			URL:         fmt.Sprintf("https://example.com/photos/%s-%d.jpg", tag, i+1),
			Description: fmt.Sprintf("Mock photo %d for %q", i+1, query),
			Attribution: "Mock provider",
			Rank:        i + 1,
		})
	}
	return refs, nil
}

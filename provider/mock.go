package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a deterministic provider for testing and dry runs.
type MockProvider struct {
	Translations map[string]string // Map of source text to translation
	Failures     map[string]error  // Texts that fail with the given error
	Identity     bool              // Return the input unchanged when not mapped

	mu          sync.Mutex
	callCount   int
	lastRequest *TranslateRequest
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":       "こんにちは",
			"World":       "世界",
			"Hello World": "Bonjour",
			"Save":        "保存",
		},
	}
}

// NewIdentityProvider returns a mock that echoes every input.
func NewIdentityProvider() *MockProvider {
	return &MockProvider{Identity: true}
}

// Translate returns mock translations.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastRequest = &req
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := m.Failures[req.Text]; ok {
		return "", err
	}
	if translation, ok := m.Translations[req.Text]; ok {
		return translation, nil
	}
	if m.Identity {
		return req.Text, nil
	}
	// Return bracketed text for unknown translations
	return fmt.Sprintf("[%s]", req.Text), nil
}

// CallCount returns the number of Translate calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastRequest returns the last request received, or nil.
func (m *MockProvider) LastRequest() *TranslateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastRequest = nil
}

// Verify MockProvider implements Provider
var _ Provider = (*MockProvider)(nil)

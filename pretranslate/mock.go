package pretranslate

import (
	"context"
	"fmt"
)

// MockProvider is a canned-translation backend for tests.
type MockProvider struct {
	Translations map[string]string
	CallCount    int
	LastRequest  *Request
	Err          error // returned on every call when set
}

// NewMockProvider creates a mock with an empty translation table.
func NewMockProvider() *MockProvider {
	return &MockProvider{Translations: map[string]string{}}
}

// Translate returns table entries, or bracketed source text for unknowns.
func (m *MockProvider) Translate(_ context.Context, req Request) ([]string, error) {
	m.CallCount++
	m.LastRequest = &req
	if m.Err != nil {
		return nil, m.Err
	}

	out := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		if tr, ok := m.Translations[text]; ok {
			out[i] = tr
		} else {
			out[i] = fmt.Sprintf("[%s]", text)
		}
	}
	return out, nil
}

var _ Provider = (*MockProvider)(nil)

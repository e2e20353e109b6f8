// Package mock provides a scriptable Provider for tests.
//
//	p := mock.NewProvider("test-model").
//	    WithQueryFunc(func(ctx context.Context, prompt, system string) (string, error) {
//	        return `["go", "testing"]`, nil
//	    })
package mock

import (
	"context"
	"sync"

	"github.com/streed/smart-notes/internal/provider"
)

// Provider is a test double for provider.Provider.
type Provider struct {
	// QueryFunc is called by Query if set. If nil, Query echoes the prompt.
	QueryFunc func(ctx context.Context, prompt, systemPrompt string) (string, error)

	model string

	mu      sync.Mutex
	calls   int
	prompts []string
}

var _ provider.Provider = (*Provider)(nil)

// NewProvider creates a mock reporting model as its model name.
func NewProvider(model string) *Provider {
	return &Provider{model: model}
}

// WithQueryFunc sets the query behavior and returns the mock.
func (m *Provider) WithQueryFunc(fn func(ctx context.Context, prompt, systemPrompt string) (string, error)) *Provider {
	m.QueryFunc = fn
	return m
}

// Returning sets a fixed successful response.
func (m *Provider) Returning(response string) *Provider {
	return m.WithQueryFunc(func(context.Context, string, string) (string, error) {
		return response, nil
	})
}

// Failing makes every query fail with err.
func (m *Provider) Failing(err error) *Provider {
	return m.WithQueryFunc(func(context.Context, string, string) (string, error) {
		return "", err
	})
}

func (m *Provider) Query(ctx context.Context, prompt, systemPrompt string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, prompt, systemPrompt)
	}
	return prompt, nil
}

func (m *Provider) Model() string { return m.model }

func (m *Provider) Kind() provider.Kind { return provider.KindOpenRouter }

// CallCount returns the number of Query calls.
func (m *Provider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Prompts returns every prompt received, in call order.
func (m *Provider) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

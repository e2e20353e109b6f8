package provider

import (
	"errors"
	"net/http"
	"strings"
)

const (
	DefaultOpenRouterEndpoint = "https://openrouter.ai/api/v1"
	DefaultOllamaEndpoint     = "http://localhost:11434/v1"
	DefaultModel              = "meta-llama/llama-3.3-70b-instruct:free"
	DefaultOllamaModel        = "llama3.2:3b"
	DefaultReferer            = "https://notes.app"
	DefaultTitle              = "Smart Note Organizer"
)

// Config holds the settings needed to reach a provider.
type Config struct {
	Kind Kind

	// Endpoint is the base URL of an OpenAI-compatible API, without the
	// trailing /chat/completions.
	Endpoint string

	// APIKey is sent as a bearer token. Ollama ignores it.
	APIKey string

	Model string

	// Referer and Title identify the application to OpenRouter.
	Referer string
	Title   string

	// HTTPClient overrides the transport. Used by tests.
	HTTPClient *http.Client
}

// DefaultConfig returns an OpenRouter configuration without credentials.
func DefaultConfig() *Config {
	return &Config{
		Kind:     KindOpenRouter,
		Endpoint: DefaultOpenRouterEndpoint,
		Model:    DefaultModel,
		Referer:  DefaultReferer,
		Title:    DefaultTitle,
	}
}

// Normalize fills endpoint and model defaults for the selected kind and
// trims a trailing slash from the endpoint.
func (c *Config) Normalize() {
	if c.Endpoint == "" {
		switch c.Kind {
		case KindOpenRouter:
			c.Endpoint = DefaultOpenRouterEndpoint
		case KindOllama:
			c.Endpoint = DefaultOllamaEndpoint
		}
	}
	c.Endpoint = strings.TrimSuffix(c.Endpoint, "/")

	if c.Model == "" {
		switch c.Kind {
		case KindOpenRouter:
			c.Model = DefaultModel
		case KindOllama:
			c.Model = DefaultOllamaModel
		}
	}
}

// Validate normalizes the configuration and checks it is usable.
// An OpenRouter configuration without an API key is rejected; callers
// wanting to run without credentials should select KindNone.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Kind == KindNone {
		return nil
	}
	if c.Kind == KindOpenRouter && c.APIKey == "" {
		return errors.New("provider config: APIKey is required for openrouter")
	}
	if c.Model == "" {
		return errors.New("provider config: Model is required")
	}
	return nil
}

// Package provider is the boundary to external text-generation services.
//
// A Provider sends one chat request (an optional system message followed by a
// user message) and returns the text content of the first choice. Every
// failure is reported as a *Error; nothing panics past this package and no
// request is ever retried. Callers decide what to do with a failure, which in
// this application always means falling back to a deterministic algorithm.
package provider

import (
	"context"
	"fmt"
	"strings"

	interrors "github.com/streed/smart-notes/internal/errors"
)

// Provider queries a language model.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Query sends prompt (and systemPrompt when non-empty) and returns the
	// content of the first choice.
	Query(ctx context.Context, prompt, systemPrompt string) (string, error)

	// Model names the model used, for provenance tagging.
	Model() string

	// Kind reports which backend serves the queries.
	Kind() Kind
}

// Kind identifies a provider backend. It is resolved once from
// configuration; nothing downstream branches on provider names.
type Kind int

const (
	// KindNone disables the provider; every query fails with FailureDisabled.
	KindNone Kind = iota
	// KindOpenRouter talks to an OpenAI-compatible chat completions API,
	// OpenRouter by default.
	KindOpenRouter
	// KindOllama talks to a local Ollama server through its OpenAI-compatible endpoint.
	KindOllama
)

func (k Kind) String() string {
	switch k {
	case KindOpenRouter:
		return "openrouter"
	case KindOllama:
		return "ollama"
	default:
		return "none"
	}
}

// ParseKind resolves a configured provider name. Empty means KindNone.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "off", "disabled":
		return KindNone, nil
	case "openrouter", "openai":
		return KindOpenRouter, nil
	case "ollama", "local":
		return KindOllama, nil
	}
	return KindNone, fmt.Errorf("%w: %q", interrors.ErrUnknownProvider, s)
}

// New builds the provider selected by cfg.Kind.
func New(cfg *Config) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Kind {
	case KindOpenRouter:
		return newOpenRouter(cfg)
	case KindOllama:
		return newOllama(cfg)
	default:
		return Disabled(), nil
	}
}

// SafeQuery calls p.Query and reports a panic as a *Error, so a faulty
// implementation fails like any other provider.
func SafeQuery(ctx context.Context, p Provider, prompt, systemPrompt string) (content string, err error) {
	defer func() {
		if r := recover(); r != nil {
			content, err = "", Recovered(p.Kind().String(), r)
		}
	}()
	return p.Query(ctx, prompt, systemPrompt)
}

type disabled struct{}

// Disabled returns a provider that never contacts anything.
func Disabled() Provider {
	return disabled{}
}

func (disabled) Query(context.Context, string, string) (string, error) {
	return "", &Error{Failure: FailureDisabled, Provider: KindNone.String()}
}

func (disabled) Model() string { return "" }

func (disabled) Kind() Kind { return KindNone }

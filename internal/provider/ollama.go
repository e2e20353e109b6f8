package provider

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// langchaingo reports HTTP errors as formatted strings only.
var statusCodePattern = regexp.MustCompile(`status code:?\s*(\d{3})`)

// Ollama queries a local Ollama server through its OpenAI-compatible API.
type Ollama struct {
	client llms.Model
	model  string
	logger *slog.Logger
}

func newOllama(cfg *Config) (*Ollama, error) {
	token := cfg.APIKey
	if token == "" {
		// Local servers don't check the token but the client requires one.
		token = "none"
	}

	opts := []openai.Option{
		openai.WithBaseURL(cfg.Endpoint),
		openai.WithToken(token),
		openai.WithModel(cfg.Model),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, openai.WithHTTPClient(cfg.HTTPClient))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}

	return &Ollama{
		client: client,
		model:  cfg.Model,
		logger: slog.Default().With("component", "ollama-provider"),
	}, nil
}

// Query implements Provider.
func (p *Ollama) Query(ctx context.Context, prompt, systemPrompt string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("provider query panicked", "panic", r)
			text, err = "", Recovered(KindOllama.String(), r)
		}
	}()

	content := make([]llms.MessageContent, 0, 2)
	if systemPrompt != "" {
		content = append(content, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		})
	}
	content = append(content, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(prompt)},
	})

	response, genErr := p.client.GenerateContent(ctx, content)
	if genErr != nil {
		p.logger.Warn("failed to generate content", "err", genErr)
		if m := statusCodePattern.FindStringSubmatch(genErr.Error()); m != nil {
			status, _ := strconv.Atoi(m[1])
			return "", HTTPFailure(KindOllama.String(), status, genErr)
		}
		if errors.Is(genErr, openai.ErrEmptyResponse) {
			return "", MalformedResponse(KindOllama.String(), "empty response")
		}
		return "", RequestFailure(KindOllama.String(), genErr)
	}

	if len(response.Choices) < 1 {
		return "", MalformedResponse(KindOllama.String(), "no choices in response")
	}
	text = response.Choices[0].Content
	if strings.TrimSpace(text) == "" {
		return "", MalformedResponse(KindOllama.String(), "empty message content")
	}
	return text, nil
}

// Model implements Provider.
func (p *Ollama) Model() string { return p.model }

// Kind implements Provider.
func (p *Ollama) Kind() Kind { return KindOllama }

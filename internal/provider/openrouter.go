package provider

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenRouter queries an OpenAI-compatible chat completions API.
type OpenRouter struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

func newOpenRouter(cfg *Config) (*OpenRouter, error) {
	opts := []option.RequestOption{
		option.WithBaseURL(cfg.Endpoint + "/"),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &OpenRouter{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		logger: slog.Default().With("component", "openrouter-provider"),
	}, nil
}

// Query implements Provider.
func (p *OpenRouter) Query(ctx context.Context, prompt, systemPrompt string) (content string, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("provider query panicked", "panic", r)
			content, err = "", Recovered(KindOpenRouter.String(), r)
		}
	}()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt))

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: messages,
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			p.logger.Warn("provider returned error status", "status", apiErr.StatusCode)
			return "", HTTPFailure(KindOpenRouter.String(), apiErr.StatusCode, err)
		}
		p.logger.Warn("provider request failed", "err", err)
		return "", RequestFailure(KindOpenRouter.String(), err)
	}

	if len(completion.Choices) == 0 {
		return "", MalformedResponse(KindOpenRouter.String(), "no choices in response")
	}
	content = completion.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", MalformedResponse(KindOpenRouter.String(), "empty message content")
	}
	return content, nil
}

// Model implements Provider.
func (p *OpenRouter) Model() string { return p.model }

// Kind implements Provider.
func (p *OpenRouter) Kind() Kind { return KindOpenRouter }

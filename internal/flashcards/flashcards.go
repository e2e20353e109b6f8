// Package flashcards generates question and answer cards from note text.
package flashcards

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	interrors "github.com/streed/smart-notes/internal/errors"
	"github.com/streed/smart-notes/internal/logger"
	"github.com/streed/smart-notes/internal/provider"
)

const (
	// ModelRuleBased is the provenance of cards built by RuleBased.
	ModelRuleBased = "rule-based-flashcards"
	// ModelFallback is the provenance when card generation itself failed.
	ModelFallback = "fallback"
)

const cardPrompt = `Please create educational flashcards from the following text. Each flashcard should have a clear question on the front that tests a key concept, and a concise but complete answer on the back.

Text:
%s

Create 3-5 high-quality flashcards in this exact format:
Q: [precise question about a key concept, term, or fact from the text]
A: [clear, concise answer that fully addresses the question]
---
`

// Card is a generated question and answer pair.
type Card struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Tags     []string `json:"tags"`
}

// Result holds generated cards and how they were produced.
type Result struct {
	Cards     []Card `json:"flashcards"`
	ModelUsed string `json:"model_used"`
}

// Generator asks a provider for cards chunk by chunk and falls back to
// RuleBased when the provider yields none.
type Generator struct {
	provider provider.Provider
	timeout  time.Duration
	logger   *slog.Logger
}

func NewGenerator(p provider.Provider, timeout time.Duration) *Generator {
	if p == nil {
		p = provider.Disabled()
	}
	return &Generator{
		provider: p,
		timeout:  timeout,
		logger:   logger.With("component", "flashcards"),
	}
}

// Generate builds cards for text. Every card is tagged with title when one
// is given. The only error is ErrEmptyContent.
func (g *Generator) Generate(ctx context.Context, text, title, modelHint string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, interrors.ErrEmptyContent
	}

	tags := []string{}
	if title != "" {
		tags = []string{title}
	}

	if cards := g.fromProvider(ctx, text, tags); len(cards) > 0 {
		return &Result{Cards: cards, ModelUsed: g.provenance(modelHint)}, nil
	}

	return g.fallback(text, tags), nil
}

// ruleBased is the fallback generator; tests swap it to fault the fallback.
var ruleBased = RuleBased

func (g *Generator) fallback(text string, tags []string) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("rule-based flashcards panicked", "panic", r)
			result = &Result{Cards: []Card{}, ModelUsed: ModelFallback}
		}
	}()

	cards := ruleBased(text, tags)
	if cards == nil {
		cards = []Card{}
	}
	return &Result{Cards: cards, ModelUsed: ModelRuleBased}
}

func (g *Generator) fromProvider(ctx context.Context, text string, tags []string) (cards []Card) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("parsing provider flashcards panicked", "panic", r)
			cards = nil
		}
	}()

	for i, chunk := range Chunk(text) {
		response, err := g.query(ctx, chunk)
		if err != nil {
			if f, _ := provider.FailureOf(err); f == provider.FailureDisabled {
				return nil
			}
			g.logger.Warn("provider flashcards failed for chunk", "chunk", i, "err", err)
			continue
		}
		cards = append(cards, ParseCards(response, tags)...)
	}
	return cards
}

func (g *Generator) query(ctx context.Context, chunk string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return provider.SafeQuery(ctx, g.provider, fmt.Sprintf(cardPrompt, chunk), "")
}

func (g *Generator) provenance(modelHint string) string {
	if modelHint != "" {
		return modelHint
	}
	if m := g.provider.Model(); m != "" {
		return m
	}
	return g.provider.Kind().String()
}

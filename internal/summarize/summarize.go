package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/streed/smart-notes/internal/constants"
	interrors "github.com/streed/smart-notes/internal/errors"
	"github.com/streed/smart-notes/internal/logger"
	"github.com/streed/smart-notes/internal/models"
	"github.com/streed/smart-notes/internal/provider"
	"github.com/streed/smart-notes/internal/textproc"
)

const summarySystemPrompt = "You are an expert summarizer. Create a concise summary of the provided text " +
	"that captures the key points and main ideas. Keep the summary under 300 words."

// Summarizer provides text summarization capabilities
type Summarizer struct {
	provider provider.Provider
	timeout  time.Duration
	logger   *slog.Logger
}

// SummaryResult contains the summarized content
type SummaryResult struct {
	Summary        string `json:"summary"`
	ModelUsed      string `json:"model_used"`
	OriginalLength int    `json:"original_length"`
	SummaryLength  int    `json:"summary_length"`
}

// NewSummarizer creates a new summarizer instance. A zero timeout leaves the
// provider call bounded only by the caller's context.
func NewSummarizer(p provider.Provider, timeout time.Duration) *Summarizer {
	if p == nil {
		p = provider.Disabled()
	}
	return &Summarizer{
		provider: p,
		timeout:  timeout,
		logger:   logger.With("component", "summarize"),
	}
}

// Summarize returns a summary of text. Text shorter than DirectTextThreshold
// is returned as is without contacting the provider. Otherwise the provider
// is asked once and any failure falls back to Extract. The only error is
// ErrEmptyContent. modelHint, when set, is reported as the provenance of a
// provider summary.
func (s *Summarizer) Summarize(ctx context.Context, text, modelHint string) (*SummaryResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, interrors.ErrEmptyContent
	}

	if textproc.Length(text) < constants.DirectTextThreshold {
		r := newResult(text, text, ModelDirectText)
		return &r, nil
	}

	if summary, ok := s.fromProvider(ctx, text); ok {
		r := newResult(text, summary, s.provenance(modelHint))
		return &r, nil
	}

	fallback := s.fallback(text)
	return &fallback, nil
}

// extract is the fallback summarizer; tests swap it to fault the fallback.
var extract = Extract

func (s *Summarizer) fallback(text string) (result SummaryResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("extraction panicked, truncating text", "panic", r)
			result = emergencySummary(text)
		}
	}()
	return extract(text)
}

// SummarizeNotes creates a combined summary of multiple notes. When query is
// set the prompt text mentions it so the summary can focus on it.
func (s *Summarizer) SummarizeNotes(ctx context.Context, notes []*models.Note, query string) (*SummaryResult, error) {
	var b strings.Builder
	if query != "" {
		fmt.Fprintf(&b, "Search query: %q.\n\n", query)
	}
	for i, note := range notes {
		fmt.Fprintf(&b, "Note %d: %s.\n", i+1, note.Title)
		content := note.Content
		if textproc.Length(content) > constants.NoteExcerptChars {
			content = textproc.Truncate(content, constants.NoteExcerptChars) + constants.Ellipsis
		}
		b.WriteString(strings.TrimSpace(content))
		b.WriteString("\n\n")
	}
	return s.Summarize(ctx, b.String(), "")
}

func (s *Summarizer) fromProvider(ctx context.Context, text string) (string, bool) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	prompt := "Please summarize the following text:\n\n" + textproc.Truncate(text, constants.SummaryPromptChars)
	summary, err := provider.SafeQuery(ctx, s.provider, prompt, summarySystemPrompt)
	if err != nil {
		if f, _ := provider.FailureOf(err); f != provider.FailureDisabled {
			s.logger.Warn("provider summarization failed, using extraction", "err", err)
		}
		return "", false
	}
	if strings.TrimSpace(summary) == "" {
		s.logger.Warn("provider returned an empty summary, using extraction")
		return "", false
	}

	s.logger.Debug("provider summary received", "model", s.provider.Model(), "elapsed", time.Since(start))
	return summary, true
}

func (s *Summarizer) provenance(modelHint string) string {
	if modelHint != "" {
		return modelHint
	}
	if m := s.provider.Model(); m != "" {
		return m
	}
	return s.provider.Kind().String()
}

package autotag

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/streed/smart-notes/internal/constants"
	interrors "github.com/streed/smart-notes/internal/errors"
	"github.com/streed/smart-notes/internal/logger"
	"github.com/streed/smart-notes/internal/provider"
	"github.com/streed/smart-notes/internal/textproc"
)

// ModelFallback is the provenance of the placeholder tags returned when tag
// computation itself fails.
const ModelFallback = "fallback"

const tagSystemPrompt = `You are an expert at extracting relevant tags from content.
Generate 5-8 specific, focused tags that accurately represent the key concepts in the text.
Your response should be ONLY a JSON array of strings, nothing else.
Example: ["machine learning", "neural networks", "data science", "python", "tensorflow"]`

// AutoTagger tags text with a provider, falling back to ExtractTags.
type AutoTagger struct {
	provider provider.Provider
	timeout  time.Duration
	logger   *slog.Logger
}

// NewAutoTagger creates a tagger. A zero timeout leaves the provider call
// bounded only by the caller's context.
func NewAutoTagger(p provider.Provider, timeout time.Duration) *AutoTagger {
	if p == nil {
		p = provider.Disabled()
	}
	return &AutoTagger{
		provider: p,
		timeout:  timeout,
		logger:   logger.With("component", "autotag"),
	}
}

// Tag returns tags for text. The provider is asked first; any provider
// failure or unparseable response falls back to frequency tagging, so the
// only error is ErrEmptyContent. modelHint, when set, is reported as the
// provenance of provider-generated tags.
func (at *AutoTagger) Tag(ctx context.Context, text, modelHint string) (*TagResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, interrors.ErrEmptyContent
	}

	if tags, ok := at.fromProvider(ctx, text); ok {
		return &TagResult{Tags: tags, ModelUsed: at.provenance(modelHint)}, nil
	}

	fallback := at.fallback(text)
	return &fallback, nil
}

// extractTags is the fallback tagger; tests swap it to fault the fallback.
var extractTags = ExtractTags

func (at *AutoTagger) fallback(text string) (result TagResult) {
	defer func() {
		if r := recover(); r != nil {
			at.logger.Error("frequency tagging panicked, using placeholder tags", "panic", r)
			result = TagResult{
				Tags:      append([]string(nil), constants.PlaceholderTags...),
				ModelUsed: ModelFallback,
			}
		}
	}()
	return extractTags(text)
}

func (at *AutoTagger) fromProvider(ctx context.Context, text string) (tags []string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			at.logger.Error("parsing provider tags panicked, using frequency tags", "panic", r)
			tags, ok = nil, false
		}
	}()

	if at.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, at.timeout)
		defer cancel()
	}

	prompt := "Extract tags from this text:\n\n" + textproc.Truncate(text, constants.TagPromptChars)
	response, err := provider.SafeQuery(ctx, at.provider, prompt, tagSystemPrompt)
	if err != nil {
		if f, _ := provider.FailureOf(err); f != provider.FailureDisabled {
			at.logger.Warn("provider tagging failed, using frequency tags", "err", err)
		}
		return nil, false
	}

	parsed := ParseTags(response)
	if !parsed.OK() {
		at.logger.Warn("could not parse provider tags, using frequency tags", "err", parsed.Err)
		return nil, false
	}
	at.logger.Debug("provider tags parsed", "stage", parsed.Stage.String(), "count", len(parsed.Tags))
	return parsed.Tags, true
}

func (at *AutoTagger) provenance(modelHint string) string {
	if modelHint != "" {
		return modelHint
	}
	if m := at.provider.Model(); m != "" {
		return m
	}
	return at.provider.Kind().String()
}

// ParseStage records which parse attempt produced a ParseResult.
type ParseStage int

const (
	ParseFailed ParseStage = iota
	// ParseStrict means the whole response was a JSON array.
	ParseStrict
	// ParseBracketScan means the array was found between the first '[' and
	// the last ']' of the response.
	ParseBracketScan
)

func (s ParseStage) String() string {
	switch s {
	case ParseStrict:
		return "strict"
	case ParseBracketScan:
		return "bracket-scan"
	default:
		return "failed"
	}
}

// ParseResult is the outcome of parsing a provider tag response.
type ParseResult struct {
	Tags  []string
	Stage ParseStage
	Err   error
}

// OK reports whether parsing produced at least one tag.
func (r ParseResult) OK() bool {
	return r.Stage != ParseFailed && len(r.Tags) > 0
}

// ParseTags decodes a provider response that should be a JSON array of
// tags. The whole trimmed response is tried first, then the substring
// between its first '[' and last ']'. Strings are trimmed, numbers and
// booleans are formatted, and null, nested arrays or objects are dropped.
// Duplicate tags keep their first position.
func ParseTags(response string) ParseResult {
	trimmed := strings.TrimSpace(response)

	tags, strictErr := decodeTagArray(trimmed)
	if strictErr == nil {
		return stageResult(tags, ParseStrict)
	}

	start := strings.Index(trimmed, "[")
	end := strings.LastIndex(trimmed, "]")
	if start < 0 || end <= start {
		return ParseResult{Stage: ParseFailed, Err: fmt.Errorf("no JSON array in response: %w", strictErr)}
	}

	tags, err := decodeTagArray(trimmed[start : end+1])
	if err != nil {
		return ParseResult{Stage: ParseFailed, Err: err}
	}
	return stageResult(tags, ParseBracketScan)
}

func stageResult(tags []string, stage ParseStage) ParseResult {
	if len(tags) == 0 {
		return ParseResult{Stage: ParseFailed, Err: fmt.Errorf("empty tag array")}
	}
	return ParseResult{Tags: tags, Stage: stage}
}

func decodeTagArray(s string) ([]string, error) {
	var raw []any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(raw))
	tags := make([]string, 0, len(raw))
	for _, v := range raw {
		var tag string
		switch t := v.(type) {
		case string:
			tag = strings.TrimSpace(t)
		case float64, bool:
			tag = fmt.Sprint(t)
		default:
			continue
		}
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags, nil
}

package summarize

import (
	"strings"

	"github.com/streed/smart-notes/internal/constants"
	"github.com/streed/smart-notes/internal/textproc"
)

// Provenance values reported in SummaryResult.ModelUsed.
const (
	ModelDirectText          = "direct-text"
	ModelRuleBased           = "rule-based"
	ModelRuleBasedExtraction = "rule-based-extraction"
	ModelFallback            = "fallback"
)

// Extract builds a summary from the text's own sentences. Text of at most
// ShortTextSentences sentences is returned unchanged. Longer text yields the
// first sentence, the middle sentence and the last one; past
// LongTextSentences, every SampleStride-th sentence of the first quarter
// (starting at the second) is added after the first. The result is capped
// at MaxSummaryChars runes including the ellipsis.
func Extract(text string) SummaryResult {
	sentences := textproc.Sentences(text)
	n := len(sentences)
	if n <= constants.ShortTextSentences {
		return newResult(text, text, ModelRuleBased)
	}

	parts := []string{sentences[0]}
	if n > constants.LongTextSentences {
		for i := 1; i < n/4; i += constants.SampleStride {
			parts = append(parts, sentences[i])
		}
	}
	parts = append(parts, sentences[n/2], sentences[n-1])

	summary := strings.Join(parts, " ")
	if textproc.Length(summary) > constants.MaxSummaryChars {
		keep := constants.MaxSummaryChars - len(constants.Ellipsis)
		summary = textproc.Truncate(summary, keep) + constants.Ellipsis
	}
	return newResult(text, summary, ModelRuleBasedExtraction)
}

// emergencySummary is the cheapest deterministic summary, used when
// extraction itself fails.
func emergencySummary(text string) SummaryResult {
	summary := text
	if textproc.Length(text) > constants.EmergencySummaryChars {
		summary = textproc.Truncate(text, constants.EmergencySummaryChars) + constants.Ellipsis
	}
	return newResult(text, summary, ModelFallback)
}

func newResult(original, summary, model string) SummaryResult {
	return SummaryResult{
		Summary:        summary,
		ModelUsed:      model,
		OriginalLength: textproc.Length(original),
		SummaryLength:  textproc.Length(summary),
	}
}

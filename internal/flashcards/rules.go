package flashcards

import (
	"strings"

	"github.com/streed/smart-notes/internal/constants"
	"github.com/streed/smart-notes/internal/textproc"
)

// Chunk splits long text into paragraph-aligned pieces of about
// FlashcardChunkChars runes. Text at or under the limit is one chunk.
// A single paragraph longer than the limit becomes its own chunk.
func Chunk(text string) []string {
	if textproc.Length(text) <= constants.FlashcardChunkChars {
		return []string{text}
	}

	var chunks []string
	var current string
	for _, p := range nonBlank(strings.Split(text, "\n\n")) {
		if textproc.Length(current)+textproc.Length(p) > constants.FlashcardChunkChars {
			if current != "" {
				chunks = append(chunks, current)
			}
			current = p
			continue
		}
		if current != "" {
			current += "\n\n" + p
		} else {
			current = p
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// ParseCards reads "Q: ... A: ..." blocks separated by "---" lines.
// Blocks missing either marker, or whose question or answer is too short,
// are dropped.
func ParseCards(response string, tags []string) []Card {
	var cards []Card
	for _, block := range strings.Split(response, "---") {
		if !strings.Contains(block, "Q:") || !strings.Contains(block, "A:") {
			continue
		}
		parts := strings.Split(block, "A:")
		question := strings.TrimSpace(strings.ReplaceAll(parts[0], "Q:", ""))
		answer := strings.TrimSpace(parts[1])
		if textproc.Length(question) <= constants.MinCardFieldChars || textproc.Length(answer) <= constants.MinCardFieldChars {
			continue
		}
		cards = append(cards, Card{Question: question, Answer: answer, Tags: tags})
	}
	return cards
}

// RuleBased derives cards from the leading paragraphs of text without a
// language model. Paragraphs are blank-line separated, or line separated
// when there are fewer than two blank-line paragraphs.
func RuleBased(text string, tags []string) []Card {
	paragraphs := nonBlank(strings.Split(text, "\n\n"))
	if len(paragraphs) < 2 {
		paragraphs = nonBlank(strings.Split(text, "\n"))
	}
	if len(paragraphs) > constants.FlashcardParagraphs {
		paragraphs = paragraphs[:constants.FlashcardParagraphs]
	}

	var cards []Card
	for _, p := range paragraphs {
		if textproc.Length(strings.TrimSpace(p)) < constants.MinParagraphChars {
			continue
		}
		question, answer := paragraphCard(p)
		cards = append(cards, Card{Question: question, Answer: answer, Tags: tags})
	}
	return cards
}

func paragraphCard(p string) (question, answer string) {
	sentences := strings.Split(p, ". ")
	if len(sentences) == 1 {
		prefix := textproc.Truncate(p, constants.DescribedPrefixChars)
		return "What is described by: '" + prefix + "...'?", p
	}

	first := sentences[0]
	rest := strings.Join(sentences[1:], ". ")

	if term, def, ok := strings.Cut(first, ":"); ok {
		return "What is " + strings.TrimSpace(term) + "?", strings.TrimSpace(def + ". " + rest)
	}
	if words := strings.Fields(first); len(words) > 3 {
		return "What is " + strings.Join(words[:3], " ") + "?", p
	}
	return "Explain: " + first, rest
}

func nonBlank(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

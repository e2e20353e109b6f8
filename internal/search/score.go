package search

import (
	"strings"

	"github.com/streed/smart-notes/internal/models"
)

// MatchInfo records which flashcard fields matched a query.
type MatchInfo struct {
	TitleMatch bool `json:"titleMatch"`
	TagMatch   bool `json:"tagMatch"`
}

// weights is the point table for one entity kind. Title matches are
// exclusive: an exact title earns titleExact, otherwise a title containing
// the query earns titlePartial. Every tag is scored on its own.
type weights struct {
	titleExact   int
	titlePartial int
	body         []int // parallel to the entity's body fields
	tagExact     int
	tagPartial   int
}

var (
	// Notes: title +5, +3 more when exact; content +3; summary +2.
	noteWeights = weights{titleExact: 8, titlePartial: 5, body: []int{3, 2}, tagExact: 3, tagPartial: 1}
	// Flashcards: exact title +5 or partial +3; question +2; answer +2.
	flashcardWeights = weights{titleExact: 5, titlePartial: 3, body: []int{2, 2}, tagExact: 3, tagPartial: 1}
)

// fields is the searchable view shared by notes and flashcards.
type fields struct {
	title string
	body  []string
	tags  []string
}

// ScoreNote scores a note against a lower-case, non-empty query.
func ScoreNote(note *models.Note, query string) int {
	score, _ := score(fields{
		title: note.Title,
		body:  []string{note.Content, note.Summary},
		tags:  note.Tags,
	}, noteWeights, query)
	return score
}

// ScoreFlashcard scores a flashcard against a lower-case, non-empty query.
func ScoreFlashcard(card *models.Flashcard, query string) (int, MatchInfo) {
	return score(fields{
		title: card.Title,
		body:  []string{card.Question, card.Answer},
		tags:  card.Tags,
	}, flashcardWeights, query)
}

func score(f fields, w weights, query string) (int, MatchInfo) {
	var total int
	var info MatchInfo

	title := strings.ToLower(f.title)
	switch {
	case title == query:
		total += w.titleExact
		info.TitleMatch = true
	case strings.Contains(title, query):
		total += w.titlePartial
		info.TitleMatch = true
	}

	for i, text := range f.body {
		if text != "" && strings.Contains(strings.ToLower(text), query) {
			total += w.body[i]
		}
	}

	for _, tag := range f.tags {
		tag = strings.ToLower(tag)
		switch {
		case tag == query:
			total += w.tagExact
			info.TagMatch = true
		case strings.Contains(tag, query):
			total += w.tagPartial
			info.TagMatch = true
		}
	}

	return total, info
}

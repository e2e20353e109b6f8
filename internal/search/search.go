// Package search ranks notes and flashcards against a free-text query with
// a weighted field-match score.
package search

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/streed/smart-notes/internal/logger"
	"github.com/streed/smart-notes/internal/models"
)

// EntityType distinguishes the two searchable entity kinds.
type EntityType string

const (
	TypeNote      EntityType = "note"
	TypeFlashcard EntityType = "flashcard"
)

// Result is one matching entity and its score. Exactly one of Note and
// Flashcard is set; MatchInfo is set for flashcards only.
type Result struct {
	Type       EntityType        `json:"type"`
	MatchScore int               `json:"matchScore"`
	MatchInfo  *MatchInfo        `json:"matchInfo,omitempty"`
	Note       *models.Note      `json:"note,omitempty"`
	Flashcard  *models.Flashcard `json:"flashcard,omitempty"`
}

// ID returns the id of the wrapped entity.
func (r Result) ID() string {
	if r.Note != nil {
		return r.Note.ID
	}
	return r.Flashcard.ID
}

// Title returns the title of the wrapped entity.
func (r Result) Title() string {
	if r.Note != nil {
		return r.Note.Title
	}
	return r.Flashcard.Title
}

// Search scores every note and then every flashcard against query and
// returns those scoring above zero, highest first. Equal scores keep input
// order. An empty query matches nothing; any other query, whitespace
// included, is matched as given after lowercasing. An entity whose scoring
// panics is logged and skipped.
func Search(notes []*models.Note, cards []*models.Flashcard, query string) []Result {
	if query == "" {
		return []Result{}
	}
	query = strings.ToLower(query)

	log := logger.With("component", "search")
	results := make([]Result, 0)

	for i, note := range notes {
		err := guard(func() {
			if s := ScoreNote(note, query); s > 0 {
				results = append(results, Result{Type: TypeNote, MatchScore: s, Note: note})
			}
		})
		if err != nil {
			log.Warn("skipping note while searching", "index", i, "err", err)
		}
	}

	for i, card := range cards {
		err := guard(func() {
			if s, info := ScoreFlashcard(card, query); s > 0 {
				results = append(results, Result{Type: TypeFlashcard, MatchScore: s, MatchInfo: &info, Flashcard: card})
			}
		})
		if err != nil {
			log.Warn("skipping flashcard while searching", "index", i, "err", err)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})
	return results
}

func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	fn()
	return nil
}

// CorpusLoader supplies the entities to search.
type CorpusLoader interface {
	LoadCorpus() ([]*models.Note, []*models.Flashcard, error)
}

// Searcher runs Search over a stored corpus.
type Searcher struct {
	corpus CorpusLoader
	logger *slog.Logger
}

func NewSearcher(corpus CorpusLoader) *Searcher {
	return &Searcher{corpus: corpus, logger: logger.With("component", "searcher")}
}

// Search loads the corpus and returns at most limit results. A limit of
// zero or less returns every match.
func (s *Searcher) Search(query string, limit int) ([]Result, error) {
	if query == "" {
		return []Result{}, nil
	}

	notes, cards, err := s.corpus.LoadCorpus()
	if err != nil {
		return nil, fmt.Errorf("failed to load search corpus: %w", err)
	}

	results := Search(notes, cards, query)
	s.logger.Debug("search complete", "query", query, "candidates", len(notes)+len(cards), "matches", len(results))

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

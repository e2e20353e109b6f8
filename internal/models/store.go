package models

import "database/sql"

// Store groups the repositories backed by one database.
type Store struct {
	Notes      *NoteRepository
	Flashcards *FlashcardRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		Notes:      NewNoteRepository(db),
		Flashcards: NewFlashcardRepository(db),
	}
}

// LoadCorpus returns every note and flashcard in creation order.
func (s *Store) LoadCorpus() ([]*Note, []*Flashcard, error) {
	notes, err := s.Notes.All()
	if err != nil {
		return nil, nil, err
	}
	cards, err := s.Flashcards.All()
	if err != nil {
		return nil, nil, err
	}
	return notes, cards, nil
}

package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	interrors "github.com/streed/smart-notes/internal/errors"
)

// Flashcard is a question/answer pair, optionally derived from a note.
// NoteID is a weak reference: deleting the note clears it.
type Flashcard struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Tags      []string  `json:"tags"`
	NoteID    *string   `json:"note_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type FlashcardRepository struct {
	db *sql.DB
}

func NewFlashcardRepository(db *sql.DB) *FlashcardRepository {
	return &FlashcardRepository{db: db}
}

const flashcardColumns = "id, title, question, answer, tags, note_id, created_at"

// Create stores card, assigning its ID and CreatedAt.
func (r *FlashcardRepository) Create(card *Flashcard) error {
	card.ID = uuid.NewString()
	card.CreatedAt = time.Now().UTC()
	card.Tags = normalizeTags(card.Tags)

	encoded, err := encodeTags(card.Tags)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(
		"INSERT INTO flashcards ("+flashcardColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		card.ID, card.Title, card.Question, card.Answer, encoded, nullableString(card.NoteID), card.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create flashcard: %w", err)
	}
	return nil
}

// CreateAll stores cards in one transaction.
func (r *FlashcardRepository) CreateAll(cards []*Flashcard) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO flashcards (" + flashcardColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, card := range cards {
		card.ID = uuid.NewString()
		card.CreatedAt = time.Now().UTC()
		card.Tags = normalizeTags(card.Tags)
		encoded, err := encodeTags(card.Tags)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(card.ID, card.Title, card.Question, card.Answer, encoded,
			nullableString(card.NoteID), card.CreatedAt); err != nil {
			return fmt.Errorf("failed to create flashcard: %w", err)
		}
	}
	return tx.Commit()
}

func (r *FlashcardRepository) GetByID(id string) (*Flashcard, error) {
	row := r.db.QueryRow("SELECT "+flashcardColumns+" FROM flashcards WHERE id = ?", id)
	card, err := scanFlashcard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interrors.ErrFlashcardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get flashcard: %w", err)
	}
	return card, nil
}

// List returns flashcards newest first. A limit of zero returns every card.
func (r *FlashcardRepository) List(limit, offset int) ([]*Flashcard, error) {
	query := "SELECT " + flashcardColumns + " FROM flashcards ORDER BY created_at DESC, rowid DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}
	return r.query(query, args...)
}

// All returns every flashcard in creation order.
func (r *FlashcardRepository) All() ([]*Flashcard, error) {
	return r.query("SELECT " + flashcardColumns + " FROM flashcards ORDER BY created_at, rowid")
}

// ListByNote returns the cards derived from a note in creation order.
func (r *FlashcardRepository) ListByNote(noteID string) ([]*Flashcard, error) {
	return r.query("SELECT "+flashcardColumns+" FROM flashcards WHERE note_id = ? ORDER BY created_at, rowid", noteID)
}

func (r *FlashcardRepository) query(query string, args ...any) ([]*Flashcard, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list flashcards: %w", err)
	}
	defer rows.Close()

	var cards []*Flashcard
	for rows.Next() {
		card, err := scanFlashcard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flashcard: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return cards, nil
}

func (r *FlashcardRepository) Update(card *Flashcard) error {
	card.Tags = normalizeTags(card.Tags)
	encoded, err := encodeTags(card.Tags)
	if err != nil {
		return err
	}
	result, err := r.db.Exec(
		"UPDATE flashcards SET title = ?, question = ?, answer = ?, tags = ?, note_id = ? WHERE id = ?",
		card.Title, card.Question, card.Answer, encoded, nullableString(card.NoteID), card.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update flashcard: %w", err)
	}
	return requireRow(result, interrors.ErrFlashcardNotFound)
}

func (r *FlashcardRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM flashcards WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete flashcard: %w", err)
	}
	return requireRow(result, interrors.ErrFlashcardNotFound)
}

func scanFlashcard(row rowScanner) (*Flashcard, error) {
	var card Flashcard
	var tags string
	var noteID sql.NullString
	err := row.Scan(&card.ID, &card.Title, &card.Question, &card.Answer, &tags, &noteID, &card.CreatedAt)
	if err != nil {
		return nil, err
	}
	if card.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	if noteID.Valid {
		card.NoteID = &noteID.String
	}
	return &card, nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

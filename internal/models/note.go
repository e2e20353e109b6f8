package models

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	interrors "github.com/streed/smart-notes/internal/errors"
)

type Note struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Summary      string    `json:"summary,omitempty"`
	SummaryModel string    `json:"summary_model,omitempty"`
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Preview returns at most n runes of the note content on one line.
func (note *Note) Preview(n int) string {
	return preview(note.Content, n)
}

type NoteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

const noteColumns = "id, title, content, summary, summary_model, tags, created_at, updated_at"

func (r *NoteRepository) Create(title, content string, tags []string) (*Note, error) {
	now := time.Now().UTC()
	note := &Note{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		Tags:      normalizeTags(tags),
		CreatedAt: now,
		UpdatedAt: now,
	}

	encoded, err := encodeTags(note.Tags)
	if err != nil {
		return nil, err
	}

	_, err = r.db.Exec(
		"INSERT INTO notes ("+noteColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		note.ID, note.Title, note.Content, note.Summary, note.SummaryModel, encoded, note.CreatedAt, note.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return note, nil
}

func (r *NoteRepository) GetByID(id string) (*Note, error) {
	row := r.db.QueryRow("SELECT "+noteColumns+" FROM notes WHERE id = ?", id)
	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interrors.ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

// List returns notes newest first. A limit of zero returns every note.
func (r *NoteRepository) List(limit, offset int) ([]*Note, error) {
	return r.query("ORDER BY created_at DESC, rowid DESC", limit, offset)
}

// All returns every note in creation order.
func (r *NoteRepository) All() ([]*Note, error) {
	return r.query("ORDER BY created_at, rowid", 0, 0)
}

func (r *NoteRepository) query(order string, limit, offset int) ([]*Note, error) {
	query := "SELECT " + noteColumns + " FROM notes " + order
	args := []any{}
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []*Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return notes, nil
}

// Update saves title, content, summary and tags of note and refreshes its
// UpdatedAt.
func (r *NoteRepository) Update(note *Note) error {
	note.Tags = normalizeTags(note.Tags)
	encoded, err := encodeTags(note.Tags)
	if err != nil {
		return err
	}

	updatedAt := time.Now().UTC()
	result, err := r.db.Exec(
		`UPDATE notes SET title = ?, content = ?, summary = ?, summary_model = ?, tags = ?, updated_at = ?
		WHERE id = ?`,
		note.Title, note.Content, note.Summary, note.SummaryModel, encoded, updatedAt, note.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	if err := requireRow(result, interrors.ErrNoteNotFound); err != nil {
		return err
	}
	note.UpdatedAt = updatedAt
	return nil
}

// SetAnalysis stores a generated summary and tags for a note.
func (r *NoteRepository) SetAnalysis(id, summary, summaryModel string, tags []string) error {
	encoded, err := encodeTags(normalizeTags(tags))
	if err != nil {
		return err
	}
	result, err := r.db.Exec(
		"UPDATE notes SET summary = ?, summary_model = ?, tags = ?, updated_at = ? WHERE id = ?",
		summary, summaryModel, encoded, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to store note analysis: %w", err)
	}
	return requireRow(result, interrors.ErrNoteNotFound)
}

func (r *NoteRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return requireRow(result, interrors.ErrNoteNotFound)
}

// Count returns the number of stored notes.
func (r *NoteRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*Note, error) {
	var note Note
	var tags string
	err := row.Scan(&note.ID, &note.Title, &note.Content, &note.Summary, &note.SummaryModel,
		&tags, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if note.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	return &note, nil
}

func requireRow(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(s string) ([]string, error) {
	tags := []string{}
	if s == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	return tags, nil
}

// normalizeTags trims tags and drops blanks and repeats, keeping order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

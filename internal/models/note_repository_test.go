package models

import (
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	interrors "github.com/streed/smart-notes/internal/errors"
	"github.com/streed/smart-notes/internal/migrations"
)

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := migrations.NewMigrationRunner(db).RunMigrations(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return db, cleanup
}

func TestNoteRepositoryCreate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewNoteRepository(db)

	note, err := repo.Create("Test Note", "Test content", []string{"go", " go ", "", "sqlite"})
	if err != nil {
		t.Fatalf("Failed to create note: %v", err)
	}

	if note.ID == "" {
		t.Error("Note should have an ID")
	}
	if note.Title != "Test Note" {
		t.Errorf("Expected title %s, got %s", "Test Note", note.Title)
	}
	if !reflect.DeepEqual(note.Tags, []string{"go", "sqlite"}) {
		t.Errorf("Expected normalized tags, got %v", note.Tags)
	}
	if note.CreatedAt.IsZero() || note.UpdatedAt.IsZero() {
		t.Error("Timestamps should be set")
	}
}

func TestNoteRepositoryGetByID(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewNoteRepository(db)

	created, err := repo.Create("Neural Networks", "Layers of neurons", []string{"deep learning", "ML"})
	if err != nil {
		t.Fatalf("Failed to create note: %v", err)
	}

	retrieved, err := repo.GetByID(created.ID)
	if err != nil {
		t.Fatalf("Failed to get note: %v", err)
	}

	if retrieved.ID != created.ID {
		t.Errorf("ID mismatch: expected %s, got %s", created.ID, retrieved.ID)
	}
	if retrieved.Content != created.Content {
		t.Errorf("Content mismatch: expected %s, got %s", created.Content, retrieved.Content)
	}
	if !reflect.DeepEqual(retrieved.Tags, created.Tags) {
		t.Errorf("Tags mismatch: expected %v, got %v", created.Tags, retrieved.Tags)
	}
	if !retrieved.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt mismatch: expected %v, got %v", created.CreatedAt, retrieved.CreatedAt)
	}
}

func TestNoteRepositoryGetByID_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewNoteRepository(db)

	_, err := repo.GetByID("missing")
	if !errors.Is(err, interrors.ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound, got %v", err)
	}
}

func TestNoteRepositoryList(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewNoteRepository(db)

	var ids []string
	for i := 1; i <= 5; i++ {
		note, err := repo.Create("Note", "Content", nil)
		if err != nil {
			t.Fatalf("Failed to create note %d: %v", i, err)
		}
		ids = append(ids, note.ID)
	}

	notes, err := repo.List(0, 0)
	if err != nil {
		t.Fatalf("Failed to list notes: %v", err)
	}
	if len(notes) != 5 {
		t.Errorf("Expected 5 notes, got %d", len(notes))
	}
	if notes[0].ID != ids[4] {
		t.Error("List should return newest note first")
	}

	notes, err = repo.List(2, 2)
	if err != nil {
		t.Fatalf("Failed to list notes with offset: %v", err)
	}
	if len(notes) != 2 {
		t.Errorf("Expected 2 notes with offset, got %d", len(notes))
	}

	all, err := repo.All()
	if err != nil {
		t.Fatalf("Failed to load all notes: %v", err)
	}
	for i, note := range all {
		if note.ID != ids[i] {
			t.Errorf("All should return creation order: position %d has %s, want %s", i, note.ID, ids[i])
		}
	}

	if n, _ := repo.Count(); n != 5 {
		t.Errorf("Expected count 5, got %d", n)
	}
}

func TestNoteRepositoryUpdate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewNoteRepository(db)

	note, err := repo.Create("Original Title", "Original Content", nil)
	if err != nil {
		t.Fatalf("Failed to create note: %v", err)
	}

	note.Title = "Updated Title"
	note.Tags = []string{"updated"}
	if err := repo.Update(note); err != nil {
		t.Fatalf("Failed to update note: %v", err)
	}

	got, err := repo.GetByID(note.ID)
	if err != nil {
		t.Fatalf("Failed to get note: %v", err)
	}
	if got.Title != "Updated Title" {
		t.Errorf("Expected updated title, got %s", got.Title)
	}
	if !reflect.DeepEqual(got.Tags, []string{"updated"}) {
		t.Errorf("Expected updated tags, got %v", got.Tags)
	}

	missing := &Note{ID: "missing"}
	if err := repo.Update(missing); !errors.Is(err, interrors.ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound, got %v", err)
	}
}

func TestNoteRepositorySetAnalysis(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewNoteRepository(db)
	note, err := repo.Create("Title", "Content", nil)
	if err != nil {
		t.Fatalf("Failed to create note: %v", err)
	}

	if err := repo.SetAnalysis(note.ID, "A summary", "rule-based", []string{"alpha", "beta"}); err != nil {
		t.Fatalf("Failed to store analysis: %v", err)
	}

	got, _ := repo.GetByID(note.ID)
	if got.Summary != "A summary" || got.SummaryModel != "rule-based" {
		t.Errorf("Unexpected analysis: %q (%s)", got.Summary, got.SummaryModel)
	}
	if !reflect.DeepEqual(got.Tags, []string{"alpha", "beta"}) {
		t.Errorf("Unexpected tags: %v", got.Tags)
	}
}

func TestNoteRepositoryDelete(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewNoteRepository(db)
	note, err := repo.Create("To Delete", "Content", nil)
	if err != nil {
		t.Fatalf("Failed to create note: %v", err)
	}

	if err := repo.Delete(note.ID); err != nil {
		t.Fatalf("Failed to delete note: %v", err)
	}
	if _, err := repo.GetByID(note.ID); !errors.Is(err, interrors.ErrNoteNotFound) {
		t.Errorf("Expected deleted note to be gone, got %v", err)
	}
	if err := repo.Delete(note.ID); !errors.Is(err, interrors.ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound on second delete, got %v", err)
	}
}

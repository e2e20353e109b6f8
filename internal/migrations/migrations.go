package migrations

import (
	"database/sql"
	"fmt"
)

// getAllMigrations returns all available migrations in order
func getAllMigrations() []Migration {
	return []Migration{
		{
			ID:          "000_initial_schema",
			Description: "Create notes table",
			Up:          migration000Up,
			Down:        dropTables("notes"),
		},
		{
			ID:          "001_add_flashcards",
			Description: "Add flashcards with an optional note reference",
			Up:          migration001Up,
			Down:        dropTables("flashcards"),
		},
		{
			ID:          "002_add_summary_model",
			Description: "Record which method produced a stored note summary",
			Up:          migration002Up,
		},
		// Add new migrations here in chronological order
	}
}

func migration000Up(tx *sql.Tx) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS notes (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes(created_at)`,
	}
	return execAll(tx, statements)
}

func migration001Up(tx *sql.Tx) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS flashcards (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '[]',
			note_id TEXT REFERENCES notes(id) ON DELETE SET NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_flashcards_note_id ON flashcards(note_id)`,
	}
	return execAll(tx, statements)
}

func migration002Up(tx *sql.Tx) error {
	exists, err := columnExists(tx, "notes", "summary_model")
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = tx.Exec(`ALTER TABLE notes ADD COLUMN summary_model TEXT NOT NULL DEFAULT ''`)
	if err != nil {
		return fmt.Errorf("failed to add summary_model column: %w", err)
	}
	return nil
}

func execAll(tx *sql.Tx, statements []string) error {
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func dropTables(tables ...string) func(tx *sql.Tx) error {
	return func(tx *sql.Tx) error {
		for _, table := range tables {
			if _, err := tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
				return fmt.Errorf("failed to drop table %s: %w", table, err)
			}
		}
		return nil
	}
}

func columnExists(tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' {
			return s[:i]
		}
	}
	return s
}

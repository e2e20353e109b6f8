package migrations

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/streed/smart-notes/internal/logger"
)

// Migration is one schema change applied inside a transaction.
type Migration struct {
	ID          string // sortable, e.g. "001_add_flashcards"
	Description string
	Up          func(tx *sql.Tx) error
	Down        func(tx *sql.Tx) error // nil when the change cannot be undone
}

// MigrationStatus reports whether a migration has been applied.
type MigrationStatus struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Applied     bool   `json:"applied"`
}

// MigrationRunner applies migrations and records them in schema_migrations.
type MigrationRunner struct {
	db         *sql.DB
	migrations []Migration
}

// NewMigrationRunner creates a runner for the application schema.
func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return newRunner(db, getAllMigrations())
}

func newRunner(db *sql.DB, migrations []Migration) *MigrationRunner {
	sorted := append([]Migration(nil), migrations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return &MigrationRunner{db: db, migrations: sorted}
}

func (mr *MigrationRunner) ensureTable() error {
	_, err := mr.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func (mr *MigrationRunner) applied() (map[string]bool, error) {
	if err := mr.ensureTable(); err != nil {
		return nil, err
	}

	rows, err := mr.db.Query("SELECT id FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan migration id: %w", err)
		}
		applied[id] = true
	}
	return applied, rows.Err()
}

// inTx runs fn in a transaction, rolling back when it fails.
func (mr *MigrationRunner) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := mr.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("Failed to rollback transaction: %v", rbErr)
		}
		return err
	}
	return tx.Commit()
}

// RunMigrations applies every pending migration in ID order and returns how
// many were applied.
func (mr *MigrationRunner) RunMigrations() (int, error) {
	applied, err := mr.applied()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, m := range mr.migrations {
		if applied[m.ID] {
			continue
		}

		logger.Debug("Applying migration %s: %s", m.ID, m.Description)
		err := mr.inTx(func(tx *sql.Tx) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			_, err := tx.Exec(
				"INSERT INTO schema_migrations (id, description, applied_at) VALUES (?, ?, ?)",
				m.ID, m.Description, time.Now().UTC(),
			)
			return err
		})
		if err != nil {
			return count, fmt.Errorf("migration %s failed: %w", m.ID, err)
		}
		count++
	}

	if count > 0 {
		logger.Info("Applied %d migrations", count)
	}
	return count, nil
}

// GetMigrationStatus lists every known migration with its applied state.
func (mr *MigrationRunner) GetMigrationStatus() ([]MigrationStatus, error) {
	applied, err := mr.applied()
	if err != nil {
		return nil, err
	}

	status := make([]MigrationStatus, 0, len(mr.migrations))
	for _, m := range mr.migrations {
		status = append(status, MigrationStatus{ID: m.ID, Description: m.Description, Applied: applied[m.ID]})
	}
	return status, nil
}

// RollbackMigration undoes one applied migration.
func (mr *MigrationRunner) RollbackMigration(id string) error {
	var target *Migration
	for i := range mr.migrations {
		if mr.migrations[i].ID == id {
			target = &mr.migrations[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("migration %s not found", id)
	}
	if target.Down == nil {
		return fmt.Errorf("migration %s does not support rollback", id)
	}

	applied, err := mr.applied()
	if err != nil {
		return err
	}
	if !applied[id] {
		return fmt.Errorf("migration %s is not applied", id)
	}

	err = mr.inTx(func(tx *sql.Tx) error {
		if err := target.Down(tx); err != nil {
			return err
		}
		_, err := tx.Exec("DELETE FROM schema_migrations WHERE id = ?", id)
		return err
	})
	if err != nil {
		return fmt.Errorf("rollback %s failed: %w", id, err)
	}

	logger.Info("Migration %s rolled back", id)
	return nil
}

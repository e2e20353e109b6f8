package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/streed/smart-notes/internal/config"
	"github.com/streed/smart-notes/internal/logger"
	"github.com/streed/smart-notes/internal/migrations"
)

type DB struct {
	conn *sql.DB
	path string
}

// New opens the configured database and brings its schema up to date.
func New(cfg *config.Config) (*DB, error) {
	return Open(cfg.GetDatabasePath())
}

// Open opens (creating if needed) the SQLite database at path and applies
// pending migrations. ":memory:" opens a private in-memory database.
func Open(path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	logger.Debug("Database path: %s", path)

	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps an in-memory
	// database alive for the lifetime of the pool.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, path: path}
	if err := db.initialize(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

func (db *DB) initialize() error {
	if err := db.conn.Ping(); err != nil {
		return err
	}

	var version string
	if err := db.conn.QueryRow("SELECT sqlite_version()").Scan(&version); err == nil {
		logger.Debug("SQLite version %s", version)
	}

	_, err := migrations.NewMigrationRunner(db.conn).RunMigrations()
	return err
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Conn() *sql.DB {
	return db.conn
}

func (db *DB) Path() string {
	return db.path
}

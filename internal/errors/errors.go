package errors

import "errors"

// Common errors used throughout the application
var (
	// Storage errors
	ErrNoteNotFound      = errors.New("note not found")
	ErrFlashcardNotFound = errors.New("flashcard not found")
	ErrDatabaseQuery     = errors.New("database query failed")

	// Validation errors
	ErrEmptyContent     = errors.New("content cannot be empty")
	ErrEmptyQuery       = errors.New("query cannot be empty")
	ErrInvalidBoolean   = errors.New("invalid boolean value (use true/false)")
	ErrInvalidNumber    = errors.New("invalid numeric value")
	ErrUnknownConfigKey = errors.New("unknown configuration key")
	ErrUnknownProvider  = errors.New("unknown provider kind")

	// Ingestion errors
	ErrUnsupportedFileType = errors.New("unsupported file type, please upload .txt, .md or .pdf")
	ErrNoTextExtracted     = errors.New("no text could be extracted from file")
)

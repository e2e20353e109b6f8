package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	interrors "github.com/streed/smart-notes/internal/errors"
	"github.com/streed/smart-notes/internal/logger"
	"github.com/streed/smart-notes/internal/services"
)

// maxUploadBytes bounds multipart uploads held in memory.
const maxUploadBytes = 32 << 20

type APIServer struct {
	db       *sql.DB
	services *services.Services
	server   *http.Server
}

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func NewAPIServer(db *sql.DB, svc *services.Services) *APIServer {
	return &APIServer{db: db, services: svc}
}

// Handler returns the routed API with CORS and request logging applied.
func (s *APIServer) Handler() http.Handler {
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Notes endpoints
	api.HandleFunc("/notes", s.handleListNotes).Methods("GET")
	api.HandleFunc("/notes", s.handleCreateNote).Methods("POST")
	api.HandleFunc("/notes/{id}", s.handleGetNote).Methods("GET")
	api.HandleFunc("/notes/{id}", s.handleUpdateNote).Methods("PUT")
	api.HandleFunc("/notes/{id}", s.handleDeleteNote).Methods("DELETE")
	api.HandleFunc("/notes/{id}/flashcards", s.handleNoteFlashcards).Methods("GET")
	api.HandleFunc("/notes/{id}/analyze", s.handleAnalyzeNote).Methods("POST")

	// Flashcards endpoints
	api.HandleFunc("/flashcards", s.handleListFlashcards).Methods("GET")
	api.HandleFunc("/flashcards", s.handleCreateFlashcard).Methods("POST")
	api.HandleFunc("/flashcards/{id}", s.handleGetFlashcard).Methods("GET")
	api.HandleFunc("/flashcards/{id}", s.handleUpdateFlashcard).Methods("PUT")
	api.HandleFunc("/flashcards/{id}", s.handleDeleteFlashcard).Methods("DELETE")

	// Text intelligence endpoints
	api.HandleFunc("/summarize", s.handleSummarize).Methods("POST")
	api.HandleFunc("/tag", s.handleTag).Methods("POST")
	api.HandleFunc("/search", s.handleSearch).Methods("GET")
	api.HandleFunc("/chatbot", s.handleChatbot).Methods("POST")
	api.HandleFunc("/generate-flashcards", s.handleGenerateFlashcards).Methods("POST")
	api.HandleFunc("/upload", s.handleUpload).Methods("POST")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           86400, // 24 hours
	})

	return c.Handler(logRequests(router))
}

func (s *APIServer) Start(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // provider calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Starting HTTP API server on %s", addr)
	return s.server.ListenAndServe()
}

func (s *APIServer) Stop() error {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger.LogRequest(r.Method, r.URL.Path, r.RemoteAddr)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.LogResponse(r.Method, r.URL.Path, rec.status, time.Since(start).String())
	})
}

func (s *APIServer) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := APIResponse{
		Success: statusCode < 400,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Failed to encode JSON response: %v", err)
	}
}

func (s *APIServer) writeError(w http.ResponseWriter, statusCode int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := APIResponse{
		Success: false,
		Error:   err.Error(),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Failed to encode JSON response: %v", err)
	}
}

// writeServiceError maps domain errors to HTTP status codes.
func (s *APIServer) writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, interrors.ErrNoteNotFound), errors.Is(err, interrors.ErrFlashcardNotFound):
		status = http.StatusNotFound
	case errors.Is(err, interrors.ErrEmptyContent),
		errors.Is(err, interrors.ErrEmptyQuery),
		errors.Is(err, interrors.ErrUnsupportedFileType),
		errors.Is(err, interrors.ErrNoTextExtracted):
		status = http.StatusBadRequest
	default:
		logger.Error("Request failed: %v", err)
	}
	s.writeError(w, status, err)
}

func (s *APIServer) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return false
	}
	return true
}

func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

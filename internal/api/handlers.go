package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/streed/smart-notes/internal/constants"
	"github.com/streed/smart-notes/internal/flashcards"
	"github.com/streed/smart-notes/internal/ingest"
	"github.com/streed/smart-notes/internal/models"
	"github.com/streed/smart-notes/internal/search"
	"github.com/streed/smart-notes/internal/services"
)

type CreateNoteRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	AutoTag bool     `json:"auto_tag"`
}

type UpdateNoteRequest struct {
	Title   *string   `json:"title,omitempty"`
	Content *string   `json:"content,omitempty"`
	Summary *string   `json:"summary,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
}

type FlashcardRequest struct {
	Title    string   `json:"title"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Tags     []string `json:"tags"`
	NoteID   *string  `json:"note_id,omitempty"`
}

type TextRequest struct {
	Text    string `json:"text"`
	AIModel string `json:"ai_model,omitempty"`
}

type GenerateFlashcardsRequest struct {
	Text    string  `json:"text"`
	Title   string  `json:"title"`
	AIModel string  `json:"ai_model,omitempty"`
	NoteID  *string `json:"note_id,omitempty"`
	Save    bool    `json:"save"`
}

// SearchItem is the flattened wire form of a search.Result.
type SearchItem struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Type       search.EntityType `json:"type"`
	MatchScore int               `json:"matchScore"`
	Summary    string            `json:"summary,omitempty"`
	Question   string            `json:"question,omitempty"`
	Answer     string            `json:"answer,omitempty"`
	Tags       []string          `json:"tags"`
	MatchInfo  *search.MatchInfo `json:"matchInfo,omitempty"`
}

func toSearchItem(r search.Result) SearchItem {
	item := SearchItem{ID: r.ID(), Title: r.Title(), Type: r.Type, MatchScore: r.MatchScore, MatchInfo: r.MatchInfo}
	if r.Note != nil {
		item.Summary = r.Note.Summary
		item.Tags = r.Note.Tags
	} else {
		item.Question = r.Flashcard.Question
		item.Answer = r.Flashcard.Answer
		item.Tags = r.Flashcard.Tags
	}
	return item
}

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	p := s.services.Provider
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"ai_model":  p.Kind().String(),
		"model":     p.Model(),
	}

	if err := s.db.Ping(); err != nil {
		health["status"] = "unhealthy"
		health["database_error"] = err.Error()
		s.writeJSON(w, http.StatusServiceUnavailable, health)
		return
	}

	s.writeJSON(w, http.StatusOK, health)
}

func (s *APIServer) handleListNotes(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	notes, err := s.services.Notes.List(limit, offset)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, notes)
}

func (s *APIServer) handleGetNote(w http.ResponseWriter, r *http.Request) {
	note, err := s.services.Notes.GetByID(mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, note)
}

func (s *APIServer) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("content is required"))
		return
	}

	tags := req.Tags
	if req.AutoTag && len(tags) == 0 {
		result, err := s.services.Analyze.Tag(r.Context(), req.Content, "")
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		tags = result.Tags
	}

	note, err := s.services.Notes.Create(req.Title, req.Content, tags)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, note)
}

func (s *APIServer) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	note, err := s.services.Notes.GetByID(mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	var req UpdateNoteRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if req.Summary != nil {
		note.Summary = *req.Summary
	}
	if req.Tags != nil {
		note.Tags = *req.Tags
	}

	if err := s.services.Notes.Update(note); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, note)
}

func (s *APIServer) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Notes.Delete(mux.Vars(r)["id"]); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Note deleted successfully"})
}

func (s *APIServer) handleNoteFlashcards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.services.Flashcards.ListByNote(mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cards)
}

func (s *APIServer) handleAnalyzeNote(w http.ResponseWriter, r *http.Request) {
	note, err := s.services.Notes.GetByID(mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	analysis, err := s.services.Analyze.AnalyzeNote(r.Context(), note)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, analysis)
}

func (s *APIServer) handleListFlashcards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.services.Flashcards.List(queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cards)
}

func (s *APIServer) handleGetFlashcard(w http.ResponseWriter, r *http.Request) {
	card, err := s.services.Flashcards.GetByID(mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, card)
}

func (s *APIServer) handleCreateFlashcard(w http.ResponseWriter, r *http.Request) {
	var req FlashcardRequest
	if !s.decode(w, r, &req) {
		return
	}

	card := &models.Flashcard{
		Title:    req.Title,
		Question: req.Question,
		Answer:   req.Answer,
		Tags:     req.Tags,
		NoteID:   req.NoteID,
	}
	if err := s.services.Flashcards.Create(card); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, card)
}

func (s *APIServer) handleUpdateFlashcard(w http.ResponseWriter, r *http.Request) {
	card, err := s.services.Flashcards.GetByID(mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	var req FlashcardRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Title != "" {
		card.Title = req.Title
	}
	if req.Question != "" {
		card.Question = req.Question
	}
	if req.Answer != "" {
		card.Answer = req.Answer
	}
	if req.Tags != nil {
		card.Tags = req.Tags
	}
	if req.NoteID != nil {
		card.NoteID = req.NoteID
	}

	if err := s.services.Flashcards.Update(card); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, card)
}

func (s *APIServer) handleDeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Flashcards.Delete(mux.Vars(r)["id"]); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Flashcard deleted successfully"})
}

func (s *APIServer) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.services.Analyze.Summarize(r.Context(), req.Text, req.AIModel)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *APIServer) handleTag(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.services.Analyze.Tag(r.Context(), req.Text, req.AIModel)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *APIServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	results, err := s.services.Search.Search(r.URL.Query().Get("q"), queryInt(r, "limit", -1))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	items := make([]SearchItem, 0, len(results))
	for _, res := range results {
		items = append(items, toSearchItem(res))
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"results": items})
}

func (s *APIServer) handleChatbot(w http.ResponseWriter, r *http.Request) {
	var req services.ChatRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.services.Analyze.Process(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *APIServer) handleGenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	var req GenerateFlashcardsRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.services.Analyze.GenerateFlashcards(r.Context(), req.Text, req.Title, req.AIModel)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if !req.Save {
		s.writeJSON(w, http.StatusOK, result)
		return
	}

	stored, err := s.services.Flashcards.SaveGenerated(req.Title, req.NoteID, result.Cards)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, struct {
		*flashcards.Result
		Saved []*models.Flashcard `json:"saved"`
	}{result, stored})
}

func (s *APIServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid upload: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("no file part in the request"))
		return
	}
	defer file.Close()

	if header.Filename == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("no file selected"))
		return
	}

	doc, err := ingest.ExtractFile(header.Filename, file)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"text":    doc.Text,
		"title":   doc.Title,
		"tags":    doc.Tags,
		"preview": (&models.Note{Content: doc.Text}).Preview(constants.PreviewLength),
	})
}

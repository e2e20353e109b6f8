package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streed/smart-notes/internal/database"
	"github.com/streed/smart-notes/internal/models"
	"github.com/streed/smart-notes/internal/provider/mock"
	"github.com/streed/smart-notes/internal/services"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	svc     *services.Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	p := mock.NewProvider("test-model").WithQueryFunc(func(_ context.Context, prompt, system string) (string, error) {
		switch {
		case strings.Contains(system, "JSON array"):
			return `["biology", "cells"]`, nil
		case strings.Contains(prompt, "Q: [precise question"):
			return "Q: What is a mitochondrion?\nA: The powerhouse of the cell.\n---", nil
		default:
			return "A provider summary.", nil
		}
	})

	svc := services.NewServices(models.NewStore(db.Conn()), p, services.Options{Workers: 2, SearchLimit: 10})
	return &testServer{t: t, handler: NewAPIServer(db.Conn(), svc).Handler(), svc: svc}
}

func (ts *testServer) do(method, path string, body any) (int, envelope) {
	ts.t.Helper()
	var reader io.Reader
	if body != nil {
		if s, ok := body.(string); ok {
			reader = strings.NewReader(s)
		} else {
			b, err := json.Marshal(body)
			require.NoError(ts.t, err)
			reader = bytes.NewReader(b)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return ts.serve(req)
}

func (ts *testServer) serve(req *http.Request) (int, envelope) {
	ts.t.Helper()
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var env envelope
	require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

const cellText = "Mitochondria are organelles found in most cells. They generate most of the chemical energy needed to power the cell's biochemical reactions."

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	code, env := ts.do("GET", "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	health := decodeData[map[string]any](t, env)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "openrouter", health["ai_model"])
	assert.Equal(t, "test-model", health["model"])
}

func TestNotesCRUD(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.do("POST", "/api/v1/notes", CreateNoteRequest{Title: "Cells", Content: cellText, Tags: []string{"biology"}})
	require.Equal(t, http.StatusCreated, code, env.Error)
	created := decodeData[models.Note](t, env)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"biology"}, created.Tags)

	code, env = ts.do("GET", "/api/v1/notes/"+created.ID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Cells", decodeData[models.Note](t, env).Title)

	code, env = ts.do("PUT", "/api/v1/notes/"+created.ID, map[string]any{"title": "Cell Biology"})
	require.Equal(t, http.StatusOK, code, env.Error)
	updated := decodeData[models.Note](t, env)
	assert.Equal(t, "Cell Biology", updated.Title)
	assert.Equal(t, cellText, updated.Content)

	code, env = ts.do("GET", "/api/v1/notes", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decodeData[[]models.Note](t, env), 1)

	code, _ = ts.do("DELETE", "/api/v1/notes/"+created.ID, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = ts.do("GET", "/api/v1/notes/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
}

func TestCreateNoteAutoTag(t *testing.T) {
	ts := newTestServer(t)
	code, env := ts.do("POST", "/api/v1/notes", CreateNoteRequest{Title: "Cells", Content: cellText, AutoTag: true})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, []string{"biology", "cells"}, decodeData[models.Note](t, env).Tags)
}

func TestCreateNoteValidation(t *testing.T) {
	ts := newTestServer(t)

	code, _ := ts.do("POST", "/api/v1/notes", CreateNoteRequest{Title: "Empty"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := ts.do("POST", "/api/v1/notes", "{not json")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "invalid JSON")
}

func TestFlashcardsCRUD(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.do("POST", "/api/v1/flashcards", FlashcardRequest{
		Title: "ML Algorithms", Question: "What are common ML algorithms?", Answer: "Trees and SVMs", Tags: []string{"ML"},
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	card := decodeData[models.Flashcard](t, env)

	code, env = ts.do("PUT", "/api/v1/flashcards/"+card.ID, FlashcardRequest{Answer: "Forests"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Forests", decodeData[models.Flashcard](t, env).Answer)

	code, _ = ts.do("DELETE", "/api/v1/flashcards/"+card.ID, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = ts.do("GET", "/api/v1/flashcards/"+card.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = ts.do("POST", "/api/v1/flashcards", FlashcardRequest{Title: "No answer", Question: "Q?"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSummarizeAndTag(t *testing.T) {
	ts := newTestServer(t)

	code, _ := ts.do("POST", "/api/v1/summarize", TextRequest{Text: ""})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := ts.do("POST", "/api/v1/summarize", TextRequest{Text: "Short."})
	require.Equal(t, http.StatusOK, code)
	summary := decodeData[map[string]any](t, env)
	assert.Equal(t, "Short.", summary["summary"])
	assert.Equal(t, "direct-text", summary["model_used"])

	code, env = ts.do("POST", "/api/v1/summarize", TextRequest{Text: cellText, AIModel: "llama"})
	require.Equal(t, http.StatusOK, code)
	summary = decodeData[map[string]any](t, env)
	assert.Equal(t, "A provider summary.", summary["summary"])
	assert.Equal(t, "llama", summary["model_used"])

	code, env = ts.do("POST", "/api/v1/tag", TextRequest{Text: cellText})
	require.Equal(t, http.StatusOK, code)
	tags := decodeData[map[string]any](t, env)
	assert.Equal(t, []any{"biology", "cells"}, tags["tags"])
	assert.Equal(t, "test-model", tags["model_used"])

	code, _ = ts.do("POST", "/api/v1/tag", TextRequest{Text: "  "})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSearch(t *testing.T) {
	ts := newTestServer(t)
	_, err := ts.svc.Notes.Create("Neural Networks", "Layers of units.", []string{"ML"})
	require.NoError(t, err)
	require.NoError(t, ts.svc.Flashcards.Create(&models.Flashcard{
		Title: "ML Algorithms", Question: "Name three families of models.", Answer: "Linear, tree based, kernel.", Tags: []string{"ML", "algorithms"},
	}))

	code, env := ts.do("GET", "/api/v1/search?q=", nil)
	require.Equal(t, http.StatusOK, code)
	empty := decodeData[map[string][]SearchItem](t, env)
	assert.NotNil(t, empty["results"])
	assert.Empty(t, empty["results"])

	code, env = ts.do("GET", "/api/v1/search?q=ML", nil)
	require.Equal(t, http.StatusOK, code)
	results := decodeData[map[string][]SearchItem](t, env)["results"]
	require.Len(t, results, 2)

	assert.Equal(t, "flashcard", string(results[0].Type))
	assert.Equal(t, 6, results[0].MatchScore)
	require.NotNil(t, results[0].MatchInfo)
	assert.True(t, results[0].MatchInfo.TitleMatch)
	assert.Equal(t, "Name three families of models.", results[0].Question)

	assert.Equal(t, "note", string(results[1].Type))
	assert.Equal(t, 3, results[1].MatchScore)
	assert.Nil(t, results[1].MatchInfo)
}

func TestChatbot(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.do("POST", "/api/v1/chatbot", services.ChatRequest{Content: cellText, Title: "Cells"})
	require.Equal(t, http.StatusOK, code, env.Error)
	resp := decodeData[services.ChatResponse](t, env)
	assert.Equal(t, []string{"biology", "cells"}, resp.Tags)
	assert.Equal(t, "A provider summary.", resp.Summary)
	require.Len(t, resp.Flashcards, 2)
	assert.Equal(t, "What is Cells about?", resp.Flashcards[0].Question)

	code, _ = ts.do("POST", "/api/v1/chatbot", services.ChatRequest{Title: "Empty"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGenerateFlashcards(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.do("POST", "/api/v1/generate-flashcards", GenerateFlashcardsRequest{Text: cellText, Title: "Cells"})
	require.Equal(t, http.StatusOK, code, env.Error)
	result := decodeData[map[string]any](t, env)
	assert.Equal(t, "test-model", result["model_used"])
	assert.Len(t, result["flashcards"], 1)

	note, err := ts.svc.Notes.Create("Cells", cellText, nil)
	require.NoError(t, err)

	code, env = ts.do("POST", "/api/v1/generate-flashcards", GenerateFlashcardsRequest{Text: cellText, Title: "Cells", NoteID: &note.ID, Save: true})
	require.Equal(t, http.StatusCreated, code, env.Error)
	saved := decodeData[struct {
		Saved []models.Flashcard `json:"saved"`
	}](t, env)
	require.Len(t, saved.Saved, 1)
	assert.Equal(t, "What is a mitochondrion?", saved.Saved[0].Question)

	code, env = ts.do("GET", "/api/v1/notes/"+note.ID+"/flashcards", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decodeData[[]models.Flashcard](t, env), 1)
}

func TestAnalyzeNote(t *testing.T) {
	ts := newTestServer(t)
	note, err := ts.svc.Notes.Create("Cells", cellText, []string{"mine"})
	require.NoError(t, err)

	code, env := ts.do("POST", "/api/v1/notes/"+note.ID+"/analyze", nil)
	require.Equal(t, http.StatusOK, code, env.Error)

	stored, err := ts.svc.Notes.GetByID(note.ID)
	require.NoError(t, err)
	assert.Equal(t, "A provider summary.", stored.Summary)
	assert.Equal(t, []string{"mine", "biology", "cells"}, stored.Tags)

	code, _ = ts.do("POST", "/api/v1/notes/missing/analyze", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("other", "value"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/v1/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.serve(uploadRequest(t, "lecture.md", "---\ntitle: Lecture 1\ntags: [bio]\n---\nCells divide."))
	require.Equal(t, http.StatusOK, code, env.Error)
	data := decodeData[map[string]any](t, env)
	assert.Equal(t, "Cells divide.", data["text"])
	assert.Equal(t, "Lecture 1", data["title"])

	code, env = ts.serve(uploadRequest(t, "scan.png", "binary"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "unsupported file type")

	code, _ = ts.serve(uploadRequest(t, "", ""))
	assert.Equal(t, http.StatusBadRequest, code)
}

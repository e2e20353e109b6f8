package services

import (
	"context"
	"strings"
	"time"

	"github.com/streed/smart-notes/internal/autotag"
	interrors "github.com/streed/smart-notes/internal/errors"
	"github.com/streed/smart-notes/internal/flashcards"
	"github.com/streed/smart-notes/internal/models"
	"github.com/streed/smart-notes/internal/provider"
	"github.com/streed/smart-notes/internal/search"
	"github.com/streed/smart-notes/internal/summarize"
)

// Options tunes the analysis services.
type Options struct {
	// ProviderTimeout bounds each provider call. Zero means no extra bound.
	ProviderTimeout time.Duration
	// Workers is the batch analysis pool size.
	Workers int
	// SearchLimit caps search results when the caller passes no limit.
	SearchLimit int
}

// Services contains all the service dependencies
type Services struct {
	Provider   provider.Provider
	Notes      *NotesService
	Flashcards *FlashcardsService
	Search     *SearchService
	Analyze    *AnalyzeService
}

// NewServices creates a new services container
func NewServices(store *models.Store, p provider.Provider, opts Options) *Services {
	if p == nil {
		p = provider.Disabled()
	}
	return &Services{
		Provider:   p,
		Notes:      NewNotesService(store.Notes),
		Flashcards: NewFlashcardsService(store.Flashcards),
		Search:     NewSearchService(store, opts.SearchLimit),
		Analyze:    NewAnalyzeService(store, p, opts),
	}
}

// NotesService handles note operations
type NotesService struct {
	repo *models.NoteRepository
}

func NewNotesService(repo *models.NoteRepository) *NotesService {
	return &NotesService{repo: repo}
}

func (s *NotesService) GetByID(id string) (*models.Note, error) {
	return s.repo.GetByID(id)
}

func (s *NotesService) List(limit, offset int) ([]*models.Note, error) {
	return s.repo.List(limit, offset)
}

func (s *NotesService) Count() (int, error) {
	return s.repo.Count()
}

// Create stores a new note. A blank title is replaced by the first line of
// the content.
func (s *NotesService) Create(title, content string, tags []string) (*models.Note, error) {
	if strings.TrimSpace(content) == "" {
		return nil, interrors.ErrEmptyContent
	}
	if strings.TrimSpace(title) == "" {
		title = deriveTitle(content)
	}
	return s.repo.Create(strings.TrimSpace(title), content, tags)
}

func (s *NotesService) Update(note *models.Note) error {
	if strings.TrimSpace(note.Content) == "" {
		return interrors.ErrEmptyContent
	}
	return s.repo.Update(note)
}

func (s *NotesService) Delete(id string) error {
	return s.repo.Delete(id)
}

func deriveTitle(content string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(content), "\n")
	line = strings.TrimSpace(strings.TrimLeft(line, "# "))
	if r := []rune(line); len(r) > 60 {
		line = string(r[:60])
	}
	if line == "" {
		return "Untitled"
	}
	return line
}

// FlashcardsService handles flashcard operations
type FlashcardsService struct {
	repo *models.FlashcardRepository
}

func NewFlashcardsService(repo *models.FlashcardRepository) *FlashcardsService {
	return &FlashcardsService{repo: repo}
}

func (s *FlashcardsService) GetByID(id string) (*models.Flashcard, error) {
	return s.repo.GetByID(id)
}

func (s *FlashcardsService) List(limit, offset int) ([]*models.Flashcard, error) {
	return s.repo.List(limit, offset)
}

func (s *FlashcardsService) ListByNote(noteID string) ([]*models.Flashcard, error) {
	return s.repo.ListByNote(noteID)
}

func (s *FlashcardsService) Create(card *models.Flashcard) error {
	if strings.TrimSpace(card.Question) == "" || strings.TrimSpace(card.Answer) == "" {
		return interrors.ErrEmptyContent
	}
	return s.repo.Create(card)
}

func (s *FlashcardsService) Update(card *models.Flashcard) error {
	return s.repo.Update(card)
}

func (s *FlashcardsService) Delete(id string) error {
	return s.repo.Delete(id)
}

// SaveGenerated persists generated cards under title, optionally linked to
// the note they came from.
func (s *FlashcardsService) SaveGenerated(title string, noteID *string, cards []flashcards.Card) ([]*models.Flashcard, error) {
	stored := make([]*models.Flashcard, 0, len(cards))
	for _, c := range cards {
		stored = append(stored, &models.Flashcard{
			Title:    title,
			Question: c.Question,
			Answer:   c.Answer,
			Tags:     c.Tags,
			NoteID:   noteID,
		})
	}
	if err := s.repo.CreateAll(stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// SearchService ranks stored notes and flashcards against a query
type SearchService struct {
	searcher *search.Searcher
	limit    int
}

func NewSearchService(corpus search.CorpusLoader, limit int) *SearchService {
	return &SearchService{searcher: search.NewSearcher(corpus), limit: limit}
}

// Search returns matches best first. A limit of zero uses the configured
// default; a negative limit returns every match.
func (s *SearchService) Search(query string, limit int) ([]search.Result, error) {
	if limit == 0 {
		limit = s.limit
	}
	return s.searcher.Search(query, limit)
}

// AnalyzeService runs summarization, tagging and flashcard generation
type AnalyzeService struct {
	store      *models.Store
	summarizer *summarize.Summarizer
	tagger     *autotag.AutoTagger
	generator  *flashcards.Generator
	workers    int
}

func NewAnalyzeService(store *models.Store, p provider.Provider, opts Options) *AnalyzeService {
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	return &AnalyzeService{
		store:      store,
		summarizer: summarize.NewSummarizer(p, opts.ProviderTimeout),
		tagger:     autotag.NewAutoTagger(p, opts.ProviderTimeout),
		generator:  flashcards.NewGenerator(p, opts.ProviderTimeout),
		workers:    workers,
	}
}

func (s *AnalyzeService) Summarize(ctx context.Context, text, modelHint string) (*summarize.SummaryResult, error) {
	return s.summarizer.Summarize(ctx, text, modelHint)
}

// SummarizeNotes summarizes several notes together, framed by query.
func (s *AnalyzeService) SummarizeNotes(ctx context.Context, notes []*models.Note, query string) (*summarize.SummaryResult, error) {
	return s.summarizer.SummarizeNotes(ctx, notes, query)
}

func (s *AnalyzeService) Tag(ctx context.Context, text, modelHint string) (*autotag.TagResult, error) {
	return s.tagger.Tag(ctx, text, modelHint)
}

func (s *AnalyzeService) GenerateFlashcards(ctx context.Context, text, title, modelHint string) (*flashcards.Result, error) {
	return s.generator.Generate(ctx, text, title, modelHint)
}

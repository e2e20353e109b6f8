package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/streed/smart-notes/internal/autotag"
	"github.com/streed/smart-notes/internal/constants"
	interrors "github.com/streed/smart-notes/internal/errors"
	"github.com/streed/smart-notes/internal/flashcards"
	"github.com/streed/smart-notes/internal/logger"
	"github.com/streed/smart-notes/internal/models"
	"github.com/streed/smart-notes/internal/summarize"
)

// ChatRequest is content submitted for combined processing.
type ChatRequest struct {
	Content   string   `json:"content"`
	Title     string   `json:"title"`
	Tags      []string `json:"tags,omitempty"`
	ModelHint string   `json:"ai_model,omitempty"`
}

// ChatResponse bundles tags, a summary and starter flashcards.
type ChatResponse struct {
	Tags       []string          `json:"tags"`
	Flashcards []flashcards.Card `json:"flashcards"`
	Summary    string            `json:"summary"`
	ModelUsed  string            `json:"model_used"`
}

// Process tags content (unless tags were supplied), summarizes it and
// builds two template flashcards carrying the first two tags.
func (s *AnalyzeService) Process(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, interrors.ErrEmptyContent
	}

	tags := req.Tags
	if len(tags) == 0 {
		tagged, err := s.tagger.Tag(ctx, req.Content, req.ModelHint)
		if err != nil {
			return nil, err
		}
		tags = tagged.Tags
	}

	summary, err := s.summarizer.Summarize(ctx, req.Content, req.ModelHint)
	if err != nil {
		return nil, err
	}

	cardTags := tags
	if len(cardTags) > constants.ChatbotFlashcardTags {
		cardTags = cardTags[:constants.ChatbotFlashcardTags]
	}

	return &ChatResponse{
		Tags: tags,
		Flashcards: []flashcards.Card{
			{Question: fmt.Sprintf("What is %s about?", req.Title), Answer: summary.Summary, Tags: cardTags},
			{Question: fmt.Sprintf("Key concepts in %s?", req.Title), Answer: constants.DefaultKeyConceptText, Tags: cardTags},
		},
		Summary:   summary.Summary,
		ModelUsed: summary.ModelUsed,
	}, nil
}

// NoteAnalysis is the stored outcome of analyzing one note.
type NoteAnalysis struct {
	NoteID  string                  `json:"note_id"`
	Summary *summarize.SummaryResult `json:"summary"`
	Tags    *autotag.TagResult       `json:"tags"`
}

// AnalyzeNote summarizes and tags a note and persists the result. Generated
// tags are added to the note's existing tags.
func (s *AnalyzeService) AnalyzeNote(ctx context.Context, note *models.Note) (*NoteAnalysis, error) {
	summary, err := s.summarizer.Summarize(ctx, note.Content, "")
	if err != nil {
		return nil, err
	}
	tags, err := s.tagger.Tag(ctx, note.Content, "")
	if err != nil {
		return nil, err
	}

	merged := append(append([]string(nil), note.Tags...), tags.Tags...)
	if err := s.store.Notes.SetAnalysis(note.ID, summary.Summary, summary.ModelUsed, merged); err != nil {
		return nil, err
	}

	return &NoteAnalysis{NoteID: note.ID, Summary: summary, Tags: tags}, nil
}

// BatchReport summarizes an AnalyzeAll run. Analyses is parallel to the
// input notes and holds nil for notes that failed.
type BatchReport struct {
	Analyses  []*NoteAnalysis  `json:"analyses"`
	Succeeded int              `json:"succeeded"`
	Failures  map[string]error `json:"-"`
}

// AnalyzeAll analyzes notes concurrently on a bounded worker pool. Each
// note is independent; failures are logged and recorded, not returned.
func (s *AnalyzeService) AnalyzeAll(ctx context.Context, notes []*models.Note) (*BatchReport, error) {
	report := &BatchReport{
		Analyses: make([]*NoteAnalysis, len(notes)),
		Failures: make(map[string]error),
	}
	if len(notes) == 0 {
		return report, nil
	}

	pool, err := ants.NewPool(min(s.workers, len(notes)))
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis pool: %w", err)
	}
	defer pool.Release()

	log := logger.With("component", "analyze")
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	fail := func(id string, err error) {
		log.Warn("note analysis failed", "note", id, "err", err)
		mu.Lock()
		report.Failures[id] = err
		mu.Unlock()
	}

	for i, note := range notes {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				fail(note.ID, err)
				return
			}
			analysis, err := s.AnalyzeNote(ctx, note)
			if err != nil {
				fail(note.ID, err)
				return
			}
			report.Analyses[i] = analysis
		})
		if err != nil {
			wg.Done()
			fail(note.ID, err)
		}
	}
	wg.Wait()

	for _, a := range report.Analyses {
		if a != nil {
			report.Succeeded++
		}
	}
	log.Info("batch analysis complete", "notes", len(notes), "succeeded", report.Succeeded, "failed", len(report.Failures))
	return report, nil
}

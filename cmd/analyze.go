package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/streed/smart-notes/internal/logger"
	"github.com/streed/smart-notes/internal/models"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [ids...]",
	Short: "Summarize and tag notes in bulk",
	Long: heredoc.Doc(`
		Summarize and tag stored notes, saving the summary on each note and
		merging the generated tags into its existing tags. Notes are processed
		concurrently by a bounded worker pool (see 'config set batch-workers').

		You can analyze:
		  Notes by ID:             smart-notes analyze ID ID
		  All notes:               smart-notes analyze --all
		  The most recent notes:   smart-notes analyze --recent 10
	`),
	RunE: runAnalyze,
}

var (
	analyzeAll    bool
	analyzeRecent int
)

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&analyzeAll, "all", false, "Analyze all notes")
	analyzeCmd.Flags().IntVar(&analyzeRecent, "recent", 0, "Analyze the N most recent notes")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	notes, err := selectNotes(args, analyzeAll, analyzeRecent)
	if err != nil {
		return err
	}

	fmt.Printf("Analyzing %d note(s) with %d workers...\n\n", len(notes), appConfig.BatchWorkers)
	start := time.Now()

	report, err := svc.Analyze.AnalyzeAll(cmd.Context(), notes)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	for i, analysis := range report.Analyses {
		if analysis == nil {
			continue
		}
		fmt.Println(heading("%s", notes[i].Title))
		fmt.Println(label("ID", notes[i].ID))
		fmt.Println(label("Summary", analysis.Summary.Summary))
		fmt.Println(label("Tags", renderTags(analysis.Tags.Tags)))
		fmt.Println(labelStyle.Render(fmt.Sprintf("summary: %s, tags: %s", analysis.Summary.ModelUsed, analysis.Tags.ModelUsed)))
		fmt.Println(rule())
	}

	if len(report.Failures) > 0 {
		ids := make([]string, 0, len(report.Failures))
		for id := range report.Failures {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		fmt.Println("Failed notes:")
		for _, id := range ids {
			fmt.Printf("  [%s] %v\n", id, report.Failures[id])
		}
	}

	fmt.Printf("\nAnalyzed %d of %d note(s) in %s\n", report.Succeeded, len(notes), time.Since(start).Round(time.Millisecond))
	if report.Succeeded < len(notes) {
		return fmt.Errorf("%d note(s) could not be analyzed", len(notes)-report.Succeeded)
	}
	return nil
}

// selectNotes resolves the notes named by IDs, or all or the most recent
// notes when requested.
func selectNotes(ids []string, all bool, recent int) ([]*models.Note, error) {
	switch {
	case all:
		notes, err := svc.Notes.List(0, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to list notes: %w", err)
		}
		return notes, nil
	case recent > 0:
		notes, err := svc.Notes.List(recent, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to list recent notes: %w", err)
		}
		return notes, nil
	case len(ids) > 0:
		var notes []*models.Note
		for _, id := range ids {
			note, err := svc.Notes.GetByID(id)
			if err != nil {
				logger.Error("Failed to get note %s: %v", id, err)
				continue
			}
			notes = append(notes, note)
		}
		if len(notes) == 0 {
			return nil, fmt.Errorf("no valid notes found")
		}
		return notes, nil
	default:
		return nil, fmt.Errorf("please specify note IDs or use --all or --recent flags")
	}
}

package cmd

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/streed/smart-notes/internal/logger"
	"github.com/streed/smart-notes/internal/models"
	"github.com/streed/smart-notes/internal/summarize"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [text | - ]",
	Short: "Summarize text or notes",
	Long: heredoc.Doc(`
		Summarize text or stored notes. The AI provider is used when configured;
		otherwise, or when it fails, an extractive summary is built from the text.

		You can summarize:
		  Text directly:            smart-notes summarize "some long text..."
		  Standard input:           cat lecture.txt | smart-notes summarize -
		  A file:                   smart-notes summarize --file lecture.pdf
		  Notes by ID:              smart-notes summarize --note ID --note ID
		  The most recent notes:    smart-notes summarize --recent 10
	`),
	RunE: runSummarize,
}

var (
	summarizeFile   string
	summarizeNotes  []string
	summarizeRecent int
	summarizeModel  string
)

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().StringVarP(&summarizeFile, "file", "f", "", "Summarize a .txt, .md or .pdf file")
	summarizeCmd.Flags().StringSliceVarP(&summarizeNotes, "note", "n", nil, "Summarize stored notes by ID")
	summarizeCmd.Flags().IntVar(&summarizeRecent, "recent", 0, "Summarize the N most recent notes")
	summarizeCmd.Flags().StringVar(&summarizeModel, "ai-model", "", "Model name to report as the summary source")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	var notes []*models.Note
	switch {
	case summarizeRecent > 0:
		recent, err := svc.Notes.List(summarizeRecent, 0)
		if err != nil {
			return fmt.Errorf("failed to list recent notes: %w", err)
		}
		notes = recent
	case len(summarizeNotes) > 0:
		for _, id := range summarizeNotes {
			note, err := svc.Notes.GetByID(id)
			if err != nil {
				logger.Error("Failed to get note %s: %v", id, err)
				continue
			}
			notes = append(notes, note)
		}
		if len(notes) == 0 {
			return fmt.Errorf("no valid notes found")
		}
	}

	var (
		result *summarize.SummaryResult
		err    error
	)
	switch {
	case len(notes) == 1:
		fmt.Printf("Summarizing note: %s (ID: %s)\n", notes[0].Title, notes[0].ID)
		result, err = svc.Analyze.Summarize(cmd.Context(), notes[0].Content, summarizeModel)
	case len(notes) > 1:
		fmt.Printf("Summarizing %d notes together...\n", len(notes))
		for i, note := range notes {
			fmt.Printf("  %d. [ID: %s] %s\n", i+1, note.ID, note.Title)
		}
		result, err = svc.Analyze.SummarizeNotes(cmd.Context(), notes, "")
	default:
		in, inErr := readInput(args, summarizeFile, os.Stdin)
		if inErr != nil {
			return inErr
		}
		result, err = svc.Analyze.Summarize(cmd.Context(), in.Text, summarizeModel)
	}
	if err != nil {
		return fmt.Errorf("failed to generate summary: %w", err)
	}

	printSummary(result)
	return nil
}

func printSummary(result *summarize.SummaryResult) {
	fmt.Println()
	fmt.Println(heading("Summary"))
	fmt.Println(rule())
	fmt.Println(result.Summary)
	fmt.Println(rule())
	fmt.Println(labelStyle.Render(fmt.Sprintf("Generated using %s, reduced from %d to %d characters (%.1f%% compression)",
		result.ModelUsed, result.OriginalLength, result.SummaryLength,
		compression(result.OriginalLength, result.SummaryLength))))
}

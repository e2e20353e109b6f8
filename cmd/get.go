package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/streed/smart-notes/internal/logger"
)

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get a note by ID",
	Long:  `Display a note rendered as markdown, with its stored summary and flashcards.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var (
	getSummarize bool
	getRaw       bool
)

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().BoolVar(&getSummarize, "summarize", false, "Generate a fresh summary of the note")
	getCmd.Flags().BoolVar(&getRaw, "raw", false, "Print content without markdown rendering")
}

func runGet(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	note, err := svc.Notes.GetByID(args[0])
	if err != nil {
		return fmt.Errorf("failed to get note: %w", err)
	}

	fmt.Println(heading("%s", note.Title))
	fmt.Println(rule())
	fmt.Println(label("ID", note.ID))
	fmt.Println(label("Created", note.CreatedAt.Format("2006-01-02 15:04:05")))
	fmt.Println(label("Updated", note.UpdatedAt.Format("2006-01-02 15:04:05")))
	fmt.Println(label("Tags", renderTags(note.Tags)))
	fmt.Println(rule())

	summary, model := note.Summary, note.SummaryModel
	if getSummarize {
		result, err := svc.Analyze.Summarize(cmd.Context(), note.Content, "")
		if err != nil {
			logger.Error("Failed to generate summary: %v", err)
			fmt.Printf("Warning: Could not generate summary: %v\n", err)
		} else {
			summary, model = result.Summary, result.ModelUsed
		}
	}
	if summary != "" {
		fmt.Println(heading("Summary"))
		fmt.Println(summary)
		fmt.Println(labelStyle.Render("Generated using " + model))
		fmt.Println(rule())
	}

	if getRaw {
		fmt.Println(note.Content)
	} else {
		fmt.Print(renderMarkdown(note.Content))
	}

	cards, err := svc.Flashcards.ListByNote(note.ID)
	if err != nil {
		return fmt.Errorf("failed to load flashcards: %w", err)
	}
	if len(cards) > 0 {
		fmt.Println(rule())
		fmt.Println(heading("Flashcards (%d)", len(cards)))
		for i, card := range cards {
			printFlashcard(i+1, card)
		}
	}
	return nil
}

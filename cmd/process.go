package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/streed/smart-notes/internal/services"
)

var processCmd = &cobra.Command{
	Use:   "process [text | - ]",
	Short: "Tag, summarize and build starter flashcards in one step",
	Long: `Run the combined processing used by the chatbot endpoint: tags (unless
given with --tags), a summary and two starter flashcards for the text.`,
	RunE: runProcess,
}

var (
	processFile  string
	processTitle string
	processTags  []string
	processSave  bool
)

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().StringVarP(&processFile, "file", "f", "", "Process a .txt, .md or .pdf file")
	processCmd.Flags().StringVarP(&processTitle, "title", "t", "", "Title used in the starter flashcards")
	processCmd.Flags().StringSliceVarP(&processTags, "tags", "T", nil, "Use these tags instead of generating them")
	processCmd.Flags().BoolVar(&processSave, "save", false, "Store the text as a note with its summary, tags and flashcards")
}

func runProcess(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	in, err := readInput(args, processFile, os.Stdin)
	if err != nil {
		return err
	}
	title := processTitle
	if title == "" {
		title = in.Title
	}
	tags := processTags
	if len(tags) == 0 {
		tags = in.Tags
	}

	resp, err := svc.Analyze.Process(cmd.Context(), services.ChatRequest{Content: in.Text, Title: title, Tags: tags})
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	fmt.Println(label("Tags", renderTags(resp.Tags)))
	fmt.Println(heading("Summary"))
	fmt.Println(resp.Summary)
	fmt.Println(rule())
	for i, c := range resp.Flashcards {
		fmt.Printf("%d. %s\n   A: %s\n", i+1, questionStyle.Render("Q: "+c.Question), c.Answer)
	}
	fmt.Println(labelStyle.Render("Generated using " + resp.ModelUsed))

	if !processSave {
		return nil
	}
	note, err := svc.Notes.Create(title, in.Text, resp.Tags)
	if err != nil {
		return fmt.Errorf("failed to save note: %w", err)
	}
	note.Summary = resp.Summary
	if err := svc.Notes.Update(note); err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	if _, err := svc.Flashcards.SaveGenerated(note.Title, &note.ID, resp.Flashcards); err != nil {
		return fmt.Errorf("failed to save flashcards: %w", err)
	}
	fmt.Printf("\nSaved as note %s with %d flashcards.\n", note.ID, len(resp.Flashcards))
	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag [text | - ]",
	Short: "Suggest tags for text or a note",
	Long: heredoc.Doc(`
		Suggest tags for text, a file or a stored note. Without an AI provider the
		most frequent content words are used.

		Examples:
		  smart-notes tag "Mitochondria produce most of the cell's energy..."
		  smart-notes tag --file lecture.md
		  smart-notes tag --note ID --apply     # merge the tags into the note
	`),
	RunE: runTag,
}

var (
	tagFile  string
	tagNote  string
	tagApply bool
	tagModel string
)

func init() {
	rootCmd.AddCommand(tagCmd)
	tagCmd.Flags().StringVarP(&tagFile, "file", "f", "", "Tag a .txt, .md or .pdf file")
	tagCmd.Flags().StringVarP(&tagNote, "note", "n", "", "Tag a stored note")
	tagCmd.Flags().BoolVar(&tagApply, "apply", false, "Add the suggested tags to the note (requires --note)")
	tagCmd.Flags().StringVar(&tagModel, "ai-model", "", "Model name to report as the tags' source")
}

func runTag(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}
	if tagApply && tagNote == "" {
		return fmt.Errorf("--apply requires --note")
	}

	if tagNote == "" {
		in, err := readInput(args, tagFile, os.Stdin)
		if err != nil {
			return err
		}
		result, err := svc.Analyze.Tag(cmd.Context(), in.Text, tagModel)
		if err != nil {
			return fmt.Errorf("failed to generate tags: %w", err)
		}
		fmt.Println(label("Suggested tags", renderTags(result.Tags)))
		fmt.Println(labelStyle.Render("Generated using " + result.ModelUsed))
		return nil
	}

	note, err := svc.Notes.GetByID(tagNote)
	if err != nil {
		return fmt.Errorf("failed to get note: %w", err)
	}
	result, err := svc.Analyze.Tag(cmd.Context(), note.Content, tagModel)
	if err != nil {
		return fmt.Errorf("failed to generate tags: %w", err)
	}

	fmt.Printf("Tag suggestions for note %s (%q):\n", note.ID, note.Title)
	fmt.Println(label("Suggested", renderTags(result.Tags)))
	fmt.Println(label("Existing ", renderTags(note.Tags)))

	if tagApply {
		note.Tags = append(note.Tags, result.Tags...)
		if err := svc.Notes.Update(note); err != nil {
			return fmt.Errorf("failed to apply tags: %w", err)
		}
		fmt.Println(label("Applied  ", renderTags(note.Tags)))
	}
	return nil
}

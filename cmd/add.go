package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	interrors "github.com/streed/smart-notes/internal/errors"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new note",
	Long: heredoc.Doc(`
		Add a new note.

		Content can be provided in several ways:
		  smart-notes add -t "Title" -c "Content"
		  echo "Content" | smart-notes add -t "Title"
		  smart-notes add --file lecture.pdf

		Without a title, the file's title or the first line of the content is used.
	`),
	RunE: runAdd,
}

var (
	addTitle   string
	addContent string
	addFile    string
	addTags    []string
	addAutoTag bool
)

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "Note title")
	addCmd.Flags().StringVarP(&addContent, "content", "c", "", "Note content")
	addCmd.Flags().StringVarP(&addFile, "file", "f", "", "Read content from a .txt, .md or .pdf file")
	addCmd.Flags().StringSliceVarP(&addTags, "tags", "T", []string{}, "Tags for the note (comma-separated)")
	addCmd.Flags().BoolVar(&addAutoTag, "auto-tag", false, "Generate tags when none are given")
}

func runAdd(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	title, content, tags := addTitle, addContent, addTags
	switch {
	case addFile != "":
		in, err := readInput(nil, addFile, nil)
		if err != nil {
			return err
		}
		content = in.Text
		if title == "" {
			title = in.Title
		}
		if len(tags) == 0 {
			tags = in.Tags
		}
	case content == "":
		if stat, err := os.Stdin.Stat(); err == nil && stat.Mode()&os.ModeCharDevice == 0 {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			content = string(data)
		}
	}

	if content == "" {
		return interrors.ErrEmptyContent
	}

	if len(tags) == 0 && addAutoTag {
		result, err := svc.Analyze.Tag(cmd.Context(), content, "")
		if err != nil {
			return fmt.Errorf("failed to generate tags: %w", err)
		}
		tags = result.Tags
		fmt.Printf("Generated tags using %s\n", result.ModelUsed)
	}

	note, err := svc.Notes.Create(title, content, tags)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	fmt.Printf("Note created successfully with ID: %s\n", note.ID)
	fmt.Println(label("Title", note.Title))
	if len(note.Tags) > 0 {
		fmt.Println(label("Tags", renderTags(note.Tags)))
	}
	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/streed/smart-notes/internal/ingest"
	"github.com/streed/smart-notes/internal/models"
)

var importCmd = &cobra.Command{
	Use:   "import <file or directory>...",
	Short: "Import files as notes",
	Long: heredoc.Doc(`
		Import .txt, .md and .pdf files as notes. Directories are scanned with a
		glob pattern (default "**/*.{txt,md,markdown,pdf}"). Markdown front matter
		supplies the note title and tags when present.

		Examples:
		  smart-notes import lecture.pdf
		  smart-notes import ~/course --pattern "week*/**/*.md" --analyze
		  smart-notes import notes/ --tags biology --flashcards
	`),
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

var (
	importPattern    string
	importTags       []string
	importAnalyze    bool
	importFlashcards bool
)

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&importPattern, "pattern", "p", ingest.DefaultPattern, "Glob pattern for files inside directories")
	importCmd.Flags().StringSliceVarP(&importTags, "tags", "T", []string{}, "Tags added to every imported note (comma-separated)")
	importCmd.Flags().BoolVar(&importAnalyze, "analyze", false, "Summarize and tag the imported notes")
	importCmd.Flags().BoolVar(&importFlashcards, "flashcards", false, "Generate and save flashcards for each imported note")
}

func runImport(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	docs, err := collectDocuments(args, importPattern)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Println("No importable files found.")
		return nil
	}

	var notes []*models.Note
	for _, doc := range docs {
		tags := append(append([]string(nil), doc.Tags...), importTags...)
		note, err := svc.Notes.Create(doc.Title, doc.Text, tags)
		if err != nil {
			fmt.Printf("Failed to import %s: %v\n", doc.Path, err)
			continue
		}
		notes = append(notes, note)
		fmt.Printf("Imported %s as [%s] %s\n", doc.Path, note.ID, note.Title)

		if importFlashcards {
			result, err := svc.Analyze.GenerateFlashcards(cmd.Context(), note.Content, note.Title, "")
			if err != nil {
				fmt.Printf("  Failed to generate flashcards: %v\n", err)
				continue
			}
			stored, err := svc.Flashcards.SaveGenerated(note.Title, &note.ID, result.Cards)
			if err != nil {
				fmt.Printf("  Failed to save flashcards: %v\n", err)
				continue
			}
			fmt.Printf("  Saved %d flashcards (%s)\n", len(stored), result.ModelUsed)
		}
	}

	fmt.Printf("\nImported %d of %d file(s).\n", len(notes), len(docs))

	if importAnalyze && len(notes) > 0 {
		report, err := svc.Analyze.AnalyzeAll(cmd.Context(), notes)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		fmt.Printf("Analyzed %d of %d imported note(s).\n", report.Succeeded, len(notes))
	}
	return nil
}

// collectDocuments extracts the named files and every matching file inside
// the named directories.
func collectDocuments(paths []string, pattern string) ([]*ingest.Document, error) {
	var docs []*ingest.Document
	for _, p := range paths {
		p = expandPath(p)
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			found, err := ingest.ImportDir(p, pattern)
			if err != nil {
				return nil, err
			}
			docs = append(docs, found...)
			continue
		}
		doc, err := ingest.ReadFile(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

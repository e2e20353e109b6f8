package cmd

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/streed/smart-notes/internal/constants"
	"github.com/streed/smart-notes/internal/logger"
	"github.com/streed/smart-notes/internal/models"
	"github.com/streed/smart-notes/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search notes and flashcards",
	Long: heredoc.Doc(`
		Search notes and flashcards by title, content and tags. Results are
		ranked by match score; exact title matches rank highest.

		Use --summarize to get one summary of the matching notes.
	`),
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var (
	searchLimit       int
	searchShort       bool
	searchSummarize   bool
	searchShowDetails bool
)

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 0, "Maximum number of results (0 for the configured default, -1 for all)")
	searchCmd.Flags().BoolVarP(&searchShort, "short", "s", false, "Show only type, ID and title")
	searchCmd.Flags().BoolVar(&searchSummarize, "summarize", false, "Summarize the matching notes (hides details unless --show-details is used)")
	searchCmd.Flags().BoolVar(&searchShowDetails, "show-details", false, "Show detailed results even when summarizing")
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}
	query := strings.Join(args, " ")

	results, err := svc.Search.Search(query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matching notes or flashcards found.")
		return nil
	}
	fmt.Printf("Found %d matches for %q:\n\n", len(results), query)

	if searchSummarize {
		var notes []*models.Note
		for _, r := range results {
			if r.Note != nil {
				notes = append(notes, r.Note)
			}
		}
		if len(notes) == 0 {
			fmt.Println("No notes among the matches to summarize.")
		} else {
			summary, err := svc.Analyze.SummarizeNotes(cmd.Context(), notes, query)
			if err != nil {
				logger.Error("Failed to generate summary: %v", err)
				fmt.Printf("Warning: Could not generate summary: %v\n", err)
			} else {
				printSummary(summary)
				if !searchShowDetails {
					return nil
				}
				fmt.Println("\nDetailed Results:")
			}
		}
	}

	for _, r := range results {
		printResult(r)
	}
	return nil
}

func printResult(r search.Result) {
	if searchShort {
		fmt.Printf("%-9s [%s] %s\n", r.Type, r.ID(), r.Title())
		return
	}

	fmt.Println(label(string(r.Type), headingStyle.Render(r.Title())))
	fmt.Println(label("ID", r.ID()))
	fmt.Println(label("Score", fmt.Sprintf("%d", r.MatchScore)))
	if r.Note != nil {
		fmt.Println(label("Created", formatTime(r.Note.CreatedAt)))
		if len(r.Note.Tags) > 0 {
			fmt.Println(label("Tags", renderTags(r.Note.Tags)))
		}
		fmt.Println(label("Preview", r.Note.Preview(constants.SearchPreviewLength)))
	} else {
		if len(r.Flashcard.Tags) > 0 {
			fmt.Println(label("Tags", renderTags(r.Flashcard.Tags)))
		}
		fmt.Println(label("Q", r.Flashcard.Question))
		fmt.Println(label("A", r.Flashcard.Answer))
	}
	fmt.Println(rule())
}

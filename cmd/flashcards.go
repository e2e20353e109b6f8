package cmd

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/streed/smart-notes/internal/constants"
	"github.com/streed/smart-notes/internal/models"
)

var flashcardsCmd = &cobra.Command{
	Use:     "flashcards",
	Aliases: []string{"cards"},
	Short:   "Generate and manage flashcards",
}

var flashcardsGenerateCmd = &cobra.Command{
	Use:   "generate [text | - ]",
	Short: "Generate flashcards from text, a file or a note",
	Long: heredoc.Doc(`
		Generate question and answer flashcards. The AI provider writes the cards
		when configured; otherwise they are built from the first paragraphs of
		the text.

		Examples:
		  smart-notes flashcards generate --note ID --save
		  smart-notes flashcards generate --file chapter1.pdf --title "Chapter 1"
		  cat lecture.md | smart-notes flashcards generate - --title Lecture
	`),
	RunE: runFlashcardsGenerate,
}

var flashcardsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored flashcards",
	RunE:  runFlashcardsList,
}

var flashcardsDeleteCmd = &cobra.Command{
	Use:   "delete [ids...]",
	Short: "Delete flashcards",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFlashcardsDelete,
}

var (
	cardsFile   string
	cardsNote   string
	cardsTitle  string
	cardsSave   bool
	cardsModel  string
	cardsLimit  int
	cardsOffset int
)

func init() {
	rootCmd.AddCommand(flashcardsCmd)
	flashcardsCmd.AddCommand(flashcardsGenerateCmd)
	flashcardsCmd.AddCommand(flashcardsListCmd)
	flashcardsCmd.AddCommand(flashcardsDeleteCmd)

	flashcardsGenerateCmd.Flags().StringVarP(&cardsFile, "file", "f", "", "Generate from a .txt, .md or .pdf file")
	flashcardsGenerateCmd.Flags().StringVarP(&cardsNote, "note", "n", "", "Generate from a stored note")
	flashcardsGenerateCmd.Flags().StringVarP(&cardsTitle, "title", "t", "", "Title for the cards (defaults to the note or file title)")
	flashcardsGenerateCmd.Flags().BoolVar(&cardsSave, "save", false, "Store the generated cards")
	flashcardsGenerateCmd.Flags().StringVar(&cardsModel, "ai-model", "", "Model name to report as the cards' source")

	flashcardsListCmd.Flags().StringVarP(&cardsNote, "note", "n", "", "Only list cards generated from this note")
	flashcardsListCmd.Flags().IntVarP(&cardsLimit, "limit", "l", constants.DefaultListLimit, "Maximum number of cards to display (0 for all)")
	flashcardsListCmd.Flags().IntVarP(&cardsOffset, "offset", "o", 0, "Number of cards to skip")
}

func runFlashcardsGenerate(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	var (
		text, title string
		noteID      *string
	)
	if cardsNote != "" {
		note, err := svc.Notes.GetByID(cardsNote)
		if err != nil {
			return fmt.Errorf("failed to get note: %w", err)
		}
		text, title, noteID = note.Content, note.Title, &note.ID
	} else {
		in, err := readInput(args, cardsFile, os.Stdin)
		if err != nil {
			return err
		}
		text, title = in.Text, in.Title
	}
	if cardsTitle != "" {
		title = cardsTitle
	}

	result, err := svc.Analyze.GenerateFlashcards(cmd.Context(), text, title, cardsModel)
	if err != nil {
		return fmt.Errorf("failed to generate flashcards: %w", err)
	}
	if len(result.Cards) == 0 {
		fmt.Println("No flashcards could be generated from the text.")
		return nil
	}

	fmt.Println(heading("Generated %d flashcards", len(result.Cards)))
	fmt.Println(labelStyle.Render("Generated using " + result.ModelUsed))
	fmt.Println(rule())
	for i, c := range result.Cards {
		fmt.Printf("%d. %s\n   A: %s\n", i+1, questionStyle.Render("Q: "+c.Question), c.Answer)
	}

	if cardsSave {
		stored, err := svc.Flashcards.SaveGenerated(title, noteID, result.Cards)
		if err != nil {
			return fmt.Errorf("failed to save flashcards: %w", err)
		}
		fmt.Printf("\nSaved %d flashcards.\n", len(stored))
	}
	return nil
}

func runFlashcardsList(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	var (
		cards []*models.Flashcard
		err   error
	)
	if cardsNote != "" {
		cards, err = svc.Flashcards.ListByNote(cardsNote)
	} else {
		cards, err = svc.Flashcards.List(cardsLimit, cardsOffset)
	}
	if err != nil {
		return fmt.Errorf("failed to list flashcards: %w", err)
	}

	if len(cards) == 0 {
		fmt.Println("No flashcards found.")
		return nil
	}
	fmt.Printf("Found %d flashcards:\n\n", len(cards))
	for i, card := range cards {
		printFlashcard(i+1, card)
	}
	return nil
}

func runFlashcardsDelete(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	deleted := 0
	for _, id := range args {
		if err := svc.Flashcards.Delete(id); err != nil {
			fmt.Printf("Failed to delete flashcard %s: %v\n", id, err)
			continue
		}
		deleted++
	}
	fmt.Printf("Successfully deleted %d flashcard(s).\n", deleted)
	if deleted < len(args) {
		return fmt.Errorf("failed to delete %d flashcard(s)", len(args)-deleted)
	}
	return nil
}

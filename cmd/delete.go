package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/streed/smart-notes/internal/logger"
	"github.com/streed/smart-notes/internal/models"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [note IDs...]",
	Short: "Delete one or more notes",
	Long: `Delete notes by their IDs. Flashcards generated from a note are kept
but no longer linked to it.

By default, you will be prompted for confirmation before deletion.
Use --force to skip the confirmation prompt.`,
	Args:    cobra.MinimumNArgs(1),
	Aliases: []string{"rm", "remove"},
	RunE:    runDelete,
}

var forceDelete bool

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&forceDelete, "force", "f", false, "Skip confirmation prompt")
}

func runDelete(_ *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	var notes []*models.Note
	for _, id := range args {
		note, err := svc.Notes.GetByID(id)
		if err != nil {
			return fmt.Errorf("failed to get note %s: %w", id, err)
		}
		notes = append(notes, note)
	}

	if !forceDelete {
		fmt.Println("The following notes will be deleted:")
		for _, note := range notes {
			fmt.Printf("  [%s] %s\n", note.ID, note.Title)
		}
		if !confirm(fmt.Sprintf("Delete %d note(s)?", len(notes))) {
			fmt.Println("Deletion cancelled.")
			return nil
		}
	}

	deleted := 0
	for _, note := range notes {
		if err := svc.Notes.Delete(note.ID); err != nil {
			logger.Error("Failed to delete note %s: %v", note.ID, err)
			continue
		}
		deleted++
	}

	fmt.Printf("Successfully deleted %d note(s).\n", deleted)
	if deleted < len(notes) {
		return fmt.Errorf("failed to delete %d note(s)", len(notes)-deleted)
	}
	return nil
}

// confirm asks a yes/no question on stdin, defaulting to no.
func confirm(question string) bool {
	fmt.Printf("%s (y/N): ", question)
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

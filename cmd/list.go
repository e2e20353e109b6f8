package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/streed/smart-notes/internal/constants"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List notes",
	Long:    `List notes, newest first, with their ID, title, tags and a preview.`,
	RunE:    runList,
}

var (
	listLimit  int
	listOffset int
	listShort  bool
)

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", constants.DefaultListLimit, "Maximum number of notes to display (0 for all)")
	listCmd.Flags().IntVarP(&listOffset, "offset", "o", 0, "Number of notes to skip")
	listCmd.Flags().BoolVarP(&listShort, "short", "s", false, "Show only ID and title")
}

func runList(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	notes, err := svc.Notes.List(listLimit, listOffset)
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}

	if len(notes) == 0 {
		fmt.Println("No notes found.")
		return nil
	}

	fmt.Printf("Found %d notes:\n\n", len(notes))
	for _, note := range notes {
		if listShort {
			fmt.Printf("[%s] %s\n", note.ID, note.Title)
			continue
		}
		printNoteSummary(note)
	}
	return nil
}

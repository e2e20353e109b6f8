package cmd

import (
	"errors"
	"io"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/streed/smart-notes/internal/logger"
	"github.com/streed/smart-notes/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for LLM integration",
	Long: heredoc.Doc(`
		Start a Model Context Protocol (MCP) server over stdio so LLM clients can
		work with your notes and flashcards.

		Tools:
		  add_note, get_note, list_notes, delete_note
		  search                 ranked search over notes and flashcards
		  summarize_text         summarize text with rule-based fallback
		  tag_text               suggest tags for text
		  generate_flashcards    build (and optionally save) flashcards
		  analyze_note           summarize and tag a stored note

		Resources:
		  notes://recent, notes://stats, notes://config

		Prompts:
		  study_notes            quiz prompt built from matching notes

		To use with Claude Desktop, add this to your claude_desktop_config.json:
		{
		  "mcpServers": {
		    "smart-notes": {
		      "command": "smart-notes",
		      "args": ["mcp"]
		    }
		  }
		}
	`),
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}
	logger.Info("Starting MCP server...")

	notesServer := mcp.NewNotesServer(appConfig, svc, Version)

	logger.Info("MCP server ready. Listening on stdio...")
	if err := notesServer.Serve(); err != nil && !errors.Is(err, io.EOF) {
		logger.Error("MCP server error: %v", err)
		return err
	}

	logger.Info("MCP server shutting down")
	return nil
}

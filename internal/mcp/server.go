package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/streed/smart-notes/internal/config"
	"github.com/streed/smart-notes/internal/constants"
	"github.com/streed/smart-notes/internal/logger"
	"github.com/streed/smart-notes/internal/services"
)

// recentNotes is the number of notes exposed by notes://recent.
const recentNotes = 10

type NotesServer struct {
	cfg       *config.Config
	services  *services.Services
	mcpServer *server.MCPServer
}

func NewNotesServer(cfg *config.Config, svc *services.Services, version string) *NotesServer {
	ns := &NotesServer{
		cfg:      cfg,
		services: svc,
	}

	ns.mcpServer = server.NewMCPServer(
		"smart-notes",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
	)

	ns.registerTools()
	ns.registerResources()
	ns.registerPrompts()

	return ns
}

func (s *NotesServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// Serve runs the server over stdin and stdout until the client disconnects.
func (s *NotesServer) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *NotesServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Add a new note"),
		mcp.WithString("title",
			mcp.Description("The title of the note (defaults to the first line of content)"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The content of the note"),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags for the note (optional)"),
		),
		mcp.WithBoolean("auto_tag",
			mcp.Description("Generate tags when none are given (default: false)"),
		),
	), s.handleAddNote)

	s.mcpServer.AddTool(mcp.NewTool("get_note",
		mcp.WithDescription("Get a specific note by ID"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The ID of the note to retrieve"),
		),
	), s.handleGetNote)

	s.mcpServer.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of notes to return"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of notes to skip"),
		),
	), s.handleListNotes)

	s.mcpServer.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note by ID"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The ID of the note to delete"),
		),
	), s.handleDeleteNote)

	s.mcpServer.AddTool(mcp.NewTool("search",
		mcp.WithDescription("Search notes and flashcards by title, content and tags, best matches first"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query string"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default: configured search limit)"),
		),
	), s.handleSearch)

	s.mcpServer.AddTool(mcp.NewTool("summarize_text",
		mcp.WithDescription("Summarize text, falling back to extractive summarization when the AI provider is unavailable"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The text to summarize"),
		),
		mcp.WithString("ai_model",
			mcp.Description("Model name to report as the summary's source (optional)"),
		),
	), s.handleSummarizeText)

	s.mcpServer.AddTool(mcp.NewTool("tag_text",
		mcp.WithDescription("Suggest tags for text"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The text to tag"),
		),
		mcp.WithString("ai_model",
			mcp.Description("Model name to report as the tags' source (optional)"),
		),
	), s.handleTagText)

	s.mcpServer.AddTool(mcp.NewTool("generate_flashcards",
		mcp.WithDescription("Generate question and answer flashcards from text"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The study material"),
		),
		mcp.WithString("title",
			mcp.Description("Title used to tag the generated cards (optional)"),
		),
		mcp.WithBoolean("save",
			mcp.Description("Store the generated cards (default: false)"),
		),
		mcp.WithString("note_id",
			mcp.Description("Note to link saved cards to (optional)"),
		),
	), s.handleGenerateFlashcards)

	s.mcpServer.AddTool(mcp.NewTool("analyze_note",
		mcp.WithDescription("Summarize and tag a stored note, saving the results"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The ID of the note to analyze"),
		),
	), s.handleAnalyzeNote)
}

func (s *NotesServer) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("notes://recent",
		"Recent Notes",
		mcp.WithResourceDescription("Get the most recently created notes"),
		mcp.WithMIMEType("text/plain"),
	), s.handleRecentNotes)

	s.mcpServer.AddResource(mcp.NewResource("notes://stats",
		"Notes Statistics",
		mcp.WithResourceDescription("Get statistics about the notes database"),
		mcp.WithMIMEType("text/plain"),
	), s.handleStats)

	s.mcpServer.AddResource(mcp.NewResource("notes://config",
		"Configuration",
		mcp.WithResourceDescription("Get the current smart-notes configuration"),
		mcp.WithMIMEType("application/json"),
	), s.handleConfig)
}

func (s *NotesServer) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.NewPrompt("study_notes",
		mcp.WithPromptDescription("Build a study prompt from the notes matching a query"),
		mcp.WithArgument("query",
			mcp.ArgumentDescription("Topic to study"),
			mcp.RequiredArgument(),
		),
	), s.handleStudyPrompt)
}

// Tool handlers
func (s *NotesServer) handleAddNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: add_note")

	content, err := request.RequireString("content")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'content': %w", err)
	}
	title := request.GetString("title", "")
	tags := splitTags(request.GetString("tags", ""))

	if len(tags) == 0 && request.GetBool("auto_tag", false) {
		result, err := s.services.Analyze.Tag(ctx, content, "")
		if err != nil {
			return nil, fmt.Errorf("failed to tag note: %w", err)
		}
		tags = result.Tags
	}

	note, err := s.services.Notes.Create(title, content, tags)
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	result := fmt.Sprintf("Note created successfully with ID: %s\nTitle: %s", note.ID, note.Title)
	if len(note.Tags) > 0 {
		result += fmt.Sprintf("\nTags: %s", strings.Join(note.Tags, ", "))
	}
	return mcp.NewToolResultText(result), nil
}

func (s *NotesServer) handleGetNote(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: get_note")

	id, err := request.RequireString("id")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'id': %w", err)
	}

	note, err := s.services.Notes.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Note ID: %s\nTitle: %s", note.ID, note.Title)
	if len(note.Tags) > 0 {
		fmt.Fprintf(&b, "\nTags: %s", strings.Join(note.Tags, ", "))
	}
	fmt.Fprintf(&b, "\nCreated: %s\nUpdated: %s",
		note.CreatedAt.Format("2006-01-02 15:04:05"),
		note.UpdatedAt.Format("2006-01-02 15:04:05"))
	if note.Summary != "" {
		fmt.Fprintf(&b, "\n\nSummary (%s):\n%s", note.SummaryModel, note.Summary)
	}
	fmt.Fprintf(&b, "\n\nContent:\n%s", note.Content)

	return mcp.NewToolResultText(b.String()), nil
}

func (s *NotesServer) handleListNotes(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: list_notes")

	limit := request.GetInt("limit", constants.DefaultListLimit)
	offset := request.GetInt("offset", 0)

	notes, err := s.services.Notes.List(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	if len(notes) == 0 {
		return mcp.NewToolResultText("No notes found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Listing %d notes (offset: %d):\n\n", len(notes), offset)
	for i, note := range notes {
		fmt.Fprintf(&b, "%d. [ID: %s] %s%s (Created: %s)\n   %s\n\n",
			i+1+offset, note.ID, note.Title, tagSuffix(note.Tags),
			note.CreatedAt.Format("2006-01-02"),
			note.Preview(constants.ShortPreviewLength))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *NotesServer) handleDeleteNote(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: delete_note")

	id, err := request.RequireString("id")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'id': %w", err)
	}

	if err := s.services.Notes.Delete(id); err != nil {
		return nil, fmt.Errorf("failed to delete note: %w", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully deleted note %s", id)), nil
}

func (s *NotesServer) handleSearch(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: search")

	query, err := request.RequireString("query")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'query': %w", err)
	}

	results, err := s.services.Search.Search(query, request.GetInt("limit", 0))
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No notes or flashcards found matching your query."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d matches:\n\n", len(results))
	for i, r := range results {
		fmt.Fprintf(&b, "%d. [%s %s] %s (score: %d)\n", i+1, r.Type, r.ID(), r.Title(), r.MatchScore)
		if r.Note != nil {
			fmt.Fprintf(&b, "   %s\n\n", r.Note.Preview(constants.PreviewLength))
		} else {
			fmt.Fprintf(&b, "   Q: %s\n   A: %s\n\n", r.Flashcard.Question, r.Flashcard.Answer)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *NotesServer) handleSummarizeText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: summarize_text")

	text, err := request.RequireString("text")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'text': %w", err)
	}

	result, err := s.services.Analyze.Summarize(ctx, text, request.GetString("ai_model", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to summarize: %w", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Summary (%s, %d -> %d characters):\n\n%s",
		result.ModelUsed, result.OriginalLength, result.SummaryLength, result.Summary)), nil
}

func (s *NotesServer) handleTagText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: tag_text")

	text, err := request.RequireString("text")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'text': %w", err)
	}

	result, err := s.services.Analyze.Tag(ctx, text, request.GetString("ai_model", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to tag text: %w", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Suggested tags (%s): %s",
		result.ModelUsed, strings.Join(result.Tags, ", "))), nil
}

func (s *NotesServer) handleGenerateFlashcards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: generate_flashcards")

	text, err := request.RequireString("text")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'text': %w", err)
	}
	title := request.GetString("title", "")

	result, err := s.services.Analyze.GenerateFlashcards(ctx, text, title, "")
	if err != nil {
		return nil, fmt.Errorf("failed to generate flashcards: %w", err)
	}
	if len(result.Cards) == 0 {
		return mcp.NewToolResultText("No flashcards could be generated from the text."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generated %d flashcards (%s):\n\n", len(result.Cards), result.ModelUsed)
	for i, c := range result.Cards {
		fmt.Fprintf(&b, "%d. Q: %s\n   A: %s\n\n", i+1, c.Question, c.Answer)
	}

	if request.GetBool("save", false) {
		var noteID *string
		if id := request.GetString("note_id", ""); id != "" {
			noteID = &id
		}
		stored, err := s.services.Flashcards.SaveGenerated(title, noteID, result.Cards)
		if err != nil {
			return nil, fmt.Errorf("failed to save flashcards: %w", err)
		}
		fmt.Fprintf(&b, "Saved %d flashcards.", len(stored))
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func (s *NotesServer) handleAnalyzeNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: analyze_note")

	id, err := request.RequireString("id")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'id': %w", err)
	}

	note, err := s.services.Notes.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	analysis, err := s.services.Analyze.AnalyzeNote(ctx, note)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze note: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf("Analyzed note %s (%q)\nSummary (%s): %s\nGenerated tags: %s",
		note.ID, note.Title,
		analysis.Summary.ModelUsed, analysis.Summary.Summary,
		strings.Join(analysis.Tags.Tags, ", "))), nil
}

// Resource handlers
func (s *NotesServer) handleRecentNotes(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	logger.Debug("MCP resource read: notes://recent")

	notes, err := s.services.Notes.List(recentNotes, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent notes: %w", err)
	}

	var b strings.Builder
	b.WriteString("Recent Notes:\n\n")
	for i, note := range notes {
		fmt.Fprintf(&b, "%d. [ID: %s] %s%s\n   Created: %s\n   %s\n\n",
			i+1, note.ID, note.Title, tagSuffix(note.Tags),
			note.CreatedAt.Format("2006-01-02 15:04:05"),
			note.Preview(constants.SearchPreviewLength))
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      "notes://recent",
			MIMEType: "text/plain",
			Text:     b.String(),
		},
	}, nil
}

func (s *NotesServer) handleStats(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	logger.Debug("MCP resource read: notes://stats")

	count, err := s.services.Notes.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to get note count: %w", err)
	}
	cards, err := s.services.Flashcards.List(-1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get flashcards: %w", err)
	}

	content := fmt.Sprintf(`Notes Database Statistics:
- Total Notes: %d
- Total Flashcards: %d
- Database Path: %s
- AI Provider: %s (%s)`,
		count,
		len(cards),
		s.cfg.GetDatabasePath(),
		s.services.Provider.Kind(),
		s.services.Provider.Model())

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      "notes://stats",
			MIMEType: "text/plain",
			Text:     content,
		},
	}, nil
}

func (s *NotesServer) handleConfig(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	logger.Debug("MCP resource read: notes://config")

	view := map[string]string{}
	for _, key := range config.Keys {
		value, err := s.cfg.Get(key)
		if err != nil {
			return nil, err
		}
		view[key] = value
	}
	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      "notes://config",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// Prompt handlers
func (s *NotesServer) handleStudyPrompt(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	query := request.Params.Arguments["query"]
	results, err := s.services.Search.Search(query, 0)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Help me study %q using my notes below. Quiz me with questions and explain anything I get wrong.\n\n", query)
	for _, r := range results {
		if r.Note != nil {
			fmt.Fprintf(&b, "Note - %s:\n%s\n\n", r.Note.Title, r.Note.Content)
		} else {
			fmt.Fprintf(&b, "Flashcard - %s:\nQ: %s\nA: %s\n\n", r.Flashcard.Title, r.Flashcard.Question, r.Flashcard.Answer)
		}
	}
	if len(results) == 0 {
		b.WriteString("I have no notes on this topic yet.\n")
	}

	return &mcp.GetPromptResult{
		Description: "Study prompt for " + query,
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(b.String()),
			},
		},
	}, nil
}

func splitTags(s string) []string {
	var tags []string
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func tagSuffix(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return fmt.Sprintf(" [Tags: %s]", strings.Join(tags, ", "))
}

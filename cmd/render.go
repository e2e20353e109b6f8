package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/streed/smart-notes/internal/constants"
	"github.com/streed/smart-notes/internal/models"
)

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0AF"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555", Dark: "#999"})

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF")).
			Background(lipgloss.Color("#224")).
			Padding(0, 1)

	ruleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CCC", Dark: "#444"})

	questionStyle = lipgloss.NewStyle().Bold(true)
)

const ruleWidth = 60

func rule() string {
	return ruleStyle.Render(strings.Repeat("─", ruleWidth))
}

func heading(format string, args ...any) string {
	return headingStyle.Render(fmt.Sprintf(format, args...))
}

func label(name, value string) string {
	return fmt.Sprintf("%s %s", labelStyle.Render(name+":"), value)
}

func renderTags(tags []string) string {
	if len(tags) == 0 {
		return labelStyle.Render("(none)")
	}
	rendered := make([]string, len(tags))
	for i, tag := range tags {
		rendered[i] = tagStyle.Render(tag)
	}
	return strings.Join(rendered, " ")
}

// renderMarkdown renders note content for the terminal, returning the raw
// text when rendering fails.
func renderMarkdown(content string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}

func printNoteSummary(note *models.Note) {
	fmt.Println(label("ID", note.ID))
	fmt.Println(label("Title", note.Title))
	fmt.Println(label("Created", formatTime(note.CreatedAt)))
	if len(note.Tags) > 0 {
		fmt.Println(label("Tags", renderTags(note.Tags)))
	}
	fmt.Println(label("Preview", note.Preview(constants.PreviewLength)))
	fmt.Println(rule())
}

func printFlashcard(i int, card *models.Flashcard) {
	fmt.Printf("%d. %s\n", i, questionStyle.Render("Q: "+card.Question))
	fmt.Printf("   A: %s\n", card.Answer)
	fmt.Printf("   %s\n", labelStyle.Render(fmt.Sprintf("[%s] %s", card.ID, card.Title)))
}

// compression reports how much shorter a summary is than its source.
func compression(original, summary int) float64 {
	if original == 0 {
		return 0
	}
	return 100.0 * (1.0 - float64(summary)/float64(original))
}

func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		minutes := int(diff.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02 15:04")
	}
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[2:])
		}
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

// splitTags parses a comma-separated tag list, dropping blanks.
func splitTags(s string) []string {
	var tags []string
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/streed/smart-notes/internal/ingest"
)

// textInput is the text a command operates on and a title for it.
type textInput struct {
	Text  string
	Title string
	Tags  []string
}

// readInput takes text from file when set, from stdin when args is "-",
// and from the joined args otherwise.
func readInput(args []string, file string, stdin io.Reader) (*textInput, error) {
	if file != "" {
		doc, err := ingest.ReadFile(expandPath(file))
		if err != nil {
			return nil, err
		}
		return &textInput{Text: doc.Text, Title: doc.Title, Tags: doc.Tags}, nil
	}

	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return &textInput{Text: string(data)}, nil
	}

	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text given, pass text, '-' for stdin or --file")
	}
	return &textInput{Text: text}, nil
}

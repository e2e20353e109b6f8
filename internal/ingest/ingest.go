// Package ingest turns uploaded or on-disk files into note text.
package ingest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ledongthuc/pdf"
	"gopkg.in/yaml.v3"

	interrors "github.com/streed/smart-notes/internal/errors"
	"github.com/streed/smart-notes/internal/logger"
)

// DefaultPattern matches every supported file below a directory.
const DefaultPattern = "**/*.{txt,md,markdown,pdf}"

// Document is the text extracted from one file.
type Document struct {
	Path  string   `json:"path,omitempty"`
	Title string   `json:"title"`
	Tags  []string `json:"tags,omitempty"`
	Text  string   `json:"text"`
}

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// Supported reports whether name has an extension ExtractFile can read.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md", ".markdown", ".pdf":
		return true
	}
	return false
}

// ExtractFile reads r according to the extension of name. Markdown front
// matter is stripped and its title and tags are returned on the document.
// Images are rejected since no OCR is performed.
func ExtractFile(name string, r io.Reader) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if imageExtensions[ext] {
		return nil, fmt.Errorf("%w: %s (image text extraction is not available)", interrors.ErrUnsupportedFileType, ext)
	}
	if !Supported(name) {
		return nil, fmt.Errorf("%w: %q", interrors.ErrUnsupportedFileType, ext)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	doc := &Document{Title: titleFromName(name)}

	switch ext {
	case ".pdf":
		doc.Text, err = pdfText(data)
	case ".md", ".markdown":
		err = parseMarkdown(data, doc)
	default:
		doc.Text = string(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", name, err)
	}

	doc.Text = strings.TrimSpace(doc.Text)
	if doc.Text == "" {
		return nil, fmt.Errorf("%w: %s", interrors.ErrNoTextExtracted, name)
	}
	return doc, nil
}

// ReadFile extracts the document at path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := ExtractFile(filepath.Base(path), f)
	if err != nil {
		return nil, err
	}
	doc.Path = path
	return doc, nil
}

// ImportDir extracts every file below root matching pattern. Files that
// fail to extract are logged and skipped.
func ImportDir(root, pattern string) ([]*Document, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	log := logger.With("component", "ingest")
	docs := make([]*Document, 0, len(matches))
	for _, rel := range matches {
		path := filepath.Join(root, filepath.FromSlash(rel))
		doc, err := ReadFile(path)
		if err != nil {
			log.Warn("skipping file", "path", path, "err", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func pdfText(data []byte) (string, error) {
	rdr, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	b, err := rdr.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, b); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type frontMatter struct {
	Title string    `yaml:"title"`
	Tags  yaml.Node `yaml:"tags"`
}

func parseMarkdown(data []byte, doc *Document) error {
	if !bytes.HasPrefix(data, []byte("---\n")) && !bytes.HasPrefix(data, []byte("---\r\n")) {
		doc.Text = string(data)
		return nil
	}

	parts := bytes.SplitN(data[3:], []byte("\n---"), 2)
	if len(parts) == 1 {
		return fmt.Errorf("front matter started but no closing delimiter found")
	}

	var meta frontMatter
	if err := yaml.Unmarshal(parts[0], &meta); err != nil {
		return fmt.Errorf("failed to parse front matter: %w", err)
	}

	if t := strings.TrimSpace(meta.Title); t != "" {
		doc.Title = t
	}
	doc.Tags = nodeTags(&meta.Tags)

	body := parts[1]
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = nil
	}
	doc.Text = string(body)
	return nil
}

// nodeTags accepts tags as a YAML sequence or a comma-separated string.
func nodeTags(n *yaml.Node) []string {
	var raw []string
	switch n.Kind {
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if item.Kind == yaml.ScalarNode {
				raw = append(raw, item.Value)
			}
		}
	case yaml.ScalarNode:
		raw = strings.Split(n.Value, ",")
	}

	var tags []string
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func titleFromName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

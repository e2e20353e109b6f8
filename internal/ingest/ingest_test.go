package ingest

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	interrors "github.com/streed/smart-notes/internal/errors"
)

func TestExtractPlainText(t *testing.T) {
	doc, err := ExtractFile("lecture.txt", strings.NewReader("  Photosynthesis converts light.\n"))
	require.NoError(t, err)
	assert.Equal(t, "lecture", doc.Title)
	assert.Equal(t, "Photosynthesis converts light.", doc.Text)
	assert.Empty(t, doc.Tags)
}

func TestExtractMarkdownFrontMatter(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantTitle string
		wantTags  []string
		wantText  string
	}{
		{
			name:      "no front matter",
			input:     "# Heading\n\nBody text.",
			wantTitle: "notes",
			wantText:  "# Heading\n\nBody text.",
		},
		{
			name:      "title and tag list",
			input:     "---\ntitle: Cell Biology\ntags: [biology, cells]\n---\nMitochondria make energy.\n",
			wantTitle: "Cell Biology",
			wantTags:  []string{"biology", "cells"},
			wantText:  "Mitochondria make energy.",
		},
		{
			name:      "comma separated tags",
			input:     "---\ntags: \"go, concurrency, \"\n---\nChannels.",
			wantTitle: "notes",
			wantTags:  []string{"go", "concurrency"},
			wantText:  "Channels.",
		},
		{
			name:      "crlf delimiters",
			input:     "---\r\ntitle: Windows\r\n---\r\nLine endings.",
			wantTitle: "Windows",
			wantText:  "Line endings.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ExtractFile("notes.md", strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, doc.Title)
			assert.Equal(t, tt.wantTags, doc.Tags)
			assert.Equal(t, tt.wantText, doc.Text)
		})
	}
}

func TestExtractMarkdownUnclosedFrontMatter(t *testing.T) {
	_, err := ExtractFile("broken.md", strings.NewReader("---\ntitle: x\nbody"))
	assert.Error(t, err)
}

func TestExtractRejectsUnsupportedTypes(t *testing.T) {
	for _, name := range []string{"scan.png", "photo.JPG", "sheet.xlsx", "noext"} {
		_, err := ExtractFile(name, strings.NewReader("data"))
		assert.ErrorIs(t, err, interrors.ErrUnsupportedFileType, name)
	}
}

func TestExtractEmptyText(t *testing.T) {
	_, err := ExtractFile("blank.txt", strings.NewReader(" \n\t "))
	assert.ErrorIs(t, err, interrors.ErrNoTextExtracted)

	_, err = ExtractFile("only-meta.md", strings.NewReader("---\ntitle: x\n---\n"))
	assert.ErrorIs(t, err, interrors.ErrNoTextExtracted)
}

func TestExtractInvalidPDF(t *testing.T) {
	_, err := ExtractFile("paper.pdf", strings.NewReader("this is not a pdf"))
	assert.Error(t, err)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestImportDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "First note.")
	writeFile(t, filepath.Join(root, "nested", "deep", "b.md"), "---\ntitle: Second\n---\nSecond body.")
	writeFile(t, filepath.Join(root, "nested", "empty.txt"), "   ")
	writeFile(t, filepath.Join(root, "image.png"), "binary")

	docs, err := ImportDir(root, "")
	require.NoError(t, err)

	titles := make([]string, len(docs))
	for i, d := range docs {
		titles[i] = d.Title
		assert.True(t, filepath.IsAbs(d.Path) || strings.HasPrefix(d.Path, root))
	}
	sort.Strings(titles)
	assert.Equal(t, []string{"Second", "a"}, titles)

	docs, err = ImportDir(root, "nested/**/*.md")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Second body.", docs[0].Text)
}

func TestImportDirInvalidPattern(t *testing.T) {
	_, err := ImportDir(t.TempDir(), "[unclosed")
	assert.Error(t, err)
}

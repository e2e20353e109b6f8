package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestSplitTags(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"biology, cells", []string{"biology", "cells"}},
		{" a ,, b ,", []string{"a", "b"}},
		{"", nil},
		{" , ", nil},
	}

	for _, tt := range tests {
		if got := splitTags(tt.input); !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("splitTags(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got, want := expandPath("~/notes"), filepath.Join(home, "notes"); got != want {
		t.Errorf("expandPath(~/notes) = %q, want %q", got, want)
	}
	if got := expandPath("relative/dir"); !filepath.IsAbs(got) {
		t.Errorf("expandPath(relative/dir) = %q, want an absolute path", got)
	}
}

func TestFormatTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{"just now", now.Add(-10 * time.Second), "just now"},
		{"one minute", now.Add(-90 * time.Second), "1 minute ago"},
		{"minutes", now.Add(-5 * time.Minute), "5 minutes ago"},
		{"hours", now.Add(-3 * time.Hour), "3 hours ago"},
		{"one day", now.Add(-25 * time.Hour), "1 day ago"},
		{"old", time.Date(2020, 1, 2, 15, 4, 0, 0, time.Local), "2020-01-02 15:04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatTime(tt.input); got != tt.expected {
				t.Errorf("formatTime() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCompression(t *testing.T) {
	if got := compression(200, 50); got != 75 {
		t.Errorf("compression(200, 50) = %v, want 75", got)
	}
	if got := compression(0, 0); got != 0 {
		t.Errorf("compression(0, 0) = %v, want 0", got)
	}
}

func TestReadInput(t *testing.T) {
	in, err := readInput([]string{"hello", "world"}, "", nil)
	if err != nil {
		t.Fatalf("readInput(args) error = %v", err)
	}
	if in.Text != "hello world" {
		t.Errorf("readInput(args).Text = %q, want %q", in.Text, "hello world")
	}

	in, err = readInput([]string{"-"}, "", strings.NewReader("from stdin"))
	if err != nil {
		t.Fatalf("readInput(-) error = %v", err)
	}
	if in.Text != "from stdin" {
		t.Errorf("readInput(-).Text = %q, want %q", in.Text, "from stdin")
	}

	path := filepath.Join(t.TempDir(), "lecture-notes.md")
	content := "---\ntitle: Lecture 3\ntags: [cells]\n---\nMitochondria."
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	in, err = readInput(nil, path, nil)
	if err != nil {
		t.Fatalf("readInput(file) error = %v", err)
	}
	if in.Title != "Lecture 3" || in.Text != "Mitochondria." {
		t.Errorf("readInput(file) = %+v, want title %q and text %q", in, "Lecture 3", "Mitochondria.")
	}
	if !reflect.DeepEqual(in.Tags, []string{"cells"}) {
		t.Errorf("readInput(file).Tags = %q, want [cells]", in.Tags)
	}

	if _, err := readInput([]string{"  "}, "", nil); err == nil {
		t.Error("readInput(blank) expected an error")
	}
}

func TestSkipsInitialization(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{nil, true},
		{[]string{"init"}, true},
		{[]string{"config", "show"}, true},
		{[]string{"--debug", "config", "show"}, true},
		{[]string{"--debug", "init"}, true},
		{[]string{"search", "go"}, false},
		{[]string{"--debug", "serve"}, false},
		{[]string{"flashcards", "list"}, false},
		{[]string{"migrate", "status"}, false},
	}

	for _, tt := range tests {
		found, _, err := rootCmd.Find(tt.args)
		if err != nil {
			t.Fatalf("Find(%q) error = %v", tt.args, err)
		}
		if got := skipsInitialization(found); got != tt.want {
			t.Errorf("skipsInitialization(%s) = %v, want %v", found.CommandPath(), got, tt.want)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"add", "analyze", "cache", "config", "delete", "flashcards", "get", "import",
		"init", "list", "mcp", "migrate", "process", "search", "serve", "summarize", "tag"}

	registered := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range want {
		if !registered[name] {
			t.Errorf("command %q is not registered", name)
		}
	}
}

package models

import (
	"reflect"
	"testing"
)

func TestNotePreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		n       int
		want    string
	}{
		{"short content", "Hello world", 20, "Hello world"},
		{"collapses whitespace", "Hello\n\n  world", 20, "Hello world"},
		{"truncates by rune", "naïve café au lait", 9, "naïve caf..."},
		{"exact length", "abcde", 5, "abcde"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note := &Note{Content: tt.content}
			if got := note.Preview(tt.n); got != tt.want {
				t.Errorf("Preview(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{nil, []string{}},
		{[]string{"ML", "ml", "ML"}, []string{"ML", "ml"}},
		{[]string{"  deep learning ", "", "   "}, []string{"deep learning"}},
	}

	for _, tt := range tests {
		if got := normalizeTags(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("normalizeTags(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTagEncoding(t *testing.T) {
	encoded, err := encodeTags(nil)
	if err != nil || encoded != "[]" {
		t.Errorf("encodeTags(nil) = %q, %v", encoded, err)
	}

	decoded, err := decodeTags(`["a","b"]`)
	if err != nil || !reflect.DeepEqual(decoded, []string{"a", "b"}) {
		t.Errorf("decodeTags = %v, %v", decoded, err)
	}

	if _, err := decodeTags("not json"); err == nil {
		t.Error("Expected error for invalid tag column")
	}
}

// Package textproc splits free text into sentences and word tokens for the
// extractive summarizer and the frequency tagger.
package textproc

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/streed/smart-notes/internal/constants"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// Sentences splits text after '.', '!' or '?' when followed by whitespace.
// The whitespace run is the boundary and is dropped; terminal punctuation
// stays with its sentence. Text ending in punctuation plus whitespace yields
// a trailing empty sentence.
func Sentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text); {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			i++
			continue
		}
		j := i + 1
		for j < len(text) {
			r, size := utf8.DecodeRuneInString(text[j:])
			if !unicode.IsSpace(r) {
				break
			}
			j += size
		}
		if j == i+1 {
			i++
			continue
		}
		sentences = append(sentences, text[start:i+1])
		start = j
		i = j
	}
	return append(sentences, text[start:])
}

// Words strips <...> markup, lowercases the text and returns every word made
// only of ASCII letters that is at least MinTagTokenLength long. A word is a
// maximal run of letters, digits and underscores, so "abc1" or "data_set"
// contribute nothing.
func Words(text string) []string {
	text = strings.ToLower(htmlTagPattern.ReplaceAllString(text, ""))
	fields := strings.FieldsFunc(text, func(r rune) bool { return !isWordRune(r) })

	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= constants.MinTagTokenLength && isASCIILetters(f) {
			words = append(words, f)
		}
	}
	return words
}

// ContentWords returns Words(text) without stopwords.
func ContentWords(text string) []string {
	words := Words(text)
	filtered := words[:0]
	for _, w := range words {
		if !IsStopword(w) {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

// IsStopword reports whether token is in the fixed English stopword set.
// Tokens are expected in lower case.
func IsStopword(token string) bool {
	_, ok := stopWords[token]
	return ok
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func isASCIILetters(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// Truncate returns the first n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Length returns the number of runes in s.
func Length(s string) int {
	return utf8.RuneCountInString(s)
}

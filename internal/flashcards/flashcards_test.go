package flashcards

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	interrors "github.com/streed/smart-notes/internal/errors"
	"github.com/streed/smart-notes/internal/provider"
	"github.com/streed/smart-notes/internal/provider/mock"
)

const biologyText = "Photosynthesis: the process plants use to make food. It needs light.\n\n" +
	"Mitochondria are the powerhouse of the cell. They make ATP.\n\n" +
	"Short.\n\n" +
	"Enzymes act fast. Very fast."

const providerCards = "Q: What is Go?\nA: A programming language.\n---\n" +
	"Q: Why?\nA: Because it is simple.\n---\n" +
	"nonsense\n---\n" +
	"Q: What are goroutines?\nA: Lightweight threads."

func TestRuleBased(t *testing.T) {
	tags := []string{"Biology"}
	cards := RuleBased(biologyText, tags)

	want := []Card{
		{Question: "What is Photosynthesis?", Answer: "the process plants use to make food. It needs light.", Tags: tags},
		{Question: "What is Mitochondria are the?", Answer: "Mitochondria are the powerhouse of the cell. They make ATP.", Tags: tags},
		{Question: "Explain: Enzymes act fast", Answer: "Very fast.", Tags: tags},
	}
	assert.Equal(t, want, cards)
}

func TestRuleBasedSingleSentence(t *testing.T) {
	cards := RuleBased("A single line without a sentence break here", nil)
	require.Len(t, cards, 1)
	assert.Equal(t, "What is described by: 'A single line without a senten...'?", cards[0].Question)
	assert.Equal(t, "A single line without a sentence break here", cards[0].Answer)
}

func TestRuleBasedFallsBackToLines(t *testing.T) {
	cards := RuleBased("First line is long enough\nSecond line is long enough too", nil)
	assert.Len(t, cards, 2)
}

func TestRuleBasedLimitsParagraphs(t *testing.T) {
	paragraphs := make([]string, 7)
	for i := range paragraphs {
		paragraphs[i] = "A paragraph with enough text in it"
	}
	cards := RuleBased(strings.Join(paragraphs, "\n\n"), nil)
	assert.Len(t, cards, 5)
}

func TestParseCards(t *testing.T) {
	tags := []string{"Go"}
	cards := ParseCards(providerCards, tags)

	assert.Equal(t, []Card{
		{Question: "What is Go?", Answer: "A programming language.", Tags: tags},
		{Question: "What are goroutines?", Answer: "Lightweight threads.", Tags: tags},
	}, cards)

	assert.Empty(t, ParseCards("no cards here", nil))
}

func TestChunk(t *testing.T) {
	assert.Equal(t, []string{"short text"}, Chunk("short text"))

	p1 := strings.Repeat("a", 900)
	p2 := strings.Repeat("b", 900)
	p3 := strings.Repeat("c", 900)
	chunks := Chunk(p1 + "\n\n" + p2 + "\n\n\n\n" + p3)
	assert.Equal(t, []string{p1 + "\n\n" + p2, p3}, chunks)
}

func TestGenerateWithProvider(t *testing.T) {
	p := mock.NewProvider("test-model").Returning(providerCards)
	g := NewGenerator(p, 0)

	result, err := g.Generate(context.Background(), "Go is a language with goroutines.", "Go", "")
	require.NoError(t, err)
	assert.Equal(t, "test-model", result.ModelUsed)
	require.Len(t, result.Cards, 2)
	assert.Equal(t, []string{"Go"}, result.Cards[0].Tags)
	assert.Equal(t, 1, p.CallCount())
	assert.Contains(t, p.Prompts()[0], "Go is a language with goroutines.")

	result, err = g.Generate(context.Background(), "Go is a language.", "", "hinted-model")
	require.NoError(t, err)
	assert.Equal(t, "hinted-model", result.ModelUsed)
	assert.Equal(t, []string{}, result.Cards[0].Tags)
}

func TestGenerateQueriesEachChunk(t *testing.T) {
	p := mock.NewProvider("test-model").Returning(providerCards)
	g := NewGenerator(p, 0)

	text := strings.Repeat("x", 1500) + "\n\n" + strings.Repeat("y", 1500)
	result, err := g.Generate(context.Background(), text, "", "")
	require.NoError(t, err)
	assert.Equal(t, 2, p.CallCount())
	assert.Len(t, result.Cards, 4)
}

func TestGenerateFallsBack(t *testing.T) {
	tests := []struct {
		name     string
		provider provider.Provider
	}{
		{"provider failure", mock.NewProvider("m").Failing(provider.TransportFailure("mock", errors.New("down")))},
		{"unparseable response", mock.NewProvider("m").Returning("I cannot help with that.")},
		{"no provider", nil},
		{"disabled provider", provider.Disabled()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(tt.provider, 0)
			result, err := g.Generate(context.Background(), biologyText, "Biology", "hint")
			require.NoError(t, err)
			assert.Equal(t, ModelRuleBased, result.ModelUsed)
			assert.Equal(t, RuleBased(biologyText, []string{"Biology"}), result.Cards)
		})
	}
}

func TestGenerateNoQualifyingParagraphs(t *testing.T) {
	g := NewGenerator(nil, 0)
	result, err := g.Generate(context.Background(), "Tiny.\n\nSmall.", "", "")
	require.NoError(t, err)
	assert.Equal(t, ModelRuleBased, result.ModelUsed)
	assert.NotNil(t, result.Cards)
	assert.Empty(t, result.Cards)
}

func TestGenerateProviderPanicFallsBackToRules(t *testing.T) {
	p := mock.NewProvider("m").WithQueryFunc(func(context.Context, string, string) (string, error) {
		panic("boom")
	})
	result, err := NewGenerator(p, 0).Generate(context.Background(), biologyText, "", "")
	require.NoError(t, err)
	assert.Equal(t, ModelRuleBased, result.ModelUsed)
	assert.Equal(t, RuleBased(biologyText, []string{}), result.Cards)
}

func TestGenerateRuleBasedPanic(t *testing.T) {
	ruleBased = func(string, []string) []Card { panic("rules failed") }
	t.Cleanup(func() { ruleBased = RuleBased })

	result, err := NewGenerator(nil, 0).Generate(context.Background(), biologyText, "", "")
	require.NoError(t, err)
	assert.Equal(t, ModelFallback, result.ModelUsed)
	assert.NotNil(t, result.Cards)
	assert.Empty(t, result.Cards)
}

func TestGenerateEmptyInput(t *testing.T) {
	_, err := NewGenerator(nil, 0).Generate(context.Background(), "  \n ", "", "")
	assert.ErrorIs(t, err, interrors.ErrEmptyContent)
}

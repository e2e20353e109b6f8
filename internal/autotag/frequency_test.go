package autotag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/streed/smart-notes/internal/textproc"
)

const databaseParagraph = "The database stores rows. Birds sing loudly. Our database grows daily. " +
	"Rain falls softly. Kids play games. This database never sleeps. Winds blow north. " +
	"Ships sail east. Lamps glow warm. Every database needs backups. Trees sway gently. Clocks tick on."

func TestExtractTags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "repeated word in twelve sentences is kept",
			text: databaseParagraph,
			want: []string{"database", "stores", "rows", "birds", "sing"},
		},
		{
			name: "frequent words ordered by count then first seen",
			text: "Go channels and go routines. Channels pass values. Routines read values. Values matter.",
			want: []string{"values", "channels", "routines"},
		},
		{
			name: "at most eight frequent words",
			text: strings.Repeat("apple banana cherry damson elder figgy grape hazel iris juniper ", 2),
			want: []string{"apple", "banana", "cherry", "damson", "elder", "figgy", "grape", "hazel"},
		},
		{
			name: "relaxed when fewer than three repeat",
			text: "Kubernetes deploys containers.",
			want: []string{"kubernetes", "deploys", "containers"},
		},
		{
			name: "placeholder when nothing survives",
			text: "It is what it is.",
			want: []string{"note", "smart", "organizer"},
		},
		{
			name: "markup is ignored",
			text: "<div class=\"wrapper\">Tokens tokens</div> and <span>more tokens</span>",
			want: []string{"tokens"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTags(tt.text)
			assert.Equal(t, tt.want, got.Tags)
			assert.Equal(t, ModelRuleBased, got.ModelUsed)
		})
	}
}

func TestExtractTagsDrawsOnlyFromContentWords(t *testing.T) {
	texts := []string{
		databaseParagraph,
		"Their network would rather route packets through these nodes than those.",
		"A b c. Dd ee ff. Should would could.",
	}
	for _, text := range texts {
		got := ExtractTags(text)
		assert.NotEmpty(t, got.Tags)
		if got.Tags[0] == "note" {
			continue
		}
		for _, tag := range got.Tags {
			assert.GreaterOrEqual(t, len(tag), 4, tag)
			assert.False(t, textproc.IsStopword(tag), tag)
		}
	}
}

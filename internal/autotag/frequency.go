package autotag

import (
	"sort"

	"github.com/streed/smart-notes/internal/constants"
	"github.com/streed/smart-notes/internal/textproc"
)

// ModelRuleBased is the provenance of tags produced by ExtractTags.
const ModelRuleBased = "rule-based-tags"

// TagResult is a non-empty ordered tag list and the method that produced it.
type TagResult struct {
	Tags      []string `json:"tags"`
	ModelUsed string   `json:"model_used"`
}

type termCount struct {
	term  string
	count int
}

// ExtractTags ranks content words by frequency. Up to MaxFrequentTags words
// seen more than once are returned, most frequent first and ties in
// first-seen order. When fewer than MinFrequentTags repeat, the top
// RelaxedTagCount words are returned regardless of count. Text without any
// content words yields the placeholder tags.
func ExtractTags(text string) TagResult {
	ranked := rankTerms(textproc.ContentWords(text))

	tags := make([]string, 0, constants.MaxFrequentTags)
	for _, tc := range ranked {
		if len(tags) == constants.MaxFrequentTags || tc.count <= 1 {
			break
		}
		tags = append(tags, tc.term)
	}

	if len(tags) < constants.MinFrequentTags {
		tags = tags[:0]
		for i := 0; i < len(ranked) && i < constants.RelaxedTagCount; i++ {
			tags = append(tags, ranked[i].term)
		}
	}

	if len(tags) == 0 {
		tags = append(tags, constants.PlaceholderTags...)
	}
	return TagResult{Tags: tags, ModelUsed: ModelRuleBased}
}

// rankTerms counts words and orders them by descending count, keeping
// first-seen order among equal counts.
func rankTerms(words []string) []termCount {
	index := make(map[string]int, len(words))
	var counts []termCount
	for _, w := range words {
		if i, ok := index[w]; ok {
			counts[i].count++
			continue
		}
		index[w] = len(counts)
		counts = append(counts, termCount{term: w, count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].count > counts[j].count
	})
	return counts
}

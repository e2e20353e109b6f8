package constants

// Boolean string values
const (
	BoolTrue  = "true"
	BoolFalse = "false"
	BoolYes   = "yes"
	BoolNo    = "no"
	BoolOne   = "1"
	BoolZero  = "0"
)

// Summarization limits
const (
	// Texts shorter than this many runes are returned as their own summary.
	DirectTextThreshold = 100
	// Prefix of the input sent to the provider for summaries.
	SummaryPromptChars = 4000
	// Sentence count at or below which the extractive path returns the text unchanged.
	ShortTextSentences = 3
	// Sentence count above which early sentences are sampled.
	LongTextSentences = 10
	SampleStride      = 3
	MaxSummaryChars   = 500
	Ellipsis          = "..."
	// Length of the raw-text summary used when extraction itself faults.
	EmergencySummaryChars = 200
	// Per-note excerpt length in multi-note summaries.
	NoteExcerptChars = 1000
)

// Tagging limits
const (
	TagPromptChars    = 3000
	MaxFrequentTags   = 8
	MinFrequentTags   = 3
	RelaxedTagCount   = 5
	MinTagTokenLength = 4
)

// PlaceholderTags is returned when no tag can be derived from the text.
var PlaceholderTags = []string{"note", "smart", "organizer"}

// Flashcard generation
const (
	FlashcardChunkChars   = 2000
	FlashcardParagraphs   = 5
	MinParagraphChars     = 10
	MinCardFieldChars     = 5
	DescribedPrefixChars  = 30
	ChatbotFlashcardTags  = 2
	DefaultKeyConceptText = "See content for details"
)

// Display limits
const (
	DefaultSearchLimit  = 10
	DefaultListLimit    = 20
	PreviewLength       = 100
	SearchPreviewLength = 150
	ShortPreviewLength  = 80
)

// File permissions
const (
	ConfigFileMode = 0600 // Secure file permissions for config
)

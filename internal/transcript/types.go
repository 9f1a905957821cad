// Package transcript converts raw extracted document text into ordered,
// speaker-attributed utterance blocks and normalized turns.
package transcript

// Speaker identifies who produced an utterance.
type Speaker string

const (
	SpeakerLearner Speaker = "learner"
	SpeakerBot     Speaker = "bot"
)

// Strategy identifies which segmentation strategy produced a block.
type Strategy string

const (
	StrategyLabels      Strategy = "labels"
	StrategyColors      Strategy = "colors"
	StrategyAlternation Strategy = "alternation"
)

// ColorRun is a contiguous span of text rendered in one color, as reported
// by the extraction collaborator.
type ColorRun struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

// RawDocument is the extraction collaborator's output for one source
// document. The engine treats it as read-only.
type RawDocument struct {
	Text       string
	Runs       []ColorRun // optional per-run color metadata
	SourcePath string
	Locale     string // locale hint for speaker label patterns; empty means "try all"
}

// UtteranceBlock is a contiguous text span carved out of a RawDocument by
// exactly one segmentation strategy. Blocks are derived once per document
// and not mutated afterwards except for role assignment by the classifier.
type UtteranceBlock struct {
	Text     string
	Strategy Strategy
	Speaker  Speaker // fixed by the label strategy; assigned later otherwise
	Cue      string  // matched speaker cue (label strategy only)
	Color    string  // originating color (color strategy only)
	Index    int     // position in the document's block sequence

	// Header marks structural lines (task markers, week headings) that are
	// not dialogue. Header blocks never become turns; the boundary detector
	// reads them to split the sequence into tasks.
	Header bool

	// LowConfidence is set by the classifier when the role assignment could
	// not be grounded in enough evidence.
	LowConfidence bool
}

// Turn is one speaker's utterance with its sequence position within a task.
// Immutable after normalization.
type Turn struct {
	Number        int      `json:"turn"`
	Speaker       Speaker  `json:"speaker"`
	Text          string   `json:"text"`
	Strategy      Strategy `json:"-"`
	LowConfidence bool     `json:"low_confidence,omitempty"`
}

package transcript

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
)

// ErrUnclassified is returned when no segmentation strategy produced an
// acceptable block sequence. Such documents are flagged for manual review
// rather than guessed at.
var ErrUnclassified = fmt.Errorf("no segmentation strategy accepted")

var (
	errNoCues      = errors.New("no speaker cues matched")
	errNoColorData = errors.New("no color metadata available")
)

// SegmentOptions tunes the segmentation heuristics.
type SegmentOptions struct {
	// ContinuationMaxLen is the length threshold below which a line that does
	// not begin with an uppercase letter is merged into the previous block.
	ContinuationMaxLen int
	// MinBlockLen discards shorter letterless blocks as layout noise.
	MinBlockLen int
	// AlternationWindow is how many leading blocks are inspected for a role
	// change when deciding whether to accept a strategy's output.
	AlternationWindow int
}

func (o SegmentOptions) withDefaults() SegmentOptions {
	if o.ContinuationMaxLen <= 0 {
		o.ContinuationMaxLen = 40
	}
	if o.MinBlockLen <= 0 {
		o.MinBlockLen = 6
	}
	if o.AlternationWindow <= 0 {
		o.AlternationWindow = 4
	}
	return o
}

// strategy produces candidate utterance blocks for one document. Strategies
// are tried in priority order; a strategy error means "cannot apply here" and
// falls through to the next one.
type strategy interface {
	Name() Strategy
	Segment(doc *RawDocument) ([]UtteranceBlock, error)
}

// Segmenter converts a RawDocument into ordered utterance blocks by trying
// segmentation strategies in priority order: explicit labels, color runs,
// blank-line alternation.
type Segmenter struct {
	registry *Registry
	opts     SegmentOptions
	log      *logrus.Entry
}

// NewSegmenter creates a segmenter backed by the given label registry.
func NewSegmenter(registry *Registry, opts SegmentOptions) *Segmenter {
	return &Segmenter{
		registry: registry,
		opts:     opts.withDefaults(),
		log:      logrus.WithField("component", "segmenter"),
	}
}

// Segment runs the strategy trial for one document. Exactly one strategy is
// selected; its tag is returned alongside the blocks. A document that has a
// locale hint with no registered pattern fails immediately with ErrNoPattern —
// a misconfigured locale must never degrade into a guessed parse.
func (s *Segmenter) Segment(doc *RawDocument) ([]UtteranceBlock, Strategy, error) {
	strategies := []strategy{
		labelStrategy{registry: s.registry},
		colorStrategy{opts: s.opts},
		lineStrategy{opts: s.opts, log: s.log},
	}

	for _, st := range strategies {
		blocks, err := st.Segment(doc)
		if err != nil {
			if errors.Is(err, ErrNoPattern) {
				return nil, "", err
			}
			s.log.WithFields(logrus.Fields{
				"source":   doc.SourcePath,
				"strategy": st.Name(),
			}).WithError(err).Debug("strategy not applicable")
			continue
		}
		if accepted(blocks, s.opts.AlternationWindow) {
			renumber(blocks)
			s.log.WithFields(logrus.Fields{
				"source":   doc.SourcePath,
				"strategy": st.Name(),
				"blocks":   len(blocks),
			}).Debug("strategy accepted")
			return blocks, st.Name(), nil
		}
		s.log.WithFields(logrus.Fields{
			"source":   doc.SourcePath,
			"strategy": st.Name(),
			"blocks":   len(blocks),
		}).Debug("strategy rejected: no plausible role alternation")
	}

	return nil, "", fmt.Errorf("%w: %s", ErrUnclassified, doc.SourcePath)
}

// accepted reports whether a strategy's output shows plausible dialogue
// structure: at least two dialogue blocks and a role change within the
// leading window. Alternation-strategy blocks alternate by construction.
func accepted(blocks []UtteranceBlock, window int) bool {
	var dialogue []UtteranceBlock
	for _, b := range blocks {
		if !b.Header {
			dialogue = append(dialogue, b)
		}
	}
	if len(dialogue) < 2 {
		return false
	}

	// Roles for label blocks are carried on Speaker, for color blocks on
	// Color. Blocks with neither get their roles assigned by index parity
	// later, which alternates by definition.
	key := func(b UtteranceBlock) string {
		if b.Speaker != "" {
			return string(b.Speaker)
		}
		return b.Color
	}
	if key(dialogue[0]) == "" {
		return true
	}

	if window > len(dialogue) {
		window = len(dialogue)
	}
	for i := 1; i < window; i++ {
		if key(dialogue[i]) != key(dialogue[i-1]) {
			return true
		}
	}
	return false
}

func renumber(blocks []UtteranceBlock) {
	for i := range blocks {
		blocks[i].Index = i
	}
}

// headerPattern matches structural section lines: week headings and task
// markers. The boundary detector applies the authoritative marker grammar;
// this looser check only keeps such lines out of dialogue blocks.
var headerPattern = regexp.MustCompile(`(?i)^\s*(?:week\s*\d+|(?:task|taks|tasks|tarefa|exercise|exerc\x{ed}cio|activity|atividade)\s*\d*\s*[:：.])`)

// headerLine reports whether a trimmed line is a structural header rather
// than dialogue content.
func headerLine(line string) bool {
	if headerPattern.MatchString(line) {
		return true
	}
	// Short all-caps lines are section titles in the source documents.
	if len(line) < 50 && line == strings.ToUpper(line) && containsLetter(line) {
		return true
	}
	return false
}

func containsLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

// splitSpan appends blocks for one strategy-produced text span. Structural
// header lines become their own Header blocks, in encounter order, so the
// boundary detector can see task markers regardless of which strategy ran.
// A span carrying a speaker is dialogue by construction (its cue was
// consumed to produce it), so only the marker grammar applies there; the
// all-caps title rule would otherwise swallow a shouted reply.
func splitSpan(blocks []UtteranceBlock, span string, proto UtteranceBlock) []UtteranceBlock {
	isHeader := headerLine
	if proto.Speaker != "" {
		isHeader = headerPattern.MatchString
	}
	var body []string
	flush := func() {
		text := strings.TrimSpace(strings.Join(body, "\n"))
		body = body[:0]
		if text == "" {
			return
		}
		b := proto
		b.Text = text
		blocks = append(blocks, b)
	}

	for _, line := range strings.Split(span, "\n") {
		t := strings.TrimSpace(line)
		if t == "" {
			body = append(body, "")
			continue
		}
		if isHeader(t) {
			flush()
			blocks = append(blocks, UtteranceBlock{
				Text:     t,
				Strategy: proto.Strategy,
				Header:   true,
			})
			continue
		}
		body = append(body, t)
	}
	flush()
	return blocks
}

package transcript

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// lineStrategy is the last-resort segmentation for documents with no cues and
// no color metadata: blank-line-separated paragraphs become blocks, with
// short lowercase-start lines treated as continuations of the previous block
// rather than new utterances. Roles alternate starting at learner for the
// first block; the classifier applies that parity.
type lineStrategy struct {
	opts SegmentOptions
	log  *logrus.Entry
}

func (lineStrategy) Name() Strategy { return StrategyAlternation }

func (s lineStrategy) Segment(doc *RawDocument) ([]UtteranceBlock, error) {
	var blocks []UtteranceBlock
	var cur []string
	flush := func() {
		text := strings.TrimSpace(strings.Join(cur, " "))
		cur = cur[:0]
		if text == "" {
			return
		}
		// Only letterless fragments (stray punctuation, page artifacts) are
		// noise. A short real utterance like "Hello" is still a turn, and
		// dropping it would shift role parity for everything after it.
		if utf8.RuneCountInString(text) < s.opts.MinBlockLen && !containsLetter(text) {
			s.log.WithFields(logrus.Fields{
				"source": doc.SourcePath,
				"text":   text,
			}).Debug("dropping letterless fragment")
			return
		}
		blocks = append(blocks, UtteranceBlock{Text: text, Strategy: StrategyAlternation})
	}

	sawBreak := false
	for _, line := range strings.Split(doc.Text, "\n") {
		t := strings.TrimSpace(line)
		if t == "" {
			sawBreak = true
			continue
		}
		if headerLine(t) {
			flush()
			blocks = append(blocks, UtteranceBlock{Text: t, Strategy: StrategyAlternation, Header: true})
			sawBreak = false
			continue
		}
		switch {
		case len(cur) == 0:
			cur = append(cur, t)
		case sawBreak && !s.continuation(t):
			flush()
			cur = append(cur, t)
		default:
			cur = append(cur, t)
		}
		sawBreak = false
	}
	flush()
	return blocks, nil
}

// continuation reports whether a line that follows a blank-line break should
// still be merged into the previous block: it does not begin with an
// uppercase letter and is below the length threshold.
func (s lineStrategy) continuation(line string) bool {
	r, _ := utf8.DecodeRuneInString(line)
	if unicode.IsUpper(r) {
		return false
	}
	return utf8.RuneCountInString(line) < s.opts.ContinuationMaxLen
}

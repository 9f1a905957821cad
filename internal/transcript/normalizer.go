package transcript

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// timestampPattern matches clock-style tokens that chat exports embed in the
// text: 9:41, 09:41:07, 9:41 PM.
var timestampPattern = regexp.MustCompile(`\b\d{1,2}:\d{2}(?::\d{2})?(?:\s*(?:AM|PM))?\b`)

var whitespacePattern = regexp.MustCompile(`\s+`)

// Normalizer turns classified dialogue blocks into clean, sequentially
// numbered turns: timestamps stripped, whitespace collapsed, skip-keyword
// lines filtered, empty leftovers dropped.
type Normalizer struct {
	// skipKeywords mark lines belonging to unavailable sections of a
	// document. Only the matching lines are removed; the rest of the block
	// and its siblings survive.
	skipKeywords []string
	log          *logrus.Entry
}

// NewNormalizer creates a normalizer with the configured skip keywords.
func NewNormalizer(skipKeywords []string) *Normalizer {
	return &Normalizer{
		skipKeywords: skipKeywords,
		log:          logrus.WithField("component", "normalizer"),
	}
}

// Normalize converts one task's dialogue blocks into turns numbered 1..n.
// Blocks that end up empty after stripping are dropped and logged; turn
// numbers stay gap-free across drops.
func (n *Normalizer) Normalize(blocks []UtteranceBlock, source string) []Turn {
	var turns []Turn
	for _, b := range blocks {
		if b.Header {
			continue
		}
		text := n.filterSkipLines(b, source)
		text = CleanText(text)
		if text == "" {
			n.log.WithFields(logrus.Fields{
				"source": source,
				"block":  b.Index,
			}).Info("dropping block emptied by normalization")
			continue
		}
		turns = append(turns, Turn{
			Number:        len(turns) + 1,
			Speaker:       b.Speaker,
			Text:          text,
			Strategy:      b.Strategy,
			LowConfidence: b.LowConfidence,
		})
	}
	return turns
}

// filterSkipLines removes only the lines of a block that contain a skip
// keyword, preserving the remaining lines. Filtered lines are logged with
// their position so the omission is auditable.
func (n *Normalizer) filterSkipLines(b UtteranceBlock, source string) string {
	if len(n.skipKeywords) == 0 {
		return b.Text
	}
	lines := strings.Split(b.Text, "\n")
	kept := lines[:0]
	for i, line := range lines {
		if n.containsSkipKeyword(line) {
			n.log.WithFields(logrus.Fields{
				"source": source,
				"block":  b.Index,
				"line":   i + 1,
			}).Info("filtering unavailable-section line")
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func (n *Normalizer) containsSkipKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range n.skipKeywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// CleanText strips timestamp-like tokens, collapses whitespace runs, and
// trims the result.
func CleanText(text string) string {
	text = timestampPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

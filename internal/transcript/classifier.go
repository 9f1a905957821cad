package transcript

import (
	"github.com/sirupsen/logrus"
)

// Classifier assigns learner/bot roles to blocks the segmenter left
// unresolved. It never fails on ambiguity; weakly grounded assignments are
// flagged low-confidence so downstream consumers can gate automatic
// acceptance against manual review.
type Classifier struct {
	// colorRoles maps a color to its role for color-strategy documents.
	// When empty, the default convention assigns learner to the first color
	// seen and bot to every other color. The convention is a per-document-
	// family default, not a universal rule, so callers override it per run.
	colorRoles map[string]Speaker
	log        *logrus.Entry
}

// NewClassifier creates a classifier with the given color-to-role policy.
// A nil policy enables the default first-color-is-learner convention.
func NewClassifier(colorRoles map[string]Speaker) *Classifier {
	return &Classifier{
		colorRoles: colorRoles,
		log:        logrus.WithField("component", "classifier"),
	}
}

// Classify resolves the speaker for every dialogue block in place and
// returns the updated sequence. Label-strategy blocks already carry their
// role and are left untouched.
func (c *Classifier) Classify(blocks []UtteranceBlock) []UtteranceBlock {
	dialogueIdx := 0
	policy := c.colorRoles
	lowConfidence := false

	if len(policy) == 0 {
		policy, lowConfidence = c.defaultColorPolicy(blocks)
	}

	for i := range blocks {
		b := &blocks[i]
		if b.Header {
			continue
		}
		switch b.Strategy {
		case StrategyLabels:
			// Role fixed by the matched cue.
		case StrategyColors:
			role, ok := policy[b.Color]
			if !ok {
				role = SpeakerBot
				b.LowConfidence = true
				c.log.WithField("color", b.Color).Debug("color not covered by policy, defaulting to bot")
			}
			b.Speaker = role
			if lowConfidence {
				b.LowConfidence = true
			}
		case StrategyAlternation:
			if dialogueIdx%2 == 0 {
				b.Speaker = SpeakerLearner
			} else {
				b.Speaker = SpeakerBot
			}
		}
		dialogueIdx++
	}
	return blocks
}

// defaultColorPolicy derives the first-color-is-learner convention from the
// document itself. Fewer than two distinct colors or fewer than three
// dialogue blocks is too little evidence, so the resulting assignments are
// flagged low-confidence rather than rejected.
func (c *Classifier) defaultColorPolicy(blocks []UtteranceBlock) (map[string]Speaker, bool) {
	policy := make(map[string]Speaker)
	var order []string
	dialogueBlocks := 0
	for _, b := range blocks {
		if b.Header || b.Strategy != StrategyColors {
			continue
		}
		dialogueBlocks++
		if _, ok := policy[b.Color]; !ok {
			order = append(order, b.Color)
			if len(order) == 1 {
				policy[b.Color] = SpeakerLearner
			} else {
				policy[b.Color] = SpeakerBot
			}
		}
	}
	low := len(order) < 2 || dialogueBlocks < 3
	if low && dialogueBlocks > 0 {
		c.log.WithFields(logrus.Fields{
			"colors": len(order),
			"blocks": dialogueBlocks,
		}).Debug("insufficient evidence for color roles, flagging low confidence")
	}
	return policy, low
}

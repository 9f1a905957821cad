package transcript

import (
	"sort"
	"strings"
)

// labelStrategy segments a document by scanning for registered speaker cues.
// The cue fixes the role, is consumed, and the block runs to the next cue or
// end of document.
type labelStrategy struct {
	registry *Registry
}

func (labelStrategy) Name() Strategy { return StrategyLabels }

func (s labelStrategy) Segment(doc *RawDocument) ([]UtteranceBlock, error) {
	var patterns []LabelPattern
	if doc.Locale != "" {
		pat, err := s.registry.Lookup(doc.Locale)
		if err != nil {
			return nil, err
		}
		patterns = []LabelPattern{pat}
	} else {
		patterns = s.registry.All()
	}

	type cueMatch struct {
		start, end int
		speaker    Speaker
	}
	var matches []cueMatch
	for _, pat := range patterns {
		for _, loc := range pat.Learner.FindAllStringIndex(doc.Text, -1) {
			matches = append(matches, cueMatch{start: loc[0], end: loc[1], speaker: SpeakerLearner})
		}
		for _, loc := range pat.Bot.FindAllStringIndex(doc.Text, -1) {
			matches = append(matches, cueMatch{start: loc[0], end: loc[1], speaker: SpeakerBot})
		}
	}
	if len(matches) == 0 {
		return nil, errNoCues
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	// Drop matches nested inside an earlier one (a shorter cue can occur
	// within a longer registered cue).
	deduped := matches[:1]
	for _, m := range matches[1:] {
		if m.start < deduped[len(deduped)-1].end {
			continue
		}
		deduped = append(deduped, m)
	}
	matches = deduped

	var blocks []UtteranceBlock

	// Text before the first cue is not dialogue, but task markers in it
	// still matter for boundary detection.
	for _, line := range strings.Split(doc.Text[:matches[0].start], "\n") {
		if t := strings.TrimSpace(line); t != "" && headerLine(t) {
			blocks = append(blocks, UtteranceBlock{Text: t, Strategy: StrategyLabels, Header: true})
		}
	}

	for i, m := range matches {
		end := len(doc.Text)
		if i+1 < len(matches) {
			end = matches[i+1].start
		}
		blocks = splitSpan(blocks, doc.Text[m.end:end], UtteranceBlock{
			Strategy: StrategyLabels,
			Speaker:  m.speaker,
			Cue:      strings.TrimSpace(doc.Text[m.start:m.end]),
		})
	}
	return blocks, nil
}

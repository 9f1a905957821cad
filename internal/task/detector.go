// Package task splits an ordered utterance block sequence into per-task
// sub-dialogues using fuzzy boundary-marker detection.
package task

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/dialognorm/internal/transcript"
)

// markerPattern is the tolerant task-marker grammar: a case-insensitive
// marker token (including the "taks" typo and common Portuguese variants),
// an optional digit, and a half-width colon, full-width colon, or period
// separator.
var markerPattern = regexp.MustCompile(`(?i)^\s*(?:task|taks|tasks|tarefa|exercise|exerc\x{ed}cio|activity|atividade)\s*(\d+)?\s*[:：.]`)

// collapseDistance is the maximum block distance at which two adjacent
// markers are treated as one boundary.
const collapseDistance = 2

// Boundary records one matched task marker in the block sequence.
type Boundary struct {
	Marker      string // matched marker text
	TaskNumber  int    // 0 when the marker carries no digit
	Specificity int    // digit-bearing markers rank above bare ones
	Block       int    // index in the block sequence
}

// CountMismatch is the structured warning attached when the detected task
// count differs from the expected one. It never blocks the best-effort split.
type CountMismatch struct {
	Expected int
	Detected int
}

func (m *CountMismatch) String() string {
	if m.Detected < m.Expected {
		return fmt.Sprintf("fewer tasks detected than expected: %d < %d", m.Detected, m.Expected)
	}
	return fmt.Sprintf("more task markers detected than expected: %d > %d", m.Detected, m.Expected)
}

// Split is the detector's output: the task groups in order, the boundaries
// that produced them, and an optional count mismatch warning.
type Split struct {
	Groups     [][]transcript.UtteranceBlock
	Boundaries []Boundary
	Mismatch   *CountMismatch
}

// Detector partitions block sequences into an expected number of task groups.
type Detector struct {
	log *logrus.Entry
}

// NewDetector creates a boundary detector.
func NewDetector() *Detector {
	return &Detector{log: logrus.WithField("component", "boundary-detector")}
}

// MatchMarker applies the marker grammar to one line. The boolean is false
// when the line is not a task marker.
func MatchMarker(line string) (Boundary, bool) {
	m := markerPattern.FindStringSubmatch(line)
	if m == nil {
		return Boundary{}, false
	}
	b := Boundary{Marker: line}
	if m[1] != "" {
		b.TaskNumber, _ = strconv.Atoi(m[1])
		b.Specificity = 1
	}
	return b, true
}

// Detect splits the block sequence into expected task groups. When fewer
// markers are found than expected, the split is best-effort and a mismatch
// warning is attached; boundaries are never fabricated. When more are found,
// digit-bearing markers win over bare ones, then earlier positions win.
func (d *Detector) Detect(blocks []transcript.UtteranceBlock, expected int) Split {
	if expected < 1 {
		expected = 1
	}

	candidates := d.findCandidates(blocks)
	candidates = collapseAdjacent(candidates)

	var mismatch *CountMismatch
	switch {
	case len(candidates) > expected:
		mismatch = &CountMismatch{Expected: expected, Detected: len(candidates)}
		candidates = dropExcess(candidates, expected)
	case len(candidates) < expected && len(candidates) > 0:
		mismatch = &CountMismatch{Expected: expected, Detected: len(candidates)}
	case len(candidates) == 0 && expected > 1:
		mismatch = &CountMismatch{Expected: expected, Detected: 1}
	}

	groups := group(blocks, candidates)
	if mismatch != nil {
		d.log.WithFields(logrus.Fields{
			"expected": mismatch.Expected,
			"detected": mismatch.Detected,
		}).Warn(mismatch.String())
	}
	return Split{Groups: groups, Boundaries: candidates, Mismatch: mismatch}
}

// findCandidates scans header blocks for marker matches. Dialogue blocks are
// never split: segmentation already extracts structural lines into their own
// header blocks.
func (d *Detector) findCandidates(blocks []transcript.UtteranceBlock) []Boundary {
	var found []Boundary
	for i, b := range blocks {
		if !b.Header {
			continue
		}
		if m, ok := MatchMarker(b.Text); ok {
			m.Block = i
			found = append(found, m)
		}
	}
	return found
}

// collapseAdjacent merges markers within a short block distance, keeping the
// more specific one, then the earlier one.
func collapseAdjacent(boundaries []Boundary) []Boundary {
	if len(boundaries) < 2 {
		return boundaries
	}
	out := boundaries[:1]
	for _, b := range boundaries[1:] {
		last := &out[len(out)-1]
		if b.Block-last.Block <= collapseDistance {
			if b.Specificity > last.Specificity {
				*last = b
			}
			continue
		}
		out = append(out, b)
	}
	return out
}

// dropExcess reduces the boundary set to the expected count: keep by
// specificity descending, break ties by earliest position, then restore
// positional order.
func dropExcess(boundaries []Boundary, expected int) []Boundary {
	ranked := make([]Boundary, len(boundaries))
	copy(ranked, boundaries)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Specificity != ranked[j].Specificity {
			return ranked[i].Specificity > ranked[j].Specificity
		}
		return ranked[i].Block < ranked[j].Block
	})
	kept := ranked[:expected]
	sort.Slice(kept, func(i, j int) bool { return kept[i].Block < kept[j].Block })
	return kept
}

// group assigns dialogue blocks to tasks. Content before the first boundary
// belongs to the first task, matching how session documents lead into their
// first task without a marker.
func group(blocks []transcript.UtteranceBlock, boundaries []Boundary) [][]transcript.UtteranceBlock {
	boundaryAt := make(map[int]bool, len(boundaries))
	for _, b := range boundaries {
		boundaryAt[b.Block] = true
	}

	groups := [][]transcript.UtteranceBlock{}
	current := []transcript.UtteranceBlock{}
	seen := 0
	for i, b := range blocks {
		if boundaryAt[i] {
			if seen > 0 {
				groups = append(groups, current)
				current = []transcript.UtteranceBlock{}
			}
			seen++
			continue
		}
		if b.Header {
			continue
		}
		current = append(current, b)
	}
	groups = append(groups, current)
	return groups
}

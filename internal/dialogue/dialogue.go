// Package dialogue assembles normalized turns into persisted dialogue
// artifacts with validated metadata.
package dialogue

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/grovetools/dialognorm/internal/transcript"
)

// ErrMetadataMismatch is returned when computed dialogue identifiers disagree
// with the caller-declared expectation. Inconsistent metadata is never
// persisted.
var ErrMetadataMismatch = errors.New("dialogue metadata mismatch")

// Dialogue is the final artifact for one (student, week, task): an ordered,
// append-only record. Reprocessing regenerates it wholesale rather than
// mutating it in place.
type Dialogue struct {
	StudentID  int               `json:"student_id"`
	Week       int               `json:"week"`
	Task       int               `json:"task"`
	DialogueID string            `json:"dialogue_id"`
	Turns      []transcript.Turn `json:"turns"`
	SourceFile string            `json:"source_file,omitempty"`
}

// Expectation is the caller-declared identity for a dialogue, typically
// derived from the artifact file naming convention.
type Expectation struct {
	StudentID int
	Week      int
	Task      int
}

// ID computes the canonical dialogue identifier S{student}_W{week}_T{task}.
func ID(studentID, week, task int) string {
	return fmt.Sprintf("S%d_W%d_T%d", studentID, week, task)
}

// Assemble builds a Dialogue from normalized turns, re-validating the turn
// invariants before anything is persisted: numbers contiguous from 1, speaker
// restricted to the two roles, no empty text.
func Assemble(studentID, week, task int, turns []transcript.Turn, sourceFile string) (*Dialogue, error) {
	if len(turns) == 0 {
		return nil, fmt.Errorf("no turns for %s", ID(studentID, week, task))
	}
	for i, t := range turns {
		if t.Number != i+1 {
			return nil, fmt.Errorf("turn numbering broken at index %d: got %d, want %d", i, t.Number, i+1)
		}
		if t.Speaker != transcript.SpeakerLearner && t.Speaker != transcript.SpeakerBot {
			return nil, fmt.Errorf("turn %d has invalid speaker %q", t.Number, t.Speaker)
		}
		if t.Text == "" {
			return nil, fmt.Errorf("turn %d has empty text", t.Number)
		}
	}
	return &Dialogue{
		StudentID:  studentID,
		Week:       week,
		Task:       task,
		DialogueID: ID(studentID, week, task),
		Turns:      turns,
		SourceFile: sourceFile,
	}, nil
}

// Validate checks the dialogue's computed identity against a declared
// expectation. A mismatch is fatal for the document's output write.
func (d *Dialogue) Validate(exp Expectation) error {
	if d.StudentID != exp.StudentID || d.Week != exp.Week || d.Task != exp.Task {
		return fmt.Errorf("%w: computed %s, declared %s",
			ErrMetadataMismatch, d.DialogueID, ID(exp.StudentID, exp.Week, exp.Task))
	}
	if want := ID(exp.StudentID, exp.Week, exp.Task); d.DialogueID != want {
		return fmt.Errorf("%w: dialogue_id %q, want %q", ErrMetadataMismatch, d.DialogueID, want)
	}
	return nil
}

var artifactNamePattern = regexp.MustCompile(`^S(\d+)_W(\d+)_T(\d+)$`)

// ParseArtifactName derives the declared expectation from an artifact base
// name such as "S18_W1_T2".
func ParseArtifactName(name string) (Expectation, error) {
	m := artifactNamePattern.FindStringSubmatch(name)
	if m == nil {
		return Expectation{}, fmt.Errorf("artifact name %q does not match S<student>_W<week>_T<task>", name)
	}
	student, _ := strconv.Atoi(m[1])
	week, _ := strconv.Atoi(m[2])
	task, _ := strconv.Atoi(m[3])
	return Expectation{StudentID: student, Week: week, Task: task}, nil
}

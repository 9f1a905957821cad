package dialogue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/dialognorm/internal/transcript"
)

// Writer persists dialogue artifacts as JSON, one file per
// (student, week, task), named after the dialogue ID.
type Writer struct {
	// Dir is the processed-artifact directory.
	Dir string
	// Legacy emits the flat turn array without the metadata envelope, for
	// compatibility with artifacts produced before metadata was introduced.
	Legacy bool
	// DryRun logs the write without touching the filesystem.
	DryRun bool

	log *logrus.Entry
}

// NewWriter creates an artifact writer rooted at dir.
func NewWriter(dir string, legacy, dryRun bool) *Writer {
	return &Writer{
		Dir:    dir,
		Legacy: legacy,
		DryRun: dryRun,
		log:    logrus.WithField("component", "artifact-writer"),
	}
}

// Path returns the artifact path a dialogue will be written to.
func (w *Writer) Path(d *Dialogue) string {
	return filepath.Join(w.Dir, d.DialogueID+".json")
}

// Write validates the dialogue's identity against its own file name and
// persists it. The filename-derived expectation is the last line of defense:
// a mismatch aborts the write.
func (w *Writer) Write(d *Dialogue) (string, error) {
	path := w.Path(d)
	base := strings.TrimSuffix(filepath.Base(path), ".json")
	exp, err := ParseArtifactName(base)
	if err != nil {
		return "", err
	}
	if err := d.Validate(exp); err != nil {
		return "", err
	}

	var payload any = d
	if w.Legacy {
		payload = d.Turns
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling %s: %w", d.DialogueID, err)
	}
	data = append(data, '\n')

	if w.DryRun {
		w.log.WithFields(logrus.Fields{
			"path":  path,
			"turns": len(d.Turns),
		}).Info("dry-run: would write artifact")
		return path, nil
	}

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating artifact directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	w.log.WithFields(logrus.Fields{
		"path":  path,
		"turns": len(d.Turns),
	}).Info("wrote dialogue artifact")
	return path, nil
}

// Read loads an artifact back. Legacy artifacts (a bare turn array) are
// wrapped in a Dialogue with identity recovered from the file name.
func Read(path string) (*Dialogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var turns []transcript.Turn
		if err := json.Unmarshal(data, &turns); err != nil {
			return nil, fmt.Errorf("parsing legacy artifact %s: %w", path, err)
		}
		exp, err := ParseArtifactName(strings.TrimSuffix(filepath.Base(path), ".json"))
		if err != nil {
			return nil, err
		}
		return &Dialogue{
			StudentID:  exp.StudentID,
			Week:       exp.Week,
			Task:       exp.Task,
			DialogueID: ID(exp.StudentID, exp.Week, exp.Task),
			Turns:      turns,
		}, nil
	}

	var d Dialogue
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing artifact %s: %w", path, err)
	}
	return &d, nil
}

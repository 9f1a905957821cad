package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grovetools/dialognorm/internal/transcript"
)

// ErrResourceLocked is returned when a source document is held by another
// process (an editor lock) and cannot be read exclusively. The document is
// skipped; the rest of the batch continues.
var ErrResourceLocked = errors.New("source document is locked")

// Extractor produces the raw document content for a discovered source.
// Byte-level text and color extraction out of the docx/pdf containers is an
// external collaborator's job; implementations here only load its output.
type Extractor interface {
	Extract(ctx context.Context, info DocumentInfo) (*transcript.RawDocument, error)
}

// FileExtractor reads pre-extracted text from the extracted-text directory:
// S<student>_W<week>.txt plus an optional S<student>_W<week>.colors.json
// sidecar with per-run color metadata. Plain .txt sources are read directly.
type FileExtractor struct {
	ExtractedDir string
}

// Extract loads the document text and optional color runs. The source is
// treated as exclusively held for the duration: an Office-style lock file or
// a failed open surfaces as ErrResourceLocked rather than a partial read.
func (e *FileExtractor) Extract(ctx context.Context, info DocumentInfo) (*transcript.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkLock(info.Path); err != nil {
		return nil, err
	}

	textPath := info.Path
	if info.Suffix != ".txt" {
		textPath = filepath.Join(e.ExtractedDir, fmt.Sprintf("S%d_W%d.txt", info.StudentID, info.Week))
	}
	data, err := os.ReadFile(textPath)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, fmt.Errorf("%w: %s", ErrResourceLocked, info.Path)
		}
		return nil, fmt.Errorf("reading extracted text for %s: %w", info.Path, err)
	}

	doc := &transcript.RawDocument{
		Text:       string(data),
		SourcePath: info.Path,
		Locale:     info.Locale,
	}

	colorsPath := filepath.Join(e.ExtractedDir, fmt.Sprintf("S%d_W%d.colors.json", info.StudentID, info.Week))
	if runsData, err := os.ReadFile(colorsPath); err == nil {
		var runs []transcript.ColorRun
		if err := json.Unmarshal(runsData, &runs); err != nil {
			return nil, fmt.Errorf("parsing color sidecar %s: %w", colorsPath, err)
		}
		doc.Runs = runs
	}

	return doc, nil
}

// checkLock detects the ~$-prefixed lock file Office writers leave next to a
// document they hold open.
func checkLock(path string) error {
	lockPath := filepath.Join(filepath.Dir(path), "~$"+filepath.Base(path))
	if _, err := os.Stat(lockPath); err == nil {
		return fmt.Errorf("%w: %s", ErrResourceLocked, path)
	}
	return nil
}

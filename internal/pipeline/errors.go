// Package pipeline orchestrates per-document normalization and batch
// processing across documents.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/grovetools/dialognorm/internal/dialogue"
	"github.com/grovetools/dialognorm/internal/source"
	"github.com/grovetools/dialognorm/internal/transcript"
)

// Kind classifies a per-document failure or warning.
type Kind string

const (
	KindResourceLocked    Kind = "resource_locked"
	KindUnclassified      Kind = "unclassified_document"
	KindTaskCountMismatch Kind = "task_count_mismatch"
	KindLowConfidence     Kind = "low_confidence_speakers"
	KindMetadataMismatch  Kind = "metadata_mismatch"
	KindExtraction        Kind = "extraction_failed"
	KindNoPattern         Kind = "no_label_pattern"
	KindEmptyTask         Kind = "empty_task"
	KindWrite             Kind = "write_failed"
)

// DocumentError ties a failure to the document that produced it. All errors
// in a run are per-document; none aborts the batch.
type DocumentError struct {
	Kind   Kind
	Source string
	// Context is positional detail where applicable, e.g. "task 2".
	Context string
	Err     error
}

func (e *DocumentError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s [%s, %s]: %v", e.Kind, e.Source, e.Context, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Kind, e.Source, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

// classify maps an underlying error to its taxonomy kind.
func classify(err error) Kind {
	switch {
	case errors.Is(err, source.ErrResourceLocked):
		return KindResourceLocked
	case errors.Is(err, transcript.ErrUnclassified):
		return KindUnclassified
	case errors.Is(err, transcript.ErrNoPattern):
		return KindNoPattern
	case errors.Is(err, dialogue.ErrMetadataMismatch):
		return KindMetadataMismatch
	default:
		return KindExtraction
	}
}

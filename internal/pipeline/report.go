package pipeline

import (
	"sort"
	"sync"
)

// ArtifactResult records one successfully written dialogue artifact.
type ArtifactResult struct {
	StudentID int
	Week      int
	Task      int
	Path      string
	Turns     int
	Strategy  string
}

// SkipResult records a document or task that was intentionally not processed.
type SkipResult struct {
	StudentID int
	Week      int
	Reason    string
}

// RunReport aggregates the outcome of one batch run: the partial-success
// result set plus every per-document error and warning. Safe for concurrent
// use by the worker pool.
type RunReport struct {
	mu        sync.Mutex
	Processed []ArtifactResult
	Skipped   []SkipResult
	Errors    []*DocumentError
	Warnings  []*DocumentError
}

func (r *RunReport) addProcessed(a ArtifactResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Processed = append(r.Processed, a)
}

func (r *RunReport) addSkipped(s SkipResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Skipped = append(r.Skipped, s)
}

func (r *RunReport) addError(e *DocumentError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, e)
}

func (r *RunReport) addWarning(e *DocumentError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, e)
}

// Sort orders all result slices deterministically, regardless of worker
// completion order.
func (r *RunReport) Sort() {
	r.mu.Lock()
	defer r.mu.Unlock()
	sort.Slice(r.Processed, func(i, j int) bool {
		a, b := r.Processed[i], r.Processed[j]
		if a.StudentID != b.StudentID {
			return a.StudentID < b.StudentID
		}
		if a.Week != b.Week {
			return a.Week < b.Week
		}
		return a.Task < b.Task
	})
	sort.Slice(r.Skipped, func(i, j int) bool {
		a, b := r.Skipped[i], r.Skipped[j]
		if a.StudentID != b.StudentID {
			return a.StudentID < b.StudentID
		}
		return a.Week < b.Week
	})
	sort.Slice(r.Errors, func(i, j int) bool { return r.Errors[i].Source < r.Errors[j].Source })
	sort.Slice(r.Warnings, func(i, j int) bool { return r.Warnings[i].Source < r.Warnings[j].Source })
}

// HasErrors reports whether any document failed.
func (r *RunReport) HasErrors() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Errors) > 0
}

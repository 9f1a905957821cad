package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/grovetools/dialognorm/config"
	"github.com/grovetools/dialognorm/internal/dialogue"
	"github.com/grovetools/dialognorm/internal/source"
	"github.com/grovetools/dialognorm/internal/task"
	"github.com/grovetools/dialognorm/internal/transcript"
)

// Options are the per-run parameters resolved by the caller. The pipeline
// never reads arguments or environment itself.
type Options struct {
	// Force reprocesses documents whose artifacts are already up to date.
	Force bool
	// DryRun logs intended writes without touching the filesystem.
	DryRun bool
	// Workers bounds concurrent document processing; 0 uses the config value.
	Workers int
}

// Runner drives the normalization pipeline: segmentation, classification,
// boundary detection, normalization, and assembly, sequential within a
// document and parallel across documents.
type Runner struct {
	cfg        *config.Config
	registry   *transcript.Registry
	extractor  source.Extractor
	segmenter  *transcript.Segmenter
	classifier *transcript.Classifier
	normalizer *transcript.Normalizer
	detector   *task.Detector
	log        *logrus.Entry
}

// NewRunner wires a runner from configuration. Label sets from config are
// registered on top of the built-in locales; the color-role policy and skip
// keywords come from config as well.
func NewRunner(cfg *config.Config, extractor source.Extractor) *Runner {
	registry := transcript.NewRegistry()
	for locale, set := range cfg.LabelSets {
		registry.Register(locale, set.Learner, set.Bot)
	}

	var colorRoles map[string]transcript.Speaker
	if len(cfg.ColorRoles) > 0 {
		colorRoles = make(map[string]transcript.Speaker, len(cfg.ColorRoles))
		for color, role := range cfg.ColorRoles {
			colorRoles[color] = transcript.Speaker(role)
		}
	}

	return &Runner{
		cfg:       cfg,
		registry:  registry,
		extractor: extractor,
		segmenter: transcript.NewSegmenter(registry, transcript.SegmentOptions{
			ContinuationMaxLen: cfg.Segmentation.ContinuationMaxLen,
			MinBlockLen:        cfg.Segmentation.MinBlockLen,
		}),
		classifier: transcript.NewClassifier(colorRoles),
		normalizer: transcript.NewNormalizer(cfg.Defaults.SkipKeywords),
		detector:   task.NewDetector(),
		log:        logrus.WithField("component", "pipeline"),
	}
}

// Run processes the given documents with a bounded worker pool. One
// document's failure never blocks the rest: the report carries the
// partial-success result set and every per-document error.
func (r *Runner) Run(ctx context.Context, docs []source.DocumentInfo, opts Options) *RunReport {
	report := &RunReport{}
	writer := dialogue.NewWriter(r.cfg.ProcessedDir, r.cfg.LegacySchema, opts.DryRun)

	workers := opts.Workers
	if workers <= 0 {
		workers = r.cfg.Workers
	}
	if workers <= 0 {
		workers = 1
	}

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for _, doc := range docs {
		doc := doc
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				report.addSkipped(SkipResult{StudentID: doc.StudentID, Week: doc.Week, Reason: "cancelled"})
				return nil
			}
			r.processDocument(ctx, doc, writer, opts, report)
			return nil
		})
	}
	g.Wait()
	report.Sort()
	return report
}

// processDocument runs the sequential stage chain for one document. Every
// failure is recorded against this document only.
func (r *Runner) processDocument(ctx context.Context, doc source.DocumentInfo, writer *dialogue.Writer, opts Options, report *RunReport) {
	log := r.log.WithFields(logrus.Fields{
		"student": doc.StudentID,
		"week":    doc.Week,
		"source":  doc.Path,
	})

	if !opts.Force && r.upToDate(doc, writer) {
		log.Debug("artifacts up to date, skipping")
		report.addSkipped(SkipResult{StudentID: doc.StudentID, Week: doc.Week, Reason: "up-to-date"})
		return
	}

	raw, err := r.extractor.Extract(ctx, doc)
	if err != nil {
		report.addError(&DocumentError{Kind: classify(err), Source: doc.Path, Err: err})
		log.WithError(err).Warn("extraction failed")
		return
	}

	blocks, strategy, err := r.segmenter.Segment(raw)
	if err != nil {
		report.addError(&DocumentError{Kind: classify(err), Source: doc.Path, Err: err})
		log.WithError(err).Warn("segmentation failed, flagged for manual review")
		return
	}
	log.WithFields(logrus.Fields{"strategy": strategy, "blocks": len(blocks)}).Debug("segmented")

	blocks = r.classifier.Classify(blocks)

	split := r.detector.Detect(blocks, doc.ExpectedTasks)
	if split.Mismatch != nil {
		report.addWarning(&DocumentError{
			Kind:    KindTaskCountMismatch,
			Source:  doc.Path,
			Context: fmt.Sprintf("expected %d, detected %d", split.Mismatch.Expected, split.Mismatch.Detected),
			Err:     fmt.Errorf("%s", split.Mismatch.String()),
		})
	}

	for i, group := range split.Groups {
		taskIdx := i + 1
		turns := r.normalizer.Normalize(group, doc.Path)
		if len(turns) == 0 {
			report.addError(&DocumentError{
				Kind:    KindEmptyTask,
				Source:  doc.Path,
				Context: fmt.Sprintf("task %d", taskIdx),
				Err:     fmt.Errorf("no turns after normalization"),
			})
			continue
		}

		if lowConfidenceCount(turns) > 0 {
			report.addWarning(&DocumentError{
				Kind:    KindLowConfidence,
				Source:  doc.Path,
				Context: fmt.Sprintf("task %d", taskIdx),
				Err:     fmt.Errorf("%d of %d turns carry low-confidence speaker assignments", lowConfidenceCount(turns), len(turns)),
			})
		}

		d, err := dialogue.Assemble(doc.StudentID, doc.Week, taskIdx, turns, doc.Path)
		if err != nil {
			report.addError(&DocumentError{Kind: KindEmptyTask, Source: doc.Path, Context: fmt.Sprintf("task %d", taskIdx), Err: err})
			continue
		}

		path, err := writer.Write(d)
		if err != nil {
			kind := classify(err)
			if kind != KindMetadataMismatch {
				kind = KindWrite
			}
			report.addError(&DocumentError{Kind: kind, Source: doc.Path, Context: fmt.Sprintf("task %d", taskIdx), Err: err})
			if kind == KindMetadataMismatch {
				log.WithError(err).Error("metadata mismatch, aborting document output")
				return
			}
			continue
		}

		report.addProcessed(ArtifactResult{
			StudentID: doc.StudentID,
			Week:      doc.Week,
			Task:      taskIdx,
			Path:      path,
			Turns:     len(turns),
			Strategy:  string(strategy),
		})
	}
}

// upToDate reports whether every expected artifact for the document exists
// and is newer than the source.
func (r *Runner) upToDate(doc source.DocumentInfo, writer *dialogue.Writer) bool {
	for taskIdx := 1; taskIdx <= doc.ExpectedTasks; taskIdx++ {
		path := writer.Path(&dialogue.Dialogue{DialogueID: dialogue.ID(doc.StudentID, doc.Week, taskIdx)})
		stat, err := os.Stat(path)
		if err != nil || stat.ModTime().Before(doc.ModTime) {
			return false
		}
	}
	return true
}

func lowConfidenceCount(turns []transcript.Turn) int {
	n := 0
	for _, t := range turns {
		if t.LowConfidence {
			n++
		}
	}
	return n
}

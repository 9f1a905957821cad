// Package dialogues exposes the document-to-dialogue parsing core as a
// library, for callers that want to parse a single document without the
// discovery and artifact-writing machinery of the CLI.
package dialogues

import (
	"github.com/grovetools/dialognorm/internal/task"
	"github.com/grovetools/dialognorm/internal/transcript"
)

// Turn is one normalized speaker turn.
type Turn = transcript.Turn

// Document is the raw input to parsing: plain text, optional color runs,
// and an optional locale hint for label lookup.
type Document = transcript.RawDocument

// Parser runs segmentation, speaker classification, and text normalization
// over a single document.
type Parser struct {
	segmenter  *transcript.Segmenter
	classifier *transcript.Classifier
	normalizer *transcript.Normalizer
}

// NewParser creates a parser with the built-in label patterns, the default
// color convention, and no skip keywords.
func NewParser() *Parser {
	return &Parser{
		segmenter:  transcript.NewSegmenter(transcript.NewRegistry(), transcript.SegmentOptions{}),
		classifier: transcript.NewClassifier(nil),
		normalizer: transcript.NewNormalizer(nil),
	}
}

// Parse returns the document's dialogue as a flat sequence of turns,
// ignoring task boundaries.
func (p *Parser) Parse(doc *Document) ([]Turn, error) {
	blocks, _, err := p.segmenter.Segment(doc)
	if err != nil {
		return nil, err
	}
	blocks = p.classifier.Classify(blocks)
	return p.normalizer.Normalize(blocks, doc.SourcePath), nil
}

// ParseTasks returns the document's dialogue split into per-task turn
// sequences. expected is the number of tasks the session should contain;
// a detected count that differs is reported via mismatch, never padded.
func (p *Parser) ParseTasks(doc *Document, expected int) ([][]Turn, *task.CountMismatch, error) {
	blocks, _, err := p.segmenter.Segment(doc)
	if err != nil {
		return nil, nil, err
	}
	blocks = p.classifier.Classify(blocks)

	split := task.NewDetector().Detect(blocks, expected)
	groups := make([][]Turn, 0, len(split.Groups))
	for _, g := range split.Groups {
		groups = append(groups, p.normalizer.Normalize(g, doc.SourcePath))
	}
	return groups, split.Mismatch, nil
}

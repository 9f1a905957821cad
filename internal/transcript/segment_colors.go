package transcript

// colorStrategy groups contiguous same-color runs into blocks. Role
// assignment is deferred to the classifier, which resolves colors through a
// document-scoped color policy.
type colorStrategy struct {
	opts SegmentOptions
}

func (colorStrategy) Name() Strategy { return StrategyColors }

func (s colorStrategy) Segment(doc *RawDocument) ([]UtteranceBlock, error) {
	if len(doc.Runs) == 0 {
		return nil, errNoColorData
	}

	var blocks []UtteranceBlock
	var span string
	var color string
	flush := func() {
		if span == "" {
			return
		}
		blocks = splitSpan(blocks, span, UtteranceBlock{
			Strategy: StrategyColors,
			Color:    color,
		})
		span = ""
	}

	for _, run := range doc.Runs {
		if run.Color != color {
			flush()
			color = run.Color
		}
		span += run.Text
	}
	flush()
	return blocks, nil
}

package ingest

import (
	"context"

	"github.com/tinytelemetry/errscan/internal/logparse"
	"github.com/tinytelemetry/errscan/internal/metrics"
	"github.com/tinytelemetry/errscan/internal/model"
)

// Processor runs the format chain and the classifier over the text of one
// file and routes classified occurrences to the sink.
type Processor struct {
	chain      *logparse.Chain
	classifier model.Classifier
	sink       StatSink
	metrics    *metrics.Metrics
}

// NewProcessor creates a processor. A nil chain means the default chain
// and a nil classifier the default exception classifier.
func NewProcessor(
	chain *logparse.Chain,
	classifier model.Classifier,
	sink StatSink,
	m *metrics.Metrics,
) *Processor {
	if chain == nil {
		chain = logparse.DefaultChain()
	}
	if classifier == nil {
		classifier = logparse.NewExceptionClassifier()
	}
	return &Processor{
		chain:      chain,
		classifier: classifier,
		sink:       sink,
		metrics:    m,
	}
}

// ProcessResult holds the outcome of processing one file.
type ProcessResult struct {
	Format     string // empty when no format matched
	Matched    int64
	Classified int64
	Discarded  int64
}

// ProcessText parses text with the format that owns it. It stops early
// when ctx is done or the sink rejects an update, returning what was
// counted so far together with the error.
func (p *Processor) ProcessText(ctx context.Context, text string) (ProcessResult, error) {
	var res ProcessResult

	matcher, ok := p.chain.Select(text)
	if !ok {
		return res, nil
	}
	res.Format = matcher.Name()

	for rec := range matcher.Records(text) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Matched++

		name, ok := p.classifier.Classify(rec.RawText)
		if !ok {
			res.Discarded++
			p.metrics.ObserveRecord(rec.Format, metrics.RecordDiscarded)
			continue
		}
		if err := p.sink.Update(name, rec.Hour); err != nil {
			return res, err
		}
		res.Classified++
		p.metrics.ObserveRecord(rec.Format, metrics.RecordClassified)
	}
	return res, nil
}

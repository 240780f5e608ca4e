package ingest

import (
	"context"
	"errors"
	"io"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tinytelemetry/errscan/internal/aggregate"
	"github.com/tinytelemetry/errscan/internal/logparse"
	"github.com/tinytelemetry/errscan/internal/metrics"
	"github.com/tinytelemetry/errscan/internal/model"
)

// Options tunes a dispatcher run.
type Options struct {
	Workers    int
	Deadline   time.Duration
	Chain      *logparse.Chain
	Classifier model.Classifier
	Logger     logrus.FieldLogger
	Metrics    *metrics.Metrics
}

// Dispatcher fans files out to a bounded pool of workers. Each file is
// read, parsed and aggregated start to finish by exactly one worker.
type Dispatcher struct {
	reader     FileReader
	workers    int
	deadline   time.Duration
	chain      *logparse.Chain
	classifier model.Classifier
	log        logrus.FieldLogger
	metrics    *metrics.Metrics
}

// NewDispatcher creates a dispatcher reading files through reader.
// Zero options fall back to one worker per CPU and model.DefaultDeadline.
func NewDispatcher(reader FileReader, opts Options) *Dispatcher {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	deadline := opts.Deadline
	if deadline <= 0 {
		deadline = model.DefaultDeadline
	}
	logger := opts.Logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Dispatcher{
		reader:     reader,
		workers:    workers,
		deadline:   deadline,
		chain:      opts.Chain,
		classifier: opts.Classifier,
		log:        logger,
		metrics:    opts.Metrics,
	}
}

// Workers returns the pool size.
func (d *Dispatcher) Workers() int {
	return d.workers
}

type tally struct {
	scanned    atomic.Int64
	failed     atomic.Int64
	unmatched  atomic.Int64
	matched    atomic.Int64
	classified atomic.Int64
	discarded  atomic.Int64
}

// Run processes files and returns the sealed aggregate with run counters.
// It waits for every file or for the deadline, whichever comes first.
// Workers still busy at the deadline are abandoned: updates they already
// applied are kept, later ones are rejected by the sealed store.
func (d *Dispatcher) Run(ctx context.Context, files []model.LogFile) (*aggregate.Store, model.RunStats) {
	start := time.Now()
	store := aggregate.NewStore()
	stats := model.RunStats{FilesTotal: len(files)}

	if len(files) == 0 {
		store.Seal()
		stats.Elapsed = time.Since(start)
		return store, stats
	}

	runCtx, cancel := context.WithTimeout(ctx, d.deadline)
	defer cancel()

	proc := NewProcessor(d.chain, d.classifier, store, d.metrics)
	var t tally

	// Per-file failures are contained in the worker, so the group never
	// returns an error and never cancels siblings.
	var g errgroup.Group
	g.SetLimit(d.workers)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, file := range files {
			if runCtx.Err() != nil {
				break
			}
			g.Go(func() error {
				d.processFile(runCtx, proc, file, &t)
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-done:
	case <-runCtx.Done():
	}
	store.Seal()

	stats.FilesScanned = int(t.scanned.Load())
	stats.FilesFailed = int(t.failed.Load())
	stats.FilesUnmatched = int(t.unmatched.Load())
	stats.FilesAbandoned = stats.FilesTotal - stats.FilesScanned - stats.FilesFailed
	stats.RecordsMatched = t.matched.Load()
	stats.RecordsClassified = t.classified.Load()
	stats.RecordsDiscarded = t.discarded.Load()
	stats.Elapsed = time.Since(start)
	// Files skipped or still in flight only exist once the context ended.
	stats.TimedOut = runCtx.Err() != nil && stats.FilesAbandoned > 0

	if stats.TimedOut {
		reason := "deadline reached"
		if !errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			reason = "scan cancelled"
		}
		d.log.WithFields(logrus.Fields{
			"deadline":  d.deadline,
			"abandoned": stats.FilesAbandoned,
		}).Warnf("%s, reporting partial results", reason)
	}
	return store, stats
}

func (d *Dispatcher) processFile(ctx context.Context, proc *Processor, file model.LogFile, t *tally) {
	if ctx.Err() != nil {
		return
	}
	logger := d.log.WithField("file", file.Name)

	text, err := d.reader.Read(file)
	if err != nil {
		t.failed.Add(1)
		d.metrics.ObserveFile(metrics.FileFailed)
		logger.WithError(err).Warn("skipping unreadable log file")
		return
	}

	res, err := proc.ProcessText(ctx, text)
	t.matched.Add(res.Matched)
	t.classified.Add(res.Classified)
	t.discarded.Add(res.Discarded)
	if err != nil {
		logger.WithError(err).Debug("file abandoned mid-scan")
		return
	}

	t.scanned.Add(1)
	d.metrics.ObserveFile(metrics.FileScanned)
	if res.Format == "" {
		t.unmatched.Add(1)
		d.metrics.ObserveFile(metrics.FileUnmatched)
		logger.Debug("no known log format, file contributes no records")
		return
	}
	logger.WithFields(logrus.Fields{
		"format":     res.Format,
		"records":    res.Matched,
		"classified": res.Classified,
	}).Debug("log file scanned")
}

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/tinytelemetry/errscan/internal/aggregate"
	"github.com/tinytelemetry/errscan/internal/duckdb"
	"github.com/tinytelemetry/errscan/internal/ingest"
	"github.com/tinytelemetry/errscan/internal/logsource"
	"github.com/tinytelemetry/errscan/internal/metrics"
	"github.com/tinytelemetry/errscan/internal/model"
	"github.com/tinytelemetry/errscan/internal/report"
)

// scanResult is what one run produced, for the sinks and the summary.
type scanResult struct {
	RunID     string
	StartedAt time.Time
	NoFiles   bool
	Stats     model.RunStats
	Entries   []model.Entry
}

func runScan(ctx context.Context, cfg appConfig, fs afero.Fs, stdout, stderr io.Writer) error {
	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat, stderr)
	if err != nil {
		return err
	}

	res := scanResult{RunID: uuid.NewString(), StartedAt: time.Now()}
	log := logger.WithField("run_id", res.RunID)

	m, err := metrics.New("")
	if err != nil {
		return err
	}

	var src logsource.LogSource = logsource.NewDirSource(fs, cfg.Dir, cfg.Prefix)
	files, err := src.Files()
	if err != nil {
		return err
	}

	if len(files) == 0 {
		res.NoFiles = true
		log.WithField("dir", src.Name()).Info("no log files found")
		if err := report.WriteFile(fs, cfg.Output, report.WriteNoFiles); err != nil {
			return err
		}
	} else {
		d := ingest.NewDispatcher(src, ingest.Options{
			Workers:  cfg.Workers,
			Deadline: cfg.Deadline,
			Logger:   log,
			Metrics:  m,
		})
		log.WithFields(logrus.Fields{
			"dir":     src.Name(),
			"files":   len(files),
			"workers": d.Workers(),
			"config":  configSource(cfg),
		}).Info("scan started")

		var store *aggregate.Store
		store, res.Stats = d.Run(ctx, files)
		res.Entries = store.Snapshot()

		if err := report.WriteFile(fs, cfg.Output, report.Renderer(cfg.Mode, store)); err != nil {
			return err
		}
	}
	res.Stats.Elapsed = time.Since(res.StartedAt)

	if cfg.DuckDBPath != "" {
		if err := writeDuckDB(cfg, res, log); err != nil {
			return err
		}
	}

	m.ObserveRun(res.Stats.Elapsed, len(res.Entries), res.Stats.TimedOut, time.Now())
	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			return err
		}
	}

	log.WithFields(logrus.Fields{
		"output":     cfg.Output,
		"exceptions": len(res.Entries),
		"timed_out":  res.Stats.TimedOut,
		"elapsed":    res.Stats.Elapsed,
	}).Info("report written")

	if !cfg.Quiet {
		printRunSummary(stdout, cfg, res)
	}
	return nil
}

func writeDuckDB(cfg appConfig, res scanResult, log logrus.FieldLogger) error {
	store, err := duckdb.NewStore(cfg.DuckDBPath)
	if err != nil {
		return fmt.Errorf("open duckdb %s: %w", cfg.DuckDBPath, err)
	}
	defer store.Close()

	run := duckdb.RunRecord{
		RunID:     res.RunID,
		Directory: cfg.Dir,
		StartedAt: res.StartedAt,
		Stats:     res.Stats,
	}
	if err := store.WriteRun(run, res.Entries); err != nil {
		return fmt.Errorf("write duckdb %s: %w", cfg.DuckDBPath, err)
	}

	// Read back what landed so a silent partial write cannot pass.
	storedID, err := store.LastRunID()
	if err != nil {
		return fmt.Errorf("read back duckdb %s: %w", cfg.DuckDBPath, err)
	}
	totals, err := store.ExceptionTotals()
	if err != nil {
		return fmt.Errorf("read back duckdb %s: %w", cfg.DuckDBPath, err)
	}
	if storedID != res.RunID || len(totals) != len(res.Entries) {
		return fmt.Errorf("duckdb %s holds run %q with %d exceptions, want run %q with %d",
			cfg.DuckDBPath, storedID, len(totals), res.RunID, len(res.Entries))
	}
	log.WithFields(logrus.Fields{
		"duckdb":     cfg.DuckDBPath,
		"exceptions": len(totals),
	}).Debug("report stored")
	return nil
}

func configSource(cfg appConfig) string {
	if cfg.ConfigPath == "" {
		return "defaults"
	}
	return cfg.ConfigPath
}

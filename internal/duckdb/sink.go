package duckdb

import (
	"context"
	"fmt"
	"time"

	"github.com/tinytelemetry/errscan/internal/model"
)

// RunRecord identifies one scan written to the database.
type RunRecord struct {
	RunID     string
	Directory string
	StartedAt time.Time
	Stats     model.RunStats
}

// WriteRun replaces the database content with one scan: its run row,
// per-exception totals and nonzero hour buckets. Everything happens in a
// single transaction, so a failure leaves the previous content intact.
func (s *Store) WriteRun(run RunRecord, entries []model.Entry) error {
	ctx, cancel := s.queryCtx()
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeRunTx(ctx, run, entries)
}

func (s *Store) writeRunTx(ctx context.Context, run RunRecord, entries []model.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	for _, table := range []string{"exception_hours", "exception_totals", "scan_runs"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	st := run.Stats
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO scan_runs (run_id, directory, started_at, elapsed_ms, files_total, files_scanned, files_failed, files_unmatched, files_abandoned, records_matched, records_classified, records_discarded, timed_out) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Directory, run.StartedAt, st.Elapsed.Milliseconds(),
		st.FilesTotal, st.FilesScanned, st.FilesFailed, st.FilesUnmatched, st.FilesAbandoned,
		st.RecordsMatched, st.RecordsClassified, st.RecordsDiscarded, st.TimedOut,
	); err != nil {
		return fmt.Errorf("run insert: %w", err)
	}

	totalStmt, err := tx.PrepareContext(ctx, `INSERT INTO exception_totals (run_id, exception, total) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer totalStmt.Close()

	hourStmt, err := tx.PrepareContext(ctx, `INSERT INTO exception_hours (run_id, exception, hour, quantity) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer hourStmt.Close()

	for _, e := range entries {
		if _, err := totalStmt.ExecContext(ctx, run.RunID, e.Name, int64(e.Stat.Total)); err != nil {
			return fmt.Errorf("total insert: %w", err)
		}
		for _, h := range e.Stat.Hours() {
			if _, err := hourStmt.ExecContext(ctx, run.RunID, e.Name, h.Hour, int64(h.Count)); err != nil {
				return fmt.Errorf("hour insert: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

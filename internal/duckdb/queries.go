package duckdb

import "fmt"

// ExceptionTotals returns the total per exception of the stored run.
func (s *Store) ExceptionTotals() (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT exception, total FROM exception_totals ORDER BY exception`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var name string
		var total int64
		if err := rows.Scan(&name, &total); err != nil {
			return nil, fmt.Errorf("scan exception_totals: %w", err)
		}
		out[name] = total
	}
	return out, rows.Err()
}

// LastRunID returns the run id currently stored, or "" when empty.
func (s *Store) LastRunID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	var runID string
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(run_id), '') FROM scan_runs`).Scan(&runID)
	if err != nil {
		return "", err
	}
	return runID, nil
}

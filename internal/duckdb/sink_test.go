package duckdb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/tinytelemetry/errscan/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// hourQuantities reads the nonzero hour buckets stored for one exception.
func hourQuantities(t *testing.T, s *Store, exception string) map[int]int64 {
	t.Helper()
	rows, err := s.db.Query(`SELECT hour, quantity FROM exception_hours WHERE exception = ? ORDER BY hour`, exception)
	if err != nil {
		t.Fatalf("query exception_hours: %v", err)
	}
	defer rows.Close()

	out := make(map[int]int64)
	for rows.Next() {
		var hour int
		var qty int64
		if err := rows.Scan(&hour, &qty); err != nil {
			t.Fatalf("scan exception_hours: %v", err)
		}
		out[hour] = qty
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}
	return out
}

func statOf(hours map[int]uint64) model.ExceptionStat {
	var st model.ExceptionStat
	for h, n := range hours {
		st.PerHour[h] = n
		st.Total += n
	}
	return st
}

func testRun(id string) RunRecord {
	return RunRecord{
		RunID:     id,
		Directory: "/var/log/app",
		StartedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Stats: model.RunStats{
			FilesTotal:        2,
			FilesScanned:      2,
			RecordsMatched:    4,
			RecordsClassified: 3,
			RecordsDiscarded:  1,
			Elapsed:           150 * time.Millisecond,
		},
	}
}

func TestWriteRunStoresTotalsAndHours(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	entries := []model.Entry{
		{Name: "java.io.IOException", Stat: statOf(map[int]uint64{9: 2})},
		{Name: "java.lang.NullPointerException", Stat: statOf(map[int]uint64{1: 1, 23: 3})},
	}
	if err := s.WriteRun(testRun("run-1"), entries); err != nil {
		t.Fatalf("WriteRun: %v", err)
	}

	totals, err := s.ExceptionTotals()
	if err != nil {
		t.Fatalf("ExceptionTotals: %v", err)
	}
	if len(totals) != 2 || totals["java.io.IOException"] != 2 || totals["java.lang.NullPointerException"] != 4 {
		t.Errorf("unexpected totals: %v", totals)
	}

	hours := hourQuantities(t, s, "java.lang.NullPointerException")
	if len(hours) != 2 || hours[1] != 1 || hours[23] != 3 {
		t.Errorf("unexpected hours: %v", hours)
	}

	id, err := s.LastRunID()
	if err != nil {
		t.Fatalf("LastRunID: %v", err)
	}
	if id != "run-1" {
		t.Errorf("LastRunID = %q, want run-1", id)
	}
}

func TestWriteRunReplacesPreviousRun(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	first := []model.Entry{{Name: "a.BException", Stat: statOf(map[int]uint64{3: 5})}}
	if err := s.WriteRun(testRun("run-1"), first); err != nil {
		t.Fatalf("first WriteRun: %v", err)
	}
	second := []model.Entry{{Name: "c.DException", Stat: statOf(map[int]uint64{4: 1})}}
	if err := s.WriteRun(testRun("run-2"), second); err != nil {
		t.Fatalf("second WriteRun: %v", err)
	}

	totals, err := s.ExceptionTotals()
	if err != nil {
		t.Fatalf("ExceptionTotals: %v", err)
	}
	if len(totals) != 1 || totals["c.DException"] != 1 {
		t.Errorf("expected only the second run, got %v", totals)
	}
	hours := hourQuantities(t, s, "a.BException")
	if len(hours) != 0 {
		t.Errorf("stale hours left behind: %v", hours)
	}
	if id, _ := s.LastRunID(); id != "run-2" {
		t.Errorf("LastRunID = %q, want run-2", id)
	}
}

func TestWriteRunEmptySnapshot(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if err := s.WriteRun(testRun("empty"), nil); err != nil {
		t.Fatalf("WriteRun: %v", err)
	}
	totals, err := s.ExceptionTotals()
	if err != nil {
		t.Fatalf("ExceptionTotals: %v", err)
	}
	if len(totals) != 0 {
		t.Errorf("expected no totals, got %v", totals)
	}
}

func TestNewStoreOnDisk(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "report.duckdb")

	s, err := NewStore(path, 5*time.Second)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if s.QueryTimeout != 5*time.Second {
		t.Errorf("QueryTimeout = %v, want 5s", s.QueryTimeout)
	}
	if err := s.WriteRun(testRun("disk"), []model.Entry{{Name: "x.YException", Stat: statOf(map[int]uint64{0: 1})}}); err != nil {
		t.Fatalf("WriteRun: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopening must not re-apply migrations or lose data.
	s, err = NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	totals, err := s.ExceptionTotals()
	if err != nil {
		t.Fatalf("ExceptionTotals: %v", err)
	}
	if totals["x.YException"] != 1 {
		t.Errorf("reopened totals = %v", totals)
	}
}

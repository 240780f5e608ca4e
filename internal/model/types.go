package model

import "time"

// HoursPerDay is the number of per-hour buckets kept for each exception.
const HoursPerDay = 24

// LogRecord is one ERROR-level record extracted from a log file.
// It is transient: the classifier consumes it and it is never stored.
type LogRecord struct {
	Timestamp string // raw, format-specific
	Hour      int    // 0-23, taken from Timestamp
	RawText   string // free text up to the next timestamp or EOF
	Format    string // name of the matcher that produced it
}

// ExceptionStat holds the running statistics for one exception type.
// Total always equals the sum of PerHour.
type ExceptionStat struct {
	Total   uint64
	PerHour [HoursPerDay]uint64
}

// Entry is one row of an aggregate snapshot.
type Entry struct {
	Name string
	Stat ExceptionStat
}

// HourCount is a nonzero per-hour bucket of an exception.
type HourCount struct {
	Hour  int
	Count uint64
}

// Hours returns the nonzero per-hour buckets in ascending hour order.
func (s ExceptionStat) Hours() []HourCount {
	var out []HourCount
	for hour, count := range s.PerHour {
		if count == 0 {
			continue
		}
		out = append(out, HourCount{Hour: hour, Count: count})
	}
	return out
}

// LogFile is a discovered log path. Its content is read by the worker
// that owns it and is never shared.
type LogFile struct {
	Path string
	Name string
}

// RunStats summarizes one dispatcher run.
type RunStats struct {
	FilesTotal     int
	FilesScanned   int
	FilesFailed    int
	FilesUnmatched int
	FilesAbandoned int

	RecordsMatched    int64
	RecordsClassified int64
	RecordsDiscarded  int64

	TimedOut bool
	Elapsed  time.Duration
}

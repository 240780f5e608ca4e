package logparse

import (
	"iter"
	"regexp"
	"strconv"
	"strings"

	"github.com/tinytelemetry/errscan/internal/model"
)

// Format names, in chain priority order.
const (
	FormatDateTimeThread = "date-time-thread"
	FormatDateTime       = "date-time"
	FormatTimeThread     = "time-thread"
	FormatTimeLevel      = "time-level"
)

// Timestamp shapes. Every shape captures the hour of day as "hour".
const (
	hourRgx      = `(?P<hour>[01]\d|2[0-3])`
	fractionRgx  = `(?:[.,]\d{1,9})?`
	dateTimeRgx  = `\d{2}[./-]\d{2}[./-]\d{4}[ \t]` + hourRgx + `:[0-5]\d:[0-5]\d` + fractionRgx
	timeRgx      = hourRgx + `:[0-5]\d:[0-5]\d` + fractionRgx
	looseTimeRgx = hourRgx + `[.:][0-5]\d[.:][0-5]\d` + fractionRgx
)

// Header fragments shared by the structured formats. The class field is
// optional and the header ends at the dash that precedes the free text.
const (
	threadRgx = `\[(?P<thread>[^\]\n]+)\]`
	levelRgx  = `ERROR`
	classRgx  = `(?:(?P<class>[^\n]*?)[ \t]+)?-`
)

// LineMatcher extracts ERROR records of one log format from raw file text.
// It holds only compiled patterns and is safe for concurrent use.
type LineMatcher struct {
	name    string
	header  *regexp.Regexp
	next    *regexp.Regexp
	tsIdx   int
	hourIdx int
}

// NewLineMatcher compiles a matcher. timestamp is the timestamp shape (it
// must capture "hour"); header is the rest of the record header that
// follows the timestamp on the same line.
func NewLineMatcher(name, timestamp, header string) (*LineMatcher, error) {
	h, err := regexp.Compile(`(?m)^(?P<ts>` + timestamp + `)` + header)
	if err != nil {
		return nil, err
	}
	n, err := regexp.Compile(`\n(?:` + timestamp + `)`)
	if err != nil {
		return nil, err
	}
	m := &LineMatcher{
		name:    name,
		header:  h,
		next:    n,
		tsIdx:   h.SubexpIndex("ts"),
		hourIdx: h.SubexpIndex("hour"),
	}
	if m.hourIdx < 0 {
		return nil, errMissingHour
	}
	return m, nil
}

func mustLineMatcher(name, timestamp, header string) *LineMatcher {
	m, err := NewLineMatcher(name, timestamp, header)
	if err != nil {
		panic("logparse: " + name + ": " + err.Error())
	}
	return m
}

// Name returns the format name.
func (m *LineMatcher) Name() string {
	return m.name
}

// Matches reports whether at least one record header of this format
// occurs anywhere in text.
func (m *LineMatcher) Matches(text string) bool {
	return m.header.MatchString(text)
}

// Records yields the records of text in file order. The free text of a
// record ends right before the next line that starts with a timestamp of
// the same shape, or at the end of input.
func (m *LineMatcher) Records(text string) iter.Seq[model.LogRecord] {
	return func(yield func(model.LogRecord) bool) {
		pos := 0
		for pos < len(text) {
			loc := m.header.FindStringSubmatchIndex(text[pos:])
			if loc == nil {
				return
			}
			hdrEnd := pos + loc[1]
			end := len(text)
			if next := m.next.FindStringIndex(text[hdrEnd:]); next != nil {
				end = hdrEnd + next[0]
			}

			hour, err := strconv.Atoi(text[pos+loc[2*m.hourIdx] : pos+loc[2*m.hourIdx+1]])
			if err == nil {
				rec := model.LogRecord{
					Timestamp: text[pos+loc[2*m.tsIdx] : pos+loc[2*m.tsIdx+1]],
					Hour:      hour,
					RawText:   strings.TrimSpace(text[hdrEnd:end]),
					Format:    m.name,
				}
				if !yield(rec) {
					return
				}
			}
			pos = end
		}
	}
}

var (
	dateTimeThreadMatcher = mustLineMatcher(FormatDateTimeThread, dateTimeRgx,
		`[ \t]+`+threadRgx+`[ \t]+`+levelRgx+`[ \t]+`+classRgx)
	dateTimeMatcher = mustLineMatcher(FormatDateTime, dateTimeRgx,
		`[ \t]+`+levelRgx+`[ \t]+`+classRgx)
	timeThreadMatcher = mustLineMatcher(FormatTimeThread, timeRgx,
		`[ \t]+`+threadRgx+`[ \t]+`+levelRgx+`[ \t]+`+classRgx)
	// Loosest shape: anything between the timestamp and the level, and the
	// first dash after the level opens the free text.
	timeLevelMatcher = mustLineMatcher(FormatTimeLevel, looseTimeRgx,
		`[ \t][^\n]*?\b`+levelRgx+`\b[^\n]*?-`)
)

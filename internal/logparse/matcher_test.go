package logparse

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/tinytelemetry/errscan/internal/model"
)

func collect(m *LineMatcher, text string) []model.LogRecord {
	return slices.Collect(m.Records(text))
}

func TestLineMatcherFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		matcher  *LineMatcher
		text     string
		wantTS   string
		wantHour int
		wantText string
	}{
		{
			name:     "date time thread",
			matcher:  dateTimeThreadMatcher,
			text:     "12.03.2024 10:15:42 [main] ERROR com.acme.Service - boom java.lang.IllegalStateException: bad\n",
			wantTS:   "12.03.2024 10:15:42",
			wantHour: 10,
			wantText: "boom java.lang.IllegalStateException: bad",
		},
		{
			name:     "date time with slashes and millis",
			matcher:  dateTimeMatcher,
			text:     "12/03/2024 23:01:02,123 ERROR com.acme.Job - java.io.IOException: disk\n",
			wantTS:   "12/03/2024 23:01:02,123",
			wantHour: 23,
			wantText: "java.io.IOException: disk",
		},
		{
			name:     "time thread",
			matcher:  timeThreadMatcher,
			text:     "07:00:01.250 [pool-1-thread-3] ERROR o.a.Handler - java.net.SocketException\n",
			wantTS:   "07:00:01.250",
			wantHour: 7,
			wantText: "java.net.SocketException",
		},
		{
			name:     "time thread without class",
			matcher:  timeThreadMatcher,
			text:     "07:00:01 [worker] ERROR - java.net.SocketException\n",
			wantTS:   "07:00:01",
			wantHour: 7,
			wantText: "java.net.SocketException",
		},
		{
			name:     "time level with dotted time",
			matcher:  timeLevelMatcher,
			text:     "18.45.09 app-7 ERROR Handler - java.lang.RuntimeException\n",
			wantTS:   "18.45.09",
			wantHour: 18,
			wantText: "java.lang.RuntimeException",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			recs := collect(tt.matcher, tt.text)
			if len(recs) != 1 {
				t.Fatalf("expected 1 record, got %d: %+v", len(recs), recs)
			}
			r := recs[0]
			if r.Timestamp != tt.wantTS {
				t.Errorf("timestamp = %q, want %q", r.Timestamp, tt.wantTS)
			}
			if r.Hour != tt.wantHour {
				t.Errorf("hour = %d, want %d", r.Hour, tt.wantHour)
			}
			if r.RawText != tt.wantText {
				t.Errorf("raw text = %q, want %q", r.RawText, tt.wantText)
			}
			if r.Format != tt.matcher.Name() {
				t.Errorf("format = %q, want %q", r.Format, tt.matcher.Name())
			}
		})
	}
}

func TestRecordsSpanStackTraceUntilNextTimestamp(t *testing.T) {
	t.Parallel()

	text := "01.01.2024 09:00:00 [main] ERROR com.acme.A - request failed\n" +
		"java.lang.NullPointerException: null\n" +
		"\tat com.acme.A.run(A.java:10)\n" +
		"\tat java.lang.Thread.run(Thread.java:750)\n" +
		"01.01.2024 09:00:01 [main] INFO com.acme.A - recovered\n" +
		"01.01.2024 11:30:00 [main] ERROR com.acme.B - last one java.io.IOException"

	recs := collect(dateTimeThreadMatcher, text)
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(recs), recs)
	}
	want := "request failed\njava.lang.NullPointerException: null\n" +
		"\tat com.acme.A.run(A.java:10)\n\tat java.lang.Thread.run(Thread.java:750)"
	if recs[0].RawText != want {
		t.Errorf("first record text = %q, want %q", recs[0].RawText, want)
	}
	if recs[1].Hour != 11 || recs[1].RawText != "last one java.io.IOException" {
		t.Errorf("unexpected second record: %+v", recs[1])
	}
}

func TestRecordsIgnoreNonErrorLevels(t *testing.T) {
	t.Parallel()

	text := "10:00:00 [main] INFO x.Y - java.lang.IllegalArgumentException\n" +
		"10:00:01 [main] WARN x.Y - java.lang.IllegalArgumentException\n"
	if recs := collect(timeThreadMatcher, text); len(recs) != 0 {
		t.Fatalf("expected no records, got %+v", recs)
	}
}

func TestRecordsRejectImpossibleHour(t *testing.T) {
	t.Parallel()

	if recs := collect(timeThreadMatcher, "24:00:00 [main] ERROR x.Y - a.BException\n"); len(recs) != 0 {
		t.Fatalf("expected no records for hour 24, got %+v", recs)
	}
}

func TestRecordsStopWhenConsumerStops(t *testing.T) {
	t.Parallel()

	text := "10:00:00 [a] ERROR x - one\n10:00:01 [a] ERROR x - two\n10:00:02 [a] ERROR x - three\n"
	n := 0
	for range timeThreadMatcher.Records(text) {
		n++
		break
	}
	if n != 1 {
		t.Fatalf("expected iteration to stop after 1 record, got %d", n)
	}
}

func TestNewLineMatcherRequiresHourGroup(t *testing.T) {
	t.Parallel()

	if _, err := NewLineMatcher("bad", `\d{2}:\d{2}`, ` ERROR -`); !errors.Is(err, errMissingHour) {
		t.Fatalf("expected errMissingHour, got %v", err)
	}
	if _, err := NewLineMatcher("broken", `[`, ``); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestRecordsWithCRLFLineEndings(t *testing.T) {
	t.Parallel()

	text := "01.01.2024 09:00:00 [main] ERROR com.acme.A - request failed\r\n" +
		"java.lang.NullPointerException: null\r\n" +
		"\tat com.acme.A.run(A.java:10)\r\n" +
		"01.01.2024 09:00:01 [main] INFO com.acme.A - recovered\r\n" +
		"01.01.2024 11:30:00 [main] ERROR com.acme.B - java.io.IOException\r\n"

	m, ok := DefaultChain().Select(text)
	if !ok || m.Name() != FormatDateTimeThread {
		t.Fatalf("Select = %v, %v", m, ok)
	}
	recs := collect(m, text)
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(recs), recs)
	}

	want := "request failed\r\njava.lang.NullPointerException: null\r\n\tat com.acme.A.run(A.java:10)"
	if recs[0].Hour != 9 || recs[0].RawText != want {
		t.Errorf("first record = %+v", recs[0])
	}
	if recs[1].Hour != 11 || recs[1].RawText != "java.io.IOException" {
		t.Errorf("second record = %+v", recs[1])
	}

	c := NewExceptionClassifier()
	for i, wantName := range []string{"java.lang.NullPointerException", "java.io.IOException"} {
		if got, ok := c.Classify(recs[i].RawText); !ok || got != wantName {
			t.Errorf("record %d classified as %q, want %q", i, got, wantName)
		}
	}

	loose := "18.45.09 node ERROR Handler - java.lang.RuntimeException\r\n18.45.10 node ERROR Handler - x.YException\r\n"
	if recs := collect(timeLevelMatcher, loose); len(recs) != 2 || recs[0].RawText != "java.lang.RuntimeException" {
		t.Errorf("time-level CRLF records = %+v", recs)
	}
}

// Large inputs must scan in linear time. Each case would take far longer
// than the bound with a backtracking engine.
func TestRecordsLinearOnLargeInput(t *testing.T) {
	t.Parallel()

	const bound = 10 * time.Second

	tests := []struct {
		name        string
		text        string
		wantMatched bool
		wantRecords int
	}{
		{
			name:        "error headers without dash",
			text:        strings.Repeat("10:00:00 [main] ERROR com.acme.Service no dash on this line at all\n", 20000),
			wantMatched: false,
		},
		{
			name: "one record without a next timestamp",
			text: "10:00:00 [main] ERROR com.acme.A - start java.lang.Exception\n" +
				strings.Repeat("\tat com.acme.Frame.call(Frame.java:1) ERROR - more text\n", 20000),
			wantMatched: true,
			wantRecords: 1,
		},
		{
			name:        "many records",
			text:        strings.Repeat("10:00:00.001 [pool-1] ERROR com.acme.B - java.io.IOException: again\n", 20000),
			wantMatched: true,
			wantRecords: 20000,
		},
		{
			name:        "loose time with level but no dash",
			text:        strings.Repeat("10.00.00 "+strings.Repeat("ERROR ", 40)+"\n", 5000),
			wantMatched: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			start := time.Now()

			m, ok := DefaultChain().Select(tt.text)
			if ok != tt.wantMatched {
				t.Fatalf("Select matched = %v, want %v", ok, tt.wantMatched)
			}
			if ok {
				n := 0
				for range m.Records(tt.text) {
					n++
				}
				if n != tt.wantRecords {
					t.Errorf("records = %d, want %d", n, tt.wantRecords)
				}
			}
			if elapsed := time.Since(start); elapsed > bound {
				t.Errorf("scan of %d bytes took %v", len(tt.text), elapsed)
			}
		})
	}
}

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func printRunSummary(w io.Writer, cfg appConfig, res scanResult) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")
	warn := yellow.Render("●")

	mark := func(bad bool) string {
		if bad {
			return warn
		}
		return check
	}

	st := res.Stats
	separator := dim.Render("    ─────────────────────────────────")

	var lines []string
	lines = append(lines, "")
	lines = append(lines, "    "+cyan.Bold(true).Render("errscan")+" "+dim.Render("v"+version+"  run "+res.RunID))
	lines = append(lines, separator)
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Files"))
	lines = append(lines, "")
	if res.NoFiles {
		lines = append(lines, fmt.Sprintf("    %s  Directory      %s", dot, dim.Render(shortenPath(cfg.Dir)+" (no log files)")))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Directory      %s", check, dim.Render(shortenPath(cfg.Dir))))
		lines = append(lines, fmt.Sprintf("    %s  Scanned        %d/%d", check, st.FilesScanned, st.FilesTotal))
		lines = append(lines, fmt.Sprintf("    %s  Failed         %d", mark(st.FilesFailed > 0), st.FilesFailed))
		lines = append(lines, fmt.Sprintf("    %s  Unmatched      %d", mark(st.FilesUnmatched > 0), st.FilesUnmatched))
	}
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Records"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    %s  Matched        %d", check, st.RecordsMatched))
	lines = append(lines, fmt.Sprintf("    %s  Classified     %d", check, st.RecordsClassified))
	lines = append(lines, fmt.Sprintf("    %s  Discarded      %d", dot, st.RecordsDiscarded))
	lines = append(lines, fmt.Sprintf("    %s  Exception types %s", check, cyan.Render(fmt.Sprint(len(res.Entries)))))
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Run"))
	lines = append(lines, "")
	if st.TimedOut {
		lines = append(lines, fmt.Sprintf("    %s  Deadline       %s", red.Render("●"), red.Render(fmt.Sprintf("exceeded, %d files abandoned", st.FilesAbandoned))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Deadline       %s", check, dim.Render("met")))
	}
	lines = append(lines, fmt.Sprintf("    %s  Elapsed        %s", check, dim.Render(st.Elapsed.Round(time.Millisecond).String())))
	lines = append(lines, fmt.Sprintf("    %s  Report         %s", check, cyan.Render(shortenPath(cfg.Output))))
	if cfg.DuckDBPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  DuckDB         %s", check, dim.Render(shortenPath(cfg.DuckDBPath))))
	}
	if cfg.MetricsFile != "" {
		lines = append(lines, fmt.Sprintf("    %s  Metrics        %s", check, dim.Render(shortenPath(cfg.MetricsFile))))
	}
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("default (no file)")))
	}
	lines = append(lines, "")

	fmt.Fprintln(w, strings.Join(lines, "\n"))
}

// shortenPath replaces the home directory prefix with ~.
func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if rel, err := filepath.Rel(home, path); err == nil && !strings.HasPrefix(rel, "..") && filepath.IsAbs(path) {
		return filepath.Join("~", rel)
	}
	return path
}

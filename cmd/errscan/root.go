package main

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tinytelemetry/errscan/internal/model"
)

// boundFlags are mirrored into viper under the same key.
var boundFlags = []string{
	"prefix", "workers", "deadline", "mode", "output",
	"duckdb-path", "metrics-file", "log-level", "log-format", "quiet",
}

func newRootCmd(fs afero.Fs, stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()
	var configPath string

	cmd := &cobra.Command{
		Use:   "errscan [dir]",
		Short: "Count exceptions in a directory of log files",
		Long: `errscan scans the files of a directory whose names start with a prefix,
extracts ERROR records in any of the known log line formats and writes the
number of occurrences of every exception type, optionally per hour of day.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				v.Set("dir", args[0])
			}
			cfg, err := loadConfig(v, configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return runScan(cmd.Context(), cfg, fs, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate(fmt.Sprintf("errscan %s (commit %s, built %s, %s)\n", version, commit, buildTime, goVersion))

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "config file (default is $HOME/.config/errscan/config.yml)")
	flags.String("prefix", model.DefaultLogPrefix, "only files whose name starts with this prefix are scanned")
	flags.IntP("workers", "w", 0, "parallel workers (default: number of CPUs)")
	flags.Duration("deadline", model.DefaultDeadline, "time budget for the whole scan")
	flags.StringP("mode", "m", model.DefaultMode, "report layout: basic, extended or yaml")
	flags.StringP("output", "o", "", "report path (default: <dir>/"+model.DefaultReportName+")")
	flags.String("duckdb-path", "", "also write the report into this DuckDB database")
	flags.String("metrics-file", "", "write run metrics in Prometheus textfile format")
	flags.String("log-level", defaultLogLevel, "log level: debug, info, warn or error")
	flags.String("log-format", defaultLogFormat, "log format: text or json")
	flags.BoolP("quiet", "q", false, "do not print the run summary")

	for _, name := range boundFlags {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	return cmd
}

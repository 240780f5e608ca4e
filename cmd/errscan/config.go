package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tinytelemetry/errscan/internal/model"
	"github.com/tinytelemetry/errscan/internal/report"
)

const (
	defaultDir       = "."
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
)

// appConfig is internal runtime configuration.
type appConfig struct {
	Dir         string        `mapstructure:"dir"`
	Prefix      string        `mapstructure:"prefix"`
	Workers     int           `mapstructure:"workers"`
	Deadline    time.Duration `mapstructure:"deadline"`
	Mode        string        `mapstructure:"mode"`
	Output      string        `mapstructure:"output"`
	DuckDBPath  string        `mapstructure:"duckdb-path"`
	MetricsFile string        `mapstructure:"metrics-file"`
	LogLevel    string        `mapstructure:"log-level"`
	LogFormat   string        `mapstructure:"log-format"`
	Quiet       bool          `mapstructure:"quiet"`
	ConfigPath  string        `mapstructure:"-"` // not from config file
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dir", defaultDir)
	v.SetDefault("prefix", model.DefaultLogPrefix)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("deadline", model.DefaultDeadline)
	v.SetDefault("mode", model.DefaultMode)
	v.SetDefault("output", "")
	v.SetDefault("duckdb-path", "")
	v.SetDefault("metrics-file", "")
	v.SetDefault("log-level", defaultLogLevel)
	v.SetDefault("log-format", defaultLogFormat)
	v.SetDefault("quiet", false)
}

// loadConfig resolves flags, ERRSCAN_* environment variables and the
// optional config file into an appConfig. A missing config file is not an
// error.
func loadConfig(v *viper.Viper, configPath string) (appConfig, error) {
	var cfg appConfig

	home, homeErr := os.UserHomeDir()

	v.SetEnvPrefix("ERRSCAN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	setDefaults(v)

	switch {
	case configPath != "":
		v.SetConfigFile(configPath)
	case homeErr == nil:
		v.SetConfigFile(filepath.Join(home, ".config", "errscan", "config.yml"))
	}

	if configPath != "" || homeErr == nil {
		if err := v.ReadInConfig(); err != nil {
			var configFileNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
				return cfg, err
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()
	if _, err := os.Stat(cfg.ConfigPath); err != nil {
		cfg.ConfigPath = ""
	}

	if homeErr == nil && strings.HasPrefix(cfg.DuckDBPath, "~/") {
		cfg.DuckDBPath = filepath.Join(home, cfg.DuckDBPath[2:])
	}
	if cfg.Dir == "" {
		cfg.Dir = defaultDir
	}
	if cfg.Output == "" {
		cfg.Output = filepath.Join(cfg.Dir, model.DefaultReportName)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c appConfig) validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("invalid workers: %d", c.Workers)
	}
	if c.Deadline <= 0 {
		return fmt.Errorf("invalid deadline: %s", c.Deadline)
	}
	if !report.ValidMode(c.Mode) {
		return fmt.Errorf("invalid mode %q: must be %s, %s or %s", c.Mode, report.ModeBasic, report.ModeExtended, report.ModeYAML)
	}
	return nil
}

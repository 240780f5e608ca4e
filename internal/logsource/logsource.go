package logsource

import "github.com/tinytelemetry/errscan/internal/model"

// LogSource lists the log files of one scan and reads their content.
type LogSource interface {
	Files() ([]model.LogFile, error)
	Read(file model.LogFile) (string, error)
	Name() string
}

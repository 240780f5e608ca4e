package ingest

import "github.com/tinytelemetry/errscan/internal/model"

// StatSink receives one classified occurrence per call.
type StatSink interface {
	Update(name string, hour int) error
}

// FileReader returns the text content of a discovered log file.
type FileReader interface {
	Read(file model.LogFile) (string, error)
}

// Package metrics holds the Prometheus instruments of one scan run.
// Nothing is served over the network; a run can dump its registry in the
// node-exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// File outcomes.
const (
	FileScanned   = "scanned"
	FileFailed    = "failed"
	FileUnmatched = "unmatched"
)

// Record outcomes.
const (
	RecordClassified = "classified"
	RecordDiscarded  = "discarded"
)

// Metrics contains the Prometheus metrics recorded during a scan.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	FilesTotal          *prometheus.CounterVec
	RecordsTotal        *prometheus.CounterVec
	ExceptionTypes      prometheus.Gauge
	RunDurationSeconds  prometheus.Gauge
	RunTimedOut         prometheus.Gauge
	LastRunTimestampSec prometheus.Gauge
}

// New creates the metric set on a fresh registry.
func New(namespace string) (*Metrics, error) {
	if namespace == "" {
		namespace = "errscan"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_total",
				Help:      "Log files handled, by outcome",
			},
			[]string{"result"},
		),
		RecordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_total",
				Help:      "ERROR records extracted, by format and outcome",
			},
			[]string{"format", "outcome"},
		),
		ExceptionTypes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "exception_types",
			Help:      "Distinct exception types in the last run",
		}),
		RunDurationSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last scan",
		}),
		RunTimedOut: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_timed_out",
			Help:      "1 when the last scan hit its deadline",
		}),
		LastRunTimestampSec: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last scan finished",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.FilesTotal,
		m.RecordsTotal,
		m.ExceptionTypes,
		m.RunDurationSeconds,
		m.RunTimedOut,
		m.LastRunTimestampSec,
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return m, nil
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveFile counts one file outcome.
func (m *Metrics) ObserveFile(result string) {
	if m == nil {
		return
	}
	m.FilesTotal.WithLabelValues(result).Inc()
}

// ObserveRecord counts one record outcome for a format.
func (m *Metrics) ObserveRecord(format, outcome string) {
	if m == nil {
		return
	}
	m.RecordsTotal.WithLabelValues(format, outcome).Inc()
}

// ObserveRun records the run-level gauges.
func (m *Metrics) ObserveRun(elapsed time.Duration, exceptionTypes int, timedOut bool, finished time.Time) {
	if m == nil {
		return
	}
	m.RunDurationSeconds.Set(elapsed.Seconds())
	m.ExceptionTypes.Set(float64(exceptionTypes))
	if timedOut {
		m.RunTimedOut.Set(1)
	} else {
		m.RunTimedOut.Set(0)
	}
	m.LastRunTimestampSec.Set(float64(finished.Unix()))
}

// WriteTextfile writes the registry to path in the textfile collector
// format. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}
	return nil
}

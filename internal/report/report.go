package report

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/tinytelemetry/errscan/internal/model"
)

// Report modes.
const (
	ModeBasic    = "basic"
	ModeExtended = "extended"
	ModeYAML     = "yaml"
)

// NoFilesMessage is the whole report when a directory holds no log files.
const NoFilesMessage = "no log files were found"

// ValidMode reports whether mode names a known report layout.
func ValidMode(mode string) bool {
	switch mode {
	case ModeBasic, ModeExtended, ModeYAML:
		return true
	}
	return false
}

// Render writes entries to w in the given mode. Entries must already be
// sorted by exception identifier.
func Render(w io.Writer, mode string, entries []model.Entry) error {
	switch mode {
	case ModeBasic:
		return WriteBasic(w, entries)
	case ModeExtended:
		return WriteExtended(w, entries)
	case ModeYAML:
		return WriteYAML(w, entries)
	default:
		return fmt.Errorf("unknown report mode %q", mode)
	}
}

// Renderer returns a WriteFile render func that draws the snapshot of src.
// The snapshot is taken when the func runs.
func Renderer(mode string, src model.SnapshotSource) func(io.Writer) error {
	return func(w io.Writer) error {
		return Render(w, mode, src.Snapshot())
	}
}

// WriteBasic writes one "<exception> <total>" line per exception.
func WriteBasic(w io.Writer, entries []model.Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := fmt.Fprintf(bw, "%s %d\n", e.Name, e.Stat.Total); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteExtended writes one line per exception and nonzero hour.
func WriteExtended(w io.Writer, entries []model.Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		for _, h := range e.Stat.Hours() {
			if _, err := fmt.Fprintf(bw, "Exception type: %s hour: %02d quantity %d\n", e.Name, h.Hour, h.Count); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

type yamlReport struct {
	Exceptions []yamlException `yaml:"exceptions"`
}

type yamlException struct {
	Type  string     `yaml:"type"`
	Total uint64     `yaml:"total"`
	Hours []yamlHour `yaml:"hours"`
}

type yamlHour struct {
	Hour     int    `yaml:"hour"`
	Quantity uint64 `yaml:"quantity"`
}

// WriteYAML writes the snapshot as a single YAML document.
func WriteYAML(w io.Writer, entries []model.Entry) error {
	doc := yamlReport{Exceptions: make([]yamlException, 0, len(entries))}
	for _, e := range entries {
		ex := yamlException{Type: e.Name, Total: e.Stat.Total}
		for _, h := range e.Stat.Hours() {
			ex.Hours = append(ex.Hours, yamlHour{Hour: h.Hour, Quantity: h.Count})
		}
		doc.Exceptions = append(doc.Exceptions, ex)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}
	return enc.Close()
}

// WriteNoFiles writes the report used when no log files were found.
func WriteNoFiles(w io.Writer) error {
	_, err := fmt.Fprintln(w, NoFilesMessage)
	return err
}

// WriteFile renders into a temporary file next to path and renames it
// into place, so a failed write never leaves a partial report behind.
func WriteFile(fs afero.Fs, path string, render func(io.Writer) error) error {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	tmp, err := afero.TempFile(fs, filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	tmpName := tmp.Name()

	if err := render(tmp); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpName)
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("close report: %w", err)
	}
	if err := fs.Chmod(tmpName, 0644); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("chmod report: %w", err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}

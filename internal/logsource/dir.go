package logsource

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/tinytelemetry/errscan/internal/model"
)

// DirSource serves the regular files of one directory whose names start
// with a prefix. Subdirectories are not descended into.
type DirSource struct {
	fs     afero.Fs
	dir    string
	prefix string
}

// NewDirSource creates a source over dir. A nil fs means the OS filesystem.
func NewDirSource(fs afero.Fs, dir, prefix string) *DirSource {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &DirSource{fs: fs, dir: dir, prefix: prefix}
}

// Name returns the scanned directory.
func (s *DirSource) Name() string {
	return s.dir
}

// Files lists matching files sorted by name.
func (s *DirSource) Files() ([]model.LogFile, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.dir, err)
	}

	var files []model.LogFile
	for _, info := range infos {
		if info.IsDir() || !strings.HasPrefix(info.Name(), s.prefix) {
			continue
		}
		files = append(files, model.LogFile{
			Path: filepath.Join(s.dir, info.Name()),
			Name: info.Name(),
		})
	}
	return files, nil
}

// utf8BOM hides the first line-anchored header when left in place.
const utf8BOM = "\uFEFF"

// Read returns the whole file as text. A leading byte order mark is
// dropped and invalid UTF-8 sequences are replaced with U+FFFD.
func (s *DirSource) Read(file model.LogFile) (string, error) {
	data, err := afero.ReadFile(s.fs, file.Path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", file.Name, err)
	}
	text := strings.TrimPrefix(string(data), utf8BOM)
	return strings.ToValidUTF8(text, "\uFFFD"), nil
}

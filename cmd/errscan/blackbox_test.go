package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	buildOnce sync.Once
	binPath   string
	buildErr  error
)

func errscanBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("builds the binary")
	}
	buildOnce.Do(func() {
		tmpDir, err := os.MkdirTemp("", "errscan-blackbox-bin-*")
		if err != nil {
			buildErr = fmt.Errorf("mktemp bin dir: %w", err)
			return
		}
		binPath = filepath.Join(tmpDir, "errscan")

		cmd := exec.Command("go", "build", "-o", binPath, ".")
		var out bytes.Buffer
		cmd.Stdout = &out
		cmd.Stderr = &out
		if err := cmd.Run(); err != nil {
			buildErr = fmt.Errorf("build errscan binary: %w\n%s", err, out.String())
		}
	})
	if buildErr != nil {
		t.Fatalf("%v", buildErr)
	}
	return binPath
}

func TestBlackBox_ExitStatus(t *testing.T) {
	bin := errscanBinary(t)
	logs := writeLogDir(t, map[string]string{"log1.txt": log1})
	empty := t.TempDir()
	absent := filepath.Join(t.TempDir(), "absent.yml")

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{"report written", []string{logs, "-q"}, 0},
		{"no log files", []string{empty, "-q"}, 0},
		{"missing directory", []string{filepath.Join(empty, "nope"), "-q"}, 1},
		{"invalid mode", []string{logs, "-q", "--mode", "csv"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(bin, append(tt.args, "--config", absent)...)
			var out bytes.Buffer
			cmd.Stdout = &out
			cmd.Stderr = &out
			err := cmd.Run()

			code := 0
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				code = exitErr.ExitCode()
			} else if err != nil {
				t.Fatalf("run errscan: %v", err)
			}
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\n%s", code, tt.wantCode, out.String())
			}
		})
	}
}

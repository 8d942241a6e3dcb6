package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"
)

func TestResolveDir(t *testing.T) {
	t.Setenv("LOGS_FOLDER", "")
	t.Setenv("DATA_PATH", "")

	if got := ResolveDir("/opt/safeloan/bin/safeloan", nil); got != filepath.Join("/opt/safeloan/bin", "logs") {
		t.Errorf("Expected binary-relative logs, got %s", got)
	}
	if got := ResolveDir("", errors.New("no executable")); got != "logs" {
		t.Errorf("Expected relative logs fallback, got %s", got)
	}

	t.Setenv("DATA_PATH", "/var/lib/safeloan")
	if got := ResolveDir("", nil); got != filepath.Join("/var/lib/safeloan", "logs") {
		t.Errorf("Expected data path logs, got %s", got)
	}

	t.Setenv("LOGS_FOLDER", "/tmp/custom")
	if got := ResolveDir("", nil); got != "/tmp/custom" {
		t.Errorf("Expected LOGS_FOLDER to win, got %s", got)
	}
}

func TestInit_WritesLogFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOGS_FOLDER", dir)

	if err := Init(true); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	log.Info().Str("component", "test").Msg("logging initialized")

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("Expected log file: %v", err)
	}
	if !strings.Contains(string(data), "logging initialized") {
		t.Errorf("Expected message in log file, got %q", data)
	}
}

func TestNewFileWriter_UnwritableParent(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileWriter(filepath.Join(file, "logs")); err == nil {
		t.Error("Expected error when the log directory cannot be created")
	}
}

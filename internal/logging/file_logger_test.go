package logging

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
)

func newTestFileLogger(t *testing.T, level LogLevel) (*FileLogger, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "logs", "gdsync.log")
	logger, err := NewFileLogger(FileLoggerConfig{FilePath: logPath, Level: level})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	return logger, logPath
}

func readEntries(t *testing.T, path string) []LogEntry {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	var entries []LogEntry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("Failed to parse log entry %q: %v", scanner.Text(), err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestFileLogger_CreatesFileAndDirectory(t *testing.T) {
	logger, logPath := newTestFileLogger(t, INFO)
	t.Cleanup(func() { _ = logger.Close() })

	if _, err := os.Stat(logPath); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if logger.Path() != logPath {
		t.Errorf("Path() = %q, want %q", logger.Path(), logPath)
	}
}

func TestFileLogger_WritesJSONLines(t *testing.T) {
	logger, logPath := newTestFileLogger(t, DEBUG)

	logger.Debug("listing started", F("root", "/data"))
	logger.Info("listing done", F("entries", 12))
	logger.Warn("subfolder skipped")
	logger.Error("upload failed", F("error", errors.New("quota")))

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	entries := readEntries(t, logPath)
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	if entries[0].Level != "DEBUG" || entries[0].Message != "listing started" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[0].Fields["root"] != "/data" {
		t.Errorf("Fields[root] = %v", entries[0].Fields["root"])
	}
	if entries[3].Fields["error"] != "quota" {
		t.Errorf("error field should be flattened to its message, got %v", entries[3].Fields["error"])
	}
}

func TestFileLogger_LevelFilteringAndSetLevel(t *testing.T) {
	logger, logPath := newTestFileLogger(t, WARN)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.SetLevel(ERROR)
	logger.Warn("dropped")
	logger.Error("kept")
	_ = logger.Close()

	if got := len(readEntries(t, logPath)); got != 2 {
		t.Fatalf("expected 2 entries, got %d", got)
	}
}

func TestFileLogger_TraceIDs(t *testing.T) {
	logger, logPath := newTestFileLogger(t, INFO)

	logger.WithTraceID("trace-123").Info("direct")
	ctx := ContextWithTraceID(context.Background(), "ctx-trace-789")
	logger.WithContext(ctx).Info("from context")
	logger.WithContext(context.Background()).Info("untraced")
	_ = logger.Close()

	entries := readEntries(t, logPath)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []string{"trace-123", "ctx-trace-789", ""}
	for i, w := range want {
		if entries[i].TraceID != w {
			t.Errorf("entry %d TraceID = %q, want %q", i, entries[i].TraceID, w)
		}
	}
}

func TestFileLogger_Rotate(t *testing.T) {
	logger, logPath := newTestFileLogger(t, INFO)

	logger.Info("before rotation")
	if err := logger.Rotate(); err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	logger.Info("after rotation")
	_ = logger.Close()

	files, err := filepath.Glob(filepath.Join(filepath.Dir(logPath), "gdsync*.log"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) < 2 {
		t.Fatalf("expected a rotated backup next to the log, got %v", files)
	}
	entries := readEntries(t, logPath)
	if len(entries) != 1 || entries[0].Message != "after rotation" {
		t.Fatalf("unexpected active log contents: %+v", entries)
	}
}

func TestFileLogger_WritesAfterCloseAreDropped(t *testing.T) {
	logger, logPath := newTestFileLogger(t, INFO)
	derived := logger.WithTraceID("t")

	_ = logger.Close()
	derived.Info("ignored")

	if got := len(readEntries(t, logPath)); got != 0 {
		t.Fatalf("expected no entries, got %d", got)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

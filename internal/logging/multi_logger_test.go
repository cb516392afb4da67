package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func plainConsole(buf *bytes.Buffer, level LogLevel) *ConsoleLogger {
	return NewConsoleLogger(ConsoleLoggerConfig{Writer: buf, Level: level})
}

func TestMultiLogger_LogsToAll(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	multi := NewMultiLogger(plainConsole(&buf1, INFO), plainConsole(&buf2, INFO))

	multi.Info("pair compared", F("records", 3))

	if buf1.String() == "" || buf1.String() != buf2.String() {
		t.Fatalf("loggers produced different output:\n%q\n%q", buf1.String(), buf2.String())
	}
	if !strings.Contains(buf1.String(), "records=3") {
		t.Errorf("missing field in %q", buf1.String())
	}
}

func TestMultiLogger_TraceAndLevel(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiLogger(plainConsole(&buf, DEBUG))

	ctx := ContextWithTraceID(context.Background(), "abcdef0123456789")
	multi.WithContext(ctx).Info("traced")
	if !strings.Contains(buf.String(), "[abcdef01]") {
		t.Errorf("expected short trace id in %q", buf.String())
	}

	buf.Reset()
	multi.SetLevel(ERROR)
	multi.Debug("hidden")
	multi.Warn("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected nothing below ERROR, got %q", buf.String())
	}
	multi.Error("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("ERROR line missing: %q", buf.String())
	}
}

func TestMultiLogger_FileAndConsole(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	fileLogger, err := NewFileLogger(FileLoggerConfig{FilePath: logPath, Level: INFO})
	if err != nil {
		t.Fatalf("Failed to create file logger: %v", err)
	}
	var buf bytes.Buffer
	multi := NewMultiLogger(fileLogger, plainConsole(&buf, INFO))

	multi.Info("test message", F("key", "value"))
	if err := multi.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if buf.Len() == 0 {
		t.Error("Console didn't receive message")
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !bytes.Contains(data, []byte(`"key":"value"`)) {
		t.Errorf("file log missing field: %s", data)
	}
}

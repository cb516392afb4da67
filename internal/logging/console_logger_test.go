package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestRedactSensitiveData(t *testing.T) {
	tests := []struct {
		name  string
		input string
		leak  string
	}{
		{"bearer", "Authorization header Bearer ya29.a0AfH6SMB", "ya29.a0AfH6SMB"},
		{"refresh token", `{"refresh_token":"1//0gabc"}`, "1//0gabc"},
		{"client secret", "client_secret=GOCSPX-xyz", "GOCSPX-xyz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := redactSensitiveData(tt.input)
			if strings.Contains(got, tt.leak) {
				t.Errorf("redactSensitiveData(%q) = %q still contains secret", tt.input, got)
			}
			if !strings.Contains(got, "[REDACTED]") {
				t.Errorf("redactSensitiveData(%q) = %q has no marker", tt.input, got)
			}
		})
	}
}

func TestConsoleLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(ConsoleLoggerConfig{Writer: &buf, Level: INFO, RedactSensitive: true})

	logger.Info("token refreshed", F("token", "Bearer abc.def"), F("account", "me"))

	line := buf.String()
	if !strings.HasPrefix(line, "INFO  token refreshed ") {
		t.Errorf("unexpected prefix: %q", line)
	}
	if strings.Contains(line, "abc.def") {
		t.Errorf("token leaked: %q", line)
	}
	if !strings.Contains(line, "account=me") {
		t.Errorf("missing field: %q", line)
	}
}

func TestConsoleLogger_ShortTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(ConsoleLoggerConfig{Writer: &buf, Level: DEBUG})

	logger.WithTraceID("abc").Debug("short id")
	if !strings.Contains(buf.String(), "[abc]") {
		t.Errorf("expected full short trace id, got %q", buf.String())
	}
}

package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/dl-alexandre/gdsync/internal/utils"
	json "github.com/goccy/go-json"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, utils.ExitSuccess},
		{"exit error", &ExitError{Code: utils.ExitBatchPartialFailure}, utils.ExitBatchPartialFailure},
		{"app error", utils.NewAppError(utils.NewCLIError(utils.ErrCodeProfileLocked, "busy").Build()), utils.ExitProfileLocked},
		{"plain error", errors.New("boom"), utils.ExitUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOutputWriter_WriteErrorJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	out := NewOutputWriter(types.OutputFormatJSON, false, false).WithStreams(&stdout, &stderr)

	err := out.WriteError("sync", utils.NewCLIError(utils.ErrCodeProfileNotFound, "Profile not found: x").Build())

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != utils.ExitProfileNotFound {
		t.Fatalf("WriteError() = %v, want exit %d", err, utils.ExitProfileNotFound)
	}

	var envelope types.CLIOutput
	if err := json.Unmarshal(stdout.Bytes(), &envelope); err != nil {
		t.Fatalf("stdout is not a JSON envelope: %v\n%s", err, stdout.String())
	}
	if envelope.Command != "sync" || len(envelope.Errors) != 1 || envelope.Errors[0].Code != utils.ErrCodeProfileNotFound {
		t.Errorf("unexpected envelope: %+v", envelope)
	}
	if envelope.TraceID == "" {
		t.Error("trace id missing")
	}
	if stderr.Len() != 0 {
		t.Errorf("stderr = %q, want empty", stderr.String())
	}
}

func TestOutputWriter_WriteErrorTable(t *testing.T) {
	var stdout, stderr bytes.Buffer
	out := NewOutputWriter(types.OutputFormatTable, false, false).WithStreams(&stdout, &stderr)

	_ = out.Fail("compare", errors.New("disk on fire"), utils.ErrCodeUnknown)

	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", stdout.String())
	}
	if got := stderr.String(); got != "Error: disk on fire\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestOutputWriter_Table(t *testing.T) {
	var stdout, stderr bytes.Buffer
	out := NewOutputWriter(types.OutputFormatTable, false, false).WithStreams(&stdout, &stderr)

	if err := out.WriteSuccess("config.show", keyValueView{{Key: "maxRetries", Value: "3"}, {Key: "logFile"}}); err != nil {
		t.Fatal(err)
	}
	text := stdout.String()
	for _, want := range []string{"KEY", "VALUE", "maxRetries", "3", "logFile", "-"} {
		if !strings.Contains(text, want) {
			t.Errorf("table missing %q:\n%s", want, text)
		}
	}
}

func TestOutputWriter_EmptyTableAndQuiet(t *testing.T) {
	var stdout, stderr bytes.Buffer
	out := NewOutputWriter(types.OutputFormatTable, false, false).WithStreams(&stdout, &stderr)
	_ = out.WriteSuccess("history", historyView{})
	if got := stdout.String(); got != "No sync runs recorded\n" {
		t.Errorf("stdout = %q", got)
	}

	stdout.Reset()
	quiet := NewOutputWriter(types.OutputFormatTable, true, false).WithStreams(&stdout, &stderr)
	_ = quiet.WriteSuccess("history", historyView{})
	quiet.Log("hidden")
	if stdout.Len() != 0 || stderr.Len() != 0 {
		t.Errorf("quiet writer printed %q / %q", stdout.String(), stderr.String())
	}
}

func TestFormatSize(t *testing.T) {
	if got := formatSize(0); got != "-" {
		t.Errorf("formatSize(0) = %q", got)
	}
	if got := formatSize(1536); got != "1.5 KiB" {
		t.Errorf("formatSize(1536) = %q", got)
	}
}

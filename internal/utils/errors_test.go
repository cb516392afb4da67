package utils

import (
	"errors"
	"fmt"
	"testing"
)

func TestCLIErrorBuilder(t *testing.T) {
	cliErr := NewCLIError(ErrCodeFileNotFound, "missing").
		WithHTTPStatus(404).
		WithRetryable(false).
		WithContext("path", "a/b.txt").
		Build()

	if cliErr.Code != ErrCodeFileNotFound {
		t.Errorf("Code = %q", cliErr.Code)
	}
	if cliErr.HTTPStatus != 404 {
		t.Errorf("HTTPStatus = %d", cliErr.HTTPStatus)
	}
	if cliErr.Context["path"] != "a/b.txt" {
		t.Errorf("Context[path] = %v", cliErr.Context["path"])
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeAuthRequired, ExitAuthRequired},
		{ErrCodeFileNotFound, ExitFileNotFound},
		{ErrCodeBatchPartialFailure, ExitBatchPartialFailure},
		{ErrCodeProfileLocked, ExitProfileLocked},
		{ErrCodeCancelled, ExitCancelled},
		{"SOMETHING_ELSE", ExitUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := GetExitCode(tt.code); got != tt.want {
				t.Errorf("GetExitCode(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestErrorCodeUnwraps(t *testing.T) {
	base := NewAppError(NewCLIError(ErrCodeRateLimited, "slow down").Build())
	wrapped := fmt.Errorf("listing: %w", base)

	if got := ErrorCode(wrapped); got != ErrCodeRateLimited {
		t.Errorf("ErrorCode() = %q, want %q", got, ErrCodeRateLimited)
	}
	if got := ErrorCode(errors.New("plain")); got != "" {
		t.Errorf("ErrorCode(plain) = %q, want empty", got)
	}
	if base.Error() != "RATE_LIMITED: slow down" {
		t.Errorf("Error() = %q", base.Error())
	}
}

func TestAsCLIErrorFallback(t *testing.T) {
	cliErr := AsCLIError(errors.New("boom"), ErrCodeInternalError)
	if cliErr.Code != ErrCodeInternalError || cliErr.Message != "boom" {
		t.Errorf("unexpected CLIError: %+v", cliErr)
	}
}

func TestErrorMessage(t *testing.T) {
	appErr := NewAppError(NewCLIError(ErrCodeFileNotFound, "File not found: a.txt").Build())
	if got := ErrorMessage(fmt.Errorf("wrap: %w", appErr)); got != "File not found: a.txt" {
		t.Errorf("ErrorMessage(app) = %q", got)
	}
	if got := ErrorMessage(errors.New("disk full")); got != "disk full" {
		t.Errorf("ErrorMessage(plain) = %q", got)
	}
}

package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestUserAgent(t *testing.T) {
	prev := Version
	Version = "1.2.3"
	defer func() { Version = prev }()

	ua := UserAgent()
	if !strings.HasPrefix(ua, "gdsync/1.2.3 ") || !strings.Contains(ua, runtime.GOOS) {
		t.Errorf("UserAgent() = %q", ua)
	}
	if got := Get().String(); !strings.HasPrefix(got, "gdsync 1.2.3 ") {
		t.Errorf("String() = %q", got)
	}
}

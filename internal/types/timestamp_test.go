package types

import (
	"testing"
	"time"
)

func TestFormatTimestamp(t *testing.T) {
	loc := time.FixedZone("plus2", 2*60*60)
	got := FormatTimestamp(time.Date(2024, 3, 1, 12, 30, 15, 123456789, loc))
	if got != "2024-03-01T10:30:15.123Z" {
		t.Errorf("FormatTimestamp = %q", got)
	}
}

func TestNormalizeTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"garbage", ""},
		{"2024-01-02T03:04:05.000Z", "2024-01-02T03:04:05.000Z"},
		{"2024-01-02T03:04:05Z", "2024-01-02T03:04:05.000Z"},
		{"2024-01-02T05:04:05.5+02:00", "2024-01-02T03:04:05.500Z"},
	}
	for _, tt := range tests {
		if got := NormalizeTimestamp(tt.in); got != tt.want {
			t.Errorf("NormalizeTimestamp(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

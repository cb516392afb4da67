package types

import "time"

// TimestampLayout is the normalized modification time format shared by
// local and Drive listings. Strings in this layout order chronologically
// when compared lexically.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in UTC with millisecond precision
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts the normalized layout and any RFC 3339 time
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// NormalizeTimestamp rewrites an RFC 3339 time into TimestampLayout.
// Empty or unparseable input yields "".
func NormalizeTimestamp(s string) string {
	if s == "" {
		return ""
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return ""
	}
	return FormatTimestamp(t)
}

package utils

import "time"

// NowUTC returns the current time in UTC truncated to microseconds, the
// finest precision every storage backend round-trips.
func NowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// FormatRFC3339 formats t in RFC3339 with nanosecond precision
func FormatRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseRFC3339 parses a time string in RFC3339 format
func ParseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

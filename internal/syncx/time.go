package syncx

import (
	"strconv"
	"time"
)

// NowMs returns the current Unix milliseconds timestamp (UTC).
func NowMs() int64 {
	return time.Now().UTC().UnixMilli()
}

// RFC3339 converts Unix milliseconds to an RFC3339 timestamp string.
func RFC3339(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339Nano)
}

// ParseTimeToMs converts a textual time to Unix milliseconds.
// Accepts RFC3339 and numeric epoch milliseconds.
func ParseTimeToMs(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	// RFC3339Nano accepts both whole-second and fractional timestamps.
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC().UnixMilli(), true
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, true
	}
	return 0, false
}

// epochMs extracts a millisecond timestamp from a decoded JSON value.
// Clients send either RFC3339 strings or numeric epoch milliseconds.
func epochMs(v any) (int64, bool) {
	switch t := v.(type) {
	case string:
		return ParseTimeToMs(t)
	case float64:
		return int64(t), true
	case int64:
		return t, true
	}
	return 0, false
}

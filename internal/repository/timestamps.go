package repository

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the layout of the Datetime column in the load data.
const TimestampLayout = time.DateTime

var timestampLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04",
}

// parseTimestamp reads a naive timestamp. Zones are dropped and the wall clock kept.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return wallClock(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// wallClock reinterprets t's wall clock as UTC.
func wallClock(t time.Time) time.Time {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, mo, d, h, mi, s, t.Nanosecond(), time.UTC)
}

// scanTimestamp converts whatever the driver returned for a timestamp column.
func scanTimestamp(v interface{}) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return wallClock(x), nil
	case string:
		return parseTimestamp(x)
	case []byte:
		return parseTimestamp(string(x))
	case int64:
		return time.Unix(x, 0).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

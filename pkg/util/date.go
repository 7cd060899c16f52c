package util

import (
	"fmt"
	"time"
)

// DateLayout is the only accepted reference date format.
const DateLayout = time.DateOnly

// ParseDate parses YYYY-MM-DD as midnight UTC. Whitespace and other layouts are rejected.
func ParseDate(s string) (time.Time, error) {
	if len(s) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("date %q: want %s", s, DateLayout)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", s, err)
	}
	return t, nil
}

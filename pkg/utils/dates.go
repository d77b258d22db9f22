package utils

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseDate parses a free-form date string, tolerating natural-language
// text after the date ("March 5, 2024 at the latest"). It tries the
// whole string first, then retries with trailing tokens dropped until a
// parse succeeds. The returned time is truncated to midnight UTC.
// Returns false if no prefix of the input parses as a date.
func ParseDate(value string) (time.Time, bool) {
	fields := strings.Fields(value)
	for n := len(fields); n > 0; n-- {
		candidate := strings.TrimRight(strings.Join(fields[:n], " "), ",;:.%")
		if candidate == "" {
			continue
		}
		t, err := dateparse.ParseAny(candidate)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

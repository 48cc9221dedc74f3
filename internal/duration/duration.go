// Package duration provides parsing for the human-readable window bounds
// accepted by the dashboard and export commands.
package duration

import (
	"fmt"
	"time"
)

// Parse parses relative durations like "1w", "30d", "6mo" and returns the
// time that far in the past from now.
func Parse(s string) (time.Time, error) {
	now := time.Now()

	var d time.Duration
	var n int
	var unit string

	if _, err := fmt.Sscanf(s, "%d%s", &n, &unit); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration format: %s (use e.g., 1w, 30d, 6mo)", s)
	}

	switch unit {
	case "m", "min", "mins":
		d = time.Duration(n) * time.Minute
	case "h", "hr", "hrs", "hour", "hours":
		d = time.Duration(n) * time.Hour
	case "d", "day", "days":
		d = time.Duration(n) * 24 * time.Hour
	case "w", "wk", "wks", "week", "weeks":
		d = time.Duration(n) * 7 * 24 * time.Hour
	case "mo", "month", "months":
		d = time.Duration(n) * 30 * 24 * time.Hour
	case "y", "yr", "yrs", "year", "years":
		d = time.Duration(n) * 365 * 24 * time.Hour
	default:
		return time.Time{}, fmt.Errorf("unknown duration unit: %s", unit)
	}

	return now.Add(-d), nil
}

// ParseBound parses a window bound given either as a calendar date
// ("2025-06-01") or as a relative duration in the past ("30d").
func ParseBound(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return t, nil
	}

	t, err := Parse(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid window bound: %s (use a date like 2025-06-01 or a duration like 30d)", s)
	}
	return t, nil
}

package utils

import (
	"strings"
	"time"
)

// OptionalString trims s and returns nil when nothing is left.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// TimeWindow returns the [from, to] range an admin time filter selects,
// relative to now. from is nil when the window has no lower bound. Weeks start
// on Monday.
func TimeWindow(filter string, now time.Time) (from *time.Time, to time.Time, ok bool) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	// Monday = 0.
	weekday := (int(now.Weekday()) + 6) % 7
	weekStart := midnight.AddDate(0, 0, -weekday)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())

	var start time.Time
	to = now
	switch filter {
	case "today":
		start = midnight
	case "this_week":
		start = weekStart
	case "last_week":
		start = weekStart.AddDate(0, 0, -7)
		to = weekStart
	case "this_month":
		start = monthStart
	case "last_month":
		start = monthStart.AddDate(0, -1, 0)
		to = monthStart
	case "this_year":
		start = yearStart
	case "last_year":
		start = yearStart.AddDate(-1, 0, 0)
		to = yearStart
	default:
		return nil, now, false
	}
	return &start, to, true
}

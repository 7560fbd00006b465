package domain

import (
	"fmt"
	"time"
)

// TimeRange is a named lookback window for charting.
type TimeRange string

// Supported time ranges.
const (
	Range3Months TimeRange = "3months"
	Range6Months TimeRange = "6months"
	Range1Year   TimeRange = "1year"
	RangeAll     TimeRange = "all"

	DefaultTimeRange = Range6Months
)

var rangeMonths = map[TimeRange]int{
	Range3Months: 3,
	Range6Months: 6,
	Range1Year:   12,
}

// ParseTimeRange validates a range name. The empty string selects
// DefaultTimeRange.
func ParseTimeRange(s string) (TimeRange, error) {
	if s == "" {
		return DefaultTimeRange, nil
	}
	r := TimeRange(s)
	if r == RangeAll {
		return r, nil
	}
	if _, ok := rangeMonths[r]; !ok {
		return "", fmt.Errorf("unknown time range %q", s)
	}
	return r, nil
}

// Start returns the first instant inside the window ending at now. It
// returns false for RangeAll and for names ParseTimeRange would reject.
func (r TimeRange) Start(now time.Time) (time.Time, bool) {
	months, ok := rangeMonths[r]
	if !ok {
		return time.Time{}, false
	}
	return subMonths(now, months), true
}

// FilterByRange keeps the entries whose date lies in [start, now], in input
// order. Undated entries are always dropped; RangeAll keeps every dated entry.
func FilterByRange(entries []WeightEntry, r TimeRange, now time.Time) []WeightEntry {
	start, bounded := r.Start(now)
	out := make([]WeightEntry, 0, len(entries))
	for _, e := range entries {
		if e.Date.IsZero() {
			continue
		}
		if bounded {
			t := e.Date.Time()
			if t.Before(start) || t.After(now) {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// subMonths moves t back n calendar months, clamping the day to the length
// of the target month (Mar 31 minus one month is the last day of February).
func subMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m-time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func daysIn(t time.Time) int {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Package timeutil provides calendar-day windowing helpers shared by the
// analytics queries. All bucketing works on UTC day keys so that results do
// not depend on the host timezone.
package timeutil

import "time"

// DayFormat is the canonical calendar-day key layout.
const DayFormat = "2006-01-02"

// DayKey returns the UTC calendar-day key for a timestamp.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// Cutoff returns the start of a trailing window of windowDays days ending at
// now. A negative windowDays is treated as zero.
func Cutoff(now time.Time, windowDays int) time.Time {
	if windowDays < 0 {
		windowDays = 0
	}
	return now.UTC().AddDate(0, 0, -windowDays)
}

// StartOfDay truncates a timestamp to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInRange enumerates the calendar-day keys from start through end
// inclusive, in ascending order. An empty slice is returned when end falls
// before start's day.
func DaysInRange(start, end time.Time) []string {
	first := StartOfDay(start)
	last := StartOfDay(end)
	if last.Before(first) {
		return []string{}
	}
	out := make([]string, 0, int(last.Sub(first).Hours()/24)+1)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(DayFormat))
	}
	return out
}

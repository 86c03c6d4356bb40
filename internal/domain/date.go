package domain

import "time"

// DayFormat is the canonical textual form of a rate date.
const DayFormat = "2006-01-02"

// Day normalizes t to midnight UTC of its calendar date, the canonical
// representation of a rate date. The calendar date is taken in t's own
// location, so "today in Harare" maps to the Harare date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// FormatDay renders t's calendar date as yyyy-mm-dd.
func FormatDay(t time.Time) string {
	return Day(t).Format(DayFormat)
}

// ParseDay parses a yyyy-mm-dd string into a midnight-UTC date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

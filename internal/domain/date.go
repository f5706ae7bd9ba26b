package domain

import "time"

// DateOf truncates an instant to its calendar date at UTC midnight.
// All normalized ticket dates are stored in this form, so equality and
// ordering comparisons work at day granularity.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two optional dates fall on the same calendar day.
func SameDay(a *time.Time, b time.Time) bool {
	if a == nil {
		return false
	}
	return a.Equal(DateOf(b))
}

// FormatDisplay renders an optional date as dd/mm/yyyy, or an empty
// string when absent.
func FormatDisplay(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format("02/01/2006")
}

// Package timeutil provides calendar helpers for the company timezone.
// Workday checks operate on the calendar date carried by the time value,
// so a date built in any location keeps its own weekday.
package timeutil

import (
	"fmt"
	"sync/atomic"
	"time"
)

var companyTZ atomic.Pointer[time.Location]

func init() {
	companyTZ.Store(time.UTC)
}

// SetLocation changes the company timezone used by ParseDate.
// A nil location resets it to UTC.
func SetLocation(loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	companyTZ.Store(loc)
}

// Location returns the company timezone.
func Location() *time.Location {
	return companyTZ.Load()
}

// IsWeekend checks if the calendar date of t is a Saturday or a Sunday.
func IsWeekend(t time.Time) bool {
	weekday := t.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// IsWorkday checks if the calendar date of t is Monday through Friday.
func IsWorkday(t time.Time) bool {
	return !IsWeekend(t)
}

// NextWorkday returns the start of the first workday after t.
func NextWorkday(t time.Time) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
	for IsWeekend(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// FormatDate is the standard date layout (YYYY-MM-DD).
const FormatDate = "2006-01-02"

// FormatDateStr formats the calendar date of t as YYYY-MM-DD.
func FormatDateStr(t time.Time) string {
	return t.Format(FormatDate)
}

// ParseDate parses a YYYY-MM-DD date in the company timezone.
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(FormatDate, value, Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("timeutil: parse date %q: %w", value, err)
	}
	return t, nil
}

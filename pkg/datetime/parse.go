// Package datetime provides civil date utility functions.
package datetime

import (
	"fmt"
	"strings"
	"time"

	cdt "cloudeng.io/datetime"
	"github.com/iwvelando/temple-portal/pkg/constants"
)

const (
	// DateLayout is the format expected in forms and config files and is also
	// the output date format.
	DateLayout = constants.DateLayout

	hoursPerDay = 24
)

// MustParseDate parses a civil date and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseDate(dateStr string) time.Time {
	t, err := ParseDate(dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDate parses a YYYY-MM-DD date, or an RFC 3339 timestamp whose calendar
// date is taken as written, into midnight UTC of that date.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(DateLayout, trimmed); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected %s", value, DateLayout)
	}
	return Civil(t), nil
}

// Civil strips the time of day and location from t, keeping the calendar
// date as seen in t's own location.
func Civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from start to end.
// Time of day is ignored.
func DaysBetween(start, end time.Time) int {
	return int(Civil(end).Sub(Civil(start)).Hours() / hoursPerDay)
}

// ValidDay reports whether day exists in the given month of the given year.
func ValidDay(year int, month time.Month, day int) bool {
	if month < time.January || month > time.December {
		return false
	}
	return day >= 1 && day <= int(cdt.DaysInMonth(year, cdt.Month(month)))
}

// FormatDate renders t in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

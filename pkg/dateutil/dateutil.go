package dateutil

import (
	"fmt"
	"time"
)

// ISODate is the layout used for date keys and user input
const ISODate = "2006-01-02"

// DaysInMonth returns the number of days in the given month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsWeekend returns true if the date is Saturday or Sunday
func IsWeekend(date time.Time) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// ParseDate parses a date string in the accepted input formats. The result
// is in ref's location, and month-day input takes ref's year.
func ParseDate(dateStr string, ref time.Time) (time.Time, error) {
	formats := []string{
		ISODate,
		"2006/01/02",
		"2006/1/2",
		"01-02",
		"1/2",
	}

	loc := ref.Location()
	for _, format := range formats {
		t, err := time.ParseInLocation(format, dateStr, loc)
		if err != nil {
			continue
		}
		if t.Year() != 0 {
			return t, nil
		}

		// Year 0 is a leap year, so 02-29 parses; check it exists in ref's year.
		d := time.Date(ref.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		if d.Month() != t.Month() || d.Day() != t.Day() {
			return time.Time{}, fmt.Errorf("%s does not exist in %d", dateStr, ref.Year())
		}
		return d, nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", dateStr)
}

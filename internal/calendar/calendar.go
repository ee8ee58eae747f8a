package calendar

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/username/workday-reminder-bot/pkg/dateutil"
)

// Date is a calendar day without time or zone
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in loc
func DateOf(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// NewDate builds a Date, normalizing overflow the way time.Date does
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC), time.UTC)
}

// ParseDate parses an ISO key (YYYY-MM-DD)
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateutil.ISODate, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t, time.UTC), nil
}

// String returns the ISO key, e.g. 2025-05-30
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Time returns midnight of d in loc
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Weekday returns the day of the week
func (d Date) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

// AddDays returns d shifted by n days
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time(time.UTC).AddDate(0, 0, n), time.UTC)
}

// Before reports whether d is strictly earlier than other
func (d Date) Before(other Date) bool {
	return d.Time(time.UTC).Before(other.Time(time.UTC))
}

// HolidaySet is a set of dates keyed by their ISO string
type HolidaySet map[string]struct{}

// NewHolidaySet builds a set from dates
func NewHolidaySet(dates ...Date) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set.Add(d)
	}
	return set
}

// Add inserts d
func (s HolidaySet) Add(d Date) {
	s[d.String()] = struct{}{}
}

// Contains reports whether d is a member. A nil set contains nothing.
func (s HolidaySet) Contains(d Date) bool {
	_, ok := s[d.String()]
	return ok
}

// Keys returns the sorted ISO keys
func (s HolidaySet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HolidayLookup answers public-holiday questions from an external source
type HolidayLookup interface {
	// IsHoliday reports whether date is a public holiday
	IsHoliday(ctx context.Context, date Date) (bool, error)

	// HolidaysInMonth returns every public holiday in the month
	HolidaysInMonth(ctx context.Context, year int, month time.Month) (HolidaySet, error)
}

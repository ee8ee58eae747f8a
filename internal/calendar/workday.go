package calendar

import (
	"errors"
	"time"

	"github.com/username/workday-reminder-bot/internal/apperror"
	"github.com/username/workday-reminder-bot/pkg/dateutil"
)

// ErrNoWorkday is returned when weekends and holidays cover the whole month
var ErrNoWorkday = errors.New("no workday in month")

// IsWorkday reports whether d is neither a weekend day nor in holidays
func IsWorkday(d Date, holidays HolidaySet) bool {
	if dateutil.IsWeekend(d.Time(time.UTC)) {
		return false
	}
	return !holidays.Contains(d)
}

// LastValidWorkday returns the last day of the month that is not a
// Saturday, Sunday or holiday. The backward walk stops at day 1; it never
// returns a date from another month.
func LastValidWorkday(holidays HolidaySet, year int, month time.Month) (Date, error) {
	if err := validateMonth(year, month); err != nil {
		return Date{}, err
	}

	for day := dateutil.DaysInMonth(year, month); day >= 1; day-- {
		candidate := Date{Year: year, Month: month, Day: day}
		if IsWorkday(candidate, holidays) {
			return candidate, nil
		}
	}

	return Date{}, apperror.New(apperror.KindInvalidArgument, "LastValidWorkday", ErrNoWorkday)
}

// WorkdaysInMonth lists the workdays of the month in ascending order
func WorkdaysInMonth(holidays HolidaySet, year int, month time.Month) ([]Date, error) {
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}

	days := dateutil.DaysInMonth(year, month)
	workdays := make([]Date, 0, days)
	for day := 1; day <= days; day++ {
		d := Date{Year: year, Month: month, Day: day}
		if IsWorkday(d, holidays) {
			workdays = append(workdays, d)
		}
	}
	return workdays, nil
}

func validateMonth(year int, month time.Month) error {
	if month < time.January || month > time.December {
		return apperror.Newf(apperror.KindInvalidArgument, "calendar", "month %d out of range 1-12", int(month))
	}
	if year < 1 || year > 9999 {
		return apperror.Newf(apperror.KindInvalidArgument, "calendar", "year %d out of range 1-9999", year)
	}
	return nil
}

package calendar

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/username/workday-reminder-bot/internal/apperror"
)

// FailOpen wraps a HolidayLookup so lookup failures read as "no holiday
// data": IsHoliday falls back to false and HolidaysInMonth to an empty set.
// Reminders keep going out when the holiday source is down.
type FailOpen struct {
	lookup HolidayLookup
	logger *zap.Logger
}

// NewFailOpen creates a new FailOpen decorator
func NewFailOpen(lookup HolidayLookup, logger *zap.Logger) *FailOpen {
	return &FailOpen{
		lookup: lookup,
		logger: logger,
	}
}

// IsHoliday never returns an error
func (f *FailOpen) IsHoliday(ctx context.Context, date Date) (bool, error) {
	holiday, err := f.lookup.IsHoliday(ctx, date)
	if err != nil {
		f.logger.Warn("Holiday lookup failed, assuming workday",
			zap.String("date", date.String()),
			zap.Error(apperror.New(apperror.KindLookupFailure, "IsHoliday", err)))
		return false, nil
	}
	return holiday, nil
}

// HolidaysInMonth never returns an error
func (f *FailOpen) HolidaysInMonth(ctx context.Context, year int, month time.Month) (HolidaySet, error) {
	holidays, err := f.lookup.HolidaysInMonth(ctx, year, month)
	if err != nil {
		f.logger.Warn("Holiday lookup failed, assuming no holidays",
			zap.Int("year", year),
			zap.Int("month", int(month)),
			zap.Error(apperror.New(apperror.KindLookupFailure, "HolidaysInMonth", err)))
		return HolidaySet{}, nil
	}
	if holidays == nil {
		holidays = HolidaySet{}
	}
	return holidays, nil
}

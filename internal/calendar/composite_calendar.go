package calendar

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CompositeCalendar implements HolidayLookup with fallback strategy
// Primary: workspace database
// Fallback: FileCalendar (local file)
type CompositeCalendar struct {
	primary  HolidayLookup
	fallback HolidayLookup
	logger   *zap.Logger
}

// NewCompositeCalendar creates a new CompositeCalendar
func NewCompositeCalendar(primary, fallback HolidayLookup, logger *zap.Logger) *CompositeCalendar {
	return &CompositeCalendar{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// IsHoliday checks if the given date is a public holiday
func (cc *CompositeCalendar) IsHoliday(ctx context.Context, date Date) (bool, error) {
	// Try primary first
	holiday, err := cc.primary.IsHoliday(ctx, date)
	if err == nil {
		return holiday, nil
	}

	cc.logger.Warn("Primary calendar failed, falling back to file",
		zap.String("date", date.String()),
		zap.Error(err))

	holiday, fallbackErr := cc.fallback.IsHoliday(ctx, date)
	if fallbackErr != nil {
		return false, fmt.Errorf("primary and fallback both failed: primary=%w, fallback=%v", err, fallbackErr)
	}
	return holiday, nil
}

// HolidaysInMonth returns the public holidays of the month
func (cc *CompositeCalendar) HolidaysInMonth(ctx context.Context, year int, month time.Month) (HolidaySet, error) {
	// Try primary first
	holidays, err := cc.primary.HolidaysInMonth(ctx, year, month)
	if err == nil {
		return holidays, nil
	}

	cc.logger.Warn("Primary calendar failed, falling back to file",
		zap.Int("year", year),
		zap.Int("month", int(month)),
		zap.Error(err))

	holidays, fallbackErr := cc.fallback.HolidaysInMonth(ctx, year, month)
	if fallbackErr != nil {
		return nil, fmt.Errorf("primary and fallback both failed: primary=%w, fallback=%v", err, fallbackErr)
	}
	return holidays, nil
}

// LoadFallback loads the fallback calendar (if FileCalendar)
func (cc *CompositeCalendar) LoadFallback() error {
	if fc, ok := cc.fallback.(*FileCalendar); ok {
		if err := fc.Load(); err != nil {
			return fmt.Errorf("failed to load fallback calendar: %w", err)
		}
		cc.logger.Info("Fallback calendar loaded successfully")
	}
	return nil
}

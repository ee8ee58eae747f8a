package calendar

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	cal "github.com/rickar/cal/v2"
	"go.uber.org/zap"

	"github.com/username/workday-reminder-bot/pkg/dateutil"
)

// FileCalendar implements HolidayLookup using a local text file.
//
// Each line is either a one-off holiday or a holiday recurring every year:
//
//	2025-01-27 春節
//	10-10 國慶日
type FileCalendar struct {
	filePath string
	logger   *zap.Logger

	mu       sync.RWMutex
	loaded   bool
	oneOff   HolidaySet
	annual   *cal.BusinessCalendar
	ruleDays int
}

// NewFileCalendar creates a new FileCalendar instance
func NewFileCalendar(filePath string, logger *zap.Logger) *FileCalendar {
	return &FileCalendar{
		filePath: filePath,
		logger:   logger,
		oneOff:   HolidaySet{},
		annual:   cal.NewBusinessCalendar(),
	}
}

// Load loads calendar data from file
func (fc *FileCalendar) Load() error {
	file, err := os.Open(fc.filePath)
	if err != nil {
		return fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer file.Close()

	return fc.load(file)
}

func (fc *FileCalendar) load(r io.Reader) error {
	oneOff := HolidaySet{}
	annual := cal.NewBusinessCalendar()
	rules := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Format: YYYY-MM-DD [note] or MM-DD [note]
		parts := strings.SplitN(line, " ", 2)
		dateStr := parts[0]
		note := ""
		if len(parts) == 2 {
			note = strings.TrimSpace(parts[1])
		}

		if date, err := time.Parse(dateutil.ISODate, dateStr); err == nil {
			oneOff.Add(DateOf(date, time.UTC))
			continue
		}

		monthDay, err := time.Parse("01-02", dateStr)
		if err != nil {
			fc.logger.Warn("Failed to parse date", zap.String("line", line), zap.Error(err))
			continue
		}

		annual.AddHoliday(&cal.Holiday{
			Name:  note,
			Type:  cal.ObservancePublic,
			Month: monthDay.Month(),
			Day:   monthDay.Day(),
			Func:  cal.CalcDayOfMonth,
		})
		rules++
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading calendar file: %w", err)
	}

	fc.mu.Lock()
	fc.oneOff = oneOff
	fc.annual = annual
	fc.ruleDays = rules
	fc.loaded = true
	fc.mu.Unlock()

	fc.logger.Info("Calendar file loaded",
		zap.String("file", fc.filePath),
		zap.Int("dates", len(oneOff)),
		zap.Int("annual_rules", rules))

	return nil
}

// IsHoliday checks if the given date is listed in the file
func (fc *FileCalendar) IsHoliday(_ context.Context, date Date) (bool, error) {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	if !fc.loaded {
		return false, fmt.Errorf("calendar file not loaded: %s", fc.filePath)
	}
	return fc.isHoliday(date), nil
}

// HolidaysInMonth returns the listed holidays of the month
func (fc *FileCalendar) HolidaysInMonth(_ context.Context, year int, month time.Month) (HolidaySet, error) {
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}

	fc.mu.RLock()
	defer fc.mu.RUnlock()

	if !fc.loaded {
		return nil, fmt.Errorf("calendar file not loaded: %s", fc.filePath)
	}

	holidays := HolidaySet{}
	for day := 1; day <= dateutil.DaysInMonth(year, month); day++ {
		d := Date{Year: year, Month: month, Day: day}
		if fc.isHoliday(d) {
			holidays.Add(d)
		}
	}
	return holidays, nil
}

func (fc *FileCalendar) isHoliday(date Date) bool {
	if fc.oneOff.Contains(date) {
		return true
	}
	if fc.ruleDays == 0 {
		return false
	}
	actual, _, _ := fc.annual.IsHoliday(date.Time(time.UTC))
	return actual
}

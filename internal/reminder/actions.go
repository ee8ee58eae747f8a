package reminder

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/username/workday-reminder-bot/internal/apperror"
	"github.com/username/workday-reminder-bot/internal/calendar"
)

// Sink delivers a text message to a channel
type Sink interface {
	SendMessage(ctx context.Context, channelID, text string) error
}

// Messages holds the reminder texts. MonthlyReport may contain a {date}
// placeholder which is replaced with the last valid workday.
type Messages struct {
	ClockIn       string `mapstructure:"clock_in"`
	ClockOut      string `mapstructure:"clock_out"`
	MonthlyReport string `mapstructure:"monthly_report"`
}

// DefaultMessages returns the built-in reminder texts
func DefaultMessages() Messages {
	return Messages{
		ClockIn:       "早安！上班記得打卡 ⏰",
		ClockOut:      "下班囉！記得打卡再走 🏃",
		MonthlyReport: "今天（{date}）是本月最後一個工作日，請記得繳交月報 📝",
	}
}

// Channels are the target channels of the reminders
type Channels struct {
	Attendance string `mapstructure:"attendance"`
	Report     string `mapstructure:"report"`
}

// Reminders implements the scheduled reminder actions
type Reminders struct {
	holidays *calendar.FailOpen
	sink     Sink
	logger   *zap.Logger
	location *time.Location
	now      func() time.Time
	channels Channels
	messages Messages
}

// NewReminders creates the reminder actions. Holiday lookups are fail-open:
// when the lookup errors the day is treated as a working day.
func NewReminders(
	holidays calendar.HolidayLookup,
	sink Sink,
	channels Channels,
	messages Messages,
	loc *time.Location,
	logger *zap.Logger,
) *Reminders {
	if loc == nil {
		loc = time.Local
	}
	return &Reminders{
		holidays: calendar.NewFailOpen(holidays, logger),
		sink:     sink,
		logger:   logger,
		location: loc,
		now:      time.Now,
		channels: channels,
		messages: messages,
	}
}

// SetClock replaces time.Now, for tests and one-off runs
func (r *Reminders) SetClock(now func() time.Time) {
	r.now = now
}

// SendDailyReminder sends the clock-in reminder before noon and the
// clock-out reminder after, unless today is a holiday.
func (r *Reminders) SendDailyReminder(ctx context.Context) error {
	now := r.now().In(r.location)
	today := calendar.DateOf(now, r.location)

	holiday, err := r.holidays.IsHoliday(ctx, today)
	if err != nil {
		return fmt.Errorf("daily reminder: %w", err)
	}
	if holiday {
		r.logger.Info("Holiday, skipping daily reminder", zap.Stringer("date", today))
		return nil
	}

	text, kind := r.messages.ClockOut, KindClockOut
	if now.Hour() < 12 {
		text, kind = r.messages.ClockIn, KindClockIn
	}

	if err := r.send(ctx, "SendDailyReminder", r.channels.Attendance, text); err != nil {
		return err
	}

	r.logger.Info("Daily reminder sent",
		zap.Stringer("kind", kind),
		zap.Stringer("date", today),
		zap.String("channel_id", r.channels.Attendance))
	return nil
}

// SendMonthlyReminder sends the report reminder when today is the last valid
// workday of the month. Calling it twice on that day sends twice.
func (r *Reminders) SendMonthlyReminder(ctx context.Context) error {
	today := calendar.DateOf(r.now(), r.location)

	holidays, err := r.holidays.HolidaysInMonth(ctx, today.Year, today.Month)
	if err != nil {
		return fmt.Errorf("monthly reminder: %w", err)
	}
	last, err := calendar.LastValidWorkday(holidays, today.Year, today.Month)
	if err != nil {
		return fmt.Errorf("monthly reminder: %w", err)
	}

	if today != last {
		r.logger.Debug("Not the last workday, skipping monthly reminder",
			zap.Stringer("date", today),
			zap.Stringer("last_workday", last))
		return nil
	}

	text := strings.ReplaceAll(r.messages.MonthlyReport, "{date}", last.String())
	if err := r.send(ctx, "SendMonthlyReminder", r.channels.Report, text); err != nil {
		return err
	}

	r.logger.Info("Monthly report reminder sent",
		zap.Stringer("date", today),
		zap.String("channel_id", r.channels.Report))
	return nil
}

func (r *Reminders) send(ctx context.Context, op, channelID, text string) error {
	if err := r.sink.SendMessage(ctx, channelID, text); err != nil {
		return apperror.New(apperror.KindSendFailure, op, err)
	}
	return nil
}

// WriterSink writes messages to w instead of delivering them
type WriterSink struct {
	w io.Writer
}

// NewWriterSink creates a sink for dry runs
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// SendMessage prints the message with its channel
func (s *WriterSink) SendMessage(_ context.Context, channelID, text string) error {
	_, err := fmt.Fprintf(s.w, "[#%s] %s\n", channelID, text)
	return err
}

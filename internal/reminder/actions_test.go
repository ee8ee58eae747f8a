package reminder

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/username/workday-reminder-bot/internal/apperror"
	"github.com/username/workday-reminder-bot/internal/calendar"
)

func newTestReminders(t *testing.T, holidays calendar.HolidayLookup, sink Sink, now time.Time) *Reminders {
	r := NewReminders(holidays, sink, testChannels, DefaultMessages(), taipei, zaptest.NewLogger(t))
	r.SetClock(fixedClock(now))
	return r
}

func TestSendDailyReminder(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		holidays fakeHolidays
		want     []sentMessage
	}{
		{
			name: "morning sends clock in",
			now:  time.Date(2025, 10, 14, 9, 0, 0, 0, taipei),
			want: []sentMessage{{"100", DefaultMessages().ClockIn}},
		},
		{
			name: "evening sends clock out",
			now:  time.Date(2025, 10, 14, 19, 0, 0, 0, taipei),
			want: []sentMessage{{"100", DefaultMessages().ClockOut}},
		},
		{
			name: "noon counts as afternoon",
			now:  time.Date(2025, 10, 14, 12, 0, 0, 0, taipei),
			want: []sentMessage{{"100", DefaultMessages().ClockOut}},
		},
		{
			name:     "holiday sends nothing",
			now:      time.Date(2025, 10, 10, 9, 0, 0, 0, taipei),
			holidays: fakeHolidays{set: calendar.NewHolidaySet(calendar.NewDate(2025, time.October, 10))},
		},
		{
			name:     "lookup failure still sends",
			now:      time.Date(2025, 10, 10, 9, 0, 0, 0, taipei),
			holidays: fakeHolidays{err: errUnavailable},
			want:     []sentMessage{{"100", DefaultMessages().ClockIn}},
		},
		{
			name: "hour is taken in the configured zone",
			// 01:00 UTC is 09:00 in Taipei
			now:  time.Date(2025, 10, 14, 1, 0, 0, 0, time.UTC),
			want: []sentMessage{{"100", DefaultMessages().ClockIn}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &fakeSink{}
			r := newTestReminders(t, tt.holidays, sink, tt.now)

			require.NoError(t, r.SendDailyReminder(context.Background()))
			assert.Equal(t, tt.want, sink.messages())
		})
	}
}

func TestReminders_LookupFailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	sink := &fakeSink{}
	r := NewReminders(fakeHolidays{err: errUnavailable}, sink, testChannels, DefaultMessages(), taipei, zap.New(core))
	r.SetClock(fixedClock(time.Date(2025, 5, 30, 10, 0, 0, 0, taipei)))
	ctx := context.Background()

	require.NoError(t, r.SendDailyReminder(ctx))
	require.NoError(t, r.SendMonthlyReminder(ctx))

	assert.Len(t, sink.messages(), 2)
	assert.Equal(t, 1, logs.FilterMessage("Holiday lookup failed, assuming workday").Len())
	assert.Equal(t, 1, logs.FilterMessage("Holiday lookup failed, assuming no holidays").Len())
}

func TestSendDailyReminder_SendFailure(t *testing.T) {
	sink := &fakeSink{err: errors.New("discord: 503")}
	r := newTestReminders(t, fakeHolidays{}, sink, time.Date(2025, 10, 14, 9, 0, 0, 0, taipei))

	err := r.SendDailyReminder(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.SendFailure)
	assert.Equal(t, apperror.KindSendFailure, apperror.KindOf(err))
}

func TestSendMonthlyReminder(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		holidays fakeHolidays
		sends    int
	}{
		{
			name:  "last weekday of the month",
			now:   time.Date(2025, 6, 30, 10, 0, 0, 0, taipei),
			sends: 1,
		},
		{
			name: "day before the last weekday",
			now:  time.Date(2025, 6, 27, 10, 0, 0, 0, taipei),
		},
		{
			name:     "holiday pushes the workday back",
			now:      time.Date(2025, 5, 29, 10, 0, 0, 0, taipei),
			holidays: fakeHolidays{set: calendar.NewHolidaySet(calendar.NewDate(2025, time.May, 30))},
			sends:    1,
		},
		{
			name:     "holiday itself is skipped",
			now:      time.Date(2025, 5, 30, 10, 0, 0, 0, taipei),
			holidays: fakeHolidays{set: calendar.NewHolidaySet(calendar.NewDate(2025, time.May, 30))},
		},
		{
			name:     "lookup failure falls back to weekends only",
			now:      time.Date(2025, 5, 30, 10, 0, 0, 0, taipei),
			holidays: fakeHolidays{err: errUnavailable},
			sends:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &fakeSink{}
			r := newTestReminders(t, tt.holidays, sink, tt.now)

			require.NoError(t, r.SendMonthlyReminder(context.Background()))

			sent := sink.messages()
			require.Len(t, sent, tt.sends)
			for _, msg := range sent {
				assert.Equal(t, "200", msg.channelID)
				assert.Contains(t, msg.text, calendar.DateOf(tt.now, taipei).String())
			}
		})
	}
}

func TestSendMonthlyReminder_NoDedup(t *testing.T) {
	sink := &fakeSink{}
	r := newTestReminders(t, fakeHolidays{}, sink, time.Date(2025, 6, 30, 10, 0, 0, 0, taipei))

	require.NoError(t, r.SendMonthlyReminder(context.Background()))
	require.NoError(t, r.SendMonthlyReminder(context.Background()))
	assert.Len(t, sink.messages(), 2)
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriterSink(&buf)

	require.NoError(t, sink.SendMessage(context.Background(), "100", "hello"))
	assert.Equal(t, "[#100] hello\n", buf.String())
}

package reminder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/username/workday-reminder-bot/internal/calendar"
)

var taipei = time.FixedZone("Asia/Taipei", 8*60*60)

type sentMessage struct {
	channelID string
	text      string
}

type fakeSink struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeSink) SendMessage(_ context.Context, channelID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{channelID: channelID, text: text})
	return nil
}

func (f *fakeSink) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type fakeHolidays struct {
	set calendar.HolidaySet
	err error
}

func (f fakeHolidays) IsHoliday(_ context.Context, date calendar.Date) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.set.Contains(date), nil
}

func (f fakeHolidays) HolidaysInMonth(_ context.Context, year int, month time.Month) (calendar.HolidaySet, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := calendar.HolidaySet{}
	for key := range f.set {
		d, _ := calendar.ParseDate(key)
		if d.Year == year && d.Month == month {
			out.Add(d)
		}
	}
	return out, nil
}

var errUnavailable = errors.New("workspace unavailable")

var testChannels = Channels{Attendance: "100", Report: "200"}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/username/workday-reminder-bot/internal/calendar"
	"github.com/username/workday-reminder-bot/internal/config"
	"github.com/username/workday-reminder-bot/internal/notion"
	"github.com/username/workday-reminder-bot/internal/reminder"
)

type closeLog struct {
	mu    sync.Mutex
	order []string
}

func (l *closeLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.order = append(l.order, name)
}

type fakeComponent struct {
	name     string
	runErr   error
	closeErr error
	closed   *closeLog
}

func (f *fakeComponent) Run(ctx context.Context) error {
	if f.runErr != nil {
		return f.runErr
	}
	<-ctx.Done()
	return nil
}

func (f *fakeComponent) Close() error {
	f.closed.add(f.name)
	return f.closeErr
}

type plainComponent struct{}

func (plainComponent) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func startAsync(d *Daemon) chan error {
	done := make(chan error, 1)
	go func() { done <- d.Start() }()
	return done
}

func waitDone(t *testing.T, done chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop")
		return nil
	}
}

func TestDaemon_StopClosesInReverseOrder(t *testing.T) {
	closed := &closeLog{}
	d := NewDaemon(zaptest.NewLogger(t))
	d.Add("health", &fakeComponent{name: "health", closed: closed})
	d.Add("discord", &fakeComponent{name: "discord", closed: closed})
	d.Add("scheduler", plainComponent{})

	done := startAsync(d)
	d.Stop()

	require.NoError(t, waitDone(t, done))
	assert.Equal(t, []string{"discord", "health"}, closed.order)
}

func TestDaemon_ComponentFailureStopsOthers(t *testing.T) {
	closed := &closeLog{}
	d := NewDaemon(zaptest.NewLogger(t))
	d.Add("health", &fakeComponent{name: "health", runErr: errors.New("address already in use"), closed: closed})
	d.Add("discord", &fakeComponent{name: "discord", closed: closed})

	err := waitDone(t, startAsync(d))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "health")
	assert.Contains(t, err.Error(), "address already in use")
	assert.Equal(t, []string{"discord", "health"}, closed.order)
}

func TestDaemon_CloseErrorsAreCombined(t *testing.T) {
	closed := &closeLog{}
	d := NewDaemon(zaptest.NewLogger(t))
	d.Add("a", &fakeComponent{name: "a", closeErr: errors.New("a close"), closed: closed})
	d.Add("b", &fakeComponent{name: "b", closeErr: errors.New("b close"), closed: closed})

	done := startAsync(d)
	d.Stop()

	err := waitDone(t, done)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a close")
	assert.Contains(t, err.Error(), "b close")
}

func TestDaemon_Signal(t *testing.T) {
	d := NewDaemon(zaptest.NewLogger(t))
	d.Add("scheduler", plainComponent{})

	done := startAsync(d)
	d.signals <- syscall.SIGTERM

	require.NoError(t, waitDone(t, done))
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Discord: config.DiscordConfig{Token: "token", GuildID: "guild-1", CommandTimeout: 5 * time.Second},
		Notion: config.NotionConfig{
			Token: "secret",
			Config: notion.Config{
				CalendarDatabaseID: "calendar-db",
				EmployeeDatabaseID: "employee-db",
			},
		},
		Channels: reminder.Channels{Attendance: "100", Report: "200"},
		Reminders: config.RemindersConfig{
			Timezone:     config.DefaultTimezone,
			TickInterval: 30 * time.Second,
			Jobs:         reminder.DefaultJobsConfig(),
			Messages:     reminder.DefaultMessages(),
		},
		HTTP: config.HTTPConfig{Addr: "127.0.0.1:0"},
		Log:  config.LogConfig{Level: "info"},
	}
}

func TestBuild(t *testing.T) {
	d, err := Build(testConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)

	var names []string
	for _, c := range d.components {
		names = append(names, c.name)
	}
	assert.Equal(t, []string{"health", "discord", "scheduler"}, names)

	scheduler, ok := d.components[2].Component.(*reminder.Scheduler)
	require.True(t, ok)
	assert.Len(t, scheduler.Jobs(), 3)
}

func TestBuild_BadJob(t *testing.T) {
	cfg := testConfig(t)
	cfg.Reminders.Jobs.ClockIn.Time = "99:99"

	_, err := Build(cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestNewHolidayLookup(t *testing.T) {
	cfg := testConfig(t)
	logger := zaptest.NewLogger(t)
	client := notion.NewClient("secret", cfg.Notion.Config, logger)

	lookup := NewHolidayLookup(cfg, client, logger)
	assert.IsType(t, &notion.HolidayStore{}, lookup)

	path := filepath.Join(t.TempDir(), "holidays.txt")
	require.NoError(t, os.WriteFile(path, []byte("10-10 國慶日\n"), 0o600))
	cfg.Holidays.FallbackFile = path
	assert.IsType(t, &calendar.CompositeCalendar{}, NewHolidayLookup(cfg, client, logger))

	cfg.Holidays.FallbackFile = filepath.Join(t.TempDir(), "missing.txt")
	assert.IsType(t, &notion.HolidayStore{}, NewHolidayLookup(cfg, client, logger))
}

package reminder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Trigger decides whether a job fires at a given wall-clock minute
type Trigger interface {
	Matches(t time.Time) bool
	String() string
}

// WeeklyTrigger fires at Hour:Minute on each of Days, in Location.
// Empty Days means every day.
type WeeklyTrigger struct {
	Days     []time.Weekday
	Hour     int
	Minute   int
	Location *time.Location
}

// Matches checks day of week, hour and minute of t in the trigger's zone
func (w WeeklyTrigger) Matches(t time.Time) bool {
	local := t.In(w.location())
	if local.Hour() != w.Hour || local.Minute() != w.Minute {
		return false
	}
	if len(w.Days) == 0 {
		return true
	}
	for _, d := range w.Days {
		if local.Weekday() == d {
			return true
		}
	}
	return false
}

func (w WeeklyTrigger) String() string {
	days := "daily"
	if len(w.Days) > 0 {
		names := make([]string, len(w.Days))
		for i, d := range w.Days {
			names[i] = d.String()[:3]
		}
		days = strings.Join(names, ",")
	}
	return fmt.Sprintf("%s %02d:%02d %s", days, w.Hour, w.Minute, w.location())
}

func (w WeeklyTrigger) location() *time.Location {
	if w.Location == nil {
		return time.Local
	}
	return w.Location
}

// CronTrigger matches a five-field cron expression
type CronTrigger struct {
	expr     string
	schedule cron.Schedule
	location *time.Location
}

// NewCronTrigger parses a standard cron expression evaluated in loc.
// An explicit CRON_TZ= prefix in expr wins over loc.
func NewCronTrigger(expr string, loc *time.Location) (*CronTrigger, error) {
	schedule, err := cron.ParseStandard(strings.TrimSpace(expr))
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	if loc == nil {
		loc = time.Local
	}
	return &CronTrigger{expr: expr, schedule: schedule, location: loc}, nil
}

// Matches reports whether the schedule activates in t's minute
func (c *CronTrigger) Matches(t time.Time) bool {
	minute := t.In(c.location).Truncate(time.Minute)
	return c.schedule.Next(minute.Add(-time.Second)).Equal(minute)
}

func (c *CronTrigger) String() string {
	return c.expr
}

// TriggerConfig is the configuration form of a trigger
type TriggerConfig struct {
	Days string `mapstructure:"days"` // "mon-fri", "mon,wed,fri", "daily"
	Time string `mapstructure:"time"` // HH:MM
	Cron string `mapstructure:"cron"` // five-field cron, overrides days/time
}

// ParseTrigger builds a Trigger from configuration
func ParseTrigger(cfg TriggerConfig, loc *time.Location) (Trigger, error) {
	if cfg.Cron != "" {
		return NewCronTrigger(cfg.Cron, loc)
	}

	hour, minute, err := ParseTimeOfDay(cfg.Time)
	if err != nil {
		return nil, err
	}
	days, err := ParseDays(cfg.Days)
	if err != nil {
		return nil, err
	}
	return WeeklyTrigger{Days: days, Hour: hour, Minute: minute, Location: loc}, nil
}

var timeOfDay = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseTimeOfDay parses "HH:MM" (24h)
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	m := timeOfDay.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("time %q out of range", s)
	}
	return hour, minute, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// ParseDays parses a day-of-week list: "daily", "mon-fri", "sat,sun".
// Ranges wrap around the week ("fri-mon").
func ParseDays(s string) ([]time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "daily" || s == "*" {
		return nil, nil
	}

	seen := make(map[time.Weekday]bool)
	var days []time.Weekday
	add := func(d time.Weekday) {
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		from, to, isRange := strings.Cut(part, "-")

		start, ok := weekdayNames[from]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", from)
		}
		if !isRange {
			add(start)
			continue
		}

		end, ok := weekdayNames[to]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", to)
		}
		for d := start; ; d = (d + 1) % 7 {
			add(d)
			if d == end {
				break
			}
		}
	}
	return days, nil
}

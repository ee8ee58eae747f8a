package reminder

import (
	"fmt"
	"time"
)

// JobConfig enables and times one job
type JobConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	TriggerConfig `mapstructure:",squash"`
}

// JobsConfig configures the job table
type JobsConfig struct {
	ClockIn       JobConfig `mapstructure:"clock_in"`
	ClockOut      JobConfig `mapstructure:"clock_out"`
	MonthlyReport JobConfig `mapstructure:"monthly_report"`
}

// DefaultJobsConfig returns the built-in schedule
func DefaultJobsConfig() JobsConfig {
	return JobsConfig{
		ClockIn:       JobConfig{Enabled: true, TriggerConfig: TriggerConfig{Days: "mon-fri", Time: "08:55"}},
		ClockOut:      JobConfig{Enabled: true, TriggerConfig: TriggerConfig{Days: "mon-fri", Time: "18:00"}},
		MonthlyReport: JobConfig{Enabled: true, TriggerConfig: TriggerConfig{Days: "daily", Time: "10:00"}},
	}
}

// DefaultJobs builds the reminder job table. Disabled jobs are left out.
func DefaultJobs(cfg JobsConfig, r *Reminders, loc *time.Location) ([]Job, error) {
	table := []struct {
		name    string
		kind    Kind
		cfg     JobConfig
		channel string
		action  Action
	}{
		{"clock-in", KindClockIn, cfg.ClockIn, r.channels.Attendance, r.SendDailyReminder},
		{"clock-out", KindClockOut, cfg.ClockOut, r.channels.Attendance, r.SendDailyReminder},
		{"monthly-report", KindMonthlyReport, cfg.MonthlyReport, r.channels.Report, r.SendMonthlyReminder},
	}

	var jobs []Job
	for _, entry := range table {
		if !entry.cfg.Enabled {
			continue
		}

		trigger, err := ParseTrigger(entry.cfg.TriggerConfig, loc)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", entry.name, err)
		}

		jobs = append(jobs, Job{
			Name:      entry.name,
			Kind:      entry.kind,
			Trigger:   trigger,
			ChannelID: entry.channel,
			Action:    entry.action,
		})
	}
	return jobs, nil
}

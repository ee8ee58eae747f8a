package daemon

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/username/workday-reminder-bot/internal/bot"
	"github.com/username/workday-reminder-bot/internal/calendar"
	"github.com/username/workday-reminder-bot/internal/config"
	"github.com/username/workday-reminder-bot/internal/discord"
	"github.com/username/workday-reminder-bot/internal/health"
	"github.com/username/workday-reminder-bot/internal/notion"
	"github.com/username/workday-reminder-bot/internal/reminder"
)

// NewHolidayLookup returns the Notion holiday store, backed by the
// configured holiday file when the workspace is unreachable.
func NewHolidayLookup(cfg *config.Config, client *notion.Client, logger *zap.Logger) calendar.HolidayLookup {
	var lookup calendar.HolidayLookup = notion.NewHolidayStore(client)
	if cfg.Holidays.FallbackFile == "" {
		return lookup
	}

	cc := calendar.NewCompositeCalendar(lookup, calendar.NewFileCalendar(cfg.Holidays.FallbackFile, logger), logger)
	if err := cc.LoadFallback(); err != nil {
		logger.Warn("Holiday file unavailable, using Notion only",
			zap.String("file", cfg.Holidays.FallbackFile),
			zap.Error(err))
		return lookup
	}
	return cc
}

// NewReminders wires the reminder actions to sink
func NewReminders(cfg *config.Config, sink reminder.Sink, logger *zap.Logger) (*reminder.Reminders, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	client := notion.NewClient(cfg.Notion.Token, cfg.Notion.Config, logger.Named("notion"))
	holidays := NewHolidayLookup(cfg, client, logger.Named("holidays"))

	return reminder.NewReminders(holidays, sink, cfg.Channels, cfg.Reminders.Messages, loc, logger.Named("reminder")), nil
}

// Build wires the whole process from configuration
func Build(cfg *config.Config, logger *zap.Logger) (*Daemon, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	client := notion.NewClient(cfg.Notion.Token, cfg.Notion.Config, logger.Named("notion"))
	holidays := NewHolidayLookup(cfg, client, logger.Named("holidays"))

	service := bot.NewService(
		notion.NewEmployeeDirectory(client),
		notion.NewMeetingStore(client, loc),
		holidays,
		loc,
		logger.Named("bot"))

	discordBot, err := discord.New(cfg.Discord.Token, cfg.Discord.GuildID, service, logger.Named("discord"))
	if err != nil {
		return nil, err
	}
	discordBot.SetCommandTimeout(cfg.Discord.CommandTimeout)

	reminders := reminder.NewReminders(holidays, discordBot, cfg.Channels, cfg.Reminders.Messages, loc, logger.Named("reminder"))

	scheduler := reminder.NewScheduler(logger.Named("scheduler"),
		reminder.WithTickInterval(cfg.Reminders.TickInterval),
		reminder.WithActionTimeout(cfg.Reminders.ActionTimeout))

	jobs, err := reminder.DefaultJobs(cfg.Reminders.Jobs, reminders, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to build jobs: %w", err)
	}
	for _, job := range jobs {
		if err := scheduler.Register(job); err != nil {
			return nil, fmt.Errorf("failed to register job: %w", err)
		}
	}

	d := NewDaemon(logger)
	d.Add("health", health.NewServer(cfg.HTTP.Addr, logger.Named("health")))
	d.Add("discord", discordBot)
	d.Add("scheduler", scheduler)

	logger.Info("Daemon configured",
		zap.String("timezone", loc.String()),
		zap.Int("jobs", len(jobs)),
		zap.String("http_addr", cfg.HTTP.Addr))
	return d, nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/username/workday-reminder-bot/internal/apperror"
	"github.com/username/workday-reminder-bot/internal/notion"
	"github.com/username/workday-reminder-bot/internal/reminder"
)

// DefaultTimezone is the zone reminders and commands are evaluated in
const DefaultTimezone = "Asia/Taipei"

// defaultUTCOffset backs DefaultTimezone when the tz database is missing
const defaultUTCOffset = 8 * 60 * 60

// Config represents application configuration
type Config struct {
	Discord   DiscordConfig     `mapstructure:"discord"`
	Notion    NotionConfig      `mapstructure:"notion"`
	Channels  reminder.Channels `mapstructure:"channels"`
	Reminders RemindersConfig   `mapstructure:"reminders"`
	Holidays  HolidaysConfig    `mapstructure:"holidays"`
	HTTP      HTTPConfig        `mapstructure:"http"`
	Log       LogConfig         `mapstructure:"log"`
}

// DiscordConfig represents the Discord bot configuration
type DiscordConfig struct {
	Token          string        `mapstructure:"token"`
	GuildID        string        `mapstructure:"guild_id"`
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
}

// NotionConfig represents the Notion workspace configuration
type NotionConfig struct {
	Token         string `mapstructure:"token"`
	notion.Config `mapstructure:",squash"`
}

// RemindersConfig represents the reminder schedule
type RemindersConfig struct {
	Timezone      string              `mapstructure:"timezone"`
	TickInterval  time.Duration       `mapstructure:"tick_interval"`
	ActionTimeout time.Duration       `mapstructure:"action_timeout"`
	Jobs          reminder.JobsConfig `mapstructure:"jobs"`
	Messages      reminder.Messages   `mapstructure:"messages"`
}

// HolidaysConfig represents the offline holiday source
type HolidaysConfig struct {
	FallbackFile string `mapstructure:"fallback_file"` // YYYY-MM-DD or MM-DD per line
}

// HTTPConfig represents the liveness endpoint
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// envBindings maps config keys to the environment variables deployments set
var envBindings = map[string]string{
	"discord.token":               "DISCORD_TOKEN",
	"discord.guild_id":            "DISCORD_GUILD_ID",
	"notion.token":                "NOTION_TOKEN",
	"notion.calendar_database_id": "NOTION_CALENDAR_DATABASE_ID",
	"notion.employee_database_id": "NOTION_EMPLOYEE_DATABASE_ID",
	"notion.holiday_database_id":  "NOTION_HOLIDAY_DATABASE_ID",
	"channels.attendance":         "ATTENDANCE_CHANNEL_ID",
	"channels.report":             "REPORT_CHANNEL_ID",
	"http.addr":                   "HTTP_ADDR",
	"log.level":                   "LOG_LEVEL",
}

// Load reads .env, then the config file, then the environment.
// A missing .env or config file is not an error.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, apperror.New(apperror.KindConfiguration, "config.Load", fmt.Errorf("failed to read .env: %w", err))
	}

	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.reminder-bot")
		v.AddConfigPath("/etc/reminder-bot")
	}

	// Read environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, apperror.New(apperror.KindConfiguration, "config.Load", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, apperror.New(apperror.KindConfiguration, "config.Load", fmt.Errorf("failed to read config: %w", err))
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, apperror.New(apperror.KindConfiguration, "config.Load", fmt.Errorf("failed to unmarshal config: %w", err))
	}
	config.ExpandEnvVars()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("discord.command_timeout", "15s")

	props := notion.DefaultProperties()
	v.SetDefault("notion.holiday_category", "Public Holiday")
	v.SetDefault("notion.properties.name", props.Name)
	v.SetDefault("notion.properties.date", props.Date)
	v.SetDefault("notion.properties.category", props.Category)
	v.SetDefault("notion.properties.attendees", props.Attendees)
	v.SetDefault("notion.properties.location", props.Location)
	v.SetDefault("notion.properties.employee_id", props.EmployeeID)
	v.SetDefault("notion.properties.discord_id", props.DiscordID)
	v.SetDefault("notion.properties.person", props.Person)

	v.SetDefault("reminders.timezone", DefaultTimezone)
	v.SetDefault("reminders.tick_interval", "30s")
	v.SetDefault("reminders.action_timeout", "2m")

	jobs := reminder.DefaultJobsConfig()
	for key, job := range map[string]reminder.JobConfig{
		"clock_in":       jobs.ClockIn,
		"clock_out":      jobs.ClockOut,
		"monthly_report": jobs.MonthlyReport,
	} {
		v.SetDefault("reminders.jobs."+key+".enabled", job.Enabled)
		v.SetDefault("reminders.jobs."+key+".days", job.Days)
		v.SetDefault("reminders.jobs."+key+".time", job.Time)
		v.SetDefault("reminders.jobs."+key+".cron", job.Cron)
	}

	messages := reminder.DefaultMessages()
	v.SetDefault("reminders.messages.clock_in", messages.ClockIn)
	v.SetDefault("reminders.messages.clock_out", messages.ClockOut)
	v.SetDefault("reminders.messages.monthly_report", messages.MonthlyReport)

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.level", "info")
}

// Validate reports every missing or malformed setting at once
func (c *Config) Validate() error {
	var errs error
	require := func(value, key, env string) {
		if strings.TrimSpace(value) == "" {
			errs = multierr.Append(errs, fmt.Errorf("%s is required (env %s)", key, env))
		}
	}

	require(c.Discord.Token, "discord.token", "DISCORD_TOKEN")
	require(c.Discord.GuildID, "discord.guild_id", "DISCORD_GUILD_ID")
	require(c.Notion.Token, "notion.token", "NOTION_TOKEN")
	require(c.Notion.CalendarDatabaseID, "notion.calendar_database_id", "NOTION_CALENDAR_DATABASE_ID")
	require(c.Notion.EmployeeDatabaseID, "notion.employee_database_id", "NOTION_EMPLOYEE_DATABASE_ID")

	jobs := c.Reminders.Jobs
	if jobs.ClockIn.Enabled || jobs.ClockOut.Enabled {
		require(c.Channels.Attendance, "channels.attendance", "ATTENDANCE_CHANNEL_ID")
	}
	if jobs.MonthlyReport.Enabled {
		require(c.Channels.Report, "channels.report", "REPORT_CHANNEL_ID")
	}

	loc, err := c.Location()
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	for name, job := range map[string]reminder.JobConfig{
		"clock_in":       jobs.ClockIn,
		"clock_out":      jobs.ClockOut,
		"monthly_report": jobs.MonthlyReport,
	} {
		if !job.Enabled {
			continue
		}
		if _, err := reminder.ParseTrigger(job.TriggerConfig, loc); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reminders.jobs.%s: %w", name, err))
		}
	}

	if c.Reminders.TickInterval <= 0 || c.Reminders.TickInterval > time.Minute {
		errs = multierr.Append(errs, fmt.Errorf("reminders.tick_interval must be between 0 and 1m, got %s", c.Reminders.TickInterval))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = multierr.Append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}

	if errs != nil {
		return apperror.New(apperror.KindConfiguration, "config.Validate", errs)
	}
	return nil
}

// Location returns the configured zone. The default zone falls back to a
// fixed UTC+8 offset when the tz database is unavailable.
func (c *Config) Location() (*time.Location, error) {
	name := c.Reminders.Timezone
	if name == "" {
		name = DefaultTimezone
	}

	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc, nil
	}
	if name == DefaultTimezone {
		return time.FixedZone(DefaultTimezone, defaultUTCOffset), nil
	}
	return nil, fmt.Errorf("reminders.timezone %q: %w", name, err)
}

// ExpandEnvVars expands ${VAR} references in secrets
func (c *Config) ExpandEnvVars() {
	c.Discord.Token = os.ExpandEnv(c.Discord.Token)
	c.Notion.Token = os.ExpandEnv(c.Notion.Token)
}

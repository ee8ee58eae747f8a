package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/username/workday-reminder-bot/internal/calendar"
	"github.com/username/workday-reminder-bot/internal/daemon"
	"github.com/username/workday-reminder-bot/internal/discord"
	"github.com/username/workday-reminder-bot/internal/notion"
	"github.com/username/workday-reminder-bot/internal/reminder"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot, the reminder scheduler and the health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := daemon.Build(loadedConfig, logger)
			if err != nil {
				return err
			}
			return d.Start()
		},
	}
}

func workdayCmd() *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "workday",
		Short: "Print the last valid workday of a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := loadedConfig.Location()
			if err != nil {
				return err
			}

			now := time.Now().In(loc)
			if year == 0 {
				year = now.Year()
			}
			if month == 0 {
				month = int(now.Month())
			}

			client := notion.NewClient(loadedConfig.Notion.Token, loadedConfig.Notion.Config, logger.Named("notion"))
			lookup := daemon.NewHolidayLookup(loadedConfig, client, logger.Named("holidays"))

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			holidays, err := calendar.NewFailOpen(lookup, logger).HolidaysInMonth(ctx, year, time.Month(month))
			if err != nil {
				return err
			}

			last, err := calendar.LastValidWorkday(holidays, year, time.Month(month))
			if err != nil {
				return err
			}
			workdays, err := calendar.WorkdaysInMonth(holidays, year, time.Month(month))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "📅 %04d-%02d\n", year, month)
			fmt.Fprintf(out, "   Last valid workday: %s (%s)\n", last, last.Weekday())
			fmt.Fprintf(out, "   Workdays:           %d\n", len(workdays))
			if keys := holidays.Keys(); len(keys) > 0 {
				fmt.Fprintf(out, "   Holidays:           %s\n", strings.Join(keys, ", "))
			} else {
				fmt.Fprintf(out, "   Holidays:           none\n")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Year (default: current)")
	cmd.Flags().IntVar(&month, "month", 0, "Month 1-12 (default: current)")
	return cmd
}

func remindCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:       "remind daily|monthly",
		Short:     "Run one reminder action now",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"daily", "monthly"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var sink reminder.Sink = reminder.NewWriterSink(cmd.OutOrStdout())
			if !dryRun {
				bot, err := discord.New(loadedConfig.Discord.Token, loadedConfig.Discord.GuildID, nil, logger.Named("discord"))
				if err != nil {
					return err
				}
				sink = bot
			}

			reminders, err := daemon.NewReminders(loadedConfig, sink, logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			logger.Info("Running reminder",
				zap.String("action", args[0]),
				zap.Bool("dry_run", dryRun))

			switch args[0] {
			case "daily":
				err = reminders.SendDailyReminder(ctx)
			case "monthly":
				err = reminders.SendMonthlyReminder(ctx)
			}
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Fprintln(os.Stderr, "📋 Dry run, nothing was sent")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the reminder instead of sending it")
	return cmd
}

package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/username/workday-reminder-bot/internal/apperror"
	"github.com/username/workday-reminder-bot/internal/calendar"
	"github.com/username/workday-reminder-bot/internal/notion"
	"github.com/username/workday-reminder-bot/pkg/dateutil"
)

// Employees resolves and binds employee records
type Employees interface {
	FindByDiscordID(ctx context.Context, discordID string) (notion.Employee, error)
	Bind(ctx context.Context, discordID, employeeID string) (notion.Employee, error)
}

// Meetings lists an attendee's meetings for a day
type Meetings interface {
	ForPerson(ctx context.Context, personID string, day calendar.Date) ([]notion.Meeting, error)
}

// Service answers chat commands independent of the chat transport
type Service struct {
	employees Employees
	meetings  Meetings
	holidays  *calendar.FailOpen
	location  *time.Location
	logger    *zap.Logger
}

// NewService creates a new command service
func NewService(employees Employees, meetings Meetings, holidays calendar.HolidayLookup, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		employees: employees,
		meetings:  meetings,
		holidays:  calendar.NewFailOpen(holidays, logger),
		location:  loc,
		logger:    logger,
	}
}

// Location returns the zone commands are evaluated in
func (s *Service) Location() *time.Location {
	return s.location
}

// Ping answers "ping" (any case, surrounding spaces ignored) with "pong！".
// ok is false for any other text.
func (s *Service) Ping(text string) (reply string, ok bool) {
	if strings.EqualFold(strings.TrimSpace(text), "ping") {
		return "pong！", true
	}
	return "", false
}

// Register binds a Discord user to an employee identifier
func (s *Service) Register(ctx context.Context, discordUserID, employeeID string) string {
	emp, err := s.employees.Bind(ctx, discordUserID, employeeID)
	if err != nil {
		s.logFailure("register", discordUserID, err)
		if apperror.KindOf(err) == apperror.KindNotFound {
			return fmt.Sprintf("找不到員工編號 %s，請確認後再試。", strings.TrimSpace(employeeID))
		}
		return apperror.UserMessage(err)
	}

	name := emp.Name
	if name == "" {
		name = emp.EmployeeID
	}
	return fmt.Sprintf("✅ 註冊完成：%s（%s）已綁定到你的帳號。", name, emp.EmployeeID)
}

// Meetings lists the user's meetings for day
func (s *Service) Meetings(ctx context.Context, discordUserID string, day calendar.Date) string {
	emp, err := s.employees.FindByDiscordID(ctx, discordUserID)
	if err != nil {
		s.logFailure("meetings", discordUserID, err)
		return apperror.UserMessage(err)
	}
	if emp.PersonID == "" {
		s.logger.Warn("Employee has no Notion person",
			zap.String("discord_id", discordUserID),
			zap.String("employee_id", emp.EmployeeID))
		return apperror.UserMessage(apperror.Newf(apperror.KindNotFound, "meetings", "employee %s has no person", emp.EmployeeID))
	}

	meetings, err := s.meetings.ForPerson(ctx, emp.PersonID, day)
	if err != nil {
		s.logFailure("meetings", discordUserID, err)
		return apperror.UserMessage(err)
	}

	if len(meetings) == 0 {
		return fmt.Sprintf("📭 %s 沒有會議。", day)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 %s 的會議（共 %d 場）：", day, len(meetings))
	for _, m := range meetings {
		sb.WriteString("\n• ")
		sb.WriteString(FormatMeeting(m))
	}
	return sb.String()
}

// MeetingsOn parses a day argument and lists the user's meetings for it
func (s *Service) MeetingsOn(ctx context.Context, discordUserID, dayArg string, now time.Time) string {
	day, err := s.ResolveDay(dayArg, now)
	if err != nil {
		s.logFailure("meetings", discordUserID, err)
		return apperror.UserMessage(err)
	}
	return s.Meetings(ctx, discordUserID, day)
}

// Workday reports the last valid workday of now's month
func (s *Service) Workday(ctx context.Context, now time.Time) string {
	today := calendar.DateOf(now, s.location)

	holidays, err := s.holidays.HolidaysInMonth(ctx, today.Year, today.Month)
	if err != nil {
		s.logFailure("workday", "", err)
		return apperror.UserMessage(err)
	}
	last, err := calendar.LastValidWorkday(holidays, today.Year, today.Month)
	if err != nil {
		s.logFailure("workday", "", err)
		return apperror.UserMessage(err)
	}

	switch {
	case last == today:
		return fmt.Sprintf("📝 今天（%s）就是本月最後一個工作日，記得繳交月報！", last)
	case last.Before(today):
		return fmt.Sprintf("本月最後一個工作日 %s 已經過了。", last)
	default:
		return fmt.Sprintf("本月最後一個工作日是 %s（%s），還有 %d 天。",
			last, weekdayNames[last.Weekday()], daysBetween(today, last))
	}
}

// ResolveDay turns a day argument into a date: empty or "today" is today,
// "tomorrow" is tomorrow, anything else goes through dateutil.ParseDate.
func (s *Service) ResolveDay(arg string, now time.Time) (calendar.Date, error) {
	today := calendar.DateOf(now, s.location)

	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "", "today", "今天":
		return today, nil
	case "tomorrow", "明天":
		return today.AddDays(1), nil
	case "yesterday", "昨天":
		return today.AddDays(-1), nil
	}

	t, err := dateutil.ParseDate(strings.TrimSpace(arg), now.In(s.location))
	if err != nil {
		return calendar.Date{}, apperror.New(apperror.KindInvalidArgument, "ResolveDay", err)
	}
	return calendar.DateOf(t, s.location), nil
}

func (s *Service) logFailure(command, discordUserID string, err error) {
	level := s.logger.Error
	switch apperror.KindOf(err) {
	case apperror.KindNotFound, apperror.KindInvalidArgument:
		level = s.logger.Info
	}
	level("Command failed",
		zap.String("command", command),
		zap.String("discord_id", discordUserID),
		zap.Stringer("kind", apperror.KindOf(err)),
		zap.Error(err))
}

// FormatMeeting renders "HH:MM–HH:MM title @ location (category)". Missing
// parts are left out.
func FormatMeeting(m notion.Meeting) string {
	var sb strings.Builder

	switch {
	case m.AllDay:
		sb.WriteString("全天")
	case m.End.IsZero():
		sb.WriteString(m.Start.Format("15:04"))
	default:
		sb.WriteString(m.Start.Format("15:04"))
		sb.WriteString("–")
		sb.WriteString(m.End.Format("15:04"))
	}

	sb.WriteString(" ")
	if m.Title != "" {
		sb.WriteString(m.Title)
	} else {
		sb.WriteString("（無標題）")
	}
	if m.Location != "" {
		sb.WriteString(" @ ")
		sb.WriteString(m.Location)
	}
	if m.Category != "" {
		sb.WriteString(" (")
		sb.WriteString(m.Category)
		sb.WriteString(")")
	}
	return sb.String()
}

var weekdayNames = map[time.Weekday]string{
	time.Sunday:    "週日",
	time.Monday:    "週一",
	time.Tuesday:   "週二",
	time.Wednesday: "週三",
	time.Thursday:  "週四",
	time.Friday:    "週五",
	time.Saturday:  "週六",
}

func daysBetween(from, to calendar.Date) int {
	return int(to.Time(time.UTC).Sub(from.Time(time.UTC)).Hours() / 24)
}

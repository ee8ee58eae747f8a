package notion

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"go.uber.org/zap"

	"github.com/username/workday-reminder-bot/internal/apperror"
)

// Employee is a row of the employee database
type Employee struct {
	PageID     string
	Name       string
	EmployeeID string
	DiscordID  string
	PersonID   string // Notion user behind the employee, used to match meeting attendees
}

// EmployeeDirectory binds Discord users to employees
type EmployeeDirectory struct {
	client *Client
}

// NewEmployeeDirectory creates an EmployeeDirectory
func NewEmployeeDirectory(client *Client) *EmployeeDirectory {
	return &EmployeeDirectory{client: client}
}

// FindByDiscordID returns the employee bound to a Discord user.
// An unbound user yields an apperror.NotFound error.
func (e *EmployeeDirectory) FindByDiscordID(ctx context.Context, discordID string) (Employee, error) {
	return e.findOne(ctx, "notion.FindByDiscordID", e.client.config.Properties.DiscordID, discordID)
}

// FindByEmployeeID returns the employee with the given identifier
func (e *EmployeeDirectory) FindByEmployeeID(ctx context.Context, employeeID string) (Employee, error) {
	return e.findOne(ctx, "notion.FindByEmployeeID", e.client.config.Properties.EmployeeID, employeeID)
}

// Bind stores discordID on the employee page of employeeID. An employee
// already bound to another Discord user is rejected.
func (e *EmployeeDirectory) Bind(ctx context.Context, discordID, employeeID string) (Employee, error) {
	const op = "notion.Bind"

	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return Employee{}, apperror.Newf(apperror.KindInvalidArgument, op, "employee id is required")
	}

	emp, err := e.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		return Employee{}, err
	}
	if emp.DiscordID == discordID {
		return emp, nil
	}
	if emp.DiscordID != "" {
		return Employee{}, apperror.Newf(apperror.KindInvalidArgument, op,
			"employee %s is already bound to another user", employeeID)
	}

	props := notionapi.Properties{
		e.client.config.Properties.DiscordID: notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(discordID),
		},
	}
	if err := e.client.update(ctx, op, emp.PageID, props); err != nil {
		return Employee{}, err
	}

	e.client.logger.Info("Employee bound",
		zap.String("employee_id", employeeID),
		zap.String("discord_id", discordID))

	emp.DiscordID = discordID
	return emp, nil
}

func (e *EmployeeDirectory) findOne(ctx context.Context, op, property, value string) (Employee, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Employee{}, apperror.Newf(apperror.KindInvalidArgument, op, "%s is empty", property)
	}

	req := &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: property,
			RichText: &notionapi.TextFilterCondition{Equals: value},
		},
		PageSize: 2,
	}

	pages, err := e.client.query(ctx, op, e.client.config.EmployeeDatabaseID, req)
	if err != nil {
		return Employee{}, err
	}
	if len(pages) == 0 {
		return Employee{}, apperror.Newf(apperror.KindNotFound, op, "no employee with %s %q", property, value)
	}
	if len(pages) > 1 {
		e.client.logger.Warn("Multiple employees match, using the first",
			zap.String("property", property),
			zap.String("value", value))
	}
	return e.toEmployee(pages[0]), nil
}

func (e *EmployeeDirectory) toEmployee(page notionapi.Page) Employee {
	props := e.client.config.Properties
	emp := Employee{
		PageID:     page.ID.String(),
		Name:       plainText(page.Properties[props.Name]),
		EmployeeID: plainText(page.Properties[props.EmployeeID]),
		DiscordID:  plainText(page.Properties[props.DiscordID]),
	}
	if people, ok := page.Properties[props.Person].(*notionapi.PeopleProperty); ok && len(people.People) > 0 {
		emp.PersonID = people.People[0].ID.String()
	}
	return emp
}

package notion

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"go.uber.org/zap"

	"github.com/username/workday-reminder-bot/internal/apperror"
)

const defaultPageSize = 100

// Properties maps logical fields to the property names of the databases
type Properties struct {
	Name       string `mapstructure:"name"`
	Date       string `mapstructure:"date"`
	Category   string `mapstructure:"category"`
	Attendees  string `mapstructure:"attendees"`
	Location   string `mapstructure:"location"`
	EmployeeID string `mapstructure:"employee_id"`
	DiscordID  string `mapstructure:"discord_id"`
	Person     string `mapstructure:"person"`
}

// DefaultProperties returns the property names used by the workspace template
func DefaultProperties() Properties {
	return Properties{
		Name:       "Name",
		Date:       "Date",
		Category:   "Category",
		Attendees:  "Attendees",
		Location:   "Location",
		EmployeeID: "Employee ID",
		DiscordID:  "Discord ID",
		Person:     "Person",
	}
}

// Config holds the Notion database settings
type Config struct {
	CalendarDatabaseID string     `mapstructure:"calendar_database_id"`
	EmployeeDatabaseID string     `mapstructure:"employee_database_id"`
	HolidayDatabaseID  string     `mapstructure:"holiday_database_id"` // defaults to the calendar database
	HolidayCategory    string     `mapstructure:"holiday_category"`
	Properties         Properties `mapstructure:"properties"`
}

// DatabaseQuerier is the part of notionapi.DatabaseService the stores use
type DatabaseQuerier interface {
	Query(ctx context.Context, id notionapi.DatabaseID, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}

// PageUpdater is the part of notionapi.PageService the stores use
type PageUpdater interface {
	Update(ctx context.Context, id notionapi.PageID, req *notionapi.PageUpdateRequest) (*notionapi.Page, error)
}

// Client runs queries against the Notion workspace
type Client struct {
	databases DatabaseQuerier
	pages     PageUpdater
	config    Config
	logger    *zap.Logger
}

// NewClient creates a client authenticated with an integration token
func NewClient(token string, cfg Config, logger *zap.Logger) *Client {
	api := notionapi.NewClient(notionapi.Token(token))
	return NewClientWithServices(api.Database, api.Page, cfg, logger)
}

// NewClientWithServices creates a client over explicit services
func NewClientWithServices(databases DatabaseQuerier, pages PageUpdater, cfg Config, logger *zap.Logger) *Client {
	if cfg.HolidayDatabaseID == "" {
		cfg.HolidayDatabaseID = cfg.CalendarDatabaseID
	}
	if cfg.HolidayCategory == "" {
		cfg.HolidayCategory = "Public Holiday"
	}
	cfg.Properties = withDefaults(cfg.Properties)

	return &Client{
		databases: databases,
		pages:     pages,
		config:    cfg,
		logger:    logger,
	}
}

func withDefaults(p Properties) Properties {
	d := DefaultProperties()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&p.Name, d.Name)
	fill(&p.Date, d.Date)
	fill(&p.Category, d.Category)
	fill(&p.Attendees, d.Attendees)
	fill(&p.Location, d.Location)
	fill(&p.EmployeeID, d.EmployeeID)
	fill(&p.DiscordID, d.DiscordID)
	fill(&p.Person, d.Person)
	return p
}

// query runs a filtered query and follows pagination
func (c *Client) query(ctx context.Context, op, databaseID string, req *notionapi.DatabaseQueryRequest) ([]notionapi.Page, error) {
	if req.PageSize == 0 {
		req.PageSize = defaultPageSize
	}

	var pages []notionapi.Page
	for {
		start := time.Now()
		resp, err := c.databases.Query(ctx, notionapi.DatabaseID(databaseID), req)
		if err != nil {
			return nil, apperror.New(apperror.KindLookupFailure, op, err)
		}

		c.logger.Debug("Notion query",
			zap.String("op", op),
			zap.String("database_id", databaseID),
			zap.Int("results", len(resp.Results)),
			zap.Bool("has_more", resp.HasMore),
			zap.Duration("took", time.Since(start)))

		pages = append(pages, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			return pages, nil
		}
		req.StartCursor = resp.NextCursor
	}
}

func (c *Client) update(ctx context.Context, op, pageID string, props notionapi.Properties) error {
	_, err := c.pages.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{Properties: props})
	if err != nil {
		return apperror.New(apperror.KindLookupFailure, op, err)
	}
	return nil
}

// plainText flattens title, rich text, select and number properties
func plainText(prop notionapi.Property) string {
	switch p := prop.(type) {
	case *notionapi.TitleProperty:
		return joinRichText(p.Title)
	case *notionapi.RichTextProperty:
		return joinRichText(p.RichText)
	case *notionapi.SelectProperty:
		return p.Select.Name
	case *notionapi.NumberProperty:
		return strconv.FormatFloat(p.Number, 'f', -1, 64)
	default:
		return ""
	}
}

func joinRichText(parts []notionapi.RichText) string {
	var sb strings.Builder
	for _, rt := range parts {
		sb.WriteString(rt.PlainText)
	}
	return strings.TrimSpace(sb.String())
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{{
		Type:      notionapi.ObjectTypeText,
		Text:      &notionapi.Text{Content: content},
		PlainText: content,
	}}
}

func dateFilterValue(t time.Time) *notionapi.Date {
	d := notionapi.Date(t)
	return &d
}

package notion

import (
	"context"
	"sort"
	"time"

	"github.com/jomei/notionapi"

	"github.com/username/workday-reminder-bot/internal/calendar"
)

// Meeting is an entry of the calendar database
type Meeting struct {
	ID        string
	Title     string
	Start     time.Time
	End       time.Time // zero when the entry has no end
	AllDay    bool
	Category  string
	Attendees []string
	Location  string
}

// MeetingStore lists calendar entries per attendee
type MeetingStore struct {
	client   *Client
	location *time.Location
}

// NewMeetingStore creates a MeetingStore. Days are interpreted in loc.
func NewMeetingStore(client *Client, loc *time.Location) *MeetingStore {
	if loc == nil {
		loc = time.Local
	}
	return &MeetingStore{client: client, location: loc}
}

// ForPerson returns the entries on day that list personID as an attendee,
// sorted by start time.
func (m *MeetingStore) ForPerson(ctx context.Context, personID string, day calendar.Date) ([]Meeting, error) {
	props := m.client.config.Properties
	start := day.Time(m.location)
	end := start.AddDate(0, 0, 1)

	req := &notionapi.DatabaseQueryRequest{
		Filter: notionapi.AndCompoundFilter{
			notionapi.PropertyFilter{
				Property: props.Attendees,
				People:   &notionapi.PeopleFilterCondition{Contains: personID},
			},
			notionapi.PropertyFilter{
				Property: props.Date,
				Date:     &notionapi.DateFilterCondition{OnOrAfter: dateFilterValue(start)},
			},
			notionapi.PropertyFilter{
				Property: props.Date,
				Date:     &notionapi.DateFilterCondition{Before: dateFilterValue(end)},
			},
		},
		Sorts: []notionapi.SortObject{
			{Property: props.Date, Direction: notionapi.SortOrderASC},
		},
	}

	pages, err := m.client.query(ctx, "notion.ForPerson", m.client.config.CalendarDatabaseID, req)
	if err != nil {
		return nil, err
	}

	meetings := make([]Meeting, 0, len(pages))
	for _, page := range pages {
		meeting, ok := m.toMeeting(page)
		if !ok {
			continue
		}
		meetings = append(meetings, meeting)
	}

	sort.SliceStable(meetings, func(i, j int) bool {
		return meetings[i].Start.Before(meetings[j].Start)
	})
	return meetings, nil
}

func (m *MeetingStore) toMeeting(page notionapi.Page) (Meeting, bool) {
	props := m.client.config.Properties

	date, ok := page.Properties[props.Date].(*notionapi.DateProperty)
	if !ok || date.Date == nil || date.Date.Start == nil {
		return Meeting{}, false
	}

	meeting := Meeting{
		ID:       page.ID.String(),
		Title:    plainText(page.Properties[props.Name]),
		Start:    time.Time(*date.Date.Start).In(m.location),
		Location: plainText(page.Properties[props.Location]),
		Category: category(page.Properties[props.Category]),
	}
	if date.Date.End != nil {
		meeting.End = time.Time(*date.Date.End).In(m.location)
	}

	// date-only values decode as UTC midnight
	s := time.Time(*date.Date.Start)
	if s.Location() == time.UTC && s.Hour() == 0 && s.Minute() == 0 && s.Second() == 0 {
		meeting.AllDay = true
		meeting.Start = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, m.location)
		meeting.End = time.Time{}
	}

	if people, ok := page.Properties[props.Attendees].(*notionapi.PeopleProperty); ok {
		for _, user := range people.People {
			meeting.Attendees = append(meeting.Attendees, user.Name)
		}
	}
	return meeting, true
}

func category(prop notionapi.Property) string {
	switch p := prop.(type) {
	case *notionapi.SelectProperty:
		return p.Select.Name
	case *notionapi.MultiSelectProperty:
		if len(p.MultiSelect) > 0 {
			return p.MultiSelect[0].Name
		}
	}
	return plainText(prop)
}

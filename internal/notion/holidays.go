package notion

import (
	"context"
	"time"

	"github.com/jomei/notionapi"

	"github.com/username/workday-reminder-bot/internal/calendar"
)

// HolidayStore reads public holidays from the calendar database: entries
// whose category equals the holiday tag. Multi-day entries cover every day
// from start to end.
//
// Holiday entries are date-only, so filters carry the civil date at UTC
// midnight. A zoned midnight would shift the window by the zone offset.
type HolidayStore struct {
	client *Client
}

// NewHolidayStore creates a HolidayStore
func NewHolidayStore(client *Client) *HolidayStore {
	return &HolidayStore{client: client}
}

// IsHoliday reports whether a holiday entry is dated date
func (h *HolidayStore) IsHoliday(ctx context.Context, date calendar.Date) (bool, error) {
	props := h.client.config.Properties
	req := &notionapi.DatabaseQueryRequest{
		Filter: notionapi.AndCompoundFilter{
			h.categoryFilter(),
			notionapi.PropertyFilter{
				Property: props.Date,
				Date:     &notionapi.DateFilterCondition{Equals: dateFilterValue(date.Time(time.UTC))},
			},
		},
		PageSize: 1,
	}

	pages, err := h.client.query(ctx, "notion.IsHoliday", h.client.config.HolidayDatabaseID, req)
	if err != nil {
		return false, err
	}
	return len(pages) > 0, nil
}

// HolidaysInMonth returns the holidays dated within the month
func (h *HolidayStore) HolidaysInMonth(ctx context.Context, year int, month time.Month) (calendar.HolidaySet, error) {
	props := h.client.config.Properties
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	req := &notionapi.DatabaseQueryRequest{
		Filter: notionapi.AndCompoundFilter{
			h.categoryFilter(),
			notionapi.PropertyFilter{
				Property: props.Date,
				Date:     &notionapi.DateFilterCondition{OnOrAfter: dateFilterValue(first)},
			},
			notionapi.PropertyFilter{
				Property: props.Date,
				Date:     &notionapi.DateFilterCondition{Before: dateFilterValue(next)},
			},
		},
	}

	pages, err := h.client.query(ctx, "notion.HolidaysInMonth", h.client.config.HolidayDatabaseID, req)
	if err != nil {
		return nil, err
	}

	holidays := calendar.HolidaySet{}
	for _, page := range pages {
		start, end, ok := pageDates(page, props.Date)
		if !ok {
			continue
		}
		for d := start; !end.Before(d); d = d.AddDays(1) {
			if d.Year == year && d.Month == month {
				holidays.Add(d)
			}
		}
	}
	return holidays, nil
}

func (h *HolidayStore) categoryFilter() notionapi.PropertyFilter {
	return notionapi.PropertyFilter{
		Property: h.client.config.Properties.Category,
		Select:   &notionapi.SelectFilterCondition{Equals: h.client.config.HolidayCategory},
	}
}

// pageDates returns the calendar days of a date property as written in
// Notion, without shifting zones.
func pageDates(page notionapi.Page, property string) (start, end calendar.Date, ok bool) {
	prop, found := page.Properties[property].(*notionapi.DateProperty)
	if !found || prop.Date == nil || prop.Date.Start == nil {
		return start, end, false
	}

	s := time.Time(*prop.Date.Start)
	start = calendar.DateOf(s, s.Location())
	end = start
	if prop.Date.End != nil {
		e := time.Time(*prop.Date.End)
		if d := calendar.DateOf(e, e.Location()); start.Before(d) {
			end = d
		}
	}
	return start, end, true
}

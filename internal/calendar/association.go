// Package calendar matches events and holidays to calendar days and builds
// the month view the UI renders.
package calendar

import (
	"github.com/month-calendar/webui/internal/storage/models"
)

// EventsOn returns, in order, the events whose inclusive date range
// contains d. A multi-day event is returned for every day it spans.
func EventsOn(d models.Date, events []models.Event) []models.Event {
	out := []models.Event{}
	for _, evt := range events {
		if Contains(evt, d) {
			out = append(out, evt)
		}
	}
	return out
}

// HolidaysOn returns, in order, the holidays that fall on d.
func HolidaysOn(d models.Date, holidays []models.Holiday) []models.Holiday {
	out := []models.Holiday{}
	for _, h := range holidays {
		if h.Date == d {
			out = append(out, h)
		}
	}
	return out
}

// Contains reports whether start_date <= d <= end_date at day granularity.
func Contains(evt models.Event, d models.Date) bool {
	return !d.Before(evt.StartDate) && !d.After(evt.EndDate)
}

// Overlaps reports whether evt shares at least one day with [from, to].
func Overlaps(evt models.Event, from, to models.Date) bool {
	return !evt.EndDate.Before(from) && !evt.StartDate.After(to)
}

package calendar

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/month-calendar/webui/internal/storage/models"
)

// ICSProductID identifies documents produced by ExportICS.
const ICSProductID = "-//month-calendar//webui//EN"

// ExportICS renders the events overlapping [from, to] as an iCalendar
// document with one all-day VEVENT per event. DTEND is exclusive.
func ExportICS(events []models.Event, from, to models.Date, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ICSProductID)

	for i, evt := range events {
		if !Overlaps(evt, from, to) {
			continue
		}

		uid := fmt.Sprintf("draft-%d@month-calendar", i)
		if evt.Saved() {
			uid = fmt.Sprintf("event-%d@month-calendar", evt.SN)
		}

		vevent := cal.AddEvent(uid)
		vevent.SetDtStampTime(stamp.UTC())
		vevent.SetSummary(evt.Title)
		if evt.Description != "" {
			vevent.SetDescription(evt.Description)
		}
		vevent.SetAllDayStartAt(evt.StartDate.Time())
		vevent.SetAllDayEndAt(evt.EndDate.AddDays(1).Time())
		for _, email := range evt.Recipients() {
			vevent.AddAttendee(email)
		}
	}

	return cal.Serialize()
}

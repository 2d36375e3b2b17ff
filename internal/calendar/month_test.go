package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/month-calendar/webui/internal/storage/models"
)

func TestMonthGrid(t *testing.T) {
	tests := []struct {
		name      string
		month     Month
		weekStart time.Weekday
		weeks     int
		first     models.Date
		last      models.Date
	}{
		{
			// March 2024 starts on a Friday and ends on a Sunday.
			name: "sunday start", month: Month{2024, time.March}, weekStart: time.Sunday,
			weeks: 6, first: date(2024, 2, 25), last: date(2024, 4, 6),
		},
		{
			name: "monday start", month: Month{2024, time.March}, weekStart: time.Monday,
			weeks: 5, first: date(2024, 2, 26), last: date(2024, 3, 31),
		},
		{
			// February 2015 fits exactly four Sunday-first weeks.
			name: "exact fit", month: Month{2015, time.February}, weekStart: time.Sunday,
			weeks: 4, first: date(2015, 2, 1), last: date(2015, 2, 28),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := MonthGrid(tt.month, tt.weekStart)
			if len(grid) != tt.weeks {
				t.Fatalf("weeks = %d, want %d", len(grid), tt.weeks)
			}
			if grid[0][0] != tt.first {
				t.Errorf("first cell = %v, want %v", grid[0][0], tt.first)
			}
			if got := grid[len(grid)-1][6]; got != tt.last {
				t.Errorf("last cell = %v, want %v", got, tt.last)
			}
			for _, week := range grid {
				if week[0].Weekday() != tt.weekStart {
					t.Errorf("week starts on %v", week[0].Weekday())
				}
			}
		})
	}
}

func TestMonth_Shift(t *testing.T) {
	if got := (Month{2024, time.December}).Shift(1); got != (Month{2025, time.January}) {
		t.Errorf("Shift(1) = %v", got)
	}
	if got := (Month{2024, time.January}).Shift(-1); got != (Month{2023, time.December}) {
		t.Errorf("Shift(-1) = %v", got)
	}
	if got := (Month{2024, time.February}).Last(); got != date(2024, 2, 29) {
		t.Errorf("Last() = %v", got)
	}
}

func TestBuildMonth(t *testing.T) {
	events := []models.Event{{SN: 1, Title: "Trip", StartDate: date(2024, 1, 31), EndDate: date(2024, 2, 2)}}
	holidays := []models.Holiday{{Name: "New Year", Date: date(2024, 1, 1)}}

	view := BuildMonth(Month{2024, time.January}, time.Sunday, events, holidays, date(2024, 1, 15))

	if view.WeekStart != "sunday" {
		t.Errorf("WeekStart = %q", view.WeekStart)
	}
	cells := map[models.Date]DayCell{}
	for _, week := range view.Weeks {
		for _, c := range week {
			cells[c.Date] = c
		}
	}

	if c := cells[date(2024, 1, 1)]; !c.Holiday || len(c.Holidays) != 1 || !c.InMonth {
		t.Errorf("Jan 1 cell = %+v", c)
	}
	if c := cells[date(2024, 1, 15)]; !c.Today || c.Holiday {
		t.Errorf("Jan 15 cell = %+v", c)
	}
	if c := cells[date(2024, 2, 1)]; c.InMonth || len(c.Events) != 1 {
		t.Errorf("Feb 1 cell = %+v, want trailing day carrying the trip", c)
	}
	if c := cells[date(2024, 1, 30)]; len(c.Events) != 0 {
		t.Errorf("Jan 30 cell has events: %+v", c.Events)
	}
}

func TestExportICS(t *testing.T) {
	events := []models.Event{
		{SN: 5, Title: "Launch", Description: "go live", StartDate: date(2024, 3, 10), EndDate: date(2024, 3, 12), Emails: "a@x.io,b@x.io"},
		{SN: 6, Title: "Elsewhere", StartDate: date(2024, 5, 1), EndDate: date(2024, 5, 1)},
	}

	out := ExportICS(events, date(2024, 3, 1), date(2024, 3, 31), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"PRODID:" + ICSProductID,
		"UID:event-5@month-calendar",
		"SUMMARY:Launch",
		"DTSTART;VALUE=DATE:20240310",
		"DTEND;VALUE=DATE:20240313",
		"mailto:a@x.io",
		"mailto:b@x.io",
		"END:VCALENDAR",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ICS output missing %q", want)
		}
	}
	if strings.Contains(out, "Elsewhere") {
		t.Error("ICS output contains an event outside the range")
	}
}

package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/month-calendar/webui/internal/storage/models"
)

// Month is a year and month pair.
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthOf returns the month containing d.
func MonthOf(d models.Date) Month {
	return Month{Year: d.Year, Month: d.Month}
}

// Shift returns the month delta months away.
func (m Month) Shift(delta int) Month {
	return MonthOf(models.NewDate(m.Year, m.Month+time.Month(delta), 1))
}

// First returns the first day of the month.
func (m Month) First() models.Date {
	return models.NewDate(m.Year, m.Month, 1)
}

// Last returns the last day of the month.
func (m Month) Last() models.Date {
	return models.NewDate(m.Year, m.Month+1, 0)
}

// Valid reports whether m names a real month.
func (m Month) Valid() bool {
	return m.Month >= time.January && m.Month <= time.December
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// ParseWeekStart maps "sunday" or "monday" to a weekday, defaulting to Sunday.
func ParseWeekStart(s string) time.Weekday {
	if strings.EqualFold(s, "monday") {
		return time.Monday
	}
	return time.Sunday
}

// MonthGrid returns the visible weeks of m: it starts on the first
// weekStart on or before the 1st and ends once the last day is covered.
func MonthGrid(m Month, weekStart time.Weekday) [][]models.Date {
	first := m.First()
	offset := (int(first.Weekday()) - int(weekStart) + 7) % 7
	cursor := first.AddDays(-offset)
	last := m.Last()

	var weeks [][]models.Date
	for !cursor.After(last) {
		week := make([]models.Date, 7)
		for i := range week {
			week[i] = cursor
			cursor = cursor.AddDays(1)
		}
		weeks = append(weeks, week)
	}
	return weeks
}

// DayCell is one rendered day of the month view.
type DayCell struct {
	Date     models.Date      `json:"date"`
	InMonth  bool             `json:"in_month"`
	Today    bool             `json:"today"`
	Holiday  bool             `json:"holiday"`
	Holidays []models.Holiday `json:"holidays"`
	Events   []models.Event   `json:"events"`
}

// MonthView is the month grid with its per-day associations.
type MonthView struct {
	Year      int         `json:"year"`
	Month     time.Month  `json:"month"`
	WeekStart string      `json:"week_start"`
	Weeks     [][]DayCell `json:"weeks"`
}

// BuildMonth associates events and holidays with every day of the grid.
// Associations are recomputed on every call.
func BuildMonth(m Month, weekStart time.Weekday, events []models.Event, holidays []models.Holiday, today models.Date) MonthView {
	view := MonthView{
		Year:      m.Year,
		Month:     m.Month,
		WeekStart: strings.ToLower(weekStart.String()),
	}
	for _, week := range MonthGrid(m, weekStart) {
		row := make([]DayCell, 0, len(week))
		for _, d := range week {
			hs := HolidaysOn(d, holidays)
			row = append(row, DayCell{
				Date:     d,
				InMonth:  d.Month == m.Month && d.Year == m.Year,
				Today:    d == today,
				Holiday:  len(hs) > 0,
				Holidays: hs,
				Events:   EventsOn(d, events),
			})
		}
		view.Weeks = append(view.Weeks, row)
	}
	return view
}

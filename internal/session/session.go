// Package session holds the UI selection state shared by every handler:
// active month, selected day, selected event, modal visibility and the
// modal's draft. Setters are the only way to change it.
package session

import (
	"sync"
	"time"

	"github.com/month-calendar/webui/internal/calendar"
	"github.com/month-calendar/webui/internal/storage/models"
)

// State is a point-in-time copy of the session.
type State struct {
	ActiveMonth   calendar.Month `json:"active_month"`
	SelectedDay   models.Date    `json:"selected_day"`
	SelectedEvent *models.Event  `json:"selected_event"`
	ModalVisible  bool           `json:"modal_visible"`
	Draft         *models.Draft  `json:"draft"`
}

// Session is the mutable selection state.
type Session struct {
	mu    sync.RWMutex
	state State
	loc   *time.Location

	// OnChange, if set, receives a snapshot after every mutation.
	OnChange func(State)
}

// New returns a session focused on today in loc.
func New(loc *time.Location) *Session {
	if loc == nil {
		loc = time.Local
	}
	today := models.Today(loc)
	return &Session{
		loc: loc,
		state: State{
			ActiveMonth: calendar.MonthOf(today),
			SelectedDay: today,
		},
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Today returns the current date in the session's location.
func (s *Session) Today() models.Date {
	return models.Today(s.loc)
}

// SetActiveMonth switches the displayed month.
func (s *Session) SetActiveMonth(m calendar.Month) {
	s.update(func(st *State) { st.ActiveMonth = m })
}

// ShiftMonth moves the displayed month by delta.
func (s *Session) ShiftMonth(delta int) {
	s.update(func(st *State) { st.ActiveMonth = st.ActiveMonth.Shift(delta) })
}

// ResetToToday shows the current month and selects today.
func (s *Session) ResetToToday() {
	today := s.Today()
	s.update(func(st *State) {
		st.ActiveMonth = calendar.MonthOf(today)
		st.SelectedDay = today
	})
}

// SetSelectedDay selects d.
func (s *Session) SetSelectedDay(d models.Date) {
	s.update(func(st *State) { st.SelectedDay = d })
}

// SetSelectedEvent selects evt, or clears the selection when evt is nil.
func (s *Session) SetSelectedEvent(evt *models.Event) {
	s.update(func(st *State) { st.SelectedEvent = copyEvent(evt) })
}

// SetModalVisible shows or hides the event modal. Hiding it always clears
// the selected event and the draft.
func (s *Session) SetModalVisible(visible bool) {
	s.update(func(st *State) {
		st.ModalVisible = visible
		if !visible {
			st.SelectedEvent = nil
			st.Draft = nil
		}
	})
}

// SetDraft replaces the modal's form state.
func (s *Session) SetDraft(d models.Draft) {
	s.update(func(st *State) { st.Draft = copyDraft(&d) })
}

// OpenForDay opens the modal for a new event on d.
func (s *Session) OpenForDay(d models.Date) {
	s.update(func(st *State) {
		st.SelectedDay = d
		st.SelectedEvent = nil
		st.Draft = &models.Draft{StartDate: d, EndDate: d, Emails: []string{}}
		st.ModalVisible = true
	})
}

// OpenForEvent opens the modal pre-filled from evt.
func (s *Session) OpenForEvent(evt models.Event) {
	s.update(func(st *State) {
		draft := models.DraftFrom(evt)
		st.SelectedEvent = copyEvent(&evt)
		st.Draft = &draft
		st.ModalVisible = true
	})
}

func (s *Session) update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state.clone()
	s.mu.Unlock()

	if s.OnChange != nil {
		s.OnChange(snapshot)
	}
}

func (st State) clone() State {
	out := st
	out.SelectedEvent = copyEvent(st.SelectedEvent)
	out.Draft = copyDraft(st.Draft)
	return out
}

func copyEvent(evt *models.Event) *models.Event {
	if evt == nil {
		return nil
	}
	c := *evt
	return &c
}

func copyDraft(d *models.Draft) *models.Draft {
	if d == nil {
		return nil
	}
	c := *d
	c.Emails = append([]string{}, d.Emails...)
	return &c
}

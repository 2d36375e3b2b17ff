package handlers

import (
	"net/http"
	"time"

	"github.com/month-calendar/webui/internal/api/middleware"
	"github.com/month-calendar/webui/internal/calendar"
	"github.com/month-calendar/webui/internal/session"
	"github.com/month-calendar/webui/internal/storage/models"
)

// GetSession returns the session snapshot.
func GetSession(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sess.Snapshot())
	}
}

// SetMonthRequest selects the displayed month.
type SetMonthRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// SetMonth switches the active month.
func SetMonth(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SetMonthRequest
		if err := decodeJSON(w, r, &req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		m := calendar.Month{Year: req.Year, Month: time.Month(req.Month)}
		if !m.Valid() {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "month must be between 1 and 12")
			return
		}
		sess.SetActiveMonth(m)
		writeJSON(w, http.StatusOK, sess.Snapshot())
	}
}

// ShiftMonthRequest moves the displayed month.
type ShiftMonthRequest struct {
	Delta int `json:"delta"`
}

// ShiftMonth moves the active month forward or back.
func ShiftMonth(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ShiftMonthRequest
		if err := decodeJSON(w, r, &req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		sess.ShiftMonth(req.Delta)
		writeJSON(w, http.StatusOK, sess.Snapshot())
	}
}

// Today jumps to the current month and selects today.
func Today(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess.ResetToToday()
		writeJSON(w, http.StatusOK, sess.Snapshot())
	}
}

// SetDayRequest selects a day.
type SetDayRequest struct {
	Date models.Date `json:"date"`
}

// SetDay selects a day without opening the modal.
func SetDay(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SetDayRequest
		if err := decodeJSON(w, r, &req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.Date.IsZero() {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "date is required")
			return
		}
		sess.SetSelectedDay(req.Date)
		writeJSON(w, http.StatusOK, sess.Snapshot())
	}
}

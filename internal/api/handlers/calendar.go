package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/month-calendar/webui/internal/api/middleware"
	"github.com/month-calendar/webui/internal/calendar"
	"github.com/month-calendar/webui/internal/session"
	"github.com/month-calendar/webui/internal/store"
	"github.com/month-calendar/webui/internal/websocket"
)

// GetMonth renders the session's active month.
func GetMonth(sess *session.Session, loader *calendar.Loader, weekStart time.Weekday) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		active := sess.Snapshot().ActiveMonth
		view := calendar.BuildMonth(active, weekStart, loader.Events(), loader.Holidays(), sess.Today())
		writeJSON(w, http.StatusOK, view)
	}
}

// ListEvents returns the local event store's collection.
func ListEvents(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, st.Events())
	}
}

// ListHolidays returns the loaded holidays.
func ListHolidays(loader *calendar.Loader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, loader.Holidays())
	}
}

// Refresh re-reads events and holidays from the remote service.
func Refresh(loader *calendar.Loader, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loader.Refresh(r.Context())
		broadcaster.BroadcastRefresh(websocket.ReasonManual)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ExportICS returns the month given by ?year=&month= as an iCalendar file.
// Without parameters the session's active month is exported.
func ExportICS(sess *session.Session, loader *calendar.Loader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := sess.Snapshot().ActiveMonth

		q := r.URL.Query()
		if q.Get("year") != "" || q.Get("month") != "" {
			year, yerr := strconv.Atoi(q.Get("year"))
			month, merr := strconv.Atoi(q.Get("month"))
			m = calendar.Month{Year: year, Month: time.Month(month)}
			if yerr != nil || merr != nil || !m.Valid() {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "year and month must be a valid month")
				return
			}
		}

		body := calendar.ExportICS(loader.Events(), m.First(), m.Last(), time.Now())
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="calendar-`+m.String()+`.ics"`)
		_, _ = w.Write([]byte(body))
	}
}

// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/month-calendar/webui/internal/api/handlers"
	"github.com/month-calendar/webui/internal/api/middleware"
	"github.com/month-calendar/webui/internal/calendar"
	"github.com/month-calendar/webui/internal/eventsync"
	"github.com/month-calendar/webui/internal/logging"
	"github.com/month-calendar/webui/internal/session"
	"github.com/month-calendar/webui/internal/storage"
	"github.com/month-calendar/webui/internal/store"
	"github.com/month-calendar/webui/internal/websocket"
)

// Services bundles what the handlers need.
type Services struct {
	DB        *storage.DB
	Store     *store.Store
	Loader    *calendar.Loader
	Session   *session.Session
	Sync      *eventsync.Service
	Hub       *websocket.Hub
	Scheduler *calendar.Scheduler
	WeekStart time.Weekday
	StaticDir string
	Log       *logrus.Entry
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(s Services) *mux.Router {
	log := s.Log
	if log == nil {
		log = logging.Discard()
	}
	broadcaster := websocket.NewEventBroadcaster(s.Hub)

	r := mux.NewRouter()

	r.Use(middleware.Logging(log))
	r.Use(middleware.ErrorRecovery(log))

	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(s.DB)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(s.Store, s.Loader, s.Hub, s.Scheduler)).Methods("GET")

	// WebSocket endpoint
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(s.Hub, log)).Methods("GET")

	// Calendar view
	api.HandleFunc("/month", handlers.GetMonth(s.Session, s.Loader, s.WeekStart)).Methods("GET")
	api.HandleFunc("/events", handlers.ListEvents(s.Store)).Methods("GET")
	api.HandleFunc("/holidays", handlers.ListHolidays(s.Loader)).Methods("GET")
	api.HandleFunc("/refresh", handlers.Refresh(s.Loader, broadcaster)).Methods("POST")
	api.HandleFunc("/export.ics", handlers.ExportICS(s.Session, s.Loader)).Methods("GET")

	// Session selection
	api.HandleFunc("/session", handlers.GetSession(s.Session)).Methods("GET")
	api.HandleFunc("/session/month", handlers.SetMonth(s.Session)).Methods("PUT")
	api.HandleFunc("/session/month/shift", handlers.ShiftMonth(s.Session)).Methods("POST")
	api.HandleFunc("/session/today", handlers.Today(s.Session)).Methods("POST")
	api.HandleFunc("/session/day", handlers.SetDay(s.Session)).Methods("PUT")

	// Event modal
	api.HandleFunc("/modal/open", handlers.OpenModal(s.Session, s.Store)).Methods("POST")
	api.HandleFunc("/modal/close", handlers.CloseModal(s.Session)).Methods("POST")
	api.HandleFunc("/modal/draft", handlers.UpdateDraft(s.Session)).Methods("PUT")
	api.HandleFunc("/modal/submit", handlers.SubmitModal(s.Sync)).Methods("POST")
	api.HandleFunc("/modal/delete", handlers.DeleteFromModal(s.Sync)).Methods("POST")

	// Serve static frontend files
	if s.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.StaticDir)))
	}

	return r
}

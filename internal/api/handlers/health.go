package handlers

import (
	"net/http"

	"github.com/month-calendar/webui/internal/calendar"
	"github.com/month-calendar/webui/internal/storage"
	"github.com/month-calendar/webui/internal/store"
	"github.com/month-calendar/webui/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.Healthy(r.Context())

		status := "healthy"
		code := http.StatusOK
		if !dbConnected {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		writeJSON(w, code, HealthResponse{
			Status:      status,
			DBConnected: dbConnected,
		})
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	EventsCount      int    `json:"events_count"`
	HolidaysCount    int    `json:"holidays_count"`
	WebSocketClients int    `json:"websocket_clients"`
	NextRefreshAt    string `json:"next_refresh_at,omitempty"`
}

// Status returns a handler that reports store and connection counts.
func Status(st *store.Store, loader *calendar.Loader, hub *websocket.Hub, scheduler *calendar.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := StatusResponse{
			EventsCount:      st.Len(),
			HolidaysCount:    len(loader.Holidays()),
			WebSocketClients: hub.ClientCount(),
		}
		if scheduler != nil {
			if next, ok := scheduler.NextRun(); ok {
				response.NextRefreshAt = next
			}
		}
		writeJSON(w, http.StatusOK, response)
	}
}

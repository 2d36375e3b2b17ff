package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/month-calendar/webui/internal/calendar"
	"github.com/month-calendar/webui/internal/eventsync"
	"github.com/month-calendar/webui/internal/remote"
	"github.com/month-calendar/webui/internal/session"
	"github.com/month-calendar/webui/internal/storage"
	"github.com/month-calendar/webui/internal/storage/models"
	"github.com/month-calendar/webui/internal/store"
	"github.com/month-calendar/webui/internal/websocket"
)

// fakeBackend is an in-memory events service.
type fakeBackend struct {
	mu       sync.Mutex
	events   []models.Event
	nextSN   int64
	failPost bool
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/events":
		json.NewEncoder(w).Encode(b.events)
	case r.Method == http.MethodGet && r.URL.Path == "/api/holidays":
		w.Write([]byte(`[{"name":"Spring Day","date":"2024-03-20"}]`))
	case r.Method == http.MethodPost && r.URL.Path == "/api/events":
		if b.failPost {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"bad"}`))
			return
		}
		var p models.EventPayload
		json.NewDecoder(r.Body).Decode(&p)
		b.nextSN++
		evt := models.Event{SN: b.nextSN, Title: p.Title, Description: p.Description,
			StartDate: p.StartDate, EndDate: p.EndDate, Emails: p.Emails}
		b.events = append(b.events, evt)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"event": evt})
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	}
}

type testApp struct {
	backend *fakeBackend
	slots   *storage.SlotRepository
	store   *store.Store
	session *session.Session
	handler http.Handler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()

	backend := &fakeBackend{nextSN: 41}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	db, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.RunMigrations(ctx, db, nil); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	slots := storage.NewSlotRepository(db)
	st := store.New(storage.SavedEventsSlot, slots, nil)
	client := remote.NewClient(srv.URL, 5*time.Second, nil)
	loader := calendar.NewLoader(client, st, nil)
	sess := session.New(time.UTC)
	hub := websocket.NewHub(nil)
	svc := eventsync.NewService(client, st, sess, loader, websocket.NewEventBroadcaster(hub), nil)

	sess.SetActiveMonth(calendar.Month{Year: 2024, Month: time.March})
	loader.Refresh(ctx)

	return &testApp{
		backend: backend,
		slots:   slots,
		store:   st,
		session: sess,
		handler: NewRouter(Services{
			DB:        db,
			Store:     st,
			Loader:    loader,
			Session:   sess,
			Sync:      svc,
			Hub:       hub,
			WeekStart: time.Sunday,
		}),
	}
}

func (a *testApp) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(method, path, reader))
	return rec
}

func TestRouter_Health(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"db_connected":true`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRouter_MonthView(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/month", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var view calendar.MonthView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decoding month view: %v", err)
	}
	if view.Year != 2024 || view.Month != time.March || len(view.Weeks) == 0 {
		t.Fatalf("view = %d-%d with %d weeks", view.Year, view.Month, len(view.Weeks))
	}

	found := false
	for _, week := range view.Weeks {
		for _, cell := range week {
			if cell.Date == models.NewDate(2024, time.March, 20) {
				found = cell.Holiday
			}
		}
	}
	if !found {
		t.Error("March 20 not marked as a holiday")
	}
}

func TestRouter_CreateFlow(t *testing.T) {
	app := newTestApp(t)

	steps := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, "/api/modal/open", `{"date":"2024-03-10"}`, http.StatusOK},
		{http.MethodPut, "/api/modal/draft", `{"title":"Launch","start_date":"2024-03-10","end_date":"2024-03-12","emails":["a@x.io"]}`, http.StatusOK},
		{http.MethodPost, "/api/modal/submit", "", http.StatusOK},
	}
	for _, s := range steps {
		if rec := app.do(t, s.method, s.path, s.body); rec.Code != s.want {
			t.Fatalf("%s %s = %d, want %d: %s", s.method, s.path, rec.Code, s.want, rec.Body.String())
		}
	}

	got, ok := app.store.Find(42)
	if !ok || got.Title != "Launch" {
		t.Fatalf("store after submit = %+v", app.store.Events())
	}
	raw, ok, err := app.slots.Get(context.Background(), storage.SavedEventsSlot)
	if err != nil || !ok || !strings.Contains(raw, `"sn":42`) {
		t.Errorf("persisted slot = %q, %v, %v", raw, ok, err)
	}
	if st := app.session.Snapshot(); st.ModalVisible || st.Draft != nil {
		t.Errorf("modal still open: %+v", st)
	}
}

func TestRouter_SubmitFailures(t *testing.T) {
	tests := []struct {
		name     string
		draft    string
		failPost bool
		want     int
	}{
		{name: "validation", draft: `{"title":"","start_date":"2024-03-10","end_date":"2024-03-10"}`, want: http.StatusUnprocessableEntity},
		{name: "remote rejects", draft: `{"title":"x","start_date":"2024-03-10","end_date":"2024-03-10"}`, failPost: true, want: http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			app.backend.failPost = tt.failPost

			app.do(t, http.MethodPost, "/api/modal/open", `{"date":"2024-03-10"}`)
			app.do(t, http.MethodPut, "/api/modal/draft", tt.draft)
			rec := app.do(t, http.MethodPost, "/api/modal/submit", "")

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
			if app.store.Len() != 0 {
				t.Errorf("store mutated: %+v", app.store.Events())
			}
			if !app.session.Snapshot().ModalVisible {
				t.Error("modal closed after failure")
			}
		})
	}
}

func TestRouter_DraftRequiresOpenModal(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPut, "/api/modal/draft", `{"title":"x"}`)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestRouter_OpenUnknownEvent(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/modal/open", `{"sn":99}`)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRouter_SessionNavigation(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/session/month/shift", `{"delta":-3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := app.session.Snapshot().ActiveMonth; got != (calendar.Month{Year: 2023, Month: time.December}) {
		t.Errorf("active month = %v", got)
	}

	if rec := app.do(t, http.MethodPut, "/api/session/month", `{"year":2024,"month":13}`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid month status = %d, want 400", rec.Code)
	}
}

func TestRouter_ExportICS(t *testing.T) {
	app := newTestApp(t)
	app.store.Dispatch(context.Background(), store.Push{Event: models.Event{
		SN: 7, Title: "Offsite", StartDate: models.NewDate(2024, time.March, 4), EndDate: models.NewDate(2024, time.March, 5),
	}})

	rec := app.do(t, http.MethodGet, "/api/export.ics?year=2024&month=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "SUMMARY:Offsite") {
		t.Errorf("body missing event:\n%s", rec.Body.String())
	}

	if rec := app.do(t, http.MethodGet, "/api/export.ics?year=2024&month=0", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad month status = %d, want 400", rec.Code)
	}
}

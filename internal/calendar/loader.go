package calendar

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/month-calendar/webui/internal/logging"
	"github.com/month-calendar/webui/internal/storage/models"
	"github.com/month-calendar/webui/internal/store"
)

// Source is the read side of the Remote Event Service.
type Source interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListHolidays(ctx context.Context) ([]models.Holiday, error)
}

// Loader keeps the collections the month view renders from.
type Loader struct {
	source Source
	store  *store.Store
	log    *logrus.Entry

	// refreshMu serializes refreshes with callers that write remotely and
	// then update the store.
	refreshMu sync.Mutex

	mu          sync.RWMutex
	holidays    []models.Holiday
	eventsStale bool
}

// NewLoader creates a loader. Until the first Refresh it renders the
// store's seeded events and no holidays.
func NewLoader(source Source, st *store.Store, log *logrus.Entry) *Loader {
	if log == nil {
		log = logging.Discard()
	}
	return &Loader{
		source:   source,
		store:    st,
		log:      log,
		holidays: []models.Holiday{},
	}
}

// Refresh re-reads events and holidays. A failed events read leaves the
// store alone but renders no events; a failed holidays read renders none.
func (l *Loader) Refresh(ctx context.Context) {
	l.refreshMu.Lock()
	defer l.refreshMu.Unlock()

	events, eventsErr := l.source.ListEvents(ctx)
	if eventsErr != nil {
		l.log.WithError(eventsErr).Error("error fetching events")
	} else {
		l.store.Reconcile(ctx, events)
	}

	holidays, holidaysErr := l.source.ListHolidays(ctx)
	if holidaysErr != nil {
		l.log.WithError(holidaysErr).Error("error fetching holidays")
		holidays = []models.Holiday{}
	}

	l.mu.Lock()
	l.eventsStale = eventsErr != nil
	l.holidays = holidays
	l.mu.Unlock()

	l.log.WithFields(logrus.Fields{
		"events":   l.store.Len(),
		"holidays": len(holidays),
		"degraded": eventsErr != nil || holidaysErr != nil,
	}).Info("calendar view refreshed")
}

// Hold blocks refreshes until release is called.
func (l *Loader) Hold() (release func()) {
	l.refreshMu.Lock()
	return l.refreshMu.Unlock
}

// Events returns the events to render.
func (l *Loader) Events() []models.Event {
	l.mu.RLock()
	stale := l.eventsStale
	l.mu.RUnlock()

	if stale {
		return []models.Event{}
	}
	return l.store.Events()
}

// Holidays returns the holidays to render.
func (l *Loader) Holidays() []models.Holiday {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Holiday, len(l.holidays))
	copy(out, l.holidays)
	return out
}

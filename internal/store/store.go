package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/month-calendar/webui/internal/logging"
	"github.com/month-calendar/webui/internal/storage/models"
)

// SlotReader reads a named slot from the durable store.
type SlotReader interface {
	Get(ctx context.Context, name string) (string, bool, error)
}

// SlotWriter writes a named slot to the durable store.
type SlotWriter interface {
	Put(ctx context.Context, name, value string) error
}

// Store owns the in-memory event collection for the session.
type Store struct {
	mu     sync.RWMutex
	events []models.Event

	slot    string
	persist SlotWriter
	log     *logrus.Entry
}

// New creates an empty store. When persist is non-nil every dispatch
// rewrites slot with the new collection.
func New(slot string, persist SlotWriter, log *logrus.Entry) *Store {
	if log == nil {
		log = logging.Discard()
	}
	return &Store{
		events:  []models.Event{},
		slot:    slot,
		persist: persist,
		log:     log,
	}
}

// Load seeds the store from the durable slot. An absent slot leaves the
// collection empty. It is meant to run once, before the first render.
func (s *Store) Load(ctx context.Context, r SlotReader) error {
	raw, ok, err := r.Get(ctx, s.slot)
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.slot, err)
	}

	events := []models.Event{}
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &events); err != nil {
			return fmt.Errorf("parsing %s: %w", s.slot, err)
		}
		if events == nil {
			events = []models.Event{}
		}
	}

	s.mu.Lock()
	s.events = events
	s.mu.Unlock()

	s.log.WithField("count", len(events)).Info("event store seeded")
	return nil
}

// Dispatch applies action and persists the resulting collection. The save
// happens under the store lock so the slot never lags a later dispatch.
func (s *Store) Dispatch(ctx context.Context, action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = Reduce(s.events, action)

	s.log.WithFields(logrus.Fields{
		"action": action.Kind(),
		"sn":     action.Payload().SN,
		"count":  len(s.events),
	}).Debug("event store dispatch")

	s.save(ctx, s.events)
}

// Reconcile brings the collection in line with a successful remote read.
// Known records are updated, new ones pushed, and saved records missing
// remotely deleted. Unsaved drafts are kept.
func (s *Store) Reconcile(ctx context.Context, remote []models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := make(map[int64]bool, len(s.events))
	for _, evt := range s.events {
		if evt.Saved() {
			known[evt.SN] = true
		}
	}
	wanted := make(map[int64]bool, len(remote))
	for _, evt := range remote {
		wanted[evt.SN] = true
	}

	var actions []Action
	for _, evt := range s.events {
		if evt.Saved() && !wanted[evt.SN] {
			actions = append(actions, Delete{Event: evt})
		}
	}
	for _, evt := range remote {
		if !evt.Saved() {
			continue
		}
		if known[evt.SN] {
			actions = append(actions, Update{Event: evt})
		} else {
			actions = append(actions, Push{Event: evt})
			known[evt.SN] = true
		}
	}
	if len(actions) == 0 {
		return
	}

	for _, a := range actions {
		s.events = Reduce(s.events, a)
	}

	s.log.WithFields(logrus.Fields{
		"actions": len(actions),
		"count":   len(s.events),
	}).Debug("event store reconciled")

	s.save(ctx, s.events)
}

// Events returns a copy of the current collection.
func (s *Store) Events() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Find returns the event with the given SN.
func (s *Store) Find(sn int64) (models.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, evt := range s.events {
		if evt.SN == sn {
			return evt, true
		}
	}
	return models.Event{}, false
}

// Len returns the number of events held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// save writes the collection to the durable slot. Callers hold s.mu.
// Failures are logged; the in-memory collection stays authoritative.
func (s *Store) save(ctx context.Context, events []models.Event) {
	if s.persist == nil {
		return
	}
	data, err := json.Marshal(events)
	if err != nil {
		s.log.WithError(err).Error("encoding events for durable store")
		return
	}
	if err := s.persist.Put(ctx, s.slot, string(data)); err != nil {
		s.log.WithError(err).Error("writing events to durable store")
	}
}

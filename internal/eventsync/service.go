// Package eventsync runs the create, modify and delete flow between the
// event modal, the remote event service and the local event store.
package eventsync

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/month-calendar/webui/internal/logging"
	"github.com/month-calendar/webui/internal/session"
	"github.com/month-calendar/webui/internal/storage/models"
	"github.com/month-calendar/webui/internal/store"
	"github.com/month-calendar/webui/internal/websocket"
)

// User-facing failure messages.
const (
	SaveFailedMessage   = "Failed to save event. Please try again."
	DeleteFailedMessage = "Failed to delete event. Please try again."
)

// State is the stage a submission reached.
type State string

const (
	StateDraft      State = "draft"
	StateSubmitting State = "submitting"
	StateCommitted  State = "committed"
	StateFailed     State = "failed"
)

// Outcome is the result of a Submit or Delete.
type Outcome struct {
	State State         `json:"state"`
	Event *models.Event `json:"event,omitempty"`
	Err   error         `json:"-"`
}

// ValidationError reports a draft that cannot be sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Remote is the write side of the remote event service.
type Remote interface {
	CreateEvent(ctx context.Context, payload models.EventPayload) (models.Event, error)
	UpdateEvent(ctx context.Context, sn int64, payload models.EventPayload) error
	DeleteEvent(ctx context.Context, sn int64) error
}

// Refresher re-reads the rendered collections. Hold keeps Refresh from
// running until release is called.
type Refresher interface {
	Refresh(ctx context.Context)
	Hold() (release func())
}

// Notifier pushes messages to connected browsers.
type Notifier interface {
	BroadcastNotification(level, title, message string)
	BroadcastRefresh(reason string)
}

// Service coordinates one session's event mutations.
type Service struct {
	remote   Remote
	store    *store.Store
	session  *session.Session
	loader   Refresher
	notifier Notifier
	log      *logrus.Entry

	mu    sync.Mutex
	state State
}

// NewService creates a sync service. loader and notifier may be nil.
func NewService(remote Remote, st *store.Store, sess *session.Session, loader Refresher, notifier Notifier, log *logrus.Entry) *Service {
	if log == nil {
		log = logging.Discard()
	}
	return &Service{
		remote:   remote,
		store:    st,
		session:  sess,
		loader:   loader,
		notifier: notifier,
		log:      log,
		state:    StateDraft,
	}
}

// State returns the stage of the most recent submission.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Service) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Submit sends the modal's draft. A selected event with an identity is
// modified in place; anything else is created.
func (s *Service) Submit(ctx context.Context) Outcome {
	snap := s.session.Snapshot()
	if snap.Draft == nil {
		return s.fail(SaveFailedMessage, &ValidationError{Field: "draft", Message: "no event is being edited"})
	}
	draft := *snap.Draft
	if err := Validate(draft); err != nil {
		return s.fail(SaveFailedMessage, err)
	}

	payload := draft.Payload()
	s.setState(StateSubmitting)
	if snap.SelectedEvent != nil && snap.SelectedEvent.Saved() {
		sn := snap.SelectedEvent.SN
		s.log.WithField("sn", sn).Debug("modifying event")
		release := s.hold()
		if err := s.remote.UpdateEvent(ctx, sn, payload); err != nil {
			release()
			return s.fail(SaveFailedMessage, fmt.Errorf("modifying event %d: %w", sn, err))
		}

		local := draft.Event()
		local.SN = sn
		s.store.Dispatch(ctx, store.Update{Event: local})
		release()
		s.commit(ctx, websocket.ReasonEventUpdated)
		return Outcome{State: StateCommitted, Event: &local}
	}

	s.log.Debug("creating event")
	release := s.hold()
	created, err := s.remote.CreateEvent(ctx, payload)
	if err != nil {
		release()
		return s.fail(SaveFailedMessage, fmt.Errorf("creating event: %w", err))
	}
	s.store.Dispatch(ctx, store.Push{Event: created})
	release()
	s.commit(ctx, websocket.ReasonEventCreated)
	return Outcome{State: StateCommitted, Event: &created}
}

// Delete removes the selected event. Without a saved selection it does
// nothing and reports StateDraft.
func (s *Service) Delete(ctx context.Context) Outcome {
	snap := s.session.Snapshot()
	if snap.SelectedEvent == nil || !snap.SelectedEvent.Saved() {
		return Outcome{State: StateDraft}
	}
	selected := *snap.SelectedEvent
	s.setState(StateSubmitting)

	release := s.hold()
	if err := s.remote.DeleteEvent(ctx, selected.SN); err != nil {
		release()
		return s.fail(DeleteFailedMessage, fmt.Errorf("deleting event %d: %w", selected.SN, err))
	}
	s.store.Dispatch(ctx, store.Delete{Event: selected})
	release()
	s.commit(ctx, websocket.ReasonEventDeleted)
	return Outcome{State: StateCommitted, Event: &selected}
}

// Validate checks a draft before it is sent.
func Validate(d models.Draft) error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if d.StartDate.IsZero() {
		return &ValidationError{Field: "start_date", Message: "start date is required"}
	}
	if d.EndDate.IsZero() {
		return &ValidationError{Field: "end_date", Message: "end date is required"}
	}
	for _, addr := range d.Emails {
		if _, err := mail.ParseAddress(addr); err != nil {
			return &ValidationError{Field: "emails", Message: fmt.Sprintf("invalid address %q", addr)}
		}
	}
	return nil
}

// hold keeps refreshes out between a remote write and the matching store
// dispatch.
func (s *Service) hold() (release func()) {
	if s.loader == nil {
		return func() {}
	}
	return s.loader.Hold()
}

func (s *Service) commit(ctx context.Context, reason string) {
	s.setState(StateCommitted)
	s.session.SetModalVisible(false)
	if s.loader != nil {
		s.loader.Refresh(ctx)
	}
	if s.notifier != nil {
		s.notifier.BroadcastRefresh(reason)
	}
}

func (s *Service) fail(message string, err error) Outcome {
	s.setState(StateFailed)
	s.log.WithError(err).Warn("event sync failed")
	if s.notifier != nil {
		s.notifier.BroadcastNotification(websocket.LevelError, "Error", message)
	}
	return Outcome{State: StateFailed, Err: err}
}

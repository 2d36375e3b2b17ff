package calendar

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/month-calendar/webui/internal/logging"
	"github.com/month-calendar/webui/internal/websocket"
)

// Scheduler periodically refreshes the calendar view from the remote
// service. It is idle unless a schedule is configured.
type Scheduler struct {
	cron        *cron.Cron
	loader      *Loader
	broadcaster *websocket.EventBroadcaster
	spec        string
	log         *logrus.Entry

	mu      sync.Mutex
	entryID cron.EntryID
	running bool
}

// NewScheduler creates a scheduler for spec (robfig/cron syntax, e.g.
// "@every 15m" or "*/15 * * * *"). An empty spec disables it.
func NewScheduler(loader *Loader, hub *websocket.Hub, spec string, log *logrus.Entry) *Scheduler {
	if log == nil {
		log = logging.Discard()
	}

	var broadcaster *websocket.EventBroadcaster
	if hub != nil {
		broadcaster = websocket.NewEventBroadcaster(hub)
	}

	return &Scheduler{
		cron:        cron.New(),
		loader:      loader,
		broadcaster: broadcaster,
		spec:        spec,
		log:         log,
	}
}

// Enabled reports whether a schedule is configured.
func (s *Scheduler) Enabled() bool {
	return s.spec != ""
}

// Start registers the refresh job and starts the cron runner.
func (s *Scheduler) Start() error {
	if !s.Enabled() {
		s.log.Info("scheduled refresh disabled")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	id, err := s.cron.AddFunc(s.spec, s.refresh)
	if err != nil {
		return fmt.Errorf("scheduling refresh %q: %w", s.spec, err)
	}
	s.entryID = id
	s.running = true
	s.cron.Start()

	s.log.WithField("spec", s.spec).Info("scheduled refresh started")
	return nil
}

// Stop waits for a running refresh to finish and stops the runner.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.log.Info("scheduled refresh stopped")
}

// NextRun returns the next scheduled refresh, if any.
func (s *Scheduler) NextRun() (next string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return "", false
	}
	entry := s.cron.Entry(s.entryID)
	if entry.Next.IsZero() {
		return "", false
	}
	return entry.Next.UTC().Format("2006-01-02T15:04:05Z"), true
}

func (s *Scheduler) refresh() {
	s.loader.Refresh(context.Background())
	if s.broadcaster != nil {
		s.broadcaster.BroadcastRefresh(websocket.ReasonScheduled)
	}
}

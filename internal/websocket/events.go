package websocket

// Refresh reasons.
const (
	ReasonEventCreated = "event.created"
	ReasonEventUpdated = "event.updated"
	ReasonEventDeleted = "event.deleted"
	ReasonScheduled    = "scheduled"
	ReasonManual       = "manual"
)

// EventBroadcaster handles broadcasting WebSocket events.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// BroadcastNotification sends a user-facing notification.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	b.broadcast(NewMessage(TypeNotification, NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	}))
}

// BroadcastRefresh tells clients to reload the calendar view.
func (b *EventBroadcaster) BroadcastRefresh(reason string) {
	b.broadcast(NewMessage(TypeCalendarRefresh, RefreshPayload{Reason: reason}))
}

// BroadcastSessionChanged sends the new session state.
func (b *EventBroadcaster) BroadcastSessionChanged(snapshot any) {
	b.broadcast(NewMessage(TypeSessionChanged, snapshot))
}

func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		b.hub.log.WithError(err).WithField("type", msg.Type).Error("encoding websocket message")
		return
	}
	b.hub.Broadcast(data)
}

// Package store holds the session's authoritative list of events. The list
// changes only through Dispatch with one of the three actions below.
package store

import (
	"fmt"

	"github.com/month-calendar/webui/internal/storage/models"
)

// Kind names an action.
type Kind string

const (
	KindPush   Kind = "push"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// Action is a closed set: only Push, Update and Delete implement it.
type Action interface {
	Kind() Kind
	Payload() models.Event
	sealed()
}

// Push appends Event to the collection.
type Push struct{ Event models.Event }

// Update replaces the element with the same SN.
type Update struct{ Event models.Event }

// Delete removes the element with the same SN.
type Delete struct{ Event models.Event }

func (Push) Kind() Kind   { return KindPush }
func (Update) Kind() Kind { return KindUpdate }
func (Delete) Kind() Kind { return KindDelete }

func (a Push) Payload() models.Event   { return a.Event }
func (a Update) Payload() models.Event { return a.Event }
func (a Delete) Payload() models.Event { return a.Event }

func (Push) sealed()   {}
func (Update) sealed() {}
func (Delete) sealed() {}

// Reduce returns the collection that results from applying action to state.
// state is never modified. An action outside the closed set is a caller
// defect and panics.
func Reduce(state []models.Event, action Action) []models.Event {
	switch a := action.(type) {
	case Push:
		next := make([]models.Event, 0, len(state)+1)
		next = append(next, state...)
		return append(next, a.Event)

	case Update:
		next := make([]models.Event, len(state))
		for i, evt := range state {
			if evt.SN == a.Event.SN {
				evt = a.Event
			}
			next[i] = evt
		}
		return next

	case Delete:
		next := make([]models.Event, 0, len(state))
		for _, evt := range state {
			if evt.SN != a.Event.SN {
				next = append(next, evt)
			}
		}
		return next

	default:
		panic(fmt.Sprintf("store: unknown action type %T", action))
	}
}

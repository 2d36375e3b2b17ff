// Package models contains the domain models for the application.
package models

import (
	"strings"
)

// Event represents a user-created calendar item spanning an inclusive range
// of days. SN is assigned by the remote service; zero means not yet saved.
type Event struct {
	SN          int64  `json:"sn,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   Date   `json:"start_date"`
	EndDate     Date   `json:"end_date"`
	Emails      string `json:"emails"`
}

// Saved reports whether the event carries a server-assigned identity.
func (e Event) Saved() bool {
	return e.SN != 0
}

// Recipients returns the comma-joined Emails as a list.
func (e Event) Recipients() []string {
	return SplitEmails(e.Emails)
}

// Holiday is a read-only, single-date annotation sourced from the backend.
type Holiday struct {
	Name string `json:"name"`
	Date Date   `json:"date"`
}

// Draft holds the event modal's form fields until they are submitted.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	StartDate   Date     `json:"start_date"`
	EndDate     Date     `json:"end_date"`
	Emails      []string `json:"emails"`
}

// DraftFrom pre-fills a draft from an existing event.
func DraftFrom(e Event) Draft {
	return Draft{
		Title:       e.Title,
		Description: e.Description,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		Emails:      SplitEmails(e.Emails),
	}
}

// Event assembles the record a draft describes. The identity is left unset.
func (d Draft) Event() Event {
	return Event{
		Title:       d.Title,
		Description: d.Description,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		Emails:      strings.Join(d.Emails, ","),
	}
}

// EventPayload is the request body for creating or modifying an event.
type EventPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   Date   `json:"start_date"`
	EndDate     Date   `json:"end_date"`
	Emails      string `json:"emails"`
}

// Payload returns the wire body for d.
func (d Draft) Payload() EventPayload {
	e := d.Event()
	return EventPayload{
		Title:       e.Title,
		Description: e.Description,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		Emails:      e.Emails,
	}
}

// SplitEmails splits a comma-joined recipient list, dropping blanks.
func SplitEmails(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

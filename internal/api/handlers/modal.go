package handlers

import (
	"errors"
	"net/http"

	"github.com/month-calendar/webui/internal/api/middleware"
	"github.com/month-calendar/webui/internal/eventsync"
	"github.com/month-calendar/webui/internal/session"
	"github.com/month-calendar/webui/internal/storage/models"
	"github.com/month-calendar/webui/internal/store"
)

// OpenModalRequest opens the modal for a day or for an existing event.
type OpenModalRequest struct {
	Date models.Date `json:"date"`
	SN   int64       `json:"sn"`
}

// OpenModal opens the event modal. An sn selects that event; otherwise a
// fresh draft is started on date.
func OpenModal(sess *session.Session, st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OpenModalRequest
		if err := decodeJSON(w, r, &req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		switch {
		case req.SN != 0:
			evt, ok := st.Find(req.SN)
			if !ok {
				middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Event not found")
				return
			}
			sess.OpenForEvent(evt)
		case !req.Date.IsZero():
			sess.OpenForDay(req.Date)
		default:
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "date or sn is required")
			return
		}

		writeJSON(w, http.StatusOK, sess.Snapshot())
	}
}

// CloseModal hides the modal and clears the selection.
func CloseModal(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess.SetModalVisible(false)
		writeJSON(w, http.StatusOK, sess.Snapshot())
	}
}

// UpdateDraft replaces the modal's form state.
func UpdateDraft(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !sess.Snapshot().ModalVisible {
			middleware.WriteError(w, http.StatusConflict, middleware.ErrConflict, "The event modal is not open")
			return
		}

		var draft models.Draft
		if err := decodeJSON(w, r, &draft); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if draft.Emails == nil {
			draft.Emails = []string{}
		}
		sess.SetDraft(draft)
		writeJSON(w, http.StatusOK, sess.Snapshot())
	}
}

// SubmitModal sends the draft to the remote service.
func SubmitModal(svc *eventsync.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeOutcome(w, svc.Submit(r.Context()), eventsync.SaveFailedMessage)
	}
}

// DeleteFromModal deletes the selected event.
func DeleteFromModal(svc *eventsync.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeOutcome(w, svc.Delete(r.Context()), eventsync.DeleteFailedMessage)
	}
}

func writeOutcome(w http.ResponseWriter, out eventsync.Outcome, failure string) {
	if out.State != eventsync.StateFailed {
		writeJSON(w, http.StatusOK, out)
		return
	}

	var verr *eventsync.ValidationError
	if errors.As(out.Err, &verr) {
		middleware.WriteErrorWithDetails(w, http.StatusUnprocessableEntity, middleware.ErrValidation, verr.Message,
			map[string]string{"field": verr.Field})
		return
	}
	middleware.WriteError(w, http.StatusBadGateway, middleware.ErrRemote, failure)
}

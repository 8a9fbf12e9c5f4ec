package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pskhi/smartstudent/internal/chat"
	"github.com/pskhi/smartstudent/internal/domain"
	"github.com/pskhi/smartstudent/internal/identity"
)

// HandlePersonas lists the fixed persona set.
func (h *Handler) HandlePersonas(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, domain.Personas())
}

// HandleChatState returns the controller snapshot: active persona, state,
// risk, and the full per-persona history.
func (h *Handler) HandleChatState(w http.ResponseWriter, r *http.Request) {
	user := identity.UserFromContext(r.Context())
	ctrl := h.chats.Get(r.Context(), user.ID, user.Username)
	JSON(w, http.StatusOK, ctrl.Snapshot())
}

type selectPersonaRequest struct {
	Persona domain.PersonaID `json:"persona"`
}

// HandleSelectPersona switches the active persona, cancelling any in-flight
// request first.
func (h *Handler) HandleSelectPersona(w http.ResponseWriter, r *http.Request) {
	user := identity.UserFromContext(r.Context())

	var req selectPersonaRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctrl := h.chats.Get(r.Context(), user.ID, user.Username)
	if err := ctrl.SelectPersona(req.Persona); err != nil {
		Error(w, http.StatusBadRequest, "unknown persona")
		return
	}

	JSON(w, http.StatusOK, ctrl.Snapshot())
}

type sendRequest struct {
	Message string `json:"message"`
}

// HandleSend submits a user message. The assistant reply arrives
// asynchronously via the event feed or a later snapshot fetch.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	user := identity.UserFromContext(r.Context())

	var req sendRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctrl := h.chats.Get(r.Context(), user.ID, user.Username)
	msg, err := ctrl.Send(req.Message)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrNoPersona):
			Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, chat.ErrBusy), errors.Is(err, chat.ErrGated):
			Error(w, http.StatusConflict, err.Error())
		default:
			slog.Error("Failed to send message", "user_id", user.ID, "error", err)
			Error(w, http.StatusInternalServerError, "failed to send message")
		}
		return
	}

	JSON(w, http.StatusAccepted, map[string]interface{}{
		"message": msg,
		"state":   ctrl.State(),
	})
}

// HandleCancel aborts the in-flight request, if any.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	user := identity.UserFromContext(r.Context())
	ctrl := h.chats.Get(r.Context(), user.ID, user.Username)
	ctrl.Cancel()
	JSON(w, http.StatusOK, map[string]interface{}{"state": ctrl.State()})
}

// HandleAcknowledge lifts the RED gate after the explicit "continue" action.
func (h *Handler) HandleAcknowledge(w http.ResponseWriter, r *http.Request) {
	user := identity.UserFromContext(r.Context())
	ctrl := h.chats.Get(r.Context(), user.ID, user.Username)
	ctrl.Acknowledge()
	JSON(w, http.StatusOK, map[string]interface{}{
		"state": ctrl.State(),
		"risk":  ctrl.Risk(),
	})
}

// HandleAlerts returns the escalation feed, newest first. Teachers only.
func (h *Handler) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	user := identity.UserFromContext(r.Context())
	if !user.IsTeacher() {
		Error(w, http.StatusForbidden, "teacher role required")
		return
	}

	alerts, err := h.repo.ListAlerts(r.Context(), 0)
	if err != nil {
		slog.Error("Failed to list alerts", "error", err)
		Error(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}
	if alerts == nil {
		alerts = []*domain.StudentAlert{}
	}

	JSON(w, http.StatusOK, alerts)
}

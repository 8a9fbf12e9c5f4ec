// Package api provides HTTP handlers for the SmartStudent API.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pskhi/smartstudent/internal/chat"
	"github.com/pskhi/smartstudent/internal/store"
)

// Handler carries the dependencies shared by all routes.
type Handler struct {
	repo  store.Repository
	chats *chat.Manager
	isDev bool
}

// NewHandler creates a new Handler.
func NewHandler(repo store.Repository, chats *chat.Manager, isDev bool) *Handler {
	return &Handler{
		repo:  repo,
		chats: chats,
		isDev: isDev,
	}
}

// RegisterPublicRoutes registers routes reachable without a session.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/api/auth/register", h.HandleRegister)
	r.Post("/api/auth/login", h.HandleLogin)
}

// RegisterRoutes registers routes behind the identity middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/auth/logout", h.HandleLogout)
	r.Get("/api/me", h.HandleMe)
	r.Put("/api/profile", h.HandleUpdateProfile)

	r.Get("/api/personas", h.HandlePersonas)
	r.Get("/api/chat", h.HandleChatState)
	r.Post("/api/chat/persona", h.HandleSelectPersona)
	r.Post("/api/chat/messages", h.HandleSend)
	r.Post("/api/chat/cancel", h.HandleCancel)
	r.Post("/api/chat/continue", h.HandleAcknowledge)

	r.Get("/api/alerts", h.HandleAlerts)
	r.Get("/ws/chat", h.HandleEvents)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

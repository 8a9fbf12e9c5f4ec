package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/pskhi/smartstudent/internal/identity"
)

// HandleEvents upgrades to a WebSocket and streams controller events
// (messages, state and risk changes, escalations) as JSON until the client
// disconnects.
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	user := identity.UserFromContext(r.Context())
	ctrl := h.chats.Get(r.Context(), user.ID, user.Username)

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "user_id", user.ID, "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "user_id", user.ID, "error", closeErr)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()

	// Drain reads so we notice the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				slog.Warn("Failed to marshal event", "user_id", user.ID, "error", err)
				continue
			}
			if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
				slog.Debug("WebSocket write failed", "user_id", user.ID, "error", err)
				return
			}
		}
	}
}

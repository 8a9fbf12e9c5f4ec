package chat

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pskhi/smartstudent/internal/domain"
)

// Manager keeps one Controller per logged-in user, loading chat history on
// first touch and evicting on logout.
type Manager struct {
	responder Responder
	sessions  SessionStore
	alerts    AlertSink
	opts      Options

	mu          sync.Mutex
	controllers map[string]*Controller
}

// NewManager creates a controller registry sharing one responder and store.
func NewManager(responder Responder, sessions SessionStore, alerts AlertSink, opts Options) *Manager {
	return &Manager{
		responder:   responder,
		sessions:    sessions,
		alerts:      alerts,
		opts:        opts,
		controllers: make(map[string]*Controller),
	}
}

// Get returns the user's controller, creating it from persisted history if
// needed. A failed or malformed load starts from an empty history rather
// than failing the session.
func (m *Manager) Get(ctx context.Context, userID, username string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.controllers[userID]; ok {
		return c
	}

	state, err := m.sessions.GetChatState(ctx, userID)
	if err != nil {
		slog.Warn("Failed to load chat state, starting empty", "user_id", userID, "error", err)
		state = domain.ChatState{}
	}

	c := NewController(userID, username, state, m.responder, m.sessions, m.alerts, m.opts)
	m.controllers[userID] = c
	return c
}

// Remove evicts a user's controller, cancelling any in-flight request.
func (m *Manager) Remove(userID string) {
	m.mu.Lock()
	c, ok := m.controllers[userID]
	if ok {
		delete(m.controllers, userID)
	}
	m.mu.Unlock()

	if ok {
		c.Cancel()
	}
}

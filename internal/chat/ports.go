// Package chat implements the conversation session controller: per-persona
// chat history, risk gating, single-flight AI requests with cancellation,
// and escalation records.
package chat

import (
	"context"
	"errors"

	"github.com/pskhi/smartstudent/internal/domain"
)

// Fixed user-facing texts, matching the product copy.
const (
	// CancelledMarkerText is appended when the user aborts an in-flight turn.
	CancelledMarkerText = "*(Tin nhắn đã bị hủy bởi người dùng)*"
	// FallbackReplyText is appended when the AI contract fails recoverably.
	FallbackReplyText = "Mình không hiểu ý bạn lắm hoặc kết nối bị lỗi, bạn nói lại cho mình nghe được không?"
)

var (
	// ErrNoPersona is returned when no persona has been selected yet.
	ErrNoPersona = errors.New("no persona selected")
	// ErrUnknownPersona is returned for a persona outside the fixed set.
	ErrUnknownPersona = errors.New("unknown persona")
	// ErrEmptyMessage is returned for empty or whitespace-only input.
	ErrEmptyMessage = errors.New("empty message")
	// ErrBusy is returned while a request is already in flight.
	ErrBusy = errors.New("a response is already pending")
	// ErrGated is returned while the conversation awaits the RED-level
	// acknowledgment.
	ErrGated = errors.New("conversation is gated pending acknowledgment")
)

// Turn is one prior exchange handed to the AI contract. Only role and
// content cross the boundary; ids and timestamps stay internal.
type Turn struct {
	Role    domain.Role `json:"role"`
	Content string      `json:"content"`
}

// Request is the AI contract request: the new message, the persona in use,
// and a bounded trailing window of prior turns.
type Request struct {
	Message string
	Persona domain.PersonaID
	History []Turn
}

// Reply is the AI contract response.
type Reply struct {
	Text            string
	Risk            domain.RiskLevel
	Reason          string
	DetectedEmotion string
}

// Responder is the external AI contract. Implementations must honor context
// cancellation and may return a Reply with a zero Risk, which the controller
// treats as GREEN.
type Responder interface {
	Respond(ctx context.Context, req Request) (*Reply, error)
}

// SessionStore persists per-user chat history. Satisfied by store.Repository.
type SessionStore interface {
	GetChatState(ctx context.Context, userID string) (domain.ChatState, error)
	SaveChatState(ctx context.Context, userID string, state domain.ChatState) error
}

// AlertSink records escalations. Satisfied by store.Repository. Failures
// never fail a controller state transition.
type AlertSink interface {
	AppendAlert(ctx context.Context, alert *domain.StudentAlert) error
}

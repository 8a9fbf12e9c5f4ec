package domain

import "time"

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn. Messages are immutable once created and
// are never deleted individually.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	// RiskLevel is set on assistant messages only.
	RiskLevel RiskLevel `json:"riskLevel,omitempty"`
	// System marks synthetic turns such as the user-cancellation marker.
	System bool `json:"system,omitempty"`
}

// ChatState maps a persona to that persona's ordered, append-only message
// history. One ChatState exists per user.
type ChatState map[PersonaID][]Message

// Messages returns the history for a persona, nil if none exists yet.
func (c ChatState) Messages(id PersonaID) []Message {
	return c[id]
}

// Clone returns a deep copy safe to hand across goroutine boundaries.
func (c ChatState) Clone() ChatState {
	out := make(ChatState, len(c))
	for id, msgs := range c {
		cp := make([]Message, len(msgs))
		copy(cp, msgs)
		out[id] = cp
	}
	return out
}

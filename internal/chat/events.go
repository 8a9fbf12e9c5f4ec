package chat

import "github.com/pskhi/smartstudent/internal/domain"

// EventType categorizes controller notifications.
type EventType string

const (
	// EventMessage signals a message appended to the active history.
	EventMessage EventType = "message"
	// EventState signals a controller state transition.
	EventState EventType = "state"
	// EventRisk signals a change of the active persona's risk level.
	EventRisk EventType = "risk"
	// EventEscalation signals that an escalation record was raised.
	EventEscalation EventType = "escalation"
)

// Event is a controller notification delivered to subscribers. The
// presentation layer consumes these; the controller itself has no rendering
// dependencies.
type Event struct {
	Type    EventType            `json:"type"`
	Persona domain.PersonaID     `json:"persona,omitempty"`
	State   State                `json:"state,omitempty"`
	Risk    domain.RiskLevel     `json:"risk,omitempty"`
	Message *domain.Message      `json:"message,omitempty"`
	Alert   *domain.StudentAlert `json:"alert,omitempty"`
}

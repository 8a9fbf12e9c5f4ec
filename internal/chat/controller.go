package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pskhi/smartstudent/internal/domain"
)

// State of the active persona conversation.
type State string

const (
	// StateIdle accepts new input.
	StateIdle State = "IDLE"
	// StateAwaiting has exactly one AI request in flight; input is rejected.
	StateAwaiting State = "AWAITING_RESPONSE"
	// StateGated rejects input until the RED-level acknowledgment.
	StateGated State = "GATED"
)

const persistTimeout = 5 * time.Second

// Options tune a Controller. Zero values select the defaults.
type Options struct {
	// HistoryWindow is the number of prior turns sent to the AI contract.
	HistoryWindow int
	// Timeout bounds a single AI request; on expiry the turn fails
	// recoverably with the fallback reply.
	Timeout time.Duration

	// Now and NewID exist for tests.
	Now   func() time.Time
	NewID func() string
}

func (o Options) withDefaults() Options {
	if o.HistoryWindow <= 0 {
		o.HistoryWindow = 6
	}
	if o.Timeout <= 0 {
		o.Timeout = 45 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

// Controller owns one user's conversation session: the per-persona history,
// the active persona's state machine, and the single in-flight AI request.
// All methods are safe for concurrent use; mutations are serialized by a
// mutex so that send, completion, and cancellation remain mutually
// exclusive.
type Controller struct {
	userID   string
	username string

	responder Responder
	sessions  SessionStore
	alerts    AlertSink
	opts      Options

	mu      sync.Mutex
	persona domain.PersonaID
	state   State
	history domain.ChatState
	risk    map[domain.PersonaID]domain.RiskLevel

	// gen is the token of the current in-flight request. A completed result
	// whose token no longer matches is dropped silently, which is how a
	// cancellation always beats a racing completion.
	gen    uint64
	cancel context.CancelFunc

	subs    map[int]chan Event
	nextSub int
}

// NewController creates a controller over a previously loaded history.
func NewController(userID, username string, history domain.ChatState, responder Responder, sessions SessionStore, alerts AlertSink, opts Options) *Controller {
	if history == nil {
		history = domain.ChatState{}
	}
	return &Controller{
		userID:    userID,
		username:  username,
		responder: responder,
		sessions:  sessions,
		alerts:    alerts,
		opts:      opts.withDefaults(),
		state:     StateIdle,
		history:   history,
		risk:      make(map[domain.PersonaID]domain.RiskLevel),
		subs:      make(map[int]chan Event),
	}
}

// SelectPersona makes a persona active, loading its history and risk state.
// An in-flight request for the previous persona is cancelled first, with the
// cancellation marker recorded for traceability.
func (c *Controller) SelectPersona(id domain.PersonaID) error {
	if _, ok := domain.PersonaByID(id); !ok {
		return ErrUnknownPersona
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateAwaiting {
		c.abortLocked()
	}

	c.persona = id
	// Risk is independent per persona; an unacknowledged RED gate is
	// restored when the persona is revisited.
	if c.riskLocked(id) == domain.RiskRed {
		c.setStateLocked(StateGated)
	} else {
		c.setStateLocked(StateIdle)
	}
	c.emitLocked(Event{Type: EventRisk, Persona: id, Risk: c.riskLocked(id)})
	return nil
}

// Send appends the user's message and opens a single cancellable AI request
// carrying a bounded trailing window of prior turns. It returns immediately;
// the outcome arrives through events and state.
func (c *Controller) Send(text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.persona == "" {
		return nil, ErrNoPersona
	}
	if text == "" {
		return nil, ErrEmptyMessage
	}
	switch c.state {
	case StateAwaiting:
		return nil, ErrBusy
	case StateGated:
		return nil, ErrGated
	}

	window := trailingWindow(c.history[c.persona], c.opts.HistoryWindow)

	userMsg := domain.Message{
		ID:        c.opts.NewID(),
		Role:      domain.RoleUser,
		Content:   text,
		Timestamp: c.opts.Now(),
	}
	c.appendLocked(c.persona, userMsg)
	c.setStateLocked(StateAwaiting)

	c.gen++
	gen := c.gen
	reqCtx, cancel := context.WithTimeout(context.Background(), c.opts.Timeout)
	c.cancel = cancel

	go c.await(reqCtx, gen, c.persona, text, Request{
		Message: text,
		Persona: c.persona,
		History: window,
	})

	m := userMsg
	return &m, nil
}

// await runs outside the lock while the AI request is in flight and applies
// the outcome only if the request token is still current.
func (c *Controller) await(ctx context.Context, gen uint64, persona domain.PersonaID, userText string, req Request) {
	reply, err := c.responder.Respond(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Cancellation wins any race: a result tagged with a superseded token
	// must not touch state, even if the transport already completed.
	if gen != c.gen || c.state != StateAwaiting || c.persona != persona {
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if err != nil {
		slog.Warn("AI request failed, appending fallback reply",
			"user_id", c.userID, "persona", persona, "error", err)
		c.appendLocked(persona, domain.Message{
			ID:        c.opts.NewID(),
			Role:      domain.RoleAssistant,
			Content:   FallbackReplyText,
			Timestamp: c.opts.Now(),
		})
		c.setStateLocked(StateIdle)
		return
	}

	risk := reply.Risk
	if risk == "" {
		risk = domain.RiskGreen
	}

	c.appendLocked(persona, domain.Message{
		ID:        c.opts.NewID(),
		Role:      domain.RoleAssistant,
		Content:   reply.Text,
		Timestamp: c.opts.Now(),
		RiskLevel: risk,
	})
	c.setRiskLocked(persona, risk)

	if risk.Elevated() {
		c.escalateLocked(persona, userText, risk)
	}

	if risk == domain.RiskRed {
		c.setStateLocked(StateGated)
	} else {
		c.setStateLocked(StateIdle)
	}
}

// Cancel aborts the in-flight request and records the cancellation marker.
// It is a no-op outside AWAITING_RESPONSE.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateAwaiting {
		return
	}
	c.abortLocked()
}

// abortLocked supersedes the in-flight request token, signals its context,
// and appends the visible cancellation marker. Risk is unchanged.
func (c *Controller) abortLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++

	c.appendLocked(c.persona, domain.Message{
		ID:        c.opts.NewID(),
		Role:      domain.RoleAssistant,
		Content:   CancelledMarkerText,
		Timestamp: c.opts.Now(),
		System:    true,
	})
	c.setStateLocked(StateIdle)
}

// Acknowledge lifts the RED gate: an explicit user transition back to IDLE
// with risk reset to GREEN. It is a no-op outside GATED.
func (c *Controller) Acknowledge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateGated {
		return
	}
	c.setRiskLocked(c.persona, domain.RiskGreen)
	c.setStateLocked(StateIdle)
}

// Snapshot is a point-in-time copy of the controller's visible state.
type Snapshot struct {
	Persona domain.PersonaID `json:"persona,omitempty"`
	State   State            `json:"state"`
	Risk    domain.RiskLevel `json:"risk"`
	History domain.ChatState `json:"history"`
}

// Snapshot returns a copy safe to serialize outside the lock.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Persona: c.persona,
		State:   c.state,
		Risk:    c.riskLocked(c.persona),
		History: c.history.Clone(),
	}
}

// State returns the active conversation state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Risk returns the active persona's risk level.
func (c *Controller) Risk() domain.RiskLevel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.riskLocked(c.persona)
}

// Persona returns the active persona, empty if none is selected.
func (c *Controller) Persona() domain.PersonaID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.persona
}

// Messages returns a copy of the active persona's history.
func (c *Controller) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgs := c.history[c.persona]
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out
}

// Subscribe registers an event listener. The returned func unsubscribes and
// closes the channel. Slow subscribers drop events rather than block the
// controller.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan Event, 32)
	c.subs[id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
}

func (c *Controller) appendLocked(persona domain.PersonaID, msg domain.Message) {
	c.history[persona] = append(c.history[persona], msg)
	c.persistLocked()
	m := msg
	c.emitLocked(Event{Type: EventMessage, Persona: persona, Message: &m})
}

// persistLocked saves the full chat state after every mutation. A save
// failure keeps the in-memory conversation usable.
func (c *Controller) persistLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := c.sessions.SaveChatState(ctx, c.userID, c.history); err != nil {
		slog.Error("Failed to persist chat state", "user_id", c.userID, "error", err)
	}
}

func (c *Controller) escalateLocked(persona domain.PersonaID, userText string, risk domain.RiskLevel) {
	alert := &domain.StudentAlert{
		ID:          c.opts.NewID(),
		StudentName: c.username,
		RiskLevel:   risk,
		LastMessage: userText,
		Timestamp:   c.opts.Now(),
		PersonaUsed: persona,
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := c.alerts.AppendAlert(ctx, alert); err != nil {
		// The sink must never fail the state transition.
		slog.Error("Failed to record escalation", "user_id", c.userID, "risk", risk, "error", err)
	}
	c.emitLocked(Event{Type: EventEscalation, Persona: persona, Risk: risk, Alert: alert})
}

func (c *Controller) setStateLocked(s State) {
	if c.state == s {
		return
	}
	c.state = s
	slog.Debug("Conversation state changed", "user_id", c.userID, "persona", c.persona, "state", s)
	c.emitLocked(Event{Type: EventState, Persona: c.persona, State: s})
}

func (c *Controller) setRiskLocked(persona domain.PersonaID, r domain.RiskLevel) {
	if c.riskLocked(persona) == r {
		return
	}
	c.risk[persona] = r
	c.emitLocked(Event{Type: EventRisk, Persona: persona, Risk: r})
}

func (c *Controller) riskLocked(persona domain.PersonaID) domain.RiskLevel {
	if r, ok := c.risk[persona]; ok {
		return r
	}
	return domain.RiskGreen
}

func (c *Controller) emitLocked(ev Event) {
	for _, sub := range c.subs {
		select {
		case sub <- ev:
		default:
			slog.Debug("Dropping event for slow subscriber", "user_id", c.userID, "type", ev.Type)
		}
	}
}

// trailingWindow maps the most recent prior turns to the (role, content)
// pairs the AI contract receives.
func trailingWindow(msgs []domain.Message, n int) []Turn {
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	turns := make([]Turn, 0, len(msgs))
	for _, m := range msgs {
		turns = append(turns, Turn{Role: m.Role, Content: m.Content})
	}
	return turns
}

package chat

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Tyrowin/relaychat/internal/telemetry"
	"github.com/google/uuid"
)

// Core runs join, send and disconnect against one Registry and one History.
type Core struct {
	mu       sync.Mutex
	registry *Registry
	history  *History
	emitter  Emitter
	log      *slog.Logger
	newID    func() string
	now      func() time.Time
}

// Option customizes a Core.
type Option func(*Core)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Core) { c.now = now }
}

// WithIDGenerator overrides the participant and event id source.
// Generated ids must never repeat within the process lifetime.
func WithIDGenerator(newID func() string) Option {
	return func(c *Core) { c.newID = newID }
}

// WithHistoryCapacity overrides the number of retained events.
func WithHistoryCapacity(capacity int) Option {
	return func(c *Core) { c.history = NewHistory(capacity) }
}

// NewCore returns a Core emitting through emitter.
func NewCore(emitter Emitter, log *slog.Logger, opts ...Option) *Core {
	c := &Core{
		registry: NewRegistry(),
		history:  NewHistory(HistoryCapacity),
		emitter:  emitter,
		log:      log,
		newID:    uuid.NewString,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Join registers a participant for conn, sends it the welcome and the
// history snapshot, then announces it to everyone.
// A connection that already joined keeps its participant; the call returns
// that participant with false and emits nothing.
func (c *Core) Join(conn ConnectionRef, displayName, sourceAddress, clientAgent string) (Participant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.registry.ByConnection(conn); ok {
		c.log.Warn("Ignoring second join on connection",
			"conn", conn,
			"participant_id", existing.ID)
		telemetry.CountRejected("duplicate_join")
		return existing, false
	}

	p := Participant{
		ID:            c.newID(),
		DisplayName:   displayName,
		Conn:          conn,
		JoinedAt:      c.now(),
		SourceAddress: sourceAddress,
		ClientAgent:   clientAgent,
	}
	c.registry.Add(p)
	c.log.Info("Participant joined",
		"participant_id", p.ID,
		"username", p.DisplayName,
		"conn", conn,
		"online", c.registry.Len())

	// Welcome and history go out before the announcement on the same connection.
	c.emitter.Send(conn, welcomeEvent(p))
	c.emitter.Send(conn, previousMessagesEvent(c.history.Snapshot()))
	c.publish(c.systemEvent(fmt.Sprintf("%s has joined the chat", p.DisplayName)))
	c.broadcastUserList()

	return p, true
}

// SendMessage broadcasts content on behalf of participantID.
// Unknown ids are discarded without notifying anyone.
func (c *Core) SendMessage(participantID, content string) (ChatEvent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.registry.Get(participantID)
	if !ok {
		c.log.Debug("Discarding message from unknown participant", "participant_id", participantID)
		telemetry.CountRejected("unknown_participant")
		return ChatEvent{}, false
	}

	e := ChatEvent{
		ID:        c.newID(),
		Kind:      KindUser,
		Sender:    p.DisplayName,
		SenderID:  p.ID,
		Content:   content,
		Timestamp: c.now(),
	}
	c.publish(e)
	return e, true
}

// Disconnect removes the participant bound to conn and tells the remaining
// connections. Unknown connections are a no-op.
func (c *Core) Disconnect(conn ConnectionRef) (Participant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.registry.RemoveByConnection(conn)
	if !ok {
		return Participant{}, false
	}
	c.log.Info("Participant left",
		"participant_id", p.ID,
		"username", p.DisplayName,
		"conn", conn,
		"online", c.registry.Len())

	c.publish(c.systemEvent(fmt.Sprintf("%s has left the chat", p.DisplayName)))
	c.broadcastUserList()
	return p, true
}

// Participants returns the current participant snapshot.
func (c *Core) Participants() []Participant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.List()
}

// History returns the retained chat events, oldest first.
func (c *Core) History() []ChatEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Snapshot()
}

func (c *Core) systemEvent(content string) ChatEvent {
	return ChatEvent{
		ID:        c.newID(),
		Kind:      KindSystem,
		Sender:    SystemSender,
		Content:   content,
		Timestamp: c.now(),
	}
}

// publish appends e to history and broadcasts it. Caller holds c.mu.
func (c *Core) publish(e ChatEvent) {
	c.history.Append(e)
	telemetry.SetHistorySize(c.history.Len())
	telemetry.CountEvent(string(e.Kind))
	c.emitter.Broadcast(messageEvent(e))
}

// broadcastUserList sends the registry snapshot to everyone. Caller holds c.mu.
func (c *Core) broadcastUserList() {
	telemetry.SetParticipantsOnline(c.registry.Len())
	c.emitter.Broadcast(userListEvent(c.registry.List()))
}

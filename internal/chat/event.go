package chat

import "time"

// EventKind distinguishes system notices from user-authored messages.
type EventKind string

const (
	KindSystem EventKind = "system"
	KindUser   EventKind = "user"
)

// SystemSender is the sender name carried by system events.
const SystemSender = "system"

// ChatEvent is an immutable entry of the chat log.
type ChatEvent struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	Sender    string    `json:"sender"`
	SenderID  string    `json:"senderId,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// OutboundType names an event sent from the core to clients.
type OutboundType string

const (
	OutboundWelcome          OutboundType = "welcome"
	OutboundPreviousMessages OutboundType = "previousMessages"
	OutboundMessage          OutboundType = "message"
	OutboundUserList         OutboundType = "userList"
)

// Outbound is the envelope handed to the Emitter.
type Outbound struct {
	Type OutboundType `json:"type"`
	Data any          `json:"data"`
}

// Welcome tells a joining client which participant id it was assigned.
type Welcome struct {
	ParticipantID string `json:"userId"`
	DisplayName   string `json:"username"`
}

func welcomeEvent(p Participant) Outbound {
	return Outbound{Type: OutboundWelcome, Data: Welcome{ParticipantID: p.ID, DisplayName: p.DisplayName}}
}

func previousMessagesEvent(events []ChatEvent) Outbound {
	return Outbound{Type: OutboundPreviousMessages, Data: events}
}

func messageEvent(e ChatEvent) Outbound {
	return Outbound{Type: OutboundMessage, Data: e}
}

func userListEvent(participants []Participant) Outbound {
	return Outbound{Type: OutboundUserList, Data: participants}
}

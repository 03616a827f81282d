package chat

import "time"

// ConnectionRef identifies one transport connection. It is opaque to the core.
type ConnectionRef string

// Participant is a joined client as seen by everyone else in the chat.
type Participant struct {
	ID            string        `json:"id"`
	DisplayName   string        `json:"username"`
	Conn          ConnectionRef `json:"socketId"`
	JoinedAt      time.Time     `json:"joinedAt"`
	SourceAddress string        `json:"ip"`
	ClientAgent   string        `json:"userAgent"`
}

// Registry maps participant ids to participants, keeping registration order.
// It is not safe for concurrent use; Core guards it.
type Registry struct {
	byID  map[string]Participant
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Participant)}
}

// Add stores p under its id. Display names are not required to be unique.
func (r *Registry) Add(p Participant) {
	if _, exists := r.byID[p.ID]; !exists {
		r.order = append(r.order, p.ID)
	}
	r.byID[p.ID] = p
}

// Get returns the participant with the given id.
func (r *Registry) Get(id string) (Participant, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// ByConnection returns the participant bound to conn.
func (r *Registry) ByConnection(conn ConnectionRef) (Participant, bool) {
	for _, id := range r.order {
		if p := r.byID[id]; p.Conn == conn {
			return p, true
		}
	}
	return Participant{}, false
}

// RemoveByConnection removes the first participant bound to conn.
// Disconnects only carry the transport handle, hence the scan.
func (r *Registry) RemoveByConnection(conn ConnectionRef) (Participant, bool) {
	for i, id := range r.order {
		p := r.byID[id]
		if p.Conn != conn {
			continue
		}
		delete(r.byID, id)
		r.order = append(r.order[:i], r.order[i+1:]...)
		return p, true
	}
	return Participant{}, false
}

// List returns a copy of all participants in registration order.
func (r *Registry) List() []Participant {
	out := make([]Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Len returns the number of registered participants.
func (r *Registry) Len() int {
	return len(r.order)
}

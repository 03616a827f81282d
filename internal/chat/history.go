package chat

// HistoryCapacity is the number of chat events retained for late joiners.
const HistoryCapacity = 100

// History is a capped FIFO log of chat events, oldest first.
// It is not safe for concurrent use; Core guards it.
type History struct {
	events   []ChatEvent
	capacity int
}

// NewHistory returns an empty history holding at most capacity events.
// Capacities outside 1..HistoryCapacity fall back to HistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 || capacity > HistoryCapacity {
		capacity = HistoryCapacity
	}
	return &History{
		events:   make([]ChatEvent, 0, capacity),
		capacity: capacity,
	}
}

// Append adds e at the tail, evicting from the head once over capacity.
func (h *History) Append(e ChatEvent) {
	h.events = append(h.events, e)
	if overflow := len(h.events) - h.capacity; overflow > 0 {
		n := copy(h.events, h.events[overflow:])
		clear(h.events[n:])
		h.events = h.events[:n]
	}
}

// Snapshot returns an ordered copy of the retained events.
func (h *History) Snapshot() []ChatEvent {
	out := make([]ChatEvent, len(h.events))
	copy(out, h.events)
	return out
}

// Len returns the number of retained events.
func (h *History) Len() int {
	return len(h.events)
}

// Capacity returns the maximum number of retained events.
func (h *History) Capacity() int {
	return h.capacity
}

package moves

import "github.com/vovakirdan/tui-fighter/internal/core"

// DefaultHistoryLimit bounds the input history; no move is longer.
const DefaultHistoryLimit = 20

// History is the bounded buffer of recent inputs awaiting recognition.
// It is not safe for concurrent use; the owner serializes access.
type History struct {
	limit  int
	events []core.InputEvent
}

// NewHistory creates a history holding at most limit events.
func NewHistory(limit int) *History {
	if limit < MinSequenceLength {
		limit = DefaultHistoryLimit
	}
	return &History{
		limit:  limit,
		events: make([]core.InputEvent, 0, limit),
	}
}

// Append adds an event, dropping the oldest when the buffer is full.
func (h *History) Append(ev core.InputEvent) {
	h.events = append(h.events, ev)
	if over := len(h.events) - h.limit; over > 0 {
		h.events = append(h.events[:0], h.events[over:]...)
	}
}

// Events returns a copy of the buffered events, oldest first.
func (h *History) Events() []core.InputEvent {
	out := make([]core.InputEvent, len(h.events))
	copy(out, h.events)
	return out
}

// Replace swaps in the history returned by Detect.
func (h *History) Replace(events []core.InputEvent) {
	h.events = h.events[:0]
	for _, ev := range events {
		h.Append(ev)
	}
}

// Clear empties the history.
func (h *History) Clear() {
	h.events = h.events[:0]
}

// Len returns the number of buffered events.
func (h *History) Len() int {
	return len(h.events)
}

// Limit returns the capacity of the history.
func (h *History) Limit() int {
	return h.limit
}

package chat

// History is the ordered, append-only log of conversation turns. It is the
// source of truth both for what the UI renders and for what is replayed to
// the backend on each round trip. The only destructive operation is Clear,
// which callers must gate behind an explicit user confirmation.
type History struct {
	turns []Turn
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{turns: []Turn{}}
}

// Append adds a turn to the end of the history.
func (h *History) Append(turn Turn) {
	h.turns = append(h.turns, turn)
}

// Project returns the wire view of the history: role and content of every
// turn in order, with timestamps omitted.
func (h *History) Project() []Message {
	messages := make([]Message, 0, len(h.turns))
	for _, turn := range h.turns {
		messages = append(messages, Message{
			Role:    turn.Role.String(),
			Content: turn.Content,
		})
	}
	return messages
}

// Turns returns a copy of the turns for rendering.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Last returns the most recent turn, or false if the history is empty.
func (h *History) Last() (Turn, bool) {
	if len(h.turns) == 0 {
		return Turn{}, false
	}
	return h.turns[len(h.turns)-1], true
}

// Len returns the number of turns.
func (h *History) Len() int {
	return len(h.turns)
}

// IsEmpty returns true if there are no turns.
func (h *History) IsEmpty() bool {
	return len(h.turns) == 0
}

// Clear removes all turns.
func (h *History) Clear() {
	h.turns = []Turn{}
}

package chat

import "time"

// Role represents the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// Turn is one message in the conversation. Turns are immutable once created;
// Timestamp is client-local metadata in epoch milliseconds and is never sent
// to the backend.
type Turn struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// Message is the wire projection of a turn: role and content only.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewUserTurn creates a user turn stamped with the current time.
func NewUserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content, Timestamp: NowMillis()}
}

// NewAssistantTurn creates an assistant turn with an explicit timestamp,
// which may be server-supplied.
func NewAssistantTurn(content string, timestamp int64) Turn {
	return Turn{Role: RoleAssistant, Content: content, Timestamp: timestamp}
}

// NowMillis returns the current wall-clock time in epoch milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

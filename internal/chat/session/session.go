package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/minichat/minichat/internal/chat"
)

// Session represents a persisted conversation session
type Session struct {
	ID        string      `json:"id"`   // UUID v4 (e.g., "550e8400-e29b-41d4-a716-446655440000")
	Name      string      `json:"name"` // Optional session name (empty by default)
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Turns     []chat.Turn `json:"turns"`
}

// NewSession creates a new empty session
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New().String(),
		Name:      "",
		CreatedAt: now,
		UpdatedAt: now,
		Turns:     []chat.Turn{},
	}
}

// SetTurns replaces the stored turns with the controller's current history
func (s *Session) SetTurns(turns []chat.Turn) {
	s.Turns = turns
	s.UpdatedAt = time.Now()
}

// GetShortID returns the shortened session ID (first 8 characters)
func (s *Session) GetShortID() string {
	if len(s.ID) >= 8 {
		return s.ID[:8]
	}
	return s.ID
}

// GetDisplayName returns the display name for the session
// If name is set, returns the name. Otherwise, returns the short ID.
func (s *Session) GetDisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.GetShortID()
}

// TurnCount returns the number of turns in the session
func (s *Session) TurnCount() int {
	return len(s.Turns)
}

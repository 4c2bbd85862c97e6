package session

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/minichat/minichat/internal/chat"
)

// useTempSessionDir points session storage at a throwaway directory by
// pretending a config file lives there.
func useTempSessionDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	viper.SetConfigFile(filepath.Join(dir, "config.toml"))
	t.Cleanup(viper.Reset)
	return filepath.Join(dir, "sessions")
}

func TestNewSession(t *testing.T) {
	s := NewSession()

	if len(s.ID) != 36 {
		t.Errorf("ID = %q, want a UUID", s.ID)
	}
	if s.Name != "" {
		t.Errorf("Name = %q, want empty", s.Name)
	}
	if s.TurnCount() != 0 {
		t.Errorf("TurnCount() = %d, want 0", s.TurnCount())
	}
	if !s.CreatedAt.Equal(s.UpdatedAt) {
		t.Errorf("CreatedAt %v != UpdatedAt %v on a fresh session", s.CreatedAt, s.UpdatedAt)
	}
}

func TestSetTurnsBumpsUpdatedAt(t *testing.T) {
	s := NewSession()
	before := s.UpdatedAt

	time.Sleep(time.Millisecond)
	s.SetTurns([]chat.Turn{chat.NewUserTurn("hello")})

	if s.TurnCount() != 1 {
		t.Errorf("TurnCount() = %d, want 1", s.TurnCount())
	}
	if !s.UpdatedAt.After(before) {
		t.Errorf("UpdatedAt not bumped: %v -> %v", before, s.UpdatedAt)
	}
}

func TestGetDisplayName(t *testing.T) {
	s := NewSession()

	if got := s.GetDisplayName(); got != s.GetShortID() {
		t.Errorf("GetDisplayName() = %q, want short ID %q", got, s.GetShortID())
	}

	s.Name = "planning"
	if got := s.GetDisplayName(); got != "planning" {
		t.Errorf("GetDisplayName() = %q, want planning", got)
	}
}

func TestSaveAndLoadSession(t *testing.T) {
	useTempSessionDir(t)

	s := NewSession()
	s.SetTurns([]chat.Turn{
		chat.NewUserTurn("hello"),
		chat.NewAssistantTurn("hi there", 1700000000000),
	})

	if err := SaveSession(s); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	loaded, err := LoadSession(s.ID)
	if err != nil {
		t.Fatalf("LoadSession() error = %v", err)
	}
	if loaded.ID != s.ID {
		t.Errorf("loaded ID = %q, want %q", loaded.ID, s.ID)
	}
	if loaded.TurnCount() != 2 {
		t.Fatalf("loaded TurnCount() = %d, want 2", loaded.TurnCount())
	}
	if loaded.Turns[0].Role != chat.RoleUser || loaded.Turns[0].Content != "hello" {
		t.Errorf("loaded turn[0] = %+v", loaded.Turns[0])
	}
	if loaded.Turns[1].Timestamp != 1700000000000 {
		t.Errorf("loaded turn[1].Timestamp = %d, want 1700000000000", loaded.Turns[1].Timestamp)
	}
}

func TestLoadSessionNotFound(t *testing.T) {
	useTempSessionDir(t)

	if _, err := LoadSession("00000000-0000-0000-0000-000000000000"); err == nil {
		t.Fatal("LoadSession() expected error for missing session")
	}
}

func TestDeleteSession(t *testing.T) {
	useTempSessionDir(t)

	s := NewSession()
	if err := SaveSession(s); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
	if err := DeleteSession(s.ID); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if _, err := LoadSession(s.ID); err == nil {
		t.Fatal("LoadSession() succeeded after delete")
	}
	if err := DeleteSession(s.ID); err == nil {
		t.Fatal("DeleteSession() expected error for missing session")
	}
}

func TestListSessionsSortedByUpdatedAt(t *testing.T) {
	useTempSessionDir(t)

	older := NewSession()
	older.UpdatedAt = time.Now().Add(-time.Hour)
	newer := NewSession()

	if err := SaveSession(older); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
	if err := SaveSession(newer); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	sessions, err := ListSessions()
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("ListSessions() returned %d sessions, want 2", len(sessions))
	}
	if sessions[0].ID != newer.ID {
		t.Errorf("sessions[0].ID = %q, want newest %q", sessions[0].ID, newer.ID)
	}
}

func TestFindSessionByPrefix(t *testing.T) {
	useTempSessionDir(t)

	s := NewSession()
	if err := SaveSession(s); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	found, err := FindSessionByPrefix(s.ID[:4])
	if err != nil {
		t.Fatalf("FindSessionByPrefix() error = %v", err)
	}
	if found.ID != s.ID {
		t.Errorf("found ID = %q, want %q", found.ID, s.ID)
	}

	// Full UUID bypasses the prefix scan
	found, err = FindSessionByPrefix(s.ID)
	if err != nil {
		t.Fatalf("FindSessionByPrefix(full ID) error = %v", err)
	}
	if found.ID != s.ID {
		t.Errorf("found ID = %q, want %q", found.ID, s.ID)
	}
}

func TestFindSessionByPrefixTooShort(t *testing.T) {
	useTempSessionDir(t)

	if _, err := FindSessionByPrefix("ab"); err == nil {
		t.Fatal("FindSessionByPrefix() expected error for short prefix")
	}
}

func TestFindSessionByPrefixAmbiguous(t *testing.T) {
	useTempSessionDir(t)

	a := NewSession()
	a.ID = "aaaa1111-0000-0000-0000-000000000001"
	b := NewSession()
	b.ID = "aaaa1111-0000-0000-0000-000000000002"

	if err := SaveSession(a); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
	if err := SaveSession(b); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	_, err := FindSessionByPrefix("aaaa")
	if err == nil {
		t.Fatal("FindSessionByPrefix() expected ambiguity error")
	}
	var ambiguous *AmbiguousIDError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("FindSessionByPrefix() error = %T, want *AmbiguousIDError", err)
	}
	if len(ambiguous.Matches) != 2 {
		t.Errorf("ambiguity matches = %d, want 2", len(ambiguous.Matches))
	}
}

func TestFindSessionByPrefixLatest(t *testing.T) {
	useTempSessionDir(t)

	if _, err := FindSessionByPrefix("latest"); err == nil {
		t.Fatal("FindSessionByPrefix(latest) expected error with no sessions")
	}

	older := NewSession()
	older.UpdatedAt = time.Now().Add(-time.Hour)
	newer := NewSession()
	if err := SaveSession(older); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
	if err := SaveSession(newer); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	found, err := FindSessionByPrefix("latest")
	if err != nil {
		t.Fatalf("FindSessionByPrefix(latest) error = %v", err)
	}
	if found.ID != newer.ID {
		t.Errorf("latest ID = %q, want %q", found.ID, newer.ID)
	}
}

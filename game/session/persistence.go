package session

import (
	"time"

	"github.com/DariaMikhailovna/Wappo/game/engine"
	"github.com/DariaMikhailovna/Wappo/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData represents the JSON structure for persisted sessions.
// The puzzle is embedded so a session survives edits to the puzzle directory.
type PersistedSessionData struct {
	ID             string                    `json:"id"`
	PuzzleID       string                    `json:"puzzle_id"`
	Puzzle         *engine.Puzzle            `json:"puzzle,omitempty"`
	CreatedAt      time.Time                 `json:"created_at"`
	LastAccessedAt time.Time                 `json:"last_accessed_at"`
	GameState      *engine.GameState         `json:"game_state"`
	MoveHistory    []engine.MoveHistoryEntry `json:"move_history"`
}

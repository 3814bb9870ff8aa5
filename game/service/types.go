package service

import (
	"time"

	"github.com/DariaMikhailovna/Wappo/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	PuzzleID       string            `json:"puzzle_id"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
	Board          []string          `json:"board"`
	Status         string            `json:"status"`
	Message        string            `json:"message,omitempty"`
	Puzzle         *engine.Puzzle    `json:"puzzle"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success       bool              `json:"success"`
	GameState     *engine.GameState `json:"game_state"`
	Board         []string          `json:"board"`
	Message       string            `json:"message"`
	Events        []GameEvent       `json:"events,omitempty"`
	Step          *StepInfo         `json:"step,omitempty"`
	PossibleMoves []string          `json:"possible_moves"`
	Threat        string            `json:"threat"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Board          []string          `json:"board"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // blocked_wall|invalid_direction|game_over|win|caught|hazard
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	StartPos engine.Position `json:"start_pos"`
	EndPos   engine.Position `json:"end_pos"`
	Steps    []StepInfo      `json:"steps,omitempty"`

	GameOver      bool     `json:"game_over"`
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
	Threat        string   `json:"threat,omitempty"`
}

// StepInfo is a compact record of one executed move
type StepInfo struct {
	Idx      int             `json:"idx"`
	Dir      string          `json:"dir"`
	From     engine.Position `json:"from"`
	To       engine.Position `json:"to"`
	Enemies  []engine.Enemy  `json:"enemies"`
	WinState engine.WinState `json:"win_state"`
	Success  bool            `json:"success"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // "move", "reset", "merge", "stunned", "win", "lose"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// SolveResult reports the shortest winning sequence from a position
type SolveResult struct {
	Found      bool     `json:"found"`
	Moves      string   `json:"moves"` // letters, e.g. "RRU"
	Directions []string `json:"directions"`
	Length     int      `json:"length"`
	NextMove   string   `json:"next_move,omitempty"`
	Expanded   int      `json:"expanded"`
	Discovered int      `json:"discovered"`
	DurationMS int64    `json:"duration_ms"`
	Message    string   `json:"message"`
}

// PuzzleInfo provides information about a puzzle file
type PuzzleInfo struct {
	Filename    string `json:"filename"`
	PuzzleID    string `json:"puzzle_id"` // The identifier to use for session creation
	Name        string `json:"name"`
	Description string `json:"description"`
	Height      int    `json:"height"`
	Width       int    `json:"width"`
	Enemies     int    `json:"enemies"`
	Hazards     int    `json:"hazards"`
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/DariaMikhailovna/Wappo/game/engine"
	"github.com/DariaMikhailovna/Wappo/game/solver"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPuzzleNotFound  = errors.New("puzzle not found")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, puzzleName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Solving
	Solve(ctx context.Context, sessionID string) (*SolveResult, error)
	SolvePuzzle(ctx context.Context, puzzleName string) (*SolveResult, error)

	// Puzzles
	ListPuzzles(ctx context.Context) ([]*PuzzleInfo, error)
	LoadPuzzle(ctx context.Context, puzzleName string) (*engine.Puzzle, error)
	SavePuzzle(ctx context.Context, puzzleName string, puzzle *engine.Puzzle) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, puzzleID string, puzzle *engine.Puzzle) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// PuzzleManager handles puzzle loading
type PuzzleManager interface {
	LoadPuzzle(name string) (*engine.Puzzle, error)
	ListPuzzles() ([]*PuzzleInfo, error)
	GetDefault() *engine.Puzzle
	SavePuzzle(name string, puzzle *engine.Puzzle) error
}

// Solver searches for the shortest winning move sequence
type Solver interface {
	Solve(ctx context.Context, start *engine.GameState) (*solver.Result, error)
}

// Session represents an active game session
type Session struct {
	ID             string
	PuzzleID       string
	Engine         *engine.GameEngine
	Puzzle         *engine.Puzzle
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

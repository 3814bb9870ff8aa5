package engine

import (
	"fmt"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool
	IsVictory() bool
	GetPlayerPosition() Position

	// Movement operations
	Move(direction string) bool
	MoveDirection(d Direction) bool
	CanMove(direction string) bool
	GetPossibleMoves() []string

	// Puzzle
	GetPuzzle() *Puzzle
	GetBoard() *Board

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface on top of a single GameState,
// recording every attempted move.
type GameEngine struct {
	puzzle  *Puzzle
	board   *Board
	initial *GameState
	state   *GameState

	history      []MoveHistoryEntry
	currentMoves int
}

// NewEngine creates a new game engine for the provided puzzle
func NewEngine(puzzle *Puzzle) (*GameEngine, error) {
	board, state, err := puzzle.Build()
	if err != nil {
		return nil, err
	}

	return &GameEngine{
		puzzle:  puzzle,
		board:   board,
		initial: state,
		state:   state.Clone(),
		history: []MoveHistoryEntry{},
	}, nil
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState replaces the current state (used for persistence loading). The
// engine's board is attached to the state before validation.
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	state.board = e.board
	if err := state.Validate(); err != nil {
		return err
	}
	e.state = state
	return nil
}

// Reset restores the starting positions. The cumulative history is kept;
// only the current segment counter is cleared.
func (e *GameEngine) Reset() *GameState {
	e.state = e.initial.Clone()
	e.currentMoves = 0
	return e.state
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.state.IsTerminal()
}

// IsVictory returns whether the player has won
func (e *GameEngine) IsVictory() bool {
	return e.state.WinState == Win
}

// GetPlayerPosition returns the current player position
func (e *GameEngine) GetPlayerPosition() Position {
	return e.state.Player
}

// Move parses direction and applies it. It returns false for unknown
// directions, blocked moves and finished games.
func (e *GameEngine) Move(direction string) bool {
	d, err := ParseDirection(direction)
	if err != nil {
		return false
	}
	return e.MoveDirection(d)
}

// MoveDirection applies d and records it in the history.
func (e *GameEngine) MoveDirection(d Direction) bool {
	from := e.state.Player
	moved := e.state.Move(d)
	e.addMoveToHistory(d.String(), from, moved)
	return moved
}

// CanMove checks if the player can move in the specified direction
func (e *GameEngine) CanMove(direction string) bool {
	d, err := ParseDirection(direction)
	if err != nil {
		return false
	}
	return e.state.CanMove(d)
}

// GetPossibleMoves returns all directions that would take a turn
func (e *GameEngine) GetPossibleMoves() []string {
	var possible []string
	for _, d := range Directions {
		if e.state.CanMove(d) {
			possible = append(possible, d.String())
		}
	}
	return possible
}

// BulkMove executes multiple moves in sequence, returning success status for each
func (e *GameEngine) BulkMove(moves []string) []bool {
	results := make([]bool, 0, len(moves))

	for _, direction := range moves {
		// Stop if game is over
		if e.IsGameOver() {
			break
		}
		results = append(results, e.Move(direction))
	}

	return results
}

// GetPuzzle returns the puzzle the engine was built from
func (e *GameEngine) GetPuzzle() *Puzzle {
	return e.puzzle
}

// GetBoard returns the immutable board
func (e *GameEngine) GetBoard() *Board {
	return e.board
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.history
}

// SetMoveHistory replaces the history (used for persistence loading)
func (e *GameEngine) SetMoveHistory(history []MoveHistoryEntry) {
	if history == nil {
		history = []MoveHistoryEntry{}
	}
	e.history = history
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.history) == 0 {
		return nil
	}
	return &e.history[len(e.history)-1]
}

// CurrentMoves returns the number of moves attempted since the last reset
func (e *GameEngine) CurrentMoves() int {
	return e.currentMoves
}

func (e *GameEngine) addMoveToHistory(action string, from Position, moved bool) {
	e.history = append(e.history, MoveHistoryEntry{
		Action:     action,
		From:       from,
		To:         e.state.Player,
		Moved:      moved,
		WinState:   e.state.WinState,
		Timestamp:  time.Now().Unix(),
		MoveNumber: len(e.history) + 1,
	})
	e.currentMoves++
}

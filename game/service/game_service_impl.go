package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/DariaMikhailovna/Wappo/game/engine"
)

const (
	MessageWin  = "YOU WIN"
	MessageLose = "GAME OVER"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	puzzles  PuzzleManager
	solver   Solver
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, puzzles PuzzleManager, solver Solver) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		puzzles:  puzzles,
		solver:   solver,
	}
}

// getPuzzleID returns the puzzle_id for a given display name, used for consistent API responses
func (s *gameServiceImpl) getPuzzleID(puzzleName string) string {
	available, err := s.puzzles.ListPuzzles()
	if err == nil {
		for _, p := range available {
			if p.Name == puzzleName {
				return p.PuzzleID
			}
		}
	}
	if puzzleName == "" {
		return "default"
	}
	return puzzleName
}

// StatusMessage returns the banner shown for a finished game, or "" while playing.
func StatusMessage(state *engine.GameState) string {
	switch state.WinState {
	case engine.Win:
		return MessageWin
	case engine.Lose:
		return MessageLose
	}
	return ""
}

func newSessionInfo(sess *Session) *SessionInfo {
	state := sess.Engine.GetState()
	return &SessionInfo{
		ID:             sess.ID,
		PuzzleID:       sess.PuzzleID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      state.Clone(),
		Board:          state.Render(),
		Status:         state.WinState.String(),
		Message:        StatusMessage(state),
		Puzzle:         sess.Puzzle,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, puzzleName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var puzzle *engine.Puzzle
	var err error
	puzzleID := puzzleName
	if puzzleName != "" {
		puzzle, err = s.puzzles.LoadPuzzle(puzzleName)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrPuzzleNotFound) {
				available, listErr := s.puzzles.ListPuzzles()
				if listErr == nil && len(available) > 0 {
					var ids []string
					for _, p := range available {
						ids = append(ids, p.PuzzleID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available puzzles: %v", ErrPuzzleNotFound, puzzleName, ids)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/puzzles to list available puzzles", ErrPuzzleNotFound, puzzleName)
			}
			return nil, fmt.Errorf("failed to load puzzle %s: %w", puzzleName, err)
		}
	} else {
		puzzle = s.puzzles.GetDefault()
		puzzleID = s.getPuzzleID(puzzle.Name)
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", puzzleID, puzzle)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return newSessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return newSessionInfo(sess), nil
}

// ListSessions returns all active sessions, oldest first
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, newSessionInfo(sess))
	}

	slices.SortFunc(result, func(a, b *SessionInfo) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	d, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, GameEvent{
			Type:      "reset",
			Message:   "Game reset to initial state",
			Timestamp: time.Now(),
		})
	}

	prev := sess.Engine.GetState().Clone()
	success := sess.Engine.MoveDirection(d)
	state := sess.Engine.GetState().Clone()

	result := &MoveResult{
		Success:       success,
		GameState:     state,
		Board:         state.Render(),
		Message:       StatusMessage(state),
		Events:        events,
		PossibleMoves: sess.Engine.GetPossibleMoves(),
		Threat:        engine.AnalyzeThreat(state),
	}

	if success {
		result.Events = append(result.Events, turnEvents(prev, state, d)...)
		result.Step = newStep(1, d, prev, state)
	} else if prev.IsTerminal() {
		result.Message = fmt.Sprintf("Game is already over: %s", StatusMessage(prev))
	} else {
		result.Message = fmt.Sprintf("Can't move %s: wall", d)
	}

	// Auto-save session after move
	if err := s.sessions.Save(sessionID); err != nil {
		fmt.Printf("Warning: Failed to persist session %s after move: %v\n", sessionID, err)
	}

	return result, nil
}

// BulkMove executes multiple moves in sequence
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, GameEvent{
			Type:      "reset",
			Message:   "Game reset to initial state",
			Timestamp: time.Now(),
		})
	}
	result.StartPos = sess.Engine.GetPlayerPosition()

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, move := range moves {
		if sess.Engine.IsGameOver() {
			result.StoppedReason = "game over"
			result.StopReasonCode = "game_over"
			result.StoppedOnMove = i + 1
			break
		}

		d, err := engine.ParseDirection(move)
		if err != nil {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d invalid: %q", i+1, move)
			result.StopReasonCode = "invalid_direction"
			result.StoppedOnMove = i + 1
			break
		}

		prev := sess.Engine.GetState().Clone()
		if !sess.Engine.MoveDirection(d) {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, d)
			result.StopReasonCode = "blocked_wall"
			result.StoppedOnMove = i + 1
			break
		}

		result.MovesExecuted++
		state := sess.Engine.GetState()
		result.Events = append(result.Events, turnEvents(prev, state, d)...)
		result.Steps = append(result.Steps, *newStep(i+1, d, prev, state))
	}

	state := sess.Engine.GetState().Clone()
	result.GameState = state
	result.Board = state.Render()
	result.EndPos = state.Player
	result.GameOver = state.IsTerminal()
	result.Message = StatusMessage(state)
	result.PossibleMoves = sess.Engine.GetPossibleMoves()
	result.Threat = engine.AnalyzeThreat(state)

	// A game that ended on the last executed move reports how it ended.
	if result.GameOver && (result.StopReasonCode == "" || result.StopReasonCode == "game_over") && result.MovesExecuted > 0 {
		result.StopReasonCode = endCode(state)
		result.StoppedReason = result.Message
	}

	// Auto-save session after bulk moves
	if err := s.sessions.Save(sessionID); err != nil {
		fmt.Printf("Warning: Failed to persist session %s after bulk moves: %v\n", sessionID, err)
	}

	return result, nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	state := sess.Engine.Reset().Clone()

	// Auto-save session after reset
	if err := s.sessions.Save(sessionID); err != nil {
		fmt.Printf("Warning: Failed to persist session %s after reset: %v\n", sessionID, err)
	}

	return state, nil
}

// GetGameState retrieves a copy of the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState().Clone(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := min((opts.Page-1)*opts.Limit, total)
	end := min(start+opts.Limit, total)

	moves := make([]engine.MoveHistoryEntry, 0, end-start)
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else {
		moves = append(moves, history[start:end]...)
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// Solve searches from the session's current position. The session lock is
// only held while copying the state.
func (s *gameServiceImpl) Solve(ctx context.Context, sessionID string) (*SolveResult, error) {
	s.mu.RLock()
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		s.mu.RUnlock()
		return nil, fmt.Errorf("session not found: %w", err)
	}
	start := sess.Engine.GetState().Clone()
	s.mu.RUnlock()

	return s.solve(ctx, start)
}

// SolvePuzzle searches from the starting position of a puzzle
func (s *gameServiceImpl) SolvePuzzle(ctx context.Context, puzzleName string) (*SolveResult, error) {
	puzzle := s.puzzles.GetDefault()
	if puzzleName != "" {
		var err error
		puzzle, err = s.puzzles.LoadPuzzle(puzzleName)
		if err != nil {
			return nil, err
		}
	}

	_, start, err := puzzle.Build()
	if err != nil {
		return nil, err
	}
	return s.solve(ctx, start)
}

func (s *gameServiceImpl) solve(ctx context.Context, start *engine.GameState) (*SolveResult, error) {
	res, err := s.solver.Solve(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("solve failed: %w", err)
	}

	out := &SolveResult{
		Found:      res.Found,
		Directions: make([]string, 0, len(res.Moves)),
		Length:     len(res.Moves),
		Expanded:   res.Expanded,
		Discovered: res.Discovered,
		DurationMS: res.Duration.Milliseconds(),
	}
	for _, d := range res.Moves {
		out.Directions = append(out.Directions, d.String())
	}

	switch {
	case !res.Found:
		out.Message = "No solution"
	case len(res.Moves) == 0:
		out.Message = "Already solved"
	default:
		out.Moves = engine.FormatDirections(res.Moves)
		out.NextMove = res.Moves[0].String()
		out.Message = fmt.Sprintf("Solution in %d moves: %s", len(res.Moves), out.Moves)
	}
	return out, nil
}

// ListPuzzles returns available puzzles
func (s *gameServiceImpl) ListPuzzles(ctx context.Context) ([]*PuzzleInfo, error) {
	return s.puzzles.ListPuzzles()
}

// LoadPuzzle loads a specific puzzle
func (s *gameServiceImpl) LoadPuzzle(ctx context.Context, puzzleName string) (*engine.Puzzle, error) {
	return s.puzzles.LoadPuzzle(puzzleName)
}

// SavePuzzle saves a puzzle to disk
func (s *gameServiceImpl) SavePuzzle(ctx context.Context, puzzleName string, puzzle *engine.Puzzle) error {
	return s.puzzles.SavePuzzle(puzzleName, puzzle)
}

func newStep(idx int, d engine.Direction, prev, state *engine.GameState) *StepInfo {
	enemies := make([]engine.Enemy, len(state.Enemies))
	copy(enemies, state.Enemies)
	return &StepInfo{
		Idx:      idx,
		Dir:      d.String(),
		From:     prev.Player,
		To:       state.Player,
		Enemies:  enemies,
		WinState: state.WinState,
		Success:  true,
	}
}

// endCode classifies a finished game for bulk move results.
func endCode(state *engine.GameState) string {
	switch {
	case state.WinState == engine.Win:
		return "win"
	case state.Board().At(state.Player) == engine.Hazard:
		return "hazard"
	default:
		return "caught"
	}
}

// turnEvents describes what happened during one taken turn.
func turnEvents(prev, state *engine.GameState, d engine.Direction) []GameEvent {
	now := time.Now()
	events := []GameEvent{{
		Type:      "move",
		Message:   fmt.Sprintf("Moved %s to %v", d, state.Player),
		Timestamp: now,
		Position:  state.Player,
	}}

	switch state.WinState {
	case engine.Win:
		return append(events, GameEvent{Type: "win", Message: MessageWin, Timestamp: now, Position: state.Player})
	case engine.Lose:
		msg := "Caught by an enemy"
		if endCode(state) == "hazard" {
			msg = "Stepped on a hazard"
		}
		return append(events, GameEvent{Type: "lose", Message: msg, Timestamp: now, Position: state.Player})
	}

	if len(state.Enemies) < len(prev.Enemies) {
		for _, e := range state.Enemies {
			if e.Big {
				events = append(events, GameEvent{Type: "merge", Message: "Enemies merged into a big enemy", Timestamp: now, Position: e.Pos})
			}
		}
	}
	for _, e := range state.Enemies {
		if e.Cooldown == engine.HazardCooldown-1 {
			events = append(events, GameEvent{Type: "stunned", Message: "Enemy stunned by a hazard", Timestamp: now, Position: e.Pos})
		}
	}
	return events
}

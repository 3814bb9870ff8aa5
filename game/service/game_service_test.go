package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DariaMikhailovna/Wappo/game/engine"
	"github.com/DariaMikhailovna/Wappo/game/service"
	"github.com/DariaMikhailovna/Wappo/game/solver"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	saves    int
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id, puzzleID string, puzzle *engine.Puzzle) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(puzzle)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		PuzzleID:       puzzleID,
		Engine:         eng,
		Puzzle:         puzzle,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return service.ErrSessionNotFound
}

func (m *MockSessionManager) Save(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	m.saves++
	return nil
}

// MockPuzzleManager implements service.PuzzleManager for testing
type MockPuzzleManager struct {
	puzzles map[string]*engine.Puzzle
}

func NewMockPuzzleManager() *MockPuzzleManager {
	corridor := engine.DefaultPuzzle()
	corridor.Name = "Corridor"

	return &MockPuzzleManager{
		puzzles: map[string]*engine.Puzzle{
			"corridor": corridor,
			"hazard": {
				Name:   "Hazard",
				Height: 1,
				Width:  4,
				Layout: []string{
					"+H+-+-+-+",
					"|P   X E|",
					"+-+-+-+-+",
				},
			},
			"field": {
				Name:   "Field",
				Height: 3,
				Width:  3,
				Layout: []string{
					"+-+-+H+",
					"|E   E|",
					"+ + + +",
					"|     |",
					"+ + + +",
					"|P    |",
					"+-+-+-+",
				},
			},
		},
	}
}

func (m *MockPuzzleManager) LoadPuzzle(name string) (*engine.Puzzle, error) {
	if p, ok := m.puzzles[name]; ok {
		return p, nil
	}
	return nil, service.ErrPuzzleNotFound
}

func (m *MockPuzzleManager) ListPuzzles() ([]*service.PuzzleInfo, error) {
	var result []*service.PuzzleInfo
	for id, p := range m.puzzles {
		result = append(result, &service.PuzzleInfo{PuzzleID: id, Name: p.Name, Height: p.Height, Width: p.Width})
	}
	return result, nil
}

func (m *MockPuzzleManager) GetDefault() *engine.Puzzle {
	return m.puzzles["corridor"]
}

func (m *MockPuzzleManager) SavePuzzle(name string, puzzle *engine.Puzzle) error {
	if err := engine.ValidatePuzzle(puzzle); err != nil {
		return err
	}
	m.puzzles[name] = puzzle
	return nil
}

func newTestService() (service.GameService, *MockSessionManager) {
	sessions := NewMockSessionManager()
	return service.NewGameService(sessions, NewMockPuzzleManager(), solver.New()), sessions
}

func TestGameService_CreateSession(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if info.PuzzleID != "corridor" {
		t.Errorf("Expected default puzzle id 'corridor', got %q", info.PuzzleID)
	}
	if info.Status != "in_progress" || info.Message != "" {
		t.Errorf("Unexpected status %q / %q", info.Status, info.Message)
	}
	if len(info.Board) != 5 || info.Board[1] != "|P    H" {
		t.Errorf("Unexpected board %v", info.Board)
	}

	info, err = svc.CreateSession(ctx, "hazard")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if info.PuzzleID != "hazard" || info.Puzzle.Name != "Hazard" {
		t.Errorf("Unexpected puzzle %q / %q", info.PuzzleID, info.Puzzle.Name)
	}

	_, err = svc.CreateSession(ctx, "missing")
	if !errors.Is(err, service.ErrPuzzleNotFound) {
		t.Fatalf("Expected ErrPuzzleNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "Available puzzles") {
		t.Errorf("Expected available puzzles in error, got %v", err)
	}
}

func TestGameService_Move(t *testing.T) {
	svc, sessions := newTestService()
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "hazard")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if _, err := svc.Move(ctx, info.ID, "north", false); !errors.Is(err, engine.ErrInvalidDirection) {
		t.Errorf("Expected ErrInvalidDirection, got %v", err)
	}
	if _, err := svc.Move(ctx, "nope", "left", false); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}

	result, err := svc.Move(ctx, info.ID, "left", false)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if result.Success || result.Step != nil {
		t.Errorf("Expected blocked move, got %+v", result)
	}

	result, err = svc.Move(ctx, info.ID, "right", false)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if !result.Success || result.Step == nil {
		t.Fatalf("Expected successful move, got %+v", result)
	}
	if result.Step.To != (engine.Position{R: 1, C: 3}) {
		t.Errorf("Expected player at (1,3), got %v", result.Step.To)
	}
	if !hasEvent(result.Events, "stunned") {
		t.Errorf("Expected stunned event, got %+v", result.Events)
	}
	if result.Board[1] != "|  P E  |" {
		t.Errorf("Unexpected board row %q", result.Board[1])
	}

	result, err = svc.Move(ctx, info.ID, "right", false)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if result.Message != service.MessageLose || !hasEvent(result.Events, "lose") {
		t.Errorf("Expected GAME OVER, got %q %+v", result.Message, result.Events)
	}

	result, err = svc.Move(ctx, info.ID, "up", true)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if result.Message != service.MessageWin || !hasEvent(result.Events, "reset") || !hasEvent(result.Events, "win") {
		t.Errorf("Expected reset then YOU WIN, got %q %+v", result.Message, result.Events)
	}

	if sessions.saves == 0 {
		t.Error("Expected session to be saved after moves")
	}
}

func TestGameService_MoveMergeEvent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "field")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	result, err := svc.Move(ctx, info.ID, "right", false)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if !hasEvent(result.Events, "merge") {
		t.Errorf("Expected merge event, got %+v", result.Events)
	}
	if len(result.GameState.Enemies) != 1 || !result.GameState.Enemies[0].Big {
		t.Errorf("Expected one big enemy, got %+v", result.GameState.Enemies)
	}
}

func TestGameService_BulkMove(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "hazard")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	tests := []struct {
		name     string
		moves    []string
		executed int
		code     string
		stopped  int
		success  bool
	}{
		{"blocked", []string{"left", "up"}, 0, "blocked_wall", 1, false},
		{"invalid", []string{"sideways"}, 0, "invalid_direction", 1, false},
		{"win stops the run", []string{"up", "right"}, 1, "win", 2, true},
		{"hazard", []string{"right", "right"}, 2, "hazard", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.BulkMove(ctx, info.ID, tt.moves, true)
			if err != nil {
				t.Fatalf("BulkMove failed: %v", err)
			}
			if result.MovesExecuted != tt.executed {
				t.Errorf("Expected %d moves executed, got %d", tt.executed, result.MovesExecuted)
			}
			if result.StopReasonCode != tt.code {
				t.Errorf("Expected stop code %q, got %q", tt.code, result.StopReasonCode)
			}
			if result.StoppedOnMove != tt.stopped {
				t.Errorf("Expected stop on move %d, got %d", tt.stopped, result.StoppedOnMove)
			}
			if result.Success != tt.success {
				t.Errorf("Expected success=%v, got %v", tt.success, result.Success)
			}
			if len(result.Steps) != tt.executed {
				t.Errorf("Expected %d steps, got %d", tt.executed, len(result.Steps))
			}
			if result.StartPos != (engine.Position{R: 1, C: 1}) {
				t.Errorf("Expected start at (1,1) after reset, got %v", result.StartPos)
			}
		})
	}
}

func TestGameService_BulkMoveTruncated(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "corridor")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	moves := make([]string, 0, engine.MaxBulkMoves+50)
	for len(moves) < engine.MaxBulkMoves+50 {
		moves = append(moves, "right", "left")
	}

	result, err := svc.BulkMove(ctx, info.ID, moves, false)
	if err != nil {
		t.Fatalf("BulkMove failed: %v", err)
	}
	if !result.Truncated || result.Limit != engine.MaxBulkMoves {
		t.Errorf("Expected truncation at %d, got %+v", engine.MaxBulkMoves, result)
	}
	if result.MovesExecuted != engine.MaxBulkMoves || result.GameOver {
		t.Errorf("Expected %d safe moves, got %d (game over %v)", engine.MaxBulkMoves, result.MovesExecuted, result.GameOver)
	}
}

func TestGameService_GetMoveHistory(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "corridor")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	for _, m := range []string{"left", "right", "left"} {
		if _, err := svc.Move(ctx, info.ID, m, false); err != nil {
			t.Fatalf("Move failed: %v", err)
		}
	}

	page1, err := svc.GetMoveHistory(ctx, info.ID, service.HistoryOptions{Limit: 2})
	if err != nil {
		t.Fatalf("GetMoveHistory failed: %v", err)
	}
	if page1.TotalMoves != 3 || page1.TotalPages != 2 || !page1.HasNext || page1.HasPrevious {
		t.Errorf("Unexpected pagination %+v", page1)
	}
	if len(page1.Moves) != 2 || page1.Moves[0].MoveNumber != 3 || page1.Moves[1].MoveNumber != 2 {
		t.Errorf("Expected moves 3,2 first, got %+v", page1.Moves)
	}

	page2, err := svc.GetMoveHistory(ctx, info.ID, service.HistoryOptions{Page: 2, Limit: 2, Order: "asc"})
	if err != nil {
		t.Fatalf("GetMoveHistory failed: %v", err)
	}
	if len(page2.Moves) != 1 || page2.Moves[0].MoveNumber != 3 || page2.HasNext {
		t.Errorf("Unexpected second page %+v", page2)
	}

	beyond, err := svc.GetMoveHistory(ctx, info.ID, service.HistoryOptions{Page: 9, Limit: 2})
	if err != nil {
		t.Fatalf("GetMoveHistory failed: %v", err)
	}
	if len(beyond.Moves) != 0 || beyond.Moves == nil {
		t.Errorf("Expected empty page, got %+v", beyond.Moves)
	}
}

func TestGameService_Solve(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "corridor")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	res, err := svc.Solve(ctx, info.ID)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if !res.Found || res.Moves != "RRR" || res.NextMove != "right" || res.Length != 3 {
		t.Errorf("Unexpected solution %+v", res)
	}

	if _, err := svc.Move(ctx, info.ID, "right", false); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	res, err = svc.Solve(ctx, info.ID)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if res.Moves != "RR" {
		t.Errorf("Expected solving from the current position, got %s", res.Moves)
	}

	res, err = svc.SolvePuzzle(ctx, "field")
	if err != nil {
		t.Fatalf("SolvePuzzle failed: %v", err)
	}
	if res.Found || res.Message != "No solution" {
		t.Errorf("Expected no solution, got %+v", res)
	}

	res, err = svc.SolvePuzzle(ctx, "hazard")
	if err != nil {
		t.Fatalf("SolvePuzzle failed: %v", err)
	}
	if res.Moves != "U" {
		t.Errorf("Expected U, got %s", res.Moves)
	}

	if _, err := svc.SolvePuzzle(ctx, "missing"); !errors.Is(err, service.ErrPuzzleNotFound) {
		t.Errorf("Expected ErrPuzzleNotFound, got %v", err)
	}
	if _, err := svc.Solve(ctx, "nope"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_SolveCancelled(t *testing.T) {
	svc, _ := newTestService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.SolvePuzzle(ctx, "corridor"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestGameService_ListAndDeleteSessions(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, name := range []string{"corridor", "hazard"} {
		if _, err := svc.CreateSession(ctx, name); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
	}

	list, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(list))
	}

	if err := svc.DeleteSession(ctx, list[0].ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := svc.GetSession(ctx, list[0].ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected deleted session to be gone, got %v", err)
	}
}

func TestGameService_Reset(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "hazard")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	svc.Move(ctx, info.ID, "right", false)

	state, err := svc.Reset(ctx, info.ID)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if state.Player != (engine.Position{R: 1, C: 1}) || state.Enemies[0].Cooldown != 0 {
		t.Errorf("Expected initial state, got %v", state)
	}

	current, err := svc.GetGameState(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetGameState failed: %v", err)
	}
	if current.Key() != state.Key() {
		t.Errorf("Expected state after reset, got %v", current.Key())
	}
}

func TestGameService_SavePuzzle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.SavePuzzle(ctx, "bad", &engine.Puzzle{Name: "bad"}); !errors.Is(err, engine.ErrInvalidPuzzle) {
		t.Errorf("Expected ErrInvalidPuzzle, got %v", err)
	}

	p := engine.DefaultPuzzle()
	p.Name = "Copy"
	if err := svc.SavePuzzle(ctx, "copy", p); err != nil {
		t.Fatalf("SavePuzzle failed: %v", err)
	}
	loaded, err := svc.LoadPuzzle(ctx, "copy")
	if err != nil || loaded.Name != "Copy" {
		t.Errorf("Expected saved puzzle, got %v (%v)", loaded, err)
	}

	infos, err := svc.ListPuzzles(ctx)
	if err != nil || len(infos) != 4 {
		t.Errorf("Expected 4 puzzles, got %d (%v)", len(infos), err)
	}
}

func TestStatusMessage(t *testing.T) {
	_, state, err := engine.DefaultPuzzle().Build()
	if err != nil {
		t.Fatalf("Failed to build: %v", err)
	}
	if got := service.StatusMessage(state); got != "" {
		t.Errorf("Expected no message in progress, got %q", got)
	}
	state.WinState = engine.Win
	if got := service.StatusMessage(state); got != "YOU WIN" {
		t.Errorf("Expected YOU WIN, got %q", got)
	}
	state.WinState = engine.Lose
	if got := service.StatusMessage(state); got != "GAME OVER" {
		t.Errorf("Expected GAME OVER, got %q", got)
	}
}

func hasEvent(events []service.GameEvent, typ string) bool {
	for _, e := range events {
		if e.Type == typ {
			return true
		}
	}
	return false
}

package tui

import (
	"strings"
	"testing"

	"github.com/DariaMikhailovna/Wappo/game/engine"
	"github.com/DariaMikhailovna/Wappo/game/service"
	"github.com/DariaMikhailovna/Wappo/game/solver"
	tea "github.com/charmbracelet/bubbletea"
)

func hazardPuzzle() *engine.Puzzle {
	return &engine.Puzzle{
		Name:   "Hazard",
		Height: 1,
		Width:  4,
		Layout: []string{
			"+H+-+-+-+",
			"|P   X E|",
			"+-+-+-+-+",
		},
	}
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func press(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Expected Model, got %T", next)
	}
	return model, cmd
}

func newModel(t *testing.T, puzzle *engine.Puzzle, s *solver.Solver) Model {
	t.Helper()
	m, err := New(puzzle, s)
	if err != nil {
		t.Fatalf("Failed to create model: %v", err)
	}
	return m
}

func TestNew_InvalidPuzzle(t *testing.T) {
	if _, err := New(&engine.Puzzle{Name: "empty"}, nil); err == nil {
		t.Error("Expected error for an invalid puzzle")
	}
}

func TestModel_Keys(t *testing.T) {
	tests := []struct {
		name       string
		keys       []tea.KeyMsg
		wantPlayer engine.Position
		wantWin    engine.WinState
		wantStatus string
	}{
		{
			name:       "arrow exits through the outline goal",
			keys:       []tea.KeyMsg{{Type: tea.KeyUp}},
			wantPlayer: engine.Position{R: 1, C: 1},
			wantWin:    engine.Win,
			wantStatus: "Moved up",
		},
		{
			name:       "letter keys move",
			keys:       []tea.KeyMsg{runeKey('r')},
			wantPlayer: engine.Position{R: 1, C: 3},
			wantWin:    engine.InProgress,
			wantStatus: "Moved right (1,1)→(1,3)",
		},
		{
			name:       "wall bump",
			keys:       []tea.KeyMsg{{Type: tea.KeyLeft}},
			wantPlayer: engine.Position{R: 1, C: 1},
			wantWin:    engine.InProgress,
			wantStatus: "Can't move left: wall",
		},
		{
			name:       "walking into the released enemy",
			keys:       []tea.KeyMsg{{Type: tea.KeyRight}, {Type: tea.KeyRight}},
			wantPlayer: engine.Position{R: 1, C: 5},
			wantWin:    engine.Lose,
		},
		{
			name:       "no moves after the game ends",
			keys:       []tea.KeyMsg{{Type: tea.KeyUp}, {Type: tea.KeyRight}},
			wantPlayer: engine.Position{R: 1, C: 1},
			wantWin:    engine.Win,
			wantStatus: "Game is over",
		},
		{
			name:       "reset",
			keys:       []tea.KeyMsg{runeKey('r'), runeKey('x')},
			wantPlayer: engine.Position{R: 1, C: 1},
			wantWin:    engine.InProgress,
			wantStatus: "Puzzle reset",
		},
		{
			name:       "unknown keys are ignored",
			keys:       []tea.KeyMsg{runeKey('z')},
			wantPlayer: engine.Position{R: 1, C: 1},
			wantWin:    engine.InProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModel(t, hazardPuzzle(), nil)
			for _, k := range tt.keys {
				m, _ = press(t, m, k)
			}

			state := m.State()
			if state.Player != tt.wantPlayer {
				t.Errorf("Expected player at %v, got %v", tt.wantPlayer, state.Player)
			}
			if state.WinState != tt.wantWin {
				t.Errorf("Expected %s, got %s", tt.wantWin, state.WinState)
			}
			if tt.wantStatus != "" && !strings.HasPrefix(m.status, tt.wantStatus) {
				t.Errorf("Expected status %q, got %q", tt.wantStatus, m.status)
			}
		})
	}
}

func TestModel_Quit(t *testing.T) {
	for _, k := range []tea.KeyMsg{runeKey('q'), {Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		t.Run(k.String(), func(t *testing.T) {
			_, cmd := press(t, newModel(t, hazardPuzzle(), nil), k)
			if cmd == nil {
				t.Fatal("Expected a quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("Expected tea.QuitMsg")
			}
		})
	}
}

func TestModel_Hint(t *testing.T) {
	m := newModel(t, engine.DefaultPuzzle(), solver.New())

	m, cmd := press(t, m, runeKey('?'))
	if cmd == nil {
		t.Fatal("Expected a hint command")
	}
	if m.hint != "Searching..." {
		t.Errorf("Expected searching hint, got %q", m.hint)
	}

	// A second request while searching is ignored
	if _, again := press(t, m, runeKey('?')); again != nil {
		t.Error("Expected no second search while one is running")
	}

	m, _ = press(t, m, cmd())
	if m.hint != "Try right (3 moves: RRR)" {
		t.Errorf("Unexpected hint %q", m.hint)
	}
	if !strings.Contains(m.View(), "Try right") {
		t.Error("Expected the hint in the view")
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.hint != "" {
		t.Errorf("Expected the hint to clear after a move, got %q", m.hint)
	}
}

func TestModel_HintDroppedAfterMove(t *testing.T) {
	m := newModel(t, engine.DefaultPuzzle(), solver.New())

	m, cmd := press(t, m, runeKey('?'))
	if cmd == nil {
		t.Fatal("Expected a hint command")
	}

	// The search result arrives after the player has already moved
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = press(t, m, cmd())
	if m.hint != "" {
		t.Errorf("Expected the outdated hint to be dropped, got %q", m.hint)
	}
	if m.solving {
		t.Error("Expected the search to be marked finished")
	}

	m, cmd = press(t, m, runeKey('?'))
	if cmd == nil {
		t.Fatal("Expected a fresh hint command")
	}
	m, _ = press(t, m, cmd())
	if m.hint != "Try right (2 moves: RR)" {
		t.Errorf("Unexpected hint %q", m.hint)
	}
}

func TestModel_HintWithoutSolver(t *testing.T) {
	m := newModel(t, engine.DefaultPuzzle(), nil)
	if _, cmd := press(t, m, runeKey('?')); cmd != nil {
		t.Error("Expected no hint command without a solver")
	}
}

func TestDescribeHint(t *testing.T) {
	tests := []struct {
		name string
		msg  HintMsg
		want string
	}{
		{"error", HintMsg{Err: solver.ErrStateLimit}, "Hint failed: state limit exceeded"},
		{"no solution", HintMsg{Result: &solver.Result{}}, "No way out from here"},
		{"solved", HintMsg{Result: &solver.Result{Found: true}}, "Already solved"},
		{"path", HintMsg{Result: &solver.Result{Found: true, Moves: []engine.Direction{engine.Up, engine.Left}}}, "Try up (2 moves: UL)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeHint(tt.msg); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestModel_View(t *testing.T) {
	m := newModel(t, hazardPuzzle(), nil)

	view := m.View()
	for _, want := range []string{"Wappo: Hazard", "Moves: 0", "q: quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected %q in view:\n%s", want, view)
		}
	}
	if strings.Contains(view, service.MessageWin) || strings.Contains(view, service.MessageLose) {
		t.Error("Expected no banner while playing")
	}

	won, _ := press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if !strings.Contains(won.View(), service.MessageWin) {
		t.Errorf("Expected win banner:\n%s", won.View())
	}

	lost := newModel(t, hazardPuzzle(), nil)
	lost, _ = press(t, lost, tea.KeyMsg{Type: tea.KeyRight})
	lost, _ = press(t, lost, tea.KeyMsg{Type: tea.KeyRight})
	if !strings.Contains(lost.View(), service.MessageLose) {
		t.Errorf("Expected lose banner:\n%s", lost.View())
	}
}

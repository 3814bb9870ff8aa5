package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DariaMikhailovna/Wappo/game/engine"
	"github.com/DariaMikhailovna/Wappo/game/service"
	"github.com/DariaMikhailovna/Wappo/game/solver"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HintTimeout bounds a single hint search.
const HintTimeout = 5 * time.Second

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	playerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	enemyStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	hazardStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	goalStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	wallStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	winStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	loseStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

var keyDirections = map[string]engine.Direction{
	"left":  engine.Left,
	"l":     engine.Left,
	"right": engine.Right,
	"r":     engine.Right,
	"up":    engine.Up,
	"u":     engine.Up,
	"down":  engine.Down,
	"d":     engine.Down,
}

// HintMsg carries the result of a background hint search started from the
// position identified by Key.
type HintMsg struct {
	Key    engine.Key
	Result *solver.Result
	Err    error
}

// Model is a bubbletea model playing one puzzle locally.
type Model struct {
	engine  *engine.GameEngine
	solver  *solver.Solver
	status  string
	hint    string
	solving bool
}

// New creates a model for puzzle. A nil solver disables hints.
func New(puzzle *engine.Puzzle, s *solver.Solver) (Model, error) {
	eng, err := engine.NewEngine(puzzle)
	if err != nil {
		return Model{}, err
	}
	return Model{engine: eng, solver: s}, nil
}

// State returns the live game state.
func (m Model) State() *engine.GameState {
	return m.engine.GetState()
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	case HintMsg:
		m.solving = false
		if msg.Key != m.engine.GetState().Key() {
			// The player moved on while the search ran.
			m.hint = ""
			return m, nil
		}
		m.hint = describeHint(msg)
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "x":
		m.engine.Reset()
		m.status = "Puzzle reset"
		m.hint = ""
		return m, nil
	case "?":
		if m.solver == nil || m.solving {
			return m, nil
		}
		m.solving = true
		m.hint = "Searching..."
		return m, m.hintCmd()
	}

	d, ok := keyDirections[key]
	if !ok {
		return m, nil
	}

	if m.engine.IsGameOver() {
		m.status = "Game is over, press x to restart"
		return m, nil
	}

	from := m.engine.GetPlayerPosition()
	if !m.engine.MoveDirection(d) {
		m.status = fmt.Sprintf("Can't move %s: wall", d)
		return m, nil
	}
	m.status = fmt.Sprintf("Moved %s %v→%v", d, from, m.engine.GetPlayerPosition())
	m.hint = ""
	return m, nil
}

// hintCmd searches from a snapshot so the running game is never shared with
// the search goroutine.
func (m Model) hintCmd() tea.Cmd {
	start := m.engine.GetState().Clone()
	s := m.solver
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), HintTimeout)
		defer cancel()
		res, err := s.Solve(ctx, start)
		return HintMsg{Key: start.Key(), Result: res, Err: err}
	}
}

func describeHint(msg HintMsg) string {
	switch {
	case msg.Err != nil:
		return "Hint failed: " + msg.Err.Error()
	case !msg.Result.Found:
		return "No way out from here"
	case len(msg.Result.Moves) == 0:
		return "Already solved"
	}
	return fmt.Sprintf("Try %s (%d moves: %s)",
		msg.Result.Moves[0], len(msg.Result.Moves), engine.FormatDirections(msg.Result.Moves))
}

func (m Model) View() string {
	state := m.engine.GetState()
	puzzle := m.engine.GetPuzzle()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Wappo: " + puzzle.Name))
	b.WriteString("\n\n")
	for _, row := range state.Render() {
		b.WriteString(renderRow(row))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Moves: %d  Threat: %s\n", m.engine.CurrentMoves(), engine.AnalyzeThreat(state))
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	if m.hint != "" {
		b.WriteString(m.hint + "\n")
	}

	switch state.WinState {
	case engine.Win:
		b.WriteString("\n" + winStyle.Render(service.MessageWin) + "\n")
	case engine.Lose:
		b.WriteString("\n" + loseStyle.Render(service.MessageLose) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("arrows/u d l r: move • x: reset • ?: hint • q: quit") + "\n")
	return b.String()
}

func renderRow(row string) string {
	var b strings.Builder
	for i := 0; i < len(row); i++ {
		ch := row[i]
		s := string(ch)
		switch ch {
		case engine.PlayerMrk:
			s = playerStyle.Render(s)
		case engine.EnemyMrk:
			s = enemyStyle.Render(s)
		case engine.Hazard:
			s = hazardStyle.Render(s)
		case engine.Goal:
			s = goalStyle.Render(s)
		case engine.Junction, engine.WallH, engine.WallV:
			s = wallStyle.Render(s)
		}
		b.WriteString(s)
	}
	return b.String()
}

// Run plays puzzle in the terminal until the user quits.
func Run(puzzle *engine.Puzzle, s *solver.Solver) error {
	m, err := New(puzzle, s)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

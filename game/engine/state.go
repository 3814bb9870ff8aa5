package engine

import (
	"fmt"
	"slices"
	"strings"
)

// GameState is one world configuration on a Board: the player, the ordered
// enemies and the outcome tag. It changes only through Move.
type GameState struct {
	Player   Position `json:"player"`
	Enemies  []Enemy  `json:"enemies"`
	WinState WinState `json:"win_state"`

	board *Board
}

// NewGameState creates an in-progress state on board. The enemy slice is copied.
func NewGameState(board *Board, player Position, enemies ...Enemy) *GameState {
	return &GameState{
		Player:  player,
		Enemies: slices.Clone(enemies),
		board:   board,
	}
}

// Board returns the board the state is played on.
func (s *GameState) Board() *Board {
	return s.board
}

// Clone returns a deep copy sharing the immutable board.
func (s *GameState) Clone() *GameState {
	return &GameState{
		Player:   s.Player,
		Enemies:  slices.Clone(s.Enemies),
		WinState: s.WinState,
		board:    s.board,
	}
}

// IsTerminal reports whether the game has been won or lost.
func (s *GameState) IsTerminal() bool {
	return s.WinState != InProgress
}

// Validate checks the positional invariants of an in-progress state.
func (s *GameState) Validate() error {
	if s.board == nil {
		return fmt.Errorf("%w: no board attached", ErrInvalidState)
	}
	if s.IsTerminal() {
		return nil
	}
	if !s.board.IsCell(s.Player) {
		return fmt.Errorf("%w: player at %v is not a cell", ErrInvalidState, s.Player)
	}
	if len(s.Enemies) < 1 || len(s.Enemies) > MaxEnemies {
		return fmt.Errorf("%w: expected 1 to %d enemies, got %d", ErrInvalidState, MaxEnemies, len(s.Enemies))
	}
	for i, e := range s.Enemies {
		if !s.board.IsCell(e.Pos) {
			return fmt.Errorf("%w: enemy %d at %v is not a cell", ErrInvalidState, i, e.Pos)
		}
		if e.Cooldown < 0 {
			return fmt.Errorf("%w: enemy %d has negative cooldown %d", ErrInvalidState, i, e.Cooldown)
		}
	}
	return nil
}

// Key identifies a GameState for visited-set deduplication. It is a
// comparable value and can be used directly as a map key. All won states
// share one key and all lost states share another.
type Key struct {
	win     WinState
	player  Position
	count   int
	enemies [MaxEnemies]Enemy
}

// WinState returns the outcome tag the key was built from.
func (k Key) WinState() WinState { return k.win }

func (k Key) String() string {
	if k.win != InProgress {
		return k.win.String()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "P%v", k.player)
	for _, e := range k.enemies[:k.count] {
		fmt.Fprintf(&sb, " E%v", e.Pos)
		if e.Big {
			sb.WriteString("+big")
		}
		if e.Cooldown > 0 {
			fmt.Fprintf(&sb, "/%d", e.Cooldown)
		}
	}
	return sb.String()
}

// Key returns the identity of s. Enemy order is significant.
func (s *GameState) Key() Key {
	if s.IsTerminal() {
		return Key{win: s.WinState}
	}
	if len(s.Enemies) > MaxEnemies {
		panic(fmt.Sprintf("engine: state has %d enemies, at most %d are supported", len(s.Enemies), MaxEnemies))
	}
	k := Key{player: s.Player, count: len(s.Enemies)}
	copy(k.enemies[:], s.Enemies)
	return k
}

// CanonicalKey is like Key but orders enemies by position, then size and
// cooldown, so states that differ only in enemy order compare equal.
func (s *GameState) CanonicalKey() Key {
	k := s.Key()
	if k.count > 1 {
		slices.SortFunc(k.enemies[:k.count], compareEnemies)
	}
	return k
}

func compareEnemies(a, b Enemy) int {
	switch {
	case a.Pos.less(b.Pos):
		return -1
	case b.Pos.less(a.Pos):
		return 1
	case a.Big != b.Big:
		if !a.Big {
			return -1
		}
		return 1
	}
	return a.Cooldown - b.Cooldown
}

// Render draws the board with the player (P) and enemies (E) overlaid.
func (s *GameState) Render() []string {
	grid := make([][]byte, len(s.board.grid))
	for i, row := range s.board.grid {
		grid[i] = slices.Clone(row)
	}
	grid[s.Player.R][s.Player.C] = PlayerMrk
	for _, e := range s.Enemies {
		grid[e.Pos.R][e.Pos.C] = EnemyMrk
	}

	rows := make([]string, len(grid))
	for i, row := range grid {
		rows[i] = string(row)
	}
	return rows
}

func (s *GameState) String() string {
	return strings.Join(s.Render(), "\n")
}

package engine

import (
	"fmt"
	"strings"
)

// Direction is one of the four moves available to the player and to enemies.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Directions lists every direction in the fixed enumeration order used for
// player input, enemy pursuit tie-breaking and search expansion.
var Directions = [...]Direction{Left, Right, Up, Down}

const (
	// Cell and outline symbols
	Junction  = '+'
	WallH     = '-'
	WallV     = '|'
	Open      = ' '
	Hazard    = 'X'
	Goal      = 'H'
	PlayerMrk = 'P'
	EnemyMrk  = 'E'

	// Gameplay constants
	HazardCooldown = 4
	MergeCooldown  = 1
	MaxEnemies     = 2
	EnemySubSteps  = 3
	MaxBulkMoves   = 200
)

// Delta returns the row/column step of d in doubled coordinates.
func (d Direction) Delta() (dr, dc int) {
	switch d {
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	}
	panic(fmt.Sprintf("engine: invalid direction %d", int(d)))
}

// Letter returns the one-letter code used in solution strings.
func (d Direction) Letter() byte {
	return "LRUD"[d]
}

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection accepts a one-letter code or a direction name, case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "left":
		return Left, nil
	case "r", "right":
		return Right, nil
	case "u", "up":
		return Up, nil
	case "d", "down":
		return Down, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// FormatDirections renders a move sequence as letters, e.g. "RRU".
func FormatDirections(moves []Direction) string {
	var sb strings.Builder
	sb.Grow(len(moves))
	for _, d := range moves {
		sb.WriteByte(d.Letter())
	}
	return sb.String()
}

// ParseDirections is the inverse of FormatDirections. Whitespace is ignored.
func ParseDirections(s string) ([]Direction, error) {
	moves := make([]Direction, 0, len(s))
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		d, err := ParseDirection(string(r))
		if err != nil {
			return nil, err
		}
		moves = append(moves, d)
	}
	return moves, nil
}

// Position is a cell in doubled coordinates: play cells sit at odd/odd indices.
type Position struct {
	R int `json:"r"`
	C int `json:"c"`
}

// Step returns the position n outline units away in direction d.
func (p Position) Step(d Direction, n int) Position {
	dr, dc := d.Delta()
	return Position{R: p.R + dr*n, C: p.C + dc*n}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.R, p.C)
}

func (p Position) less(o Position) bool {
	if p.R != o.R {
		return p.R < o.R
	}
	return p.C < o.C
}

// Enemy is a pursuer. Big enemies are the product of a merge and get a third
// movement sub-step; Cooldown counts turns left without moving.
type Enemy struct {
	Pos      Position `json:"pos"`
	Big      bool     `json:"big"`
	Cooldown int      `json:"cooldown"`
}

// WinState is the outcome tag of a GameState.
type WinState int

const (
	InProgress WinState = iota
	Win
	Lose
)

func (w WinState) String() string {
	switch w {
	case InProgress:
		return "in_progress"
	case Win:
		return "win"
	case Lose:
		return "lose"
	}
	return fmt.Sprintf("WinState(%d)", int(w))
}

// MarshalText implements encoding.TextMarshaler.
func (w WinState) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *WinState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "in_progress", "":
		*w = InProgress
	case "win":
		*w = Win
	case "lose":
		*w = Lose
	default:
		return fmt.Errorf("engine: unknown win state %q", text)
	}
	return nil
}

// Puzzle is the serialisable definition of a board and its starting positions.
type Puzzle struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Height      int      `json:"height"`
	Width       int      `json:"width"`
	Layout      []string `json:"layout"`
}

// MoveHistoryEntry represents a single move in the game history
type MoveHistoryEntry struct {
	Action     string   `json:"action"`
	From       Position `json:"from"`
	To         Position `json:"to"`
	Moved      bool     `json:"moved"`
	WinState   WinState `json:"win_state"`
	Timestamp  int64    `json:"timestamp"`
	MoveNumber int      `json:"move_number"`
}

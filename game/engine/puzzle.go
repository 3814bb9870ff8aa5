package engine

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ValidatePuzzle checks a puzzle definition for structural correctness:
// dimensions, symbols allowed at each parity, a single goal and the number
// of player and enemy start markers.
func ValidatePuzzle(p *Puzzle) error {
	if p == nil {
		return fmt.Errorf("%w: puzzle is nil", ErrInvalidPuzzle)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPuzzle)
	}
	if p.Height < 1 || p.Width < 1 {
		return fmt.Errorf("%w: height and width must be at least 1, got %dx%d", ErrInvalidPuzzle, p.Height, p.Width)
	}

	rows, cols := 2*p.Height+1, 2*p.Width+1
	if len(p.Layout) != rows {
		return fmt.Errorf("%w: layout must have %d rows for height %d, got %d", ErrInvalidPuzzle, rows, p.Height, len(p.Layout))
	}

	goals, players, enemies := 0, 0, 0
	for r, row := range p.Layout {
		if len(row) != cols {
			return fmt.Errorf("%w: row %d must have %d characters for width %d, got %d", ErrInvalidPuzzle, r, cols, p.Width, len(row))
		}
		for c := 0; c < cols; c++ {
			ch := row[c]
			if !symbolAllowed(ch, r, c, rows, cols) {
				return fmt.Errorf("%w: invalid symbol %q at row %d, col %d", ErrInvalidPuzzle, ch, r, c)
			}
			switch ch {
			case Goal:
				goals++
			case PlayerMrk:
				players++
			case EnemyMrk:
				enemies++
			}
		}
	}

	if goals != 1 {
		return fmt.Errorf("%w: layout must contain exactly one goal (H), got %d", ErrInvalidPuzzle, goals)
	}
	if players != 1 {
		return fmt.Errorf("%w: layout must contain exactly one player (P), got %d", ErrInvalidPuzzle, players)
	}
	if enemies < 1 || enemies > MaxEnemies {
		return fmt.Errorf("%w: layout must contain 1 to %d enemies (E), got %d", ErrInvalidPuzzle, MaxEnemies, enemies)
	}
	return nil
}

func symbolAllowed(ch byte, r, c, rows, cols int) bool {
	evenR, evenC := r%2 == 0, c%2 == 0
	switch {
	case evenR && evenC:
		return ch == Junction
	case evenR:
		if r == 0 || r == rows-1 {
			return ch == WallH || ch == Goal
		}
		return ch == WallH || ch == Open
	case evenC:
		if c == 0 || c == cols-1 {
			return ch == WallV || ch == Goal
		}
		return ch == WallV || ch == Open
	default:
		switch ch {
		case Open, Hazard, Goal, PlayerMrk, EnemyMrk:
			return true
		}
		return false
	}
}

// Build validates the puzzle and returns its immutable board together with
// the initial game state.
func (p *Puzzle) Build() (*Board, *GameState, error) {
	if err := ValidatePuzzle(p); err != nil {
		return nil, nil, err
	}

	board := &Board{
		height: p.Height,
		width:  p.Width,
		grid:   make([][]byte, len(p.Layout)),
	}
	state := &GameState{board: board}

	for r, row := range p.Layout {
		line := []byte(row)
		for c, ch := range line {
			pos := Position{R: r, C: c}
			switch ch {
			case Goal:
				board.goal = pos
			case PlayerMrk:
				state.Player = pos
				line[c] = Open
			case EnemyMrk:
				state.Enemies = append(state.Enemies, Enemy{Pos: pos})
				line[c] = Open
			}
		}
		board.grid[r] = line
	}

	return board, state, nil
}

// ParsePuzzleText reads the plain text puzzle format: a "H W" header line
// followed by 2H+1 grid rows, each truncated to 2W+1 characters.
func ParsePuzzleText(r io.Reader, name string) (*Puzzle, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		return nil, fmt.Errorf("%w: missing header line", ErrInvalidPuzzle)
	}

	p := &Puzzle{Name: name}
	if _, err := fmt.Sscanf(strings.TrimSpace(scanner.Text()), "%d %d", &p.Height, &p.Width); err != nil {
		return nil, fmt.Errorf("%w: bad header %q: %v", ErrInvalidPuzzle, scanner.Text(), err)
	}

	rows, cols := 2*p.Height+1, 2*p.Width+1
	for len(p.Layout) < rows && scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if len(line) > cols {
			line = line[:cols]
		}
		p.Layout = append(p.Layout, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}

	if err := ValidatePuzzle(p); err != nil {
		return nil, err
	}
	return p, nil
}

// FormatPuzzleText writes p in the plain text format read by ParsePuzzleText.
func FormatPuzzleText(w io.Writer, p *Puzzle) error {
	if _, err := fmt.Fprintf(w, "%d %d\n", p.Height, p.Width); err != nil {
		return err
	}
	for _, row := range p.Layout {
		if _, err := fmt.Fprintln(w, row); err != nil {
			return err
		}
	}
	return nil
}

// LoadPuzzleFile loads a puzzle from a JSON file, or from the plain text
// format for any other extension. Text puzzles are named after the file.
func LoadPuzzleFile(path string) (*Puzzle, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var p Puzzle
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to parse puzzle '%s': %w", path, err)
		}
		if p.Name == "" {
			p.Name = name
		}
		if err := ValidatePuzzle(&p); err != nil {
			return nil, err
		}
		return &p, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParsePuzzleText(f, name)
}

// DefaultPuzzle returns a small built-in puzzle used when no puzzle files
// are available.
func DefaultPuzzle() *Puzzle {
	return &Puzzle{
		Name:        "default",
		Description: "Built-in corridor: reach the exit on the right",
		Height:      2,
		Width:       3,
		Layout: []string{
			"+-+-+-+",
			"|P    H",
			"+-+-+-+",
			"|    E|",
			"+-+-+-+",
		},
	}
}

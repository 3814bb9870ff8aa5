package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPuzzle    = errors.New("invalid puzzle")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidState     = errors.New("invalid game state")
)

// Board is the immutable maze: a (2H+1)x(2W+1) grid in doubled coordinates
// where odd/odd entries are play cells and the rest are outline markers.
// Start markers have already been cleared from the grid.
type Board struct {
	height int
	width  int
	grid   [][]byte
	goal   Position
}

// Height returns the number of cell rows.
func (b *Board) Height() int { return b.height }

// Width returns the number of cell columns.
func (b *Board) Width() int { return b.width }

// Goal returns the grid location of the single goal marker. It is usually an
// outline position on the perimeter.
func (b *Board) Goal() Position { return b.goal }

// At returns the symbol at any grid position, cell or outline.
func (b *Board) At(p Position) byte {
	return b.grid[p.R][p.C]
}

// Rows returns a copy of the grid as strings.
func (b *Board) Rows() []string {
	rows := make([]string, len(b.grid))
	for i, row := range b.grid {
		rows[i] = string(row)
	}
	return rows
}

// IsCell reports whether p addresses a play cell of this board.
func (b *Board) IsCell(p Position) bool {
	return p.R > 0 && p.R < 2*b.height+1 && p.R%2 == 1 &&
		p.C > 0 && p.C < 2*b.width+1 && p.C%2 == 1
}

// outline returns the marker between cell p and its neighbour in direction d.
func (b *Board) outline(p Position, d Direction) byte {
	b.mustCell(p)
	return b.At(p.Step(d, 1))
}

// mustCell panics on a position that can never occur on a validated board.
func (b *Board) mustCell(p Position) {
	if !b.IsCell(p) {
		panic(fmt.Sprintf("engine: position %v is not a cell of a %dx%d board", p, b.height, b.width))
	}
}

func isWall(ch byte) bool {
	return ch == WallH || ch == WallV
}

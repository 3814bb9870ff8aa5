// Command analyze prints quick, human-readable statistics about the puzzle
// files in a directory (puzzles by default): dimensions, enemy and hazard
// counts, how close the nearest enemy starts, and the solver's effort with
// ordered and with canonical enemy keys.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/DariaMikhailovna/Wappo/game/engine"
	"github.com/DariaMikhailovna/Wappo/game/solver"
)

// searchTimeout bounds each of the two searches per puzzle.
const searchTimeout = time.Minute

// Analysis holds the figures printed for one puzzle.
type Analysis struct {
	File         string
	Name         string
	Height       int
	Width        int
	Enemies      int
	Hazards      int
	NearestEnemy int
	Threat       string

	Ordered   *solver.Result
	Canonical *solver.Result
}

func main() {
	puzzleDir := "puzzles"
	if len(os.Args) > 1 {
		puzzleDir = os.Args[1]
	}

	var files []string
	for _, pattern := range []string{"*.json", "*.txt"} {
		matches, _ := filepath.Glob(filepath.Join(puzzleDir, pattern))
		files = append(files, matches...)
	}
	if len(files) == 0 {
		fmt.Printf("No puzzle files found in %s\n", puzzleDir)
		os.Exit(1)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		a, err := analyzePuzzle(context.Background(), file)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		printAnalysis(os.Stdout, a)
	}
}

func analyzePuzzle(ctx context.Context, path string) (*Analysis, error) {
	puzzle, err := engine.LoadPuzzleFile(path)
	if err != nil {
		return nil, err
	}

	board, start, err := puzzle.Build()
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		File:    filepath.Base(path),
		Name:    puzzle.Name,
		Height:  puzzle.Height,
		Width:   puzzle.Width,
		Enemies: len(start.Enemies),
		Hazards: engine.CountCells(board, engine.Hazard),
		Threat:  engine.AnalyzeThreat(start),
	}
	_, a.NearestEnemy, _ = engine.NearestEnemy(start)

	if a.Ordered, err = search(ctx, start); err != nil {
		return nil, fmt.Errorf("ordered search: %w", err)
	}
	if a.Canonical, err = search(ctx, start, solver.WithCanonicalEnemies()); err != nil {
		return nil, fmt.Errorf("canonical search: %w", err)
	}
	return a, nil
}

func search(ctx context.Context, start *engine.GameState, opts ...solver.Option) (*solver.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	opts = append(opts, solver.WithMaxStates(solver.DefaultMaxStates))
	return solver.New(opts...).Solve(ctx, start)
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.Height, a.Width)
	fmt.Fprintf(w, "Enemies: %d\n", a.Enemies)
	fmt.Fprintf(w, "Hazards: %d\n", a.Hazards)
	fmt.Fprintf(w, "Nearest Enemy: %d cells (%s)\n", a.NearestEnemy, a.Threat)

	if !a.Ordered.Found {
		fmt.Fprintf(w, "⚠️  WARNING: no winning sequence (%d states explored)\n", a.Ordered.Discovered)
	} else {
		fmt.Fprintf(w, "✅ Solution: %s (%d moves)\n", a.Ordered, len(a.Ordered.Moves))
	}

	fmt.Fprintf(w, "Ordered keys:   expanded %d, discovered %d\n", a.Ordered.Expanded, a.Ordered.Discovered)
	fmt.Fprintf(w, "Canonical keys: expanded %d, discovered %d\n", a.Canonical.Expanded, a.Canonical.Discovered)

	if a.Ordered.Found != a.Canonical.Found || len(a.Ordered.Moves) != len(a.Canonical.Moves) {
		fmt.Fprintf(w, "⚠️  Key choice changes the result: ordered %s, canonical %s\n", a.Ordered, a.Canonical)
	}
}

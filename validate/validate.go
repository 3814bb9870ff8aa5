// Command validate checks the puzzle files in a directory (../puzzles by
// default). For every .json and .txt file it checks:
//   - JSON structure, or the text header and grid
//   - Grid dimensions and the symbols allowed at each position
//   - Exactly one goal (H), one player (P) and one or two enemies (E)
//   - Connectivity: the goal can be reached from the player's start, ignoring enemies
//   - Solvability: the solver finds a winning move sequence
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DariaMikhailovna/Wappo/game/engine"
	"github.com/DariaMikhailovna/Wappo/game/solver"
)

// solveTimeout bounds the solvability check for one file.
const solveTimeout = 30 * time.Second

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Solution string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// readPuzzle decodes a puzzle file without validating it.
func readPuzzle(path string, data []byte) (*engine.Puzzle, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var p engine.Puzzle
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("Invalid JSON: %v", err)
		}
		if p.Name == "" {
			p.Name = name
		}
		return &p, nil
	}

	p, err := engine.ParsePuzzleText(bytes.NewReader(data), name)
	if err != nil {
		return nil, fmt.Errorf("Invalid puzzle text: %v", err)
	}
	return p, nil
}

// validatePuzzle loads and validates a single puzzle file: structure first,
// then connectivity, then a full search for a winning sequence.
func validatePuzzle(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	puzzle, err := readPuzzle(filePath, data)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	if err := engine.ValidatePuzzle(puzzle); err != nil {
		result.fail("%v", err)
		return result
	}

	board, start, err := puzzle.Build()
	if err != nil {
		result.fail("%v", err)
		return result
	}

	if !goalReachable(puzzle.Layout, start.Player) {
		result.fail("Connectivity failure: goal unreachable from the player start at %v", start.Player)
		return result
	}

	ctx, cancel := context.WithTimeout(context.Background(), solveTimeout)
	defer cancel()

	res, err := solver.New(solver.WithMaxStates(solver.DefaultMaxStates)).Solve(ctx, start)
	switch {
	case err != nil:
		result.fail("Solvability unknown: %v", err)
		return result
	case !res.Found:
		result.fail("No winning move sequence (%d states explored)", res.Discovered)
		return result
	}
	result.Solution = res.String()

	result.info("Name: %s", puzzle.Name)
	result.info("Grid: %dx%d", puzzle.Height, puzzle.Width)
	result.info("Enemies: %d", len(start.Enemies))
	result.info("Hazards: %d", engine.CountCells(board, engine.Hazard))
	result.info("Connectivity: goal reachable from start")
	result.info("Shortest solution: %d moves (%s)", len(res.Moves), result.Solution)
	return result
}

// goalReachable flood-fills from the player over open passages, treating
// hazards as blocked and enemies as empty.
func goalReachable(layout []string, from engine.Position) bool {
	visited := map[engine.Position]bool{from: true}
	queue := []engine.Position{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, d := range engine.Directions {
			edge := current.Step(d, 1)
			switch layout[edge.R][edge.C] {
			case engine.Goal:
				return true
			case engine.Junction, engine.WallH, engine.WallV:
				continue
			}

			next := current.Step(d, 2)
			switch layout[next.R][next.C] {
			case engine.Goal:
				return true
			case engine.Hazard:
				continue
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// puzzleFiles lists the .json and .txt files in dir.
func puzzleFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.txt"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	return files, nil
}

// main validates every puzzle in the directory given as the first argument,
// printing a concise report and exiting with non-zero status if any are
// invalid.
func main() {
	puzzleDir := "../puzzles"
	if len(os.Args) > 1 {
		puzzleDir = os.Args[1]
	}

	files, err := puzzleFiles(puzzleDir)
	if err != nil {
		fmt.Printf("Error finding puzzle files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No puzzle files found in %s\n", puzzleDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validatePuzzle(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All puzzles are valid!")
	} else {
		fmt.Println("❌ Some puzzles have errors")
		os.Exit(1)
	}
}

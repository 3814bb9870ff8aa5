package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DariaMikhailovna/Wappo/game/engine"
)

const pincerJSON = `{
	"name": "Pincer",
	"description": "Two enemies below, exit on the left",
	"height": 3,
	"width": 3,
	"layout": [
		"+-+-+-+",
		"|  P  |",
		"+ +-+-+",
		"H |   |",
		"+ +-+ +",
		"|E E X|",
		"+-+-+-+"
	]
}`

func writePuzzle(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write puzzle: %v", err)
	}
	return path
}

func hasMessage(messages []string, substr string) bool {
	for _, m := range messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestValidatePuzzle(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		content   string
		wantValid bool
		wantMsg   string
	}{
		{
			name:      "valid json",
			file:      "pincer.json",
			content:   pincerJSON,
			wantValid: true,
			wantMsg:   "Shortest solution: 7 moves (RLRLLDL)",
		},
		{
			name:      "valid text",
			file:      "hazard.txt",
			content:   "1 4\n+H+-+-+-+\n|P   X E|\n+-+-+-+-+\n",
			wantValid: true,
			wantMsg:   "Hazards: 1",
		},
		{
			name:    "invalid json",
			file:    "bad.json",
			content: `{"name": "test", invalid json}`,
			wantMsg: "Invalid JSON",
		},
		{
			name:    "bad text header",
			file:    "bad.txt",
			content: "three by three\n",
			wantMsg: "Invalid puzzle text",
		},
		{
			name:    "invalid symbol",
			file:    "symbol.txt",
			content: "1 2\n+-+-+\n|P?EH\n+-+-+\n",
			wantMsg: "invalid symbol",
		},
		{
			name:    "missing goal",
			file:    "nogoal.txt",
			content: "1 2\n+-+-+\n|P E|\n+-+-+\n",
			wantMsg: "exactly one goal",
		},
		{
			name:    "goal walled off",
			file:    "boxed.txt",
			content: "1 3\n+-+-+-+\n|P|E H|\n+-+-+-+\n",
			wantMsg: "Connectivity failure",
		},
		{
			name:    "enemy in the outline",
			file:    "outline.txt",
			content: "1 3\n+-+-+-+\n|P X H|\n+-+-+E+\n",
			wantMsg: "invalid symbol",
		},
		{
			name:    "reachable but unwinnable",
			file:    "trapped.txt",
			content: "1 3\n+-+-+-+\n|P E H|\n+-+-+-+\n",
			wantMsg: "No winning move sequence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validatePuzzle(writePuzzle(t, tt.file, tt.content))

			if result.Valid != tt.wantValid {
				t.Errorf("Expected valid=%v, got %v: %v", tt.wantValid, result.Valid, result.Errors)
			}
			if result.File != tt.file {
				t.Errorf("Expected file %s, got %s", tt.file, result.File)
			}
			if !hasMessage(result.Errors, tt.wantMsg) {
				t.Errorf("Expected %q in %v", tt.wantMsg, result.Errors)
			}
		})
	}
}

func TestValidatePuzzle_MissingFile(t *testing.T) {
	result := validatePuzzle("/non/existent/file.json")
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !hasMessage(result.Errors, "Failed to read file") {
		t.Errorf("Expected 'Failed to read file' error, got %v", result.Errors)
	}
}

func TestValidatePuzzle_NameFromFile(t *testing.T) {
	content := strings.Replace(pincerJSON, `"name": "Pincer",`, "", 1)
	result := validatePuzzle(writePuzzle(t, "unnamed.json", content))
	if !result.Valid || !hasMessage(result.Errors, "Name: unnamed") {
		t.Errorf("Expected the file name to be used, got %v", result.Errors)
	}
}

func TestGoalReachable(t *testing.T) {
	tests := []struct {
		name   string
		layout []string
		want   bool
	}{
		{
			name:   "straight corridor",
			layout: []string{"+-+-+-+", "|P E H|", "+-+-+-+"},
			want:   true,
		},
		{
			name:   "goal in the outline",
			layout: []string{"+H+-+", "|P E|", "+-+-+"},
			want:   true,
		},
		{
			name:   "walled off",
			layout: []string{"+-+-+-+", "|P|E H|", "+-+-+-+"},
			want:   false,
		},
		{
			name:   "around a hazard",
			layout: []string{"+-+-+-+", "|P X H|", "+ +-+ +", "|E    |", "+-+-+-+"},
			want:   true,
		},
		{
			name:   "blocked by a hazard",
			layout: []string{"+-+-+-+", "|P X H|", "+-+-+-+"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := goalReachable(tt.layout, engine.Position{R: 1, C: 1}); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPuzzleFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.json", "b.txt", "notes.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := puzzleFiles(dir)
	if err != nil {
		t.Fatalf("puzzleFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("Expected 2 puzzle files, got %v", files)
	}
}

func TestShippedPuzzles(t *testing.T) {
	files, err := puzzleFiles(filepath.Join("..", "puzzles"))
	if err != nil {
		t.Fatalf("puzzleFiles failed: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("Expected puzzle files in ../puzzles")
	}

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			result := validatePuzzle(file)
			if !result.Valid {
				t.Errorf("Expected a valid puzzle, got %v", result.Errors)
			}
			if !hasMessage(result.Errors, "Shortest solution") {
				t.Errorf("Expected a solution, got %v", result.Errors)
			}
		})
	}
}

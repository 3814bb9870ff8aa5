package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/DariaMikhailovna/Wappo/game/engine"
	"github.com/DariaMikhailovna/Wappo/game/service"
)

var (
	ErrPuzzleNotFound = service.ErrPuzzleNotFound
	ErrInvalidPuzzle  = engine.ErrInvalidPuzzle
)

// extensions are tried in order when resolving a puzzle name.
var extensions = []string{".json", ".txt"}

// Manager handles puzzle loading and caching
type Manager struct {
	puzzleDir     string
	defaultPuzzle *engine.Puzzle
	puzzles       map[string]*engine.Puzzle
	mu            sync.RWMutex
}

// NewManager creates a new puzzle manager
func NewManager(puzzleDir string) (*Manager, error) {
	if _, err := os.Stat(puzzleDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("puzzle directory does not exist: %s", puzzleDir)
	}

	m := &Manager{
		puzzleDir: puzzleDir,
		puzzles:   make(map[string]*engine.Puzzle),
	}

	m.loadDefaultPuzzle()
	return m, nil
}

// LoadPuzzle loads a puzzle by name. A bare name is looked up as .json
// first, then .txt.
func (m *Manager) LoadPuzzle(name string) (*engine.Puzzle, error) {
	id := puzzleID(name)

	m.mu.RLock()
	// Check cache first
	if p, exists := m.puzzles[id]; exists {
		m.mu.RUnlock()
		return p, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if p, exists := m.puzzles[id]; exists {
		return p, nil
	}

	path, err := m.resolve(name)
	if err != nil {
		return nil, err
	}

	p, err := engine.LoadPuzzleFile(path)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidPuzzle) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load puzzle '%s': %w", name, err)
	}

	m.puzzles[id] = p
	return p, nil
}

// resolve finds the file backing a puzzle name.
func (m *Manager) resolve(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: '%s'", ErrPuzzleNotFound, name)
	}

	candidates := []string{name}
	if !slices.Contains(extensions, filepath.Ext(name)) {
		candidates = candidates[:0]
		for _, ext := range extensions {
			candidates = append(candidates, name+ext)
		}
	}

	for _, c := range candidates {
		path := filepath.Join(m.puzzleDir, c)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: '%s'", ErrPuzzleNotFound, name)
}

// ListPuzzles returns information about all available, valid puzzles.
// When a name exists as both .json and .txt, the .json file wins.
func (m *Manager) ListPuzzles() ([]*service.PuzzleInfo, error) {
	entries, err := os.ReadDir(m.puzzleDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read puzzle directory: %w", err)
	}

	var puzzles []*service.PuzzleInfo
	seen := make(map[string]bool)

	for _, ext := range extensions {
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ext {
				continue
			}

			id := puzzleID(entry.Name())
			if seen[id] {
				continue
			}

			p, err := m.LoadPuzzle(id)
			if err != nil {
				// Skip invalid puzzles
				continue
			}
			seen[id] = true

			puzzles = append(puzzles, newPuzzleInfo(entry.Name(), id, p))
		}
	}

	slices.SortFunc(puzzles, func(a, b *service.PuzzleInfo) int {
		return strings.Compare(a.PuzzleID, b.PuzzleID)
	})
	return puzzles, nil
}

func newPuzzleInfo(filename, id string, p *engine.Puzzle) *service.PuzzleInfo {
	info := &service.PuzzleInfo{
		Filename:    filename,
		PuzzleID:    id,
		Name:        p.Name,
		Description: p.Description,
		Height:      p.Height,
		Width:       p.Width,
	}
	if board, state, err := p.Build(); err == nil {
		info.Enemies = len(state.Enemies)
		info.Hazards = engine.CountCells(board, engine.Hazard)
	}
	return info
}

// GetDefault returns the default puzzle
func (m *Manager) GetDefault() *engine.Puzzle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultPuzzle
}

// SetDefault sets the default puzzle by name
func (m *Manager) SetDefault(name string) error {
	p, err := m.LoadPuzzle(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultPuzzle = p
	return nil
}

// RefreshCache drops all cached puzzles and reloads the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.puzzles = make(map[string]*engine.Puzzle)
	m.mu.Unlock()

	m.loadDefaultPuzzle()
}

// loadDefaultPuzzle picks classic, else the first valid puzzle, else the
// built-in corridor.
func (m *Manager) loadDefaultPuzzle() {
	p, err := m.LoadPuzzle("classic")
	if err != nil {
		puzzles, listErr := m.ListPuzzles()
		if listErr != nil || len(puzzles) == 0 {
			p = engine.DefaultPuzzle()
		} else if p, err = m.LoadPuzzle(puzzles[0].PuzzleID); err != nil {
			p = engine.DefaultPuzzle()
		}
	}

	m.mu.Lock()
	m.defaultPuzzle = p
	m.mu.Unlock()
}

// SavePuzzle validates a puzzle and writes it to disk: as indented JSON, or
// in the plain text format when name ends in .txt.
func (m *Manager) SavePuzzle(name string, p *engine.Puzzle) error {
	if err := engine.ValidatePuzzle(p); err != nil {
		return err
	}
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: bad puzzle name '%s'", ErrInvalidPuzzle, name)
	}

	id := puzzleID(name)
	ext := ".json"
	if strings.EqualFold(filepath.Ext(name), ".txt") {
		ext = ".txt"
	}

	var buf bytes.Buffer
	if ext == ".txt" {
		if err := engine.FormatPuzzleText(&buf, p); err != nil {
			return fmt.Errorf("failed to format puzzle: %w", err)
		}
		// The text format carries no name or description.
		p = &engine.Puzzle{Name: id, Height: p.Height, Width: p.Width, Layout: p.Layout}
	} else {
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal puzzle: %w", err)
		}
		buf.Write(data)
	}

	if err := os.WriteFile(filepath.Join(m.puzzleDir, id+ext), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write puzzle file: %w", err)
	}

	// Drop a copy in the other format so the saved one is what loads.
	for _, other := range extensions {
		if other == ext {
			continue
		}
		if err := os.Remove(filepath.Join(m.puzzleDir, id+other)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to replace puzzle file: %w", err)
		}
	}

	m.mu.Lock()
	m.puzzles[id] = p
	m.mu.Unlock()

	return nil
}

// puzzleID strips a known extension from a file or puzzle name.
func puzzleID(name string) string {
	ext := filepath.Ext(name)
	if slices.Contains(extensions, ext) {
		return strings.TrimSuffix(name, ext)
	}
	return name
}

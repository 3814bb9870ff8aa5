// Package config provides puzzle management for the Wappo game server.
//
// The config package handles:
//   - Loading puzzles from JSON files or the plain text grid format
//   - Puzzle validation before use and before saving
//   - Default puzzle management
//   - Puzzle discovery and listing
//
// Puzzle Format:
//
// Puzzles are stored in a directory, one per file. JSON files hold an
// engine.Puzzle; .txt files hold a "H W" header followed by the 2H+1 grid
// rows. When both exist for the same name, the JSON file is used.
//
// Usage:
//
//	manager, err := config.NewManager("puzzles")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific puzzle
//	puzzle, err := manager.LoadPuzzle("classic")
//
//	// List available puzzles
//	puzzles, err := manager.ListPuzzles()
//
// The default puzzle is "classic" when present, otherwise the first valid
// puzzle in the directory, otherwise the built-in corridor.
package config

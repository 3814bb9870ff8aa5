// Package engine provides the core game logic for the Wappo chase puzzle.
//
// The engine package implements the game mechanics including:
//   - Maze boards in doubled coordinates (cells at odd/odd, walls between)
//   - Player movement, goal and hazard detection
//   - Enemy pursuit in sub-steps, merging into big enemies and cooldowns
//   - Canonical state keys for search deduplication
//   - Puzzle loading and validation
//
// Core Types:
//
// A Puzzle is the serialisable definition of a maze. Building it yields an
// immutable Board and the initial GameState. GameState.Move is the single
// transition function; Clone gives an independent copy for search.
// GameEngine wraps a state with reset and move history for interactive use.
//
// Usage:
//
//	puzzle, err := engine.LoadPuzzleFile("puzzles/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(puzzle)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Move the player
//	moved := gameEngine.Move("right")
//	state := gameEngine.GetState()
//
// Game Rules:
//
// The player moves one cell per turn toward the goal, an opening in the
// outer wall. After each player move every enemy takes two greedy steps
// toward the player (three once two enemies have merged into a big one).
// Stepping on a hazard (X) kills the player but only stuns a regular enemy
// for several turns. The game is lost when an enemy reaches the player.
package engine

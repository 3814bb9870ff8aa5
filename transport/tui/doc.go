// Package tui plays a puzzle in the terminal using bubbletea.
//
// Arrow keys or u/d/l/r move the player, x restarts the puzzle, ? asks the
// solver for the next move and q quits.
package tui

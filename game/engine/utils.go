package engine

// CountCells counts the play cells of board holding the given symbol
func CountCells(board *Board, symbol byte) int {
	count := 0
	for r := 1; r < 2*board.height+1; r += 2 {
		for c := 1; c < 2*board.width+1; c += 2 {
			if board.grid[r][c] == symbol {
				count++
			}
		}
	}
	return count
}

// ManhattanDistance calculates the distance in cells between two positions
func ManhattanDistance(from, to Position) int {
	dr := from.R - to.R
	if dr < 0 {
		dr = -dr
	}
	dc := from.C - to.C
	if dc < 0 {
		dc = -dc
	}
	return (dr + dc) / 2
}

// NearestEnemy returns the enemy closest to the player and its distance in cells
func NearestEnemy(state *GameState) (Enemy, int, bool) {
	minDistance := -1
	var nearest Enemy

	for _, e := range state.Enemies {
		distance := ManhattanDistance(state.Player, e.Pos)
		if minDistance == -1 || distance < minDistance {
			minDistance = distance
			nearest = e
		}
	}

	return nearest, minDistance, minDistance >= 0
}

// AnalyzeThreat assesses how close the pursuit is. An active enemy covers
// two cells per turn, a big one three.
func AnalyzeThreat(state *GameState) string {
	switch state.WinState {
	case Win:
		return "ESCAPED: Goal reached"
	case Lose:
		return "CAUGHT: Game over"
	}

	enemy, distance, found := NearestEnemy(state)
	if !found {
		return "SAFE: No enemies"
	}

	reach := EnemySubSteps - 1
	if enemy.Big {
		reach = EnemySubSteps
	}

	if enemy.Cooldown > 0 {
		return "STUNNED: Nearest enemy is waiting"
	} else if distance <= reach+1 {
		return "DANGER: Enemy can reach you next turn"
	} else if distance <= 2*reach {
		return "CAUTION: Enemy closing in"
	}

	return "SAFE: Enemies far away"
}

package engine

// Move applies one player move followed by the enemies' response and
// reports whether a turn was taken. Terminal states and moves into a wall
// leave the state untouched and return false.
func (s *GameState) Move(d Direction) bool {
	if s.IsTerminal() {
		return false
	}
	if !s.movePlayer(d) {
		return false
	}
	if s.IsTerminal() {
		return true
	}
	s.moveEnemies()
	return true
}

// CanMove reports whether moving in d would take a turn.
func (s *GameState) CanMove(d Direction) bool {
	return !s.IsTerminal() && !isWall(s.board.outline(s.Player, d))
}

// movePlayer returns false when a wall blocks the move.
func (s *GameState) movePlayer(d Direction) bool {
	outline := s.board.outline(s.Player, d)
	if isWall(outline) {
		return false
	}
	if outline == Goal {
		s.WinState = Win
		return true
	}

	s.Player = s.Player.Step(d, 2)
	switch s.board.At(s.Player) {
	case Goal:
		s.WinState = Win
	case Hazard:
		s.WinState = Lose
	default:
		if s.caughtByEnemy() {
			s.WinState = Lose
		}
	}
	return true
}

// moveEnemies runs the enemy sub-steps of a turn. Regular enemies move on
// the first two sub-steps, big enemies on all three.
func (s *GameState) moveEnemies() {
	for step := 0; step < EnemySubSteps; step++ {
		for i := range s.Enemies {
			e := &s.Enemies[i]
			if e.Cooldown > 0 {
				continue
			}
			if step == EnemySubSteps-1 && !e.Big {
				continue
			}
			s.stepEnemy(e)
		}
		if s.caughtByEnemy() {
			s.WinState = Lose
			return
		}
		s.mergeEnemies()
	}

	for i := range s.Enemies {
		if s.Enemies[i].Cooldown > 0 {
			s.Enemies[i].Cooldown--
		}
	}
}

// stepEnemy moves e one cell toward the player: the first direction, in
// enumeration order, that closes the distance along its axis and is not
// walled off. The enemy stays put when there is none.
func (s *GameState) stepEnemy(e *Enemy) {
	toR, toC := s.Player.R-e.Pos.R, s.Player.C-e.Pos.C
	for _, d := range Directions {
		dr, dc := d.Delta()
		if toR*dr+toC*dc <= 0 {
			continue
		}
		if isWall(s.board.outline(e.Pos, d)) {
			continue
		}
		e.Pos = e.Pos.Step(d, 2)
		if !e.Big && s.board.At(e.Pos) == Hazard {
			e.Cooldown = HazardCooldown
		}
		return
	}
}

// mergeEnemies collapses enemies sharing a cell into the first of them,
// which becomes big and sits out the rest of the turn.
func (s *GameState) mergeEnemies() {
	merged := make([]Enemy, 0, len(s.Enemies))
next:
	for _, e := range s.Enemies {
		for i := range merged {
			if merged[i].Pos == e.Pos {
				merged[i].Big = true
				merged[i].Cooldown = MergeCooldown
				continue next
			}
		}
		merged = append(merged, e)
	}
	s.Enemies = merged
}

func (s *GameState) caughtByEnemy() bool {
	for _, e := range s.Enemies {
		if e.Pos == s.Player {
			return true
		}
	}
	return false
}

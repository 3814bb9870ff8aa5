package main

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/DariaMikhailovna/Wappo/game/engine"
	"github.com/DariaMikhailovna/Wappo/game/solver"
)

// Strategy picks the next move for a state mirrored onto the local board.
// It returns false when it has nothing to offer.
type Strategy interface {
	Name() string
	NextMove(ctx context.Context, state *engine.GameState) (engine.Direction, bool)
	Reset()
}

// mirror rebuilds a state received from the server on the local board so it
// can be simulated.
func mirror(board *engine.Board, remote *engine.GameState) *engine.GameState {
	s := engine.NewGameState(board, remote.Player, remote.Enemies...)
	s.WinState = remote.WinState
	return s
}

// PlanStrategy follows a shortest winning sequence and replans whenever the
// game leaves the expected line.
type PlanStrategy struct {
	solver *solver.Solver
	plan   []engine.Direction
	expect engine.Key
	replan int
}

func NewPlanStrategy(s *solver.Solver) *PlanStrategy {
	return &PlanStrategy{solver: s}
}

func (p *PlanStrategy) Name() string { return "plan" }

func (p *PlanStrategy) Reset() {
	p.plan = nil
	p.replan = 0
}

// Replans reports how many searches the strategy has run since the last Reset.
func (p *PlanStrategy) Replans() int { return p.replan }

func (p *PlanStrategy) NextMove(ctx context.Context, state *engine.GameState) (engine.Direction, bool) {
	if len(p.plan) == 0 || state.Key() != p.expect {
		res, err := p.solver.Solve(ctx, state)
		p.replan++
		if err != nil || !res.Found || len(res.Moves) == 0 {
			p.plan = nil
			return 0, false
		}
		p.plan = res.Moves
		p.expect = state.Key()
	}

	d := p.plan[0]
	p.plan = p.plan[1:]

	next, _ := solver.Replay(state, []engine.Direction{d})
	p.expect = next.Key()
	return d, true
}

// GreedyStrategy looks one turn ahead: it never walks into a loss, keeps
// away from active enemies and otherwise heads for the goal. Ties are broken
// at random, so repeated attempts explore different lines.
type GreedyStrategy struct {
	rng *rand.Rand
}

func NewGreedyStrategy(seed uint64) *GreedyStrategy {
	return &GreedyStrategy{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (g *GreedyStrategy) Name() string { return "greedy" }

func (g *GreedyStrategy) Reset() {}

func (g *GreedyStrategy) NextMove(ctx context.Context, state *engine.GameState) (engine.Direction, bool) {
	dirs := engine.Directions
	g.rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })

	best, bestScore, found := engine.Left, math.Inf(-1), false
	for _, d := range dirs {
		next := state.Clone()
		if !next.Move(d) {
			continue
		}
		if score := scoreState(next); !found || score > bestScore {
			best, bestScore, found = d, score, true
		}
	}
	return best, found
}

// scoreState rates a position after one turn.
func scoreState(s *engine.GameState) float64 {
	switch s.WinState {
	case engine.Win:
		return math.Inf(1)
	case engine.Lose:
		return math.Inf(-1)
	}

	score := -float64(engine.ManhattanDistance(s.Player, s.Board().Goal()))
	for _, e := range s.Enemies {
		if e.Cooldown > 0 {
			continue
		}
		d := float64(engine.ManhattanDistance(s.Player, e.Pos))
		// Closer than one enemy turn is what matters
		score += 3 * math.Min(d, float64(engine.EnemySubSteps))
	}
	return score
}

package solver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/DariaMikhailovna/Wappo/game/engine"
)

// ErrStateLimit is returned when the search discovers more distinct states
// than the configured limit.
var ErrStateLimit = errors.New("state limit exceeded")

// DefaultMaxStates is the state budget used by the server and the player's
// hint search.
const DefaultMaxStates = 2_000_000

// Result describes the outcome of a search.
type Result struct {
	Moves      []engine.Direction `json:"moves"`
	Found      bool               `json:"found"`
	Expanded   int                `json:"expanded"`
	Discovered int                `json:"discovered"`
	Duration   time.Duration      `json:"duration"`
}

// String renders the path as direction letters, e.g. "RRU".
func (r *Result) String() string {
	if !r.Found {
		return "no solution"
	}
	return engine.FormatDirections(r.Moves)
}

// Option configures a Solver.
type Option func(*Solver)

// WithCanonicalEnemies deduplicates states that differ only in enemy order.
func WithCanonicalEnemies() Option {
	return func(s *Solver) { s.canonical = true }
}

// WithMaxStates aborts the search with ErrStateLimit once more than n
// distinct states were discovered. Zero means no limit. The aborted search
// still returns its Result, with Found false, for the statistics.
func WithMaxStates(n int) Option {
	return func(s *Solver) { s.maxStates = n }
}

// WithLogger sets the logger used for progress output.
func WithLogger(l *log.Logger) Option {
	return func(s *Solver) { s.logger = l }
}

// WithProgressEvery logs progress every n expansions. It has no effect
// without a logger.
func WithProgressEvery(n int) Option {
	return func(s *Solver) { s.progressEvery = n }
}

// Solver finds shortest winning move sequences by breadth-first search.
// A Solver holds only configuration and is safe for concurrent use.
type Solver struct {
	canonical     bool
	maxStates     int
	logger        *log.Logger
	progressEvery int
}

// New creates a solver with the given options.
func New(opts ...Option) *Solver {
	s := &Solver{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type node struct {
	state  *engine.GameState
	parent int
	dir    engine.Direction
}

// Solve searches from start, which is never mutated. A start that is already
// won yields an empty path. When no winning sequence exists Found is false
// and the error is nil.
func (s *Solver) Solve(ctx context.Context, start *engine.GameState) (*Result, error) {
	began := time.Now()
	res := &Result{}
	defer func() { res.Duration = time.Since(began) }()

	switch start.WinState {
	case engine.Win:
		res.Found = true
		res.Moves = []engine.Direction{}
		return res, nil
	case engine.Lose:
		return res, nil
	}

	nodes := []node{{state: start.Clone(), parent: -1}}
	seen := map[engine.Key]int{s.key(start): 0}

	for head := 0; head < len(nodes); head++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Expanded++
		if s.logger != nil && s.progressEvery > 0 && res.Expanded%s.progressEvery == 0 {
			s.logger.Printf("[SOLVE] expanded %d, discovered %d, frontier %d", res.Expanded, len(nodes), len(nodes)-head-1)
		}

		current := nodes[head].state
		for _, d := range engine.Directions {
			next := current.Clone()
			if !next.Move(d) {
				continue
			}
			k := s.key(next)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = len(nodes)
			nodes = append(nodes, node{state: next, parent: head, dir: d})

			if next.WinState == engine.Win {
				res.Found = true
				res.Moves = path(nodes, len(nodes)-1)
				res.Discovered = len(nodes)
				return res, nil
			}
			if s.maxStates > 0 && len(nodes) > s.maxStates {
				res.Discovered = len(nodes)
				return res, fmt.Errorf("%w: more than %d states", ErrStateLimit, s.maxStates)
			}
		}
		// Release the state; only the tree links are needed from here on.
		nodes[head].state = nil
	}

	res.Discovered = len(nodes)
	return res, nil
}

func (s *Solver) key(state *engine.GameState) engine.Key {
	if s.canonical {
		return state.CanonicalKey()
	}
	return state.Key()
}

func path(nodes []node, i int) []engine.Direction {
	var moves []engine.Direction
	for ; nodes[i].parent >= 0; i = nodes[i].parent {
		moves = append(moves, nodes[i].dir)
	}
	slices.Reverse(moves)
	return moves
}

// Replay applies moves to a clone of start and returns the resulting state.
// It stops at the first move that does not take a turn and reports its index.
func Replay(start *engine.GameState, moves []engine.Direction) (*engine.GameState, int) {
	state := start.Clone()
	for i, d := range moves {
		if !state.Move(d) {
			return state, i
		}
	}
	return state, -1
}

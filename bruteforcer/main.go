package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/DariaMikhailovna/Wappo/game/engine"
	"github.com/DariaMikhailovna/Wappo/game/solver"
)

// attempt is the outcome of one playthrough from the starting position.
type attempt struct {
	Moves      []engine.Direction
	Final      *engine.GameState
	Mismatches int
	Stuck      bool
}

type player struct {
	client   *Client
	board    *engine.Board
	strategy Strategy
	maxMoves int
	delay    time.Duration
	verbose  bool
}

// play drives the session from its current state until the game ends, the
// strategy gives up or maxMoves is reached. Every server reply is compared
// with the locally simulated turn.
func (p *player) play(ctx context.Context, start *engine.GameState) (*attempt, error) {
	p.strategy.Reset()
	state := mirror(p.board, start)
	out := &attempt{Final: state}

	for !state.IsTerminal() && len(out.Moves) < p.maxMoves {
		d, ok := p.strategy.NextMove(ctx, state)
		if !ok {
			out.Stuck = true
			break
		}

		predicted, _ := solver.Replay(state, []engine.Direction{d})

		result, err := p.client.Move(ctx, d)
		if err != nil {
			return out, err
		}
		if result.GameState == nil {
			return out, fmt.Errorf("move %s: no game state in response", d)
		}

		next := mirror(p.board, result.GameState)
		if next.Key() != predicted.Key() {
			out.Mismatches++
			log.Printf("⚠️  Move %d (%s): server %v, local %v", len(out.Moves)+1, d, next.Key(), predicted.Key())
		}
		if result.Success {
			out.Moves = append(out.Moves, d)
		}
		if p.verbose {
			log.Printf("%3d. %-5s player %v threat %s", len(out.Moves), d, next.Player, result.Threat)
		}

		state = next
		out.Final = state

		if p.delay > 0 {
			time.Sleep(p.delay)
		}
	}
	return out, nil
}

func newStrategy(name string, seed uint64) (Strategy, error) {
	switch name {
	case "plan":
		return NewPlanStrategy(solver.New(solver.WithMaxStates(solver.DefaultMaxStates))), nil
	case "greedy":
		return NewGreedyStrategy(seed), nil
	}
	return nil, fmt.Errorf("unknown strategy %q (want plan or greedy)", name)
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	puzzleID := flag.String("puzzle", "", "Puzzle ID (server default when empty)")
	strategyName := flag.String("strategy", "plan", "Move strategy: plan or greedy")
	maxMoves := flag.Int("max-moves", 200, "Maximum moves per attempt")
	maxAttempts := flag.Int("max-attempts", 20, "Maximum attempts before giving up")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between moves in milliseconds (0 = no delay)")
	flag.Parse()

	strategy, err := newStrategy(*strategyName, uint64(time.Now().UnixNano()))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	log.Printf("Connecting to game server at %s", *serverURL)
	client := NewClient(*serverURL)

	session, err := client.CreateSession(ctx, *puzzleID)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	if session.Puzzle == nil {
		log.Fatalf("Session %s did not include its puzzle", session.ID)
	}
	board, _, err := session.Puzzle.Build()
	if err != nil {
		log.Fatalf("Failed to build puzzle %s: %v", session.PuzzleID, err)
	}
	log.Printf("✨ Session created: %s (puzzle %s, %dx%d, strategy %s)",
		session.ID, session.PuzzleID, board.Height(), board.Width(), strategy.Name())

	p := &player{
		client:   client,
		board:    board,
		strategy: strategy,
		maxMoves: *maxMoves,
		delay:    time.Duration(*delayMs) * time.Millisecond,
		verbose:  *verbose,
	}

	state := session.GameState
	for attemptNum := 1; attemptNum <= *maxAttempts; attemptNum++ {
		if attemptNum > 1 {
			if state, err = client.Reset(ctx); err != nil {
				log.Fatalf("Failed to reset: %v", err)
			}
		}

		log.Printf("\n=== 🎮 Attempt %d/%d ===", attemptNum, *maxAttempts)
		a, err := p.play(ctx, state)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			log.Printf("Attempt %d aborted: %v", attemptNum, err)
			continue
		}

		log.Printf("Attempt %d: Moves=%d (%s), Result=%s, Mismatches=%d",
			attemptNum, len(a.Moves), engine.FormatDirections(a.Moves), a.Final.WinState, a.Mismatches)
		if a.Stuck {
			log.Printf("⚠️  Strategy found no move from %v", a.Final.Player)
		}

		if a.Final.WinState == engine.Win {
			log.Printf("\n🎉 VICTORY! Escaped in attempt %d with %d moves!", attemptNum, len(a.Moves))
			log.Printf("Session: %s", client.sessionID)
			os.Exit(0)
		}
	}

	log.Printf("\n❌ Failed to win after %d attempts", *maxAttempts)
	log.Printf("Session: %s", client.sessionID)
	os.Exit(1)
}

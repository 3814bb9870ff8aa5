// Package solver finds the shortest winning move sequence for a Wappo
// position using breadth-first search over engine states.
//
// States are deduplicated by engine.Key; WithCanonicalEnemies switches to
// engine.CanonicalKey so that positions differing only in enemy order are
// visited once. Search is bounded by the caller's context and, optionally,
// by WithMaxStates.
package solver

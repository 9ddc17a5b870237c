package puzzle

import (
	"time"
)

/*

Pips puzzle solver

The solver is a depth-first backtracking search over tile
placements.  At every step it works on the lexicographically
first empty cell, called the anchor:

1. If the board is complete, the puzzle is solved.  (A board
with no playable cells at all is trivially solved.)

2. Otherwise pick the anchor and consider its two forward
neighbors, right first and then down.  Backward neighbors are
never considered: any tile covering the anchor and the cell to
its left or above would have been tried earlier in the search
from that other cell, when *it* was the anchor.  This is what
guarantees every unordered cell pair is examined exactly once
across the whole tree, making the search a correct, terminating
walk over all perfect matchings of the board's adjacency graph.

3. For each unoccupied, playable neighbor, try every unused tile
type in inventory order, in both pip orientations.  A placement
that any region rejects is undone immediately by the board, so
only placements that survive the full region check produce a
recursive call.

4. If the recursive call solves the rest of the board, stop and
report success.  If not, undo the placement, release the tile,
and move on to the next orientation, tile, or neighbor.

5. When every combination at the anchor fails, report failure so
the caller can backtrack further.

Each successful step fills two cells, so the recursion depth is
bounded by half the cell count.  The search is exponential in the
worst case; the only pruning is the per-placement region check.

*/

// A Solver runs the backtracking search against one board.  The
// solver owns its board exclusively for the duration of a Solve
// call: the board is mutated in place across recursive frames
// with an undo-on-backtrack discipline that depends on strict
// call nesting.  Sharing a board between solvers, or calling
// Solve concurrently, is unsafe by design.
type Solver struct {
	board    *Board
	tiles    []Tile
	used     map[Tile]bool
	deadline time.Time
	aborted  bool
	ran      bool
	solved   bool
}

// NewSolver makes a solver for the given board.  The tile
// inventory comes from the board; each unordered pip pair in it
// can be consumed at most once.
func NewSolver(board *Board) *Solver {
	return &Solver{
		board: board,
		tiles: board.Tiles(),
		used:  make(map[Tile]bool),
	}
}

// SetDeadline gives the search a wall-clock cutoff.  The search
// has no suspension points of its own, so a caller that needs
// bounded run time must set this before calling Solve.  The zero
// time means no cutoff.
func (s *Solver) SetDeadline(deadline time.Time) {
	s.deadline = deadline
}

// Aborted reports whether the last Solve call gave up because it
// hit the deadline rather than exhausting the search space.  A
// false return from Solve only means "unsatisfiable" when
// Aborted is also false.
func (s *Solver) Aborted() bool {
	return s.aborted
}

// Solve searches for a covering assignment, mutating the board
// in place.  It returns true as soon as the first solution is
// found, leaving the board complete; it returns false when the
// search space is exhausted (or the deadline hit), leaving the
// board exactly as it was.  Failure is an ordinary outcome, not
// an error: malformed inputs are the loading layer's problem and
// never reach this code.
func (s *Solver) Solve() bool {
	s.aborted = false
	s.solved = s.solve()
	s.ran = true
	return s.solved
}

func (s *Solver) solve() bool {
	if s.board.IsComplete() {
		return true
	}
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		s.aborted = true
		return false
	}

	anchor := s.board.EmptyPositions()[0]
	for _, neighbor := range []Position{anchor.Right(), anchor.Down()} {
		if !s.board.IsValidPosition(neighbor) || s.board.IsOccupied(neighbor) {
			continue
		}
		for _, tile := range s.tiles {
			if s.used[tile] {
				continue
			}
			for _, dots := range [2][2]int{{tile.Low, tile.High}, {tile.High, tile.Low}} {
				d := Domino{Pos1: anchor, Pos2: neighbor, Dots1: dots[0], Dots2: dots[1]}
				if !s.board.Place(d) {
					continue
				}
				s.used[tile] = true
				if s.solve() {
					return true
				}
				delete(s.used, tile)
				s.board.Remove(d)
				if s.aborted {
					return false
				}
			}
		}
	}
	return false
}

// Solution returns a copy of the placements in discovery order,
// running Solve first if it hasn't been run yet.  The outcome of
// the last Solve is remembered, so calling Solution after an
// exhausted or aborted search reports the failure without paying
// for the search again.  A nil slice with a false second return
// means no solution exists (or the deadline hit); it is not an
// error.
func (s *Solver) Solution() ([]Domino, bool) {
	if !s.ran {
		s.Solve()
	}
	if !s.solved {
		return nil, false
	}
	return s.board.Placed(), true
}

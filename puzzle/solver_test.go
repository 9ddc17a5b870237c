package puzzle

import (
	"sort"
	"testing"
	"time"
)

// checkSolution verifies that the solver's output is a legal full
// cover of the board: every playable cell filled exactly once, every
// placed pair edge-adjacent, every region satisfied, and no physical
// tile used twice.
func checkSolution(t *testing.T, b *Board) {
	t.Helper()
	placed := b.Placed()
	covered := make(map[Position]int)
	used := make(map[Tile]int)
	for _, d := range placed {
		dr := d.Pos2.Row - d.Pos1.Row
		dc := d.Pos2.Col - d.Pos1.Col
		if dr*dr+dc*dc != 1 {
			t.Errorf("placement %v is not edge-adjacent", d)
		}
		covered[d.Pos1]++
		covered[d.Pos2]++
		used[d.Tile()]++
	}
	for _, pos := range b.Positions() {
		if covered[pos] != 1 {
			t.Errorf("cell %v covered %d times", pos, covered[pos])
		}
	}
	if len(covered) != len(b.Positions()) {
		t.Errorf("%d cells covered, board has %d", len(covered), len(b.Positions()))
	}
	for tile, n := range used {
		if n > 1 {
			t.Errorf("tile %v used %d times", tile, n)
		}
	}
	for _, region := range b.Regions() {
		if !region.Validate(b.State()) {
			t.Errorf("region %v unsatisfied in solution", region.Constraint)
		}
	}
}

func TestSolveEmptyBoard(t *testing.T) {
	b := NewBoard(nil, nil, nil)
	s := NewSolver(b)
	if !s.Solve() {
		t.Fatalf("empty board reported unsolvable")
	}
	if placed, ok := s.Solution(); !ok || len(placed) != 0 {
		t.Errorf("empty board solution is %v, %v", placed, ok)
	}
}

func TestSolveTwoCellEqual(t *testing.T) {
	regions := []Region{{
		Positions:  []Position{{0, 0}, {0, 1}},
		Constraint: EqualConstraint{},
	}}
	b := NewBoard(rectPositions(1, 2), regions, nil)
	s := NewSolver(b)
	if !s.Solve() {
		t.Fatalf("two-cell equal board reported unsolvable")
	}
	placed, _ := s.Solution()
	if len(placed) != 1 {
		t.Fatalf("solution has %d placements (expected 1)", len(placed))
	}
	if placed[0].Dots1 != placed[0].Dots2 {
		t.Errorf("equal cage solved with %v", placed[0])
	}
	checkSolution(t, b)
}

func TestSolveInsufficientInventory(t *testing.T) {
	// four cells but only one tile to place
	b := NewBoard(rectPositions(1, 4), nil, []Tile{{0, 1}})
	s := NewSolver(b)
	if s.Solve() {
		t.Fatalf("board with short inventory reported solvable")
	}
	if len(b.Placed()) != 0 {
		t.Errorf("failed search left %d placements on the board", len(b.Placed()))
	}
	if _, ok := s.Solution(); ok {
		t.Errorf("Solution reports ok on unsolvable board")
	}
}

func TestSolveDuplicateInventoryStillSingleUse(t *testing.T) {
	// listing the same tile twice does not make two copies
	// available: a tile type is consumed at most once
	b := NewBoard(rectPositions(1, 4), nil, []Tile{{2, 3}, {2, 3}})
	if NewSolver(b).Solve() {
		t.Fatalf("duplicate inventory entries treated as separate tiles")
	}
}

func TestSolveDisconnectedIslands(t *testing.T) {
	positions := []Position{
		{0, 0}, {0, 1},
		{3, 5}, {4, 5},
	}
	b := NewBoard(positions, nil, nil)
	s := NewSolver(b)
	if !s.Solve() {
		t.Fatalf("disconnected board reported unsolvable")
	}
	placed, _ := s.Solution()
	if len(placed) != 2 {
		t.Fatalf("solution has %d placements (expected 2)", len(placed))
	}
	checkSolution(t, b)
}

func TestSolveSumCages(t *testing.T) {
	regions := []Region{
		{
			Positions:  []Position{{0, 0}, {0, 1}},
			Constraint: SumConstraint{11},
		},
		{
			Positions:  []Position{{1, 0}, {1, 1}},
			Constraint: SumConstraint{1},
		},
	}
	b := NewBoard(rectPositions(2, 2), regions, nil)
	s := NewSolver(b)
	if !s.Solve() {
		t.Fatalf("sum-cage board reported unsolvable")
	}
	checkSolution(t, b)
	sums := []int{0, 0}
	for pos, v := range b.State() {
		sums[pos.Row] += v
	}
	if sums[0] != 11 || sums[1] != 1 {
		t.Errorf("cage sums are %v (expected [11 1])", sums)
	}
}

func TestSolveThresholdCages(t *testing.T) {
	regions := []Region{
		{
			Positions:  []Position{{0, 0}, {1, 0}},
			Constraint: GreaterThanConstraint{10},
		},
		{
			Positions:  []Position{{0, 1}, {1, 1}},
			Constraint: LessThanConstraint{2},
		},
	}
	b := NewBoard(rectPositions(2, 2), regions, nil)
	s := NewSolver(b)
	if !s.Solve() {
		t.Fatalf("threshold board reported unsolvable")
	}
	checkSolution(t, b)
	left, right := 0, 0
	for pos, v := range b.State() {
		if pos.Col == 0 {
			left += v
		} else {
			right += v
		}
	}
	if left <= 10 {
		t.Errorf("greater-than cage sums to %d", left)
	}
	if right >= 2 {
		t.Errorf("less-than cage sums to %d", right)
	}
}

func TestSolveNotEqualCage(t *testing.T) {
	regions := []Region{{
		Positions:  []Position{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		Constraint: NotEqualConstraint{},
	}}
	b := NewBoard(rectPositions(2, 2), regions, nil)
	s := NewSolver(b)
	if !s.Solve() {
		t.Fatalf("not-equal board reported unsolvable")
	}
	checkSolution(t, b)
	seen := make(map[int]bool)
	for _, v := range b.State() {
		if seen[v] {
			t.Fatalf("not-equal cage holds duplicate pip %d in %v", v, b.State())
		}
		seen[v] = true
	}
}

func TestSolveUnsatisfiableConstraint(t *testing.T) {
	regions := []Region{{
		Positions:  []Position{{0, 0}, {0, 1}},
		Constraint: SumConstraint{13}, // max pair is a single tile's 6+6
	}}
	b := NewBoard(rectPositions(1, 2), regions, []Tile{{5, 6}, {6, 6}})
	s := NewSolver(b)
	// {6,6} sums to 12, {5,6} to 11; 13 is out of reach
	if s.Solve() {
		t.Fatalf("unsatisfiable sum reported solvable")
	}
	if len(b.Placed()) != 0 {
		t.Errorf("failed search left placements behind")
	}
}

func TestSolveLargerBoard(t *testing.T) {
	regions := []Region{
		{
			Positions:  []Position{{0, 0}, {0, 1}, {1, 0}},
			Constraint: SumConstraint{6},
		},
		{
			Positions:  []Position{{2, 2}, {2, 3}},
			Constraint: EqualConstraint{},
		},
	}
	b := NewBoard(rectPositions(3, 4), regions, nil)
	s := NewSolver(b)
	if !s.Solve() {
		t.Fatalf("3x4 board reported unsolvable")
	}
	checkSolution(t, b)
	placed, _ := s.Solution()
	if len(placed) != 6 {
		t.Errorf("3x4 solution has %d placements (expected 6)", len(placed))
	}
}

func TestSolveDeadline(t *testing.T) {
	// a dense unconstrained 6x6 grid with an impossible cage forces
	// the search to exhaust; an expired deadline must cut it short
	regions := []Region{{
		Positions:  []Position{{5, 4}, {5, 5}},
		Constraint: SumConstraint{13},
	}}
	b := NewBoard(rectPositions(6, 6), regions, nil)
	s := NewSolver(b)
	s.SetDeadline(time.Now().Add(-time.Second))
	if s.Solve() {
		t.Fatalf("expired-deadline search reported solvable")
	}
	if !s.Aborted() {
		t.Errorf("expired-deadline search not marked aborted")
	}
	if len(b.Placed()) != 0 {
		t.Errorf("aborted search left placements behind")
	}
}

func TestSolutionRemembersOutcome(t *testing.T) {
	// Solution reports the last Solve's outcome instead of
	// searching again.  An aborted search stays reported as
	// failed even after the deadline is relaxed; only a fresh
	// Solve call re-runs the search.
	b := NewBoard(rectPositions(2, 2), nil, nil)
	s := NewSolver(b)
	s.SetDeadline(time.Now().Add(-time.Second))
	if s.Solve() {
		t.Fatalf("expired-deadline search reported solvable")
	}
	s.SetDeadline(time.Now().Add(time.Hour))
	if _, ok := s.Solution(); ok {
		t.Errorf("Solution re-ran an already failed search")
	}
	if !s.Aborted() {
		t.Errorf("remembered outcome lost the aborted flag")
	}
	if !s.Solve() {
		t.Fatalf("relaxed-deadline re-solve reported unsolvable")
	}
	if placed, ok := s.Solution(); !ok || len(placed) != 2 {
		t.Errorf("post-solve Solution is %v, %v", placed, ok)
	}

	// a solver that was never run solves on first Solution call
	fresh := NewSolver(NewBoard(rectPositions(1, 2), nil, nil))
	if placed, ok := fresh.Solution(); !ok || len(placed) != 1 {
		t.Errorf("first-call Solution is %v, %v", placed, ok)
	}
}

func TestSolveDeterministicFirstSolution(t *testing.T) {
	// with no constraints and the full inventory, the first tile and
	// first orientation at the first anchor always succeed, so the
	// solution is fully determined
	run := func() []Domino {
		b := NewBoard(rectPositions(2, 2), nil, nil)
		s := NewSolver(b)
		if !s.Solve() {
			t.Fatalf("2x2 board reported unsolvable")
		}
		placed, _ := s.Solution()
		sort.Slice(placed, func(i, j int) bool { return placed[i].Pos1.Less(placed[j].Pos1) })
		return placed
	}
	first := run()
	for trial := 0; trial < 3; trial++ {
		again := run()
		for i := range first {
			if first[i] != again[i] {
				t.Fatalf("trial %d: solution %v differs from %v", trial+1, again, first)
			}
		}
	}
}

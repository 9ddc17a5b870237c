package puzzle

/*

Pips puzzle representation

*/

import (
	"fmt"
	"sort"
)

/*

Positions

*/

// A Position is a cell coordinate on the board.  Positions are
// value types: two positions are the same cell exactly when their
// rows and columns match.  Rows grow downward and columns grow
// rightward, both from zero.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Less orders positions ascending by (row, col).  The solver
// depends on this ordering for deterministic search, so don't
// get creative here.
func (p Position) Less(q Position) bool {
	if p.Row != q.Row {
		return p.Row < q.Row
	}
	return p.Col < q.Col
}

// Right is the cell one column over.
func (p Position) Right() Position {
	return Position{p.Row, p.Col + 1}
}

// Down is the cell one row below.
func (p Position) Down() Position {
	return Position{p.Row + 1, p.Col}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// sortPositions sorts a position slice ascending by (row, col).
func sortPositions(ps []Position) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Less(ps[j]) })
}

/*

Constraints

*/

// A Constraint is a rule that the pip values of a completely
// filled cage must satisfy.  There are exactly six kinds, and
// each kind carries exactly the data it needs, so you cannot
// build (say) an equality constraint with a stray numeric bound.
//
// Validate is only meaningful for a full cage; the partial-fill
// short-circuit lives in Region, not here.
type Constraint interface {
	// Validate reports whether the given complete set of cage
	// values satisfies the constraint.
	Validate(values []int) bool
	String() string
}

// NoConstraint accepts everything.
type NoConstraint struct{}

// EqualConstraint requires all cage values to be identical.
type EqualConstraint struct{}

// NotEqualConstraint requires all cage values to be pairwise
// distinct.
type NotEqualConstraint struct{}

// GreaterThanConstraint requires the cage sum to exceed Bound.
type GreaterThanConstraint struct {
	Bound int
}

// LessThanConstraint requires the cage sum to stay below Bound.
type LessThanConstraint struct {
	Bound int
}

// SumConstraint requires the cage sum to equal Total.
type SumConstraint struct {
	Total int
}

func (c NoConstraint) Validate(values []int) bool {
	return true
}

func (c EqualConstraint) Validate(values []int) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func (c NotEqualConstraint) Validate(values []int) bool {
	seen := make(map[int]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

func (c GreaterThanConstraint) Validate(values []int) bool {
	return sum(values) > c.Bound
}

func (c LessThanConstraint) Validate(values []int) bool {
	return sum(values) < c.Bound
}

func (c SumConstraint) Validate(values []int) bool {
	return sum(values) == c.Total
}

func (c NoConstraint) String() string          { return "no constraint" }
func (c EqualConstraint) String() string       { return "=" }
func (c NotEqualConstraint) String() string    { return "!=" }
func (c GreaterThanConstraint) String() string { return fmt.Sprintf(">%d", c.Bound) }
func (c LessThanConstraint) String() string    { return fmt.Sprintf("<%d", c.Bound) }
func (c SumConstraint) String() string         { return fmt.Sprintf("sum=%d", c.Total) }

func sum(values []int) (total int) {
	for _, v := range values {
		total += v
	}
	return
}

/*

Tiles and placements

*/

// MaxPips is the largest pip value on a tile half.  The standard
// domino set runs 0-0 through MaxPips-MaxPips.
const MaxPips = 6

// A Tile is a physical tile type: an unordered pair of pip
// values, normalized so Low <= High.  Each tile type can be
// consumed at most once per solve.
type Tile struct {
	Low  int
	High int
}

// NewTile normalizes a pip pair into a Tile.
func NewTile(a, b int) Tile {
	if a > b {
		a, b = b, a
	}
	return Tile{a, b}
}

func (t Tile) String() string {
	return fmt.Sprintf("%d-%d", t.Low, t.High)
}

// StandardTiles returns the full double-six set: the 28 unordered
// pairs (i,j) with 0 <= i <= j <= MaxPips, in ascending order.
func StandardTiles() []Tile {
	var tiles []Tile
	for i := 0; i <= MaxPips; i++ {
		for j := i; j <= MaxPips; j++ {
			tiles = append(tiles, Tile{i, j})
		}
	}
	return tiles
}

// A Domino is a placed tile: two distinct cells, each carrying
// one half's pip value.  A Domino is both the tile and the act of
// placing it; there is no separate unplaced-tile object once a
// tile has been chosen.
type Domino struct {
	Pos1  Position `json:"pos1"`
	Pos2  Position `json:"pos2"`
	Dots1 int      `json:"dots1"`
	Dots2 int      `json:"dots2"`
}

// Tile gives the physical tile type this placement consumes.
// Two placements use the same tile exactly when their unordered
// pip pairs match.
func (d Domino) Tile() Tile {
	return NewTile(d.Dots1, d.Dots2)
}

func (d Domino) String() string {
	return fmt.Sprintf("%v=%d - %v=%d", d.Pos1, d.Dots1, d.Pos2, d.Dots2)
}

/*

Regions

*/

// A Region is a cage: a non-empty group of cells that shares one
// constraint.  A region can judge itself against a partial board
// state, but its judgment only bites once every one of its cells
// is filled.
type Region struct {
	Positions  []Position
	Constraint Constraint
}

// Validate reports whether the region's constraint holds for the
// given board state.  A region with any unfilled cell validates
// true regardless of the values already present: the solver must
// only prune on fully-observed violations, never on partial ones.
func (r *Region) Validate(state map[Position]int) bool {
	values := make([]int, 0, len(r.Positions))
	for _, pos := range r.Positions {
		if v, ok := state[pos]; ok {
			values = append(values, v)
		}
	}
	if len(values) < len(r.Positions) {
		return true // cage not yet decidable
	}
	return r.Constraint.Validate(values)
}

func (r *Region) String() string {
	return fmt.Sprintf("region of %d cells (%v)", len(r.Positions), r.Constraint)
}

/*

Boards

*/

// A Board is the mutable puzzle state: the fixed set of playable
// cells, the fixed region list, the tile inventory, and the
// mutable cell-to-pips mapping along with the ordered list of
// placements that produced it.
//
// A board is built once per puzzle attempt and mutated in place
// by exactly one solver; see Solver for the ownership rules.
type Board struct {
	valid   map[Position]bool
	ordered []Position // the valid positions, ascending
	regions []Region
	tiles   []Tile
	state   map[Position]int
	placed  []Domino
}

// NewBoard builds an empty board over the given playable cells,
// regions, and tile inventory.  A nil or empty inventory means
// the full standard 28-tile set.  The position list is not
// required to be sorted or duplicate-free; the board normalizes
// it.  Description-level validation (constraint shapes, cage
// sizes, pip ranges) belongs to the loading layer, not here.
func NewBoard(positions []Position, regions []Region, tiles []Tile) *Board {
	valid := make(map[Position]bool, len(positions))
	for _, pos := range positions {
		valid[pos] = true
	}
	ordered := make([]Position, 0, len(valid))
	for pos := range valid {
		ordered = append(ordered, pos)
	}
	sortPositions(ordered)
	if len(tiles) == 0 {
		tiles = StandardTiles()
	}
	return &Board{
		valid:   valid,
		ordered: ordered,
		regions: regions,
		tiles:   tiles,
		state:   make(map[Position]int),
	}
}

// IsValidPosition reports whether the cell is playable.
func (b *Board) IsValidPosition(pos Position) bool {
	return b.valid[pos]
}

// IsOccupied reports whether the cell already holds a pip value.
func (b *Board) IsOccupied(pos Position) bool {
	_, ok := b.state[pos]
	return ok
}

// PipAt returns the pip value at a cell, if there is one.
func (b *Board) PipAt(pos Position) (int, bool) {
	v, ok := b.state[pos]
	return v, ok
}

// Place tries to put a domino on the board.  Both cells must be
// playable and currently empty, and every region must still
// validate with the new values in place; otherwise Place returns
// false and the board is exactly as it was before the call.  No
// partial mutation is ever observable after a failed Place.
func (b *Board) Place(d Domino) bool {
	if d.Pos1 == d.Pos2 {
		return false
	}
	if !b.IsValidPosition(d.Pos1) || !b.IsValidPosition(d.Pos2) {
		return false
	}
	if b.IsOccupied(d.Pos1) || b.IsOccupied(d.Pos2) {
		return false
	}
	b.state[d.Pos1] = d.Dots1
	b.state[d.Pos2] = d.Dots2
	b.placed = append(b.placed, d)
	for i := range b.regions {
		if !b.regions[i].Validate(b.state) {
			b.Remove(d)
			return false
		}
	}
	return true
}

// Remove undoes a placement: the domino's two cells are cleared
// and the placement is dropped from the placed list (matched by
// value).  Removing a domino that isn't on the board is a no-op,
// not an error.
func (b *Board) Remove(d Domino) {
	delete(b.state, d.Pos1)
	delete(b.state, d.Pos2)
	for i := len(b.placed) - 1; i >= 0; i-- {
		if b.placed[i] == d {
			b.placed = append(b.placed[:i], b.placed[i+1:]...)
			break
		}
	}
}

// IsComplete reports whether every playable cell is filled.  An
// empty board is vacuously complete.
func (b *Board) IsComplete() bool {
	return len(b.state) == len(b.ordered)
}

// EmptyPositions returns the playable cells not yet filled, in
// ascending (row, col) order.  The order is stable across calls
// for a fixed state; the solver's determinism depends on it.
func (b *Board) EmptyPositions() []Position {
	var empty []Position
	for _, pos := range b.ordered {
		if !b.IsOccupied(pos) {
			empty = append(empty, pos)
		}
	}
	return empty
}

// Positions returns the playable cells in ascending order.  The
// returned slice is shared; don't modify it.
func (b *Board) Positions() []Position {
	return b.ordered
}

// Regions returns the board's region list.  The returned slice
// is shared; don't modify it.
func (b *Board) Regions() []Region {
	return b.regions
}

// Tiles returns the tile inventory in solve order.  The returned
// slice is shared; don't modify it.
func (b *Board) Tiles() []Tile {
	return b.tiles
}

// State returns a copy of the current cell-to-pips mapping.
func (b *Board) State() map[Position]int {
	state := make(map[Position]int, len(b.state))
	for pos, v := range b.state {
		state[pos] = v
	}
	return state
}

// Placed returns a copy of the placements made so far, in
// discovery order.
func (b *Board) Placed() []Domino {
	return append([]Domino(nil), b.placed...)
}

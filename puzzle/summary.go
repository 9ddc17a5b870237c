// Package puzzle provides a model for Pips domino-placement
// puzzles and a backtracking solver for them.
//
// A Pips puzzle is played on an arbitrary-shaped grid of cells.
// Tiles (dominoes) with two pip values 0-6 are laid across pairs
// of edge-adjacent cells until every playable cell is covered
// exactly once, each tile type used at most once.  Labeled groups
// of cells (regions, or cages) carry constraints over the pip
// values eventually placed in them: all equal, all different, or
// the cage sum compared against a target.
//
// Puzzles enter the package as a Summary, the JSON description
// produced by a file, a web request, or the screenshot extractor.
// New validates a Summary and builds a Board; a Solver then
// mutates the Board in place to find a covering assignment.  The
// solved state is read back off the Board.
package puzzle

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
)

/*

Puzzle descriptions

*/

// A Summary is the wire form of a puzzle description.  Either
// ValidPositions or Rows and Cols must be given; when only the
// dimensions are present the playable area is the full
// Rows-by-Cols rectangle.  Dominoes is optional and restricts
// the tile inventory; absent, the full 28-tile double-six set is
// available.
type Summary struct {
	Rows           int             `json:"rows,omitempty"`
	Cols           int             `json:"cols,omitempty"`
	ValidPositions []Position      `json:"valid_positions,omitempty"`
	Regions        []RegionSummary `json:"regions"`
	Dominoes       [][]int         `json:"dominoes,omitempty"`
}

// A RegionSummary is the wire form of one cage.
type RegionSummary struct {
	Positions  []Position        `json:"positions"`
	Constraint ConstraintSummary `json:"constraint"`
}

// A ConstraintSummary is the wire form of one constraint.  Value
// must be present for the value-bearing kinds and absent for the
// others; New enforces this.
type ConstraintSummary struct {
	Type  string `json:"type"`
	Value *int   `json:"value,omitempty"`
}

// Wire names for the constraint kinds.  The short forms are the
// legacy spellings used by older puzzle files; they are accepted
// on input and never produced on output.
const (
	NoneConstraintType        = "none"
	EqualConstraintType       = "equal"
	NotEqualConstraintType    = "notequal"
	GreaterThanConstraintType = "greater_than"
	LessThanConstraintType    = "less_than"
	NumberConstraintType      = "number"

	legacyEqualType       = "="
	legacyNotEqualType    = "!="
	legacyGreaterThanType = ">"
	legacyLessThanType    = "<"
	legacyNumberType      = "sum"
)

// New validates a puzzle description and builds an empty Board
// from it.  All the structural and semantic checking lives here:
// by the time a Board exists, the core operations can assume a
// well-formed puzzle.  The returned error, when non-nil, is
// always an Error value.
func New(summary *Summary) (*Board, error) {
	if summary == nil {
		return nil, Error{
			Scope:     SummaryScope,
			Structure: ScopeStructure,
			Condition: GeneralCondition,
			Values:    ErrorData{"no summary given"},
		}
	}

	positions, err := summaryPositions(summary)
	if err != nil {
		return nil, err
	}
	valid := make(map[Position]bool, len(positions))
	for _, pos := range positions {
		valid[pos] = true
	}

	regions := make([]Region, len(summary.Regions))
	for i, rs := range summary.Regions {
		region, err := newRegion(i, rs, valid)
		if err != nil {
			return nil, err
		}
		regions[i] = region
	}

	tiles, err := summaryTiles(summary)
	if err != nil {
		return nil, err
	}

	return NewBoard(positions, regions, tiles), nil
}

// summaryPositions resolves the playable cells of a description:
// the explicit position list when present, the full rectangle
// otherwise.
func summaryPositions(summary *Summary) ([]Position, error) {
	if len(summary.ValidPositions) > 0 {
		for _, pos := range summary.ValidPositions {
			if pos.Row < 0 {
				return nil, rangeError(SummaryScope, PositionAttribute, pos.Row, 0, 0)
			}
			if pos.Col < 0 {
				return nil, rangeError(SummaryScope, PositionAttribute, pos.Col, 0, 0)
			}
		}
		return summary.ValidPositions, nil
	}
	if summary.Rows <= 0 && summary.Cols <= 0 {
		return nil, Error{
			Scope:     SummaryScope,
			Structure: ScopeStructure,
			Condition: NoPositionsCondition,
		}
	}
	if summary.Rows <= 0 {
		return nil, rangeError(SummaryScope, RowsAttribute, summary.Rows, 1, 0)
	}
	if summary.Cols <= 0 {
		return nil, rangeError(SummaryScope, ColsAttribute, summary.Cols, 1, 0)
	}
	positions := make([]Position, 0, summary.Rows*summary.Cols)
	for row := 0; row < summary.Rows; row++ {
		for col := 0; col < summary.Cols; col++ {
			positions = append(positions, Position{row, col})
		}
	}
	return positions, nil
}

// newRegion validates one cage description against the playable
// cells and builds the Region for it.
func newRegion(index int, rs RegionSummary, valid map[Position]bool) (Region, error) {
	if len(rs.Positions) == 0 {
		return Region{}, Error{
			Scope:     RegionScope,
			Structure: AttributeValueStructure,
			Attribute: CageAttribute,
			Condition: TooFewPositionsCondition,
			Values:    ErrorData{index, 1},
		}
	}
	seen := make(map[Position]bool, len(rs.Positions))
	for _, pos := range rs.Positions {
		if seen[pos] {
			return Region{}, Error{
				Scope:     RegionScope,
				Structure: AttributeStructure,
				Attribute: CageAttribute,
				Condition: DuplicatePositionCondition,
				Values:    ErrorData{index, pos},
			}
		}
		seen[pos] = true
		if !valid[pos] {
			return Region{}, Error{
				Scope:     RegionScope,
				Structure: AttributeStructure,
				Attribute: CageAttribute,
				Condition: OffBoardCondition,
				Values:    ErrorData{index, pos},
			}
		}
	}
	constraint, minCage, err := newConstraint(index, rs.Constraint)
	if err != nil {
		return Region{}, err
	}
	if len(rs.Positions) < minCage {
		return Region{}, Error{
			Scope:     ConstraintScope,
			Structure: AttributeStructure,
			Attribute: CageAttribute,
			Condition: TooFewPositionsCondition,
			Values:    ErrorData{index, minCage},
		}
	}
	return Region{Positions: rs.Positions, Constraint: constraint}, nil
}

// newConstraint validates one constraint description and builds
// the Constraint variant for it, along with the smallest cage
// the constraint kind makes sense on.
func newConstraint(index int, cs ConstraintSummary) (Constraint, int, error) {
	valueless := func(c Constraint, minCage int) (Constraint, int, error) {
		if cs.Value != nil {
			return nil, 0, Error{
				Scope:     ConstraintScope,
				Structure: AttributeValueStructure,
				Attribute: ConstraintTypeAttribute,
				Condition: UnexpectedValueCondition,
				Values:    ErrorData{index, cs.Type, *cs.Value},
			}
		}
		return c, minCage, nil
	}
	valued := func(build func(int) Constraint) (Constraint, int, error) {
		if cs.Value == nil {
			return nil, 0, Error{
				Scope:     ConstraintScope,
				Structure: AttributeValueStructure,
				Attribute: ConstraintTypeAttribute,
				Condition: MissingValueCondition,
				Values:    ErrorData{index, cs.Type},
			}
		}
		if *cs.Value < 0 {
			err := rangeError(ConstraintScope, BoundAttribute, *cs.Value, 0, 0)
			err.Values = append(ErrorData{index}, err.Values...)
			return nil, 0, err
		}
		return build(*cs.Value), 1, nil
	}

	switch cs.Type {
	case NoneConstraintType, "":
		return valueless(NoConstraint{}, 1)
	case EqualConstraintType, legacyEqualType:
		return valueless(EqualConstraint{}, 2)
	case NotEqualConstraintType, legacyNotEqualType:
		return valueless(NotEqualConstraint{}, 2)
	case GreaterThanConstraintType, legacyGreaterThanType:
		return valued(func(v int) Constraint { return GreaterThanConstraint{v} })
	case LessThanConstraintType, legacyLessThanType:
		return valued(func(v int) Constraint { return LessThanConstraint{v} })
	case NumberConstraintType, legacyNumberType:
		return valued(func(v int) Constraint { return SumConstraint{v} })
	default:
		return nil, 0, Error{
			Scope:     ConstraintScope,
			Structure: AttributeValueStructure,
			Attribute: ConstraintTypeAttribute,
			Condition: UnknownTypeCondition,
			Values:    ErrorData{index, cs.Type},
		}
	}
}

// summaryTiles validates a description's optional tile list and
// normalizes it into the solve-order inventory.
func summaryTiles(summary *Summary) ([]Tile, error) {
	if len(summary.Dominoes) == 0 {
		return nil, nil // NewBoard fills in the standard set
	}
	tiles := make([]Tile, len(summary.Dominoes))
	for i, pair := range summary.Dominoes {
		if len(pair) != 2 {
			return nil, Error{
				Scope:     DominoScope,
				Structure: AttributeStructure,
				Attribute: DominoAttribute,
				Condition: GeneralCondition,
				Values:    ErrorData{i, "must be a pair of pip values"},
			}
		}
		for _, pips := range pair {
			if pips < 0 || pips > MaxPips {
				err := rangeError(DominoScope, PipsAttribute, pips, 0, MaxPips)
				err.Values = append(ErrorData{i}, err.Values...)
				return nil, err
			}
		}
		tiles[i] = NewTile(pair[0], pair[1])
	}
	return tiles, nil
}

/*

Summaries of boards

*/

// Summarize produces the canonical Summary for a board:
// positions sorted, constraint types in their modern spellings,
// tile pairs normalized.  Round-tripping a board through
// Summarize and New yields an equivalent empty board.
func (b *Board) Summarize() *Summary {
	summary := &Summary{
		ValidPositions: append([]Position(nil), b.ordered...),
		Regions:        make([]RegionSummary, len(b.regions)),
	}
	for i, region := range b.regions {
		positions := append([]Position(nil), region.Positions...)
		sortPositions(positions)
		summary.Regions[i] = RegionSummary{
			Positions:  positions,
			Constraint: summarizeConstraint(region.Constraint),
		}
	}
	for _, tile := range b.tiles {
		summary.Dominoes = append(summary.Dominoes, []int{tile.Low, tile.High})
	}
	return summary
}

// summarizeConstraint maps a Constraint variant back to its wire
// form.
func summarizeConstraint(c Constraint) ConstraintSummary {
	value := func(v int) *int { return &v }
	switch c := c.(type) {
	case EqualConstraint:
		return ConstraintSummary{Type: EqualConstraintType}
	case NotEqualConstraint:
		return ConstraintSummary{Type: NotEqualConstraintType}
	case GreaterThanConstraint:
		return ConstraintSummary{Type: GreaterThanConstraintType, Value: value(c.Bound)}
	case LessThanConstraint:
		return ConstraintSummary{Type: LessThanConstraintType, Value: value(c.Bound)}
	case SumConstraint:
		return ConstraintSummary{Type: NumberConstraintType, Value: value(c.Total)}
	default:
		return ConstraintSummary{Type: NoneConstraintType}
	}
}

// Signature computes the content hash that identifies a puzzle
// for caching and persistence.  Equivalent descriptions (same
// cells, cages, and inventory, regardless of listing order) hash
// the same because the board's canonical summary is hashed, not
// the raw description.
func (b *Board) Signature() string {
	summary := b.Summarize()
	sort.Slice(summary.Dominoes, func(i, j int) bool {
		a, b := summary.Dominoes[i], summary.Dominoes[j]
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		return a[1] < b[1]
	})
	sort.Slice(summary.Regions, func(i, j int) bool {
		a, b := summary.Regions[i], summary.Regions[j]
		if len(a.Positions) > 0 && len(b.Positions) > 0 && a.Positions[0] != b.Positions[0] {
			return a.Positions[0].Less(b.Positions[0])
		}
		return fmt.Sprint(a) < fmt.Sprint(b)
	})
	bytes, err := json.Marshal(summary)
	if err != nil {
		// summaries are plain data; this cannot happen
		panic(fmt.Errorf("failed to marshal canonical summary: %v", err))
	}
	return fmt.Sprintf("%x", sha256.Sum256(bytes))
}

/*

Solve results

*/

// A Cell is one filled cell of a result, the wire form of one
// entry in the board's state map.
type Cell struct {
	Row  int `json:"row"`
	Col  int `json:"col"`
	Pips int `json:"pips"`
}

// A Result is the outcome of a solve as presented to callers:
// whether a covering assignment was found, the final cell values
// in (row, col) order, and the placements in discovery order.
// When a puzzle has multiple valid coverings this holds the
// first one found under the solver's fixed exploration order,
// not a canonical one.
type Result struct {
	Solvable   bool     `json:"solvable"`
	Aborted    bool     `json:"aborted,omitempty"`
	State      []Cell   `json:"state,omitempty"`
	Placements []Domino `json:"placements,omitempty"`
	Grid       string   `json:"grid,omitempty"`
}

// NewResult reads the result surface off a board after a solve
// attempt.
func NewResult(b *Board, solved, aborted bool) *Result {
	result := &Result{Solvable: solved, Aborted: aborted}
	if !solved {
		return result
	}
	for _, pos := range b.ordered {
		if pips, ok := b.PipAt(pos); ok {
			result.State = append(result.State, Cell{pos.Row, pos.Col, pips})
		}
	}
	result.Placements = b.Placed()
	result.Grid = b.Grid()
	return result
}

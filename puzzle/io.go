package puzzle

import (
	"fmt"
	"strings"
)

/*

Print forms of boards

*/

// Grid returns the board as a text grid inside the bounding box
// of its playable cells: a pip digit for each filled cell, a
// space for a playable-but-empty cell, and a dot for cells
// outside the playable area.  An empty board renders as the
// marker string "(empty board)".
func (b *Board) Grid() string {
	if len(b.ordered) == 0 {
		return "(empty board)"
	}
	minRow, maxRow := b.ordered[0].Row, b.ordered[0].Row
	minCol, maxCol := b.ordered[0].Col, b.ordered[0].Col
	for _, pos := range b.ordered {
		if pos.Row < minRow {
			minRow = pos.Row
		}
		if pos.Row > maxRow {
			maxRow = pos.Row
		}
		if pos.Col < minCol {
			minCol = pos.Col
		}
		if pos.Col > maxCol {
			maxCol = pos.Col
		}
	}
	grid := make([][]string, maxRow-minRow+1)
	for i := range grid {
		grid[i] = make([]string, maxCol-minCol+1)
		for j := range grid[i] {
			grid[i][j] = "."
		}
	}
	for _, pos := range b.ordered {
		grid[pos.Row-minRow][pos.Col-minCol] = " "
	}
	for pos, pips := range b.state {
		grid[pos.Row-minRow][pos.Col-minCol] = fmt.Sprint(pips)
	}
	lines := make([]string, len(grid))
	for i, row := range grid {
		lines[i] = strings.Join(row, " ")
	}
	return strings.Join(lines, "\n")
}

// PlacementsString lists the placements made so far, one per
// line, numbered in discovery order.
func (b *Board) PlacementsString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Placed %d dominoes:\n", len(b.placed))
	for i, d := range b.placed {
		fmt.Fprintf(&sb, "  %d. %v\n", i+1, d)
	}
	return sb.String()
}

// String gives a pretty-printed view of a board: the grid plus
// the placement list.
func (b *Board) String() string {
	return b.Grid() + "\n\n" + b.PlacementsString()
}

/*

Markdown-formatted tables, for documentation

*/

// GridMarkdown returns the board as a Markdown table over the
// bounding box of its playable cells.  Cells outside the
// playable area are left blank; playable empty cells show an
// underscore.
func (b *Board) GridMarkdown() string {
	if len(b.ordered) == 0 {
		return ""
	}
	var maxRow, maxCol int
	for _, pos := range b.ordered {
		if pos.Row > maxRow {
			maxRow = pos.Row
		}
		if pos.Col > maxCol {
			maxCol = pos.Col
		}
	}
	var sb strings.Builder
	sb.WriteString("|")
	for col := 0; col <= maxCol; col++ {
		fmt.Fprintf(&sb, " %d |", col)
	}
	sb.WriteString("\n|")
	for col := 0; col <= maxCol; col++ {
		sb.WriteString(":---:|")
	}
	sb.WriteString("\n")
	for row := 0; row <= maxRow; row++ {
		sb.WriteString("|")
		for col := 0; col <= maxCol; col++ {
			pos := Position{row, col}
			switch {
			case !b.IsValidPosition(pos):
				sb.WriteString("   |")
			case b.IsOccupied(pos):
				fmt.Fprintf(&sb, " %d |", b.state[pos])
			default:
				sb.WriteString(" _ |")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

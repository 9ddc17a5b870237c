package puzzle

import (
	"strings"
	"testing"
)

func TestGrid(t *testing.T) {
	// an L-shaped board: top row of three cells, one cell hanging
	// below the left end
	positions := []Position{{0, 0}, {0, 1}, {0, 2}, {1, 0}}
	b := NewBoard(positions, nil, nil)
	if got, want := b.Grid(), "     \n  . ."; got != want {
		t.Errorf("empty L grid is %q (expected %q)", got, want)
	}
	b.Place(Domino{Position{0, 0}, Position{0, 1}, 3, 5})
	if got, want := b.Grid(), "3 5  \n  . ."; got != want {
		t.Errorf("partial L grid is %q (expected %q)", got, want)
	}
}

func TestGridBoundingBox(t *testing.T) {
	// cells far from the origin render inside their own bounding
	// box, not padded out from (0,0)
	b := NewBoard([]Position{{4, 7}, {4, 8}}, nil, nil)
	if got := b.Grid(); got != "   " {
		t.Errorf("offset grid is %q", got)
	}
	b.Place(Domino{Position{4, 7}, Position{4, 8}, 0, 6})
	if got := b.Grid(); got != "0 6" {
		t.Errorf("offset grid after place is %q", got)
	}
}

func TestGridEmptyBoard(t *testing.T) {
	b := NewBoard(nil, nil, nil)
	if got := b.Grid(); got != "(empty board)" {
		t.Errorf("zero-cell grid is %q", got)
	}
}

func TestPlacementsString(t *testing.T) {
	b := NewBoard(rectPositions(1, 4), nil, nil)
	b.Place(Domino{Position{0, 0}, Position{0, 1}, 3, 5})
	b.Place(Domino{Position{0, 2}, Position{0, 3}, 0, 6})
	got := b.PlacementsString()
	want := "Placed 2 dominoes:\n" +
		"  1. (0,0)=3 - (0,1)=5\n" +
		"  2. (0,2)=0 - (0,3)=6\n"
	if got != want {
		t.Errorf("placements render as %q (expected %q)", got, want)
	}
}

func TestBoardString(t *testing.T) {
	b := NewBoard(rectPositions(1, 2), nil, nil)
	b.Place(Domino{Position{0, 0}, Position{0, 1}, 1, 2})
	got := b.String()
	if !strings.HasPrefix(got, "1 2\n\n") || !strings.Contains(got, "Placed 1 dominoes:") {
		t.Errorf("board renders as %q", got)
	}
}

func TestGridMarkdown(t *testing.T) {
	positions := []Position{{0, 0}, {0, 1}, {1, 1}}
	b := NewBoard(positions, nil, nil)
	b.Place(Domino{Position{0, 0}, Position{0, 1}, 4, 2})
	got := b.GridMarkdown()
	want := "| 0 | 1 |\n" +
		"|:---:|:---:|\n" +
		"| 4 | 2 |\n" +
		"|   | _ |\n"
	if got != want {
		t.Errorf("markdown grid is %q (expected %q)", got, want)
	}
	if empty := NewBoard(nil, nil, nil).GridMarkdown(); empty != "" {
		t.Errorf("zero-cell markdown grid is %q", empty)
	}
}

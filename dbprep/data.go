package dbprep

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/DavidBellamy/pips/puzzle"
)

/*

entries

*/

type dataFunction func(context.Context, pgx.Tx) error

var (
	upFunctions = []dataFunction{
		insertSamples,
	}
	downFunctions = []dataFunction{
		deleteSamples,
	}
)

// DataUp: load the sample data into the database.  You should do
// this after you get the schema up!
func DataUp(ctx context.Context) error {
	return applyFunctions(ctx, upFunctions)
}

// DataDown: remove the sample data from the database.  You
// should do this before you tear the schema down!
func DataDown(ctx context.Context) error {
	return applyFunctions(ctx, downFunctions)
}

// apply dataFunctions to the database.  Each is applied in a
// separate transaction, so later ones can rely on the effect of
// earlier ones having been committed.
func applyFunctions(ctx context.Context, fns []dataFunction) error {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		url = "postgres://localhost/pips?sslmode=disable"
	}

	// open the database, defer the close
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	// helper that runs each function inside a transaction, and
	// ensures that any problems are rolled back.
	runFunc := func(fn dataFunction) error {
		tx, err := conn.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if e := recover(); e != nil {
				tx.Rollback(ctx)
				panic(e)
			}
		}()
		if err := fn(ctx, tx); err != nil {
			tx.Rollback(ctx)
			return err
		}
		return tx.Commit(ctx)
	}

	// run the functions
	for _, fn := range fns {
		if err := runFunc(fn); err != nil {
			return fmt.Errorf("data function failed: %v", err)
		}
	}
	return nil
}

/*

sample puzzles

*/

func value(v int) *int { return &v }

// The sample puzzles seeded into a fresh database.  Each is a
// small solvable board exercising a different cage mix; they
// give a fresh install something to show before any user has
// submitted a puzzle.
var sampleSummaries = []*puzzle.Summary{
	// two-row starter: a sum cage over the top row, an equal
	// cage over the bottom
	{
		Rows: 2, Cols: 2,
		Regions: []puzzle.RegionSummary{
			{
				Positions:  []puzzle.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}},
				Constraint: puzzle.ConstraintSummary{Type: puzzle.NumberConstraintType, Value: value(7)},
			},
			{
				Positions:  []puzzle.Position{{Row: 1, Col: 0}, {Row: 1, Col: 1}},
				Constraint: puzzle.ConstraintSummary{Type: puzzle.EqualConstraintType},
			},
		},
	},
	// three-column board with one cage of each remaining kind
	{
		Rows: 2, Cols: 3,
		Regions: []puzzle.RegionSummary{
			{
				Positions:  []puzzle.Position{{Row: 0, Col: 0}, {Row: 1, Col: 0}},
				Constraint: puzzle.ConstraintSummary{Type: puzzle.GreaterThanConstraintType, Value: value(8)},
			},
			{
				Positions:  []puzzle.Position{{Row: 0, Col: 1}, {Row: 1, Col: 1}},
				Constraint: puzzle.ConstraintSummary{Type: puzzle.NotEqualConstraintType},
			},
			{
				Positions:  []puzzle.Position{{Row: 0, Col: 2}, {Row: 1, Col: 2}},
				Constraint: puzzle.ConstraintSummary{Type: puzzle.LessThanConstraintType, Value: value(5)},
			},
		},
	},
	// a ring with a hole in the middle, one big cage around it
	{
		ValidPositions: []puzzle.Position{
			{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2},
			{Row: 1, Col: 0}, {Row: 1, Col: 2},
			{Row: 2, Col: 0}, {Row: 2, Col: 1}, {Row: 2, Col: 2},
		},
		Regions: []puzzle.RegionSummary{{
			Positions: []puzzle.Position{
				{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2},
				{Row: 1, Col: 0}, {Row: 1, Col: 2},
				{Row: 2, Col: 0}, {Row: 2, Col: 1}, {Row: 2, Col: 2},
			},
			Constraint: puzzle.ConstraintSummary{Type: puzzle.GreaterThanConstraintType, Value: value(20)},
		}},
	},
}

// sampleBoards: validate the samples and pair each with its
// signature.  Panics on a malformed sample, which is a
// programming error in this file.
func sampleBoards() map[string]*puzzle.Board {
	boards := make(map[string]*puzzle.Board, len(sampleSummaries))
	for i, summary := range sampleSummaries {
		board, err := puzzle.New(summary)
		if err != nil {
			panic(fmt.Errorf("Sample puzzle %d is malformed: %v", i, err))
		}
		boards[board.Signature()] = board
	}
	return boards
}

// insertSamples: store the canonical form of each sample puzzle,
// skipping any already present.
func insertSamples(ctx context.Context, tx pgx.Tx) error {
	for signature, board := range sampleBoards() {
		bytes, err := json.Marshal(board.Summarize())
		if err != nil {
			return fmt.Errorf("Couldn't marshal sample %q: %v", signature, err)
		}
		_, err = tx.Exec(ctx,
			"INSERT INTO puzzles (signature, description, created) "+
				"VALUES ($1, $2, $3) ON CONFLICT (signature) DO NOTHING",
			signature, bytes, time.Now())
		if err != nil {
			return fmt.Errorf("Couldn't insert sample %q: %v", signature, err)
		}
	}
	return nil
}

// deleteSamples: remove the sample puzzles (and, through the
// schema's cascade, any solutions stored for them).
func deleteSamples(ctx context.Context, tx pgx.Tx) error {
	for signature := range sampleBoards() {
		_, err := tx.Exec(ctx, "DELETE FROM puzzles WHERE signature = $1", signature)
		if err != nil {
			return fmt.Errorf("Couldn't delete sample %q: %v", signature, err)
		}
	}
	return nil
}

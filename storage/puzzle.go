package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/jackc/pgx/v5"

	"github.com/DavidBellamy/pips/puzzle"
)

/*

stored puzzles

*/

// A puzzleEntry is the stored form of a puzzle description.  It
// is JSON serializable so it can go into the cache as well as
// the database.
type puzzleEntry struct {
	Signature string          // content hash of the canonical description
	Summary   *puzzle.Summary // the canonical description itself
}

// key: compute the cache key for a puzzleEntry.
func (pe *puzzleEntry) key() string {
	return "PUZ:" + pe.Signature
}

// SavePuzzle stores a board's canonical description under its
// signature and returns the signature.  Saving a puzzle that is
// already stored is a no-op.  Panics on storage failure.
func SavePuzzle(ctx context.Context, board *puzzle.Board) string {
	pe := &puzzleEntry{Signature: board.Signature(), Summary: board.Summarize()}
	pe.databaseInsert(ctx)
	pe.cacheInsert()
	return pe.Signature
}

// LoadPuzzle finds a stored puzzle description by signature,
// checking the cache first and falling back to the database.  A
// database hit is written back to the cache.  The second return
// is false when no such puzzle is stored.
func LoadPuzzle(ctx context.Context, signature string) (*puzzle.Summary, bool) {
	pe := &puzzleEntry{Signature: signature}
	if pe.cacheLoad() {
		return pe.Summary, true
	}
	if !pe.databaseLoad(ctx) {
		return nil, false
	}
	pe.cacheInsert()
	return pe.Summary, true
}

// cacheLoad: load an already cached puzzle entry.  Returns
// whether the entry was found in the cache.
func (pe *puzzleEntry) cacheLoad() bool {
	var bytes []byte
	body := func(tx redis.Conn) (err error) {
		bytes, err = redis.Bytes(tx.Do("GET", pe.key()))
		if err == redis.ErrNil {
			return nil
		}
		if err != nil {
			err = fmt.Errorf("Cache failure loading puzzle %q: %v", pe.Signature, err)
		}
		return
	}
	rdExecute(body)
	if len(bytes) == 0 {
		return false
	}
	var spe *puzzleEntry
	if err := json.Unmarshal(bytes, &spe); err != nil {
		panic(fmt.Errorf("Failed to unmarshal puzzle entry %q: %v", pe.Signature, err))
	}
	if spe.Signature != pe.Signature {
		panic(fmt.Errorf("Cached puzzle entry (signature %q) found under %q!",
			spe.Signature, pe.Signature))
	}
	*pe = *spe
	return true
}

// cacheInsert: insert a puzzle entry into the cache.  Replaces
// any existing entry with the same signature.
func (pe *puzzleEntry) cacheInsert() {
	bytes, e := json.Marshal(pe)
	if e != nil {
		panic(fmt.Errorf("Failed to marshal puzzle entry %q: %v", pe.Signature, e))
	}
	body := func(tx redis.Conn) (err error) {
		_, err = tx.Do("SET", pe.key(), bytes)
		if err != nil {
			err = fmt.Errorf("Cache failure saving puzzle entry %q: %v", pe.Signature, err)
		}
		return
	}
	rdExecute(body)
}

// databaseLoad: load a puzzle entry from the database.  Returns
// whether a saved entry with the signature exists.
func (pe *puzzleEntry) databaseLoad(ctx context.Context) (found bool) {
	body := func(tx pgx.Tx) error {
		var description []byte
		row := tx.QueryRow(ctx,
			"SELECT description FROM puzzles WHERE signature = $1", pe.Signature)
		if err := row.Scan(&description); err != nil {
			if err == pgx.ErrNoRows {
				return nil
			}
			return fmt.Errorf("Failure looking up puzzle %q: %v", pe.Signature, err)
		}
		if err := json.Unmarshal(description, &pe.Summary); err != nil {
			return fmt.Errorf("Bad stored description for puzzle %q: %v", pe.Signature, err)
		}
		found = true
		return nil
	}
	pgExecute(ctx, body)
	return
}

// databaseInsert: insert a puzzle entry into the database,
// leaving any existing entry with the same signature alone.
func (pe *puzzleEntry) databaseInsert(ctx context.Context) {
	bytes, e := json.Marshal(pe.Summary)
	if e != nil {
		panic(fmt.Errorf("Failed to marshal puzzle description %q: %v", pe.Signature, e))
	}
	body := func(tx pgx.Tx) (err error) {
		_, err = tx.Exec(ctx,
			"INSERT INTO puzzles (signature, description, created) "+
				"VALUES ($1, $2, $3) ON CONFLICT (signature) DO NOTHING",
			pe.Signature, bytes, time.Now())
		if err != nil {
			err = fmt.Errorf("Database error saving puzzle entry %q: %v", pe.Signature, err)
		}
		return
	}
	pgExecute(ctx, body)
}

/*

stored solutions

*/

// A solutionEntry is the stored form of one solve outcome: the
// result for the puzzle with the matching signature, plus how
// long the search took.  Aborted searches are never stored,
// because a longer deadline might still decide them; decided
// outcomes are stored whether solvable or not.
type solutionEntry struct {
	Signature   string         // signature of the solved puzzle
	Result      *puzzle.Result // the solve outcome
	SolveMillis int64          // search time in milliseconds
}

// key: compute the cache key for a solutionEntry.
func (se *solutionEntry) key() string {
	return "SOL:" + se.Signature
}

// SaveSolution stores a solve outcome for the puzzle with the
// given signature.  The puzzle itself must already be stored.
// Aborted results are ignored.  Panics on storage failure.
func SaveSolution(ctx context.Context, signature string, result *puzzle.Result, elapsed time.Duration) {
	if result.Aborted {
		return
	}
	se := &solutionEntry{
		Signature:   signature,
		Result:      result,
		SolveMillis: elapsed.Milliseconds(),
	}
	se.databaseInsert(ctx)
	se.cacheInsert()
}

// LoadSolution finds a stored solve outcome by puzzle signature,
// checking the cache first and falling back to the database.  A
// database hit is written back to the cache.  The second return
// is false when the puzzle has no stored outcome.
func LoadSolution(ctx context.Context, signature string) (*puzzle.Result, bool) {
	se := &solutionEntry{Signature: signature}
	if se.cacheLoad() {
		return se.Result, true
	}
	if !se.databaseLoad(ctx) {
		return nil, false
	}
	se.cacheInsert()
	return se.Result, true
}

// cacheLoad: load an already cached solution entry.  Returns
// whether the entry was found in the cache.
func (se *solutionEntry) cacheLoad() bool {
	var bytes []byte
	body := func(tx redis.Conn) (err error) {
		bytes, err = redis.Bytes(tx.Do("GET", se.key()))
		if err == redis.ErrNil {
			return nil
		}
		if err != nil {
			err = fmt.Errorf("Cache failure loading solution %q: %v", se.Signature, err)
		}
		return
	}
	rdExecute(body)
	if len(bytes) == 0 {
		return false
	}
	var sse *solutionEntry
	if err := json.Unmarshal(bytes, &sse); err != nil {
		panic(fmt.Errorf("Failed to unmarshal solution entry %q: %v", se.Signature, err))
	}
	if sse.Signature != se.Signature {
		panic(fmt.Errorf("Cached solution entry (signature %q) found under %q!",
			sse.Signature, se.Signature))
	}
	*se = *sse
	return true
}

// cacheInsert: insert a solution entry into the cache.
func (se *solutionEntry) cacheInsert() {
	bytes, e := json.Marshal(se)
	if e != nil {
		panic(fmt.Errorf("Failed to marshal solution entry %q: %v", se.Signature, e))
	}
	body := func(tx redis.Conn) (err error) {
		_, err = tx.Do("SET", se.key(), bytes)
		if err != nil {
			err = fmt.Errorf("Cache failure saving solution entry %q: %v", se.Signature, err)
		}
		return
	}
	rdExecute(body)
}

// databaseLoad: load a solution entry from the database.
// Returns whether a saved entry with the signature exists.
func (se *solutionEntry) databaseLoad(ctx context.Context) (found bool) {
	body := func(tx pgx.Tx) error {
		var result []byte
		row := tx.QueryRow(ctx,
			"SELECT result, solveMillis FROM solutions WHERE signature = $1", se.Signature)
		if err := row.Scan(&result, &se.SolveMillis); err != nil {
			if err == pgx.ErrNoRows {
				return nil
			}
			return fmt.Errorf("Failure looking up solution %q: %v", se.Signature, err)
		}
		if err := json.Unmarshal(result, &se.Result); err != nil {
			return fmt.Errorf("Bad stored result for solution %q: %v", se.Signature, err)
		}
		found = true
		return nil
	}
	pgExecute(ctx, body)
	return
}

// databaseInsert: insert a solution entry into the database,
// leaving any existing entry with the same signature alone.
func (se *solutionEntry) databaseInsert(ctx context.Context) {
	bytes, e := json.Marshal(se.Result)
	if e != nil {
		panic(fmt.Errorf("Failed to marshal solution result %q: %v", se.Signature, e))
	}
	body := func(tx pgx.Tx) (err error) {
		_, err = tx.Exec(ctx,
			"INSERT INTO solutions (signature, result, solveMillis, created) "+
				"VALUES ($1, $2, $3, $4) ON CONFLICT (signature) DO NOTHING",
			se.Signature, bytes, se.SolveMillis, time.Now())
		if err != nil {
			err = fmt.Errorf("Database error saving solution entry %q: %v", se.Signature, err)
		}
		return
	}
	pgExecute(ctx, body)
}

// The pips command solves a single Pips puzzle and prints the
// solved grid.  The puzzle comes from a JSON description file,
// or from a screenshot via the extraction service:
//
//	pips puzzle.json
//	pips -image screenshot.png
//	pips -image screenshot.png -timeout 10s -v
//
// Exit status is 0 for a solved puzzle, 1 for an unsolvable one,
// 2 for a search that hit the timeout, and 3 for bad input.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/DavidBellamy/pips/extract"
	"github.com/DavidBellamy/pips/puzzle"
)

var (
	verbose = flag.Bool("v", false, "log progress details")
	timeout = flag.Duration("timeout", 0, "give up on the search after this long")
	image   = flag.String("image", "", "extract the puzzle from this screenshot")
	retries = flag.Int("retry", 1, "extraction retries when the model output fails validation")
)

func main() {
	flag.Parse()
	log.SetOutput(os.Stderr)
	if *verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	summary, err := loadSummary()
	if err != nil {
		log.Error(err)
		os.Exit(3)
	}
	board, err := puzzle.New(summary)
	if err != nil {
		log.Errorf("Invalid puzzle description: %v", err)
		os.Exit(3)
	}
	log.WithFields(log.Fields{
		"cells":     len(board.Positions()),
		"regions":   len(board.Regions()),
		"tiles":     len(board.Tiles()),
		"signature": board.Signature(),
	}).Debug("loaded puzzle")

	solver := puzzle.NewSolver(board)
	if *timeout > 0 {
		solver.SetDeadline(time.Now().Add(*timeout))
	}
	start := time.Now()
	solved := solver.Solve()
	log.WithField("elapsed", time.Since(start)).Debug("search finished")

	switch {
	case solved:
		fmt.Println(board.String())
	case solver.Aborted():
		fmt.Printf("No answer within %v.\n", *timeout)
		os.Exit(2)
	default:
		fmt.Println("No solution exists.")
		os.Exit(1)
	}
}

// loadSummary reads the puzzle description named by the command
// line, extracting from a screenshot when -image is given.
func loadSummary() (*puzzle.Summary, error) {
	if *image != "" {
		extractor := extract.NewExtractor()
		extractor.Retries = *retries
		log.WithField("image", *image).Debug("extracting puzzle from screenshot")
		return extractor.ExtractFile(context.Background(), *image)
	}
	if flag.NArg() != 1 {
		return nil, fmt.Errorf("usage: pips [flags] puzzle.json (or pips -image screenshot.png)")
	}
	return readSummaryFile(flag.Arg(0))
}

// readSummaryFile loads a puzzle description from a JSON file.
func readSummaryFile(path string) (*puzzle.Summary, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't read puzzle file %q: %v", path, err)
	}
	var summary puzzle.Summary
	if err := json.Unmarshal(bytes, &summary); err != nil {
		return nil, fmt.Errorf("puzzle file %q is not valid JSON: %v", path, err)
	}
	return &summary, nil
}

// Bring the Pips storage system up to date: apply any pending
// schema migrations and load the sample puzzles.  Safe to run
// repeatedly; an up-to-date database is left alone.
package main

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/DavidBellamy/pips/dbprep"
)

func main() {
	log.Info("Preparing data storage...")
	if err := dbprep.EnsureData(context.Background()); err != nil {
		log.Fatalf("Couldn't prepare storage: %v", err)
	}
	version, err := dbprep.SchemaVersion()
	if err != nil {
		log.Fatalf("Couldn't read schema version: %v", err)
	}
	log.Infof("Database ready at schema version %d.", version)
}

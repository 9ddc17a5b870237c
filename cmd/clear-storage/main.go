// Clear and re-initialize the Pips storage system: flush the
// cache, drop the database schema, and rebuild both from
// scratch.  Everything stored so far is lost.
package main

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/DavidBellamy/pips/dbprep"
)

func main() {
	log.Info("Removing existing data storage and cache...")
	if err := dbprep.ReinitializeAll(context.Background()); err != nil {
		log.Fatalf("Couldn't clear storage: %v", err)
	}
	log.Info("Database re-initialized.")
}

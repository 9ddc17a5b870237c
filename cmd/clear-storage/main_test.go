package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DavidBellamy/pips/dbprep"
)

func TestClearStorage(t *testing.T) {
	os.Setenv("PIPS_MIGRATIONS", filepath.Join("..", "..", "dbprep", "migrations"))
	if err := dbprep.ClearCache(); err != nil {
		t.Skipf("No cache available: %v", err)
	}
	if _, err := dbprep.SchemaVersion(); err != nil {
		t.Skipf("No database available: %v", err)
	}
	if err := dbprep.ReinitializeAll(context.Background()); err != nil {
		t.Errorf("%v", err)
	}
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/DavidBellamy/pips/puzzle"
	"github.com/DavidBellamy/pips/storage"
)

// testMux wires the handlers the way main does, so tests exercise
// the same dispatch and panic protection as the real server.
func testMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", protect(homeHandler))
	mux.HandleFunc("/api/solve", protect(solveHandler))
	mux.HandleFunc("/api/summary", protect(summaryHandler))
	return mux
}

// solveBody builds the JSON request body for a small solvable
// puzzle (a 1x2 board whose one cage must sum to total) and
// returns it with the puzzle's signature.
func solveBody(t *testing.T, total int) (io.Reader, string) {
	t.Helper()
	value := total
	summary := &puzzle.Summary{
		Rows: 1, Cols: 2,
		Regions: []puzzle.RegionSummary{{
			Positions:  []puzzle.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}},
			Constraint: puzzle.ConstraintSummary{Type: puzzle.NumberConstraintType, Value: &value},
		}},
	}
	board, err := puzzle.New(summary)
	if err != nil {
		t.Fatalf("couldn't build test puzzle: %v", err)
	}
	body, err := json.Marshal(summary)
	if err != nil {
		t.Fatalf("couldn't marshal test puzzle: %v", err)
	}
	return bytes.NewReader(body), board.Signature()
}

// setStorageReady flips the storage flag for a test and restores
// it afterward.
func setStorageReady(t *testing.T, ready bool) {
	t.Helper()
	saved := storageReady
	storageReady = ready
	t.Cleanup(func() { storageReady = saved })
}

func TestSolveWithoutStorage(t *testing.T) {
	// with storage down the server still answers solve requests,
	// it just can't cache or track sessions
	setStorageReady(t, false)
	srv := httptest.NewServer(testMux())
	defer srv.Close()

	body, _ := solveBody(t, 7)
	resp, err := http.Post(srv.URL+"/api/solve", "application/json", body)
	if err != nil {
		t.Fatalf("solve request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("solve returned status %d", resp.StatusCode)
	}
	var result puzzle.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("couldn't decode solve response: %v", err)
	}
	if !result.Solvable || len(result.Placements) != 1 {
		t.Errorf("degraded solve answered %+v", result)
	}
	if len(resp.Cookies()) != 0 {
		t.Errorf("degraded solve set cookies: %v", resp.Cookies())
	}

	// malformed descriptions still get a 400
	resp2, err := http.Post(srv.URL+"/api/solve", "application/json",
		strings.NewReader("not json"))
	if err != nil {
		t.Fatalf("bad solve request failed: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusBadRequest {
		t.Errorf("bad description returned status %d", resp2.StatusCode)
	}
}

func TestHomeWithoutStorage(t *testing.T) {
	setStorageReady(t, false)
	srv := httptest.NewServer(testMux())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("home request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("home returned status %d", resp.StatusCode)
	}
	page, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(page), "Pips: Solver") {
		t.Errorf("home page doesn't look like the solver page")
	}

	// unknown paths are 404, not the solver page
	resp2, err := http.Get(srv.URL + "/no/such/path")
	if err != nil {
		t.Fatalf("bad path request failed: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("unknown path returned status %d", resp2.StatusCode)
	}
}

func TestServerWithStorage(t *testing.T) {
	// the full flow needs live Redis and Postgres; skip without them
	os.Setenv("PIPS_MIGRATIONS", filepath.Join("..", "..", "dbprep", "migrations"))
	if _, _, err := storage.Connect(context.Background()); err != nil {
		t.Skipf("storage unavailable: %v", err)
	}
	t.Cleanup(storage.Close)
	setStorageReady(t, true)

	srv := httptest.NewServer(testMux())
	defer srv.Close()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("couldn't make cookie jar: %v", err)
	}
	client := &http.Client{Jar: jar}

	// the home page issues a session cookie
	resp, err := client.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("home request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("home returned status %d", resp.StatusCode)
	}
	cookies := resp.Cookies()
	if len(cookies) != 1 || cookies[0].Name != "pips-session" {
		t.Fatalf("home page cookies are %v", cookies)
	}

	// solve the same puzzle twice in this session: the first call
	// does the search, the second is answered from the cache, and
	// both must agree
	postSolve := func() *puzzle.Result {
		body, _ := solveBody(t, 7)
		resp, err := client.Post(srv.URL+"/api/solve", "application/json", body)
		if err != nil {
			t.Fatalf("solve request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("solve returned status %d", resp.StatusCode)
		}
		var result puzzle.Result
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			t.Fatalf("couldn't decode solve response: %v", err)
		}
		return &result
	}
	first := postSolve()
	if !first.Solvable || len(first.Placements) != 1 {
		t.Fatalf("solve answered %+v", first)
	}
	second := postSolve()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached answer %+v differs from solved answer %+v", second, first)
	}

	// the session's history now shows the puzzle on the home page
	_, signature := solveBody(t, 7)
	resp2, err := client.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("home request failed: %v", err)
	}
	defer resp2.Body.Close()
	page, _ := io.ReadAll(resp2.Body)
	if !strings.Contains(string(page), signature) {
		t.Errorf("home page doesn't list solved puzzle %q", signature)
	}
}

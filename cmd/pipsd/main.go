// The pipsd command serves the Pips solver over the web.  It
// offers a browser page at / and a JSON API underneath /api/:
//
//	POST /api/solve    solve a puzzle description
//	POST /api/summary  canonicalize a description, get its signature
//	POST /api/extract  pull a description out of a screenshot
//
// When the storage layer is reachable, solved puzzles are cached
// by signature and each browser session keeps a history of the
// puzzles it has solved.  When storage is down, the server keeps
// answering solve requests; it just does the work every time.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/DavidBellamy/pips/client"
	"github.com/DavidBellamy/pips/extract"
	"github.com/DavidBellamy/pips/puzzle"
	"github.com/DavidBellamy/pips/storage"
)

// storageReady records whether Connect succeeded at startup.
// Handlers consult it before touching the cache or sessions.
var storageReady bool

func main() {
	cacheId, databaseId, err := storage.Connect(context.Background())
	if err != nil {
		log.Warnf("Running without storage (no caching, no sessions): %v", err)
	} else {
		storageReady = true
		defer storage.Close()
		log.WithFields(log.Fields{
			"cache":    cacheId,
			"database": databaseId,
		}).Info("Connected to storage")
	}

	http.HandleFunc("/", protect(homeHandler))
	http.HandleFunc("/api/solve", protect(solveHandler))
	http.HandleFunc("/api/summary", protect(summaryHandler))
	http.HandleFunc("/api/extract", protect(extractHandler))

	// Heroku environment port sensing
	port := os.Getenv("PORT")
	if port == "" {
		// running locally in dev mode
		port = "localhost:8080"
	} else {
		// running as a true server
		port = ":" + port
	}

	log.Infof("Listening on %s...", port)
	if err := http.ListenAndServe(port, nil); err != nil {
		log.Fatalf("Listener failure: %v", err)
	}
}

/*

Handlers

*/

// homeHandler serves the solver page.  With storage up, the page
// gets the browser's session and its solve history; without,
// it gets an anonymous page.
func homeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound,
			fmt.Sprintf("No handler for %q", r.URL.Path))
		return
	}
	log.Infof("Handling %s %s...", r.Method, r.URL.Path)
	var sessionID string
	var history []string
	if storageReady {
		session := storage.SessionFor(w, r)
		sessionID = session.SID
		history = session.History()
	}
	body := client.SolverPage(sessionID, "", history)
	hs := w.Header()
	hs.Add("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

// solveHandler answers a solve request, going through the
// solution cache when storage is up.  The cookie has to be
// settled before any body bytes go out, so the session is
// fetched first.
func solveHandler(w http.ResponseWriter, r *http.Request) {
	log.Infof("Handling %s %s...", r.Method, r.URL.Path)
	if !storageReady {
		if _, err := puzzle.SolveHandler(w, r); err != nil {
			log.Warnf("Solve failed: %v", err)
		}
		return
	}

	ctx := r.Context()
	session := storage.SessionFor(w, r)
	dec := json.NewDecoder(r.Body)
	var summary puzzle.Summary
	if e := dec.Decode(&summary); e != nil {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("Request body is not a valid puzzle description: %v", e))
		return
	}
	board, e := puzzle.New(&summary)
	if e != nil {
		if err, ok := e.(puzzle.Error); ok {
			err.Message = err.Error()
			respondJSON(w, http.StatusBadRequest, err)
		} else {
			respondError(w, http.StatusBadRequest, e.Error())
		}
		return
	}
	signature := board.Signature()

	if result, found := storage.LoadSolution(ctx, signature); found {
		log.WithField("signature", signature).Info("Answering solve from cache")
		session.RecordSolve(signature)
		respondJSON(w, http.StatusOK, result)
		return
	}

	solver := puzzle.NewSolver(board)
	solver.SetDeadline(time.Now().Add(puzzle.DefaultSolveTimeout))
	start := time.Now()
	solved := solver.Solve()
	elapsed := time.Since(start)
	result := puzzle.NewResult(board, solved, solver.Aborted())
	log.WithFields(log.Fields{
		"signature": signature,
		"solvable":  result.Solvable,
		"aborted":   result.Aborted,
		"elapsed":   elapsed,
	}).Info("Solved puzzle")

	storage.SavePuzzle(ctx, board)
	storage.SaveSolution(ctx, signature, result, elapsed)
	session.RecordSolve(signature)
	respondJSON(w, http.StatusOK, result)
}

// summaryHandler checks and canonicalizes a puzzle description
// without solving it.
func summaryHandler(w http.ResponseWriter, r *http.Request) {
	log.Infof("Handling %s %s...", r.Method, r.URL.Path)
	if _, err := puzzle.SummaryHandler(w, r); err != nil {
		log.Warnf("Summary failed: %v", err)
	}
}

// extractHandler reads a screenshot from the request body and
// answers with the extracted puzzle description and signature.
func extractHandler(w http.ResponseWriter, r *http.Request) {
	log.Infof("Handling %s %s...", r.Method, r.URL.Path)
	image, e := io.ReadAll(r.Body)
	if e != nil || len(image) == 0 {
		respondError(w, http.StatusBadRequest, "Request body must be a screenshot image")
		return
	}
	extractor := extract.NewExtractor()
	summary, e := extractor.Extract(r.Context(), image)
	if e != nil {
		log.Warnf("Extraction failed: %v", e)
		respondError(w, http.StatusBadGateway,
			fmt.Sprintf("Couldn't extract a puzzle from the image: %v", e))
		return
	}
	board, e := puzzle.New(summary)
	if e != nil {
		// ValidatePayload already ran the description through
		// the loader, so this is unexpected.
		respondError(w, http.StatusInternalServerError, e.Error())
		return
	}
	response := struct {
		Signature string          `json:"signature"`
		Summary   *puzzle.Summary `json:"summary"`
	}{board.Signature(), board.Summarize()}
	respondJSON(w, http.StatusOK, response)
}

/*

Utilities

*/

// protect wraps a handler so that a storage panic (or any other
// panic) becomes a 500 response instead of a dead goroutine.
func protect(handler func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Errorf("Handler panic on %s %s: %v", r.Method, r.URL.Path, err)
				respondError(w, http.StatusInternalServerError,
					fmt.Sprintf("Server failure: %v", err))
			}
		}()
		handler(w, r)
	}
}

// respondJSON encodes obj as the response body.  Encoding
// failures should never happen; if one does, the client gets a
// hand-built JSON string instead.
func respondJSON(w http.ResponseWriter, status int, obj interface{}) {
	bytes, e := json.Marshal(obj)
	if e != nil {
		log.Errorf("Couldn't encode response: %v", e)
		status = http.StatusInternalServerError
		bytes = []byte(fmt.Sprintf("%q", e.Error()))
	}
	hs := w.Header()
	hs.Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bytes)
}

// respondError sends a JSON error body with the given message.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, struct {
		Message string `json:"message"`
	}{message})
}

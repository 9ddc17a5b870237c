package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/gomodule/redigo/redis"
	log "github.com/sirupsen/logrus"
)

// A Session tracks one browser's activity with the solver.  The
// session itself is a small Redis hash; next to it lives the
// solve history, a Redis list of the puzzle signatures the user
// has submitted, most recent last.
type Session struct {
	SID     string // session ID
	Created string // RFC3339 time when the session was created
	Saved   string // RFC3339 time when the session was last saved
}

// cookieName is the browser cookie that carries the session ID.
const cookieName = "pips-session"

// historyLimit bounds the solve history per session; older
// entries are trimmed away.
const historyLimit = 50

/*

session lookup

*/

// SessionFor finds or creates the session for a request, and
// sets the session cookie on the response.  Panics on storage
// failure.
func SessionFor(w http.ResponseWriter, r *http.Request) *Session {
	session := &Session{}
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		session.SID = cookie.Value
		if session.lookup() {
			session.save()
			setCookie(w, session.SID)
			return session
		}
	}
	// no usable cookie: make a fresh session
	session.SID = newSessionID()
	session.Created = time.Now().Format(time.RFC3339)
	session.save()
	setCookie(w, session.SID)
	log.WithField("session", session.SID).Info("created new session")
	return session
}

// newSessionID makes a fresh random session ID.  Session IDs
// are bearer tokens for the solve history, so they come from
// the system's cryptographic randomness.
func newSessionID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		panic(fmt.Errorf("Failed to generate session ID: %v", err))
	}
	return hex.EncodeToString(bytes)
}

func setCookie(w http.ResponseWriter, sid string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
	})
}

// lookup: fill the session in from the cache.  Returns whether
// a saved session with this ID exists.
func (session *Session) lookup() (found bool) {
	body := func(tx redis.Conn) error {
		vals, err := redis.Values(tx.Do("HGETALL", session.key()))
		if err != nil {
			return fmt.Errorf("Cache failure loading session %q: %v", session.SID, err)
		}
		if len(vals) == 0 {
			return nil
		}
		if err := redis.ScanStruct(vals, session); err != nil {
			return fmt.Errorf("Failed to parse saved session %q: %v", session.SID, err)
		}
		found = true
		return nil
	}
	rdExecute(body)
	return
}

// save: write the session hash, updating the saved time.
func (session *Session) save() {
	session.Saved = time.Now().Format(time.RFC3339)
	body := func(tx redis.Conn) (err error) {
		_, err = tx.Do("HMSET", redis.Args{}.Add(session.key()).AddFlat(session)...)
		if err != nil {
			err = fmt.Errorf("Cache failure saving session %q: %v", session.SID, err)
		}
		return
	}
	rdExecute(body)
}

/*

solve history

*/

// RecordSolve appends a puzzle signature to the session's solve
// history, trimming the history to its size bound.  Panics on
// storage failure.
func (session *Session) RecordSolve(signature string) {
	body := func(tx redis.Conn) (err error) {
		tx.Send("RPUSH", session.historyKey(), signature)
		_, err = tx.Do("LTRIM", session.historyKey(), -historyLimit, -1)
		if err != nil {
			err = fmt.Errorf("Cache failure recording solve for session %q: %v", session.SID, err)
		}
		return
	}
	rdExecute(body)
}

// History returns the session's solve history, oldest first.
// Panics on storage failure.
func (session *Session) History() []string {
	var signatures []string
	body := func(tx redis.Conn) (err error) {
		signatures, err = redis.Strings(tx.Do("LRANGE", session.historyKey(), 0, -1))
		if err != nil {
			err = fmt.Errorf("Cache failure reading history for session %q: %v", session.SID, err)
		}
		return
	}
	rdExecute(body)
	return signatures
}

/*

session key generation

*/

// key - returns the session key
func (session *Session) key() string {
	return "SID:" + session.SID
}

// historyKey - returns the key for the session's solve history
func (session *Session) historyKey() string {
	return session.key() + ":History"
}

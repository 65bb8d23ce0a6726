package console

import (
	"sync"

	"github.com/google/uuid"
)

// Ticket identifies one navigation within a Session.
type Ticket struct {
	seq    uint64
	Target string
}

// Session tracks the navigation of one viewer. Every navigation hands out a
// new ticket; a fetch started under an older ticket must not be shown once
// a newer navigation has happened.
type Session struct {
	ID string

	mu  sync.Mutex
	seq uint64
}

// NewSession creates a Session with a fresh ID.
func NewSession() *Session {
	return &Session{ID: uuid.New().String()}
}

// Navigate records a navigation to target and returns its ticket.
func (s *Session) Navigate(target string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return Ticket{seq: s.seq, Target: target}
}

// Current reports whether t is the latest navigation. A result fetched
// under a ticket that is no longer current is stale and is discarded.
func (s *Session) Current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.seq == s.seq
}

// Commit runs show under the session lock if t is still current, so that a
// newer navigation cannot slip in between the check and the update. It
// reports whether show ran.
func (s *Session) Commit(t Ticket, show func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.seq != s.seq {
		return false
	}
	show()
	return true
}

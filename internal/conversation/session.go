package conversation

import (
	"sync/atomic"

	"github.com/ashureev/campus-assistant/internal/domain"
)

// Session is a live conversation: its snapshot, log and ticket form.
// At most one turn is in flight at a time.
type Session struct {
	header   domain.Session
	snapshot *domain.Snapshot
	log      *Log
	form     *FormController

	pending atomic.Bool
	closed  atomic.Bool
}

// ID returns the session id.
func (s *Session) ID() string { return s.header.ID }

// UserID returns the owner of the session.
func (s *Session) UserID() string { return s.header.UserID }

// Snapshot returns the session's read-only context snapshot.
func (s *Session) Snapshot() *domain.Snapshot { return s.snapshot }

// Log returns the session's conversation log.
func (s *Session) Log() *Log { return s.log }

// Form returns the session's ticket form controller.
func (s *Session) Form() *FormController { return s.form }

// Pending reports whether a turn is in flight.
func (s *Session) Pending() bool { return s.pending.Load() }

// Closed reports whether the session has been disposed.
func (s *Session) Closed() bool { return s.closed.Load() }

func (s *Session) beginTurn() bool {
	return s.pending.CompareAndSwap(false, true)
}

func (s *Session) endTurn() {
	s.pending.Store(false)
}

func (s *Session) close() {
	if s.closed.CompareAndSwap(false, true) {
		s.log.Close()
	}
}

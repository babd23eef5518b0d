package cover

import "sync"

// Session is the explicit per-school workflow session handle: the school
// scope, its cache side channel and the hydration bookkeeping. Created at
// session start, torn down on school switch; nothing here is ambient.
type Session struct {
	SchoolID string

	mu        sync.Mutex
	hydrating bool
	hydrated  bool
}

func NewSession(schoolID string) *Session {
	return &Session{SchoolID: schoolID}
}

// Hydrated reports whether a remote hydration has completed for this session.
// A deferred or failed fetch leaves it false so a later attempt retries.
func (s *Session) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// beginHydration acquires the in-flight guard. Returns false when another
// hydration is already running for this session.
func (s *Session) beginHydration() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hydrating {
		return false
	}
	s.hydrating = true
	return true
}

func (s *Session) endHydration(completed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrating = false
	if completed {
		s.hydrated = true
	}
}

package structure

import (
	"sync"
	"time"

	"dockergen/internal/metrics"
	"dockergen/internal/tree"
)

// session is one user's editing history. history[cursor] is the current
// snapshot; entries after cursor are redo steps.
type session struct {
	mu       sync.Mutex
	history  []*tree.Tree
	cursor   int
	lastSeen time.Time
}

func (s *session) current() *tree.Tree {
	return s.history[s.cursor]
}

// commit makes next the current snapshot, dropping redo steps and the oldest
// entries beyond limit.
func (s *session) commit(next *tree.Tree, limit int) {
	s.history = append(s.history[:s.cursor+1], next)
	if limit > 0 && len(s.history) > limit+1 {
		s.history = s.history[len(s.history)-(limit+1):]
	}
	s.cursor = len(s.history) - 1
}

func (s *session) undo() bool {
	if s.cursor == 0 {
		return false
	}
	s.cursor--
	return true
}

func (s *session) redo() bool {
	if s.cursor == len(s.history)-1 {
		return false
	}
	s.cursor++
	return true
}

// SessionStore maps session ids to editing histories. Idle sessions are
// removed lazily once they have been unused for longer than the TTL. When a
// session cap is set, creating a session beyond it evicts the least recently
// used one.
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*session
	ttl       time.Duration
	limit     int
	max       int
	newIDs    func() tree.IDAllocator
	now       func() time.Time
	lastSweep time.Time
}

// NewSessionStore creates a store. limit bounds the undo depth; ttl <= 0
// disables expiry. newIDs supplies the allocator for each new session.
func NewSessionStore(ttl time.Duration, limit int, newIDs func() tree.IDAllocator) *SessionStore {
	if newIDs == nil {
		newIDs = func() tree.IDAllocator { return tree.NewCounterAllocator() }
	}
	return &SessionStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
		limit:    limit,
		newIDs:   newIDs,
		now:      time.Now,
	}
}

// WithMaxSessions caps the number of live sessions; n <= 0 means no cap.
func (st *SessionStore) WithMaxSessions(n int) *SessionStore {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.max = n
	return st
}

// get returns the session for id, creating it with an empty forest on first use.
func (st *SessionStore) get(id string) *session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	st.sweepLocked(now)

	s, ok := st.sessions[id]
	if !ok {
		if st.max > 0 && len(st.sessions) >= st.max {
			st.evictOldestLocked()
		}
		s = &session{history: []*tree.Tree{tree.New(st.newIDs())}}
		st.sessions[id] = s
		metrics.SetSessionsActive(len(st.sessions))
	}
	s.lastSeen = now
	return s
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// evictOldestLocked drops the session that was used least recently.
func (st *SessionStore) evictOldestLocked() {
	oldestID := ""
	var oldest time.Time
	for id, s := range st.sessions {
		if oldestID == "" || s.lastSeen.Before(oldest) {
			oldestID, oldest = id, s.lastSeen
		}
	}
	if oldestID != "" {
		delete(st.sessions, oldestID)
		metrics.RecordSessionEviction()
	}
}

// sweepLocked drops expired sessions, at most once per tenth of the TTL.
func (st *SessionStore) sweepLocked(now time.Time) {
	if st.ttl <= 0 || now.Sub(st.lastSweep) < st.ttl/10 {
		return
	}
	st.lastSweep = now

	for id, s := range st.sessions {
		if now.Sub(s.lastSeen) > st.ttl {
			delete(st.sessions, id)
		}
	}
	metrics.SetSessionsActive(len(st.sessions))
}

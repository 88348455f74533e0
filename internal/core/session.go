package core

import (
	"sync"
	"time"

	"github.com/JonMunkholm/explorer/internal/dataset"
)

// DefaultIdleTimeout is how long an untouched session is kept.
const DefaultIdleTimeout = 30 * time.Minute

// Session is one browser's loaded dataset.
type Session struct {
	ID         string
	FileName   string
	CacheKey   string
	Table      *dataset.Table
	UploadedAt time.Time
	LastSeen   time.Time
}

// SessionStore tracks the current table of every live session.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	idle     time.Duration
	now      func() time.Time
}

// NewSessionStore keeps sessions until they have been idle for idle.
func NewSessionStore(idle time.Duration) *SessionStore {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		idle:     idle,
		now:      time.Now,
	}
}

// Get returns a copy of the session and marks it as seen.
func (s *SessionStore) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	sess.LastSeen = s.now()
	return *sess, true
}

// Replace installs a new table for the session and returns the cache key of
// the table it displaced, if any.
func (s *SessionStore) Replace(id, fileName, cacheKey string, table *dataset.Table) (previousKey string) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.sessions[id]; ok {
		previousKey = old.CacheKey
	}
	s.sessions[id] = &Session{
		ID:         id,
		FileName:   fileName,
		CacheKey:   cacheKey,
		Table:      table,
		UploadedAt: now,
		LastSeen:   now,
	}
	return previousKey
}

// Sweep removes sessions idle for longer than the timeout and returns them.
func (s *SessionStore) Sweep() []Session {
	cutoff := s.now().Add(-s.idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []Session
	for id, sess := range s.sessions {
		if sess.LastSeen.Before(cutoff) {
			expired = append(expired, *sess)
			delete(s.sessions, id)
		}
	}
	return expired
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

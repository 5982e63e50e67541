package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-lookup/internal/weather"
)

var (
	// ErrNotFound is returned when no session exists for an id.
	ErrNotFound = errors.New("session not found")
)

// session is one UI session and the query state it owns.
type session struct {
	orchestrator *weather.Orchestrator
	lastSeen     time.Time
}

// SessionStore is a concurrency-safe in-memory map of session id to Orchestrator.
type SessionStore struct {
	mu sync.RWMutex

	// key: session id
	data map[string]*session

	newOrchestrator func() *weather.Orchestrator
	now             func() time.Time

	// retention configuration
	maxSessions int           // max number of live sessions
	maxAge      time.Duration // idle time after which a session is swept
}

// NewSessionStore creates a SessionStore. factory builds the Orchestrator of each new
// session. If maxSessions or maxAge is <= 0, it is treated as unlimited.
func NewSessionStore(maxSessions int, maxAge time.Duration, factory func() *weather.Orchestrator) *SessionStore {
	return &SessionStore{
		data:            make(map[string]*session),
		newOrchestrator: factory,
		now:             time.Now,
		maxSessions:     maxSessions,
		maxAge:          maxAge,
	}
}

// Get returns the Orchestrator of an existing session and marks it as seen.
func (s *SessionStore) Get(id string) (*weather.Orchestrator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.data[id]
	if !ok || s.expired(sess) {
		return nil, ErrNotFound
	}
	sess.lastSeen = s.now()
	return sess.orchestrator, nil
}

// GetOrCreate returns the session for id, starting a new one under a fresh id when
// id is unknown or expired. created reports whether a new session was started.
func (s *SessionStore) GetOrCreate(id string) (sessionID string, o *weather.Orchestrator, created bool) {
	if id != "" {
		if o, err := s.Get(id); err == nil {
			return id, o, false
		}
	}

	sessionID = uuid.NewString()
	o = s.newOrchestrator()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[sessionID] = &session{orchestrator: o, lastSeen: s.now()}

	// Enforce retention by count, dropping the least recently seen.
	for s.maxSessions > 0 && len(s.data) > s.maxSessions {
		s.evictOldest(sessionID)
	}
	return sessionID, o, true
}

// Sweep removes sessions idle for longer than maxAge and returns how many were removed.
func (s *SessionStore) Sweep() int {
	if s.maxAge <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.data {
		if s.expired(sess) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired ones included until swept.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *SessionStore) expired(sess *session) bool {
	return s.maxAge > 0 && s.now().Sub(sess.lastSeen) > s.maxAge
}

// evictOldest drops the least recently seen session other than keep. Callers hold mu.
func (s *SessionStore) evictOldest(keep string) {
	var (
		oldestID string
		oldestAt time.Time
	)
	for id, sess := range s.data {
		if id == keep {
			continue
		}
		if oldestID == "" || sess.lastSeen.Before(oldestAt) {
			oldestID = id
			oldestAt = sess.lastSeen
		}
	}
	if oldestID == "" {
		return
	}
	delete(s.data, oldestID)
}

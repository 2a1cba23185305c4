package store

import (
	"math/rand"
	"sync"

	"github.com/aaronzipp/officially-sus-arena/internal/game"
)

// SessionStore maps room codes to live sessions
type SessionStore struct {
	sessions map[string]*game.Session
	mu       sync.RWMutex
}

// NewSessionStore creates a new session store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*game.Session),
	}
}

// Create allocates a unique room code drawn from rng (crypto/rand when nil)
// and stores the session built for it
func (s *SessionStore) Create(rng *rand.Rand, build func(code string) *game.Session) *game.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := game.GetUniqueRoomCode(rng, func(code string) bool {
		_, exists := s.sessions[code]
		return exists
	})
	session := build(code)
	s.sessions[code] = session
	return session
}

// Get retrieves a session by code
func (s *SessionStore) Get(code string) (*game.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[code]
	return session, exists
}

// Delete removes a session, but only if code still maps to it
func (s *SessionStore) Delete(code string, session *game.Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.sessions[code]; ok && current == session {
		delete(s.sessions, code)
		return true
	}
	return false
}

// Exists checks if a room code exists
func (s *SessionStore) Exists(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.sessions[code]
	return exists
}

// List returns every stored session
func (s *SessionStore) List() []*game.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]*game.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// Len returns the number of stored sessions
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

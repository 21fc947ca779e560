package memory

import (
	"sync"

	"codecrafter-quiz/internal/app"
	"codecrafter-quiz/internal/domain"
)

// SessionStore is an in-memory registry of live play sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Runtime
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Runtime),
	}
}

func (s *SessionStore) Add(rt *app.Runtime) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[rt.ID()] = rt
}

func (s *SessionStore) Get(id string) (*app.Runtime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rt, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return rt, nil
}

func (s *SessionStore) Touch(string) {}

func (s *SessionStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

package redis

import (
	"context"
	"sync"
	"time"

	"codecrafter-quiz/internal/app"
	"codecrafter-quiz/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps live play sessions in a local map and marks their
// liveness in Redis so other instances can see how many sessions are open.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Runtime
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Runtime),
	}
}

func (s *SessionStore) Add(rt *app.Runtime) {
	s.mu.Lock()
	s.sessions[rt.ID()] = rt
	s.mu.Unlock()
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(rt.ID()), "1", s.ttl).Err()
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

// Touch extends the liveness marker of an active session.
func (s *SessionStore) Touch(id string) {
	if s.ttl <= 0 {
		return
	}
	_ = s.client.Expire(context.Background(), s.key(id), s.ttl).Err()
}

func (s *SessionStore) Remove(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), s.key(id)).Err()
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) key(id string) string {
	return "quiz:session:" + id
}

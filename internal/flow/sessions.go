package flow

import (
	"sync"
	"time"

	"github.com/RomaniumSSS/My-first-project/internal/models"
)

// SessionStore keeps per-user conversation sessions in memory. Sessions are
// ephemeral: a restart drops everything and users resume from idle. Crisis
// mode survives restarts because it lives on the User record, not here.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]models.Session)}
}

// Get returns the session for a user key, creating an idle one when absent.
func (s *SessionStore) Get(userKey string) models.Session {
	s.mu.RLock()
	sess, ok := s.sessions[userKey]
	s.mu.RUnlock()
	if ok {
		return sess
	}
	return models.NewSession(userKey)
}

// Set stores the session, stamping UpdatedAt.
func (s *SessionStore) Set(sess models.Session) {
	sess.UpdatedAt = time.Now()
	s.mu.Lock()
	s.sessions[sess.UserKey] = sess
	s.mu.Unlock()
}

// Clear resets the user's session to idle, discarding scratch data.
func (s *SessionStore) Clear(userKey string) {
	s.mu.Lock()
	delete(s.sessions, userKey)
	s.mu.Unlock()
}

// Len reports the number of active sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

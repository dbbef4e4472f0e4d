package auth

import (
	"sync"
	"time"

	"github.com/gudson/kpi/domain/entity"
)

type session struct {
	principal *entity.Principal
	expiresAt time.Time
}

func (s session) expired(now time.Time) bool {
	return !s.expiresAt.IsZero() && !now.Before(s.expiresAt)
}

// SessionRegistry keeps the principals of open sessions in process memory.
// Sessions do not survive a restart.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]session
	now      func() time.Time
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]session),
		now:      time.Now,
	}
}

// Open registers a session and drops every session that has expired since.
func (r *SessionRegistry) Open(id string, principal *entity.Principal, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for k, s := range r.sessions {
		if s.expired(now) {
			delete(r.sessions, k)
		}
	}
	r.sessions[id] = session{principal: principal, expiresAt: expiresAt}
}

// Get returns the principal of a live session. Expired sessions are dropped.
func (r *SessionRegistry) Get(id string) (*entity.Principal, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.expired(r.now()) {
		r.Close(id)
		return nil, false
	}
	return s.principal, true
}

func (r *SessionRegistry) Close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len counts registered sessions. Expired ones stay counted until the next
// Open or lookup removes them.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

package session

import (
	"sync"

	"github.com/google/uuid"
)

// Registry serves the multi-tenant HTTP deployment: one live session per
// authenticated user, created on first use. Each user's bus and services
// remain private to that user exactly as under the single-seat Manager.
type Registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	deps     Deps
}

// NewRegistry creates an empty session registry.
func NewRegistry(deps Deps) *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		deps:     deps,
	}
}

// ForUser returns the user's session, creating it if absent.
func (r *Registry) ForUser(userID uuid.UUID) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[userID]; ok {
		return s
	}
	s := newSession(userID, r.deps)
	r.sessions[userID] = s
	return s
}

// Evict closes and removes the user's session, if any. Called on logout.
func (r *Registry) Evict(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[userID]; ok {
		s.Close()
		delete(r.sessions, userID)
	}
}

// Shutdown closes every live session. Called on server shutdown.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		s.Close()
		delete(r.sessions, id)
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

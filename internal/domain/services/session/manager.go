package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/treviro/treviro_service/pkg/logger"
)

// Manager is the lifecycle coordinator for a single-seat deployment: at most
// one session is active at a time. Activating a different user tears the
// current session down first, so stale subscriptions never outlive the user
// they were registered for.
type Manager struct {
	mu     sync.Mutex
	active *Session
	deps   Deps
	logger *logger.Logger
}

// NewManager creates a manager with no active session.
func NewManager(deps Deps) *Manager {
	return &Manager{
		deps:   deps,
		logger: deps.Logger,
	}
}

// Activate transitions to ServicesActive(userID). Activating the already
// active user returns the existing session unchanged; activating a different
// user replaces the session teardown-first.
func (m *Manager) Activate(userID uuid.UUID) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		if m.active.UserID() == userID {
			return m.active
		}
		m.logger.Infow("replacing active session",
			"previous_user_id", m.active.UserID(),
			"user_id", userID,
		)
		m.active.Close()
		m.active = nil
	}

	m.active = newSession(userID, m.deps)
	return m.active
}

// Deactivate transitions back to NoUser. Safe to call with no active session.
func (m *Manager) Deactivate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return
	}
	m.active.Close()
	m.active = nil
}

// Current returns the active session, or nil in the NoUser state.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

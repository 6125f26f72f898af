package session

import "fmt"

// Manager owns the set of connected sessions, keyed by client id.
// Following the teacher's registry/session-manager convention, ids are
// caller-supplied (assigned by internal/daemon's id generator) rather than
// generated here.
type Manager struct {
	sessions map[uint32]*Session
}

// NewManager returns an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[uint32]*Session)}
}

// Create registers a new session. Returns an error if id is already in use.
func (m *Manager) Create(s *Session) error {
	if _, exists := m.sessions[s.ID]; exists {
		return fmt.Errorf("session %d already registered", s.ID)
	}
	m.sessions[s.ID] = s
	return nil
}

// Get returns the session for id, or an error if none exists.
func (m *Manager) Get(id uint32) (*Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %d not found", id)
	}
	return s, nil
}

// Remove deletes the session for id. It is a no-op if no such session
// exists.
func (m *Manager) Remove(id uint32) {
	delete(m.sessions, id)
}

// All returns every currently connected session, in no particular order.
func (m *Manager) All() []*Session {
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Count returns the number of connected sessions.
func (m *Manager) Count() int {
	return len(m.sessions)
}

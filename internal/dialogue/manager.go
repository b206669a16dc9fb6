package dialogue

import "sync"

// Manager tracks at most one open session per conversation key.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Begin opens a new session for key, cancelling any session already open.
func (m *Manager) Begin(key string) *Session {
	s := NewSession()
	m.mu.Lock()
	prev := m.sessions[key]
	m.sessions[key] = s
	m.mu.Unlock()
	if prev != nil {
		prev.Cancel()
	}
	return s
}

func (m *Manager) Active(key string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	return s, ok
}

// Cancel discards the open session for key and reports whether there was one.
func (m *Manager) Cancel(key string) bool {
	m.mu.Lock()
	s, ok := m.sessions[key]
	delete(m.sessions, key)
	m.mu.Unlock()
	if ok {
		s.Cancel()
	}
	return ok
}

// End forgets the session for key if it is still s.
func (m *Manager) End(key string, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[key] == s {
		delete(m.sessions, key)
	}
}

package game

import (
	"fmt"
	"strings"
	"sync"
)

// Manager holds the sessions for every configured game and tracks which
// one is current. Map access is guarded; the sessions themselves rely on
// the dispatcher running one command at a time.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	order    []string
	current  *Session
}

// NewManager creates an empty session registry.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Add registers a session. The first session added becomes current.
func (m *Manager) Add(session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(session.Folder())
	if _, exists := m.sessions[key]; !exists {
		m.order = append(m.order, session.Folder())
	}
	m.sessions[key] = session
	if m.current == nil {
		m.current = session
	}
}

// Current returns the active session.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Session looks up the session for the named game folder without
// changing which session is current.
func (m *Manager) Session(folder string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[strings.ToLower(folder)]
	return session, ok
}

// ChangeGame switches the active session to the named game folder.
func (m *Manager) ChangeGame(folder string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[strings.ToLower(folder)]
	if !ok {
		return nil, fmt.Errorf("no session for game folder %q", folder)
	}
	m.current = session
	return session, nil
}

// Folders returns the registered game folders in registration order.
func (m *Manager) Folders() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

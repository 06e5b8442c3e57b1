package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mfreitas/memflash/internal/errors"
)

// Manager tracks live sessions by id. Engines themselves are
// single-writer and lock-free; the manager serializes access to each
// one through With.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*managed
}

type managed struct {
	mu     sync.Mutex
	engine *Engine
}

// NewManager creates an empty session registry.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*managed)}
}

// Create registers a new engine and returns its session id.
func (m *Manager) Create(engine *Engine) string {
	id := uuid.NewString()
	m.mu.Lock()
	m.sessions[id] = &managed{engine: engine}
	m.mu.Unlock()
	return id
}

// With runs fn with exclusive access to the identified session's engine.
func (m *Manager) With(id string, fn func(*Engine) error) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return errors.NewNotFoundError("session", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.engine)
}

// Drop removes a session from the registry. Dropping an unknown id is a
// no-op: ending and abandoning a session converge here.
func (m *Manager) Drop(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

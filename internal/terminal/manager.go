package terminal

import (
	"sync"
	"sync/atomic"
	"time"
)

// Manager tracks independent terminals by ID. Each terminal still owns
// exactly one session; the manager only provides lookup and collective
// shutdown.
type Manager struct {
	mu        sync.RWMutex
	terminals map[string]*Terminal

	closed atomic.Bool
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		terminals: make(map[string]*Terminal),
	}
}

// Create builds and starts a terminal, tracking it until it closes.
func (m *Manager) Create(opts Options) (*Terminal, error) {
	if m.closed.Load() {
		return nil, ErrManagerClosed
	}

	originalOnClose := opts.OnClose
	var term *Terminal
	opts.OnClose = func() {
		m.mu.Lock()
		delete(m.terminals, term.id)
		m.mu.Unlock()

		if originalOnClose != nil {
			originalOnClose()
		}
	}

	term = New(opts)

	// Track before Start so an immediately-exiting child still finds
	// itself in the map when its close callback fires.
	m.mu.Lock()
	m.terminals[term.id] = term
	m.mu.Unlock()

	if err := term.Start(); err != nil {
		m.mu.Lock()
		delete(m.terminals, term.id)
		m.mu.Unlock()
		return nil, err
	}

	return term, nil
}

// Get returns a terminal by ID.
func (m *Manager) Get(id string) (*Terminal, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	term, ok := m.terminals[id]
	return term, ok
}

// List returns all tracked terminals.
func (m *Manager) List() []*Terminal {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Terminal, 0, len(m.terminals))
	for _, term := range m.terminals {
		result = append(result, term)
	}
	return result
}

// Count returns the number of tracked terminals.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.terminals)
}

// Close stops a terminal by ID.
func (m *Manager) Close(id string) error {
	term, ok := m.Get(id)
	if !ok {
		return ErrTerminalNotFound
	}
	term.Stop()
	return nil
}

// Shutdown stops every terminal and waits up to timeout for them to
// finish closing.
func (m *Manager) Shutdown(timeout time.Duration) {
	if m.closed.Swap(true) {
		return
	}

	terminals := m.List()
	for _, term := range terminals {
		term.Stop()
	}

	done := make(chan struct{})
	go func() {
		for _, term := range terminals {
			<-term.Done()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
	}
}

package editor

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/inlet-lang/inlet/pkg/highlight"
	"github.com/inlet-lang/inlet/pkg/notify"
)

// Manager owns the mapping from editor-surface IDs to sessions. It is the
// single place surface lifecycles are tracked; the core packages below it
// hold no global state.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Attach creates a session for a new editor surface and returns it. emit
// receives the surface's debounced change notifications.
func (m *Manager) Attach(ctx context.Context, opts Options, projector highlight.Projector, emit func(notify.Change)) (*Session, error) {
	if projector == nil {
		return nil, errors.New("projector is required")
	}
	if emit == nil {
		emit = func(notify.Change) {}
	}

	id := uuid.NewString()
	s := newSession(id, opts, projector, emit)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	zerolog.Ctx(ctx).Debug().
		Str("session", id).
		Str("field", opts.FieldPath).
		Msg("surface attached")
	return s, nil
}

// Get looks a session up by surface ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Detach closes the surface's session and forgets it.
func (m *Manager) Detach(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return errors.Errorf("no session for surface %q", id)
	}
	return s.Close(ctx)
}

// Len reports how many surfaces are attached.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

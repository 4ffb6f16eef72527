package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"kanban-board-api/internal/docstore"
	"kanban-board-api/internal/models"
)

// Manager owns the sessions of every signed-in user. It is created by the
// composition root; there is no package-level instance.
type Manager struct {
	store  docstore.Store
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	onEvent  func(uid string, ev Event)
	onSignal func(uid, signal string)
}

// Options configures hooks fired for every session.
type Options struct {
	Logger *slog.Logger
	// OnEvent is called after any session's cache changed.
	OnEvent func(uid string, ev Event)
	// OnSignal is called when a UI signal such as "confetti" is raised.
	OnSignal func(uid, signal string)
}

func NewManager(store docstore.Store, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Manager{
		store:    store,
		logger:   opts.Logger,
		sessions: make(map[string]*Session),
		onEvent:  opts.OnEvent,
		onSignal: opts.OnSignal,
	}
}

// SignIn starts (or returns) the session of id, subscribing it to every
// project id is a member of.
func (m *Manager) SignIn(ctx context.Context, id models.Identity) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id.UID]; ok {
		s.Identity = id
		return s, nil
	}
	s := newSession(id)
	if m.onEvent != nil {
		uid := id.UID
		s.Subscribe(func(ev Event) { m.onEvent(uid, ev) })
	}
	cancel, err := m.store.Watch(ctx, id.UID, s.apply)
	if err != nil {
		return nil, fmt.Errorf("subscribe projects: %w", err)
	}
	s.cancel = cancel
	m.sessions[id.UID] = s
	m.logger.Info("session started", "user", id.UID, "projects", len(s.Projects()))
	return s, nil
}

// SignOut tears down the watch and drops the cache.
func (m *Manager) SignOut(uid string) {
	m.mu.Lock()
	s, ok := m.sessions[uid]
	delete(m.sessions, uid)
	m.mu.Unlock()

	if !ok {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	m.logger.Info("session ended", "user", uid)
}

// Get returns the live session of uid.
func (m *Manager) Get(uid string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[uid]
	return s, ok
}

// Project implements board.Snapshots.
func (m *Manager) Project(uid, projectID string) (models.Project, bool) {
	s, ok := m.Get(uid)
	if !ok {
		return models.Project{}, false
	}
	return s.Project(projectID)
}

// Celebrate implements board.Signals.
func (m *Manager) Celebrate(uid string) {
	s, ok := m.Get(uid)
	if !ok {
		return
	}
	s.RaiseConfetti()
	if m.onSignal != nil {
		m.onSignal(uid, "confetti")
	}
}

// TakeConfetti consumes the celebration flag of uid.
func (m *Manager) TakeConfetti(uid string) bool {
	s, ok := m.Get(uid)
	return ok && s.TakeConfetti()
}

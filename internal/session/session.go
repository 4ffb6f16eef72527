// Package session keeps each signed-in user's view of their projects. The view
// is fed only by the document store's watch stream, never by local writes.
package session

import (
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"kanban-board-api/internal/docstore"
	"kanban-board-api/internal/models"
)

// Event is delivered to session observers after the cache changed.
type Event struct {
	Kind      docstore.ChangeKind `json:"kind"`
	ProjectID string              `json:"projectId"`
	Project   *models.Project     `json:"project,omitempty"`
}

// Session is one user's project cache.
type Session struct {
	Identity models.Identity

	mu        sync.RWMutex
	projects  map[string]models.Project
	observers map[uint64]func(Event)
	seq       uint64
	confetti  atomic.Bool
	cancel    func()
}

func newSession(id models.Identity) *Session {
	return &Session{
		Identity:  id,
		projects:  make(map[string]models.Project),
		observers: make(map[uint64]func(Event)),
	}
}

// apply replaces the cached document and notifies observers.
func (s *Session) apply(c docstore.Change) {
	ev := Event{Kind: c.Kind, ProjectID: c.ProjectID}

	s.mu.Lock()
	switch c.Kind {
	case docstore.ChangeRemoved:
		delete(s.projects, c.ProjectID)
	default:
		if c.Project == nil {
			s.mu.Unlock()
			return
		}
		s.projects[c.ProjectID] = *c.Project
		cp := c.Project.Clone()
		ev.Project = &cp
	}
	fns := make([]func(Event), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Project returns a copy of the cached project.
func (s *Session) Project(id string) (models.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return models.Project{}, false
	}
	return p.Clone(), true
}

// Projects returns copies of every cached project, oldest first.
func (s *Session) Projects() []models.Project {
	s.mu.RLock()
	out := make([]models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Subscribe registers fn for future cache changes.
func (s *Session) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	s.seq++
	id := s.seq
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// RaiseConfetti sets the fire-once celebration flag.
func (s *Session) RaiseConfetti() {
	s.confetti.Store(true)
}

// TakeConfetti reports and clears the celebration flag.
func (s *Session) TakeConfetti() bool {
	return s.confetti.Swap(false)
}

// Members returns the member ids of a cached project.
func (s *Session) Members(projectID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[projectID]
	if !ok {
		return nil
	}
	return slices.Clone([]string(p.Members))
}

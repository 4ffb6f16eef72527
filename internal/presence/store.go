// Package presence broadcasts live cursors. Entries are keyed per project and
// user and kept apart from project documents, so cursor traffic never touches
// board writes.
package presence

import (
	"context"
	"strings"
	"time"

	"kanban-board-api/internal/cache"
	"kanban-board-api/internal/models"
)

// Store keeps presence entries that disappear after their ttl.
type Store interface {
	Put(ctx context.Context, projectID string, p models.Presence, ttl time.Duration) error
	Remove(ctx context.Context, projectID, uid string) error
	List(ctx context.Context, projectID string) ([]models.Presence, error)
}

// MemoryStore is a Store for single-process deployments.
type MemoryStore struct {
	entries *cache.Expiring[string, models.Presence]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: cache.New[string, models.Presence]()}
}

func memoryKey(projectID, uid string) string {
	return projectID + "/" + uid
}

func (m *MemoryStore) Put(_ context.Context, projectID string, p models.Presence, ttl time.Duration) error {
	m.entries.Set(memoryKey(projectID, p.UID), p, ttl)
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, projectID, uid string) error {
	m.entries.Delete(memoryKey(projectID, uid))
	return nil
}

func (m *MemoryStore) List(_ context.Context, projectID string) ([]models.Presence, error) {
	m.entries.PurgeExpired()
	prefix := projectID + "/"
	out := []models.Presence{}
	m.entries.Range(func(key string, p models.Presence) bool {
		if strings.HasPrefix(key, prefix) {
			out = append(out, p)
		}
		return true
	})
	sortByUID(out)
	return out, nil
}

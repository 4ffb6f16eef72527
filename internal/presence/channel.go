package presence

import (
	"context"
	"slices"
	"strings"
	"time"

	"kanban-board-api/internal/cache"
	"kanban-board-api/internal/models"
)

const (
	DefaultThrottle = 50 * time.Millisecond
	DefaultIdle     = 30 * time.Second
)

// Channel throttles cursor writes and expires idle cursors.
type Channel struct {
	store    Store
	gate     *cache.Expiring[string, struct{}]
	throttle time.Duration
	idle     time.Duration
	now      func() time.Time
}

// NewChannel builds a channel over store. Zero durations use the defaults.
func NewChannel(store Store, throttle, idle time.Duration) *Channel {
	return newChannel(store, throttle, idle, time.Now)
}

func newChannel(store Store, throttle, idle time.Duration, now func() time.Time) *Channel {
	if throttle <= 0 {
		throttle = DefaultThrottle
	}
	if idle <= 0 {
		idle = DefaultIdle
	}
	return &Channel{
		store:    store,
		gate:     cache.NewWithClock[string, struct{}](now),
		throttle: throttle,
		idle:     idle,
		now:      now,
	}
}

// Move records the cursor of who in projectID. At most one write per
// throttle interval goes through; it reports whether this one did.
func (c *Channel) Move(ctx context.Context, projectID string, who models.Identity, theme string, cursor models.Cursor) (bool, error) {
	if !c.gate.SetIfAbsent(memoryKey(projectID, who.UID), struct{}{}, c.throttle) {
		return false, nil
	}
	p := models.Presence{
		UID:         who.UID,
		DisplayName: who.DisplayName,
		PhotoURL:    who.PhotoURL,
		Theme:       theme,
		Cursor:      &cursor,
		SeenAt:      c.now(),
	}
	if err := c.store.Put(ctx, projectID, p, c.idle); err != nil {
		return false, err
	}
	return true, nil
}

// Leave deletes the presence of uid in projectID, on pointer-leave or unload.
func (c *Channel) Leave(ctx context.Context, projectID, uid string) error {
	c.gate.Delete(memoryKey(projectID, uid))
	return c.store.Remove(ctx, projectID, uid)
}

// Others lists the live presence of everyone in projectID except uid.
func (c *Channel) Others(ctx context.Context, projectID, uid string) ([]models.Presence, error) {
	c.gate.PurgeExpired()
	all, err := c.store.List(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(p models.Presence) bool { return p.UID == uid }), nil
}

func sortByUID(ps []models.Presence) {
	slices.SortFunc(ps, func(a, b models.Presence) int { return strings.Compare(a.UID, b.UID) })
}

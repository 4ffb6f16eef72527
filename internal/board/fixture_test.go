package board

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"kanban-board-api/internal/docstore"
	"kanban-board-api/internal/models"
	"kanban-board-api/internal/notify"
	"kanban-board-api/internal/session"
	"kanban-board-api/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

type fakeDirectory struct {
	users []models.User
}

func (d *fakeDirectory) ByID(_ context.Context, id string) (models.User, error) {
	for _, u := range d.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, ErrUnknownUser
}

func (d *fakeDirectory) SearchPrefix(_ context.Context, field, prefix string, limit int) ([]models.User, error) {
	var out []models.User
	for _, u := range d.users {
		v := u.DisplayName
		if field == "email" {
			v = u.Email
		}
		if strings.HasPrefix(v, prefix) && len(out) < limit {
			out = append(out, u)
		}
	}
	return out, nil
}

type fixture struct {
	t        *testing.T
	ctx      context.Context
	db       *gorm.DB
	store    *docstore.GormStore
	sessions *session.Manager
	clock    *fakeClock
	svc      *Service

	alice, bob, carol models.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.MustDB(t)
	store := docstore.NewGormStore(db, nil)
	sessions := session.NewManager(store, session.Options{})
	clock := &fakeClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	dir := &fakeDirectory{users: []models.User{
		{ID: "u-alice", DisplayName: "Alice", Email: "alice@example.com"},
		{ID: "u-bob", DisplayName: "Bob", Email: "bob@example.com"},
		{ID: "u-carol", DisplayName: "Carol", Email: "carol@example.com"},
		{ID: "u-alfred", DisplayName: "Alfred", Email: "alfred@example.com"},
	}}
	f := &fixture{
		t:        t,
		ctx:      context.Background(),
		db:       db,
		store:    store,
		sessions: sessions,
		clock:    clock,
		svc: NewService(Deps{
			Store:     store,
			Snapshots: sessions,
			Signals:   sessions,
			Users:     dir,
			Notifier:  notify.NewSink(db),
			Clock:     clock.Now,
		}),
	}
	for i, u := range dir.users[:3] {
		id := u.Identity()
		_, err := sessions.SignIn(f.ctx, id)
		require.NoError(t, err)
		switch i {
		case 0:
			f.alice = id
		case 1:
			f.bob = id
		case 2:
			f.carol = id
		}
	}
	return f
}

// board creates a fresh project owned by alice.
func (f *fixture) board() models.Project {
	f.t.Helper()
	p, err := f.svc.CreateProject(f.ctx, f.alice, NewProject{Name: "Launch"})
	require.NoError(f.t, err)
	return f.snap(p.ID)
}

func (f *fixture) snap(projectID string) models.Project {
	f.t.Helper()
	p, ok := f.sessions.Project(f.alice.UID, projectID)
	require.True(f.t, ok, "project %s missing from alice's session", projectID)
	return p
}

func (f *fixture) task(projectID, taskID string) models.Task {
	f.t.Helper()
	p := f.snap(projectID)
	ci, ti, ok := p.FindTask(taskID)
	require.True(f.t, ok, "task %s missing", taskID)
	return p.Columns[ci].Tasks[ti]
}

func (f *fixture) addTask(p models.Project, col int, title string) models.Task {
	f.t.Helper()
	t, err := f.svc.AddTask(f.ctx, f.alice, p.ID, p.Columns[col].ID, NewTask{Title: title})
	require.NoError(f.t, err)
	return t
}

func (f *fixture) join(projectID string, who models.Identity) {
	f.t.Helper()
	inv, err := f.svc.Invite(f.ctx, f.alice, projectID, who.UID)
	require.NoError(f.t, err)
	require.NoError(f.t, f.svc.Accept(f.ctx, who, projectID, inv.ID))
}

func texts(acts []models.Activity) []string {
	out := make([]string, len(acts))
	for i, a := range acts {
		out[i] = a.Text
	}
	return out
}

func requireKind(t *testing.T, err error, k Kind) {
	t.Helper()
	require.Error(t, err)
	require.True(t, IsKind(err, k), "expected kind %d, got %v", k, err)
}

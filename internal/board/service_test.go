package board

import (
	"testing"

	"kanban-board-api/internal/models"

	"github.com/stretchr/testify/require"
)

func TestCreateProject_Defaults(t *testing.T) {
	f := newFixture(t)
	p := f.board()

	require.Equal(t, f.alice.UID, p.OwnerID)
	require.Equal(t, []string{f.alice.UID}, []string(p.Members))
	require.Equal(t, models.DefaultFeatures(), p.Flags())
	require.Equal(t, models.ArchiveNever, p.AutoArchivePeriod)

	terminal := 0
	for _, c := range p.Columns {
		if c.IsTerminal {
			terminal++
		}
	}
	require.Equal(t, 1, terminal)

	_, err := f.svc.CreateProject(f.ctx, f.alice, NewProject{Name: " "})
	requireKind(t, err, KindInvalid)
	_, err = f.svc.CreateProject(f.ctx, f.alice, NewProject{Name: "x", AutoArchivePeriod: "fortnight"})
	requireKind(t, err, KindInvalid)
}

func TestUpdateProject_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	p := f.board()
	f.join(p.ID, f.bob)

	name := "Renamed"
	period := models.ArchiveOneWeek
	requireKind(t, f.svc.UpdateProject(f.ctx, f.bob, p.ID, ProjectPatch{Name: &name}), KindForbidden)
	require.NoError(t, f.svc.UpdateProject(f.ctx, f.alice, p.ID, ProjectPatch{Name: &name, AutoArchivePeriod: &period}))

	got := f.snap(p.ID)
	require.Equal(t, "Renamed", got.Name)
	require.Equal(t, models.ArchiveOneWeek, got.AutoArchivePeriod)

	bad := models.ArchivePeriod("yearly")
	requireKind(t, f.svc.UpdateProject(f.ctx, f.alice, p.ID, ProjectPatch{AutoArchivePeriod: &bad}), KindInvalid)
}

func TestDeleteProject(t *testing.T) {
	f := newFixture(t)
	p := f.board()
	f.join(p.ID, f.bob)

	requireKind(t, f.svc.DeleteProject(f.ctx, f.bob, p.ID), KindForbidden)
	require.NoError(t, f.svc.DeleteProject(f.ctx, f.alice, p.ID))

	_, ok := f.sessions.Project(f.alice.UID, p.ID)
	require.False(t, ok)
	_, ok = f.sessions.Project(f.bob.UID, p.ID)
	require.False(t, ok)
}

func TestColumns_AddRenameMoveDelete(t *testing.T) {
	f := newFixture(t)
	p := f.board()

	review, err := f.svc.AddColumn(f.ctx, f.alice, p.ID, "Review")
	require.NoError(t, err)
	require.False(t, review.IsTerminal)
	require.NoError(t, f.svc.UpdateColumnTitle(f.ctx, f.alice, p.ID, review.ID, "QA"))

	// [To Do, In Progress, Done, QA] -> QA dropped on Done
	require.NoError(t, f.svc.MoveColumn(f.ctx, f.alice, p.ID, review.ID, p.Columns[2].ID))
	snap := f.snap(p.ID)
	require.Equal(t, []string{"To Do", "In Progress", "QA", "Done"},
		[]string{snap.Columns[0].Title, snap.Columns[1].Title, snap.Columns[2].Title, snap.Columns[3].Title})

	require.NoError(t, f.svc.MoveColumn(f.ctx, f.alice, p.ID, review.ID, review.ID))
	require.NoError(t, f.svc.DeleteColumn(f.ctx, f.alice, p.ID, review.ID))
	require.Len(t, f.snap(p.ID).Columns, 3)
}

func TestDeleteColumn_Rejections(t *testing.T) {
	f := newFixture(t)
	p := f.board()
	f.addTask(p, 0, "busy")

	before := boardJSON(t, f.snap(p.ID))
	requireKind(t, f.svc.DeleteColumn(f.ctx, f.alice, p.ID, p.Columns[0].ID), KindPrecondition)
	require.Equal(t, before, boardJSON(t, f.snap(p.ID)))

	requireKind(t, f.svc.DeleteColumn(f.ctx, f.alice, p.ID, p.Columns[2].ID), KindPrecondition)
	requireKind(t, f.svc.DeleteColumn(f.ctx, f.alice, p.ID, "nope"), KindNotFound)
}

func TestRenamedTerminalColumnStillCompletes(t *testing.T) {
	f := newFixture(t)
	p := f.board()
	require.NoError(t, f.svc.UpdateColumnTitle(f.ctx, f.alice, p.ID, p.Columns[2].ID, "Shipped"))

	task := f.addTask(p, 0, "ship it")
	require.NoError(t, f.svc.MoveTask(f.ctx, f.alice, p.ID, task.ID, p.Columns[0].ID, p.Columns[2].ID, 0))
	require.NotNil(t, f.task(p.ID, task.ID).CompletedAt)
}

func TestLabels_DeleteStripsTasks(t *testing.T) {
	f := newFixture(t)
	p := f.board()
	bug, err := f.svc.CreateLabel(f.ctx, f.alice, p.ID, "bug", "red")
	require.NoError(t, err)
	keep, err := f.svc.CreateLabel(f.ctx, f.alice, p.ID, "keep", "green")
	require.NoError(t, err)

	color := "crimson"
	require.NoError(t, f.svc.UpdateLabel(f.ctx, f.alice, p.ID, bug.ID, nil, &color))
	l, ok := f.snap(p.ID).Label(bug.ID)
	require.True(t, ok)
	require.Equal(t, "crimson", l.Color)

	var ids []string
	for _, col := range []int{0, 1} {
		task, err := f.svc.AddTask(f.ctx, f.alice, p.ID, p.Columns[col].ID, NewTask{Title: "t", LabelIDs: []string{bug.ID, keep.ID}})
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}

	require.NoError(t, f.svc.DeleteLabel(f.ctx, f.alice, p.ID, bug.ID))
	snap := f.snap(p.ID)
	require.Len(t, snap.Labels, 1)
	for _, id := range ids {
		require.Equal(t, []string{keep.ID}, f.task(p.ID, id).LabelIDs)
	}
	requireKind(t, f.svc.DeleteLabel(f.ctx, f.alice, p.ID, bug.ID), KindNotFound)
}

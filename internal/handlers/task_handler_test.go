package handlers

import (
	"net/http"
	"testing"

	"kanban-board-api/internal/board"
	"kanban-board-api/internal/models"

	"github.com/stretchr/testify/require"
)

func addTask(t *testing.T, e *env, who account, p models.Project, columnID string, body map[string]any) models.Task {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/projects/"+p.ID+"/columns/"+columnID+"/tasks", who.Token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[struct{ Task models.Task }](t, w).Task
}

func activityTexts(tk models.Task) []string {
	out := make([]string, 0, len(tk.Activity))
	for _, a := range tk.Activity {
		out = append(out, a.Text)
	}
	return out
}

func TestMoveTask_ToTerminalCompletesOnce(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "Alice", "alice@example.com")
	p := e.createProject(t, alice, "Roadmap")
	todo, done := p.Columns[0], p.Columns[2]

	a := addTask(t, e, alice, p, todo.ID, map[string]any{"title": "A"})
	require.Nil(t, a.CompletedAt)

	w := e.do(t, http.MethodPost, "/api/projects/"+p.ID+"/tasks/"+a.ID+"/move", alice.Token, map[string]any{
		"fromColumnId": todo.ID,
		"toColumnId":   done.ID,
		"toIndex":      0,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, true, decode[map[string]any](t, w)["confetti"])

	got := e.project(t, alice, p.ID)
	require.Empty(t, got.Columns[0].Tasks)
	moved := got.Columns[2].Tasks[0]
	require.NotNil(t, moved.CompletedAt)
	require.Equal(t, []string{
		"created this task",
		"moved this task from **To Do** to **Done**",
		"marked this as complete",
	}, activityTexts(moved))

	// the flag is consumed by the first response
	w = e.do(t, http.MethodPatch, "/api/projects/"+p.ID+"/tasks/"+a.ID, alice.Token, map[string]any{"description": "shipped"})
	require.Equal(t, http.StatusOK, w.Code)
	_, again := decode[map[string]any](t, w)["confetti"]
	require.False(t, again)
}

func TestMoveTask_IncompleteSubtasksBlockDone(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "Alice", "alice@example.com")
	p := e.createProject(t, alice, "Roadmap")
	todo, done := p.Columns[0], p.Columns[2]

	parent := addTask(t, e, alice, p, todo.ID, map[string]any{"title": "Parent"})
	addTask(t, e, alice, p, todo.ID, map[string]any{"title": "Child", "parentId": parent.ID})

	w := e.do(t, http.MethodPost, "/api/projects/"+p.ID+"/tasks/"+parent.ID+"/move", alice.Token, map[string]any{
		"fromColumnId": todo.ID,
		"toColumnId":   done.ID,
		"toIndex":      0,
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "incomplete_subtasks", decode[map[string]string](t, w)["code"])

	got := e.project(t, alice, p.ID)
	require.Len(t, got.Columns[0].Tasks, 2)
	require.Empty(t, got.Columns[2].Tasks)
	require.Equal(t, []string{"created this task", "added a sub-task: **Child**"}, activityTexts(got.Columns[0].Tasks[0]))
}

func TestMoveTask_PointerReorderWithinColumn(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "Alice", "alice@example.com")
	p := e.createProject(t, alice, "Roadmap")
	todo := p.Columns[0]

	a := addTask(t, e, alice, p, todo.ID, map[string]any{"title": "A"})
	addTask(t, e, alice, p, todo.ID, map[string]any{"title": "B"})
	addTask(t, e, alice, p, todo.ID, map[string]any{"title": "C"})

	// pointer between B and C: naive index 2, A lands after B
	w := e.do(t, http.MethodPost, "/api/projects/"+p.ID+"/tasks/"+a.ID+"/move", alice.Token, map[string]any{
		"fromColumnId": todo.ID,
		"toColumnId":   todo.ID,
		"pointerY":     95,
		"boxes": []board.Box{
			{Top: 0, Height: 40},
			{Top: 50, Height: 40},
			{Top: 100, Height: 40},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.EqualValues(t, 2, decode[map[string]any](t, w)["index"])

	got := e.project(t, alice, p.ID).Columns[0].Tasks
	require.Equal(t, []string{"B", "A", "C"}, []string{got[0].Title, got[1].Title, got[2].Title})
	require.Len(t, got[1].Activity, 1)
}

func TestMoveTask_NeedsIndexOrPointer(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "Alice", "alice@example.com")
	p := e.createProject(t, alice, "Roadmap")
	a := addTask(t, e, alice, p, p.Columns[0].ID, map[string]any{"title": "A"})

	w := e.do(t, http.MethodPost, "/api/projects/"+p.ID+"/tasks/"+a.ID+"/move", alice.Token, map[string]any{
		"fromColumnId": p.Columns[0].ID,
		"toColumnId":   p.Columns[1].ID,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddTask_InTerminalColumn(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "Alice", "alice@example.com")
	p := e.createProject(t, alice, "Roadmap")

	w := e.do(t, http.MethodPost, "/api/projects/"+p.ID+"/columns/"+p.Columns[2].ID+"/tasks", alice.Token, map[string]any{"title": "Already done"})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode[struct {
		Task     models.Task
		Confetti bool
	}](t, w)
	require.True(t, body.Confetti)
	require.NotNil(t, body.Task.CompletedAt)
}

func TestUpdateTask_DeadlineAndComment(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "Alice", "alice@example.com")
	p := e.createProject(t, alice, "Roadmap")
	a := addTask(t, e, alice, p, p.Columns[0].ID, map[string]any{"title": "A", "deadline": "2026-03-10"})
	require.NotNil(t, a.Deadline)

	w := e.do(t, http.MethodPatch, "/api/projects/"+p.ID+"/tasks/"+a.ID, alice.Token, map[string]any{"deadline": "not a date"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPatch, "/api/projects/"+p.ID+"/tasks/"+a.ID, alice.Token, map[string]any{"deadline": "", "priority": "Urgent"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(t, http.MethodPost, "/api/projects/"+p.ID+"/tasks/"+a.ID+"/comments", alice.Token, map[string]string{"text": "on it"})
	require.Equal(t, http.StatusCreated, w.Code)
	comment := decode[struct{ Comment models.Activity }](t, w).Comment
	require.Equal(t, models.ActivityComment, comment.Type)

	got := e.project(t, alice, p.ID).Columns[0].Tasks[0]
	require.Nil(t, got.Deadline)
	require.Equal(t, models.PriorityUrgent, got.Priority)
	last := got.Activity[len(got.Activity)-1]
	require.Equal(t, "on it", last.Text)
	require.Contains(t, activityTexts(got), "removed the deadline")
}

func TestDeleteTask(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "Alice", "alice@example.com")
	p := e.createProject(t, alice, "Roadmap")
	a := addTask(t, e, alice, p, p.Columns[0].ID, map[string]any{"title": "A"})

	w := e.do(t, http.MethodDelete, "/api/projects/"+p.ID+"/tasks/"+a.ID, alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, e.project(t, alice, p.ID).Columns[0].Tasks)

	w = e.do(t, http.MethodDelete, "/api/projects/"+p.ID+"/tasks/"+a.ID, alice.Token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSweepArchive_NothingToDo(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "Alice", "alice@example.com")
	p := e.createProject(t, alice, "Roadmap")

	w := e.do(t, http.MethodPost, "/api/projects/"+p.ID+"/archive/sweep", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 0, decode[map[string]any](t, w)["archived"])
}

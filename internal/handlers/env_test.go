package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kanban-board-api/internal/auth"
	"kanban-board-api/internal/board"
	"kanban-board-api/internal/docstore"
	"kanban-board-api/internal/middleware"
	"kanban-board-api/internal/models"
	"kanban-board-api/internal/notify"
	"kanban-board-api/internal/presence"
	"kanban-board-api/internal/realtime"
	"kanban-board-api/internal/session"
	"kanban-board-api/internal/testutil"
	"kanban-board-api/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type env struct {
	api      *API
	issuer   *auth.Issuer
	sessions *session.Manager
	router   *gin.Engine
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.MustDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hub := realtime.New()
	store := docstore.NewGormStore(db, logger)
	sessions := session.NewManager(store, session.Options{
		Logger:   logger,
		OnEvent:  SessionEvents(hub),
		OnSignal: Signals(hub),
	})
	repo := users.NewRepo(db)
	sink := notify.NewSink(db)
	svc := board.NewService(board.Deps{
		Store:     store,
		Snapshots: sessions,
		Signals:   sessions,
		Users:     repo,
		Notifier:  sink,
		Logger:    logger,
	})
	issuer := auth.NewIssuer("test-secret", "kanban", "clients", time.Hour)
	api := NewAPI(Deps{
		Board:    svc,
		Sessions: sessions,
		Users:    repo,
		Notes:    sink,
		Presence: presence.NewChannel(presence.NewMemoryStore(), time.Millisecond, time.Minute),
		Hub:      hub,
		Issuer:   issuer,
		Logger:   logger,
	})

	r := gin.New()
	r.POST("/api/register", api.Register)
	r.POST("/api/login", api.Login)
	g := r.Group("/api", middleware.JWTAuthMiddleware(issuer))
	g.POST("/logout", api.Logout)
	b := g.Group("", api.RequireSession())
	b.GET("/ws", api.WebSocket)
	b.GET("/projects", api.ListProjects)
	b.POST("/projects", api.CreateProject)
	b.GET("/projects/:id", api.GetProject)
	b.PATCH("/projects/:id", api.UpdateProject)
	b.DELETE("/projects/:id", api.DeleteProject)
	b.POST("/projects/:id/columns", api.AddColumn)
	b.PATCH("/projects/:id/columns/:columnId", api.UpdateColumn)
	b.DELETE("/projects/:id/columns/:columnId", api.DeleteColumn)
	b.POST("/projects/:id/columns/:columnId/move", api.MoveColumn)
	b.POST("/projects/:id/columns/:columnId/tasks", api.AddTask)
	b.PATCH("/projects/:id/tasks/:taskId", api.UpdateTask)
	b.DELETE("/projects/:id/tasks/:taskId", api.DeleteTask)
	b.POST("/projects/:id/tasks/:taskId/move", api.MoveTask)
	b.POST("/projects/:id/tasks/:taskId/comments", api.AddComment)
	b.POST("/projects/:id/labels", api.CreateLabel)
	b.DELETE("/projects/:id/labels/:labelId", api.DeleteLabel)
	b.GET("/projects/:id/invitable", api.SearchInvitable)
	b.POST("/projects/:id/invitations", api.Invite)
	b.POST("/projects/:id/invitations/:invitationId/accept", api.AcceptInvitation)
	b.POST("/projects/:id/invitations/:invitationId/decline", api.DeclineInvitation)
	b.GET("/invitations", api.ListInvitations)
	b.DELETE("/projects/:id/members/:userId", api.RemoveMember)
	b.POST("/projects/:id/archive/sweep", api.SweepArchive)
	b.GET("/notifications", api.ListNotifications)
	b.POST("/notifications/:id/read", api.MarkNotificationRead)

	return &env{api: api, issuer: issuer, sessions: sessions, router: r}
}

type account struct {
	Token string
	User  models.Identity
}

func (e *env) register(t *testing.T, name, email string) account {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"displayName": name,
		"email":       email,
		"password":    "secret-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return account{Token: resp.Token, User: resp.User}
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// createProject creates a default board and returns it as the owner now sees it.
func (e *env) createProject(t *testing.T, owner account, name string) models.Project {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/projects", owner.Token, map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct{ Project models.Project }](t, w)
	return e.project(t, owner, created.Project.ID)
}

func (e *env) project(t *testing.T, who account, id string) models.Project {
	t.Helper()
	w := e.do(t, http.MethodGet, "/api/projects/"+id, who.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[models.Project](t, w)
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"kanban-board-api/internal/auth"
	"kanban-board-api/internal/board"
	"kanban-board-api/internal/middleware"
	"kanban-board-api/internal/models"
	"kanban-board-api/internal/notify"
	"kanban-board-api/internal/presence"
	"kanban-board-api/internal/realtime"
	"kanban-board-api/internal/session"
	"kanban-board-api/internal/users"

	"github.com/gin-gonic/gin"
)

// API holds the collaborators shared by every handler.
type API struct {
	board    *board.Service
	sessions *session.Manager
	users    *users.Repo
	notes    *notify.Sink
	presence *presence.Channel
	hub      *realtime.Hub
	issuer   *auth.Issuer
	logger   *slog.Logger
}

// Deps bundles what NewAPI needs.
type Deps struct {
	Board    *board.Service
	Sessions *session.Manager
	Users    *users.Repo
	Notes    *notify.Sink
	Presence *presence.Channel
	Hub      *realtime.Hub
	Issuer   *auth.Issuer
	Logger   *slog.Logger
}

func NewAPI(d Deps) *API {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &API{
		board:    d.Board,
		sessions: d.Sessions,
		users:    d.Users,
		notes:    d.Notes,
		presence: d.Presence,
		hub:      d.Hub,
		issuer:   d.Issuer,
		logger:   d.Logger,
	}
}

// RequireSession makes sure the caller has a live project session. Tokens
// outlive process restarts, so the session is started on first use.
func (a *API) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middleware.CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authorized"})
			return
		}
		if _, err := a.sessions.SignIn(c.Request.Context(), id); err != nil {
			a.logger.Error("session start failed", "user", id.UID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load your projects"})
			return
		}
		c.Next()
	}
}

func actor(c *gin.Context) models.Identity {
	id, _ := middleware.CurrentUser(c)
	return id
}

// reply writes body and attaches the celebration flag if a mutation raised it.
func (a *API) reply(c *gin.Context, status int, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	if a.sessions.TakeConfetti(actor(c).UID) {
		body["confetti"] = true
	}
	c.JSON(status, body)
}

// fail maps a service error onto a response.
func (a *API) fail(c *gin.Context, err error) {
	if be, ok := board.AsError(err); ok {
		switch be.Kind {
		case board.KindPrecondition:
			c.JSON(http.StatusConflict, gin.H{"warning": be.Message, "code": be.Code})
		case board.KindForbidden:
			c.JSON(http.StatusForbidden, gin.H{"error": be.Message})
		case board.KindNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": be.Message})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": be.Message})
		}
		return
	}
	if errors.Is(err, board.ErrUnknownUser) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	// already logged at the mutation boundary
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, please try again"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// parseDateFlexible accepts the date layouts the board UI sends.
func parseDateFlexible(dateStr string) (time.Time, bool) {
	if dateStr == "" {
		return time.Time{}, false
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2 Jan 2006",
		"02 Jan 2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"kanban-board-api/internal/docstore"
	"kanban-board-api/internal/models"
	"kanban-board-api/internal/realtime"
	"kanban-board-api/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Server push types.
const (
	EventSnapshot = "snapshot"
	EventProject  = "project"
	EventRemoved  = "removed"
	EventPresence = "presence"
	EventConfetti = "confetti"
)

// wsClient implements realtime.Client by wrapping a websocket connection.
type wsClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsClient) Send(message []byte) bool {
	if c == nil || c.conn == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, message) == nil
}

func (c *wsClient) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
}

func (c *wsClient) Close() {
	if c != nil && c.conn != nil {
		_ = c.conn.Close()
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is handled at the gin level
		return true
	},
}

// clientMessage is what browsers send over the socket.
type clientMessage struct {
	Type      string  `json:"type"`
	ProjectID string  `json:"projectId"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Theme     string  `json:"theme"`
}

// SessionEvents forwards session cache changes to the user's sockets.
func SessionEvents(hub *realtime.Hub) func(uid string, ev session.Event) {
	return func(uid string, ev session.Event) {
		out := realtime.Event{Type: EventProject, ProjectID: ev.ProjectID, Payload: ev.Project}
		if ev.Kind == docstore.ChangeRemoved {
			out = realtime.Event{Type: EventRemoved, ProjectID: ev.ProjectID}
		}
		_ = hub.Send(uid, out)
	}
}

// Signals forwards UI signals to the user's sockets. The HTTP response of the
// mutation still carries the fire-once flag.
func Signals(hub *realtime.Hub) func(uid, signal string) {
	return func(uid, signal string) {
		_ = hub.Send(uid, realtime.Event{Type: signal})
	}
}

// WebSocket upgrades the connection, pushes the session snapshot and then
// relays project changes and cursor presence.
// GET /api/ws
func (a *API) WebSocket(c *gin.Context) {
	id := actor(c)
	s, ok := a.sessions.Get(id.UID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		a.logger.Warn("websocket upgrade failed", "user", id.UID, "error", err)
		return
	}

	client := &wsClient{conn: conn}
	a.hub.Register(id.UID, client)

	snapshot, _ := json.Marshal(realtime.Event{Type: EventSnapshot, Payload: s.Projects()})
	client.Send(snapshot)

	pingTicker := time.NewTicker(30 * time.Second)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-pingTicker.C:
				if err := client.ping(); err != nil {
					// the read loop exits on the next error
					return
				}
			}
		}
	}()

	visited := map[string]struct{}{}
	defer func() {
		close(done)
		pingTicker.Stop()
		a.hub.Unregister(id.UID, client)
		client.Close()
		// best-effort cleanup; the idle timeout covers the rest
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		for pid := range visited {
			a.leave(ctx, id, pid)
		}
	}()

	conn.SetReadLimit(1024)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		ctx := c.Request.Context()
		switch msg.Type {
		case "cursor":
			if _, ok := a.sessions.Project(id.UID, msg.ProjectID); !ok {
				continue
			}
			visited[msg.ProjectID] = struct{}{}
			wrote, err := a.presence.Move(ctx, msg.ProjectID, id, msg.Theme, models.Cursor{X: msg.X, Y: msg.Y})
			if err != nil {
				a.logger.Warn("presence write failed", "user", id.UID, "project", msg.ProjectID, "error", err)
				continue
			}
			if wrote {
				a.broadcastPresence(ctx, id.UID, msg.ProjectID)
			}
		case "leave":
			delete(visited, msg.ProjectID)
			a.leave(ctx, id, msg.ProjectID)
		}
	}
}

func (a *API) leave(ctx context.Context, id models.Identity, projectID string) {
	if err := a.presence.Leave(ctx, projectID, id.UID); err != nil {
		a.logger.Warn("presence delete failed", "user", id.UID, "project", projectID, "error", err)
		return
	}
	a.broadcastPresence(ctx, id.UID, projectID)
}

// broadcastPresence sends every other member of the project the cursors of
// everyone but themselves.
func (a *API) broadcastPresence(ctx context.Context, from, projectID string) {
	s, ok := a.sessions.Get(from)
	if !ok {
		return
	}
	all, err := a.presence.Others(ctx, projectID, "")
	if err != nil {
		a.logger.Warn("presence list failed", "project", projectID, "error", err)
		return
	}
	for _, uid := range s.Members(projectID) {
		if uid == from || !a.hub.Connected(uid) {
			continue
		}
		others := slices.DeleteFunc(slices.Clone(all), func(p models.Presence) bool { return p.UID == uid })
		_ = a.hub.Send(uid, realtime.Event{Type: EventPresence, ProjectID: projectID, Payload: others})
	}
}

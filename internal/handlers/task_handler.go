package handlers

import (
	"net/http"
	"strings"

	"kanban-board-api/internal/board"
	"kanban-board-api/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateTaskRequest represents the request payload for creating a task
type CreateTaskRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	Assignees   []string        `json:"assignees"`
	Deadline    string          `json:"deadline"`
	ParentID    string          `json:"parentId"`
	LabelIDs    []string        `json:"labelIds"`
}

// UpdateTaskRequest represents the request payload for updating a task.
// An empty deadline string clears the deadline.
type UpdateTaskRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Priority    *models.Priority     `json:"priority"`
	Assignees   *[]string            `json:"assignees"`
	Deadline    *string              `json:"deadline"`
	Completed   *bool                `json:"completed"`
	LabelIDs    *[]string            `json:"labelIds"`
	Archived    *bool                `json:"archived"`
	Attachments *[]models.Attachment `json:"attachments"`
}

// MoveTaskRequest carries either an explicit index or the pointer position
// and the rendered card boxes of the destination list. Indexes are counted
// before the dragged card is lifted out.
type MoveTaskRequest struct {
	FromColumnID string      `json:"fromColumnId" binding:"required"`
	ToColumnID   string      `json:"toColumnId" binding:"required"`
	ToIndex      *int        `json:"toIndex"`
	PointerY     *float64    `json:"pointerY"`
	Boxes        []board.Box `json:"boxes"`
}

type commentRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddTask handles POST /api/projects/:id/columns/:columnId/tasks
func (a *API) AddTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request. Task title is required.")
		return
	}
	in := board.NewTask{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Assignees:   req.Assignees,
		ParentID:    req.ParentID,
		LabelIDs:    req.LabelIDs,
	}
	if req.Deadline != "" {
		d, ok := parseDateFlexible(req.Deadline)
		if !ok {
			badRequest(c, "Invalid deadline format")
			return
		}
		in.Deadline = &d
	}
	t, err := a.board.AddTask(c.Request.Context(), actor(c), c.Param("id"), c.Param("columnId"), in)
	if err != nil {
		a.fail(c, err)
		return
	}
	a.reply(c, http.StatusCreated, gin.H{"task": t})
}

// UpdateTask handles PATCH /api/projects/:id/tasks/:taskId
func (a *API) UpdateTask(c *gin.Context) {
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload")
		return
	}
	in := board.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Assignees:   req.Assignees,
		Priority:    req.Priority,
		Completed:   req.Completed,
		LabelIDs:    req.LabelIDs,
		Archived:    req.Archived,
		Attachments: req.Attachments,
	}
	if req.Deadline != nil {
		if strings.TrimSpace(*req.Deadline) == "" {
			in.ClearDeadline = true
		} else {
			d, ok := parseDateFlexible(*req.Deadline)
			if !ok {
				badRequest(c, "Invalid deadline format")
				return
			}
			in.Deadline = &d
		}
	}
	if err := a.board.UpdateTask(c.Request.Context(), actor(c), c.Param("id"), c.Param("taskId"), in); err != nil {
		a.fail(c, err)
		return
	}
	a.reply(c, http.StatusOK, gin.H{"message": "Task updated"})
}

// DeleteTask handles DELETE /api/projects/:id/tasks/:taskId
func (a *API) DeleteTask(c *gin.Context) {
	if err := a.board.DeleteTask(c.Request.Context(), actor(c), c.Param("id"), c.Param("taskId")); err != nil {
		a.fail(c, err)
		return
	}
	a.reply(c, http.StatusOK, gin.H{"message": "Task deleted"})
}

// MoveTask handles POST /api/projects/:id/tasks/:taskId/move
func (a *API) MoveTask(c *gin.Context) {
	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request. fromColumnId and toColumnId are required.")
		return
	}
	var index int
	switch {
	case req.ToIndex != nil:
		index = *req.ToIndex
	case req.PointerY != nil:
		index = board.DropIndex(*req.PointerY, req.Boxes)
	default:
		badRequest(c, "Either toIndex or pointerY is required")
		return
	}
	if index < 0 {
		badRequest(c, "toIndex must not be negative")
		return
	}
	err := a.board.MoveTask(c.Request.Context(), actor(c), c.Param("id"), c.Param("taskId"), req.FromColumnID, req.ToColumnID, index)
	if err != nil {
		a.fail(c, err)
		return
	}
	a.reply(c, http.StatusOK, gin.H{"message": "Task moved", "index": index})
}

// AddComment handles POST /api/projects/:id/tasks/:taskId/comments
func (a *API) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request. Comment text is required.")
		return
	}
	entry, err := a.board.AddComment(c.Request.Context(), actor(c), c.Param("id"), c.Param("taskId"), req.Text)
	if err != nil {
		a.fail(c, err)
		return
	}
	a.reply(c, http.StatusCreated, gin.H{"comment": entry})
}

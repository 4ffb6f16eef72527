package handlers

import (
	"net/http"

	"kanban-board-api/internal/board"
	"kanban-board-api/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateProjectRequest represents the request payload for creating a project
type CreateProjectRequest struct {
	Name              string               `json:"name" binding:"required"`
	Description       string               `json:"description"`
	Features          *models.Features     `json:"features"`
	AutoArchivePeriod models.ArchivePeriod `json:"autoArchivePeriod"`
}

// UpdateProjectRequest represents the editable project settings
type UpdateProjectRequest struct {
	Name              *string               `json:"name"`
	Description       *string               `json:"description"`
	Features          *models.Features      `json:"features"`
	AutoArchivePeriod *models.ArchivePeriod `json:"autoArchivePeriod"`
}

type titleRequest struct {
	Title string `json:"title" binding:"required"`
}

type moveColumnRequest struct {
	TargetID string `json:"targetId" binding:"required"`
}

type labelRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// ListProjects returns the caller's session snapshot.
// GET /api/projects
func (a *API) ListProjects(c *gin.Context) {
	s, ok := a.sessions.Get(actor(c).UID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authorized"})
		return
	}
	projects := s.Projects()
	c.JSON(http.StatusOK, gin.H{"projects": projects, "count": len(projects)})
}

// GetProject returns one project from the caller's snapshot.
// GET /api/projects/:id
func (a *API) GetProject(c *gin.Context) {
	p, ok := a.sessions.Project(actor(c).UID, c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreateProject handles POST /api/projects
func (a *API) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request. Project name is required.")
		return
	}
	p, err := a.board.CreateProject(c.Request.Context(), actor(c), board.NewProject{
		Name:              req.Name,
		Description:       req.Description,
		Features:          req.Features,
		AutoArchivePeriod: req.AutoArchivePeriod,
	})
	if err != nil {
		a.fail(c, err)
		return
	}
	a.reply(c, http.StatusCreated, gin.H{"project": p})
}

// UpdateProject handles PATCH /api/projects/:id
func (a *API) UpdateProject(c *gin.Context) {
	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload")
		return
	}
	err := a.board.UpdateProject(c.Request.Context(), actor(c), c.Param("id"), board.ProjectPatch{
		Name:              req.Name,
		Description:       req.Description,
		Features:          req.Features,
		AutoArchivePeriod: req.AutoArchivePeriod,
	})
	if err != nil {
		a.fail(c, err)
		return
	}
	a.reply(c, http.StatusOK, gin.H{"message": "Project updated"})
}

// DeleteProject handles DELETE /api/projects/:id
func (a *API) DeleteProject(c *gin.Context) {
	if err := a.board.DeleteProject(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		a.fail(c, err)
		return
	}
	a.reply(c, http.StatusOK, gin.H{"message": "Project deleted"})
}

// AddColumn handles POST /api/projects/:id/columns
func (a *API) AddColumn(c *gin.Context) {
	var req titleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request. Column title is required.")
		return
	}
	col, err := a.board.AddColumn(c.Request.Context(), actor(c), c.Param("id"), req.Title)
	if err != nil {
		a.fail(c, err)
		return
	}
	a.reply(c, http.StatusCreated, gin.H{"column": col})
}

// UpdateColumn handles PATCH /api/projects/:id/columns/:columnId
func (a *API) UpdateColumn(c *gin.Context) {
	var req titleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request. Column title is required.")
		return
	}
	if err := a.board.UpdateColumnTitle(c.Request.Context(), actor(c), c.Param("id"), c.Param("columnId"), req.Title); err != nil {
		a.fail(c, err)
		return
	}
	a.reply(c, http.StatusOK, gin.H{"message": "Column updated"})
}

// DeleteColumn handles DELETE /api/projects/:id/columns/:columnId
func (a *API) DeleteColumn(c *gin.Context) {
	if err := a.board.DeleteColumn(c.Request.Context(), actor(c), c.Param("id"), c.Param("columnId")); err != nil {
		a.fail(c, err)
		return
	}
	a.reply(c, http.StatusOK, gin.H{"message": "Column deleted"})
}

// MoveColumn handles POST /api/projects/:id/columns/:columnId/move
func (a *API) MoveColumn(c *gin.Context) {
	var req moveColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request. targetId is required.")
		return
	}
	if err := a.board.MoveColumn(c.Request.Context(), actor(c), c.Param("id"), c.Param("columnId"), req.TargetID); err != nil {
		a.fail(c, err)
		return
	}
	a.reply(c, http.StatusOK, gin.H{"message": "Column moved"})
}

// CreateLabel handles POST /api/projects/:id/labels
func (a *API) CreateLabel(c *gin.Context) {
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == nil {
		badRequest(c, "Invalid request. Label name is required.")
		return
	}
	color := ""
	if req.Color != nil {
		color = *req.Color
	}
	l, err := a.board.CreateLabel(c.Request.Context(), actor(c), c.Param("id"), *req.Name, color)
	if err != nil {
		a.fail(c, err)
		return
	}
	a.reply(c, http.StatusCreated, gin.H{"label": l})
}

// UpdateLabel handles PATCH /api/projects/:id/labels/:labelId
func (a *API) UpdateLabel(c *gin.Context) {
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload")
		return
	}
	if err := a.board.UpdateLabel(c.Request.Context(), actor(c), c.Param("id"), c.Param("labelId"), req.Name, req.Color); err != nil {
		a.fail(c, err)
		return
	}
	a.reply(c, http.StatusOK, gin.H{"message": "Label updated"})
}

// DeleteLabel handles DELETE /api/projects/:id/labels/:labelId
func (a *API) DeleteLabel(c *gin.Context) {
	if err := a.board.DeleteLabel(c.Request.Context(), actor(c), c.Param("id"), c.Param("labelId")); err != nil {
		a.fail(c, err)
		return
	}
	a.reply(c, http.StatusOK, gin.H{"message": "Label deleted"})
}

// SweepArchive handles POST /api/projects/:id/archive/sweep
func (a *API) SweepArchive(c *gin.Context) {
	n, err := a.board.SweepArchive(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		a.fail(c, err)
		return
	}
	a.reply(c, http.StatusOK, gin.H{"archived": n})
}

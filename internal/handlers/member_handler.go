package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type inviteRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// SearchInvitable handles GET /api/projects/:id/invitable?q=
func (a *API) SearchInvitable(c *gin.Context) {
	found, err := a.board.SearchInvitable(c.Request.Context(), actor(c), c.Param("id"), c.Query("q"))
	if err != nil {
		a.fail(c, err)
		return
	}
	resp := make([]UserResponse, 0, len(found))
	for _, u := range found {
		resp = append(resp, UserResponse{ID: u.ID, DisplayName: u.DisplayName, Email: u.Email, PhotoURL: u.PhotoURL})
	}
	c.JSON(http.StatusOK, gin.H{"users": resp, "count": len(resp)})
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// Invite handles POST /api/projects/:id/invitations
func (a *API) Invite(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request. userId is required.")
		return
	}
	inv, err := a.board.Invite(c.Request.Context(), actor(c), c.Param("id"), req.UserID)
	if err != nil {
		a.fail(c, err)
		return
	}
	a.reply(c, http.StatusCreated, gin.H{"invitation": inv})
}

// CancelInvitation handles DELETE /api/projects/:id/invitations/:invitationId
func (a *API) CancelInvitation(c *gin.Context) {
	if err := a.board.CancelInvitation(c.Request.Context(), actor(c), c.Param("id"), c.Param("invitationId")); err != nil {
		a.fail(c, err)
		return
	}
	a.reply(c, http.StatusOK, gin.H{"message": "Invitation cancelled"})
}

// AcceptInvitation handles POST /api/projects/:id/invitations/:invitationId/accept
func (a *API) AcceptInvitation(c *gin.Context) {
	if err := a.board.Accept(c.Request.Context(), actor(c), c.Param("id"), c.Param("invitationId")); err != nil {
		a.fail(c, err)
		return
	}
	a.reply(c, http.StatusOK, gin.H{"message": "Invitation accepted"})
}

// DeclineInvitation handles POST /api/projects/:id/invitations/:invitationId/decline
func (a *API) DeclineInvitation(c *gin.Context) {
	if err := a.board.Decline(c.Request.Context(), actor(c), c.Param("id"), c.Param("invitationId")); err != nil {
		a.fail(c, err)
		return
	}
	a.reply(c, http.StatusOK, gin.H{"message": "Invitation declined"})
}

// ListInvitations handles GET /api/invitations
func (a *API) ListInvitations(c *gin.Context) {
	pending, err := a.board.Invitations(c.Request.Context(), actor(c))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitations": pending, "count": len(pending)})
}

// RemoveMember handles DELETE /api/projects/:id/members/:userId
func (a *API) RemoveMember(c *gin.Context) {
	if err := a.board.RemoveMember(c.Request.Context(), actor(c), c.Param("id"), c.Param("userId")); err != nil {
		a.fail(c, err)
		return
	}
	a.reply(c, http.StatusOK, gin.H{"message": "Member removed"})
}

// LeaveProject handles POST /api/projects/:id/leave
func (a *API) LeaveProject(c *gin.Context) {
	if err := a.board.Leave(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		a.fail(c, err)
		return
	}
	a.reply(c, http.StatusOK, gin.H{"message": "You left the project"})
}

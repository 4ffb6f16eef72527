package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListNotifications handles GET /api/notifications?limit=
func (a *API) ListNotifications(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	notes, err := a.notes.List(c.Request.Context(), actor(c).UID, limit)
	if err != nil {
		a.logger.Error("list notifications", "user", actor(c).UID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}
	unread := 0
	for _, n := range notes {
		if !n.Read {
			unread++
		}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notes, "count": len(notes), "unread": unread})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (a *API) MarkNotificationRead(c *gin.Context) {
	ok, err := a.notes.MarkRead(c.Request.Context(), actor(c).UID, c.Param("id"))
	if err != nil {
		a.logger.Error("mark notification read", "user", actor(c).UID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

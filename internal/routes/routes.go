package routes

import (
	"net/http"

	"kanban-board-api/internal/auth"
	"kanban-board-api/internal/handlers"
	"kanban-board-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(api *handlers.API, issuer *auth.Issuer, corsOrigin string) *gin.Engine {
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", corsOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Kanban board API is running",
		})
	})

	// Public routes (no authentication required)
	public := ginRouter.Group("/api")
	{
		public.POST("/register", api.Register)
		public.POST("/login", api.Login)
	}

	// Protected routes (authentication required)
	protected := ginRouter.Group("/api")
	protected.Use(middleware.JWTAuthMiddleware(issuer))
	protected.POST("/logout", api.Logout)

	board := protected.Group("")
	board.Use(api.RequireSession())
	{
		board.GET("/ws", api.WebSocket)

		board.GET("/projects", api.ListProjects)
		board.POST("/projects", api.CreateProject)
		board.GET("/projects/:id", api.GetProject)
		board.PATCH("/projects/:id", api.UpdateProject)
		board.DELETE("/projects/:id", api.DeleteProject)

		board.POST("/projects/:id/columns", api.AddColumn)
		board.PATCH("/projects/:id/columns/:columnId", api.UpdateColumn)
		board.DELETE("/projects/:id/columns/:columnId", api.DeleteColumn)
		board.POST("/projects/:id/columns/:columnId/move", api.MoveColumn)

		board.POST("/projects/:id/columns/:columnId/tasks", api.AddTask)
		board.PATCH("/projects/:id/tasks/:taskId", api.UpdateTask)
		board.DELETE("/projects/:id/tasks/:taskId", api.DeleteTask)
		board.POST("/projects/:id/tasks/:taskId/move", api.MoveTask)
		board.POST("/projects/:id/tasks/:taskId/comments", api.AddComment)

		board.POST("/projects/:id/labels", api.CreateLabel)
		board.PATCH("/projects/:id/labels/:labelId", api.UpdateLabel)
		board.DELETE("/projects/:id/labels/:labelId", api.DeleteLabel)

		board.GET("/projects/:id/invitable", api.SearchInvitable)
		board.POST("/projects/:id/invitations", api.Invite)
		board.DELETE("/projects/:id/invitations/:invitationId", api.CancelInvitation)
		board.POST("/projects/:id/invitations/:invitationId/accept", api.AcceptInvitation)
		board.POST("/projects/:id/invitations/:invitationId/decline", api.DeclineInvitation)
		board.GET("/invitations", api.ListInvitations)
		board.DELETE("/projects/:id/members/:userId", api.RemoveMember)
		board.POST("/projects/:id/leave", api.LeaveProject)

		board.POST("/projects/:id/archive/sweep", api.SweepArchive)

		board.GET("/notifications", api.ListNotifications)
		board.POST("/notifications/:id/read", api.MarkNotificationRead)
	}

	return ginRouter
}

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"kanban-board-api/internal/auth"
	"kanban-board-api/internal/board"
	"kanban-board-api/internal/models"
	"kanban-board-api/internal/users"

	"github.com/gin-gonic/gin"
)

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	DisplayName string `json:"displayName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	PhotoURL    string `json:"photoURL"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token   string          `json:"token"`
	User    models.Identity `json:"user"`
	Message string          `json:"message"`
}

// Register creates an account and signs it in.
// POST /api/register
func (a *API) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request. Display name, email and a password of at least 6 characters are required.")
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		a.logger.Error("hash password", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}
	u := models.User{
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Email:        req.Email,
		PhotoURL:     req.PhotoURL,
		PasswordHash: hash,
	}
	if err := a.users.Create(c.Request.Context(), &u); err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email is already registered"})
			return
		}
		a.logger.Error("create user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}
	a.signIn(c, http.StatusCreated, u, "Registration successful")
}

// Login checks the password and starts the project session.
// POST /api/login
func (a *API) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request. Email and password are required.")
		return
	}
	u, err := a.users.ByEmail(c.Request.Context(), req.Email)
	if err != nil && !errors.Is(err, board.ErrUnknownUser) {
		a.logger.Error("load user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}
	if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	a.signIn(c, http.StatusOK, u, "Login successful")
}

func (a *API) signIn(c *gin.Context, status int, u models.User, msg string) {
	id := u.Identity()
	token, err := a.issuer.GenerateToken(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	if _, err := a.sessions.SignIn(c.Request.Context(), id); err != nil {
		a.logger.Error("session start failed", "user", id.UID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load your projects"})
		return
	}
	c.JSON(status, LoginResponse{Token: token, User: id, Message: msg})
}

// Logout tears down the caller's session.
// POST /api/logout
func (a *API) Logout(c *gin.Context) {
	a.sessions.SignOut(actor(c).UID)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

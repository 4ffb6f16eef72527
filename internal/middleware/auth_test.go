package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kanban-board-api/internal/auth"
	"kanban-board-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func protected(issuer *auth.Issuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuthMiddleware(issuer))
	r.GET("/protected", func(c *gin.Context) {
		id, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, id.DisplayName)
	})
	return r
}

func TestJWTAuthMiddleware_Success(t *testing.T) {
	issuer := auth.NewIssuer("secret", "kanban", "clients", time.Hour)
	r := protected(issuer)

	token, err := issuer.GenerateToken(models.Identity{UID: "user-1", DisplayName: "Alice"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Alice", w.Body.String())
}

func TestJWTAuthMiddleware_QueryToken(t *testing.T) {
	issuer := auth.NewIssuer("secret", "kanban", "clients", time.Hour)
	r := protected(issuer)

	token, err := issuer.GenerateToken(models.Identity{UID: "user-1", DisplayName: "Alice"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	r := protected(auth.NewIssuer("secret", "kanban", "clients", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_BadToken(t *testing.T) {
	r := protected(auth.NewIssuer("secret", "kanban", "clients", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

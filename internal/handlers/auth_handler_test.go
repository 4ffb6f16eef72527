package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "Alice", "Alice@Example.com")
	require.NotEmpty(t, alice.Token)
	require.Equal(t, "alice@example.com", alice.User.Email)

	w := e.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "alice@example.com", "password": "secret-pass"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[LoginResponse](t, w)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, alice.User.UID, resp.User.UID)

	_, live := e.sessions.Get(alice.User.UID)
	require.True(t, live)
}

func TestLogin_WrongPassword(t *testing.T) {
	e := newEnv(t)
	e.register(t, "Alice", "alice@example.com")

	w := e.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "alice@example.com", "password": "nope-nope"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "nobody@example.com", "password": "secret-pass"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	e := newEnv(t)
	e.register(t, "Alice", "alice@example.com")

	w := e.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"displayName": "Other Alice",
		"email":       "ALICE@example.com",
		"password":    "secret-pass",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_Validation(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodPost, "/api/register", "", map[string]string{"displayName": "A", "email": "not-an-email", "password": "secret-pass"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = e.do(t, http.MethodPost, "/api/register", "", map[string]string{"displayName": "A", "email": "a@example.com", "password": "123"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogout_EndsSessionButTokenRestartsIt(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "Alice", "alice@example.com")
	p := e.createProject(t, alice, "Roadmap")

	w := e.do(t, http.MethodPost, "/api/logout", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, live := e.sessions.Get(alice.User.UID)
	require.False(t, live)

	// a still-valid token starts a fresh session from the store
	got := e.project(t, alice, p.ID)
	require.Equal(t, "Roadmap", got.Name)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodGet, "/api/projects", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

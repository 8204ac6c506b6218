package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storefront/api/models"
)

func TestUsersRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/users", "/api/users/profile"} {
		w := env.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestListUsersAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "Asha", "asha@example.com", "asha", "pw")
	register(t, env, "Ben", "ben@example.com", "ben", "pw")
	token := login(t, env, "asha", "pw")

	w := env.do(t, http.MethodGet, "/api/users", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 2)
	assert.NotContains(t, w.Body.String(), "assword")

	role := "viewer"
	_, err := env.users.UpdateUser(context.Background(), 1, models.UserUpdate{Role: &role})
	require.NoError(t, err)

	w = env.do(t, http.MethodGet, "/api/users", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Forbidden", errorOf(t, w))
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "Asha", "asha@example.com", "asha", "pw")
	register(t, env, "Ben", "ben@example.com", "ben", "pw")
	token := login(t, env, "asha", "pw")

	w := env.do(t, http.MethodPut, "/api/users/profile", map[string]string{"email": "BEN@example.com"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already in use", errorOf(t, w))

	w = env.do(t, http.MethodPut, "/api/users/profile", map[string]string{"username": "ben"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username already in use", errorOf(t, w))

	w = env.do(t, http.MethodPut, "/api/users/profile", map[string]string{
		"name": "Asha K", "email": "Asha.K@example.com", "password": "new", "role": "viewer",
	}, token)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode[map[string]any](t, w)["user"].(map[string]any)
	assert.Equal(t, "Asha K", user["name"])
	assert.Equal(t, "asha.k@example.com", user["email"])
	assert.Equal(t, "admin", user["role"])

	stored, err := env.users.GetUserByID(context.Background(), 1)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword(stored.HashedPassword, []byte("new")))
}

func TestAdminUpdateUser(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "Asha", "asha@example.com", "asha", "pw")
	register(t, env, "Ben", "ben@example.com", "ben", "pw")
	token := login(t, env, "asha", "pw")

	w := env.do(t, http.MethodPut, "/api/users/2", map[string]string{"role": "editor", "name": ""}, token)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode[map[string]any](t, w)["user"].(map[string]any)
	assert.Equal(t, "editor", user["role"])
	assert.Equal(t, "Ben", user["name"])

	w = env.do(t, http.MethodPut, "/api/users/42", map[string]string{"name": "X"}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", errorOf(t, w))
}

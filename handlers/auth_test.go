package handlers

import (
	"net/http"
	"testing"

	"lexcase_api_go/middleware"
	"lexcase_api_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterHandler(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("Creates client by default", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
			"name": "Ana Cliente", "email": "Ana@Example.com", "password": "password123",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		user := decode[models.User](t, rec)
		assert.Equal(t, models.RoleClient, user.Role)
		assert.Equal(t, "ana@example.com", user.Email)
		assert.NotContains(t, rec.Body.String(), "password123")
	})

	t.Run("Duplicate email", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
			"name": "Ana Again", "email": "ana@example.com", "password": "password123",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Admin cannot self-register", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
			"name": "Root", "email": "root@example.com", "password": "password123", "role": models.RoleAdmin,
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Short password", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
			"name": "Short", "email": "short@example.com", "password": "abc",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLoginHandler(t *testing.T) {
	s := newTestServer(t, nil)
	s.seedUser(t, models.RoleAdvocate, "adv@test.com")

	t.Run("Valid credentials", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "adv@test.com", "password": "password123",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decode[LoginResponse](t, rec)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "adv@test.com", resp.User.Email)

		var found bool
		for _, cookie := range rec.Result().Cookies() {
			if cookie.Name == middleware.SessionCookieName {
				found = true
				assert.Equal(t, resp.Token, cookie.Value)
				assert.True(t, cookie.HttpOnly)
			}
		}
		assert.True(t, found, "session cookie should be set")

		me := s.do(t, http.MethodGet, "/api/auth/me", resp.Token, nil)
		assert.Equal(t, http.StatusOK, me.Code)
	})

	t.Run("Wrong password", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "adv@test.com", "password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"invalid email or password"}`, rec.Body.String())
	})

	t.Run("Missing fields", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "adv@test.com"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogoutHandler(t *testing.T) {
	s := newTestServer(t, nil)
	_, token := s.seedUser(t, models.RoleClient, "client@test.com")

	rec := s.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSetUserActiveHandler(t *testing.T) {
	s := newTestServer(t, nil)
	_, adminToken := s.seedUser(t, models.RoleAdmin, "admin@test.com")
	client, clientToken := s.seedUser(t, models.RoleClient, "client@test.com")

	t.Run("Non-admin rejected", func(t *testing.T) {
		rec := s.do(t, http.MethodPut, "/api/admin/users/"+client.ID+"/active", clientToken, map[string]bool{"active": false})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Disabling revokes sessions", func(t *testing.T) {
		rec := s.do(t, http.MethodPut, "/api/admin/users/"+client.ID+"/active", adminToken, map[string]bool{"active": false})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.False(t, decode[models.User](t, rec).IsActive)

		rec = s.do(t, http.MethodGet, "/api/auth/me", clientToken, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

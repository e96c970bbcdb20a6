package handlers

import (
	"net/http"
	"time"

	"lexcase_api_go/middleware"
	"lexcase_api_go/models"
	"lexcase_api_go/services"

	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse returns the token in the body for clients that cannot hold
// cookies
type LoginResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// RegisterHandler handles POST /api/auth/signup
func (h *Handler) RegisterHandler(c echo.Context) error {
	var in services.RegisterInput
	if err := bind(c, &in); err != nil {
		return err
	}
	user, err := h.Users.Register(ctx(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// LoginHandler handles POST /api/auth/login
func (h *Handler) LoginHandler(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Email == "" || req.Password == "" {
		return services.Validation("email and password are required")
	}

	user, session, err := h.Users.Login(ctx(c), req.Email, req.Password, h.Config.SessionTTL, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return err
	}
	middleware.SetSessionCookie(c, session, h.Config.IsProduction())
	return c.JSON(http.StatusOK, LoginResponse{User: user, Token: session.Token, ExpiresAt: session.ExpiresAt})
}

// LogoutHandler handles POST /api/auth/logout
func (h *Handler) LogoutHandler(c echo.Context) error {
	if session := middleware.GetCurrentSession(c); session != nil {
		if err := h.Users.Logout(ctx(c), session.Token); err != nil {
			return err
		}
	}
	middleware.ClearSessionCookie(c, h.Config.IsProduction())
	return done(c, "logged out")
}

// MeHandler handles GET /api/auth/me
func (h *Handler) MeHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.GetCurrentUser(c))
}

// GetUserHandler handles GET /api/users/:id
func (h *Handler) GetUserHandler(c echo.Context) error {
	user, err := h.Users.Get(ctx(c), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

type activeRequest struct {
	Active bool `json:"active"`
}

// SetUserActiveHandler handles PUT /api/admin/users/:id/active
func (h *Handler) SetUserActiveHandler(c echo.Context) error {
	var req activeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.Users.SetActive(ctx(c), actor(c), c.Param("id"), req.Active)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

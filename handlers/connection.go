package handlers

import (
	"net/http"

	"lexcase_api_go/models"
	"lexcase_api_go/services"

	"github.com/labstack/echo/v4"
)

type connectionRequest struct {
	RecipientID    string `json:"recipient_id"`
	ConnectionType string `json:"connection_type"`
	Message        string `json:"message"`
}

type respondRequest struct {
	Message string `json:"message"`
}

// RequestConnectionHandler handles POST /api/connections/request
func (h *Handler) RequestConnectionHandler(c echo.Context) error {
	var req connectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	conn, err := h.Connections.Request(ctx(c), actor(c), req.RecipientID, req.ConnectionType, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, conn)
}

func (h *Handler) AcceptConnectionHandler(c echo.Context) error {
	var req respondRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	conn, err := h.Connections.Accept(ctx(c), actor(c), c.Param("id"), req.Message)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conn)
}

func (h *Handler) RejectConnectionHandler(c echo.Context) error {
	var req respondRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	conn, err := h.Connections.Reject(ctx(c), actor(c), c.Param("id"), req.Message)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conn)
}

func (h *Handler) RemoveConnectionHandler(c echo.Context) error {
	if err := h.Connections.Remove(ctx(c), actor(c), c.Param("id")); err != nil {
		return err
	}
	return done(c, "connection removed")
}

func (h *Handler) GetConnectionHandler(c echo.Context) error {
	conn, err := h.Connections.Get(ctx(c), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conn)
}

// ListConnectionsHandler handles GET /api/connections
func (h *Handler) ListConnectionsHandler(c echo.Context) error {
	conns, err := h.Connections.List(ctx(c), actor(c), services.ConnectionFilter{
		Status: c.QueryParam("status"),
		Type:   c.QueryParam("type"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conns)
}

// ReceivedRequestsHandler handles GET /api/connections/requests/received
func (h *Handler) ReceivedRequestsHandler(c echo.Context) error {
	conns, err := h.Connections.Pending(ctx(c), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conns)
}

// SentRequestsHandler handles GET /api/connections/requests/sent
func (h *Handler) SentRequestsHandler(c echo.Context) error {
	conns, err := h.Connections.Sent(ctx(c), actor(c), c.QueryParam("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conns)
}

// searchHandler lists active professionals of one role
func (h *Handler) searchHandler(role string) echo.HandlerFunc {
	return func(c echo.Context) error {
		page, limit := pageParams(c)
		users, total, err := h.Connections.SearchProfessionals(ctx(c), role, c.QueryParam("search"), page, limit)
		if err != nil {
			return err
		}
		return list(c, users, total)
	}
}

func (h *Handler) SearchAdvocatesHandler(c echo.Context) error {
	return h.searchHandler(models.RoleAdvocate)(c)
}

func (h *Handler) SearchParalegalsHandler(c echo.Context) error {
	return h.searchHandler(models.RoleParalegal)(c)
}

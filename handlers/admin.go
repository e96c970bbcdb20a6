package handlers

import (
	"errors"
	"net/http"

	"lexcase_api_go/services/jobs"

	"github.com/labstack/echo/v4"
)

func (h *Handler) poller() (Poller, error) {
	if h.Poller == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "reminder poller is not configured")
	}
	return h.Poller, nil
}

// PollerStatusHandler handles GET /api/admin/poller
func (h *Handler) PollerStatusHandler(c echo.Context) error {
	p, err := h.poller()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p.Status())
}

// StartPollerHandler handles POST /api/admin/poller/start
func (h *Handler) StartPollerHandler(c echo.Context) error {
	p, err := h.poller()
	if err != nil {
		return err
	}
	if err := p.Start(); err != nil {
		if errors.Is(err, jobs.ErrPollerRunning) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, p.Status())
}

// StopPollerHandler handles POST /api/admin/poller/stop
func (h *Handler) StopPollerHandler(c echo.Context) error {
	p, err := h.poller()
	if err != nil {
		return err
	}
	if err := p.Stop(); err != nil {
		if errors.Is(err, jobs.ErrPollerStopped) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, p.Status())
}

// TickPollerHandler handles POST /api/admin/poller/tick and runs one pass now
func (h *Handler) TickPollerHandler(c echo.Context) error {
	p, err := h.poller()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p.Tick(ctx(c)))
}

// SecurityAlertsHandler handles GET /api/admin/security/alerts
func (h *Handler) SecurityAlertsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Users.Monitor.RecentAlerts())
}

// MaintainHandler handles POST /api/admin/maintenance
func (h *Handler) MaintainHandler(c echo.Context) error {
	p, err := h.poller()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p.Maintain(ctx(c)))
}

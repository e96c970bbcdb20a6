package handlers

import (
	"net/http"
	"time"

	"lexcase_api_go/models"
	"lexcase_api_go/services"

	"github.com/labstack/echo/v4"
)

func reminderFilter(c echo.Context) services.ReminderFilter {
	page, limit := pageParams(c)
	return services.ReminderFilter{
		Status: c.QueryParam("status"),
		Type:   c.QueryParam("type"),
		Page:   page,
		Limit:  limit,
	}
}

// CreateReminderHandler handles POST /api/reminders
func (h *Handler) CreateReminderHandler(c echo.Context) error {
	var in services.ReminderInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r, err := h.Reminders.Create(ctx(c), actor(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, r)
}

// ListRemindersHandler handles GET /api/reminders
func (h *Handler) ListRemindersHandler(c echo.Context) error {
	reminders, total, err := h.Reminders.ListMine(ctx(c), actor(c), reminderFilter(c))
	if err != nil {
		return err
	}
	return list(c, reminders, total)
}

// UpcomingRemindersHandler handles GET /api/reminders/upcoming?days=N
func (h *Handler) UpcomingRemindersHandler(c echo.Context) error {
	reminders, err := h.Reminders.Upcoming(ctx(c), actor(c), queryInt(c, "days", services.DefaultUpcomingDays))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reminders)
}

func (h *Handler) CaseRemindersHandler(c echo.Context) error {
	reminders, total, err := h.Reminders.ListForCase(ctx(c), actor(c), c.Param("caseId"), reminderFilter(c))
	if err != nil {
		return err
	}
	return list(c, reminders, total)
}

func (h *Handler) GetReminderHandler(c echo.Context) error {
	r, err := h.Reminders.Get(ctx(c), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) UpdateReminderHandler(c echo.Context) error {
	var in services.ReminderInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r, err := h.Reminders.Update(ctx(c), actor(c), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

// CancelReminderHandler handles DELETE /api/reminders/:id
func (h *Handler) CancelReminderHandler(c echo.Context) error {
	r, err := h.Reminders.Cancel(ctx(c), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

type snoozeRequest struct {
	Minutes int `json:"minutes"`
}

func (h *Handler) SnoozeReminderHandler(c echo.Context) error {
	var req snoozeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Minutes == 0 {
		req.Minutes = models.DefaultSnoozeMinutes
	}
	r, err := h.Reminders.Snooze(ctx(c), actor(c), c.Param("id"), req.Minutes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) DismissReminderHandler(c echo.Context) error {
	r, err := h.Reminders.Dismiss(ctx(c), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

// CleanupRemindersHandler handles DELETE /api/reminders/cleanup?days=N (admin)
func (h *Handler) CleanupRemindersHandler(c echo.Context) error {
	olderThan := time.Duration(queryInt(c, "days", 0)) * 24 * time.Hour
	n, err := h.Reminders.DeleteOld(ctx(c), olderThan)
	if err != nil {
		return err
	}
	return counted(c, "old reminders deleted", n)
}

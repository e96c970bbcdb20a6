package handlers

import (
	"net/http"

	"lexcase_api_go/services"

	"github.com/labstack/echo/v4"
)

func notificationFilter(c echo.Context) services.NotificationFilter {
	page, limit := pageParams(c)
	return services.NotificationFilter{
		UnreadOnly: c.QueryParam("unread") == "true",
		Type:       c.QueryParam("type"),
		Priority:   c.QueryParam("priority"),
		Page:       page,
		Limit:      limit,
	}
}

// ListNotificationsHandler handles GET /api/notifications?unread=true&type=&priority=
func (h *Handler) ListNotificationsHandler(c echo.Context) error {
	items, err := h.Notifications.List(ctx(c), actor(c), notificationFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// NotificationsByTypeHandler handles GET /api/notifications/type/:type
func (h *Handler) NotificationsByTypeHandler(c echo.Context) error {
	f := notificationFilter(c)
	f.Type = c.Param("type")
	items, err := h.Notifications.List(ctx(c), actor(c), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// NotificationsByPriorityHandler handles GET /api/notifications/priority/:priority
func (h *Handler) NotificationsByPriorityHandler(c echo.Context) error {
	f := notificationFilter(c)
	f.Priority = c.Param("priority")
	items, err := h.Notifications.List(ctx(c), actor(c), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UnreadNotificationsHandler(c echo.Context) error {
	n, err := h.Notifications.UnreadCount(ctx(c), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int64{"unread_count": n})
}

func (h *Handler) GetNotificationHandler(c echo.Context) error {
	n, err := h.Notifications.Get(ctx(c), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) MarkNotificationReadHandler(c echo.Context) error {
	n, err := h.Notifications.MarkAsRead(ctx(c), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) MarkAllNotificationsReadHandler(c echo.Context) error {
	n, err := h.Notifications.MarkAllAsRead(ctx(c), actor(c))
	if err != nil {
		return err
	}
	return counted(c, "notifications marked as read", n)
}

func (h *Handler) DeleteNotificationHandler(c echo.Context) error {
	if err := h.Notifications.Delete(ctx(c), actor(c), c.Param("id")); err != nil {
		return err
	}
	return done(c, "notification deleted")
}

// DeleteReadNotificationsHandler handles DELETE /api/notifications/read
func (h *Handler) DeleteReadNotificationsHandler(c echo.Context) error {
	n, err := h.Notifications.DeleteAllRead(ctx(c), actor(c))
	if err != nil {
		return err
	}
	return counted(c, "read notifications deleted", n)
}

// CleanupNotificationsHandler handles DELETE /api/notifications/cleanup (admin).
// It drops read notifications past retention and every expired one.
func (h *Handler) CleanupNotificationsHandler(c echo.Context) error {
	old, err := h.Notifications.DeleteOld(ctx(c), services.ReadNotificationRetention)
	if err != nil {
		return err
	}
	expired, err := h.Notifications.DeleteExpired(ctx(c))
	if err != nil {
		return err
	}
	return counted(c, "notifications cleaned up", old+expired)
}

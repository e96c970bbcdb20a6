package handlers

import (
	"net/http"

	"lexcase_api_go/middleware"
	"lexcase_api_go/models"
	"lexcase_api_go/services"

	"github.com/labstack/echo/v4"
)

func activityFilter(c echo.Context) services.ActivityFilter {
	page, limit := pageParams(c)
	return services.ActivityFilter{
		Type:  models.ActivityType(c.QueryParam("type")),
		Page:  page,
		Limit: limit,
	}
}

// CaseActivitiesHandler handles GET /api/activities/cases/:caseId/activities
func (h *Handler) CaseActivitiesHandler(c echo.Context) error {
	items, err := h.Activity.CaseActivities(ctx(c), actor(c), c.Param("caseId"), activityFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CaseActivityStatsHandler(c echo.Context) error {
	stats, err := h.Activity.CaseStats(ctx(c), actor(c), c.Param("caseId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// MyActivityHandler lists the current user's own activity
func (h *Handler) MyActivityHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	items, err := h.Activity.UserActivities(ctx(c), actor(c), user.ID, activityFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UserActivityHandler(c echo.Context) error {
	items, err := h.Activity.UserActivities(ctx(c), actor(c), c.Param("userId"), activityFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetActivityHandler(c echo.Context) error {
	item, err := h.Activity.Get(ctx(c), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

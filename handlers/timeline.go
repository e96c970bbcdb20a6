package handlers

import (
	"net/http"
	"time"

	"lexcase_api_go/services"

	"github.com/labstack/echo/v4"
)

// CreateTimelineEventHandler handles POST /api/cases/:caseId/timeline
func (h *Handler) CreateTimelineEventHandler(c echo.Context) error {
	var in services.TimelineInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ev, err := h.Timeline.Create(ctx(c), actor(c), c.Param("caseId"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ev)
}

// AddHearingHandler handles POST /api/cases/:caseId/hearings
func (h *Handler) AddHearingHandler(c echo.Context) error {
	var in services.TimelineInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ev, err := h.Timeline.AddHearing(ctx(c), actor(c), c.Param("caseId"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ev)
}

// CaseTimelineHandler handles GET /api/cases/:caseId/timeline?event_type=
func (h *Handler) CaseTimelineHandler(c echo.Context) error {
	events, err := h.Timeline.ListForCase(ctx(c), actor(c), c.Param("caseId"), c.QueryParam("event_type"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

func (h *Handler) UpcomingEventsHandler(c echo.Context) error {
	events, err := h.Timeline.Upcoming(ctx(c), actor(c), c.Param("caseId"), queryInt(c, "limit", 10))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

func (h *Handler) MilestonesHandler(c echo.Context) error {
	events, err := h.Timeline.Milestones(ctx(c), actor(c), c.Param("caseId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

func (h *Handler) CaseHearingsHandler(c echo.Context) error {
	events, err := h.Timeline.Hearings(ctx(c), actor(c), c.Param("caseId"), c.QueryParam("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

// NextHearingHandler returns null when nothing is scheduled
func (h *Handler) NextHearingHandler(c echo.Context) error {
	ev, err := h.Timeline.NextHearing(ctx(c), actor(c), c.Param("caseId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ev)
}

func (h *Handler) GetTimelineEventHandler(c echo.Context) error {
	ev, err := h.Timeline.Get(ctx(c), actor(c), c.Param("eventId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ev)
}

func (h *Handler) UpdateTimelineEventHandler(c echo.Context) error {
	var in services.TimelineInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ev, err := h.Timeline.Update(ctx(c), actor(c), c.Param("eventId"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ev)
}

func (h *Handler) CompleteTimelineEventHandler(c echo.Context) error {
	var res services.HearingResult
	if err := bind(c, &res); err != nil {
		return err
	}
	ev, err := h.Timeline.Complete(ctx(c), actor(c), c.Param("eventId"), res)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ev)
}

type postponeRequest struct {
	Reason  string     `json:"reason"`
	NewDate *time.Time `json:"new_date"`
}

func (h *Handler) PostponeTimelineEventHandler(c echo.Context) error {
	var req postponeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ev, err := h.Timeline.Postpone(ctx(c), actor(c), c.Param("eventId"), req.Reason, req.NewDate)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ev)
}

func (h *Handler) CancelTimelineEventHandler(c echo.Context) error {
	ev, err := h.Timeline.Cancel(ctx(c), actor(c), c.Param("eventId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ev)
}

func (h *Handler) DeleteTimelineEventHandler(c echo.Context) error {
	if err := h.Timeline.Delete(ctx(c), actor(c), c.Param("eventId")); err != nil {
		return err
	}
	return done(c, "timeline event deleted")
}

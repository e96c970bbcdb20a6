package handlers

import (
	"net/http"

	"lexcase_api_go/services"

	"github.com/labstack/echo/v4"
)

func taskFilter(c echo.Context) services.TaskFilter {
	page, limit := pageParams(c)
	return services.TaskFilter{
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
		Page:     page,
		Limit:    limit,
	}
}

// CreateTaskHandler handles POST /api/tasks
func (h *Handler) CreateTaskHandler(c echo.Context) error {
	var in services.TaskInput
	if err := bind(c, &in); err != nil {
		return err
	}
	task, err := h.Tasks.Create(ctx(c), actor(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

// ListTasksHandler handles GET /api/tasks
func (h *Handler) ListTasksHandler(c echo.Context) error {
	tasks, total, err := h.Tasks.List(ctx(c), actor(c), taskFilter(c))
	if err != nil {
		return err
	}
	return list(c, tasks, total)
}

// CaseTasksHandler handles GET /api/tasks/cases/:caseId
func (h *Handler) CaseTasksHandler(c echo.Context) error {
	tasks, err := h.Tasks.ListByCase(ctx(c), actor(c), c.Param("caseId"), taskFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *Handler) GetTaskHandler(c echo.Context) error {
	task, err := h.Tasks.Get(ctx(c), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) UpdateTaskHandler(c echo.Context) error {
	var in services.TaskInput
	if err := bind(c, &in); err != nil {
		return err
	}
	task, err := h.Tasks.Update(ctx(c), actor(c), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

type taskStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateTaskStatusHandler(c echo.Context) error {
	var req taskStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	task, err := h.Tasks.UpdateStatus(ctx(c), actor(c), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

type taskProgressRequest struct {
	Progress *int `json:"progress"`
}

func (h *Handler) UpdateTaskProgressHandler(c echo.Context) error {
	var req taskProgressRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Progress == nil {
		return services.Validation("progress is required")
	}
	task, err := h.Tasks.UpdateProgress(ctx(c), actor(c), c.Param("id"), *req.Progress)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

type commentRequest struct {
	Comment string `json:"comment"`
}

func (h *Handler) AddTaskCommentHandler(c echo.Context) error {
	var req commentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := h.Tasks.AddComment(ctx(c), actor(c), c.Param("id"), req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, comment)
}

type attachmentRequest struct {
	DocumentID string `json:"document_id"`
}

func (h *Handler) AddTaskAttachmentHandler(c echo.Context) error {
	var req attachmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	task, err := h.Tasks.AddAttachment(ctx(c), actor(c), c.Param("id"), req.DocumentID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTaskHandler(c echo.Context) error {
	if err := h.Tasks.Delete(ctx(c), actor(c), c.Param("id")); err != nil {
		return err
	}
	return done(c, "task deleted")
}

func (h *Handler) OverdueTasksHandler(c echo.Context) error {
	tasks, err := h.Tasks.Overdue(ctx(c), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *Handler) TaskStatsHandler(c echo.Context) error {
	stats, err := h.Tasks.Stats(ctx(c), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

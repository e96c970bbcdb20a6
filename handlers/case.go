package handlers

import (
	"fmt"
	"net/http"
	"time"

	"lexcase_api_go/services"

	"github.com/labstack/echo/v4"
)

// CreateCaseHandler handles POST /api/cases
func (h *Handler) CreateCaseHandler(c echo.Context) error {
	var in services.CaseInput
	if err := bind(c, &in); err != nil {
		return err
	}
	cs, err := h.Cases.Create(ctx(c), actor(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cs)
}

// ListCasesHandler handles GET /api/cases
func (h *Handler) ListCasesHandler(c echo.Context) error {
	page, limit := pageParams(c)
	f := services.CaseFilter{
		Status:          c.QueryParam("status"),
		Category:        c.QueryParam("category"),
		Priority:        c.QueryParam("priority"),
		Search:          c.QueryParam("search"),
		IncludeArchived: c.QueryParam("include_archived") == "true",
		Page:            page,
		Limit:           limit,
	}
	cases, total, err := h.Cases.List(ctx(c), actor(c), f)
	if err != nil {
		return err
	}
	return list(c, cases, total)
}

func (h *Handler) GetCaseHandler(c echo.Context) error {
	cs, err := h.Cases.Get(ctx(c), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cs)
}

func (h *Handler) UpdateCaseHandler(c echo.Context) error {
	var in services.CaseInput
	if err := bind(c, &in); err != nil {
		return err
	}
	cs, err := h.Cases.Update(ctx(c), actor(c), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cs)
}

type closeCaseRequest struct {
	Outcome string `json:"outcome"`
}

func (h *Handler) CloseCaseHandler(c echo.Context) error {
	var req closeCaseRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cs, err := h.Cases.Close(ctx(c), actor(c), c.Param("id"), req.Outcome)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cs)
}

func (h *Handler) ArchiveCaseHandler(c echo.Context) error {
	cs, err := h.Cases.Archive(ctx(c), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cs)
}

func (h *Handler) UnarchiveCaseHandler(c echo.Context) error {
	cs, err := h.Cases.Unarchive(ctx(c), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cs)
}

type paralegalRequest struct {
	ParalegalID string `json:"paralegal_id"`
}

func (h *Handler) AssignParalegalHandler(c echo.Context) error {
	var req paralegalRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cs, err := h.Cases.AssignParalegal(ctx(c), actor(c), c.Param("id"), req.ParalegalID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cs)
}

func (h *Handler) RemoveParalegalHandler(c echo.Context) error {
	cs, err := h.Cases.RemoveParalegal(ctx(c), actor(c), c.Param("id"), c.Param("paralegalId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cs)
}

func (h *Handler) DeleteCaseHandler(c echo.Context) error {
	if err := h.Cases.Delete(ctx(c), actor(c), c.Param("id")); err != nil {
		return err
	}
	return done(c, "case deleted")
}

func (h *Handler) CaseStatsHandler(c echo.Context) error {
	stats, err := h.Cases.Stats(ctx(c), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// ExportCasesHandler handles GET /api/cases/export as an xlsx download
func (h *Handler) ExportCasesHandler(c echo.Context) error {
	buf, err := h.Cases.ExportXLSX(ctx(c), actor(c))
	if err != nil {
		return err
	}
	name := fmt.Sprintf("cases_%s.xlsx", time.Now().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

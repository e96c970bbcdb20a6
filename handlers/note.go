package handlers

import (
	"net/http"

	"lexcase_api_go/services"

	"github.com/labstack/echo/v4"
)

// CreateNoteHandler handles POST /api/notes
func (h *Handler) CreateNoteHandler(c echo.Context) error {
	var in services.NoteInput
	if err := bind(c, &in); err != nil {
		return err
	}
	n, err := h.Notes.Create(ctx(c), actor(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, n)
}

// ListNotesHandler handles GET /api/notes. Admins may pass user_id.
func (h *Handler) ListNotesHandler(c echo.Context) error {
	notes, err := h.Notes.List(ctx(c), actor(c), services.NoteFilter{
		Status:   c.QueryParam("status"),
		Category: c.QueryParam("category"),
		Priority: c.QueryParam("priority"),
		Search:   c.QueryParam("search"),
		UserID:   c.QueryParam("user_id"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notes)
}

func (h *Handler) GetNoteHandler(c echo.Context) error {
	n, err := h.Notes.Get(ctx(c), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) UpdateNoteHandler(c echo.Context) error {
	var in services.NoteInput
	if err := bind(c, &in); err != nil {
		return err
	}
	n, err := h.Notes.Update(ctx(c), actor(c), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) ArchiveNoteHandler(c echo.Context) error {
	n, err := h.Notes.Archive(ctx(c), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) DeleteNoteHandler(c echo.Context) error {
	if err := h.Notes.Delete(ctx(c), actor(c), c.Param("id")); err != nil {
		return err
	}
	return done(c, "note deleted")
}

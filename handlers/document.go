package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"lexcase_api_go/models"
	"lexcase_api_go/services"

	"github.com/labstack/echo/v4"
)

func documentFilter(c echo.Context) services.DocumentFilter {
	page, limit := pageParams(c)
	return services.DocumentFilter{
		Category: c.QueryParam("category"),
		Status:   c.QueryParam("status"),
		Search:   c.QueryParam("search"),
		Page:     page,
		Limit:    limit,
	}
}

// UploadDocumentHandler handles POST /api/documents/upload as multipart form
// data. The file goes in "file"; access_permissions, when present, is JSON.
func (h *Handler) UploadDocumentHandler(c echo.Context) error {
	in := services.UploadInput{
		Title:           c.FormValue("title"),
		Description:     c.FormValue("description"),
		Category:        c.FormValue("category"),
		CaseID:          c.FormValue("case_id"),
		NoteID:          c.FormValue("note_id"),
		TimelineEventID: c.FormValue("timeline_event_id"),
	}
	if raw := c.FormValue("access_permissions"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.AccessPermissions); err != nil {
			return services.Validation("invalid access_permissions")
		}
	}

	file, err := c.FormFile("file")
	if err == nil {
		src, err := file.Open()
		if err != nil {
			return fmt.Errorf("failed to open upload: %w", err)
		}
		defer src.Close()
		in.Body = src
		in.FileName = file.Filename
		in.Size = file.Size
		// generic uploads fall back to the extension
		if mt := file.Header.Get(echo.HeaderContentType); mt != echo.MIMEOctetStream {
			in.MimeType = mt
		}
	}

	doc, err := h.Documents.Upload(ctx(c), actor(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, doc)
}

// ListDocumentsHandler handles GET /api/documents
func (h *Handler) ListDocumentsHandler(c echo.Context) error {
	docs, total, err := h.Documents.ListAccessible(ctx(c), actor(c), documentFilter(c))
	if err != nil {
		return err
	}
	return list(c, docs, total)
}

// DocumentStatsHandler handles GET /api/documents/stats?case_id=
func (h *Handler) DocumentStatsHandler(c echo.Context) error {
	stats, err := h.Documents.Stats(ctx(c), actor(c), c.QueryParam("case_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) CaseDocumentsHandler(c echo.Context) error {
	docs, total, err := h.Documents.ListForCase(ctx(c), actor(c), c.Param("caseId"), documentFilter(c))
	if err != nil {
		return err
	}
	return list(c, docs, total)
}

func (h *Handler) GetDocumentHandler(c echo.Context) error {
	doc, err := h.Documents.Get(ctx(c), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

// DownloadDocumentHandler streams the stored file
func (h *Handler) DownloadDocumentHandler(c echo.Context) error {
	doc, body, err := h.Documents.Download(ctx(c), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	defer body.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.OriginalName))
	return c.Stream(http.StatusOK, doc.MimeType, body)
}

func (h *Handler) UpdateDocumentHandler(c echo.Context) error {
	var in services.DocumentUpdate
	if err := bind(c, &in); err != nil {
		return err
	}
	doc, err := h.Documents.Update(ctx(c), actor(c), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

func (h *Handler) UpdateDocumentPermissionsHandler(c echo.Context) error {
	var perms models.AccessPermissions
	if err := bind(c, &perms); err != nil {
		return err
	}
	doc, err := h.Documents.UpdatePermissions(ctx(c), actor(c), c.Param("id"), perms)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

// DeleteDocumentHandler soft-deletes, or removes the file with ?permanent=true
func (h *Handler) DeleteDocumentHandler(c echo.Context) error {
	permanent := c.QueryParam("permanent") == "true"
	if err := h.Documents.Delete(ctx(c), actor(c), c.Param("id"), permanent); err != nil {
		return err
	}
	if permanent {
		return done(c, "document permanently deleted")
	}
	return done(c, "document deleted")
}

func (h *Handler) RestoreDocumentHandler(c echo.Context) error {
	doc, err := h.Documents.Restore(ctx(c), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

package handlers

import (
	"fmt"
	"net/http"

	"lexcase_api_go/services"

	"github.com/labstack/echo/v4"
)

// SendMessageHandler handles POST /api/messages
func (h *Handler) SendMessageHandler(c echo.Context) error {
	var in services.MessageInput
	if err := bind(c, &in); err != nil {
		return err
	}
	m, err := h.Messages.Send(ctx(c), actor(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) GetMessageHandler(c echo.Context) error {
	m, err := h.Messages.Get(ctx(c), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// ThreadHandler handles GET /api/messages/threads/:threadId
func (h *Handler) ThreadHandler(c echo.Context) error {
	msgs, err := h.Messages.Thread(ctx(c), actor(c), c.Param("threadId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *Handler) CaseMessagesHandler(c echo.Context) error {
	page, limit := pageParams(c)
	msgs, err := h.Messages.ListForCase(ctx(c), actor(c), c.Param("caseId"), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *Handler) ConnectionMessagesHandler(c echo.Context) error {
	page, limit := pageParams(c)
	msgs, err := h.Messages.ListForConnection(ctx(c), actor(c), c.Param("connectionId"), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *Handler) ConversationHandler(c echo.Context) error {
	page, limit := pageParams(c)
	msgs, err := h.Messages.Conversation(ctx(c), actor(c), c.Param("userId"), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *Handler) MarkMessageReadHandler(c echo.Context) error {
	m, err := h.Messages.MarkAsRead(ctx(c), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) MarkAllMessagesReadHandler(c echo.Context) error {
	n, err := h.Messages.MarkAllAsRead(ctx(c), actor(c))
	if err != nil {
		return err
	}
	return counted(c, "messages marked as read", n)
}

func (h *Handler) UnreadMessagesHandler(c echo.Context) error {
	n, err := h.Messages.UnreadCount(ctx(c), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int64{"unread_count": n})
}

func (h *Handler) DeleteMessageHandler(c echo.Context) error {
	if err := h.Messages.Delete(ctx(c), actor(c), c.Param("id")); err != nil {
		return err
	}
	return done(c, "message deleted")
}

// ListMessagesHandler handles GET /api/messages?case_id=&connection_id=&unread=true
func (h *Handler) ListMessagesHandler(c echo.Context) error {
	page, limit := pageParams(c)
	msgs, err := h.Messages.Inbox(ctx(c), actor(c), services.MessageFilter{
		CaseID:       c.QueryParam("case_id"),
		ConnectionID: c.QueryParam("connection_id"),
		UnreadOnly:   c.QueryParam("unread") == "true",
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}

// SearchMessagesHandler handles GET /api/messages/search?q=&case_id=
func (h *Handler) SearchMessagesHandler(c echo.Context) error {
	page, limit := pageParams(c)
	msgs, err := h.Messages.Search(ctx(c), actor(c), c.QueryParam("q"), c.QueryParam("case_id"), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}

// UploadMessageAttachmentsHandler handles POST /api/messages/:id/attachments
// with up to five files in the "attachments" field
func (h *Handler) UploadMessageAttachmentsHandler(c echo.Context) error {
	var files []services.AttachmentUpload
	if form, err := c.MultipartForm(); err == nil {
		for _, fh := range form.File["attachments"] {
			src, err := fh.Open()
			if err != nil {
				return fmt.Errorf("failed to open upload: %w", err)
			}
			defer src.Close()
			upload := services.AttachmentUpload{FileName: fh.Filename, Size: fh.Size, Body: src}
			if mt := fh.Header.Get(echo.HeaderContentType); mt != echo.MIMEOctetStream {
				upload.MimeType = mt
			}
			files = append(files, upload)
		}
	}

	m, err := h.Messages.AddAttachments(ctx(c), actor(c), c.Param("id"), files)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

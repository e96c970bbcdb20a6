package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"lexcase_api_go/models"
	"lexcase_api_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type attachmentFile struct {
	name, contentType, body string
}

func newAttachmentRequest(t *testing.T, messageID string, files ...attachmentFile) *http.Request {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="attachments"; filename="`+f.name+`"`)
		header.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/messages/"+messageID+"/attachments", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestMessageInboxAndSearch(t *testing.T) {
	s := newTestServer(t, nil)
	advocate, advocateToken := s.seedUser(t, models.RoleAdvocate, "adv@test.com")
	client, clientToken := s.seedUser(t, models.RoleClient, "client@test.com")
	_, otherToken := s.seedUser(t, models.RoleClient, "other@test.com")

	rec := s.do(t, http.MethodPost, "/api/messages", clientToken, map[string]string{"content": "Is the lease ready?", "receiver_id": advocate.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodPost, "/api/messages", advocateToken, map[string]string{"content": "Draft is with the court", "receiver_id": client.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/messages", clientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Message](t, rec), 2)

	rec = s.do(t, http.MethodGet, "/api/messages?unread=true", clientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	unread := decode[[]models.Message](t, rec)
	require.Len(t, unread, 1)
	assert.Equal(t, advocate.ID, unread[0].SenderID)

	rec = s.do(t, http.MethodGet, "/api/messages/search?q=LEASE", advocateToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Message](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/api/messages/search?q=lease", otherToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Message](t, rec))

	rec = s.do(t, http.MethodGet, "/api/messages/search", clientToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMessageAttachments(t *testing.T) {
	s := newTestServer(t, nil)
	advocate, advocateToken := s.seedUser(t, models.RoleAdvocate, "adv@test.com")
	_, clientToken := s.seedUser(t, models.RoleClient, "client@test.com")

	rec := s.do(t, http.MethodPost, "/api/messages", clientToken, map[string]string{"content": "Documents attached", "receiver_id": advocate.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	m := decode[models.Message](t, rec)

	lease := attachmentFile{"lease.pdf", "application/pdf", "%PDF-1.4"}
	notes := attachmentFile{"notes.txt", "text/plain", "meet on monday"}

	rec = s.send(newAttachmentRequest(t, m.ID, lease), advocateToken)
	assert.Equal(t, http.StatusForbidden, rec.Code, "only the sender attaches")

	rec = s.send(newAttachmentRequest(t, "missing", lease), clientToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.send(newAttachmentRequest(t, m.ID), clientToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.send(newAttachmentRequest(t, m.ID, notes, notes, notes, notes, notes, notes), clientToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.send(newAttachmentRequest(t, m.ID, lease, notes), clientToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[models.Message](t, rec)
	require.Len(t, got.Attachments, 2)
	assert.Equal(t, "lease.pdf", got.Attachments[0].FileName)
	assert.Equal(t, "text/plain", got.Attachments[1].FileType)

	rec = s.do(t, http.MethodGet, "/api/messages/"+m.ID, advocateToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[models.Message](t, rec).Attachments, 2)
}

func TestNotificationFilters(t *testing.T) {
	s := newTestServer(t, nil)
	user, token := s.seedUser(t, models.RoleClient, "client@test.com")
	other, otherToken := s.seedUser(t, models.RoleClient, "other@test.com")

	notifications := services.NewNotificationService(s.db)
	for _, in := range []services.NotificationInput{
		{UserID: user.ID, Type: models.NotificationCaseCreated, Priority: models.PriorityUrgent},
		{UserID: user.ID, Type: models.NotificationCustom, Priority: models.PriorityUrgent},
		{UserID: user.ID, Type: models.NotificationCustom, Priority: models.PriorityLow},
		{UserID: other.ID, Type: models.NotificationCustom, Priority: models.PriorityLow},
	} {
		in.Title, in.Message = "Update", "Something changed"
		_, err := notifications.Create(t.Context(), in)
		require.NoError(t, err)
	}

	rec := s.do(t, http.MethodGet, "/api/notifications/type/"+models.NotificationCustom, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Notification](t, rec), 2)

	rec = s.do(t, http.MethodGet, "/api/notifications/priority/"+models.PriorityUrgent, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	urgent := decode[[]models.Notification](t, rec)
	require.Len(t, urgent, 2)

	rec = s.do(t, http.MethodGet, "/api/notifications/type/bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/notifications/"+urgent[0].ID+"/read", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/notifications/priority/"+models.PriorityUrgent+"?unread=true", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Notification](t, rec), 1)

	rec = s.do(t, http.MethodPut, "/api/notifications/read-all", otherToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/notifications/read", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[MessageResponse](t, rec)
	require.NotNil(t, res.Count)
	assert.EqualValues(t, 1, *res.Count, "only the caller's read notifications go")

	rec = s.do(t, http.MethodGet, "/api/notifications", otherToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Notification](t, rec), 1)
}

func TestDocumentStatsHandler(t *testing.T) {
	s := newTestServer(t, nil)
	_, ownerToken := s.seedUser(t, models.RoleClient, "owner@test.com")
	_, otherToken := s.seedUser(t, models.RoleClient, "other@test.com")

	req := uploadRequest(t, map[string]string{"title": "Lease", "category": "contract"}, "lease.txt", "text/plain", []byte("signed lease"))
	rec := s.send(req, ownerToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/documents/stats", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stats := decode[services.DocumentStats](t, rec)
	assert.EqualValues(t, 1, stats.Total)
	assert.EqualValues(t, 1, stats.ByCategory["contract"])
	assert.EqualValues(t, len("signed lease"), stats.TotalSize)

	rec = s.do(t, http.MethodGet, "/api/documents/stats", otherToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode[services.DocumentStats](t, rec).Total)

	rec = s.do(t, http.MethodGet, "/api/documents/stats?case_id=missing", ownerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package handlers

import (
	"net/http"
	"testing"
	"time"

	"lexcase_api_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionRequests(t *testing.T) {
	s := newTestServer(t, nil)
	advocate, advocateToken := s.seedUser(t, models.RoleAdvocate, "adv@test.com")
	_, clientToken := s.seedUser(t, models.RoleClient, "client@test.com")

	body := map[string]string{"recipient_id": advocate.ID, "connection_type": models.ConnectionTypeAdvocate}
	rec := s.do(t, http.MethodPost, "/api/connections/request", clientToken, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	conn := decode[models.Connection](t, rec)

	rec = s.do(t, http.MethodPost, "/api/connections/request", clientToken, body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/connections/requests/received", advocateToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Connection](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/api/connections/requests/received", clientToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/connections/requests/"+conn.ID+"/reject", advocateToken, map[string]string{"message": "Full caseload"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ConnectionStatusRejected, decode[models.Connection](t, rec).Status)

	rec = s.do(t, http.MethodPut, "/api/connections/requests/"+conn.ID+"/accept", advocateToken, map[string]string{})
	assert.Equal(t, http.StatusConflict, rec.Code, "a rejected request cannot be accepted")

	rec = s.do(t, http.MethodGet, "/api/connections/search/advocates?search=test", clientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestTaskFlow(t *testing.T) {
	s := newTestServer(t, nil)
	advocate, advocateToken := s.seedUser(t, models.RoleAdvocate, "adv@test.com")
	_, clientToken := s.seedUser(t, models.RoleClient, "client@test.com")
	paralegal, paralegalToken := s.seedUser(t, models.RoleParalegal, "para@test.com")
	s.connect(t, clientToken, advocateToken, advocate.ID)

	rec := s.do(t, http.MethodPost, "/api/cases", clientToken, caseBody(advocate.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := decode[models.Case](t, rec)

	rec = s.do(t, http.MethodPost, "/api/cases/"+c.ID+"/assign-paralegal", advocateToken, map[string]string{"paralegal_id": paralegal.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/tasks", advocateToken, map[string]any{
		"title":       "Collect receipts",
		"description": "Gather the rent receipts",
		"case_id":     c.ID,
		"assigned_to": paralegal.ID,
		"due_date":    time.Now().Add(72 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	task := decode[models.Task](t, rec)

	rec = s.do(t, http.MethodPut, "/api/tasks/"+task.ID+"/progress", paralegalToken, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "progress is required")

	rec = s.do(t, http.MethodPut, "/api/tasks/"+task.ID+"/progress", paralegalToken, map[string]int{"progress": 101})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/tasks/"+task.ID+"/progress", paralegalToken, map[string]int{"progress": 100})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.TaskStatusCompleted, decode[models.Task](t, rec).Status)

	rec = s.do(t, http.MethodGet, "/api/tasks/"+task.ID, clientToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/notifications/unread-count", advocateToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Positive(t, decode[map[string]int64](t, rec)["unread_count"])

	rec = s.do(t, http.MethodPut, "/api/notifications/read-all", advocateToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/notifications/unread-count", advocateToken, nil)
	assert.Zero(t, decode[map[string]int64](t, rec)["unread_count"])
}

func TestReminderFlow(t *testing.T) {
	s := newTestServer(t, nil)
	advocate, advocateToken := s.seedUser(t, models.RoleAdvocate, "adv@test.com")
	client, clientToken := s.seedUser(t, models.RoleClient, "client@test.com")
	_, adminToken := s.seedUser(t, models.RoleAdmin, "admin@test.com")

	rec := s.do(t, http.MethodPost, "/api/reminders", advocateToken, map[string]any{
		"title":         "Sign affidavit",
		"message":       "Bring ID",
		"type":          models.ReminderTypeDocument,
		"reminder_date": time.Now().Add(2 * time.Hour),
		"recipients":    []string{advocate.ID, client.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	r := decode[models.Reminder](t, rec)

	rec = s.do(t, http.MethodPut, "/api/reminders/"+r.ID+"/snooze", clientToken, map[string]int{"minutes": 15})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snoozed := decode[models.Reminder](t, rec)
	assert.Equal(t, models.RecipientStatusSnoozed, snoozed.Recipients.Find(client.ID).Status)

	rec = s.do(t, http.MethodGet, "/api/reminders/upcoming?days=1", clientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/reminders/cleanup", advocateToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/reminders/cleanup", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/reminders/"+r.ID, clientToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/reminders/"+r.ID, advocateToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ReminderStatusCancelled, decode[models.Reminder](t, rec).Status)
}

func TestMessagesFlow(t *testing.T) {
	s := newTestServer(t, nil)
	advocate, advocateToken := s.seedUser(t, models.RoleAdvocate, "adv@test.com")
	client, clientToken := s.seedUser(t, models.RoleClient, "client@test.com")

	rec := s.do(t, http.MethodPost, "/api/messages", clientToken, map[string]string{"content": "Hello", "receiver_id": advocate.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	m := decode[models.Message](t, rec)

	rec = s.do(t, http.MethodGet, "/api/messages/unread-count", advocateToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]int64](t, rec)["unread_count"])

	rec = s.do(t, http.MethodPost, "/api/messages", advocateToken, map[string]string{"content": "Hi back", "receiver_id": client.ID, "reply_to_id": m.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/messages/threads/"+m.ThreadID, clientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Message](t, rec), 2)

	rec = s.do(t, http.MethodPut, "/api/messages/"+m.ID+"/read", advocateToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/messages", clientToken, map[string]string{"content": "Hi", "receiver_id": advocate.ID, "connection_id": "c1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

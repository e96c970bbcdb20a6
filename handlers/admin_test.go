package handlers

import (
	"context"
	"net/http"
	"testing"

	"lexcase_api_go/models"
	"lexcase_api_go/services/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPoller struct {
	mock.Mock
}

func (m *mockPoller) Start() error {
	return m.Called().Error(0)
}

func (m *mockPoller) Stop() error {
	return m.Called().Error(0)
}

func (m *mockPoller) Status() jobs.PollerStatus {
	return m.Called().Get(0).(jobs.PollerStatus)
}

func (m *mockPoller) Tick(ctx context.Context) jobs.TickResult {
	return m.Called(ctx).Get(0).(jobs.TickResult)
}

func (m *mockPoller) Maintain(ctx context.Context) jobs.MaintenanceResult {
	return m.Called(ctx).Get(0).(jobs.MaintenanceResult)
}

func TestPollerHandlers(t *testing.T) {
	p := new(mockPoller)
	s := newTestServer(t, p)
	_, adminToken := s.seedUser(t, models.RoleAdmin, "admin@test.com")
	_, clientToken := s.seedUser(t, models.RoleClient, "client@test.com")

	t.Run("Admin only", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/admin/poller", clientToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Status", func(t *testing.T) {
		p.On("Status").Return(jobs.PollerStatus{Running: true, Schedule: "@every 1m", Sent: 3}).Once()

		rec := s.do(t, http.MethodGet, "/api/admin/poller", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		status := decode[jobs.PollerStatus](t, rec)
		assert.True(t, status.Running)
		assert.EqualValues(t, 3, status.Sent)
	})

	t.Run("Start while running", func(t *testing.T) {
		p.On("Start").Return(jobs.ErrPollerRunning).Once()

		rec := s.do(t, http.MethodPost, "/api/admin/poller/start", adminToken, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Stop", func(t *testing.T) {
		p.On("Stop").Return(nil).Once()
		p.On("Status").Return(jobs.PollerStatus{Running: false}).Once()

		rec := s.do(t, http.MethodPost, "/api/admin/poller/stop", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, decode[jobs.PollerStatus](t, rec).Running)
	})

	t.Run("Tick", func(t *testing.T) {
		p.On("Tick", mock.Anything).Return(jobs.TickResult{Processed: 2, Sent: 1, Failed: 1}).Once()

		rec := s.do(t, http.MethodPost, "/api/admin/poller/tick", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		result := decode[jobs.TickResult](t, rec)
		assert.Equal(t, 2, result.Processed)
		assert.Equal(t, 1, result.Failed)
	})

	p.AssertExpectations(t)
}

func TestPollerHandlers_NotConfigured(t *testing.T) {
	s := newTestServer(t, nil)
	_, adminToken := s.seedUser(t, models.RoleAdmin, "admin@test.com")

	rec := s.do(t, http.MethodGet, "/api/admin/poller", adminToken, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lexcase_api_go/config"
	"lexcase_api_go/models"
	"lexcase_api_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Use unique shared memory name to isolate tests while allowing shared cache across pooled connections
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{NowFunc: models.Now})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(models.All()...))
	return testDB
}

type testServer struct {
	e  *echo.Echo
	db *gorm.DB
	h  *Handler
}

func newTestServer(t *testing.T, poller Poller) *testServer {
	database := setupTestDB(t)
	cfg := &config.Config{
		Environment: "test",
		AppURL:      "http://localhost:8080",
		SessionTTL:  time.Hour,
	}

	h := New(cfg, database, services.NewLocalStorage(t.TempDir()), nil, poller)
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	RegisterRoutes(e, h)
	return &testServer{e: e, db: database, h: h}
}

// seedUser creates an active user and a session, returning the bearer token
func (s *testServer) seedUser(t *testing.T, role, email string) (*models.User, string) {
	hash, err := services.HashPassword("password123")
	require.NoError(t, err)
	user := &models.User{Name: "Test " + role, Email: email, Password: hash, Role: role, IsActive: true}
	require.NoError(t, s.db.Create(user).Error)

	session, err := services.CreateSession(t.Context(), s.db, user.ID, time.Hour, "127.0.0.1", "test")
	require.NoError(t, err)
	return user, session.Token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return s.send(req, token)
}

func (s *testServer) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// connect links a client to an advocate through an accepted request
func (s *testServer) connect(t *testing.T, clientToken, advocateToken, advocateID string) {
	rec := s.do(t, http.MethodPost, "/api/connections/request", clientToken, map[string]string{
		"recipient_id":    advocateID,
		"connection_type": models.ConnectionTypeAdvocate,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	conn := decode[models.Connection](t, rec)

	rec = s.do(t, http.MethodPut, "/api/connections/requests/"+conn.ID+"/accept", advocateToken, map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

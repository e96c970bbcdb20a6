package handlers

import (
	"context"
	"net/http"
	"strconv"

	"lexcase_api_go/config"
	"lexcase_api_go/middleware"
	"lexcase_api_go/services"
	"lexcase_api_go/services/access"
	"lexcase_api_go/services/jobs"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Poller is the lifecycle the admin endpoints drive
type Poller interface {
	Start() error
	Stop() error
	Status() jobs.PollerStatus
	Tick(ctx context.Context) jobs.TickResult
	Maintain(ctx context.Context) jobs.MaintenanceResult
}

// Handler holds the services behind every JSON endpoint
type Handler struct {
	Config        *config.Config
	DB            *gorm.DB
	Users         *services.UserService
	Cases         *services.CaseService
	Connections   *services.ConnectionService
	Tasks         *services.TaskService
	Reminders     *services.ReminderService
	Timeline      *services.TimelineService
	Documents     *services.DocumentService
	Messages      *services.MessageService
	Notifications *services.NotificationService
	Notes         *services.NoteService
	Activity      *services.ActivityLogger
	Poller        Poller
}

// New wires every service onto one database. A nil mailer disables email and
// a nil poller disables the admin poller endpoints.
func New(cfg *config.Config, db *gorm.DB, storage services.StorageProvider, mailer *services.Mailer, poller Poller) *Handler {
	return &Handler{
		Config:        cfg,
		DB:            db,
		Users:         services.NewUserService(db, mailer, cfg.AppURL),
		Cases:         services.NewCaseService(db),
		Connections:   services.NewConnectionService(db),
		Tasks:         services.NewTaskService(db),
		Reminders:     services.NewReminderService(db),
		Timeline:      services.NewTimelineService(db),
		Documents:     services.NewDocumentService(db, storage),
		Messages:      services.NewMessageService(db, storage),
		Notifications: services.NewNotificationService(db),
		Notes:         services.NewNoteService(db),
		Activity:      services.NewActivityLogger(db),
		Poller:        poller,
	}
}

func actor(c echo.Context) access.Actor {
	return middleware.CurrentActor(c)
}

func ctx(c echo.Context) context.Context {
	return c.Request().Context()
}

// bind decodes the JSON body, reporting malformed input as a validation error
func bind(c echo.Context, v any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		return services.Validation("invalid request body")
	}
	return nil
}

// queryInt reads an integer query parameter, falling back on absence or junk
func queryInt(c echo.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return fallback
	}
	return v
}

func pageParams(c echo.Context) (int, int) {
	return queryInt(c, "page", 1), queryInt(c, "limit", 20)
}

// ListResponse is the envelope of paginated listings
type ListResponse struct {
	Data  any   `json:"data"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func list(c echo.Context, data any, total int64) error {
	page, limit := pageParams(c)
	return c.JSON(http.StatusOK, ListResponse{Data: data, Total: total, Page: page, Limit: limit})
}

// MessageResponse acknowledges an operation with no entity to return
type MessageResponse struct {
	Message string `json:"message"`
	Count   *int64 `json:"count,omitempty"`
}

func done(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: msg})
}

func counted(c echo.Context, msg string, n int64) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: msg, Count: &n})
}

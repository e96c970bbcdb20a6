package handlers

import (
	"net/http"

	"lexcase_api_go/middleware"
	"lexcase_api_go/models"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the JSON API on e
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")

	// Public auth routes
	login := middleware.NewLoginRateLimiter()
	auth := api.Group("/auth")
	auth.POST("/signup", h.RegisterHandler, login.Middleware())
	auth.POST("/login", h.LoginHandler, login.Middleware())

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(h.DB))
	protected.Use(middleware.NewAPIRateLimiter().Middleware())

	protected.POST("/auth/logout", h.LogoutHandler)
	protected.GET("/auth/me", h.MeHandler)
	protected.GET("/users/:id", h.GetUserHandler)

	cases := protected.Group("/cases")
	{
		cases.POST("", h.CreateCaseHandler)
		cases.GET("", h.ListCasesHandler)
		cases.GET("/stats", h.CaseStatsHandler)
		cases.GET("/export", h.ExportCasesHandler)
		cases.GET("/:id", h.GetCaseHandler)
		cases.PUT("/:id", h.UpdateCaseHandler)
		cases.DELETE("/:id", h.DeleteCaseHandler)
		cases.PUT("/:id/close", h.CloseCaseHandler)
		cases.PUT("/:id/archive", h.ArchiveCaseHandler)
		cases.PUT("/:id/unarchive", h.UnarchiveCaseHandler)
		cases.POST("/:id/assign-paralegal", h.AssignParalegalHandler)
		cases.DELETE("/:id/paralegals/:paralegalId", h.RemoveParalegalHandler)

		// Case-scoped children
		cases.POST("/:caseId/timeline", h.CreateTimelineEventHandler)
		cases.GET("/:caseId/timeline", h.CaseTimelineHandler)
		cases.GET("/:caseId/milestones", h.MilestonesHandler)
		cases.POST("/:caseId/hearings", h.AddHearingHandler)
		cases.GET("/:caseId/hearings", h.CaseHearingsHandler)
		cases.GET("/:caseId/hearings/next", h.NextHearingHandler)
		cases.GET("/:caseId/documents", h.CaseDocumentsHandler)
		cases.GET("/:caseId/messages", h.CaseMessagesHandler)
	}

	connections := protected.Group("/connections")
	{
		connections.GET("", h.ListConnectionsHandler)
		connections.GET("/search/advocates", h.SearchAdvocatesHandler)
		connections.GET("/search/paralegals", h.SearchParalegalsHandler)
		connections.POST("/request", h.RequestConnectionHandler)
		connections.GET("/requests/received", h.ReceivedRequestsHandler)
		connections.GET("/requests/sent", h.SentRequestsHandler)
		connections.PUT("/requests/:id/accept", h.AcceptConnectionHandler)
		connections.PUT("/requests/:id/reject", h.RejectConnectionHandler)
		connections.GET("/:id", h.GetConnectionHandler)
		connections.DELETE("/:id", h.RemoveConnectionHandler)
		connections.GET("/:connectionId/messages", h.ConnectionMessagesHandler)
	}

	timeline := protected.Group("/timeline")
	{
		timeline.GET("/upcoming", h.UpcomingEventsHandler)
		timeline.GET("/:eventId", h.GetTimelineEventHandler)
		timeline.PUT("/:eventId", h.UpdateTimelineEventHandler)
		timeline.DELETE("/:eventId", h.DeleteTimelineEventHandler)
		timeline.PUT("/:eventId/complete", h.CompleteTimelineEventHandler)
		timeline.PUT("/:eventId/postpone", h.PostponeTimelineEventHandler)
		timeline.PUT("/:eventId/cancel", h.CancelTimelineEventHandler)
	}

	tasks := protected.Group("/tasks")
	{
		tasks.POST("", h.CreateTaskHandler)
		tasks.GET("", h.ListTasksHandler)
		tasks.GET("/stats", h.TaskStatsHandler)
		tasks.GET("/overdue", h.OverdueTasksHandler)
		tasks.GET("/cases/:caseId", h.CaseTasksHandler)
		tasks.GET("/:id", h.GetTaskHandler)
		tasks.PUT("/:id", h.UpdateTaskHandler)
		tasks.DELETE("/:id", h.DeleteTaskHandler)
		tasks.PUT("/:id/status", h.UpdateTaskStatusHandler)
		tasks.PUT("/:id/progress", h.UpdateTaskProgressHandler)
		tasks.POST("/:id/comments", h.AddTaskCommentHandler)
		tasks.POST("/:id/attachments", h.AddTaskAttachmentHandler)
	}

	reminders := protected.Group("/reminders")
	{
		reminders.POST("", h.CreateReminderHandler)
		reminders.GET("", h.ListRemindersHandler)
		reminders.GET("/upcoming", h.UpcomingRemindersHandler)
		reminders.DELETE("/cleanup", h.CleanupRemindersHandler, middleware.RequireRole(models.RoleAdmin))
		reminders.GET("/cases/:caseId", h.CaseRemindersHandler)
		reminders.GET("/:id", h.GetReminderHandler)
		reminders.PUT("/:id", h.UpdateReminderHandler)
		reminders.DELETE("/:id", h.CancelReminderHandler)
		reminders.PUT("/:id/snooze", h.SnoozeReminderHandler)
		reminders.PUT("/:id/dismiss", h.DismissReminderHandler)
	}

	documents := protected.Group("/documents")
	{
		documents.POST("/upload", h.UploadDocumentHandler)
		documents.GET("", h.ListDocumentsHandler)
		documents.GET("/stats", h.DocumentStatsHandler)
		documents.GET("/:id", h.GetDocumentHandler)
		documents.PUT("/:id", h.UpdateDocumentHandler)
		documents.DELETE("/:id", h.DeleteDocumentHandler)
		documents.GET("/:id/download", h.DownloadDocumentHandler)
		documents.PUT("/:id/permissions", h.UpdateDocumentPermissionsHandler)
		documents.PUT("/:id/restore", h.RestoreDocumentHandler)
	}

	messages := protected.Group("/messages")
	{
		messages.POST("", h.SendMessageHandler)
		messages.GET("", h.ListMessagesHandler)
		messages.GET("/search", h.SearchMessagesHandler)
		messages.GET("/unread-count", h.UnreadMessagesHandler)
		messages.PUT("/read-all", h.MarkAllMessagesReadHandler)
		messages.GET("/conversation/:userId", h.ConversationHandler)
		messages.GET("/threads/:threadId", h.ThreadHandler)
		messages.GET("/:id", h.GetMessageHandler)
		messages.PUT("/:id/read", h.MarkMessageReadHandler)
		messages.DELETE("/:id", h.DeleteMessageHandler)
		messages.POST("/:id/attachments", h.UploadMessageAttachmentsHandler)
	}

	notes := protected.Group("/notes")
	{
		notes.POST("", h.CreateNoteHandler)
		notes.GET("", h.ListNotesHandler)
		notes.GET("/all", h.ListNotesHandler, middleware.RequireRole(models.RoleAdmin))
		notes.GET("/:id", h.GetNoteHandler)
		notes.PUT("/:id", h.UpdateNoteHandler)
		notes.PUT("/:id/archive", h.ArchiveNoteHandler)
		notes.DELETE("/:id", h.DeleteNoteHandler)
	}

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", h.ListNotificationsHandler)
		notifications.GET("/unread-count", h.UnreadNotificationsHandler)
		notifications.PUT("/read-all", h.MarkAllNotificationsReadHandler)
		notifications.GET("/type/:type", h.NotificationsByTypeHandler)
		notifications.GET("/priority/:priority", h.NotificationsByPriorityHandler)
		notifications.DELETE("/read", h.DeleteReadNotificationsHandler)
		notifications.DELETE("/cleanup", h.CleanupNotificationsHandler, middleware.RequireRole(models.RoleAdmin))
		notifications.GET("/:id", h.GetNotificationHandler)
		notifications.PUT("/:id/read", h.MarkNotificationReadHandler)
		notifications.DELETE("/:id", h.DeleteNotificationHandler)
	}

	activities := protected.Group("/activities")
	{
		activities.GET("/my-activity", h.MyActivityHandler)
		activities.GET("/users/:userId", h.UserActivityHandler)
		activities.GET("/cases/:caseId/activities", h.CaseActivitiesHandler)
		activities.GET("/cases/:caseId/stats", h.CaseActivityStatsHandler)
		activities.GET("/:id", h.GetActivityHandler)
	}

	// Admin-only routes
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	{
		admin.PUT("/users/:id/active", h.SetUserActiveHandler)
		admin.GET("/poller", h.PollerStatusHandler)
		admin.POST("/poller/start", h.StartPollerHandler)
		admin.POST("/poller/stop", h.StopPollerHandler)
		admin.POST("/poller/tick", h.TickPollerHandler)
		admin.POST("/maintenance", h.MaintainHandler)
		admin.GET("/security/alerts", h.SecurityAlertsHandler)
	}
}

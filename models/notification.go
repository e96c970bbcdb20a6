package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types
const (
	NotificationMessageReceived     = "message_received"
	NotificationMessageRead         = "message_read"
	NotificationCaseCreated         = "case_created"
	NotificationCaseUpdated         = "case_updated"
	NotificationCaseClosed          = "case_closed"
	NotificationHearingScheduled    = "hearing_scheduled"
	NotificationHearingReminder     = "hearing_reminder"
	NotificationHearingCompleted    = "hearing_completed"
	NotificationDocumentUploaded    = "document_uploaded"
	NotificationDocumentShared      = "document_shared"
	NotificationTaskAssigned        = "task_assigned"
	NotificationTaskCompleted       = "task_completed"
	NotificationTaskOverdue         = "task_overdue"
	NotificationConnectionRequest   = "connection_request"
	NotificationConnectionAccepted  = "connection_accepted"
	NotificationConnectionRejected  = "connection_rejected"
	NotificationDeadlineApproaching = "deadline_approaching"
	NotificationParalegalAssigned   = "paralegal_assigned"
	NotificationCaseStatusChanged   = "case_status_changed"
	NotificationSystemAnnouncement  = "system_announcement"
	NotificationCustom              = "custom"
)

type notificationStyle struct {
	icon  string
	color string
}

var notificationStyles = map[string]notificationStyle{
	NotificationMessageReceived:     {"message", "blue"},
	NotificationCaseCreated:         {"briefcase", "green"},
	NotificationCaseUpdated:         {"briefcase", "blue"},
	NotificationCaseClosed:          {"archive", "gray"},
	NotificationHearingScheduled:    {"calendar", "purple"},
	NotificationHearingReminder:     {"bell", "orange"},
	NotificationHearingCompleted:    {"check-circle", "green"},
	NotificationDocumentUploaded:    {"file", "blue"},
	NotificationDocumentShared:      {"share", "blue"},
	NotificationTaskAssigned:        {"clipboard", "purple"},
	NotificationTaskCompleted:       {"check", "green"},
	NotificationTaskOverdue:         {"alert-triangle", "red"},
	NotificationConnectionRequest:   {"user-plus", "blue"},
	NotificationConnectionAccepted:  {"user-check", "green"},
	NotificationConnectionRejected:  {"user-x", "red"},
	NotificationDeadlineApproaching: {"clock", "orange"},
	NotificationParalegalAssigned:   {"users", "purple"},
}

type Notification struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID           string `gorm:"type:uuid;not null;index:idx_notification_user_read" json:"user_id"`
	NotificationType string `gorm:"not null" json:"notification_type"`
	Title            string `gorm:"size:200;not null" json:"title"`
	Message          string `gorm:"size:1000;not null" json:"message"`

	RelatedEntity EntityRef `gorm:"embedded;embeddedPrefix:related_" json:"related_entity"`
	ActionURL     string    `json:"action_url,omitempty"`
	ActionText    string    `gorm:"size:50;default:View" json:"action_text"`

	IsRead   bool       `gorm:"not null;default:false;index:idx_notification_user_read" json:"is_read"`
	ReadAt   *time.Time `json:"read_at,omitempty"`
	Priority string     `gorm:"not null;default:medium" json:"priority"`
	Icon     string     `json:"icon"`
	Color    string     `json:"color"`

	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"`
}

// BeforeCreate hook to generate UUID and fill per-type styling
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	style, ok := notificationStyles[n.NotificationType]
	if !ok {
		style = notificationStyle{"bell", "gray"}
	}
	if n.Icon == "" {
		n.Icon = style.icon
	}
	if n.Color == "" {
		n.Color = style.color
	}
	return nil
}

// BeforeSave stores every instant in UTC
func (n *Notification) BeforeSave(tx *gorm.DB) error {
	utc(n.ReadAt, n.ExpiresAt)
	return nil
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) MarkAsRead() {
	now := Now()
	n.IsRead = true
	n.ReadAt = &now
}

// IsExpired reports whether the notification should no longer be shown
func (n *Notification) IsExpired(now time.Time) bool {
	return n.ExpiresAt != nil && !n.ExpiresAt.After(now)
}

// IsValidNotificationType checks if a notification type is valid
func IsValidNotificationType(t string) bool {
	switch t {
	case NotificationMessageReceived, NotificationMessageRead, NotificationCaseCreated,
		NotificationCaseUpdated, NotificationCaseClosed, NotificationHearingScheduled,
		NotificationHearingReminder, NotificationHearingCompleted, NotificationDocumentUploaded,
		NotificationDocumentShared, NotificationTaskAssigned, NotificationTaskCompleted,
		NotificationTaskOverdue, NotificationConnectionRequest, NotificationConnectionAccepted,
		NotificationConnectionRejected, NotificationDeadlineApproaching, NotificationParalegalAssigned,
		NotificationCaseStatusChanged, NotificationSystemAnnouncement, NotificationCustom:
		return true
	}
	return false
}

// NotificationTypeForReminder maps a reminder type onto the notification enum
func NotificationTypeForReminder(reminderType string) string {
	switch reminderType {
	case ReminderTypeHearing:
		return NotificationHearingReminder
	case ReminderTypeDeadline, ReminderTypeTask:
		return NotificationDeadlineApproaching
	}
	return NotificationCustom
}

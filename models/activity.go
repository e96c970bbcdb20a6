package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityType is the kind of event recorded on a case's audit trail
type ActivityType string

const (
	// Case activities
	ActivityCaseCreated       ActivityType = "case_created"
	ActivityCaseUpdated       ActivityType = "case_updated"
	ActivityCaseStatusChanged ActivityType = "case_status_changed"
	ActivityCaseClosed        ActivityType = "case_closed"
	ActivityCaseArchived      ActivityType = "case_archived"
	ActivityCaseDeleted       ActivityType = "case_deleted"

	// Assignments
	ActivityClientAssigned    ActivityType = "client_assigned"
	ActivityAdvocateAssigned  ActivityType = "advocate_assigned"
	ActivityParalegalAssigned ActivityType = "paralegal_assigned"
	ActivityParalegalRemoved  ActivityType = "paralegal_removed"

	// Timeline
	ActivityTimelineEventAdded   ActivityType = "timeline_event_added"
	ActivityTimelineEventUpdated ActivityType = "timeline_event_updated"
	ActivityTimelineEventDeleted ActivityType = "timeline_event_deleted"
	ActivityMilestoneMarked      ActivityType = "milestone_marked"

	// Hearings
	ActivityHearingScheduled ActivityType = "hearing_scheduled"
	ActivityHearingUpdated   ActivityType = "hearing_updated"
	ActivityHearingCompleted ActivityType = "hearing_completed"
	ActivityHearingPostponed ActivityType = "hearing_postponed"
	ActivityHearingCancelled ActivityType = "hearing_cancelled"

	// Documents
	ActivityDocumentUploaded   ActivityType = "document_uploaded"
	ActivityDocumentUpdated    ActivityType = "document_updated"
	ActivityDocumentDeleted    ActivityType = "document_deleted"
	ActivityDocumentDownloaded ActivityType = "document_downloaded"
	ActivityDocumentShared     ActivityType = "document_shared"

	// Messages
	ActivityMessageSent    ActivityType = "message_sent"
	ActivityMessageDeleted ActivityType = "message_deleted"

	// Notes
	ActivityNoteCreated ActivityType = "note_created"
	ActivityNoteUpdated ActivityType = "note_updated"
	ActivityNoteDeleted ActivityType = "note_deleted"

	// Tasks
	ActivityTaskCreated       ActivityType = "task_created"
	ActivityTaskStatusChanged ActivityType = "task_status_changed"
	ActivityTaskDeleted       ActivityType = "task_deleted"

	// Other
	ActivityCommentAdded     ActivityType = "comment_added"
	ActivityStatusUpdated    ActivityType = "status_updated"
	ActivityPriorityChanged  ActivityType = "priority_changed"
	ActivityReminderCreated  ActivityType = "reminder_created"
	ActivityReminderSent     ActivityType = "reminder_sent"
	ActivityNotificationSent ActivityType = "notification_sent"
)

// Activity importance levels
const (
	ImportanceLow      = "low"
	ImportanceMedium   = "medium"
	ImportanceHigh     = "high"
	ImportanceCritical = "critical"
)

// ActivityChange records a single field edit
type ActivityChange struct {
	Field    string `json:"field"`
	OldValue any    `json:"old_value,omitempty"`
	NewValue any    `json:"new_value,omitempty"`
}

// Activity is an append-only audit entry tied to a case
type Activity struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_activity_case_created" json:"created_at"`

	CaseID       string       `gorm:"type:uuid;not null;index:idx_activity_case_created" json:"case_id"`
	UserID       string       `gorm:"type:uuid;not null;index" json:"user_id"`
	ActivityType ActivityType `gorm:"not null;index" json:"activity_type"`
	Description  string       `gorm:"size:500;not null" json:"description"`
	Action       string       `json:"action,omitempty"`

	RelatedEntity EntityRef       `gorm:"embedded;embeddedPrefix:related_" json:"related_entity"`
	Changes       *ActivityChange `gorm:"type:text;serializer:json" json:"changes,omitempty"`
	Metadata      map[string]any  `gorm:"type:text;serializer:json" json:"metadata,omitempty"`

	IPAddress  string `gorm:"type:varchar(45)" json:"ip_address,omitempty"`
	UserAgent  string `gorm:"type:text" json:"user_agent,omitempty"`
	IsVisible  bool   `gorm:"not null;default:true" json:"is_visible"`
	Importance string `gorm:"not null;default:medium" json:"importance"`
}

// BeforeCreate hook to generate UUID
func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Activity model
func (Activity) TableName() string {
	return "activities"
}

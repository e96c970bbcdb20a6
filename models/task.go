package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task status constants
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
	TaskStatusOnHold     = "on_hold"
)

// Task priority constants. Tasks use "normal" where other entities use "medium".
const (
	TaskPriorityLow    = "low"
	TaskPriorityNormal = "normal"
	TaskPriorityHigh   = "high"
	TaskPriorityUrgent = "urgent"
)

// Task type constants
const (
	TaskTypeResearch            = "research"
	TaskTypeDocumentPreparation = "document_preparation"
	TaskTypeFiling              = "filing"
	TaskTypeClientCommunication = "client_communication"
	TaskTypeCourtAppearance     = "court_appearance"
	TaskTypeEvidenceCollection  = "evidence_collection"
	TaskTypeOther               = "other"
)

// TaskComment is an append-only note on a task
type TaskComment struct {
	UserID    string    `json:"user_id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Task is work an advocate delegates to a paralegal on a case
type Task struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CaseID      string `gorm:"type:uuid;not null;index" json:"case_id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	TaskType    string `gorm:"not null;default:other" json:"task_type"`

	AssignedBy string `gorm:"type:uuid;not null;index" json:"assigned_by"`
	AssignedTo string `gorm:"type:uuid;not null;index" json:"assigned_to"`

	Status   string `gorm:"not null;default:pending;index" json:"status"`
	Priority string `gorm:"not null;default:normal" json:"priority"`

	DueDate       time.Time  `gorm:"not null;index" json:"due_date"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
	Progress      int        `gorm:"not null;default:0" json:"progress"`

	EstimatedHours float64 `json:"estimated_hours,omitempty"`
	ActualHours    float64 `json:"actual_hours,omitempty"`

	Comments    []TaskComment `gorm:"type:text;serializer:json" json:"comments"`
	Attachments []string      `gorm:"type:text;serializer:json" json:"attachments"`
	Tags        []string      `gorm:"type:text;serializer:json" json:"tags"`
}

// BeforeCreate hook to generate UUID
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// BeforeSave stores every instant in UTC
func (t *Task) BeforeSave(tx *gorm.DB) error {
	utc(&t.DueDate, t.StartDate, t.CompletedDate)
	return nil
}

// TableName specifies the table name for Task model
func (Task) TableName() string {
	return "tasks"
}

// UpdateStatus applies any target status. Completion forces progress to 100;
// starting work stamps StartDate the first time only.
func (t *Task) UpdateStatus(status string) {
	now := Now()
	t.Status = status
	switch status {
	case TaskStatusCompleted:
		t.CompletedDate = &now
		t.Progress = 100
	case TaskStatusInProgress:
		if t.StartDate == nil {
			t.StartDate = &now
		}
	}
}

// UpdateProgress clamps n into [0,100] and derives status from it
func (t *Task) UpdateProgress(n int) {
	t.Progress = max(0, min(100, n))
	now := Now()

	if t.Progress == 100 {
		t.Status = TaskStatusCompleted
		t.CompletedDate = &now
		return
	}

	if t.Progress > 0 && t.Status == TaskStatusPending {
		t.Status = TaskStatusInProgress
		if t.StartDate == nil {
			t.StartDate = &now
		}
	}
}

// AddComment appends a comment stamped now
func (t *Task) AddComment(userID, comment string) TaskComment {
	c := TaskComment{UserID: userID, Comment: comment, CreatedAt: Now()}
	t.Comments = append(t.Comments, c)
	return c
}

// IsOverdue reports a due date in the past on unfinished work
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Status == TaskStatusCompleted || t.Status == TaskStatusCancelled {
		return false
	}
	return t.DueDate.Before(now)
}

// IsValidTaskStatus checks if a status is valid
func IsValidTaskStatus(status string) bool {
	switch status {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled, TaskStatusOnHold:
		return true
	}
	return false
}

// IsValidTaskPriority checks if a priority is valid
func IsValidTaskPriority(priority string) bool {
	switch priority {
	case TaskPriorityLow, TaskPriorityNormal, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// IsValidTaskType checks if a task type is valid
func IsValidTaskType(t string) bool {
	switch t {
	case TaskTypeResearch, TaskTypeDocumentPreparation, TaskTypeFiling, TaskTypeClientCommunication,
		TaskTypeCourtAppearance, TaskTypeEvidenceCollection, TaskTypeOther:
		return true
	}
	return false
}

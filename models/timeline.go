package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Timeline event types
const (
	EventCaseCreated       = "case_created"
	EventCaseFiled         = "case_filed"
	EventHearingScheduled  = "hearing_scheduled"
	EventHearingCompleted  = "hearing_completed"
	EventHearingPostponed  = "hearing_postponed"
	EventDocumentSubmitted = "document_submitted"
	EventDocumentReceived  = "document_received"
	EventEvidenceSubmitted = "evidence_submitted"
	EventWitnessExamined   = "witness_examined"
	EventArgumentPresented = "argument_presented"
	EventJudgmentReserved  = "judgment_reserved"
	EventJudgmentDelivered = "judgment_delivered"
	EventStatusChanged     = "status_changed"
	EventParalegalAssigned = "paralegal_assigned"
	EventParalegalRemoved  = "paralegal_removed"
	EventCaseClosed        = "case_closed"
	EventCaseArchived      = "case_archived"
	EventMilestone         = "milestone"
	EventDeadline          = "deadline"
	EventNote              = "note"
	EventOther             = "other"
)

// Timeline event status constants
const (
	TimelineStatusScheduled = "scheduled"
	TimelineStatusCompleted = "completed"
	TimelineStatusPostponed = "postponed"
	TimelineStatusCancelled = "cancelled"
)

var eventTimePattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// HearingDetails carries court-specific data for hearing events
type HearingDetails struct {
	HearingType        string     `json:"hearing_type,omitempty"`
	JudgeAssigned      string     `json:"judge_assigned,omitempty"`
	ExpectedDuration   int        `json:"expected_duration,omitempty"` // minutes
	ActualDuration     int        `json:"actual_duration,omitempty"`   // minutes
	Outcome            string     `json:"outcome,omitempty"`
	NextHearingDate    *time.Time `json:"next_hearing_date,omitempty"`
	IsCompleted        bool       `json:"is_completed"`
	IsPostponed        bool       `json:"is_postponed"`
	PostponementReason string     `json:"postponement_reason,omitempty"`
}

// TimelineEvent is one entry on a case's chronology, hearings included
type TimelineEvent struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CaseID      string    `gorm:"type:uuid;not null;index:idx_timeline_case_date" json:"case_id"`
	EventType   string    `gorm:"not null;index" json:"event_type"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	EventDate   time.Time `gorm:"not null;index:idx_timeline_case_date" json:"event_date"`
	EventTime   string    `gorm:"size:5" json:"event_time,omitempty"`
	Location    string    `json:"location,omitempty"`

	Status   string `gorm:"not null;default:scheduled;index" json:"status"`
	Priority string `gorm:"not null;default:medium" json:"priority"`

	HearingDetails *HearingDetails `gorm:"type:text;serializer:json" json:"hearing_details,omitempty"`

	IsMilestone   bool     `gorm:"not null;default:false" json:"is_milestone"`
	MilestoneType string   `json:"milestone_type,omitempty"`
	Participants  []string `gorm:"type:text;serializer:json" json:"participants"`
	IsVisible     bool     `gorm:"not null;default:true" json:"is_visible"`
	Notes         string   `gorm:"type:text" json:"notes,omitempty"`

	CreatedBy string `gorm:"type:uuid;not null" json:"created_by"`
	UpdatedBy string `gorm:"type:uuid" json:"updated_by,omitempty"`
}

// BeforeCreate hook to generate UUID
func (e *TimelineEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// BeforeSave stores every instant in UTC
func (e *TimelineEvent) BeforeSave(tx *gorm.DB) error {
	utc(&e.EventDate)
	if e.HearingDetails != nil {
		utc(e.HearingDetails.NextHearingDate)
	}
	return nil
}

// TableName specifies the table name for TimelineEvent model
func (TimelineEvent) TableName() string {
	return "timeline_events"
}

// IsHearing reports whether the event is one of the hearing types
func (e *TimelineEvent) IsHearing() bool {
	switch e.EventType {
	case EventHearingScheduled, EventHearingCompleted, EventHearingPostponed:
		return true
	}
	return e.HearingDetails != nil
}

// MarkCompleted closes the event; hearing details record the outcome when present
func (e *TimelineEvent) MarkCompleted(outcome string) {
	e.Status = TimelineStatusCompleted
	if e.HearingDetails != nil {
		e.HearingDetails.IsCompleted = true
		if outcome != "" {
			e.HearingDetails.Outcome = outcome
		}
	}
}

// MarkPostponed records why and, optionally, when the hearing moves.
// EventDate keeps the original date; only HearingDetails carries the new one.
func (e *TimelineEvent) MarkPostponed(reason string, newDate *time.Time) {
	e.Status = TimelineStatusPostponed
	if e.HearingDetails == nil {
		e.HearingDetails = &HearingDetails{}
	}
	e.HearingDetails.IsPostponed = true
	e.HearingDetails.PostponementReason = reason
	if newDate != nil {
		e.HearingDetails.NextHearingDate = newDate
	}
}

func (e *TimelineEvent) Cancel() {
	e.Status = TimelineStatusCancelled
}

// Hide soft-deletes the event; rows are never physically removed
func (e *TimelineEvent) Hide() {
	e.IsVisible = false
}

// IsValidEventTime checks the HH:MM format
func IsValidEventTime(s string) bool {
	return eventTimePattern.MatchString(s)
}

// IsValidEventType checks if an event type is valid
func IsValidEventType(t string) bool {
	switch t {
	case EventCaseCreated, EventCaseFiled, EventHearingScheduled, EventHearingCompleted,
		EventHearingPostponed, EventDocumentSubmitted, EventDocumentReceived, EventEvidenceSubmitted,
		EventWitnessExamined, EventArgumentPresented, EventJudgmentReserved, EventJudgmentDelivered,
		EventStatusChanged, EventParalegalAssigned, EventParalegalRemoved, EventCaseClosed,
		EventCaseArchived, EventMilestone, EventDeadline, EventNote, EventOther:
		return true
	}
	return false
}

package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Case status constants
const (
	CaseStatusDraft   = "draft"
	CaseStatusActive  = "active"
	CaseStatusPending = "pending"
	CaseStatusOnHold  = "on_hold"
	CaseStatusClosed  = "closed"
	CaseStatusWon     = "won"
	CaseStatusLost    = "lost"
)

// Case category constants
const (
	CaseCategoryCivil          = "civil"
	CaseCategoryCriminal       = "criminal"
	CaseCategoryFamily         = "family"
	CaseCategoryProperty       = "property"
	CaseCategoryCorporate      = "corporate"
	CaseCategoryLabor          = "labor"
	CaseCategoryTax            = "tax"
	CaseCategoryConstitutional = "constitutional"
	CaseCategoryOther          = "other"
)

// Shared priority constants (cases, timeline events, reminders, notifications)
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Case represents a legal matter between one client and one advocate
type Case struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CaseNumber  string `gorm:"not null;uniqueIndex" json:"case_number"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
	Category    string `gorm:"not null;index" json:"category"`
	Status      string `gorm:"not null;default:active;index" json:"status"`
	Priority    string `gorm:"not null;default:medium" json:"priority"`

	// Participants (referential ids, no enforced constraints)
	ClientID     string   `gorm:"type:uuid;not null;index" json:"client_id"`
	AdvocateID   string   `gorm:"type:uuid;not null;index" json:"advocate_id"`
	ParalegalIDs []string `gorm:"type:text;serializer:json" json:"paralegal_ids"`

	// Court
	CourtName     string `json:"court_name,omitempty"`
	CourtLocation string `json:"court_location,omitempty"`
	JudgeName     string `json:"judge_name,omitempty"`

	// Dates
	FilingDate      *time.Time `json:"filing_date,omitempty"`
	NextHearingDate *time.Time `json:"next_hearing_date,omitempty"`
	ClosedDate      *time.Time `json:"closed_date,omitempty"`

	IsArchived bool       `gorm:"not null;default:false;index" json:"is_archived"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// BeforeSave stores every instant in UTC
func (c *Case) BeforeSave(tx *gorm.DB) error {
	utc(c.FilingDate, c.NextHearingDate, c.ClosedDate, c.ArchivedAt)
	return nil
}

// TableName specifies the table name for Case model
func (Case) TableName() string {
	return "cases"
}

// HasParalegal reports whether userID is in the paralegal set
func (c *Case) HasParalegal(userID string) bool {
	return slices.Contains(c.ParalegalIDs, userID)
}

// AddParalegal appends userID to the paralegal set. Duplicates are the caller's concern.
func (c *Case) AddParalegal(userID string) {
	c.ParalegalIDs = append(c.ParalegalIDs, userID)
}

// RemoveParalegal drops every occurrence of userID from the paralegal set
func (c *Case) RemoveParalegal(userID string) {
	c.ParalegalIDs = slices.DeleteFunc(c.ParalegalIDs, func(id string) bool { return id == userID })
}

// Close moves the case to its outcome status and stamps ClosedDate.
// It does not inspect the current status; closing twice re-stamps the date.
func (c *Case) Close(outcome string) {
	now := Now()
	c.Status = outcome
	c.ClosedDate = &now
}

func (c *Case) Archive() {
	now := Now()
	c.IsArchived = true
	c.ArchivedAt = &now
}

func (c *Case) Unarchive() {
	c.IsArchived = false
	c.ArchivedAt = nil
}

// IsValidCaseStatus checks if a status is valid
func IsValidCaseStatus(status string) bool {
	switch status {
	case CaseStatusDraft, CaseStatusActive, CaseStatusPending, CaseStatusOnHold,
		CaseStatusClosed, CaseStatusWon, CaseStatusLost:
		return true
	}
	return false
}

// IsValidCaseOutcome checks if a status may be used to close a case
func IsValidCaseOutcome(outcome string) bool {
	return outcome == CaseStatusWon || outcome == CaseStatusLost || outcome == CaseStatusClosed
}

// IsValidCaseCategory checks if a category is valid
func IsValidCaseCategory(category string) bool {
	switch category {
	case CaseCategoryCivil, CaseCategoryCriminal, CaseCategoryFamily, CaseCategoryProperty,
		CaseCategoryCorporate, CaseCategoryLabor, CaseCategoryTax, CaseCategoryConstitutional,
		CaseCategoryOther:
		return true
	}
	return false
}

// IsValidPriority checks the shared low/medium/high/urgent scale
func IsValidPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

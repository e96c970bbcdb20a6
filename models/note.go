package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Note status constants
const (
	NoteStatusDraft    = "draft"
	NoteStatusActive   = "active"
	NoteStatusArchived = "archived"
)

// MaxNoteTags bounds Note.Tags
const MaxNoteTags = 10

// NoteCategories lists the accepted categories
var NoteCategories = []string{"personal", "legal", "evidence", "important", "other"}

// Note is a private working note, optionally linked to a case
type Note struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID   string   `gorm:"type:uuid;not null;index" json:"user_id"`
	Title    string   `gorm:"size:200;not null" json:"title"`
	Content  string   `gorm:"type:text" json:"content"`
	Category string   `gorm:"not null;default:personal" json:"category"`
	Priority string   `gorm:"not null;default:medium" json:"priority"`
	Tags     []string `gorm:"type:text;serializer:json" json:"tags"`
	Status   string   `gorm:"not null;default:active" json:"status"`
	CaseID   *string  `gorm:"type:uuid;index" json:"case_id,omitempty"`
}

// BeforeCreate hook to generate UUID
func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Note model
func (Note) TableName() string {
	return "notes"
}

// IsOwnedBy reports whether userID owns the note
func (n *Note) IsOwnedBy(userID string) bool {
	return n.UserID == userID
}

// IsValidNoteStatus checks if a status is valid
func IsValidNoteStatus(status string) bool {
	return status == NoteStatusDraft || status == NoteStatusActive || status == NoteStatusArchived
}

func IsValidNoteCategory(category string) bool {
	return slices.Contains(NoteCategories, category)
}

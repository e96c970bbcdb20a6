package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document status constants
const (
	DocumentStatusDraft         = "draft"
	DocumentStatusPendingReview = "pending_review"
	DocumentStatusApproved      = "approved"
	DocumentStatusRejected      = "rejected"
	DocumentStatusArchived      = "archived"
)

// Per-user document permissions
const (
	PermissionView     = "view"
	PermissionDownload = "download"
	PermissionEdit     = "edit"
	PermissionDelete   = "delete"
)

// MaxDocumentSize is the upload limit in bytes (10MB)
const MaxDocumentSize = 10 * 1024 * 1024

// AllowedDocumentTypes lists the accepted MIME types
var AllowedDocumentTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/plain",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// DocumentCategories lists the accepted categories
var DocumentCategories = map[string]bool{
	"evidence": true, "contract": true, "agreement": true, "court_order": true,
	"petition": true, "affidavit": true, "notice": true, "correspondence": true,
	"identity_proof": true, "property_document": true, "financial_document": true,
	"medical_record": true, "police_report": true, "witness_statement": true,
	"legal_opinion": true, "case_law": true, "other": true,
}

// UserPermission grants one user a named permission on a document
type UserPermission struct {
	UserID     string `json:"user_id"`
	Permission string `json:"permission"`
}

// AccessPermissions controls who besides the uploader may see a document
type AccessPermissions struct {
	IsPublic     bool             `json:"is_public"`
	AllowedUsers []UserPermission `json:"allowed_users"`
	AllowedRoles []string         `json:"allowed_roles"`
}

// IsAllowedDocumentType checks a MIME type against AllowedDocumentTypes
func IsAllowedDocumentType(mimeType string) bool {
	return slices.Contains(AllowedDocumentTypes, mimeType)
}

// PermissionFor returns the permission granted to userID, or ""
func (p AccessPermissions) PermissionFor(userID string) string {
	for _, u := range p.AllowedUsers {
		if u.UserID == userID {
			return u.Permission
		}
	}
	return ""
}

// Document is an uploaded file attached to a case, note or timeline event
type Document struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title        string `gorm:"size:200;not null" json:"title"`
	Description  string `gorm:"size:1000" json:"description,omitempty"`
	FileName     string `gorm:"not null" json:"file_name"`
	OriginalName string `gorm:"not null" json:"original_name"`
	StorageKey   string `gorm:"not null" json:"-"`
	FileURL      string `json:"file_url,omitempty"`
	FileSize     int64  `gorm:"not null" json:"file_size"`
	MimeType     string `gorm:"not null" json:"mime_type"`
	Category     string `gorm:"not null;default:other" json:"category"`

	CaseID          *string `gorm:"type:uuid;index" json:"case_id,omitempty"`
	NoteID          *string `gorm:"type:uuid;index" json:"note_id,omitempty"`
	TimelineEventID *string `gorm:"type:uuid;index" json:"timeline_event_id,omitempty"`
	UploadedBy      string  `gorm:"type:uuid;not null;index" json:"uploaded_by"`

	AccessPermissions AccessPermissions `gorm:"type:text;serializer:json" json:"access_permissions"`
	Status            string            `gorm:"not null;default:approved" json:"status"`

	DownloadCount    int        `gorm:"not null;default:0" json:"download_count"`
	LastDownloadedAt *time.Time `json:"last_downloaded_at,omitempty"`

	IsDeleted bool       `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	DeletedBy *string    `gorm:"type:uuid" json:"deleted_by,omitempty"`
}

// BeforeCreate hook to generate UUID
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Document model
func (Document) TableName() string {
	return "documents"
}

// SoftDelete hides the document and records who removed it
func (d *Document) SoftDelete(by string) {
	now := Now()
	d.IsDeleted = true
	d.DeletedAt = &now
	d.DeletedBy = &by
}

// Restore reverses SoftDelete
func (d *Document) Restore() {
	d.IsDeleted = false
	d.DeletedAt = nil
	d.DeletedBy = nil
}

// RecordDownload bumps the counter and stamps the time
func (d *Document) RecordDownload() {
	now := Now()
	d.DownloadCount++
	d.LastDownloadedAt = &now
}

// IsValidDocumentStatus checks if a status is valid
func IsValidDocumentStatus(status string) bool {
	switch status {
	case DocumentStatusDraft, DocumentStatusPendingReview, DocumentStatusApproved, DocumentStatusRejected, DocumentStatusArchived:
		return true
	}
	return false
}

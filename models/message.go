package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message types
const (
	MessageTypeText   = "text"
	MessageTypeFile   = "file"
	MessageTypeSystem = "system"
)

// MaxMessageLength bounds Content after sanitizing
const MaxMessageLength = 5000

// MaxMessageAttachments bounds the files accepted by one upload
const MaxMessageAttachments = 5

// MessageAttachment is a stored file hung off a message
type MessageAttachment struct {
	FileName   string    `json:"file_name"`
	FileURL    string    `json:"file_url,omitempty"`
	StorageKey string    `json:"storage_key"`
	FileType   string    `json:"file_type"`
	FileSize   int64     `json:"file_size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Message is a direct, case-scoped or connection-scoped note between users
type Message struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Content     string `gorm:"type:text;not null" json:"content"`
	MessageType string `gorm:"not null;default:text" json:"message_type"`
	Priority    string `gorm:"not null;default:medium" json:"priority"`

	SenderID     string  `gorm:"type:uuid;not null;index" json:"sender_id"`
	ReceiverID   *string `gorm:"type:uuid;index" json:"receiver_id,omitempty"`
	CaseID       *string `gorm:"type:uuid;index" json:"case_id,omitempty"`
	ConnectionID *string `gorm:"type:uuid;index" json:"connection_id,omitempty"`

	ReplyToID *string `gorm:"type:uuid" json:"reply_to_id,omitempty"`
	ThreadID  string  `gorm:"type:uuid;index" json:"thread_id"`

	Attachments []MessageAttachment `gorm:"type:text;serializer:json" json:"attachments"`

	IsRead    bool       `gorm:"not null;default:false" json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	IsDeleted bool       `gorm:"not null;default:false" json:"-"`
	DeletedAt *time.Time `json:"-"`
}

// BeforeCreate hook to generate UUID. A message without a thread roots its own.
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.ThreadID == "" {
		m.ThreadID = m.ID
	}
	return nil
}

// TableName specifies the table name for Message model
func (Message) TableName() string {
	return "messages"
}

// ReplyTo threads m under parent
func (m *Message) ReplyTo(parent *Message) {
	m.ReplyToID = &parent.ID
	if parent.ThreadID != "" {
		m.ThreadID = parent.ThreadID
	} else {
		m.ThreadID = parent.ID
	}
}

func (m *Message) MarkAsRead() {
	now := Now()
	m.IsRead = true
	m.ReadAt = &now
}

func (m *Message) SoftDelete() {
	now := Now()
	m.IsDeleted = true
	m.DeletedAt = &now
}

// ContextCount returns how many of receiver, case and connection are set
func (m *Message) ContextCount() int {
	n := 0
	for _, ref := range []*string{m.ReceiverID, m.CaseID, m.ConnectionID} {
		if ref != nil && *ref != "" {
			n++
		}
	}
	return n
}

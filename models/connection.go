package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Connection status constants
const (
	ConnectionStatusPending  = "pending"
	ConnectionStatusAccepted = "accepted"
	ConnectionStatusRejected = "rejected"
	ConnectionStatusBlocked  = "blocked"
)

// Connection types name the role the recipient is expected to hold
const (
	ConnectionTypeAdvocate  = "advocate"
	ConnectionTypeParalegal = "paralegal"
)

// Connection links a client with an advocate or paralegal
type Connection struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RequesterID    string `gorm:"type:uuid;not null;index:idx_connection_pair" json:"requester_id"`
	RecipientID    string `gorm:"type:uuid;not null;index:idx_connection_pair" json:"recipient_id"`
	ConnectionType string `gorm:"not null" json:"connection_type"`
	Status         string `gorm:"not null;default:pending;index" json:"status"`
	IsActive       bool   `gorm:"not null;default:true" json:"is_active"`

	RequestMessage  string     `gorm:"size:500" json:"request_message,omitempty"`
	ResponseMessage string     `gorm:"size:500" json:"response_message,omitempty"`
	RequestedAt     time.Time  `json:"requested_at"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`
}

// BeforeCreate hook to generate UUID and stamp RequestedAt
func (c *Connection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.RequestedAt.IsZero() {
		c.RequestedAt = Now()
	}
	return nil
}

// TableName specifies the table name for Connection model
func (Connection) TableName() string {
	return "connections"
}

// Accept marks the request accepted
func (c *Connection) Accept(message string) {
	now := Now()
	c.Status = ConnectionStatusAccepted
	c.RespondedAt = &now
	c.ResponseMessage = message
}

// Reject marks the request rejected and deactivates it
func (c *Connection) Reject(message string) {
	now := Now()
	c.Status = ConnectionStatusRejected
	c.IsActive = false
	c.RespondedAt = &now
	c.ResponseMessage = message
}

// Block is reachable from any status
func (c *Connection) Block() {
	c.Status = ConnectionStatusBlocked
	c.IsActive = false
}

// Involves reports whether userID is either side of the connection
func (c *Connection) Involves(userID string) bool {
	return c.RequesterID == userID || c.RecipientID == userID
}

// OtherParty returns the id on the opposite side from userID
func (c *Connection) OtherParty(userID string) string {
	if c.RequesterID == userID {
		return c.RecipientID
	}
	return c.RequesterID
}

// IsEstablished reports an accepted, active connection
func (c *Connection) IsEstablished() bool {
	return c.Status == ConnectionStatusAccepted && c.IsActive
}

// IsValidConnectionType checks if a connection type is valid
func IsValidConnectionType(t string) bool {
	return t == ConnectionTypeAdvocate || t == ConnectionTypeParalegal
}

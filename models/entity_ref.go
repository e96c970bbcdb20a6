package models

// Entity type names used in EntityRef
const (
	EntityCase       = "Case"
	EntityTask       = "Task"
	EntityDocument   = "Document"
	EntityTimeline   = "Timeline"
	EntityHearing    = "Hearing"
	EntityNote       = "Note"
	EntityMessage    = "Message"
	EntityConnection = "Connection"
	EntityUser       = "User"
	EntityComment    = "Comment"
)

// EntityRef points at another record by type and id. It is embedded with a
// column prefix, so it never implies a foreign key.
type EntityRef struct {
	EntityType string `gorm:"size:32" json:"entity_type,omitempty"`
	EntityID   string `gorm:"type:uuid;index" json:"entity_id,omitempty"`
}

// IsCase reports whether the reference points at a case
func (r EntityRef) IsCase() bool {
	return r.EntityType == EntityCase && r.EntityID != ""
}

// IsZero reports an unset reference
func (r EntityRef) IsZero() bool {
	return r.EntityType == "" && r.EntityID == ""
}

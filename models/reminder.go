package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reminder record-level status constants
const (
	ReminderStatusScheduled = "scheduled"
	ReminderStatusSent      = "sent"
	ReminderStatusCancelled = "cancelled"
	ReminderStatusFailed    = "failed"
)

// Per-recipient status constants
const (
	RecipientStatusPending   = "pending"
	RecipientStatusSent      = "sent"
	RecipientStatusFailed    = "failed"
	RecipientStatusDismissed = "dismissed"
	RecipientStatusSnoozed   = "snoozed"
)

// Reminder type constants
const (
	ReminderTypeHearing  = "hearing_reminder"
	ReminderTypeDeadline = "deadline_reminder"
	ReminderTypeTask     = "task_reminder"
	ReminderTypeDocument = "document_reminder"
	ReminderTypePayment  = "payment_reminder"
	ReminderTypeMeeting  = "meeting_reminder"
	ReminderTypeCustom   = "custom_reminder"
)

// Delivery channels
const (
	ChannelInApp = "in_app"
	ChannelEmail = "email"
)

// Recurrence frequencies
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// DefaultSnoozeMinutes applies when a snooze request names no duration
const DefaultSnoozeMinutes = 60

// ReminderRecipient is the delivery state of one user inside a reminder
type ReminderRecipient struct {
	UserID       string     `json:"user_id"`
	Status       string     `json:"status"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	DismissedAt  *time.Time `json:"dismissed_at,omitempty"`
	SnoozedUntil *time.Time `json:"snoozed_until,omitempty"`
}

// ReminderRecipients is owned by its Reminder and holds at most one entry per user
type ReminderRecipients []ReminderRecipient

// NewReminderRecipients builds a pending recipient list, dropping repeated and empty ids
func NewReminderRecipients(userIDs []string) ReminderRecipients {
	recipients := make(ReminderRecipients, 0, len(userIDs))
	for _, id := range userIDs {
		if id == "" || recipients.Find(id) != nil {
			continue
		}
		recipients = append(recipients, ReminderRecipient{UserID: id, Status: RecipientStatusPending})
	}
	return recipients
}

// Find returns the entry for userID or nil
func (rs ReminderRecipients) Find(userID string) *ReminderRecipient {
	for i := range rs {
		if rs[i].UserID == userID {
			return &rs[i]
		}
	}
	return nil
}

// UserIDs lists the recipients in order
func (rs ReminderRecipients) UserIDs() []string {
	ids := make([]string, len(rs))
	for i, r := range rs {
		ids[i] = r.UserID
	}
	return ids
}

// Recurrence describes how a reminder repeats
type Recurrence struct {
	Frequency string     `json:"frequency"`
	Interval  int        `json:"interval"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// Next returns the occurrence after from, or false when the series has ended
func (r *Recurrence) Next(from time.Time) (time.Time, bool) {
	interval := max(r.Interval, 1)

	var next time.Time
	switch r.Frequency {
	case FrequencyDaily:
		next = from.AddDate(0, 0, interval)
	case FrequencyWeekly:
		next = from.AddDate(0, 0, 7*interval)
	case FrequencyMonthly:
		next = from.AddDate(0, interval, 0)
	default:
		return time.Time{}, false
	}

	if r.EndDate != nil && next.After(*r.EndDate) {
		return time.Time{}, false
	}
	return next, true
}

// Reminder is a scheduled message fanned out to recipients by the poller
type Reminder struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title        string     `gorm:"size:200;not null" json:"title"`
	Message      string     `gorm:"size:1000;not null" json:"message"`
	ReminderType string     `gorm:"not null" json:"reminder_type"`
	ReminderDate time.Time  `gorm:"not null;index:idx_reminder_due" json:"reminder_date"`
	EventDate    *time.Time `json:"event_date,omitempty"`

	RelatedEntity EntityRef `gorm:"embedded;embeddedPrefix:related_" json:"related_entity"`

	Recipients ReminderRecipients `gorm:"type:text;serializer:json" json:"recipients"`
	CreatedBy  string             `gorm:"type:uuid;not null;index" json:"created_by"`
	Status     string             `gorm:"not null;default:scheduled;index:idx_reminder_due" json:"status"`
	Priority   string             `gorm:"not null;default:medium" json:"priority"`

	NotificationChannels []string `gorm:"type:text;serializer:json" json:"notification_channels"`
	ActionURL            string   `json:"action_url,omitempty"`
	ActionText           string   `gorm:"size:50" json:"action_text,omitempty"`

	IsRecurring bool        `gorm:"not null;default:false" json:"is_recurring"`
	Recurrence  *Recurrence `gorm:"type:text;serializer:json" json:"recurrence,omitempty"`
	SentAt      *time.Time  `json:"sent_at,omitempty"`
}

// BeforeCreate hook to generate UUID
func (r *Reminder) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// BeforeSave stores every instant in UTC
func (r *Reminder) BeforeSave(tx *gorm.DB) error {
	utc(&r.ReminderDate, r.EventDate, r.SentAt)
	for i := range r.Recipients {
		rec := &r.Recipients[i]
		utc(rec.SentAt, rec.DismissedAt, rec.SnoozedUntil)
	}
	if r.Recurrence != nil {
		utc(r.Recurrence.EndDate)
	}
	return nil
}

// TableName specifies the table name for Reminder model
func (Reminder) TableName() string {
	return "reminders"
}

// PendingRecipients lists users who have not yet been delivered to
func (r *Reminder) PendingRecipients() []string {
	var ids []string
	for _, rec := range r.Recipients {
		if rec.Status == RecipientStatusPending {
			ids = append(ids, rec.UserID)
		}
	}
	return ids
}

// Send marks the record sent at now and flips every still-pending recipient.
// Recipients already sent, snoozed or dismissed are left as they are.
func (r *Reminder) Send(now time.Time) {
	now = now.UTC()
	r.Status = ReminderStatusSent
	r.SentAt = &now
	for i := range r.Recipients {
		if r.Recipients[i].Status == RecipientStatusPending {
			r.Recipients[i].Status = RecipientStatusSent
			r.Recipients[i].SentAt = &now
		}
	}
}

// Cancel leaves recipients untouched
func (r *Reminder) Cancel() {
	r.Status = ReminderStatusCancelled
}

// Snooze defers one recipient. It returns false when userID is not a recipient.
func (r *Reminder) Snooze(userID string, minutes int) bool {
	rec := r.Recipients.Find(userID)
	if rec == nil {
		return false
	}
	until := Now().Add(time.Duration(minutes) * time.Minute)
	rec.Status = RecipientStatusSnoozed
	rec.SnoozedUntil = &until
	return true
}

// Dismiss silences one recipient. It returns false when userID is not a recipient.
func (r *Reminder) Dismiss(userID string) bool {
	rec := r.Recipients.Find(userID)
	if rec == nil {
		return false
	}
	now := Now()
	rec.Status = RecipientStatusDismissed
	rec.DismissedAt = &now
	return true
}

// IsRecipient reports membership in the recipient list
func (r *Reminder) IsRecipient(userID string) bool {
	return r.Recipients.Find(userID) != nil
}

// HasChannel reports whether the reminder should be delivered over channel
func (r *Reminder) HasChannel(channel string) bool {
	return slices.Contains(r.NotificationChannels, channel)
}

// NextOccurrence builds the following scheduled copy of a recurring reminder
func (r *Reminder) NextOccurrence() (*Reminder, bool) {
	if !r.IsRecurring || r.Recurrence == nil {
		return nil, false
	}
	next, ok := r.Recurrence.Next(r.ReminderDate)
	if !ok {
		return nil, false
	}

	var eventDate *time.Time
	if r.EventDate != nil {
		shifted := r.EventDate.Add(next.Sub(r.ReminderDate))
		eventDate = &shifted
	}

	recurrence := *r.Recurrence
	return &Reminder{
		Title:                r.Title,
		Message:              r.Message,
		ReminderType:         r.ReminderType,
		ReminderDate:         next,
		EventDate:            eventDate,
		RelatedEntity:        r.RelatedEntity,
		Recipients:           NewReminderRecipients(r.Recipients.UserIDs()),
		CreatedBy:            r.CreatedBy,
		Status:               ReminderStatusScheduled,
		Priority:             r.Priority,
		NotificationChannels: slices.Clone(r.NotificationChannels),
		ActionURL:            r.ActionURL,
		ActionText:           r.ActionText,
		IsRecurring:          true,
		Recurrence:           &recurrence,
	}, true
}

// IsValidReminderType checks if a reminder type is valid
func IsValidReminderType(t string) bool {
	switch t {
	case ReminderTypeHearing, ReminderTypeDeadline, ReminderTypeTask, ReminderTypeDocument,
		ReminderTypePayment, ReminderTypeMeeting, ReminderTypeCustom:
		return true
	}
	return false
}

// IsValidFrequency checks if a recurrence frequency is valid
func IsValidFrequency(f string) bool {
	return f == FrequencyDaily || f == FrequencyWeekly || f == FrequencyMonthly
}

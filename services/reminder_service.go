package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lexcase_api_go/models"
	"lexcase_api_go/services/access"

	"gorm.io/gorm"
)

const (
	// ReminderRetention is how long sent and cancelled reminders are kept
	ReminderRetention = 90 * 24 * time.Hour
	// DefaultUpcomingDays is the window for Upcoming when none is given
	DefaultUpcomingDays = 7

	maxReminderTitleLength   = 200
	maxReminderMessageLength = 1000
)

// recipientClause matches reminders whose recipients JSON holds the user
const recipientClause = "EXISTS (SELECT 1 FROM json_each(reminders.recipients) WHERE json_extract(json_each.value, '$.user_id') = ?)"

// ReminderInput carries the fields of Create and Update
type ReminderInput struct {
	Title                string             `json:"title"`
	Message              string             `json:"message"`
	Type                 string             `json:"type"`
	ReminderDate         time.Time          `json:"reminder_date"`
	EventDate            *time.Time         `json:"event_date"`
	RecipientIDs         []string           `json:"recipients"`
	RelatedEntity        models.EntityRef   `json:"related_entity"`
	Priority             string             `json:"priority"`
	NotificationChannels []string           `json:"notification_channels"`
	ActionURL            string             `json:"action_url"`
	ActionText           string             `json:"action_text"`
	Recurrence           *models.Recurrence `json:"recurrence"`
}

// ReminderFilter narrows ListMine and ListForCase
type ReminderFilter struct {
	Status string
	Type   string
	Page   int
	Limit  int
}

func (f ReminderFilter) paginate(q *gorm.DB) *gorm.DB {
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := max(f.Page, 1)
	return q.Offset((page - 1) * limit).Limit(limit)
}

type ReminderService struct {
	DB       *gorm.DB
	Activity *ActivityLogger
}

func NewReminderService(db *gorm.DB) *ReminderService {
	return &ReminderService{DB: db, Activity: NewActivityLogger(db)}
}

func validateRecurrence(r *models.Recurrence) error {
	if r == nil {
		return nil
	}
	if !models.IsValidFrequency(r.Frequency) {
		return Validation("invalid recurrence frequency: %s", r.Frequency)
	}
	if r.Interval < 1 {
		return Validation("recurrence interval must be at least 1")
	}
	return nil
}

func validateChannels(channels []string) error {
	for _, c := range channels {
		if c != models.ChannelInApp && c != models.ChannelEmail {
			return Validation("invalid notification channel: %s", c)
		}
	}
	return nil
}

// Create schedules a reminder. The date must be strictly in the future and at
// least one recipient is required.
func (s *ReminderService) Create(ctx context.Context, actor access.Actor, in ReminderInput) (*models.Reminder, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Message) == "" || in.Type == "" {
		return nil, Validation("title, message, and type are required")
	}
	if len(in.Title) > maxReminderTitleLength {
		return nil, Validation("title cannot exceed %d characters", maxReminderTitleLength)
	}
	if len(in.Message) > maxReminderMessageLength {
		return nil, Validation("message cannot exceed %d characters", maxReminderMessageLength)
	}
	if !models.IsValidReminderType(in.Type) {
		return nil, Validation("invalid reminder type: %s", in.Type)
	}
	if !in.ReminderDate.After(models.Now()) {
		return nil, Validation("reminder date must be in the future")
	}
	recipients := models.NewReminderRecipients(in.RecipientIDs)
	if len(recipients) == 0 {
		return nil, Validation("at least one recipient is required")
	}
	if in.Priority != "" && !models.IsValidPriority(in.Priority) {
		return nil, Validation("invalid priority: %s", in.Priority)
	}
	if err := validateChannels(in.NotificationChannels); err != nil {
		return nil, err
	}
	if err := validateRecurrence(in.Recurrence); err != nil {
		return nil, err
	}

	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	channels := in.NotificationChannels
	if len(channels) == 0 {
		channels = []string{models.ChannelInApp}
	}

	r := &models.Reminder{
		Title:                strings.TrimSpace(in.Title),
		Message:              in.Message,
		ReminderType:         in.Type,
		ReminderDate:         in.ReminderDate,
		EventDate:            in.EventDate,
		RelatedEntity:        in.RelatedEntity,
		Recipients:           recipients,
		CreatedBy:            actor.ID,
		Status:               models.ReminderStatusScheduled,
		Priority:             priority,
		NotificationChannels: channels,
		ActionURL:            in.ActionURL,
		ActionText:           in.ActionText,
		IsRecurring:          in.Recurrence != nil,
		Recurrence:           in.Recurrence,
	}
	if err := s.DB.WithContext(ctx).Create(r).Error; err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	if r.RelatedEntity.IsCase() {
		s.Activity.Record(ctx, ActivityInput{
			CaseID:        r.RelatedEntity.EntityID,
			UserID:        actor.ID,
			Type:          models.ActivityReminderCreated,
			Description:   "Reminder created: " + r.Title,
			Action:        "create",
			RelatedEntity: r.RelatedEntity,
		})
	}
	return r, nil
}

func (s *ReminderService) load(ctx context.Context, id string) (*models.Reminder, error) {
	var r models.Reminder
	if err := s.DB.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, findError(err, "reminder")
	}
	return &r, nil
}

func (s *ReminderService) Get(ctx context.Context, actor access.Actor, id string) (*models.Reminder, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanViewReminder(r, actor) {
		return nil, Forbidden("you don't have permission to view this reminder")
	}
	return r, nil
}

// ListMine returns reminders the actor created or receives, latest date first
func (s *ReminderService) ListMine(ctx context.Context, actor access.Actor, f ReminderFilter) ([]models.Reminder, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Reminder{}).
		Where("created_by = ? OR "+recipientClause, actor.ID, actor.ID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("reminder_type = ?", f.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var reminders []models.Reminder
	err := f.paginate(q.Order("reminder_date DESC")).Find(&reminders).Error
	return reminders, total, err
}

// ListForCase returns reminders attached to a case the actor may view
func (s *ReminderService) ListForCase(ctx context.Context, actor access.Actor, caseID string, f ReminderFilter) ([]models.Reminder, int64, error) {
	var c models.Case
	if err := s.DB.WithContext(ctx).First(&c, "id = ?", caseID).Error; err != nil {
		return nil, 0, findError(err, "case")
	}
	if !access.CanViewCase(&c, actor) {
		return nil, 0, Forbidden("you don't have access to this case")
	}

	q := s.DB.WithContext(ctx).Model(&models.Reminder{}).
		Where("related_entity_type = ? AND related_entity_id = ?", models.EntityCase, caseID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var reminders []models.Reminder
	err := f.paginate(q.Order("reminder_date ASC")).Find(&reminders).Error
	return reminders, total, err
}

// Upcoming lists scheduled reminders addressed to the actor in the next days
func (s *ReminderService) Upcoming(ctx context.Context, actor access.Actor, days int) ([]models.Reminder, error) {
	if days <= 0 {
		days = DefaultUpcomingDays
	}
	now := models.Now()

	var reminders []models.Reminder
	err := s.DB.WithContext(ctx).
		Where(recipientClause, actor.ID).
		Where("status = ? AND reminder_date >= ? AND reminder_date <= ?",
			models.ReminderStatusScheduled, now, now.AddDate(0, 0, days)).
		Order("reminder_date ASC").
		Find(&reminders).Error
	return reminders, err
}

// Update edits a scheduled reminder. Only its creator may do so.
func (s *ReminderService) Update(ctx context.Context, actor access.Actor, id string, in ReminderInput) (*models.Reminder, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.CreatedBy != actor.ID {
		return nil, Forbidden("only the creator can update this reminder")
	}
	if r.Status != models.ReminderStatusScheduled {
		return nil, Conflict("cannot update reminder that is not scheduled")
	}

	if !in.ReminderDate.IsZero() {
		if !in.ReminderDate.After(models.Now()) {
			return nil, Validation("reminder date must be in the future")
		}
		r.ReminderDate = in.ReminderDate
	}
	if in.Title != "" {
		if len(in.Title) > maxReminderTitleLength {
			return nil, Validation("title cannot exceed %d characters", maxReminderTitleLength)
		}
		r.Title = strings.TrimSpace(in.Title)
	}
	if in.Message != "" {
		if len(in.Message) > maxReminderMessageLength {
			return nil, Validation("message cannot exceed %d characters", maxReminderMessageLength)
		}
		r.Message = in.Message
	}
	if in.EventDate != nil {
		r.EventDate = in.EventDate
	}
	if in.Priority != "" {
		if !models.IsValidPriority(in.Priority) {
			return nil, Validation("invalid priority: %s", in.Priority)
		}
		r.Priority = in.Priority
	}
	if len(in.NotificationChannels) > 0 {
		if err := validateChannels(in.NotificationChannels); err != nil {
			return nil, err
		}
		r.NotificationChannels = in.NotificationChannels
	}
	if in.ActionURL != "" {
		r.ActionURL = in.ActionURL
	}
	if in.ActionText != "" {
		r.ActionText = in.ActionText
	}
	if len(in.RecipientIDs) > 0 {
		r.Recipients = models.NewReminderRecipients(in.RecipientIDs)
	}

	if err := s.DB.WithContext(ctx).Save(r).Error; err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}
	return r, nil
}

// Cancel is allowed for the creator or an admin
func (s *ReminderService) Cancel(ctx context.Context, actor access.Actor, id string) (*models.Reminder, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanEditReminder(r, actor) {
		return nil, Forbidden("only the creator can cancel this reminder")
	}
	r.Cancel()
	if err := s.DB.WithContext(ctx).Save(r).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel reminder: %w", err)
	}
	return r, nil
}

// Snooze defers the actor's own delivery. minutes <= 0 uses the default.
func (s *ReminderService) Snooze(ctx context.Context, actor access.Actor, id string, minutes int) (*models.Reminder, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.IsReminderRecipient(r, actor) {
		return nil, Forbidden("only recipients can snooze this reminder")
	}
	if minutes <= 0 {
		minutes = models.DefaultSnoozeMinutes
	}
	r.Snooze(actor.ID, minutes)
	if err := s.DB.WithContext(ctx).Save(r).Error; err != nil {
		return nil, fmt.Errorf("failed to snooze reminder: %w", err)
	}
	return r, nil
}

func (s *ReminderService) Dismiss(ctx context.Context, actor access.Actor, id string) (*models.Reminder, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.IsReminderRecipient(r, actor) {
		return nil, Forbidden("only recipients can dismiss this reminder")
	}
	r.Dismiss(actor.ID)
	if err := s.DB.WithContext(ctx).Save(r).Error; err != nil {
		return nil, fmt.Errorf("failed to dismiss reminder: %w", err)
	}
	return r, nil
}

// CancelByEntity cancels every scheduled reminder pointing at the entity and
// returns how many were affected
func (s *ReminderService) CancelByEntity(ctx context.Context, ref models.EntityRef) (int64, error) {
	result := s.DB.WithContext(ctx).Model(&models.Reminder{}).
		Where("related_entity_type = ? AND related_entity_id = ? AND status = ?",
			ref.EntityType, ref.EntityID, models.ReminderStatusScheduled).
		Update("status", models.ReminderStatusCancelled)
	return result.RowsAffected, result.Error
}

// DeleteOld purges sent and cancelled reminders created before the window
func (s *ReminderService) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		olderThan = ReminderRetention
	}
	result := s.DB.WithContext(ctx).
		Where("status IN ? AND created_at < ?",
			[]string{models.ReminderStatusSent, models.ReminderStatusCancelled}, models.Now().Add(-olderThan)).
		Delete(&models.Reminder{})
	return result.RowsAffected, result.Error
}

package services

import (
	"context"
	"time"

	"lexcase_api_go/logger"
	"lexcase_api_go/models"
	"lexcase_api_go/services/access"

	"gorm.io/gorm"
)

const (
	// ReadNotificationRetention is how long read notifications are kept
	ReadNotificationRetention = 30 * 24 * time.Hour
)

// NotificationInput is everything needed to address one notification
type NotificationInput struct {
	UserID        string
	Type          string
	Title         string
	Message       string
	RelatedEntity models.EntityRef
	ActionURL     string
	ActionText    string
	Priority      string
	ExpiresAt     *time.Time
}

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// live scopes a query to unexpired rows
func live(q *gorm.DB, now time.Time) *gorm.DB {
	return q.Where("expires_at IS NULL OR expires_at > ?", now)
}

// Create validates and stores a notification
func (s *NotificationService) Create(ctx context.Context, in NotificationInput) (*models.Notification, error) {
	if in.UserID == "" {
		return nil, Validation("notification recipient is required")
	}
	if in.Title == "" || in.Message == "" {
		return nil, Validation("notification title and message are required")
	}
	if !models.IsValidNotificationType(in.Type) {
		return nil, Validation("invalid notification type: %s", in.Type)
	}

	priority := in.Priority
	if !models.IsValidPriority(priority) {
		priority = models.PriorityMedium
	}
	actionText := in.ActionText
	if actionText == "" {
		actionText = "View"
	}

	n := &models.Notification{
		UserID:           in.UserID,
		NotificationType: in.Type,
		Title:            truncate(in.Title, 200),
		Message:          truncate(in.Message, 1000),
		RelatedEntity:    in.RelatedEntity,
		ActionURL:        in.ActionURL,
		ActionText:       actionText,
		Priority:         priority,
		ExpiresAt:        in.ExpiresAt,
	}
	if err := s.DB.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// Notify is Create for paths where delivery must not affect the caller
func (s *NotificationService) Notify(ctx context.Context, in NotificationInput) BestEffort {
	_, err := s.Create(ctx, in)
	return bestEffort(logger.Component("notification").WithField("user_id", in.UserID), "notify", err)
}

// NotificationFilter narrows List. Type and Priority must be valid when set.
type NotificationFilter struct {
	UnreadOnly bool
	Type       string
	Priority   string
	Page       int
	Limit      int
}

// List returns the actor's live notifications, newest first
func (s *NotificationService) List(ctx context.Context, actor access.Actor, f NotificationFilter) ([]models.Notification, error) {
	if f.Type != "" && !models.IsValidNotificationType(f.Type) {
		return nil, Validation("invalid notification type: %s", f.Type)
	}
	if f.Priority != "" && !models.IsValidPriority(f.Priority) {
		return nil, Validation("invalid priority: %s", f.Priority)
	}
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := max(f.Page, 1)

	q := live(s.DB.WithContext(ctx).Where("user_id = ?", actor.ID), models.Now())
	if f.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if f.Type != "" {
		q = q.Where("notification_type = ?", f.Type)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}

	var notifications []models.Notification
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// Get returns one live notification the actor may view
func (s *NotificationService) Get(ctx context.Context, actor access.Actor, id string) (*models.Notification, error) {
	var n models.Notification
	err := live(s.DB.WithContext(ctx), models.Now()).First(&n, "id = ?", id).Error
	if err != nil {
		return nil, findError(err, "notification")
	}
	if !access.CanViewNotification(&n, actor) {
		return nil, Forbidden("you do not have access to this notification")
	}
	return &n, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor access.Actor) (int64, error) {
	var count int64
	err := live(s.DB.WithContext(ctx).Model(&models.Notification{}), models.Now()).
		Where("user_id = ? AND is_read = ?", actor.ID, false).
		Count(&count).Error
	return count, err
}

func (s *NotificationService) MarkAsRead(ctx context.Context, actor access.Actor, id string) (*models.Notification, error) {
	n, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}
	n.MarkAsRead()
	if err := s.DB.WithContext(ctx).Save(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// MarkAllAsRead returns the number of notifications flipped
func (s *NotificationService) MarkAllAsRead(ctx context.Context, actor access.Actor) (int64, error) {
	result := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", actor.ID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": models.Now()})
	return result.RowsAffected, result.Error
}

func (s *NotificationService) Delete(ctx context.Context, actor access.Actor, id string) error {
	n, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(n).Error
}

// DeleteAllRead removes every read notification the actor owns
func (s *NotificationService) DeleteAllRead(ctx context.Context, actor access.Actor) (int64, error) {
	result := s.DB.WithContext(ctx).
		Where("user_id = ? AND is_read = ?", actor.ID, true).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

// DeleteOld purges read notifications older than the retention window
func (s *NotificationService) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := models.Now().Add(-olderThan)
	result := s.DB.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

// DeleteExpired purges notifications past their expiry
func (s *NotificationService) DeleteExpired(ctx context.Context) (int64, error) {
	result := s.DB.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", models.Now()).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

package services

import (
	"context"
	"errors"

	"lexcase_api_go/logger"
	"lexcase_api_go/models"
	"lexcase_api_go/services/access"

	"gorm.io/gorm"
)

// ActivityInput describes one audit entry
type ActivityInput struct {
	CaseID        string
	UserID        string
	Type          models.ActivityType
	Description   string
	Action        string
	RelatedEntity models.EntityRef
	Changes       *models.ActivityChange
	Metadata      map[string]any
	Importance    string
	IPAddress     string
	UserAgent     string
}

// RequestMeta is the client information attached to audit entries
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type requestMetaKey struct{}

// WithRequestMeta attaches client information for Record to pick up
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFrom returns the client information on ctx, if any
func RequestMetaFrom(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta
}

// ActivityLogger appends to the case audit trail on behalf of mutating operations
type ActivityLogger struct {
	DB *gorm.DB
}

func NewActivityLogger(db *gorm.DB) *ActivityLogger {
	return &ActivityLogger{DB: db}
}

// Record writes one entry. Failures are logged and returned as a BestEffort,
// never as an error, so the triggering operation is unaffected.
func (l *ActivityLogger) Record(ctx context.Context, in ActivityInput) BestEffort {
	log := logger.Component("activity")

	if in.CaseID == "" || in.UserID == "" {
		return bestEffort(log, "record_activity", errors.New("activity requires case and user"))
	}

	importance := in.Importance
	if importance == "" {
		importance = models.ImportanceMedium
	}
	meta := RequestMetaFrom(ctx)
	if in.IPAddress == "" {
		in.IPAddress = meta.IPAddress
	}
	if in.UserAgent == "" {
		in.UserAgent = meta.UserAgent
	}

	entry := models.Activity{
		CaseID:        in.CaseID,
		UserID:        in.UserID,
		ActivityType:  in.Type,
		Description:   truncate(in.Description, 500),
		Action:        in.Action,
		RelatedEntity: in.RelatedEntity,
		Changes:       in.Changes,
		Metadata:      in.Metadata,
		IPAddress:     in.IPAddress,
		UserAgent:     in.UserAgent,
		IsVisible:     true,
		Importance:    importance,
	}

	err := l.DB.WithContext(ctx).Create(&entry).Error
	return bestEffort(log.WithField("case_id", in.CaseID), "record_activity", err)
}

// ActivityFilter narrows activity listings
type ActivityFilter struct {
	Type  models.ActivityType
	Limit int
	Page  int
}

func (f ActivityFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Type != "" {
		q = q.Where("activity_type = ?", f.Type)
	}
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	page := max(f.Page, 1)
	return q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit)
}

// CaseActivities lists visible activity for a case the actor may view
func (l *ActivityLogger) CaseActivities(ctx context.Context, actor access.Actor, caseID string, filter ActivityFilter) ([]models.Activity, error) {
	var c models.Case
	if err := l.DB.WithContext(ctx).First(&c, "id = ?", caseID).Error; err != nil {
		return nil, findError(err, "case")
	}
	if !access.CanViewCase(&c, actor) {
		return nil, Forbidden("you do not have access to this case")
	}

	q := l.DB.WithContext(ctx).Where("case_id = ?", caseID)
	if !actor.IsAdmin() {
		q = q.Where("is_visible = ?", true)
	}

	var activities []models.Activity
	if err := filter.apply(q).Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

// UserActivities lists entries the user produced. Only the user or an admin may ask.
func (l *ActivityLogger) UserActivities(ctx context.Context, actor access.Actor, userID string, filter ActivityFilter) ([]models.Activity, error) {
	if !actor.IsAdmin() && actor.ID != userID {
		return nil, Forbidden("you can only view your own activity")
	}

	q := l.DB.WithContext(ctx).Where("user_id = ?", userID)
	if !actor.IsAdmin() {
		q = q.Where("is_visible = ?", true)
	}

	var activities []models.Activity
	if err := filter.apply(q).Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

// Get returns a single entry after the visibility check
func (l *ActivityLogger) Get(ctx context.Context, actor access.Actor, id string) (*models.Activity, error) {
	var act models.Activity
	if err := l.DB.WithContext(ctx).First(&act, "id = ?", id).Error; err != nil {
		return nil, findError(err, "activity")
	}

	decision := access.CanViewActivity(&act, actor)
	var c *models.Case
	if decision == access.DeferToCaseAccess {
		var found models.Case
		if err := l.DB.WithContext(ctx).First(&found, "id = ?", act.CaseID).Error; err == nil {
			c = &found
		}
	}
	if !access.Resolve(decision, c, actor) {
		return nil, Forbidden("you do not have access to this activity")
	}
	return &act, nil
}

// ActivityTypeCount is one row of CaseStats
type ActivityTypeCount struct {
	ActivityType models.ActivityType `json:"activity_type"`
	Count        int64               `json:"count"`
}

// CaseStats counts a case's visible activity by type
func (l *ActivityLogger) CaseStats(ctx context.Context, actor access.Actor, caseID string) ([]ActivityTypeCount, error) {
	var c models.Case
	if err := l.DB.WithContext(ctx).First(&c, "id = ?", caseID).Error; err != nil {
		return nil, findError(err, "case")
	}
	if !access.CanViewCase(&c, actor) {
		return nil, Forbidden("you do not have access to this case")
	}

	var stats []ActivityTypeCount
	err := l.DB.WithContext(ctx).Model(&models.Activity{}).
		Select("activity_type, COUNT(*) AS count").
		Where("case_id = ? AND is_visible = ?", caseID, true).
		Group("activity_type").
		Order("count DESC").
		Scan(&stats).Error
	return stats, err
}

// truncate shortens s to at most maxLen bytes
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

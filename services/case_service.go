package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lexcase_api_go/logger"
	"lexcase_api_go/models"
	"lexcase_api_go/services/access"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxCaseTitleLength       = 200
	maxCaseDescriptionLength = 5000
)

// CaseInput carries the writable fields of a case. Pointer fields are
// optional on Update and ignored when nil.
type CaseInput struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	Priority        string     `json:"priority"`
	Status          string     `json:"status"`
	ClientID        string     `json:"client_id"`
	AdvocateID      string     `json:"advocate_id"`
	ParalegalIDs    []string   `json:"paralegal_ids"`
	CourtName       string     `json:"court_name"`
	CourtLocation   string     `json:"court_location"`
	JudgeName       string     `json:"judge_name"`
	FilingDate      *time.Time `json:"filing_date"`
	NextHearingDate *time.Time `json:"next_hearing_date"`
}

// CaseFilter narrows List
type CaseFilter struct {
	Status          string
	Category        string
	Priority        string
	Search          string
	IncludeArchived bool
	Page            int
	Limit           int
}

// CaseStats is the per-user breakdown returned by Stats
type CaseStats struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"by_status"`
	ByPriority map[string]int64 `json:"by_priority"`
	ByCategory map[string]int64 `json:"by_category"`
}

type CaseService struct {
	DB       *gorm.DB
	Activity *ActivityLogger
	Notifier *NotificationService
}

func NewCaseService(db *gorm.DB) *CaseService {
	return &CaseService{
		DB:       db,
		Activity: NewActivityLogger(db),
		Notifier: NewNotificationService(db),
	}
}

// NextCaseNumber draws the next value from the case-number counter inside tx.
// The counter is seeded from the number of existing cases the first time it
// is used, so numbering continues across an upgrade from count-based numbers.
// Format: CASE/{YEAR}/{SEQUENCE}, e.g. CASE/2026/000042
func NextCaseNumber(tx *gorm.DB, now time.Time) (string, error) {
	var existing int64
	if err := tx.Model(&models.Case{}).Unscoped().Count(&existing).Error; err != nil {
		return "", fmt.Errorf("failed to count cases: %w", err)
	}

	seed := models.Counter{Name: models.CounterCaseNumber, Value: existing}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return "", fmt.Errorf("failed to seed case counter: %w", err)
	}

	err := tx.Model(&models.Counter{}).
		Where("name = ?", models.CounterCaseNumber).
		UpdateColumn("value", gorm.Expr("value + ?", 1)).Error
	if err != nil {
		return "", fmt.Errorf("failed to advance case counter: %w", err)
	}

	var counter models.Counter
	if err := tx.First(&counter, "name = ?", models.CounterCaseNumber).Error; err != nil {
		return "", fmt.Errorf("failed to read case counter: %w", err)
	}

	return fmt.Sprintf("CASE/%d/%06d", now.Year(), counter.Value), nil
}

// hasAdvocateConnection reports an accepted, active client -> advocate link
func (s *CaseService) hasAdvocateConnection(ctx context.Context, clientID, advocateID string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Connection{}).
		Where("requester_id = ? AND recipient_id = ? AND connection_type = ? AND status = ? AND is_active = ?",
			clientID, advocateID, models.ConnectionTypeAdvocate, models.ConnectionStatusAccepted, true).
		Count(&count).Error
	return count > 0, err
}

func (s *CaseService) loadUserWithRole(ctx context.Context, id, role string) (*models.User, error) {
	var u models.User
	err := s.DB.WithContext(ctx).First(&u, "id = ?", id).Error
	if err != nil || u.Role != role {
		if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("valid " + role)
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", role, err)
	}
	return &u, nil
}

// validateParalegals checks every ID names a paralegal and returns the IDs
// with repeats removed, in their original order
func (s *CaseService) validateParalegals(ctx context.Context, in []string) ([]string, error) {
	ids := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, id := range in {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return ids, nil
	}
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id IN ? AND role = ?", ids, models.RoleParalegal).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to verify paralegals: %w", err)
	}
	if count != int64(len(ids)) {
		return nil, Validation("one or more invalid paralegal IDs")
	}
	return ids, nil
}

func validateCaseFields(in CaseInput) error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" || in.Category == "" {
		return Validation("title, description, and category are required")
	}
	if len(in.Title) > maxCaseTitleLength {
		return Validation("title cannot exceed %d characters", maxCaseTitleLength)
	}
	if len(in.Description) > maxCaseDescriptionLength {
		return Validation("description cannot exceed %d characters", maxCaseDescriptionLength)
	}
	if !models.IsValidCaseCategory(in.Category) {
		return Validation("invalid case category: %s", in.Category)
	}
	if in.Priority != "" && !models.IsValidPriority(in.Priority) {
		return Validation("invalid priority: %s", in.Priority)
	}
	return nil
}

// Create opens a case. Clients and advocates need an accepted connection with
// the other party; admins must name both.
func (s *CaseService) Create(ctx context.Context, actor access.Actor, in CaseInput) (*models.Case, error) {
	if err := validateCaseFields(in); err != nil {
		return nil, err
	}

	status := models.CaseStatusActive
	if in.Status == models.CaseStatusDraft {
		status = models.CaseStatusDraft
	} else if in.Status != "" && in.Status != models.CaseStatusActive {
		return nil, Validation("a new case must be active or draft")
	}

	clientID, advocateID := in.ClientID, in.AdvocateID
	switch actor.Role {
	case models.RoleClient:
		if advocateID == "" {
			return nil, Validation("advocate ID is required when a client creates a case")
		}
		clientID = actor.ID
		ok, err := s.hasAdvocateConnection(ctx, clientID, advocateID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, Forbidden("you must be connected with the advocate to create a case")
		}
	case models.RoleAdvocate:
		if clientID == "" {
			return nil, Validation("client ID is required when an advocate creates a case")
		}
		advocateID = actor.ID
		ok, err := s.hasAdvocateConnection(ctx, clientID, advocateID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, Forbidden("you must be connected with the client to create a case")
		}
	case models.RoleAdmin:
		if clientID == "" || advocateID == "" {
			return nil, Validation("both client ID and advocate ID are required")
		}
	default:
		return nil, Forbidden("only clients, advocates, and admins can create cases")
	}

	if _, err := s.loadUserWithRole(ctx, clientID, models.RoleClient); err != nil {
		return nil, err
	}
	if _, err := s.loadUserWithRole(ctx, advocateID, models.RoleAdvocate); err != nil {
		return nil, err
	}
	paralegals, err := s.validateParalegals(ctx, in.ParalegalIDs)
	if err != nil {
		return nil, err
	}

	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	c := &models.Case{
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		Category:        in.Category,
		Status:          status,
		Priority:        priority,
		ClientID:        clientID,
		AdvocateID:      advocateID,
		ParalegalIDs:    paralegals,
		CourtName:       in.CourtName,
		CourtLocation:   in.CourtLocation,
		JudgeName:       in.JudgeName,
		FilingDate:      in.FilingDate,
		NextHearingDate: in.NextHearingDate,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := NextCaseNumber(tx, models.Now())
		if err != nil {
			return err
		}
		c.CaseNumber = number
		return tx.Create(c).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create case: %w", err)
	}

	logger.Component("case").WithFields(logrus.Fields{
		"case_id":     c.ID,
		"case_number": c.CaseNumber,
		"actor_id":    actor.ID,
	}).Info("case created")

	s.Activity.Record(ctx, ActivityInput{
		CaseID:        c.ID,
		UserID:        actor.ID,
		Type:          models.ActivityCaseCreated,
		Description:   fmt.Sprintf("Case %s created", c.CaseNumber),
		Action:        "create",
		RelatedEntity: models.EntityRef{EntityType: models.EntityCase, EntityID: c.ID},
		Importance:    models.ImportanceHigh,
	})

	for _, userID := range []string{clientID, advocateID} {
		if userID == actor.ID {
			continue
		}
		s.Notifier.Notify(ctx, NotificationInput{
			UserID:        userID,
			Type:          models.NotificationCaseCreated,
			Title:         "New case opened",
			Message:       fmt.Sprintf("Case %s: %s", c.CaseNumber, c.Title),
			RelatedEntity: models.EntityRef{EntityType: models.EntityCase, EntityID: c.ID},
			ActionURL:     "/cases/" + c.ID,
		})
	}

	return c, nil
}

func (s *CaseService) load(ctx context.Context, id string) (*models.Case, error) {
	var c models.Case
	if err := s.DB.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, findError(err, "case")
	}
	return &c, nil
}

// loadForEdit fetches a case and applies CanEditCase with a verb-specific message
func (s *CaseService) loadForEdit(ctx context.Context, actor access.Actor, id, verb string) (*models.Case, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanEditCase(c, actor) {
		return nil, Forbidden("only the assigned advocate or admin can %s this case", verb)
	}
	return c, nil
}

// Get returns a case the actor may view
func (s *CaseService) Get(ctx context.Context, actor access.Actor, id string) (*models.Case, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanViewCase(c, actor) {
		return nil, Forbidden("you do not have access to this case")
	}
	return c, nil
}

// scopeToActor limits a case query to the cases the actor participates in
func scopeToActor(q *gorm.DB, actor access.Actor) *gorm.DB {
	switch actor.Role {
	case models.RoleAdmin:
		return q
	case models.RoleClient:
		return q.Where("client_id = ?", actor.ID)
	case models.RoleAdvocate:
		return q.Where("advocate_id = ?", actor.ID)
	default:
		// paralegal_ids is a JSON array column
		return q.Where("EXISTS (SELECT 1 FROM json_each(cases.paralegal_ids) WHERE json_each.value = ?)", actor.ID)
	}
}

// List returns the actor's cases, newest first, with the total before paging
func (s *CaseService) List(ctx context.Context, actor access.Actor, f CaseFilter) ([]models.Case, int64, error) {
	q := scopeToActor(s.DB.WithContext(ctx).Model(&models.Case{}), actor)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if !f.IncludeArchived {
		q = q.Where("is_archived = ?", false)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(case_number) LIKE ? OR LOWER(description) LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	page := max(f.Page, 1)

	var cases []models.Case
	err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&cases).Error
	return cases, total, err
}

// Update applies the editable fields. Participants and the case number are never changed here.
func (s *CaseService) Update(ctx context.Context, actor access.Actor, id string, in CaseInput) (*models.Case, error) {
	c, err := s.loadForEdit(ctx, actor, id, "edit")
	if err != nil {
		return nil, err
	}

	if in.Title != "" {
		if len(in.Title) > maxCaseTitleLength {
			return nil, Validation("title cannot exceed %d characters", maxCaseTitleLength)
		}
		c.Title = strings.TrimSpace(in.Title)
	}
	if in.Description != "" {
		if len(in.Description) > maxCaseDescriptionLength {
			return nil, Validation("description cannot exceed %d characters", maxCaseDescriptionLength)
		}
		c.Description = in.Description
	}
	if in.Category != "" {
		if !models.IsValidCaseCategory(in.Category) {
			return nil, Validation("invalid case category: %s", in.Category)
		}
		c.Category = in.Category
	}
	if in.Priority != "" {
		if !models.IsValidPriority(in.Priority) {
			return nil, Validation("invalid priority: %s", in.Priority)
		}
		c.Priority = in.Priority
	}

	var statusChange *models.ActivityChange
	if in.Status != "" && in.Status != c.Status {
		if !models.IsValidCaseStatus(in.Status) {
			return nil, Validation("invalid case status: %s", in.Status)
		}
		statusChange = &models.ActivityChange{Field: "status", OldValue: c.Status, NewValue: in.Status}
		c.Status = in.Status
	}
	if in.CourtName != "" {
		c.CourtName = in.CourtName
	}
	if in.CourtLocation != "" {
		c.CourtLocation = in.CourtLocation
	}
	if in.JudgeName != "" {
		c.JudgeName = in.JudgeName
	}
	if in.FilingDate != nil {
		c.FilingDate = in.FilingDate
	}
	if in.NextHearingDate != nil {
		c.NextHearingDate = in.NextHearingDate
	}

	if err := s.DB.WithContext(ctx).Save(c).Error; err != nil {
		return nil, fmt.Errorf("failed to update case: %w", err)
	}

	activityType := models.ActivityCaseUpdated
	if statusChange != nil {
		activityType = models.ActivityCaseStatusChanged
	}
	s.Activity.Record(ctx, ActivityInput{
		CaseID:      c.ID,
		UserID:      actor.ID,
		Type:        activityType,
		Description: fmt.Sprintf("Case %s updated", c.CaseNumber),
		Action:      "update",
		Changes:     statusChange,
	})
	if statusChange != nil && c.ClientID != actor.ID {
		s.Notifier.Notify(ctx, NotificationInput{
			UserID:        c.ClientID,
			Type:          models.NotificationCaseStatusChanged,
			Title:         "Case status changed",
			Message:       fmt.Sprintf("Case %s is now %s", c.CaseNumber, c.Status),
			RelatedEntity: models.EntityRef{EntityType: models.EntityCase, EntityID: c.ID},
			ActionURL:     "/cases/" + c.ID,
		})
	}

	return c, nil
}

// Close moves the case to outcome. It does not look at the current status.
func (s *CaseService) Close(ctx context.Context, actor access.Actor, id, outcome string) (*models.Case, error) {
	if !models.IsValidCaseOutcome(outcome) {
		return nil, Validation("valid outcome is required (won, lost, or closed)")
	}
	c, err := s.loadForEdit(ctx, actor, id, "close")
	if err != nil {
		return nil, err
	}

	previous := c.Status
	c.Close(outcome)
	if err := s.DB.WithContext(ctx).Save(c).Error; err != nil {
		return nil, fmt.Errorf("failed to close case: %w", err)
	}

	s.Activity.Record(ctx, ActivityInput{
		CaseID:      c.ID,
		UserID:      actor.ID,
		Type:        models.ActivityCaseClosed,
		Description: fmt.Sprintf("Case closed with outcome: %s", outcome),
		Action:      "close",
		Changes:     &models.ActivityChange{Field: "status", OldValue: previous, NewValue: outcome},
		Importance:  models.ImportanceHigh,
	})
	if c.ClientID != actor.ID {
		s.Notifier.Notify(ctx, NotificationInput{
			UserID:        c.ClientID,
			Type:          models.NotificationCaseClosed,
			Title:         "Case closed",
			Message:       fmt.Sprintf("Case %s was closed with outcome: %s", c.CaseNumber, outcome),
			RelatedEntity: models.EntityRef{EntityType: models.EntityCase, EntityID: c.ID},
			ActionURL:     "/cases/" + c.ID,
			Priority:      models.PriorityHigh,
		})
	}

	return c, nil
}

func (s *CaseService) Archive(ctx context.Context, actor access.Actor, id string) (*models.Case, error) {
	c, err := s.loadForEdit(ctx, actor, id, "archive")
	if err != nil {
		return nil, err
	}
	c.Archive()
	if err := s.DB.WithContext(ctx).Save(c).Error; err != nil {
		return nil, fmt.Errorf("failed to archive case: %w", err)
	}
	s.Activity.Record(ctx, ActivityInput{
		CaseID:      c.ID,
		UserID:      actor.ID,
		Type:        models.ActivityCaseArchived,
		Description: fmt.Sprintf("Case %s archived", c.CaseNumber),
		Action:      "archive",
	})
	return c, nil
}

func (s *CaseService) Unarchive(ctx context.Context, actor access.Actor, id string) (*models.Case, error) {
	c, err := s.loadForEdit(ctx, actor, id, "unarchive")
	if err != nil {
		return nil, err
	}
	c.Unarchive()
	if err := s.DB.WithContext(ctx).Save(c).Error; err != nil {
		return nil, fmt.Errorf("failed to unarchive case: %w", err)
	}
	s.Activity.Record(ctx, ActivityInput{
		CaseID:      c.ID,
		UserID:      actor.ID,
		Type:        models.ActivityCaseUpdated,
		Description: fmt.Sprintf("Case %s unarchived", c.CaseNumber),
		Action:      "unarchive",
	})
	return c, nil
}

// AssignParalegal adds a paralegal to the case. A repeat assignment is a conflict.
func (s *CaseService) AssignParalegal(ctx context.Context, actor access.Actor, id, paralegalID string) (*models.Case, error) {
	if paralegalID == "" {
		return nil, Validation("paralegal ID is required")
	}
	c, err := s.loadForEdit(ctx, actor, id, "assign paralegals to")
	if err != nil {
		return nil, err
	}
	if _, err := s.loadUserWithRole(ctx, paralegalID, models.RoleParalegal); err != nil {
		return nil, err
	}
	if c.HasParalegal(paralegalID) {
		return nil, Conflict("paralegal is already assigned to this case")
	}

	c.AddParalegal(paralegalID)
	if err := s.DB.WithContext(ctx).Save(c).Error; err != nil {
		return nil, fmt.Errorf("failed to assign paralegal: %w", err)
	}

	s.Activity.Record(ctx, ActivityInput{
		CaseID:        c.ID,
		UserID:        actor.ID,
		Type:          models.ActivityParalegalAssigned,
		Description:   "Paralegal assigned to case",
		Action:        "assign",
		RelatedEntity: models.EntityRef{EntityType: models.EntityUser, EntityID: paralegalID},
	})
	s.Notifier.Notify(ctx, NotificationInput{
		UserID:        paralegalID,
		Type:          models.NotificationParalegalAssigned,
		Title:         "Assigned to a case",
		Message:       fmt.Sprintf("You were assigned to case %s: %s", c.CaseNumber, c.Title),
		RelatedEntity: models.EntityRef{EntityType: models.EntityCase, EntityID: c.ID},
		ActionURL:     "/cases/" + c.ID,
	})

	return c, nil
}

func (s *CaseService) RemoveParalegal(ctx context.Context, actor access.Actor, id, paralegalID string) (*models.Case, error) {
	c, err := s.loadForEdit(ctx, actor, id, "remove paralegals from")
	if err != nil {
		return nil, err
	}
	c.RemoveParalegal(paralegalID)
	if err := s.DB.WithContext(ctx).Save(c).Error; err != nil {
		return nil, fmt.Errorf("failed to remove paralegal: %w", err)
	}
	s.Activity.Record(ctx, ActivityInput{
		CaseID:        c.ID,
		UserID:        actor.ID,
		Type:          models.ActivityParalegalRemoved,
		Description:   "Paralegal removed from case",
		Action:        "remove",
		RelatedEntity: models.EntityRef{EntityType: models.EntityUser, EntityID: paralegalID},
	})
	return c, nil
}

// Delete is admin only
func (s *CaseService) Delete(ctx context.Context, actor access.Actor, id string) error {
	c, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return Forbidden("only admins can delete cases")
	}
	if err := s.DB.WithContext(ctx).Delete(c).Error; err != nil {
		return fmt.Errorf("failed to delete case: %w", err)
	}
	s.Activity.Record(ctx, ActivityInput{
		CaseID:      c.ID,
		UserID:      actor.ID,
		Type:        models.ActivityCaseDeleted,
		Description: fmt.Sprintf("Case %s deleted", c.CaseNumber),
		Action:      "delete",
		Importance:  models.ImportanceCritical,
	})
	return nil
}

type groupCount struct {
	Grp   string
	Count int64
}

// Stats counts the actor's cases by status, priority and category
func (s *CaseService) Stats(ctx context.Context, actor access.Actor) (*CaseStats, error) {
	stats := &CaseStats{
		ByStatus:   map[string]int64{},
		ByPriority: map[string]int64{},
		ByCategory: map[string]int64{},
	}

	base := func() *gorm.DB {
		return scopeToActor(s.DB.WithContext(ctx).Model(&models.Case{}), actor)
	}
	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	for column, target := range map[string]map[string]int64{
		"status":   stats.ByStatus,
		"priority": stats.ByPriority,
		"category": stats.ByCategory,
	} {
		var rows []groupCount
		err := base().Select(column + " AS grp, COUNT(*) AS count").Group(column).Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count cases by %s: %w", column, err)
		}
		for _, r := range rows {
			target[r.Grp] = r.Count
		}
	}
	return stats, nil
}

// ExportXLSX renders the actor's cases (archived included) as a spreadsheet
func (s *CaseService) ExportXLSX(ctx context.Context, actor access.Actor) (*bytes.Buffer, error) {
	var cases []models.Case
	err := scopeToActor(s.DB.WithContext(ctx).Model(&models.Case{}), actor).
		Order("created_at DESC").
		Find(&cases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cases: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Cases"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Case Number", "Title", "Category", "Status", "Priority", "Court", "Filing Date", "Next Hearing", "Closed", "Archived"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, c := range cases {
		values := []interface{}{
			c.CaseNumber,
			c.Title,
			c.Category,
			c.Status,
			c.Priority,
			c.CourtName,
			formatDate(c.FilingDate),
			formatDate(c.NextHearingDate),
			formatDate(c.ClosedDate),
			c.IsArchived,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", lastHeader, headerStyle)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

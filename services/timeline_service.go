package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lexcase_api_go/logger"
	"lexcase_api_go/models"
	"lexcase_api_go/services/access"

	"gorm.io/gorm"
)

const hearingReminderLead = 24 * time.Hour

// TimelineInput carries the fields of Create, AddHearing and Update
type TimelineInput struct {
	EventType     string    `json:"event_type"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	EventDate     time.Time `json:"event_date"`
	EventTime     string    `json:"event_time"`
	Location      string    `json:"location"`
	Priority      string    `json:"priority"`
	IsMilestone   bool      `json:"is_milestone"`
	MilestoneType string    `json:"milestone_type"`
	Participants  []string  `json:"participants"`
	Notes         string    `json:"notes"`

	// Hearing only
	HearingType      string `json:"hearing_type"`
	JudgeAssigned    string `json:"judge_assigned"`
	ExpectedDuration int    `json:"expected_duration"`
	DisableReminder  bool   `json:"disable_reminder"`
}

// HearingResult is what Complete records on a hearing
type HearingResult struct {
	Outcome         string     `json:"outcome"`
	ActualDuration  int        `json:"actual_duration"`
	NextHearingDate *time.Time `json:"next_hearing_date"`
	Notes           string     `json:"notes"`
}

type TimelineService struct {
	DB        *gorm.DB
	Activity  *ActivityLogger
	Notifier  *NotificationService
	Reminders *ReminderService
}

func NewTimelineService(db *gorm.DB) *TimelineService {
	return &TimelineService{
		DB:        db,
		Activity:  NewActivityLogger(db),
		Notifier:  NewNotificationService(db),
		Reminders: NewReminderService(db),
	}
}

func (s *TimelineService) loadCase(ctx context.Context, id string) (*models.Case, error) {
	var c models.Case
	if err := s.DB.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, findError(err, "case")
	}
	return &c, nil
}

func (s *TimelineService) viewableCase(ctx context.Context, actor access.Actor, caseID string) (*models.Case, error) {
	c, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !access.CanViewCase(c, actor) {
		return nil, Forbidden("you do not have access to this case")
	}
	return c, nil
}

// managedEvent loads a visible event together with its case, requiring the
// actor to manage the case's timeline
func (s *TimelineService) managedEvent(ctx context.Context, actor access.Actor, id, verb string) (*models.TimelineEvent, *models.Case, error) {
	var e models.TimelineEvent
	if err := s.DB.WithContext(ctx).Where("is_visible = ?", true).First(&e, "id = ?", id).Error; err != nil {
		return nil, nil, findError(err, "event")
	}
	c, err := s.loadCase(ctx, e.CaseID)
	if err != nil {
		return nil, nil, err
	}
	if !access.CanManageTimeline(c, actor) {
		return nil, nil, Forbidden("only the case advocate or admin can %s events", verb)
	}
	return &e, c, nil
}

func validateTimelineInput(in TimelineInput) error {
	if strings.TrimSpace(in.Title) == "" || in.EventDate.IsZero() {
		return Validation("title and event date are required")
	}
	if len(in.Title) > 200 {
		return Validation("title cannot exceed 200 characters")
	}
	if in.EventTime != "" && !models.IsValidEventTime(in.EventTime) {
		return Validation("event time must be in HH:MM format")
	}
	if in.Priority != "" && !models.IsValidPriority(in.Priority) {
		return Validation("invalid priority: %s", in.Priority)
	}
	return nil
}

// Create adds an event to a case timeline
func (s *TimelineService) Create(ctx context.Context, actor access.Actor, caseID string, in TimelineInput) (*models.TimelineEvent, error) {
	if in.EventType == "" {
		return nil, Validation("event type is required")
	}
	if !models.IsValidEventType(in.EventType) {
		return nil, Validation("invalid event type: %s", in.EventType)
	}
	if err := validateTimelineInput(in); err != nil {
		return nil, err
	}
	c, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !access.CanManageTimeline(c, actor) {
		return nil, Forbidden("only the case advocate or admin can add timeline events")
	}

	e := newTimelineEvent(c.ID, actor.ID, in)
	if err := s.DB.WithContext(ctx).Create(e).Error; err != nil {
		return nil, fmt.Errorf("failed to create timeline event: %w", err)
	}

	activityType := models.ActivityTimelineEventAdded
	if e.IsMilestone {
		activityType = models.ActivityMilestoneMarked
	}
	s.record(ctx, actor, e, activityType, "Timeline event added: "+e.Title)
	return e, nil
}

func newTimelineEvent(caseID, userID string, in TimelineInput) *models.TimelineEvent {
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	participants := in.Participants
	if participants == nil {
		participants = []string{}
	}
	return &models.TimelineEvent{
		CaseID:        caseID,
		EventType:     in.EventType,
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		EventDate:     in.EventDate,
		EventTime:     in.EventTime,
		Location:      in.Location,
		Status:        models.TimelineStatusScheduled,
		Priority:      priority,
		IsMilestone:   in.IsMilestone,
		MilestoneType: in.MilestoneType,
		Participants:  participants,
		IsVisible:     true,
		Notes:         in.Notes,
		CreatedBy:     userID,
	}
}

// AddHearing schedules a hearing, moves the case's next hearing date, and
// tells the other case parties
func (s *TimelineService) AddHearing(ctx context.Context, actor access.Actor, caseID string, in TimelineInput) (*models.TimelineEvent, error) {
	if strings.TrimSpace(in.Title) == "" {
		in.Title = "Court Hearing"
	}
	if in.Priority == "" {
		in.Priority = models.PriorityHigh
	}
	if err := validateTimelineInput(in); err != nil {
		return nil, err
	}
	c, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !access.CanManageTimeline(c, actor) {
		return nil, Forbidden("only the case advocate or admin can add hearings")
	}

	in.EventType = models.EventHearingScheduled
	e := newTimelineEvent(c.ID, actor.ID, in)
	hearingType := in.HearingType
	if hearingType == "" {
		hearingType = "regular_hearing"
	}
	e.HearingDetails = &models.HearingDetails{
		HearingType:      hearingType,
		JudgeAssigned:    in.JudgeAssigned,
		ExpectedDuration: in.ExpectedDuration,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(e).Error; err != nil {
			return err
		}
		return tx.Model(c).Update("next_hearing_date", e.EventDate.UTC()).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule hearing: %w", err)
	}
	c.NextHearingDate = &e.EventDate

	s.record(ctx, actor, e, models.ActivityHearingScheduled, "Hearing scheduled: "+e.Title)

	when := e.EventDate.Format("2006-01-02")
	if e.EventTime != "" {
		when += " " + e.EventTime
	}
	parties := caseParties(c, actor.ID)
	for _, userID := range parties {
		s.Notifier.Notify(ctx, NotificationInput{
			UserID:        userID,
			Type:          models.NotificationHearingScheduled,
			Title:         "Hearing scheduled",
			Message:       fmt.Sprintf("A hearing for case %s is scheduled on %s", c.CaseNumber, when),
			RelatedEntity: models.EntityRef{EntityType: models.EntityHearing, EntityID: e.ID},
			ActionURL:     "/cases/" + c.ID + "/timeline",
			Priority:      models.PriorityHigh,
		})
	}

	if !in.DisableReminder {
		s.scheduleHearingReminder(ctx, actor, c, e)
	}
	return e, nil
}

// caseParties lists the case participants other than the given user
func caseParties(c *models.Case, except string) []string {
	all := append([]string{c.ClientID, c.AdvocateID}, c.ParalegalIDs...)
	out := make([]string, 0, len(all))
	for _, id := range all {
		if id != "" && id != except {
			out = append(out, id)
		}
	}
	return out
}

// scheduleHearingReminder books a hearing_reminder for every party, including
// the actor, a day before the hearing
func (s *TimelineService) scheduleHearingReminder(ctx context.Context, actor access.Actor, c *models.Case, e *models.TimelineEvent) BestEffort {
	at := e.EventDate.Add(-hearingReminderLead)
	if !at.After(models.Now()) {
		return BestEffort{Operation: "hearing_reminder"}
	}
	recipients := append(caseParties(c, actor.ID), actor.ID)
	date := e.EventDate
	_, err := s.Reminders.Create(ctx, actor, ReminderInput{
		Title:                "Hearing tomorrow: " + truncate(e.Title, 150),
		Message:              fmt.Sprintf("Case %s has a hearing on %s", c.CaseNumber, e.EventDate.Format("2006-01-02")),
		Type:                 models.ReminderTypeHearing,
		ReminderDate:         at,
		EventDate:            &date,
		RecipientIDs:         recipients,
		RelatedEntity:        models.EntityRef{EntityType: models.EntityCase, EntityID: c.ID},
		Priority:             models.PriorityHigh,
		NotificationChannels: []string{models.ChannelInApp, models.ChannelEmail},
		ActionURL:            "/cases/" + c.ID + "/timeline",
	})
	return bestEffort(logger.Component("timeline").WithField("event_id", e.ID), "hearing_reminder", err)
}

func (s *TimelineService) record(ctx context.Context, actor access.Actor, e *models.TimelineEvent, t models.ActivityType, description string) {
	entity := models.EntityTimeline
	if e.IsHearing() {
		entity = models.EntityHearing
	}
	s.Activity.Record(ctx, ActivityInput{
		CaseID:        e.CaseID,
		UserID:        actor.ID,
		Type:          t,
		Description:   description,
		Action:        string(t),
		RelatedEntity: models.EntityRef{EntityType: entity, EntityID: e.ID},
	})
}

// Get returns a visible event on a case the actor can view
func (s *TimelineService) Get(ctx context.Context, actor access.Actor, id string) (*models.TimelineEvent, error) {
	var e models.TimelineEvent
	if err := s.DB.WithContext(ctx).Where("is_visible = ?", true).First(&e, "id = ?", id).Error; err != nil {
		return nil, findError(err, "event")
	}
	if _, err := s.viewableCase(ctx, actor, e.CaseID); err != nil {
		return nil, err
	}
	return &e, nil
}

// Update edits descriptive fields. Zero values leave a field unchanged.
func (s *TimelineService) Update(ctx context.Context, actor access.Actor, id string, in TimelineInput) (*models.TimelineEvent, error) {
	e, _, err := s.managedEvent(ctx, actor, id, "update")
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		e.Title = title
	}
	if in.Description != "" {
		e.Description = in.Description
	}
	if !in.EventDate.IsZero() {
		e.EventDate = in.EventDate
	}
	if in.EventTime != "" {
		if !models.IsValidEventTime(in.EventTime) {
			return nil, Validation("event time must be in HH:MM format")
		}
		e.EventTime = in.EventTime
	}
	if in.Location != "" {
		e.Location = in.Location
	}
	if in.Priority != "" {
		if !models.IsValidPriority(in.Priority) {
			return nil, Validation("invalid priority: %s", in.Priority)
		}
		e.Priority = in.Priority
	}
	if in.Participants != nil {
		e.Participants = in.Participants
	}
	if in.Notes != "" {
		e.Notes = in.Notes
	}
	if in.IsMilestone {
		e.IsMilestone = true
		if in.MilestoneType != "" {
			e.MilestoneType = in.MilestoneType
		}
	}
	e.UpdatedBy = actor.ID

	if err := s.DB.WithContext(ctx).Save(e).Error; err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	activityType := models.ActivityTimelineEventUpdated
	if e.IsHearing() {
		activityType = models.ActivityHearingUpdated
	}
	s.record(ctx, actor, e, activityType, "Timeline event updated: "+e.Title)
	return e, nil
}

// Complete marks an event done. A next hearing date also moves the case's.
func (s *TimelineService) Complete(ctx context.Context, actor access.Actor, id string, res HearingResult) (*models.TimelineEvent, error) {
	e, c, err := s.managedEvent(ctx, actor, id, "complete")
	if err != nil {
		return nil, err
	}

	e.MarkCompleted(res.Outcome)
	if e.HearingDetails != nil {
		if res.ActualDuration > 0 {
			e.HearingDetails.ActualDuration = res.ActualDuration
		}
		if res.NextHearingDate != nil {
			e.HearingDetails.NextHearingDate = res.NextHearingDate
		}
	}
	if res.Notes != "" {
		e.Notes = res.Notes
	}
	e.UpdatedBy = actor.ID

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(e).Error; err != nil {
			return err
		}
		if res.NextHearingDate == nil {
			return nil
		}
		return tx.Model(c).Update("next_hearing_date", res.NextHearingDate.UTC()).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete event: %w", err)
	}

	activityType := models.ActivityTimelineEventUpdated
	if e.IsHearing() {
		activityType = models.ActivityHearingCompleted
		for _, userID := range caseParties(c, actor.ID) {
			s.Notifier.Notify(ctx, NotificationInput{
				UserID:        userID,
				Type:          models.NotificationHearingCompleted,
				Title:         "Hearing completed",
				Message:       fmt.Sprintf("The hearing %q for case %s has been completed", e.Title, c.CaseNumber),
				RelatedEntity: models.EntityRef{EntityType: models.EntityHearing, EntityID: e.ID},
				ActionURL:     "/cases/" + c.ID + "/timeline",
			})
		}
	}
	s.record(ctx, actor, e, activityType, "Event completed: "+e.Title)
	return e, nil
}

// Postpone records a reason and optional new date. EventDate is left as is.
func (s *TimelineService) Postpone(ctx context.Context, actor access.Actor, id, reason string, newDate *time.Time) (*models.TimelineEvent, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, Validation("postponement reason is required")
	}
	e, _, err := s.managedEvent(ctx, actor, id, "postpone")
	if err != nil {
		return nil, err
	}

	e.MarkPostponed(reason, newDate)
	e.UpdatedBy = actor.ID
	if err := s.DB.WithContext(ctx).Save(e).Error; err != nil {
		return nil, fmt.Errorf("failed to postpone event: %w", err)
	}
	s.record(ctx, actor, e, models.ActivityHearingPostponed, "Hearing postponed: "+reason)
	return e, nil
}

func (s *TimelineService) Cancel(ctx context.Context, actor access.Actor, id string) (*models.TimelineEvent, error) {
	e, _, err := s.managedEvent(ctx, actor, id, "cancel")
	if err != nil {
		return nil, err
	}
	e.Cancel()
	e.UpdatedBy = actor.ID
	if err := s.DB.WithContext(ctx).Save(e).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel event: %w", err)
	}

	activityType := models.ActivityTimelineEventUpdated
	if e.IsHearing() {
		activityType = models.ActivityHearingCancelled
	}
	s.record(ctx, actor, e, activityType, "Event cancelled: "+e.Title)
	return e, nil
}

// Delete hides the event; timeline rows are never removed
func (s *TimelineService) Delete(ctx context.Context, actor access.Actor, id string) error {
	e, _, err := s.managedEvent(ctx, actor, id, "delete")
	if err != nil {
		return err
	}
	e.Hide()
	e.UpdatedBy = actor.ID
	if err := s.DB.WithContext(ctx).Save(e).Error; err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	s.record(ctx, actor, e, models.ActivityTimelineEventDeleted, "Timeline event deleted: "+e.Title)
	return nil
}

// ListForCase returns the visible timeline in chronological order
func (s *TimelineService) ListForCase(ctx context.Context, actor access.Actor, caseID, eventType string) ([]models.TimelineEvent, error) {
	if _, err := s.viewableCase(ctx, actor, caseID); err != nil {
		return nil, err
	}
	q := s.DB.WithContext(ctx).Where("case_id = ? AND is_visible = ?", caseID, true)
	if eventType != "" {
		q = q.Where("event_type = ?", eventType)
	}
	var events []models.TimelineEvent
	err := q.Order("event_date ASC").Find(&events).Error
	return events, err
}

// Upcoming returns scheduled events from now on, soonest first
func (s *TimelineService) Upcoming(ctx context.Context, actor access.Actor, caseID string, limit int) ([]models.TimelineEvent, error) {
	if _, err := s.viewableCase(ctx, actor, caseID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var events []models.TimelineEvent
	err := s.DB.WithContext(ctx).
		Where("case_id = ? AND is_visible = ? AND status = ? AND event_date >= ?", caseID, true, models.TimelineStatusScheduled, models.Now()).
		Order("event_date ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (s *TimelineService) Milestones(ctx context.Context, actor access.Actor, caseID string) ([]models.TimelineEvent, error) {
	if _, err := s.viewableCase(ctx, actor, caseID); err != nil {
		return nil, err
	}
	var events []models.TimelineEvent
	err := s.DB.WithContext(ctx).
		Where("case_id = ? AND is_visible = ? AND is_milestone = ?", caseID, true, true).
		Order("event_date ASC").
		Find(&events).Error
	return events, err
}

// Hearings returns hearing events, optionally filtered by status
func (s *TimelineService) Hearings(ctx context.Context, actor access.Actor, caseID, status string) ([]models.TimelineEvent, error) {
	if _, err := s.viewableCase(ctx, actor, caseID); err != nil {
		return nil, err
	}
	q := s.DB.WithContext(ctx).
		Where("case_id = ? AND is_visible = ?", caseID, true).
		Where("event_type IN ?", []string{models.EventHearingScheduled, models.EventHearingCompleted, models.EventHearingPostponed})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var events []models.TimelineEvent
	err := q.Order("event_date ASC").Find(&events).Error
	return events, err
}

// NextHearing returns the soonest scheduled hearing, or nil when there is none
func (s *TimelineService) NextHearing(ctx context.Context, actor access.Actor, caseID string) (*models.TimelineEvent, error) {
	if _, err := s.viewableCase(ctx, actor, caseID); err != nil {
		return nil, err
	}
	var events []models.TimelineEvent
	err := s.DB.WithContext(ctx).
		Where("case_id = ? AND is_visible = ? AND event_type = ? AND status = ? AND event_date >= ?",
			caseID, true, models.EventHearingScheduled, models.TimelineStatusScheduled, models.Now()).
		Order("event_date ASC").
		Limit(1).
		Find(&events).Error
	if err != nil || len(events) == 0 {
		return nil, err
	}
	return &events[0], nil
}

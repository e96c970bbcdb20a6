package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lexcase_api_go/logger"
	"lexcase_api_go/models"
	"lexcase_api_go/services/access"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	maxTaskTitleLength       = 200
	maxTaskDescriptionLength = 2000
	maxTaskCommentLength     = 1000

	// taskReminderLead is how far ahead of the due date the assignee is reminded
	taskReminderLead = 24 * time.Hour
)

// TaskInput carries the fields of Create and Update
type TaskInput struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	CaseID         string    `json:"case_id"`
	AssignedTo     string    `json:"assigned_to"`
	DueDate        time.Time `json:"due_date"`
	Priority       string    `json:"priority"`
	TaskType       string    `json:"task_type"`
	EstimatedHours float64   `json:"estimated_hours"`
	Tags           []string  `json:"tags"`
}

// TaskFilter narrows List and ListByCase
type TaskFilter struct {
	Status   string
	Priority string
	Page     int
	Limit    int
}

// TaskStats counts the actor's tasks by status
type TaskStats struct {
	Total    int64            `json:"total"`
	Overdue  int64            `json:"overdue"`
	ByStatus map[string]int64 `json:"by_status"`
}

type TaskService struct {
	DB        *gorm.DB
	Activity  *ActivityLogger
	Notifier  *NotificationService
	Reminders *ReminderService
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{
		DB:        db,
		Activity:  NewActivityLogger(db),
		Notifier:  NewNotificationService(db),
		Reminders: NewReminderService(db),
	}
}

// unfinished excludes completed and cancelled tasks
func unfinished(q *gorm.DB) *gorm.DB {
	return q.Where("status NOT IN ?", []string{models.TaskStatusCompleted, models.TaskStatusCancelled})
}

// scopeTasks limits a task query to what the actor's role is responsible for
func scopeTasks(q *gorm.DB, actor access.Actor) (*gorm.DB, error) {
	switch actor.Role {
	case models.RoleAdmin:
		return q, nil
	case models.RoleParalegal:
		return q.Where("assigned_to = ?", actor.ID), nil
	case models.RoleAdvocate:
		return q.Where("assigned_by = ?", actor.ID), nil
	}
	return nil, Forbidden("clients do not have tasks")
}

func (f TaskFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	return q
}

func (f TaskFilter) paginate(q *gorm.DB) *gorm.DB {
	return ReminderFilter{Page: f.Page, Limit: f.Limit}.paginate(q)
}

// Create assigns a task on a case to a paralegal. Only the case advocate or an
// admin may assign, and the due date must be in the future.
func (s *TaskService) Create(ctx context.Context, actor access.Actor, in TaskInput) (*models.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || strings.TrimSpace(in.Description) == "" || in.CaseID == "" || in.AssignedTo == "" || in.DueDate.IsZero() {
		return nil, Validation("title, description, case, assignee, and due date are required")
	}
	if len(in.Title) > maxTaskTitleLength {
		return nil, Validation("title cannot exceed %d characters", maxTaskTitleLength)
	}
	if len(in.Description) > maxTaskDescriptionLength {
		return nil, Validation("description cannot exceed %d characters", maxTaskDescriptionLength)
	}
	if !in.DueDate.After(models.Now()) {
		return nil, Validation("due date must be in the future")
	}
	if in.Priority == "" {
		in.Priority = models.TaskPriorityNormal
	}
	if !models.IsValidTaskPriority(in.Priority) {
		return nil, Validation("invalid priority: %s", in.Priority)
	}
	if in.TaskType == "" {
		in.TaskType = models.TaskTypeOther
	}
	if !models.IsValidTaskType(in.TaskType) {
		return nil, Validation("invalid task type: %s", in.TaskType)
	}
	if in.EstimatedHours < 0 {
		return nil, Validation("estimated hours cannot be negative")
	}

	var c models.Case
	if err := s.DB.WithContext(ctx).First(&c, "id = ?", in.CaseID).Error; err != nil {
		return nil, findError(err, "case")
	}
	if !access.CanEditCase(&c, actor) {
		return nil, Forbidden("only the case advocate can assign tasks")
	}

	var assignee models.User
	if err := s.DB.WithContext(ctx).First(&assignee, "id = ?", in.AssignedTo).Error; err != nil {
		return nil, findError(err, "assignee")
	}
	if assignee.Role != models.RoleParalegal {
		return nil, Validation("task can only be assigned to a paralegal")
	}

	t := &models.Task{
		CaseID:         c.ID,
		Title:          in.Title,
		Description:    strings.TrimSpace(in.Description),
		TaskType:       in.TaskType,
		AssignedBy:     actor.ID,
		AssignedTo:     assignee.ID,
		Status:         models.TaskStatusPending,
		Priority:       in.Priority,
		DueDate:        in.DueDate,
		EstimatedHours: in.EstimatedHours,
		Comments:       []models.TaskComment{},
		Attachments:    []string{},
		Tags:           in.Tags,
	}
	if err := s.DB.WithContext(ctx).Create(t).Error; err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	logger.Component("task").WithFields(logrus.Fields{
		"task_id":     t.ID,
		"case_id":     c.ID,
		"assigned_to": assignee.ID,
	}).Info("task created")

	ref := models.EntityRef{EntityType: models.EntityTask, EntityID: t.ID}
	s.Notifier.Notify(ctx, NotificationInput{
		UserID:        assignee.ID,
		Type:          models.NotificationTaskAssigned,
		Title:         "New task assigned",
		Message:       fmt.Sprintf("You have been assigned: %s", t.Title),
		RelatedEntity: ref,
		ActionURL:     "/tasks/" + t.ID,
		Priority:      taskNotificationPriority(t.Priority),
	})
	s.scheduleDueReminder(ctx, actor, t)
	s.Activity.Record(ctx, ActivityInput{
		CaseID:        c.ID,
		UserID:        actor.ID,
		Type:          models.ActivityTaskCreated,
		Description:   "Task created: " + t.Title,
		Action:        "create",
		RelatedEntity: ref,
	})

	return t, nil
}

// scheduleDueReminder books a reminder for the assignee a day before the due
// date. Tasks due within the next day get none.
func (s *TaskService) scheduleDueReminder(ctx context.Context, actor access.Actor, t *models.Task) BestEffort {
	at := t.DueDate.Add(-taskReminderLead)
	if !at.After(models.Now()) {
		return BestEffort{Operation: "task_reminder"}
	}
	due := t.DueDate
	_, err := s.Reminders.Create(ctx, actor, ReminderInput{
		Title:         "Task due tomorrow: " + truncate(t.Title, 150),
		Message:       fmt.Sprintf("Task %q is due on %s", t.Title, t.DueDate.Format("2006-01-02 15:04")),
		Type:          models.ReminderTypeTask,
		ReminderDate:  at,
		EventDate:     &due,
		RecipientIDs:  []string{t.AssignedTo},
		RelatedEntity: models.EntityRef{EntityType: models.EntityTask, EntityID: t.ID},
		Priority:      taskNotificationPriority(t.Priority),
		ActionURL:     "/tasks/" + t.ID,
	})
	return bestEffort(logger.Component("task").WithField("task_id", t.ID), "task_reminder", err)
}

// taskNotificationPriority maps task priorities onto the shared scale
func taskNotificationPriority(p string) string {
	if p == models.TaskPriorityNormal {
		return models.PriorityMedium
	}
	return p
}

func (s *TaskService) load(ctx context.Context, id string) (*models.Task, error) {
	var t models.Task
	if err := s.DB.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, findError(err, "task")
	}
	return &t, nil
}

func (s *TaskService) Get(ctx context.Context, actor access.Actor, id string) (*models.Task, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanViewTask(t, actor) {
		return nil, Forbidden("you do not have access to this task")
	}
	return t, nil
}

// List returns the tasks the actor assigned or was assigned, soonest due first
func (s *TaskService) List(ctx context.Context, actor access.Actor, f TaskFilter) ([]models.Task, int64, error) {
	q, err := scopeTasks(s.DB.WithContext(ctx).Model(&models.Task{}), actor)
	if err != nil {
		return nil, 0, err
	}
	q = f.apply(q)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var tasks []models.Task
	err = f.paginate(q).Order("due_date ASC").Find(&tasks).Error
	return tasks, total, err
}

// ListByCase returns every task on a case the actor can view
func (s *TaskService) ListByCase(ctx context.Context, actor access.Actor, caseID string, f TaskFilter) ([]models.Task, error) {
	var c models.Case
	if err := s.DB.WithContext(ctx).First(&c, "id = ?", caseID).Error; err != nil {
		return nil, findError(err, "case")
	}
	if !access.CanViewCase(&c, actor) {
		return nil, Forbidden("you do not have access to this case")
	}

	var tasks []models.Task
	err := f.apply(s.DB.WithContext(ctx).Where("case_id = ?", caseID)).Order("due_date ASC").Find(&tasks).Error
	return tasks, err
}

// Update edits the descriptive fields. Zero values leave a field unchanged.
func (s *TaskService) Update(ctx context.Context, actor access.Actor, id string, in TaskInput) (*models.Task, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanEditTask(t, actor) {
		return nil, Forbidden("only the task creator can update this task")
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		if len(title) > maxTaskTitleLength {
			return nil, Validation("title cannot exceed %d characters", maxTaskTitleLength)
		}
		t.Title = title
	}
	if in.Description != "" {
		if len(in.Description) > maxTaskDescriptionLength {
			return nil, Validation("description cannot exceed %d characters", maxTaskDescriptionLength)
		}
		t.Description = strings.TrimSpace(in.Description)
	}
	if !in.DueDate.IsZero() {
		if !in.DueDate.After(models.Now()) {
			return nil, Validation("due date must be in the future")
		}
		t.DueDate = in.DueDate
	}
	if in.Priority != "" {
		if !models.IsValidTaskPriority(in.Priority) {
			return nil, Validation("invalid priority: %s", in.Priority)
		}
		t.Priority = in.Priority
	}
	if in.TaskType != "" {
		if !models.IsValidTaskType(in.TaskType) {
			return nil, Validation("invalid task type: %s", in.TaskType)
		}
		t.TaskType = in.TaskType
	}
	if in.EstimatedHours > 0 {
		t.EstimatedHours = in.EstimatedHours
	}
	if in.Tags != nil {
		t.Tags = in.Tags
	}

	if err := s.DB.WithContext(ctx).Save(t).Error; err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return t, nil
}

// UpdateStatus moves a task to any valid status. Completion by the assignee
// notifies the assigner.
func (s *TaskService) UpdateStatus(ctx context.Context, actor access.Actor, id, status string) (*models.Task, error) {
	if !models.IsValidTaskStatus(status) {
		return nil, Validation("invalid status: %s", status)
	}
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanUpdateTaskStatus(t, actor) {
		return nil, Forbidden("only the assignee or assigner can update task status")
	}

	previous := t.Status
	t.UpdateStatus(status)
	if err := s.DB.WithContext(ctx).Save(t).Error; err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	s.afterStatusChange(ctx, actor, t, previous)
	return t, nil
}

// UpdateProgress sets progress in [0,100]; status follows from the value
func (s *TaskService) UpdateProgress(ctx context.Context, actor access.Actor, id string, progress int) (*models.Task, error) {
	if progress < 0 || progress > 100 {
		return nil, Validation("progress must be between 0 and 100")
	}
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanUpdateTaskStatus(t, actor) {
		return nil, Forbidden("only the assignee or assigner can update task progress")
	}

	previous := t.Status
	t.UpdateProgress(progress)
	if err := s.DB.WithContext(ctx).Save(t).Error; err != nil {
		return nil, fmt.Errorf("failed to update task progress: %w", err)
	}

	s.afterStatusChange(ctx, actor, t, previous)
	return t, nil
}

func (s *TaskService) afterStatusChange(ctx context.Context, actor access.Actor, t *models.Task, previous string) {
	if t.Status == previous {
		return
	}
	s.Activity.Record(ctx, ActivityInput{
		CaseID:        t.CaseID,
		UserID:        actor.ID,
		Type:          models.ActivityTaskStatusChanged,
		Description:   fmt.Sprintf("Task %q moved from %s to %s", truncate(t.Title, 100), previous, t.Status),
		Action:        "update_status",
		RelatedEntity: models.EntityRef{EntityType: models.EntityTask, EntityID: t.ID},
		Changes:       &models.ActivityChange{Field: "status", OldValue: previous, NewValue: t.Status},
	})
	if t.Status == models.TaskStatusCompleted && actor.ID != t.AssignedBy {
		s.Notifier.Notify(ctx, NotificationInput{
			UserID:        t.AssignedBy,
			Type:          models.NotificationTaskCompleted,
			Title:         "Task completed",
			Message:       fmt.Sprintf("Task %q has been completed", t.Title),
			RelatedEntity: models.EntityRef{EntityType: models.EntityTask, EntityID: t.ID},
			ActionURL:     "/tasks/" + t.ID,
		})
	}
}

// AddComment appends a sanitized comment and tells the other party
func (s *TaskService) AddComment(ctx context.Context, actor access.Actor, id, comment string) (*models.TaskComment, error) {
	comment = SanitizeText(comment)
	if comment == "" {
		return nil, Validation("comment is required")
	}
	if len(comment) > maxTaskCommentLength {
		return nil, Validation("comment cannot exceed %d characters", maxTaskCommentLength)
	}
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanViewTask(t, actor) {
		return nil, Forbidden("you do not have access to this task")
	}

	added := t.AddComment(actor.ID, comment)
	if err := s.DB.WithContext(ctx).Model(t).Select("comments").Updates(t).Error; err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	other := t.AssignedTo
	if actor.ID == t.AssignedTo {
		other = t.AssignedBy
	}
	if other != actor.ID {
		s.Notifier.Notify(ctx, NotificationInput{
			UserID:        other,
			Type:          models.NotificationCustom,
			Title:         "New comment on task",
			Message:       fmt.Sprintf("New comment on %q: %s", t.Title, truncate(comment, 200)),
			RelatedEntity: models.EntityRef{EntityType: models.EntityTask, EntityID: t.ID},
			ActionURL:     "/tasks/" + t.ID,
			Priority:      models.PriorityLow,
		})
	}
	return &added, nil
}

// AddAttachment links an uploaded document to the task
func (s *TaskService) AddAttachment(ctx context.Context, actor access.Actor, id, documentID string) (*models.Task, error) {
	if documentID == "" {
		return nil, Validation("document ID is required")
	}
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanUpdateTaskStatus(t, actor) {
		return nil, Forbidden("only the assignee or assigner can attach documents")
	}

	var doc models.Document
	if err := s.DB.WithContext(ctx).First(&doc, "id = ?", documentID).Error; err != nil {
		return nil, findError(err, "document")
	}
	for _, existing := range t.Attachments {
		if existing == documentID {
			return nil, Conflict("document is already attached to this task")
		}
	}

	t.Attachments = append(t.Attachments, documentID)
	if err := s.DB.WithContext(ctx).Model(t).Select("attachments").Updates(t).Error; err != nil {
		return nil, fmt.Errorf("failed to attach document: %w", err)
	}
	return t, nil
}

// Delete soft-deletes the task and cancels its pending reminders
func (s *TaskService) Delete(ctx context.Context, actor access.Actor, id string) error {
	t, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanEditTask(t, actor) {
		return Forbidden("only the task creator can delete this task")
	}
	if err := s.DB.WithContext(ctx).Delete(t).Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	ref := models.EntityRef{EntityType: models.EntityTask, EntityID: t.ID}
	if _, err := s.Reminders.CancelByEntity(ctx, ref); err != nil {
		bestEffort(logger.Component("task").WithField("task_id", t.ID), "cancel_task_reminders", err)
	}
	s.Activity.Record(ctx, ActivityInput{
		CaseID:        t.CaseID,
		UserID:        actor.ID,
		Type:          models.ActivityTaskDeleted,
		Description:   "Task deleted: " + t.Title,
		Action:        "delete",
		RelatedEntity: ref,
		Importance:    models.ImportanceHigh,
	})
	return nil
}

// Overdue lists the actor's unfinished tasks whose due date has passed
func (s *TaskService) Overdue(ctx context.Context, actor access.Actor) ([]models.Task, error) {
	q, err := scopeTasks(s.DB.WithContext(ctx), actor)
	if err != nil {
		return nil, err
	}
	var tasks []models.Task
	err = unfinished(q).Where("due_date < ?", models.Now()).Order("due_date ASC").Find(&tasks).Error
	return tasks, err
}

func (s *TaskService) Stats(ctx context.Context, actor access.Actor) (*TaskStats, error) {
	base, err := scopeTasks(s.DB.WithContext(ctx).Model(&models.Task{}), actor)
	if err != nil {
		return nil, err
	}

	var rows []groupCount
	if err := base.Session(&gorm.Session{}).Select("status AS grp, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	stats := &TaskStats{ByStatus: make(map[string]int64, len(rows))}
	for _, r := range rows {
		stats.ByStatus[r.Grp] = r.Count
		stats.Total += r.Count
	}

	if err := unfinished(base.Session(&gorm.Session{})).Where("due_date < ?", models.Now()).Count(&stats.Overdue).Error; err != nil {
		return nil, fmt.Errorf("failed to count overdue tasks: %w", err)
	}
	return stats, nil
}

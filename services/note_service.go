package services

import (
	"context"
	"fmt"
	"strings"

	"lexcase_api_go/models"
	"lexcase_api_go/services/access"

	"gorm.io/gorm"
)

const maxNoteContentLength = 10000

// NoteInput carries the fields of Create and Update
type NoteInput struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Priority string   `json:"priority"`
	Tags     []string `json:"tags"`
	Status   string   `json:"status"`
	CaseID   string   `json:"case_id"`
}

// NoteFilter narrows List
type NoteFilter struct {
	Status   string
	Category string
	Priority string
	Search   string
	// UserID is honoured for admins only
	UserID string
}

type NoteService struct {
	DB       *gorm.DB
	Activity *ActivityLogger
}

func NewNoteService(db *gorm.DB) *NoteService {
	return &NoteService{DB: db, Activity: NewActivityLogger(db)}
}

func validateNotePriority(p string) error {
	switch p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
		return nil
	}
	return Validation("invalid priority: %s", p)
}

func cleanTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(SanitizeText(t)); t != "" {
			out = append(out, t)
		}
	}
	if len(out) > models.MaxNoteTags {
		return nil, Validation("a note can have at most %d tags", models.MaxNoteTags)
	}
	return out, nil
}

func (s *NoteService) Create(ctx context.Context, actor access.Actor, in NoteInput) (*models.Note, error) {
	title := SanitizeText(in.Title)
	content := SanitizeText(in.Content)
	if title == "" || content == "" {
		return nil, Validation("title and content are required")
	}
	if len(title) > 200 {
		return nil, Validation("title cannot exceed 200 characters")
	}
	if len(content) > maxNoteContentLength {
		return nil, Validation("content cannot exceed %d characters", maxNoteContentLength)
	}
	if in.Category == "" {
		in.Category = "personal"
	}
	if !models.IsValidNoteCategory(in.Category) {
		return nil, Validation("invalid note category: %s", in.Category)
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if err := validateNotePriority(in.Priority); err != nil {
		return nil, err
	}
	tags, err := cleanTags(in.Tags)
	if err != nil {
		return nil, err
	}

	n := &models.Note{
		UserID:   actor.ID,
		Title:    title,
		Content:  content,
		Category: in.Category,
		Priority: in.Priority,
		Tags:     tags,
		Status:   models.NoteStatusActive,
	}
	if in.CaseID != "" {
		var c models.Case
		if err := s.DB.WithContext(ctx).First(&c, "id = ?", in.CaseID).Error; err != nil {
			return nil, findError(err, "case")
		}
		if !access.CanViewCase(&c, actor) {
			return nil, Forbidden("you do not have access to this case")
		}
		n.CaseID = &c.ID
	}

	if err := s.DB.WithContext(ctx).Create(n).Error; err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	s.record(ctx, actor, n, models.ActivityNoteCreated, "Note created: "+n.Title)
	return n, nil
}

func (s *NoteService) record(ctx context.Context, actor access.Actor, n *models.Note, t models.ActivityType, description string) {
	if n.CaseID == nil {
		return
	}
	s.Activity.Record(ctx, ActivityInput{
		CaseID:        *n.CaseID,
		UserID:        actor.ID,
		Type:          t,
		Description:   description,
		Action:        string(t),
		RelatedEntity: models.EntityRef{EntityType: models.EntityNote, EntityID: n.ID},
		Importance:    models.ImportanceLow,
	})
}

func (s *NoteService) Get(ctx context.Context, actor access.Actor, id string) (*models.Note, error) {
	var n models.Note
	if err := s.DB.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, findError(err, "note")
	}
	if !access.CanViewNote(&n, actor) {
		return nil, Forbidden("you can only view your own notes")
	}
	return &n, nil
}

// List returns the actor's notes, newest first. Admins see everyone's, or one
// user's with UserID set.
func (s *NoteService) List(ctx context.Context, actor access.Actor, f NoteFilter) ([]models.Note, error) {
	q := s.DB.WithContext(ctx)
	switch {
	case !actor.IsAdmin():
		q = q.Where("user_id = ?", actor.ID)
	case f.UserID != "":
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ? OR LOWER(tags) LIKE ?", like, like, like)
	}

	var notes []models.Note
	err := q.Order("created_at DESC").Find(&notes).Error
	return notes, err
}

// Update edits the owner's note. Zero values leave a field unchanged.
func (s *NoteService) Update(ctx context.Context, actor access.Actor, id string, in NoteInput) (*models.Note, error) {
	n, err := s.editable(ctx, actor, id, "update")
	if err != nil {
		return nil, err
	}

	if title := SanitizeText(in.Title); title != "" {
		if len(title) > 200 {
			return nil, Validation("title cannot exceed 200 characters")
		}
		n.Title = title
	}
	if content := SanitizeText(in.Content); content != "" {
		if len(content) > maxNoteContentLength {
			return nil, Validation("content cannot exceed %d characters", maxNoteContentLength)
		}
		n.Content = content
	}
	if in.Category != "" {
		if !models.IsValidNoteCategory(in.Category) {
			return nil, Validation("invalid note category: %s", in.Category)
		}
		n.Category = in.Category
	}
	if in.Priority != "" {
		if err := validateNotePriority(in.Priority); err != nil {
			return nil, err
		}
		n.Priority = in.Priority
	}
	if in.Status != "" {
		if !models.IsValidNoteStatus(in.Status) {
			return nil, Validation("invalid note status: %s", in.Status)
		}
		n.Status = in.Status
	}
	if in.Tags != nil {
		if n.Tags, err = cleanTags(in.Tags); err != nil {
			return nil, err
		}
	}

	if err := s.DB.WithContext(ctx).Save(n).Error; err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	s.record(ctx, actor, n, models.ActivityNoteUpdated, "Note updated: "+n.Title)
	return n, nil
}

// Archive is Update with status=archived
func (s *NoteService) Archive(ctx context.Context, actor access.Actor, id string) (*models.Note, error) {
	return s.Update(ctx, actor, id, NoteInput{Status: models.NoteStatusArchived})
}

func (s *NoteService) Delete(ctx context.Context, actor access.Actor, id string) error {
	n, err := s.editable(ctx, actor, id, "delete")
	if err != nil {
		return err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// attachments follow their note
		if err := tx.Model(&models.Document{}).Where("note_id = ? AND is_deleted = ?", n.ID, false).
			Updates(map[string]interface{}{"is_deleted": true, "deleted_at": models.Now(), "deleted_by": actor.ID}).Error; err != nil {
			return err
		}
		return tx.Delete(n).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	s.record(ctx, actor, n, models.ActivityNoteDeleted, "Note deleted: "+n.Title)
	return nil
}

func (s *NoteService) editable(ctx context.Context, actor access.Actor, id, verb string) (*models.Note, error) {
	var n models.Note
	if err := s.DB.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, findError(err, "note")
	}
	if !access.CanEditNote(&n, actor) {
		return nil, Forbidden("you can only %s your own notes", verb)
	}
	return &n, nil
}

package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"lexcase_api_go/logger"
	"lexcase_api_go/models"
	"lexcase_api_go/services/access"

	"gorm.io/gorm"
)

// UploadInput describes one file and the context it belongs to
type UploadInput struct {
	Title             string
	Description       string
	Category          string
	CaseID            string
	NoteID            string
	TimelineEventID   string
	FileName          string
	MimeType          string
	Size              int64
	Body              io.Reader
	AccessPermissions models.AccessPermissions
}

// DocumentUpdate edits metadata. Empty fields are left unchanged.
type DocumentUpdate struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
}

// DocumentFilter narrows ListForCase and ListAccessible
type DocumentFilter struct {
	Category string
	Status   string
	Search   string
	Page     int
	Limit    int
}

const (
	documentPublicClause = "json_extract(documents.access_permissions, '$.is_public') = 1"
	documentRoleClause   = "EXISTS (SELECT 1 FROM json_each(documents.access_permissions, '$.allowed_roles') WHERE json_each.value = ?)"
	documentUserClause   = "EXISTS (SELECT 1 FROM json_each(documents.access_permissions, '$.allowed_users') WHERE json_extract(json_each.value, '$.user_id') = ?)"
)

type DocumentService struct {
	DB       *gorm.DB
	Storage  StorageProvider
	Activity *ActivityLogger
	Notifier *NotificationService
}

func NewDocumentService(db *gorm.DB, storage StorageProvider) *DocumentService {
	return &DocumentService{
		DB:       db,
		Storage:  storage,
		Activity: NewActivityLogger(db),
		Notifier: NewNotificationService(db),
	}
}

func validatePermissions(p models.AccessPermissions) error {
	for _, u := range p.AllowedUsers {
		switch u.Permission {
		case models.PermissionView, models.PermissionDownload, models.PermissionEdit, models.PermissionDelete:
		default:
			return Validation("invalid permission %q for user %s", u.Permission, u.UserID)
		}
	}
	for _, r := range p.AllowedRoles {
		if !models.IsValidRole(r) {
			return Validation("invalid role: %s", r)
		}
	}
	return nil
}

// Upload validates the file, checks the actor may use the case or note it is
// attached to, stores the bytes and then the record
func (s *DocumentService) Upload(ctx context.Context, actor access.Actor, in UploadInput) (*models.Document, error) {
	if in.Body == nil || in.FileName == "" {
		return nil, Validation("no file uploaded")
	}
	if strings.TrimSpace(in.Title) == "" || in.Category == "" {
		return nil, Validation("document name and category are required")
	}
	if len(in.Title) > 200 {
		return nil, Validation("document name cannot exceed 200 characters")
	}
	if !models.DocumentCategories[in.Category] {
		return nil, Validation("invalid document category: %s", in.Category)
	}
	if in.Size <= 0 {
		return nil, Validation("file is empty")
	}
	if in.Size > models.MaxDocumentSize {
		return nil, Validation("file exceeds the %d MB limit", models.MaxDocumentSize/(1024*1024))
	}
	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = contentTypeForExt(filepath.Ext(in.FileName))
	}
	if !models.IsAllowedDocumentType(mimeType) {
		return nil, Validation("file type %s is not allowed", mimeType)
	}
	if err := validatePermissions(in.AccessPermissions); err != nil {
		return nil, err
	}

	var key string
	switch {
	case in.CaseID != "":
		var c models.Case
		if err := s.DB.WithContext(ctx).First(&c, "id = ?", in.CaseID).Error; err != nil {
			return nil, findError(err, "case")
		}
		if !access.CanViewCase(&c, actor) {
			return nil, Forbidden("you do not have access to this case")
		}
		key = GenerateCaseDocumentKey(c.ID, in.FileName)
	case in.NoteID != "":
		var n models.Note
		if err := s.DB.WithContext(ctx).First(&n, "id = ?", in.NoteID).Error; err != nil {
			return nil, findError(err, "note")
		}
		if !access.CanEditNote(&n, actor) {
			return nil, Forbidden("you do not have access to this note")
		}
		key = GenerateNoteDocumentKey(n.ID, in.FileName)
	default:
		key = GenerateUserDocumentKey(actor.ID, in.FileName)
	}

	stored, err := s.Storage.Put(ctx, key, in.Body, mimeType, in.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := &models.Document{
		Title:             strings.TrimSpace(in.Title),
		Description:       in.Description,
		FileName:          stored.FileName,
		OriginalName:      filepath.Base(in.FileName),
		StorageKey:        stored.Key,
		FileURL:           stored.URL,
		FileSize:          stored.FileSize,
		MimeType:          mimeType,
		Category:          in.Category,
		UploadedBy:        actor.ID,
		AccessPermissions: in.AccessPermissions,
		Status:            models.DocumentStatusApproved,
	}
	if in.CaseID != "" {
		doc.CaseID = &in.CaseID
	}
	if in.NoteID != "" {
		doc.NoteID = &in.NoteID
	}
	if in.TimelineEventID != "" {
		doc.TimelineEventID = &in.TimelineEventID
	}

	if err := s.DB.WithContext(ctx).Create(doc).Error; err != nil {
		// the record never existed, so the stored bytes are orphaned
		if delErr := s.Storage.Delete(ctx, stored.Key); delErr != nil {
			bestEffort(logger.Component("document"), "remove_orphaned_upload", delErr)
		}
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	if doc.CaseID != nil {
		s.record(ctx, actor, doc, models.ActivityDocumentUploaded, "Document uploaded: "+doc.Title)
	}
	return doc, nil
}

func (s *DocumentService) record(ctx context.Context, actor access.Actor, doc *models.Document, t models.ActivityType, description string) {
	if doc.CaseID == nil {
		return
	}
	s.Activity.Record(ctx, ActivityInput{
		CaseID:        *doc.CaseID,
		UserID:        actor.ID,
		Type:          t,
		Description:   description,
		Action:        string(t),
		RelatedEntity: models.EntityRef{EntityType: models.EntityDocument, EntityID: doc.ID},
	})
}

func (s *DocumentService) load(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	if err := s.DB.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, findError(err, "document")
	}
	return &doc, nil
}

// canView folds the document decision, loading the case only when deferred
func (s *DocumentService) canView(ctx context.Context, actor access.Actor, doc *models.Document) (bool, error) {
	d := access.CanViewDocument(doc, actor)
	if d != access.DeferToCaseAccess {
		return d == access.Allowed, nil
	}
	var c models.Case
	if err := s.DB.WithContext(ctx).First(&c, "id = ?", *doc.CaseID).Error; err != nil {
		return false, findError(err, "case")
	}
	return access.Resolve(d, &c, actor), nil
}

// Get returns a document the actor may view. Deleted documents are visible to
// admins only.
func (s *DocumentService) Get(ctx context.Context, actor access.Actor, id string) (*models.Document, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.IsDeleted && !actor.IsAdmin() {
		return nil, NotFound("document")
	}
	ok, err := s.canView(ctx, actor, doc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, Forbidden("you do not have access to this document")
	}
	return doc, nil
}

// Download opens the stored file and records the download. The caller closes
// the reader.
func (s *DocumentService) Download(ctx context.Context, actor access.Actor, id string) (*models.Document, io.ReadCloser, error) {
	doc, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	if doc.IsDeleted {
		return nil, nil, NotFound("document")
	}

	body, _, err := s.Storage.Get(ctx, doc.StorageKey)
	if err != nil {
		logger.Component("document").WithError(err).WithField("document_id", doc.ID).Error("stored file missing")
		return nil, nil, NotFound("file")
	}

	doc.RecordDownload()
	if err := s.DB.WithContext(ctx).Model(doc).Updates(map[string]any{
		"download_count":     doc.DownloadCount,
		"last_downloaded_at": doc.LastDownloadedAt,
	}).Error; err != nil {
		bestEffort(logger.Component("document").WithField("document_id", doc.ID), "record_download", err)
	}
	s.record(ctx, actor, doc, models.ActivityDocumentDownloaded, "Document downloaded: "+doc.Title)
	return doc, body, nil
}

func (f DocumentFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(original_name) LIKE ?", like, like, like)
	}
	return q
}

// ListForCase returns the live documents on a case the actor can view
func (s *DocumentService) ListForCase(ctx context.Context, actor access.Actor, caseID string, f DocumentFilter) ([]models.Document, int64, error) {
	var c models.Case
	if err := s.DB.WithContext(ctx).First(&c, "id = ?", caseID).Error; err != nil {
		return nil, 0, findError(err, "case")
	}
	if !access.CanViewCase(&c, actor) {
		return nil, 0, Forbidden("you do not have access to this case")
	}
	q := f.apply(s.DB.WithContext(ctx).Model(&models.Document{}).Where("case_id = ? AND is_deleted = ?", caseID, false))
	return s.page(q, f)
}

// ListAccessible returns documents shared with the actor directly: uploaded,
// public, or granted by role or user
func (s *DocumentService) ListAccessible(ctx context.Context, actor access.Actor, f DocumentFilter) ([]models.Document, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Document{}).Where("is_deleted = ?", false)
	if !actor.IsAdmin() {
		q = q.Where(
			s.DB.Where("uploaded_by = ?", actor.ID).
				Or(documentPublicClause).
				Or(documentRoleClause, actor.Role).
				Or(documentUserClause, actor.ID),
		)
	}
	return s.page(f.apply(q), f)
}

// DocumentStats summarizes the live documents in a scope
type DocumentStats struct {
	Total          int64            `json:"total"`
	ByCategory     map[string]int64 `json:"by_category"`
	ByStatus       map[string]int64 `json:"by_status"`
	TotalSize      int64            `json:"total_size"`
	TotalDownloads int64            `json:"total_downloads"`
}

// Stats covers one case the actor can view when caseID is set, otherwise the
// documents shared with the actor (every document for admins)
func (s *DocumentService) Stats(ctx context.Context, actor access.Actor, caseID string) (*DocumentStats, error) {
	base := s.DB.WithContext(ctx).Model(&models.Document{}).Where("is_deleted = ?", false)
	switch {
	case caseID != "":
		var c models.Case
		if err := s.DB.WithContext(ctx).First(&c, "id = ?", caseID).Error; err != nil {
			return nil, findError(err, "case")
		}
		if !access.CanViewCase(&c, actor) {
			return nil, Forbidden("you do not have access to this case")
		}
		base = base.Where("case_id = ?", caseID)
	case !actor.IsAdmin():
		base = base.Where(
			s.DB.Where("uploaded_by = ?", actor.ID).
				Or(documentPublicClause).
				Or(documentRoleClause, actor.Role).
				Or(documentUserClause, actor.ID),
		)
	}

	stats := &DocumentStats{ByCategory: map[string]int64{}, ByStatus: map[string]int64{}}
	for column, into := range map[string]map[string]int64{"category": stats.ByCategory, "status": stats.ByStatus} {
		var rows []groupCount
		err := base.Session(&gorm.Session{}).
			Select(column + " AS grp, COUNT(*) AS count").
			Group(column).
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to group documents by %s: %w", column, err)
		}
		for _, r := range rows {
			into[r.Grp] = r.Count
		}
	}
	for _, n := range stats.ByStatus {
		stats.Total += n
	}

	var totals struct {
		Size      int64
		Downloads int64
	}
	err := base.Session(&gorm.Session{}).
		Select("COALESCE(SUM(file_size), 0) AS size, COALESCE(SUM(download_count), 0) AS downloads").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to total documents: %w", err)
	}
	stats.TotalSize = totals.Size
	stats.TotalDownloads = totals.Downloads
	return stats, nil
}

func (s *DocumentService) page(q *gorm.DB, f DocumentFilter) ([]models.Document, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var docs []models.Document
	err := ReminderFilter{Page: f.Page, Limit: f.Limit}.paginate(q).Order("created_at DESC").Find(&docs).Error
	return docs, total, err
}

func (s *DocumentService) Update(ctx context.Context, actor access.Actor, id string, in DocumentUpdate) (*models.Document, error) {
	doc, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if title := strings.TrimSpace(in.Title); title != "" {
		doc.Title = title
	}
	if in.Description != "" {
		doc.Description = in.Description
	}
	if in.Category != "" {
		if !models.DocumentCategories[in.Category] {
			return nil, Validation("invalid document category: %s", in.Category)
		}
		doc.Category = in.Category
	}
	if in.Status != "" {
		if !models.IsValidDocumentStatus(in.Status) {
			return nil, Validation("invalid document status: %s", in.Status)
		}
		doc.Status = in.Status
	}
	if err := s.DB.WithContext(ctx).Save(doc).Error; err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	s.record(ctx, actor, doc, models.ActivityDocumentUpdated, "Document updated: "+doc.Title)
	return doc, nil
}

// UpdatePermissions replaces the sharing settings and notifies newly added users
func (s *DocumentService) UpdatePermissions(ctx context.Context, actor access.Actor, id string, perms models.AccessPermissions) (*models.Document, error) {
	if err := validatePermissions(perms); err != nil {
		return nil, err
	}
	doc, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	previous := doc.AccessPermissions
	doc.AccessPermissions = perms
	if err := s.DB.WithContext(ctx).Model(doc).Select("access_permissions").Updates(doc).Error; err != nil {
		return nil, fmt.Errorf("failed to update document permissions: %w", err)
	}

	for _, u := range perms.AllowedUsers {
		if previous.PermissionFor(u.UserID) != "" || u.UserID == actor.ID {
			continue
		}
		s.Notifier.Notify(ctx, NotificationInput{
			UserID:        u.UserID,
			Type:          models.NotificationDocumentShared,
			Title:         "Document shared with you",
			Message:       fmt.Sprintf("%q was shared with you (%s access)", doc.Title, u.Permission),
			RelatedEntity: models.EntityRef{EntityType: models.EntityDocument, EntityID: doc.ID},
			ActionURL:     "/documents/" + doc.ID,
		})
	}
	s.record(ctx, actor, doc, models.ActivityDocumentShared, "Document permissions updated: "+doc.Title)
	return doc, nil
}

func (s *DocumentService) editable(ctx context.Context, actor access.Actor, id string) (*models.Document, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.IsDeleted {
		return nil, NotFound("document")
	}
	if !access.CanEditDocument(doc, actor) {
		return nil, Forbidden("you do not have permission to edit this document")
	}
	return doc, nil
}

// Delete soft-deletes by default. A permanent delete is admin only and also
// removes the stored file.
func (s *DocumentService) Delete(ctx context.Context, actor access.Actor, id string, permanent bool) error {
	doc, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if permanent {
		if !actor.IsAdmin() {
			return Forbidden("only admins can permanently delete documents")
		}
		if err := s.Storage.Delete(ctx, doc.StorageKey); err != nil {
			return fmt.Errorf("failed to remove stored file: %w", err)
		}
		if err := s.DB.WithContext(ctx).Delete(doc).Error; err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}
		s.record(ctx, actor, doc, models.ActivityDocumentDeleted, "Document permanently deleted: "+doc.Title)
		return nil
	}

	if doc.IsDeleted {
		return NotFound("document")
	}
	if !access.CanDeleteDocument(doc, actor) {
		return Forbidden("you do not have permission to delete this document")
	}
	doc.SoftDelete(actor.ID)
	if err := s.DB.WithContext(ctx).Save(doc).Error; err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	s.record(ctx, actor, doc, models.ActivityDocumentDeleted, "Document deleted: "+doc.Title)
	return nil
}

// Restore reverses a soft delete. Admin only.
func (s *DocumentService) Restore(ctx context.Context, actor access.Actor, id string) (*models.Document, error) {
	if !actor.IsAdmin() {
		return nil, Forbidden("only admins can restore documents")
	}
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.IsDeleted {
		return nil, Conflict("document is not deleted")
	}
	doc.Restore()
	if err := s.DB.WithContext(ctx).Save(doc).Error; err != nil {
		return nil, fmt.Errorf("failed to restore document: %w", err)
	}
	return doc, nil
}

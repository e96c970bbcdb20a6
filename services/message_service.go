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

// MessageInput addresses a message to exactly one of a user, a case or a
// connection
type MessageInput struct {
	Content      string `json:"content"`
	ReceiverID   string `json:"receiver_id"`
	CaseID       string `json:"case_id"`
	ConnectionID string `json:"connection_id"`
	ReplyToID    string `json:"reply_to_id"`
	Priority     string `json:"priority"`
	MessageType  string `json:"message_type"`
}

// MessageFilter narrows Inbox. UnreadOnly keeps unread messages sent to the
// actor.
type MessageFilter struct {
	CaseID       string
	ConnectionID string
	UnreadOnly   bool
	Page         int
	Limit        int
}

// AttachmentUpload is one file bound for a message
type AttachmentUpload struct {
	FileName string
	MimeType string
	Size     int64
	Body     io.Reader
}

type MessageService struct {
	DB       *gorm.DB
	Storage  StorageProvider
	Activity *ActivityLogger
	Notifier *NotificationService
}

func NewMessageService(db *gorm.DB, storage StorageProvider) *MessageService {
	return &MessageService{
		DB:       db,
		Storage:  storage,
		Activity: NewActivityLogger(db),
		Notifier: NewNotificationService(db),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Send validates the context, threads replies under their parent and stores
// the sanitized message
func (s *MessageService) Send(ctx context.Context, actor access.Actor, in MessageInput) (*models.Message, error) {
	content := SanitizeText(in.Content)
	if content == "" {
		return nil, Validation("message content is required")
	}
	if len(content) > models.MaxMessageLength {
		return nil, Validation("message cannot exceed %d characters", models.MaxMessageLength)
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !models.IsValidPriority(in.Priority) {
		return nil, Validation("invalid priority: %s", in.Priority)
	}
	switch in.MessageType {
	case "":
		in.MessageType = models.MessageTypeText
	case models.MessageTypeText, models.MessageTypeFile:
	default:
		return nil, Validation("invalid message type: %s", in.MessageType)
	}

	m := &models.Message{
		Content:      content,
		MessageType:  in.MessageType,
		Priority:     in.Priority,
		SenderID:     actor.ID,
		ReceiverID:   optional(in.ReceiverID),
		CaseID:       optional(in.CaseID),
		ConnectionID: optional(in.ConnectionID),
	}
	if m.ContextCount() != 1 {
		return nil, Validation("message must have exactly one of receiver, case, or connection")
	}

	recipients, c, err := s.checkContext(ctx, actor, m)
	if err != nil {
		return nil, err
	}

	if in.ReplyToID != "" {
		parent, err := s.Get(ctx, actor, in.ReplyToID)
		if err != nil {
			return nil, err
		}
		m.ReplyTo(parent)
	}

	if err := s.DB.WithContext(ctx).Create(m).Error; err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	if c != nil {
		importance := models.ImportanceLow
		if m.Priority == models.PriorityUrgent {
			importance = models.ImportanceHigh
		}
		s.Activity.Record(ctx, ActivityInput{
			CaseID:        c.ID,
			UserID:        actor.ID,
			Type:          models.ActivityMessageSent,
			Description:   "Message sent in case",
			Action:        "sent message",
			RelatedEntity: models.EntityRef{EntityType: models.EntityMessage, EntityID: m.ID},
			Importance:    importance,
		})
	}
	for _, userID := range recipients {
		s.Notifier.Notify(ctx, NotificationInput{
			UserID:        userID,
			Type:          models.NotificationMessageReceived,
			Title:         "New message",
			Message:       truncate(m.Content, 200),
			RelatedEntity: models.EntityRef{EntityType: models.EntityMessage, EntityID: m.ID},
			ActionURL:     "/messages/" + m.ThreadID,
			Priority:      m.Priority,
		})
	}
	return m, nil
}

// checkContext verifies the actor may post into the message's context and
// returns who should be notified
func (s *MessageService) checkContext(ctx context.Context, actor access.Actor, m *models.Message) ([]string, *models.Case, error) {
	switch {
	case m.ReceiverID != nil:
		if *m.ReceiverID == actor.ID {
			return nil, nil, Validation("cannot send a message to yourself")
		}
		var receiver models.User
		if err := s.DB.WithContext(ctx).First(&receiver, "id = ?", *m.ReceiverID).Error; err != nil {
			return nil, nil, findError(err, "receiver")
		}
		return []string{receiver.ID}, nil, nil

	case m.CaseID != nil:
		var c models.Case
		if err := s.DB.WithContext(ctx).First(&c, "id = ?", *m.CaseID).Error; err != nil {
			return nil, nil, findError(err, "case")
		}
		if !access.CanViewCase(&c, actor) {
			return nil, nil, Forbidden("you do not have access to this case")
		}
		return caseParties(&c, actor.ID), &c, nil

	default:
		var conn models.Connection
		if err := s.DB.WithContext(ctx).First(&conn, "id = ?", *m.ConnectionID).Error; err != nil {
			return nil, nil, findError(err, "connection")
		}
		if !access.IsConnectionParticipant(&conn, actor) {
			return nil, nil, Forbidden("you are not part of this connection")
		}
		other := conn.RecipientID
		if other == actor.ID {
			other = conn.RequesterID
		}
		return []string{other}, nil, nil
	}
}

// canView resolves CanViewMessage, loading the case or connection as needed
func (s *MessageService) canView(ctx context.Context, actor access.Actor, m *models.Message) (bool, error) {
	d := access.CanViewMessage(m, actor)
	switch {
	case d == access.Allowed:
		return true, nil
	case d == access.DeferToCaseAccess:
		var c models.Case
		if err := s.DB.WithContext(ctx).First(&c, "id = ?", *m.CaseID).Error; err != nil {
			return false, findError(err, "case")
		}
		return access.Resolve(d, &c, actor), nil
	case m.ConnectionID != nil:
		var conn models.Connection
		if err := s.DB.WithContext(ctx).First(&conn, "id = ?", *m.ConnectionID).Error; err != nil {
			return false, findError(err, "connection")
		}
		return access.IsConnectionParticipant(&conn, actor), nil
	}
	return false, nil
}

func (s *MessageService) Get(ctx context.Context, actor access.Actor, id string) (*models.Message, error) {
	var m models.Message
	if err := s.DB.WithContext(ctx).Where("is_deleted = ?", false).First(&m, "id = ?", id).Error; err != nil {
		return nil, findError(err, "message")
	}
	ok, err := s.canView(ctx, actor, &m)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, Forbidden("you do not have access to this message")
	}
	return &m, nil
}

// Thread returns a thread in order, starting from its root
func (s *MessageService) Thread(ctx context.Context, actor access.Actor, threadID string) ([]models.Message, error) {
	var msgs []models.Message
	err := s.DB.WithContext(ctx).
		Where("thread_id = ? AND is_deleted = ?", threadID, false).
		Order("created_at ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, NotFound("thread")
	}
	// every message in a thread shares the root's context
	ok, err := s.canView(ctx, actor, &msgs[0])
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, Forbidden("you do not have access to this thread")
	}
	return msgs, nil
}

func pageMessages(q *gorm.DB, page, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := ReminderFilter{Page: page, Limit: limit}.paginate(q.Where("is_deleted = ?", false)).
		Order("created_at DESC").
		Find(&msgs).Error
	return msgs, err
}

// ListForCase returns case messages newest first
func (s *MessageService) ListForCase(ctx context.Context, actor access.Actor, caseID string, page, limit int) ([]models.Message, error) {
	var c models.Case
	if err := s.DB.WithContext(ctx).First(&c, "id = ?", caseID).Error; err != nil {
		return nil, findError(err, "case")
	}
	if !access.CanViewCase(&c, actor) {
		return nil, Forbidden("you do not have access to this case")
	}
	return pageMessages(s.DB.WithContext(ctx).Where("case_id = ?", caseID), page, limit)
}

func (s *MessageService) ListForConnection(ctx context.Context, actor access.Actor, connectionID string, page, limit int) ([]models.Message, error) {
	var conn models.Connection
	if err := s.DB.WithContext(ctx).First(&conn, "id = ?", connectionID).Error; err != nil {
		return nil, findError(err, "connection")
	}
	if !access.IsConnectionParticipant(&conn, actor) {
		return nil, Forbidden("you are not part of this connection")
	}
	return pageMessages(s.DB.WithContext(ctx).Where("connection_id = ?", connectionID), page, limit)
}

// Conversation returns the direct messages between the actor and another user
func (s *MessageService) Conversation(ctx context.Context, actor access.Actor, otherUserID string, page, limit int) ([]models.Message, error) {
	q := s.DB.WithContext(ctx).Where(
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		actor.ID, otherUserID, otherUserID, actor.ID,
	)
	return pageMessages(q, page, limit)
}

// Inbox returns messages the actor sent or received across every context,
// newest first
func (s *MessageService) Inbox(ctx context.Context, actor access.Actor, f MessageFilter) ([]models.Message, error) {
	q := s.DB.WithContext(ctx).Where("(sender_id = ? OR receiver_id = ?)", actor.ID, actor.ID)
	if f.CaseID != "" {
		q = q.Where("case_id = ?", f.CaseID)
	}
	if f.ConnectionID != "" {
		q = q.Where("connection_id = ?", f.ConnectionID)
	}
	if f.UnreadOnly {
		q = q.Where("receiver_id = ? AND is_read = ?", actor.ID, false)
	}
	return pageMessages(q, f.Page, f.Limit)
}

// Search matches message content case-insensitively among messages the
// actor sent or received
func (s *MessageService) Search(ctx context.Context, actor access.Actor, term, caseID string, page, limit int) ([]models.Message, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, Validation("search query is required")
	}
	q := s.DB.WithContext(ctx).
		Where("(sender_id = ? OR receiver_id = ?)", actor.ID, actor.ID).
		Where("LOWER(content) LIKE ?", "%"+strings.ToLower(term)+"%")
	if caseID != "" {
		q = q.Where("case_id = ?", caseID)
	}
	return pageMessages(q, page, limit)
}

// AddAttachments stores files against a message. Only its sender may attach.
func (s *MessageService) AddAttachments(ctx context.Context, actor access.Actor, id string, files []AttachmentUpload) (*models.Message, error) {
	var m models.Message
	if err := s.DB.WithContext(ctx).Where("is_deleted = ?", false).First(&m, "id = ?", id).Error; err != nil {
		return nil, findError(err, "message")
	}
	if m.SenderID != actor.ID {
		return nil, Forbidden("only the sender can add attachments")
	}
	if len(files) == 0 {
		return nil, Validation("no files uploaded")
	}
	if len(files) > models.MaxMessageAttachments {
		return nil, Validation("at most %d files can be attached at once", models.MaxMessageAttachments)
	}
	for i, f := range files {
		if f.Body == nil || f.FileName == "" || f.Size <= 0 {
			return nil, Validation("file %d is empty", i+1)
		}
		if f.Size > models.MaxDocumentSize {
			return nil, Validation("%s exceeds the %d MB limit", f.FileName, models.MaxDocumentSize/(1024*1024))
		}
		if f.MimeType == "" {
			files[i].MimeType = contentTypeForExt(filepath.Ext(f.FileName))
		}
		if !models.IsAllowedDocumentType(files[i].MimeType) {
			return nil, Validation("file type %s is not allowed", files[i].MimeType)
		}
	}
	if s.Storage == nil {
		return nil, fmt.Errorf("attachment storage is not configured")
	}

	log := logger.Component("message").WithField("message_id", m.ID)
	var keys []string
	discard := func() {
		for _, key := range keys {
			if err := s.Storage.Delete(ctx, key); err != nil {
				bestEffort(log, "remove_orphaned_attachment", err)
			}
		}
	}

	now := models.Now()
	for _, f := range files {
		stored, err := s.Storage.Put(ctx, GenerateStorageKey("messages/"+m.ID, f.FileName), f.Body, f.MimeType, f.Size)
		if err != nil {
			discard()
			return nil, fmt.Errorf("failed to store attachment: %w", err)
		}
		keys = append(keys, stored.Key)
		m.Attachments = append(m.Attachments, models.MessageAttachment{
			FileName:   filepath.Base(f.FileName),
			FileURL:    stored.URL,
			StorageKey: stored.Key,
			FileType:   f.MimeType,
			FileSize:   stored.FileSize,
			UploadedAt: now,
		})
	}

	if err := s.DB.WithContext(ctx).Save(&m).Error; err != nil {
		discard()
		return nil, fmt.Errorf("failed to save attachments: %w", err)
	}
	return &m, nil
}

// MarkAsRead is for the receiver of a direct message only
func (s *MessageService) MarkAsRead(ctx context.Context, actor access.Actor, id string) (*models.Message, error) {
	var m models.Message
	if err := s.DB.WithContext(ctx).Where("is_deleted = ?", false).First(&m, "id = ?", id).Error; err != nil {
		return nil, findError(err, "message")
	}
	if m.ReceiverID == nil || *m.ReceiverID != actor.ID {
		return nil, Forbidden("only the receiver can mark a message as read")
	}
	if m.IsRead {
		return &m, nil
	}
	m.MarkAsRead()
	if err := s.DB.WithContext(ctx).Save(&m).Error; err != nil {
		return nil, fmt.Errorf("failed to mark message as read: %w", err)
	}
	return &m, nil
}

func (s *MessageService) MarkAllAsRead(ctx context.Context, actor access.Actor) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ? AND is_deleted = ?", actor.ID, false, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": models.Now()})
	return res.RowsAffected, res.Error
}

func (s *MessageService) UnreadCount(ctx context.Context, actor access.Actor) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ? AND is_deleted = ?", actor.ID, false, false).
		Count(&n).Error
	return n, err
}

// Delete soft-deletes; only the sender or an admin may
func (s *MessageService) Delete(ctx context.Context, actor access.Actor, id string) error {
	var m models.Message
	if err := s.DB.WithContext(ctx).Where("is_deleted = ?", false).First(&m, "id = ?", id).Error; err != nil {
		return findError(err, "message")
	}
	if !access.CanDeleteMessage(&m, actor) {
		return Forbidden("you can only delete your own messages")
	}
	m.SoftDelete()
	if err := s.DB.WithContext(ctx).Save(&m).Error; err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	if m.CaseID != nil {
		s.Activity.Record(ctx, ActivityInput{
			CaseID:        *m.CaseID,
			UserID:        actor.ID,
			Type:          models.ActivityMessageDeleted,
			Description:   "Message deleted from case",
			Action:        "deleted message",
			RelatedEntity: models.EntityRef{EntityType: models.EntityMessage, EntityID: m.ID},
			Importance:    models.ImportanceLow,
		})
	}
	return nil
}

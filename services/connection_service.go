package services

import (
	"context"
	"fmt"
	"strings"

	"lexcase_api_go/logger"
	"lexcase_api_go/models"
	"lexcase_api_go/services/access"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const maxConnectionMessageLength = 500

// ConnectionFilter narrows List. An empty Status lists established connections.
type ConnectionFilter struct {
	Status string
	Type   string
}

type ConnectionService struct {
	DB       *gorm.DB
	Notifier *NotificationService
}

func NewConnectionService(db *gorm.DB) *ConnectionService {
	return &ConnectionService{DB: db, Notifier: NewNotificationService(db)}
}

// Request sends a connection request from a client to an advocate or paralegal.
// Only one connection may exist between two users, in either direction.
func (s *ConnectionService) Request(ctx context.Context, actor access.Actor, recipientID, connectionType, message string) (*models.Connection, error) {
	if recipientID == "" || connectionType == "" {
		return nil, Validation("recipient ID and connection type are required")
	}
	if !models.IsValidConnectionType(connectionType) {
		return nil, Validation("invalid connection type, must be 'advocate' or 'paralegal'")
	}
	if actor.Role != models.RoleClient {
		return nil, Forbidden("only clients can send connection requests")
	}
	if recipientID == actor.ID {
		return nil, Validation("cannot send connection request to yourself")
	}
	if len(message) > maxConnectionMessageLength {
		return nil, Validation("request message cannot exceed %d characters", maxConnectionMessageLength)
	}

	var recipient models.User
	if err := s.DB.WithContext(ctx).First(&recipient, "id = ?", recipientID).Error; err != nil {
		return nil, findError(err, "recipient")
	}
	if recipient.Role != connectionType {
		return nil, Validation("recipient is not a %s", connectionType)
	}

	var existing int64
	err := s.DB.WithContext(ctx).Model(&models.Connection{}).
		Where("(requester_id = ? AND recipient_id = ?) OR (requester_id = ? AND recipient_id = ?)",
			actor.ID, recipientID, recipientID, actor.ID).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check existing connections: %w", err)
	}
	if existing > 0 {
		return nil, Conflict("connection request already exists with this user")
	}

	conn := &models.Connection{
		RequesterID:    actor.ID,
		RecipientID:    recipientID,
		ConnectionType: connectionType,
		Status:         models.ConnectionStatusPending,
		IsActive:       true,
		RequestMessage: strings.TrimSpace(message),
	}
	if err := s.DB.WithContext(ctx).Create(conn).Error; err != nil {
		return nil, fmt.Errorf("failed to create connection request: %w", err)
	}

	logger.Component("connection").WithFields(logrus.Fields{
		"connection_id": conn.ID,
		"requester_id":  actor.ID,
		"recipient_id":  recipientID,
	}).Info("connection requested")

	s.Notifier.Notify(ctx, NotificationInput{
		UserID:        recipientID,
		Type:          models.NotificationConnectionRequest,
		Title:         "New connection request",
		Message:       "A client wants to connect with you",
		RelatedEntity: models.EntityRef{EntityType: models.EntityConnection, EntityID: conn.ID},
		ActionURL:     "/connections/" + conn.ID,
	})

	return conn, nil
}

// respond loads a request addressed to the actor that is still pending
func (s *ConnectionService) respond(ctx context.Context, actor access.Actor, id, verb string) (*models.Connection, error) {
	var conn models.Connection
	if err := s.DB.WithContext(ctx).First(&conn, "id = ?", id).Error; err != nil {
		return nil, findError(err, "connection request")
	}
	if conn.RecipientID != actor.ID {
		return nil, Forbidden("you can only %s requests sent to you", verb)
	}
	if conn.Status != models.ConnectionStatusPending {
		return nil, Conflict("request already %s", conn.Status)
	}
	return &conn, nil
}

func (s *ConnectionService) Accept(ctx context.Context, actor access.Actor, id, message string) (*models.Connection, error) {
	conn, err := s.respond(ctx, actor, id, "accept")
	if err != nil {
		return nil, err
	}
	conn.Accept(truncate(message, maxConnectionMessageLength))
	if err := s.DB.WithContext(ctx).Save(conn).Error; err != nil {
		return nil, fmt.Errorf("failed to accept connection: %w", err)
	}

	s.Notifier.Notify(ctx, NotificationInput{
		UserID:        conn.RequesterID,
		Type:          models.NotificationConnectionAccepted,
		Title:         "Connection accepted",
		Message:       "Your connection request was accepted",
		RelatedEntity: models.EntityRef{EntityType: models.EntityConnection, EntityID: conn.ID},
		ActionURL:     "/connections/" + conn.ID,
	})
	return conn, nil
}

func (s *ConnectionService) Reject(ctx context.Context, actor access.Actor, id, message string) (*models.Connection, error) {
	conn, err := s.respond(ctx, actor, id, "reject")
	if err != nil {
		return nil, err
	}
	conn.Reject(truncate(message, maxConnectionMessageLength))
	if err := s.DB.WithContext(ctx).Save(conn).Error; err != nil {
		return nil, fmt.Errorf("failed to reject connection: %w", err)
	}

	s.Notifier.Notify(ctx, NotificationInput{
		UserID:        conn.RequesterID,
		Type:          models.NotificationConnectionRejected,
		Title:         "Connection rejected",
		Message:       "Your connection request was declined",
		RelatedEntity: models.EntityRef{EntityType: models.EntityConnection, EntityID: conn.ID},
	})
	return conn, nil
}

// Remove blocks an established or pending connection. Either party may remove it.
func (s *ConnectionService) Remove(ctx context.Context, actor access.Actor, id string) error {
	var conn models.Connection
	if err := s.DB.WithContext(ctx).First(&conn, "id = ?", id).Error; err != nil {
		return findError(err, "connection")
	}
	if conn.Status == models.ConnectionStatusBlocked || !conn.IsActive {
		return NotFound("connection")
	}
	if !access.IsConnectionParticipant(&conn, actor) {
		return Forbidden("you can only remove your own connections")
	}

	conn.Block()
	if err := s.DB.WithContext(ctx).Save(&conn).Error; err != nil {
		return fmt.Errorf("failed to remove connection: %w", err)
	}
	return nil
}

func (s *ConnectionService) Get(ctx context.Context, actor access.Actor, id string) (*models.Connection, error) {
	var conn models.Connection
	if err := s.DB.WithContext(ctx).First(&conn, "id = ?", id).Error; err != nil {
		return nil, findError(err, "connection")
	}
	if !access.CanViewConnection(&conn, actor) {
		return nil, Forbidden("you can only view your own connections")
	}
	return &conn, nil
}

// List returns connections involving the actor. Without a status filter only
// accepted, active connections are returned.
func (s *ConnectionService) List(ctx context.Context, actor access.Actor, f ConnectionFilter) ([]models.Connection, error) {
	q := s.DB.WithContext(ctx).Where("requester_id = ? OR recipient_id = ?", actor.ID, actor.ID)
	if f.Status == "" {
		q = q.Where("status = ? AND is_active = ?", models.ConnectionStatusAccepted, true)
	} else {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("connection_type = ?", f.Type)
	}

	var conns []models.Connection
	err := q.Order("created_at DESC").Find(&conns).Error
	return conns, err
}

// Pending returns incoming requests still awaiting the actor's answer
func (s *ConnectionService) Pending(ctx context.Context, actor access.Actor) ([]models.Connection, error) {
	if actor.Role != models.RoleAdvocate && actor.Role != models.RoleParalegal {
		return nil, Forbidden("only advocates and paralegals can view received requests")
	}
	var conns []models.Connection
	err := s.DB.WithContext(ctx).
		Where("recipient_id = ? AND status = ?", actor.ID, models.ConnectionStatusPending).
		Order("created_at DESC").
		Find(&conns).Error
	return conns, err
}

// Sent returns requests the actor made, optionally filtered by status
func (s *ConnectionService) Sent(ctx context.Context, actor access.Actor, status string) ([]models.Connection, error) {
	q := s.DB.WithContext(ctx).Where("requester_id = ?", actor.ID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var conns []models.Connection
	err := q.Order("created_at DESC").Find(&conns).Error
	return conns, err
}

// SearchProfessionals lists active advocates or paralegals by name
func (s *ConnectionService) SearchProfessionals(ctx context.Context, role, search string, page, limit int) ([]models.User, int64, error) {
	if role != models.RoleAdvocate && role != models.RoleParalegal {
		return nil, 0, Validation("can only search advocates or paralegals")
	}
	q := s.DB.WithContext(ctx).Model(&models.User{}).Where("role = ? AND is_active = ?", role, true)
	if search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	page = max(page, 1)

	var users []models.User
	err := q.Order("name ASC").Offset((page - 1) * limit).Limit(limit).Find(&users).Error
	return users, total, err
}

package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"lexcase_api_go/models"
	"lexcase_api_go/services/access"

	"gorm.io/gorm"
)

// RegisterInput carries a new account
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
}

type UserService struct {
	DB      *gorm.DB
	Mailer  *Mailer
	AppURL  string
	Monitor *SecurityMonitor
}

func NewUserService(db *gorm.DB, mailer *Mailer, appURL string) *UserService {
	return &UserService{DB: db, Mailer: mailer, AppURL: appURL, Monitor: NewSecurityMonitor()}
}

// Register self-registers a client, advocate or paralegal and sends a welcome
// email in the background
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Role == "" {
		in.Role = models.RoleClient
	}
	if in.Role == models.RoleAdmin {
		return nil, Forbidden("admin accounts cannot be self-registered")
	}
	u, err := s.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	if s.Mailer != nil {
		s.Mailer.SendAsync(BuildWelcomeEmail(u.Email, u.Name, u.Role, s.AppURL))
	}
	return u, nil
}

// Create stores a user of any role. Only trusted callers like the CLI use it
// directly.
func (s *UserService) Create(ctx context.Context, in RegisterInput) (*models.User, error) {
	name := SanitizeText(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" || in.Password == "" {
		return nil, Validation("name, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, Validation("invalid email address")
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if !models.IsValidRole(in.Role) {
		return nil, Validation("invalid role: %s", in.Role)
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, Conflict("email is already registered")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     in.Role,
		Phone:    strings.TrimSpace(in.Phone),
		IsActive: true,
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// Login checks credentials and opens a session
func (s *UserService) Login(ctx context.Context, email, password string, ttl time.Duration, ip, userAgent string) (*models.User, *models.Session, error) {
	u, err := Authenticate(ctx, s.DB, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			LogSecurityEvent("login_failed", "", "failed login for "+strings.ToLower(strings.TrimSpace(email)))
			if s.Monitor != nil {
				s.Monitor.TrackFailedLogin(ip)
			}
		}
		return nil, nil, err
	}
	session, err := CreateSession(ctx, s.DB, u.ID, ttl, ip, userAgent)
	if err != nil {
		return nil, nil, err
	}
	LogSecurityEvent("login", u.ID, "user logged in")
	return u, session, nil
}

func (s *UserService) Logout(ctx context.Context, token string) error {
	return DeleteSession(ctx, s.DB, token)
}

// Get returns another user's public profile. Inactive users are visible to
// admins only.
func (s *UserService) Get(ctx context.Context, actor access.Actor, id string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, findError(err, "user")
	}
	if !u.IsActive && !actor.IsAdmin() && actor.ID != u.ID {
		return nil, NotFound("user")
	}
	return &u, nil
}

// SetActive enables or disables an account and drops its sessions when
// disabling
func (s *UserService) SetActive(ctx context.Context, actor access.Actor, id string, active bool) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, Forbidden("only admins can change account status")
	}
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, findError(err, "user")
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&u).Update("is_active", active).Error; err != nil {
			return err
		}
		if !active {
			return tx.Where("user_id = ?", u.ID).Delete(&models.Session{}).Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	u.IsActive = active
	LogSecurityEvent("account_status", u.ID, fmt.Sprintf("active=%t by %s", active, actor.ID))
	return &u, nil
}

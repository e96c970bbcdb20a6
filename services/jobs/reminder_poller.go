package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lexcase_api_go/logger"
	"lexcase_api_go/models"
	"lexcase_api_go/services"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	// DefaultSchedule polls for due reminders once a minute
	DefaultSchedule = "@every 1m"
	// MaintenanceSchedule purges old reminders, notifications and sessions
	MaintenanceSchedule = "@daily"
)

var (
	ErrPollerRunning = errors.New("reminder poller is already running")
	ErrPollerStopped = errors.New("reminder poller is not running")
)

// NotificationCreator stores one notification. *services.NotificationService
// satisfies it.
type NotificationCreator interface {
	Create(ctx context.Context, in services.NotificationInput) (*models.Notification, error)
}

// EmailSender delivers the email channel. *services.Mailer satisfies it.
type EmailSender interface {
	Send(ctx context.Context, email *services.Email) error
}

// PollerStatus is a snapshot of a poller's lifecycle and lifetime counters
type PollerStatus struct {
	Running    bool       `json:"running"`
	Schedule   string     `json:"schedule"`
	LastTickAt *time.Time `json:"last_tick_at,omitempty"`
	Processed  int64      `json:"processed"`
	Sent       int64      `json:"sent"`
	Failed     int64      `json:"failed"`
}

// TickResult counts what one pass did
type TickResult struct {
	Processed     int `json:"processed"`
	Sent          int `json:"sent"`
	Failed        int `json:"failed"`
	Notifications int `json:"notifications"`
	Emails        int `json:"emails"`
	Rescheduled   int `json:"rescheduled"`
}

// MaintenanceResult counts rows purged by Maintain
type MaintenanceResult struct {
	Reminders     int64 `json:"reminders"`
	Notifications int64 `json:"notifications"`
	Expired       int64 `json:"expired"`
	Sessions      int64 `json:"sessions"`
}

type Option func(*ReminderPoller)

// WithSchedule sets the cron spec of the due-reminder pass
func WithSchedule(spec string) Option {
	return func(p *ReminderPoller) {
		if spec != "" {
			p.schedule = spec
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(p *ReminderPoller) {
		if loc != nil {
			p.location = loc
		}
	}
}

// WithMailer enables the email channel. appURL makes action links absolute.
func WithMailer(m EmailSender, appURL string) Option {
	return func(p *ReminderPoller) {
		p.mailer = m
		p.appURL = appURL
	}
}

// WithClock overrides time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(p *ReminderPoller) {
		p.now = now
	}
}

// ReminderPoller delivers due reminders on a cron schedule. Each instance owns
// its own scheduler and counters.
type ReminderPoller struct {
	db       *gorm.DB
	notifier NotificationCreator
	activity *services.ActivityLogger
	mailer   EmailSender
	appURL   string
	schedule string
	location *time.Location
	now      func() time.Time
	log      *logrus.Entry

	mu       sync.Mutex
	cron     *cron.Cron
	running  bool
	lastTick *time.Time
	totals   TickResult

	// tickMu keeps a manual Tick from overlapping a scheduled one
	tickMu sync.Mutex
}

func NewReminderPoller(db *gorm.DB, notifier NotificationCreator, activity *services.ActivityLogger, opts ...Option) *ReminderPoller {
	p := &ReminderPoller{
		db:       db,
		notifier: notifier,
		activity: activity,
		schedule: DefaultSchedule,
		location: time.UTC,
		now:      models.Now,
		log:      logger.Component("poller"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start schedules the due-reminder pass and the daily maintenance job
func (p *ReminderPoller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return ErrPollerRunning
	}

	cronLog := cron.PrintfLogger(p.log)
	c := cron.New(
		cron.WithLocation(p.location),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := c.AddFunc(p.schedule, func() { p.Tick(context.Background()) }); err != nil {
		return fmt.Errorf("invalid poll schedule %q: %w", p.schedule, err)
	}
	if _, err := c.AddFunc(MaintenanceSchedule, func() { p.Maintain(context.Background()) }); err != nil {
		return fmt.Errorf("failed to schedule maintenance: %w", err)
	}

	c.Start()
	p.cron = c
	p.running = true
	p.log.WithField("schedule", p.schedule).Info("reminder poller started")
	return nil
}

// Stop halts scheduling and waits for a pass in flight to finish
func (p *ReminderPoller) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return ErrPollerStopped
	}
	c := p.cron
	p.cron = nil
	p.running = false
	p.mu.Unlock()

	// ticks take p.mu to update counters, so wait without holding it
	<-c.Stop().Done()
	p.log.Info("reminder poller stopped")
	return nil
}

func (p *ReminderPoller) Status() PollerStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := PollerStatus{
		Running:   p.running,
		Schedule:  p.schedule,
		Processed: int64(p.totals.Processed),
		Sent:      int64(p.totals.Sent),
		Failed:    int64(p.totals.Failed),
	}
	if p.lastTick != nil {
		t := *p.lastTick
		st.LastTickAt = &t
	}
	return st
}

// Tick delivers every scheduled reminder that is due. A failure on one
// reminder marks it failed and moves on to the next.
func (p *ReminderPoller) Tick(ctx context.Context) TickResult {
	p.tickMu.Lock()
	defer p.tickMu.Unlock()

	now := p.now().UTC()
	var res TickResult

	var due []models.Reminder
	err := p.db.WithContext(ctx).
		Where("status = ? AND reminder_date <= ?", models.ReminderStatusScheduled, now).
		Order("reminder_date ASC").
		Find(&due).Error
	if err != nil {
		p.log.WithError(err).Error("failed to load due reminders")
	}

	for i := range due {
		res.Processed++
		if p.deliver(ctx, &due[i], &res) {
			res.Sent++
		} else {
			res.Failed++
		}
	}

	if res.Processed > 0 {
		p.log.WithFields(logrus.Fields{
			"processed":     res.Processed,
			"sent":          res.Sent,
			"failed":        res.Failed,
			"notifications": res.Notifications,
		}).Info("reminder pass complete")
	}

	p.mu.Lock()
	p.lastTick = &now
	p.totals.Processed += res.Processed
	p.totals.Sent += res.Sent
	p.totals.Failed += res.Failed
	p.totals.Notifications += res.Notifications
	p.totals.Emails += res.Emails
	p.totals.Rescheduled += res.Rescheduled
	p.mu.Unlock()

	return res
}

// deliver fans one reminder out to its pending recipients and reports success
func (p *ReminderPoller) deliver(ctx context.Context, r *models.Reminder, res *TickResult) bool {
	log := p.log.WithField("reminder_id", r.ID)
	notificationType := models.NotificationTypeForReminder(r.ReminderType)

	var notified []string
	for _, userID := range r.PendingRecipients() {
		_, err := p.notifier.Create(ctx, services.NotificationInput{
			UserID:        userID,
			Type:          notificationType,
			Title:         r.Title,
			Message:       r.Message,
			RelatedEntity: r.RelatedEntity,
			ActionURL:     r.ActionURL,
			ActionText:    r.ActionText,
			Priority:      r.Priority,
		})
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Error("reminder notification failed")
			p.markFailed(ctx, r, notified, userID)
			return false
		}
		notified = append(notified, userID)
		res.Notifications++
	}

	if r.HasChannel(models.ChannelEmail) && p.mailer != nil {
		res.Emails += p.email(ctx, r, notified)
	}

	r.Send(p.now())
	if err := p.db.WithContext(ctx).Save(r).Error; err != nil {
		// the notifications exist, so the reminder must leave the due set
		log.WithError(err).Error("failed to mark reminder sent")
		p.markFailed(ctx, r, notified, "")
		return false
	}

	if r.RelatedEntity.IsCase() && p.activity != nil {
		p.activity.Record(ctx, services.ActivityInput{
			CaseID:        r.RelatedEntity.EntityID,
			UserID:        r.CreatedBy,
			Type:          models.ActivityReminderSent,
			Description:   fmt.Sprintf("Reminder sent to %d recipient(s): %s", len(notified), r.Title),
			Action:        "sent",
			RelatedEntity: r.RelatedEntity,
			Importance:    models.ImportanceLow,
		})
	}

	if next, ok := r.NextOccurrence(); ok {
		if err := p.db.WithContext(ctx).Create(next).Error; err != nil {
			log.WithError(err).Error("failed to schedule next occurrence")
		} else {
			res.Rescheduled++
		}
	}
	return true
}

// markFailed records partial delivery. Notifications already created stay.
func (p *ReminderPoller) markFailed(ctx context.Context, r *models.Reminder, notified []string, failedUser string) {
	now := p.now().UTC()
	for _, id := range notified {
		if rec := r.Recipients.Find(id); rec != nil {
			rec.Status = models.RecipientStatusSent
			rec.SentAt = &now
		}
	}
	if rec := r.Recipients.Find(failedUser); rec != nil {
		rec.Status = models.RecipientStatusFailed
	}
	r.Status = models.ReminderStatusFailed
	err := p.db.WithContext(ctx).Save(r).Error
	if err == nil {
		return
	}
	p.log.WithError(err).WithField("reminder_id", r.ID).Error("failed to mark reminder failed")
	err = p.db.WithContext(ctx).Model(&models.Reminder{}).
		Where("id = ?", r.ID).
		UpdateColumn("status", models.ReminderStatusFailed).Error
	if err != nil {
		p.log.WithError(err).WithField("reminder_id", r.ID).Error("failed to set reminder status")
	}
}

// email sends the email channel to each notified user and returns how many
// went out. Failures never fail the reminder.
func (p *ReminderPoller) email(ctx context.Context, r *models.Reminder, userIDs []string) int {
	if len(userIDs) == 0 {
		return 0
	}
	var users []models.User
	if err := p.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		p.log.WithError(err).Warn("failed to load reminder email recipients")
		return 0
	}

	sent := 0
	for _, u := range users {
		msg := services.BuildReminderEmail(u.Email, u.Name, r.Title, r.Message, r.ActionURL, p.appURL)
		if err := p.mailer.Send(ctx, msg); err != nil {
			p.log.WithError(err).WithFields(logrus.Fields{"reminder_id": r.ID, "user_id": u.ID}).Warn("reminder email failed")
			continue
		}
		sent++
	}
	return sent
}

// Maintain purges old sent or cancelled reminders, read notifications past
// retention, expired notifications and expired sessions
func (p *ReminderPoller) Maintain(ctx context.Context) MaintenanceResult {
	var res MaintenanceResult
	var err error

	if res.Reminders, err = services.NewReminderService(p.db).DeleteOld(ctx, services.ReminderRetention); err != nil {
		p.log.WithError(err).Error("failed to purge old reminders")
	}
	notifications := services.NewNotificationService(p.db)
	if res.Notifications, err = notifications.DeleteOld(ctx, services.ReadNotificationRetention); err != nil {
		p.log.WithError(err).Error("failed to purge read notifications")
	}
	if res.Expired, err = notifications.DeleteExpired(ctx); err != nil {
		p.log.WithError(err).Error("failed to purge expired notifications")
	}
	if res.Sessions, err = services.CleanupExpiredSessions(ctx, p.db); err != nil {
		p.log.WithError(err).Error("failed to purge expired sessions")
	}

	p.log.WithFields(logrus.Fields{
		"reminders":     res.Reminders,
		"notifications": res.Notifications,
		"expired":       res.Expired,
		"sessions":      res.Sessions,
	}).Info("maintenance complete")
	return res
}

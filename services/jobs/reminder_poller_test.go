package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"lexcase_api_go/models"
	"lexcase_api_go/services"
	"lexcase_api_go/services/access"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Create(ctx context.Context, in services.NotificationInput) (*models.Notification, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, email *services.Email) error {
	return m.Called(ctx, email).Error(0)
}

func setupPollerTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{NowFunc: models.Now})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Reminder{}, &models.Notification{},
		&models.Activity{}, &models.Session{},
	))
	return db
}

func forUser(id string) interface{} {
	return mock.MatchedBy(func(in services.NotificationInput) bool { return in.UserID == id })
}

func seedReminder(t *testing.T, db *gorm.DB, r *models.Reminder) *models.Reminder {
	if r.Title == "" {
		r.Title = "File brief"
	}
	if r.Message == "" {
		r.Message = "The brief is due tomorrow"
	}
	if r.ReminderType == "" {
		r.ReminderType = models.ReminderTypeDeadline
	}
	if r.CreatedBy == "" {
		r.CreatedBy = "advocate-1"
	}
	r.Status = models.ReminderStatusScheduled
	r.NotificationChannels = []string{models.ChannelInApp}
	require.NoError(t, db.Create(r).Error)
	return r
}

func reload(t *testing.T, db *gorm.DB, id string) models.Reminder {
	var r models.Reminder
	require.NoError(t, db.First(&r, "id = ?", id).Error)
	return r
}

func TestTick_DeliversDueReminders(t *testing.T) {
	db := setupPollerTestDB(t)
	notifier := services.NewNotificationService(db)
	poller := NewReminderPoller(db, notifier, services.NewActivityLogger(db))

	due := seedReminder(t, db, &models.Reminder{
		ReminderDate:  time.Now().Add(-time.Minute),
		Recipients:    models.NewReminderRecipients([]string{"u1", "u2"}),
		RelatedEntity: models.EntityRef{EntityType: models.EntityCase, EntityID: "case-1"},
	})
	future := seedReminder(t, db, &models.Reminder{
		ReminderDate: time.Now().Add(time.Hour),
		Recipients:   models.NewReminderRecipients([]string{"u1"}),
	})

	res := poller.Tick(context.Background())
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 2, res.Notifications)

	got := reload(t, db, due.ID)
	assert.Equal(t, models.ReminderStatusSent, got.Status)
	assert.NotNil(t, got.SentAt)
	for _, rec := range got.Recipients {
		assert.Equal(t, models.RecipientStatusSent, rec.Status)
	}
	assert.Equal(t, models.ReminderStatusScheduled, reload(t, db, future.ID).Status)

	var notes []models.Notification
	require.NoError(t, db.Find(&notes).Error)
	require.Len(t, notes, 2)
	assert.Equal(t, models.NotificationDeadlineApproaching, notes[0].NotificationType)

	var activities []models.Activity
	require.NoError(t, db.Where("case_id = ?", "case-1").Find(&activities).Error)
	require.Len(t, activities, 1)
	assert.Equal(t, models.ActivityReminderSent, activities[0].ActivityType)
	assert.Equal(t, "advocate-1", activities[0].UserID)

	// a second pass finds nothing new
	assert.Equal(t, 0, poller.Tick(context.Background()).Processed)
}

func TestTick_PartialFailureMarksRecipients(t *testing.T) {
	db := setupPollerTestDB(t)
	notifier := new(mockNotifier)
	notifier.On("Create", mock.Anything, forUser("u1")).Return(&models.Notification{}, nil).Once()
	notifier.On("Create", mock.Anything, forUser("u2")).Return(nil, errors.New("disk full")).Once()
	notifier.On("Create", mock.Anything, forUser("u4")).Return(&models.Notification{}, nil).Once()

	poller := NewReminderPoller(db, notifier, nil)

	failing := seedReminder(t, db, &models.Reminder{
		ReminderDate: time.Now().Add(-2 * time.Minute),
		Recipients:   models.NewReminderRecipients([]string{"u1", "u2", "u3"}),
	})
	healthy := seedReminder(t, db, &models.Reminder{
		ReminderDate: time.Now().Add(-time.Minute),
		Recipients:   models.NewReminderRecipients([]string{"u4"}),
	})

	res := poller.Tick(context.Background())
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 1, res.Failed)

	got := reload(t, db, failing.ID)
	assert.Equal(t, models.ReminderStatusFailed, got.Status)
	assert.Equal(t, models.RecipientStatusSent, got.Recipients.Find("u1").Status)
	assert.Equal(t, models.RecipientStatusFailed, got.Recipients.Find("u2").Status)
	assert.Equal(t, models.RecipientStatusPending, got.Recipients.Find("u3").Status)

	assert.Equal(t, models.ReminderStatusSent, reload(t, db, healthy.ID).Status)
	notifier.AssertExpectations(t)
	notifier.AssertNotCalled(t, "Create", mock.Anything, forUser("u3"))

	// failed reminders are not retried
	assert.Equal(t, 0, poller.Tick(context.Background()).Processed)
}

func TestTick_FailedSentSaveIsNotRetried(t *testing.T) {
	db := setupPollerTestDB(t)
	failNext := true
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:fail_reminder_save", func(tx *gorm.DB) {
		if failNext && tx.Statement.Table == "reminders" {
			failNext = false
			_ = tx.AddError(errors.New("database is locked"))
		}
	}))

	poller := NewReminderPoller(db, services.NewNotificationService(db), nil)
	r := seedReminder(t, db, &models.Reminder{
		ReminderDate: time.Now().Add(-time.Minute),
		Recipients:   models.NewReminderRecipients([]string{"u1", "u2"}),
	})

	res := poller.Tick(context.Background())
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 2, res.Notifications)

	got := reload(t, db, r.ID)
	assert.Equal(t, models.ReminderStatusFailed, got.Status)
	assert.Equal(t, models.RecipientStatusSent, got.Recipients.Find("u1").Status)
	assert.Equal(t, models.RecipientStatusSent, got.Recipients.Find("u2").Status)

	assert.Equal(t, 0, poller.Tick(context.Background()).Processed)
	var n int64
	db.Model(&models.Notification{}).Count(&n)
	assert.EqualValues(t, 2, n, "recipients are notified once")
}

func TestTick_ComparesInstantsAcrossZones(t *testing.T) {
	db := setupPollerTestDB(t)
	newYork := time.FixedZone("UTC-5", -5*3600)
	kolkata := time.FixedZone("UTC+5:30", 5*3600+1800)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, kolkata)
	poller := NewReminderPoller(db, services.NewNotificationService(db), nil, WithClock(func() time.Time { return now }))

	later := seedReminder(t, db, &models.Reminder{
		ReminderDate: now.Add(time.Hour).In(newYork),
		Recipients:   models.NewReminderRecipients([]string{"u1"}),
	})
	atNow := seedReminder(t, db, &models.Reminder{
		ReminderDate: now.In(newYork),
		Recipients:   models.NewReminderRecipients([]string{"u2"}),
	})
	justAfter := seedReminder(t, db, &models.Reminder{
		ReminderDate: now.Add(time.Second),
		Recipients:   models.NewReminderRecipients([]string{"u3"}),
	})

	res := poller.Tick(context.Background())
	assert.Equal(t, 1, res.Processed, "only the reminder due exactly now is due")

	sent := reload(t, db, atNow.ID)
	assert.Equal(t, models.ReminderStatusSent, sent.Status)
	require.NotNil(t, sent.SentAt)
	assert.True(t, sent.SentAt.Equal(now), "sent time comes from the poller clock")
	assert.True(t, sent.Recipients.Find("u2").SentAt.Equal(now))

	assert.Equal(t, models.ReminderStatusScheduled, reload(t, db, later.ID).Status)
	assert.Equal(t, models.ReminderStatusScheduled, reload(t, db, justAfter.ID).Status)
}

func TestTick_OffsetReminderCreatedThroughService(t *testing.T) {
	db := setupPollerTestDB(t)
	creator := &models.User{Name: "Adv", Email: "adv@example.com", Password: "x", Role: models.RoleAdvocate, IsActive: true}
	require.NoError(t, db.Create(creator).Error)

	// an hour from now, written with a western offset so its local clock
	// reads earlier than UTC now
	due := time.Now().Add(time.Hour).In(time.FixedZone("UTC-5", -5*3600))
	_, err := services.NewReminderService(db).Create(context.Background(), access.ActorFrom(creator), services.ReminderInput{
		Title: "Call", Message: "Call the client", Type: models.ReminderTypeCustom,
		ReminderDate: due, RecipientIDs: []string{creator.ID},
	})
	require.NoError(t, err)

	poller := NewReminderPoller(db, services.NewNotificationService(db), nil)
	assert.Equal(t, 0, poller.Tick(context.Background()).Processed)
}

func TestTick_SchedulesNextOccurrence(t *testing.T) {
	db := setupPollerTestDB(t)
	poller := NewReminderPoller(db, services.NewNotificationService(db), nil)

	first := time.Now().Add(-time.Minute)
	r := seedReminder(t, db, &models.Reminder{
		ReminderDate: first,
		Recipients:   models.NewReminderRecipients([]string{"u1"}),
		IsRecurring:  true,
		Recurrence:   &models.Recurrence{Frequency: models.FrequencyWeekly, Interval: 1},
	})

	res := poller.Tick(context.Background())
	assert.Equal(t, 1, res.Rescheduled)

	var next models.Reminder
	require.NoError(t, db.Where("id <> ? AND status = ?", r.ID, models.ReminderStatusScheduled).First(&next).Error)
	assert.WithinDuration(t, first.AddDate(0, 0, 7), next.ReminderDate, time.Second)
	assert.Equal(t, models.RecipientStatusPending, next.Recipients.Find("u1").Status)
}

func TestTick_EmailChannel(t *testing.T) {
	db := setupPollerTestDB(t)
	user := &models.User{Name: "Ana", Email: "ana@example.com", Password: "x", Role: models.RoleClient}
	require.NoError(t, db.Create(user).Error)

	mailer := new(mockMailer)
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(e *services.Email) bool {
		return len(e.To) == 1 && e.To[0] == "ana@example.com"
	})).Return(errors.New("smtp down")).Once()

	poller := NewReminderPoller(db, services.NewNotificationService(db), nil, WithMailer(mailer, "https://app.example.com"))
	r := seedReminder(t, db, &models.Reminder{
		ReminderDate: time.Now().Add(-time.Minute),
		Recipients:   models.NewReminderRecipients([]string{user.ID}),
	})
	r.NotificationChannels = []string{models.ChannelInApp, models.ChannelEmail}
	require.NoError(t, db.Save(r).Error)

	res := poller.Tick(context.Background())
	// email failures never fail the reminder
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 0, res.Emails)
	assert.Equal(t, models.ReminderStatusSent, reload(t, db, r.ID).Status)
	mailer.AssertExpectations(t)
}

func TestPoller_StartStopStatus(t *testing.T) {
	db := setupPollerTestDB(t)
	notifier := services.NewNotificationService(db)

	a := NewReminderPoller(db, notifier, nil, WithSchedule("@every 1h"))
	b := NewReminderPoller(db, notifier, nil)

	assert.ErrorIs(t, a.Stop(), ErrPollerStopped)
	require.NoError(t, a.Start())
	assert.ErrorIs(t, a.Start(), ErrPollerRunning)

	st := a.Status()
	assert.True(t, st.Running)
	assert.Equal(t, "@every 1h", st.Schedule)
	assert.Nil(t, st.LastTickAt)

	// instances do not share state
	assert.False(t, b.Status().Running)
	b.Tick(context.Background())
	assert.NotNil(t, b.Status().LastTickAt)
	assert.Nil(t, a.Status().LastTickAt)

	require.NoError(t, a.Stop())
	assert.False(t, a.Status().Running)

	// a stopped poller can be started again
	require.NoError(t, a.Start())
	require.NoError(t, a.Stop())
}

func TestPoller_InvalidSchedule(t *testing.T) {
	db := setupPollerTestDB(t)
	p := NewReminderPoller(db, services.NewNotificationService(db), nil, WithSchedule("not a spec"))
	assert.Error(t, p.Start())
	assert.False(t, p.Status().Running)
}

func TestMaintain(t *testing.T) {
	db := setupPollerTestDB(t)
	poller := NewReminderPoller(db, services.NewNotificationService(db), nil)

	old := seedReminder(t, db, &models.Reminder{
		ReminderDate: time.Now().Add(-100 * 24 * time.Hour),
		Recipients:   models.NewReminderRecipients([]string{"u1"}),
	})
	require.NoError(t, db.Model(old).Updates(map[string]interface{}{
		"status":     models.ReminderStatusSent,
		"created_at": models.Now().Add(-100 * 24 * time.Hour),
	}).Error)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Create(&models.Notification{
		UserID: "u1", NotificationType: models.NotificationCustom, Title: "t", Message: "m", ExpiresAt: &past,
	}).Error)

	res := poller.Maintain(context.Background())
	assert.Equal(t, int64(1), res.Reminders)
	assert.Equal(t, int64(1), res.Expired)
}

package services

import (
	"testing"
	"time"

	"lexcase_api_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A task on a case runs from pending to completed through progress updates
func TestScenario_TaskProgressToCompletion(t *testing.T) {
	f := newCaseFixture(t)
	tasks := NewTaskService(f.db)
	ctx := t.Context()

	task, err := tasks.Create(ctx, f.advocate, TaskInput{
		Title:       "Draft reply",
		Description: "Respond to the supplier's claim",
		CaseID:      f.caseRec.ID,
		AssignedTo:  f.paralegal.ID,
		DueDate:     future(72 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, task.Status)
	assert.Equal(t, models.TaskPriorityNormal, task.Priority)

	var reminders []models.Reminder
	require.NoError(t, f.db.Find(&reminders, "related_entity_id = ?", task.ID).Error)
	require.Len(t, reminders, 1, "a due-date reminder is booked")
	assert.NotNil(t, reminders[0].Recipients.Find(f.paralegal.ID))

	task, err = tasks.UpdateProgress(ctx, f.paralegal, task.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, task.Status)
	require.NotNil(t, task.StartDate)
	started := *task.StartDate

	task, err = tasks.UpdateProgress(ctx, f.paralegal, task.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, task.Status)
	assert.Equal(t, 100, task.Progress)
	require.NotNil(t, task.CompletedDate)
	assert.True(t, task.StartDate.Equal(started), "start date is stamped once")

	var changes int64
	f.db.Model(&models.Activity{}).
		Where("case_id = ? AND activity_type = ?", f.caseRec.ID, models.ActivityTaskStatusChanged).
		Count(&changes)
	assert.EqualValues(t, 2, changes)

	var done []models.Notification
	require.NoError(t, f.db.Find(&done, "user_id = ? AND notification_type = ?", f.advocate.ID, models.NotificationTaskCompleted).Error)
	assert.Len(t, done, 1, "the assigner hears about completion")

	_, err = tasks.UpdateProgress(ctx, f.client, task.ID, 10)
	assert.ErrorIs(t, err, ErrForbidden)
}

// A scheduled hearing is postponed with a reason and a new date
func TestScenario_PostponeHearing(t *testing.T) {
	f := newCaseFixture(t)
	timeline := NewTimelineService(f.db)
	cases := NewCaseService(f.db)
	ctx := t.Context()

	hearingDate := future(14 * 24 * time.Hour)
	hearing, err := timeline.AddHearing(ctx, f.advocate, f.caseRec.ID, TimelineInput{
		EventDate:     hearingDate,
		EventTime:     "10:30",
		Location:      "Courtroom 4",
		JudgeAssigned: "Judge Rao",
	})
	require.NoError(t, err)
	assert.Equal(t, "Court Hearing", hearing.Title)
	assert.Equal(t, models.EventHearingScheduled, hearing.EventType)

	c, err := cases.Get(ctx, f.advocate, f.caseRec.ID)
	require.NoError(t, err)
	require.NotNil(t, c.NextHearingDate)
	assert.True(t, c.NextHearingDate.Equal(hearingDate))

	var reminders int64
	f.db.Model(&models.Reminder{}).
		Where("related_entity_id = ? AND reminder_type = ?", f.caseRec.ID, models.ReminderTypeHearing).
		Count(&reminders)
	assert.EqualValues(t, 1, reminders, "one reminder covers every party")

	_, err = timeline.Postpone(ctx, f.advocate, hearing.ID, "  ", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = timeline.Postpone(ctx, f.client, hearing.ID, "Judge unavailable", nil)
	assert.ErrorIs(t, err, ErrForbidden)

	newDate := hearingDate.Add(7 * 24 * time.Hour)
	postponed, err := timeline.Postpone(ctx, f.advocate, hearing.ID, "Judge unavailable", &newDate)
	require.NoError(t, err)
	assert.Equal(t, models.TimelineStatusPostponed, postponed.Status)
	require.NotNil(t, postponed.HearingDetails)
	assert.True(t, postponed.HearingDetails.IsPostponed)
	assert.Equal(t, "Judge unavailable", postponed.HearingDetails.PostponementReason)
	assert.True(t, postponed.HearingDetails.NextHearingDate.Equal(newDate))
	assert.True(t, postponed.EventDate.Equal(hearingDate), "the original date is kept")

	var logged int64
	f.db.Model(&models.Activity{}).
		Where("case_id = ? AND activity_type = ?", f.caseRec.ID, models.ActivityHearingPostponed).
		Count(&logged)
	assert.EqualValues(t, 1, logged)
}

func TestBoundaries(t *testing.T) {
	f := newCaseFixture(t)
	ctx := t.Context()

	t.Run("Past due date", func(t *testing.T) {
		_, err := NewTaskService(f.db).Create(ctx, f.advocate, TaskInput{
			Title: "Late", Description: "Too late", CaseID: f.caseRec.ID,
			AssignedTo: f.paralegal.ID, DueDate: time.Now().Add(-time.Hour),
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Past reminder date", func(t *testing.T) {
		_, err := NewReminderService(f.db).Create(ctx, f.advocate, ReminderInput{
			Title: "Call", Message: "Call the client", Type: models.ReminderTypeCustom,
			ReminderDate: time.Now().Add(-time.Minute), RecipientIDs: []string{f.advocate.ID},
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Progress out of range", func(t *testing.T) {
		tasks := NewTaskService(f.db)
		task, err := tasks.Create(ctx, f.advocate, TaskInput{
			Title: "Bounded", Description: "Progress bounds", CaseID: f.caseRec.ID,
			AssignedTo: f.paralegal.ID, DueDate: future(48 * time.Hour),
		})
		require.NoError(t, err)

		for _, p := range []int{-1, 101} {
			_, err := tasks.UpdateProgress(ctx, f.paralegal, task.ID, p)
			assert.ErrorIs(t, err, ErrValidation, "progress %d", p)
		}
	})
}
